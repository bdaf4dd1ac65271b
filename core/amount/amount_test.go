package amount

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseRejectsExcessPrecision(t *testing.T) {
	if _, err := Parse("0.123456789"); err == nil {
		t.Fatalf("expected precision error")
	}
	d, err := Parse(" 0.12345678 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if Format(d) != "0.12345678" {
		t.Fatalf("got %s", Format(d))
	}
	if _, err := Parse(""); err == nil {
		t.Fatalf("expected empty error")
	}
	if _, err := Parse("abc"); err == nil {
		t.Fatalf("expected syntax error")
	}
}

func TestOptional(t *testing.T) {
	d, err := ParseOptional("")
	if err != nil || d.Valid {
		t.Fatalf("empty string should be absent: %v %v", d, err)
	}
	d, err = ParseOptional("5")
	if err != nil || !d.Valid || Encode(d) != "5.00000000" {
		t.Fatalf("unexpected optional %v %v", d, err)
	}
	back, err := Decode(Encode(d))
	if err != nil || !back.Decimal.Equal(d.Decimal) {
		t.Fatalf("decode mismatch")
	}
}

func TestMulTruncates(t *testing.T) {
	got := Mul(MustParse("4.0"), MustParse("0.05"))
	if Format(got) != "0.20000000" {
		t.Fatalf("got %s", Format(got))
	}
	got = Mul(MustParse("0.00000001"), MustParse("0.5"))
	if !got.IsZero() {
		t.Fatalf("expected truncation to zero, got %s", got)
	}
}

func TestDiv(t *testing.T) {
	if Format(Div(MustParse("0.1"), decimal.NewFromInt(3))) != "0.03333333" {
		t.Fatalf("unexpected division result")
	}
	if !Div(One, Zero).IsZero() {
		t.Fatalf("division by zero should yield zero")
	}
}

func TestIsFraction(t *testing.T) {
	for _, s := range []string{"0", "0.5", "1"} {
		if !IsFraction(MustParse(s)) {
			t.Fatalf("%s should be a fraction", s)
		}
	}
	for _, s := range []string{"-0.1", "1.00000001"} {
		if IsFraction(MustParse(s)) {
			t.Fatalf("%s should not be a fraction", s)
		}
	}
}
