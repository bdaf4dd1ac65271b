package types

import (
	"encoding/hex"
	"fmt"
	"strings"

	"nftmarket/crypto"
)

// Address identifies an account on the marketplace ledger. The zero value
// means "no account".
type Address [20]byte

// ParseAddress decodes a bech32 account string.
func ParseAddress(s string) (Address, error) {
	var out Address
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return out, fmt.Errorf("address required")
	}
	prefix, raw, err := crypto.DecodeAddress(trimmed)
	if err != nil {
		return out, err
	}
	if prefix != crypto.AccountPrefix {
		return out, fmt.Errorf("unexpected address prefix %q", prefix)
	}
	copy(out[:], raw)
	return out, nil
}

// MustParseAddress is ParseAddress that panics on malformed input. Intended for
// fixtures.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// ModuleAddress returns the vault account owned by the named module.
func ModuleAddress(module string) Address {
	return Address(crypto.ModuleAddress(module))
}

func (a Address) IsZero() bool { return a == Address{} }

func (a Address) Bytes() []byte { return append([]byte(nil), a[:]...) }

func (a Address) String() string {
	if a.IsZero() {
		return ""
	}
	encoded, err := crypto.EncodeAddress(crypto.AccountPrefix, a[:])
	if err != nil {
		return hex.EncodeToString(a[:])
	}
	return encoded
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	if len(strings.TrimSpace(string(text))) == 0 {
		*a = Address{}
		return nil
	}
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
