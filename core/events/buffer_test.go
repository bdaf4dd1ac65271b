package events

import (
	"testing"

	"nftmarket/core/types"
)

type testEvent struct{ evt *types.Event }

func (e testEvent) EventType() string { return e.evt.Type }
func (e testEvent) Event() *types.Event { return e.evt }

type bareEvent string

func (e bareEvent) EventType() string { return string(e) }

func TestBufferFlushPreservesOrder(t *testing.T) {
	buf := NewBuffer()
	buf.Emit(bareEvent("a"))
	buf.Emit(nil)
	buf.Emit(bareEvent("b"))
	if buf.Len() != 2 {
		t.Fatalf("expected 2 buffered events, got %d", buf.Len())
	}
	sink := NewBuffer()
	buf.Flush(sink)
	if buf.Len() != 0 {
		t.Fatalf("buffer not emptied")
	}
	got := sink.Events()
	if len(got) != 2 || got[0].EventType() != "a" || got[1].EventType() != "b" {
		t.Fatalf("unexpected flush result: %v", got)
	}
}

func TestBufferReset(t *testing.T) {
	buf := NewBuffer()
	buf.Emit(bareEvent("a"))
	buf.Reset()
	sink := NewBuffer()
	buf.Flush(sink)
	if sink.Len() != 0 {
		t.Fatalf("reset events leaked")
	}
}

func TestMultiFansOut(t *testing.T) {
	first, second := NewBuffer(), NewBuffer()
	Multi{first, nil, second}.Emit(bareEvent("x"))
	if first.Len() != 1 || second.Len() != 1 {
		t.Fatalf("fan out failed")
	}
}

func TestPayload(t *testing.T) {
	typed := testEvent{evt: &types.Event{Type: "t", Attributes: map[string]string{"k": "v"}}}
	if Payload(typed).Attributes["k"] != "v" {
		t.Fatalf("typed payload lost")
	}
	bare := Payload(bareEvent("bare"))
	if bare.Type != "bare" || bare.Attributes == nil {
		t.Fatalf("bare payload: %+v", bare)
	}
	if Payload(nil) != nil {
		t.Fatalf("nil event should have nil payload")
	}
}
