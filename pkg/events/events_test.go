package events

import (
	"testing"
	"time"
)

func TestBus_EmitOrderAndPayload(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b := NewBus(WithClock(func() time.Time { return at }))

	var order []string
	b.Subscribe(func(e Event) { order = append(order, "a:"+string(e.Type)) })
	b.Subscribe(func(e Event) { order = append(order, "b:"+string(e.Type)) })

	evt := b.Emit(LoginSucceeded, "u1")
	if evt.Payload != "u1" {
		t.Errorf("Payload = %v, want u1", evt.Payload)
	}
	if !evt.Time.Equal(at) {
		t.Errorf("Time = %v, want %v", evt.Time, at)
	}
	if evt.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("expected a non-nil event ID")
	}
	if len(order) != 2 || order[0] != "a:login-succeeded" || order[1] != "b:login-succeeded" {
		t.Errorf("order = %v", order)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()
	calls := 0
	unsub := b.Subscribe(func(Event) { calls++ })
	b.Emit(SessionRefreshed, nil)
	unsub()
	unsub()
	b.Emit(SessionRefreshed, nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
}

func TestBus_UnsubscribeDuringDispatch(t *testing.T) {
	b := NewBus()
	var second int
	var unsubFirst func()
	unsubFirst = b.Subscribe(func(Event) { unsubFirst() })
	b.Subscribe(func(Event) { second++ })

	b.Emit(LogoutCompleted, nil)
	b.Emit(LogoutCompleted, nil)

	if second != 2 {
		t.Errorf("second handler calls = %d, want 2", second)
	}
	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}
}
