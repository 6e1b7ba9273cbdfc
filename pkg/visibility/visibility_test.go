package visibility

import (
	"testing"
	"time"
)

func TestShouldRefresh(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		p    Params
		want bool
	}{
		{"hidden", Params{Visible: false, Now: now}, false},
		{"hidden even when stale", Params{Visible: false, LastSuccessfulFetch: now.Add(-time.Hour), Now: now}, false},
		{"in flight", Params{Visible: true, InFlight: true, Now: now}, false},
		{"never fetched", Params{Visible: true, Now: now, Cooldown: DefaultCooldown}, true},
		{"inside cooldown", Params{Visible: true, LastSuccessfulFetch: now.Add(-10 * time.Second), Now: now, Cooldown: DefaultCooldown}, false},
		{"exactly cooldown", Params{Visible: true, LastSuccessfulFetch: now.Add(-DefaultCooldown), Now: now, Cooldown: DefaultCooldown}, true},
		{"past cooldown", Params{Visible: true, LastSuccessfulFetch: now.Add(-time.Minute), Now: now, Cooldown: DefaultCooldown}, true},
		{"custom cooldown", Params{Visible: true, LastSuccessfulFetch: now.Add(-2 * time.Second), Now: now, Cooldown: time.Second}, true},
		{"custom cooldown not elapsed", Params{Visible: true, LastSuccessfulFetch: now.Add(-500 * time.Millisecond), Now: now, Cooldown: time.Second}, false},
		{"zero cooldown just fetched", Params{Visible: true, LastSuccessfulFetch: now, Now: now}, true},
		{"zero cooldown still needs visible", Params{Visible: false, LastSuccessfulFetch: now, Now: now}, false},
		{"zero cooldown still needs idle", Params{Visible: true, InFlight: true, LastSuccessfulFetch: now, Now: now}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRefresh(tt.p); got != tt.want {
				t.Errorf("ShouldRefresh(%+v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestShouldRefresh_Truth(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lasts := []time.Duration{0, time.Second, 29 * time.Second, 30 * time.Second, time.Hour}
	for _, visible := range []bool{false, true} {
		for _, inFlight := range []bool{false, true} {
			for _, ago := range lasts {
				p := Params{Visible: visible, InFlight: inFlight, LastSuccessfulFetch: now.Add(-ago), Now: now, Cooldown: DefaultCooldown}
				want := visible && !inFlight && ago >= DefaultCooldown
				if got := ShouldRefresh(p); got != want {
					t.Errorf("visible=%v inFlight=%v ago=%v: got %v, want %v", visible, inFlight, ago, got, want)
				}
			}
		}
	}
}

func TestSignal_TransitionsOnly(t *testing.T) {
	s := NewSignal(true)
	var got []bool
	unsub := s.Subscribe(func(v bool) { got = append(got, v) })

	s.Set(true) // no change
	s.Set(false)
	s.Set(false) // no change
	s.Set(true)

	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Fatalf("got %v, want [false true]", got)
	}

	unsub()
	unsub() // idempotent
	s.Set(false)
	if len(got) != 2 {
		t.Errorf("listener fired after unsubscribe: %v", got)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if s.Visible() {
		t.Error("Visible() = true, want false")
	}
}
