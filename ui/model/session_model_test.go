package model

import (
	"testing"
	"time"
)

func TestSessionModel_BasicLifecycle(t *testing.T) {
	m := NewSessionModel()
	base := time.Unix(0, 0)

	// Start at t0 and run for 5s.
	m.OnTick(true, base)
	m.OnTick(true, base.Add(5*time.Second))
	v := m.Values()
	if v.Session < 5*time.Second || v.Total < 5*time.Second {
		t.Fatalf("expected ~5s session & total; got session=%v total=%v", v.Session, v.Total)
	}

	// Stop at 5s.
	m.OnTick(false, base.Add(5*time.Second))
	v = m.Values()
	if v.Session < 5*time.Second || v.Total < 5*time.Second {
		t.Fatalf("after stop expected persisted 5s; got session=%v total=%v", v.Session, v.Total)
	}

	// Idle 2s (no change expected).
	m.OnTick(false, base.Add(7*time.Second))
	if v2 := m.Values(); v2 != v {
		t.Fatalf("idle tick should not change values: before=%+v after=%+v", v, v2)
	}

	// Second session at 10s lasting 3s.
	m.OnTick(true, base.Add(10*time.Second))
	m.OnTick(true, base.Add(13*time.Second))
	v3 := m.Values()
	if v3.Session < 3*time.Second {
		t.Fatalf("second session expected >=3s, got %v", v3.Session)
	}
	if v3.Total < 8*time.Second { // 5 + 3 ongoing
		t.Fatalf("total should include previous 5s + current >=3s (>=8s); got %v", v3.Total)
	}

	m.OnTick(false, base.Add(13*time.Second))
	if vf := m.Values(); vf.Session < 3*time.Second || vf.Total < 8*time.Second {
		t.Fatalf("final expected session >=3s total >=8s got %+v", vf)
	}
}

func TestSessionModel_ActionsPerSession(t *testing.T) {
	m := NewSessionModel()
	base := time.Unix(0, 0)

	m.SetActions(4) // not running: ignored
	if got := m.Values().Actions; got != 0 {
		t.Fatalf("inactive model should ignore counts, got %d", got)
	}
	m.OnTick(true, base)
	m.SetActions(2)
	if got := m.Values().Actions; got != 2 {
		t.Fatalf("expected 2 actions, got %d", got)
	}

	m.OnTick(false, base.Add(time.Second))
	m.SetActions(7)
	if got := m.Values().Actions; got != 2 {
		t.Fatalf("stopped session should keep its count, got %d", got)
	}

	// A new session restarts the count.
	m.OnTick(true, base.Add(2*time.Second))
	if got := m.Values().Actions; got != 0 {
		t.Fatalf("expected fresh count 0, got %d", got)
	}
}
