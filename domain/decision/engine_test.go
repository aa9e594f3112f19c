package decision

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/soocke/poker-pixel-bot/domain/card"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func sets(codes ...card.Code) []card.Set {
	out := make([]card.Set, len(codes))
	for i, c := range codes {
		if c.IsPlaceholder() {
			out[i] = card.NewSet()
		} else {
			out[i] = card.NewSet(c)
		}
	}
	return out
}

func betting(hand [2]card.Code, flop [3]card.Code) Observation {
	h := sets(hand[:]...)
	f := sets(flop[:]...)
	return Observation{Start: true, Hand: [2]card.Set{h[0], h[1]}, Flop: [3]card.Set{f[0], f[1], f[2]}}
}

func TestDecideConcreteCases(t *testing.T) {
	cases := []struct {
		name string
		hand [2]card.Code
		flop [3]card.Code
		want Action
	}{
		{"pair with flop", [2]card.Code{"AH", "KD"}, [3]card.Code{"AC", "--", "--"}, ActionCall},
		{"low ranks", [2]card.Code{"2H", "3D"}, [3]card.Code{"AC", "KD", "QH"}, ActionFold},
		{"flop unresolved", [2]card.Code{"AH", "TD"}, [3]card.Code{"--", "--", "--"}, ActionCall},
		{"high no pair", [2]card.Code{"9H", "JD"}, [3]card.Code{"2C", "3D", "4H"}, ActionFold},
		{"one slot unresolved", [2]card.Code{"QH", "QD"}, [3]card.Code{"2C", "3D", "--"}, ActionCall},
		{"one high one low", [2]card.Code{"AH", "8D"}, [3]card.Code{"AC", "8C", "--"}, ActionFold},
		{"hand unresolved", [2]card.Code{"--", "KD"}, [3]card.Code{"KC", "--", "--"}, ActionFold},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Decide(tc.hand, tc.flop); got != tc.want {
				t.Fatalf("Decide(%v, %v) = %q, want %q", tc.hand, tc.flop, got, tc.want)
			}
		})
	}
}

func TestEngine_OneDispatchPerBettingEntry(t *testing.T) {
	e := NewEngine(discardLogger)
	obs := betting([2]card.Code{"AH", "KD"}, [3]card.Code{"AC", "--", "--"})

	sent := 0
	for i := 0; i < 10; i++ {
		if act, ok := e.Step(obs); ok {
			sent++
			if act != ActionCall {
				t.Fatalf("expected call, got %q", act)
			}
		}
	}
	if sent != 1 {
		t.Fatalf("expected exactly one dispatch over 10 betting cycles, got %d", sent)
	}
	if !e.CommandSent() {
		t.Fatalf("guard should be set while dwelling in betting")
	}

	if _, ok := e.Step(Observation{}); ok {
		t.Fatalf("processing must not dispatch")
	}
	if e.CommandSent() {
		t.Fatalf("processing must clear the guard")
	}
	if act, ok := e.Step(obs); !ok || act != ActionCall {
		t.Fatalf("expected second dispatch after re-entering betting, got %q %v", act, ok)
	}
}

func TestEngine_PausedSendsStartOnce(t *testing.T) {
	e := NewEngine(discardLogger)
	act, ok := e.Step(Observation{Pause: true})
	if !ok || act != ActionStart {
		t.Fatalf("expected start, got %q %v", act, ok)
	}
	for i := 0; i < 3; i++ {
		if _, ok := e.Step(Observation{Pause: true}); ok {
			t.Fatalf("paused dwell must not dispatch again")
		}
	}
	if e.Status() != StatusPaused {
		t.Fatalf("expected paused, got %v", e.Status())
	}
}

func TestEngine_StartTakesPriorityOverPause(t *testing.T) {
	e := NewEngine(discardLogger)
	obs := betting([2]card.Code{"2H", "3D"}, [3]card.Code{"AC", "KD", "QH"})
	obs.Pause = true
	act, ok := e.Step(obs)
	if !ok || act != ActionFold {
		t.Fatalf("expected fold, got %q %v", act, ok)
	}
	if e.Status() != StatusBetting {
		t.Fatalf("expected betting, got %v", e.Status())
	}
}

func TestEngine_DirectSwitchRearmsGuard(t *testing.T) {
	e := NewEngine(discardLogger)
	if _, ok := e.Step(Observation{Pause: true}); !ok {
		t.Fatalf("expected start")
	}
	act, ok := e.Step(betting([2]card.Code{"2H", "3D"}, [3]card.Code{"AC", "KD", "QH"}))
	if !ok || act != ActionFold {
		t.Fatalf("switching paused to betting should re-arm, got %q %v", act, ok)
	}
}

func TestEngine_LowConfidenceDefers(t *testing.T) {
	e := NewEngine(discardLogger)
	obs := betting([2]card.Code{"AH", "KD"}, [3]card.Code{"AC", "--", "--"})
	obs.Hand[0] = card.NewSet("AH", "AD")
	if _, ok := e.Step(obs); ok {
		t.Fatalf("ambiguous hand must defer")
	}
	if e.CommandSent() {
		t.Fatalf("deferred cycle must not set the guard")
	}
	obs.Hand[0] = card.NewSet("AH")
	if act, ok := e.Step(obs); !ok || act != ActionCall {
		t.Fatalf("expected call once confident, got %q %v", act, ok)
	}
}

func TestEngine_TurnAndRiverIgnored(t *testing.T) {
	e := NewEngine(discardLogger)
	// Only flop slots count: none match and all are resolved.
	act, _ := e.Step(betting([2]card.Code{"AH", "KD"}, [3]card.Code{"2C", "3D", "4H"}))
	if act != ActionFold {
		t.Fatalf("expected fold, got %q", act)
	}
}

type transitionRecorder struct {
	mu  sync.Mutex
	seq []Status
}

func (r *transitionRecorder) listener(prev, next Status) {
	r.mu.Lock()
	r.seq = append(r.seq, next)
	r.mu.Unlock()
}

func TestEngine_ListenersSeeTransitionsOnly(t *testing.T) {
	e := NewEngine(discardLogger)
	r := &transitionRecorder{}
	e.AddListener(r.listener)
	e.Step(Observation{})
	e.Step(Observation{})
	e.Step(Observation{Pause: true})
	e.Step(Observation{Start: true})
	e.Reset()
	want := []Status{StatusProcessing, StatusPaused, StatusBetting, StatusIdle}
	if len(r.seq) != len(want) {
		t.Fatalf("unexpected transitions %v", r.seq)
	}
	for i := range want {
		if r.seq[i] != want[i] {
			t.Fatalf("transition %d: got %v want %v", i, r.seq[i], want[i])
		}
	}
	if e.Status().Label() != "Idle." {
		t.Fatalf("unexpected label %q", e.Status().Label())
	}
}

func TestStatusLabels(t *testing.T) {
	for s, want := range map[Status]string{
		StatusBetting:    "Betting.",
		StatusPaused:     "Pause.",
		StatusProcessing: "Processing.",
		StatusIdle:       "Idle.",
	} {
		if s.Label() != want {
			t.Fatalf("%v label = %q, want %q", s, s.Label(), want)
		}
	}
}
