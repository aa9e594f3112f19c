package session

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

const statsWindow = 256

// Summary aggregates loop behaviour for logs and the stats panel.
type Summary struct {
	Cycles     uint64
	Failures   uint64
	Dispatches uint64
	MeanCycle  time.Duration
	StdCycle   time.Duration
}

// CycleStats keeps counters and a rolling window of cycle durations.
type CycleStats struct {
	mu         sync.Mutex
	window     []float64 // milliseconds, ring buffer
	next       int
	cycles     uint64
	failures   uint64
	dispatches uint64
}

func NewCycleStats() *CycleStats {
	return &CycleStats{window: make([]float64, 0, statsWindow)}
}

// Observe records one completed cycle.
func (s *CycleStats) Observe(d time.Duration, dispatched bool) {
	ms := float64(d) / float64(time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles++
	if dispatched {
		s.dispatches++
	}
	if len(s.window) < statsWindow {
		s.window = append(s.window, ms)
		return
	}
	s.window[s.next] = ms
	s.next = (s.next + 1) % statsWindow
}

// Fail records a skipped cycle.
func (s *CycleStats) Fail() {
	s.mu.Lock()
	s.failures++
	s.mu.Unlock()
}

func (s *CycleStats) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := Summary{Cycles: s.cycles, Failures: s.failures, Dispatches: s.dispatches}
	switch len(s.window) {
	case 0:
	case 1:
		sum.MeanCycle = msToDuration(s.window[0])
	default:
		mean, std := stat.MeanStdDev(s.window, nil)
		sum.MeanCycle = msToDuration(mean)
		sum.StdCycle = msToDuration(std)
	}
	return sum
}

func msToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
