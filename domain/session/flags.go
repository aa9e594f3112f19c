package session

import (
	"sync"
	"sync/atomic"
)

// Flags carries the stop request from the controller to one worker. The
// controller is the only writer; the worker polls at cycle boundaries.
// The dispatch guard lives in decision.Engine, which only the worker touches.
type Flags struct {
	stop atomic.Bool
	once sync.Once
	wake chan struct{}
}

func NewFlags() *Flags { return &Flags{wake: make(chan struct{})} }

// RequestStop sets the stop flag and wakes a worker sleeping between cycles.
func (f *Flags) RequestStop() {
	f.stop.Store(true)
	f.once.Do(func() { close(f.wake) })
}

func (f *Flags) StopRequested() bool { return f.stop.Load() }

// Wake is closed once a stop has been requested.
func (f *Flags) Wake() <-chan struct{} { return f.wake }
