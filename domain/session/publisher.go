package session

import (
	"sync"
	"sync/atomic"
)

// Publisher fans snapshots out to subscribers without ever blocking the
// worker. Each subscriber has a one-slot buffer that always holds the
// newest snapshot; slow readers skip intermediate ones.
type Publisher struct {
	latest atomic.Pointer[Snapshot]
	mu     sync.Mutex
	subs   map[chan Snapshot]struct{}
}

func NewPublisher() *Publisher {
	return &Publisher{subs: make(map[chan Snapshot]struct{})}
}

// Publish stores s as the latest snapshot and offers it to every subscriber.
func (p *Publisher) Publish(s Snapshot) {
	s = s.Clone()
	p.latest.Store(&s)
	p.mu.Lock()
	defer p.mu.Unlock()
	for ch := range p.subs {
		offer(ch, s.Clone())
	}
}

// offer replaces any pending value in a one-slot channel with s.
func offer(ch chan Snapshot, s Snapshot) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Latest returns the most recent snapshot, if any.
func (p *Publisher) Latest() (Snapshot, bool) {
	s := p.latest.Load()
	if s == nil {
		return Snapshot{}, false
	}
	return s.Clone(), true
}

// Subscribe returns a channel of snapshots and a cancel func that closes it.
func (p *Publisher) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	p.mu.Lock()
	p.subs[ch] = struct{}{}
	p.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, ch)
			p.mu.Unlock()
			close(ch)
		})
	}
}
