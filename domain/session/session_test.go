package session

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/soocke/poker-pixel-bot/capture"
	"github.com/soocke/poker-pixel-bot/domain/card"
	"github.com/soocke/poker-pixel-bot/domain/decision"
	"github.com/soocke/poker-pixel-bot/domain/dispatch"
	"github.com/soocke/poker-pixel-bot/domain/region"
	"github.com/soocke/poker-pixel-bot/domain/vision"
)

var discardLogger = slog.New(slog.DiscardHandler)

// fakeCards returns a fixed recognition result, or err when set.
type fakeCards struct {
	mu    sync.Mutex
	out   map[string]card.Set
	err   error
	calls atomic.Int64
	panic bool
}

func (f *fakeCards) Recognize(capture.Capturer) (map[string]card.Set, error) {
	f.calls.Add(1)
	if f.panic {
		panic("matcher exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]card.Set, len(f.out))
	for k, v := range f.out {
		out[k] = v.Clone()
	}
	return out, nil
}

func (f *fakeCards) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type fakeStatus struct {
	mu    sync.Mutex
	flags vision.StatusFlags
}

func (f *fakeStatus) Read(capture.Capturer) (vision.StatusFlags, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flags, nil
}

func (f *fakeStatus) set(fl vision.StatusFlags) {
	f.mu.Lock()
	f.flags = fl
	f.mu.Unlock()
}

func bettingFixture() (*fakeCards, *fakeCards, *fakeStatus) {
	board := &fakeCards{out: map[string]card.Set{
		region.FlopA: card.NewSet("AC"),
		region.FlopB: card.NewSet(),
		region.FlopC: card.NewSet(),
		region.Turn:  card.NewSet(),
		region.River: card.NewSet("2D"),
	}}
	hand := &fakeCards{out: map[string]card.Set{
		region.HandA: card.NewSet("AH"),
		region.HandB: card.NewSet("KD"),
	}}
	return board, hand, &fakeStatus{flags: vision.StatusFlags{Start: true}}
}

func TestCycleDispatchesOncePerBettingEntry(t *testing.T) {
	board, hand, status := bettingFixture()
	dry := dispatch.NewDryRun(nil)
	pub := NewPublisher()
	loop := NewLoop(LoopConfig{
		ID: "s1", Board: board, Hand: hand, Status: status,
		Dispatcher: dry, Publisher: pub, Clock: quartz.NewMock(t), Logger: discardLogger,
	})
	ctx := context.Background()

	snap, err := loop.Cycle(ctx)
	require.NoError(t, err)
	require.Equal(t, decision.ActionCall, snap.Action)
	require.Equal(t, "Betting.", snap.Label())
	require.Equal(t, "AH", snap.Text(region.HandA))
	require.Equal(t, "--", snap.Text(region.FlopB))
	require.Equal(t, "2D", snap.Text(region.River))

	for i := 0; i < 5; i++ {
		snap, err = loop.Cycle(ctx)
		require.NoError(t, err)
		require.Equal(t, decision.ActionNone, snap.Action)
		require.Equal(t, decision.ActionCall, snap.LastAction)
	}
	status.set(vision.StatusFlags{})
	_, err = loop.Cycle(ctx)
	require.NoError(t, err)
	status.set(vision.StatusFlags{Start: true})
	_, err = loop.Cycle(ctx)
	require.NoError(t, err)

	require.Equal(t, []decision.Action{decision.ActionCall, decision.ActionCall}, dry.Sent())
	latest, ok := pub.Latest()
	require.True(t, ok)
	require.Equal(t, uint64(8), latest.Seq)
	require.Equal(t, 2, latest.Dispatches)
	require.Equal(t, uint64(8), loop.Stats().Summary().Cycles)
}

func TestCycleCaptureErrorSkipsDecision(t *testing.T) {
	board, hand, status := bettingFixture()
	boom := &capture.CaptureError{Region: region.FlopA, Rect: image.Rect(0, 0, 1, 1), Err: errors.New("off screen")}
	board.setErr(boom)
	dry := dispatch.NewDryRun(nil)
	pub := NewPublisher()
	loop := NewLoop(LoopConfig{Board: board, Hand: hand, Status: status, Dispatcher: dry, Publisher: pub, Clock: quartz.NewMock(t)})

	_, err := loop.Cycle(context.Background())
	var ce *capture.CaptureError
	require.ErrorAs(t, err, &ce)
	require.Empty(t, dry.Sent())
	require.Equal(t, decision.StatusIdle, loop.Engine().Status())
	require.Zero(t, hand.calls.Load())
	_, ok := pub.Latest()
	require.False(t, ok)
}

type failingDispatcher struct{ sends atomic.Int64 }

func (f *failingDispatcher) Send(ctx context.Context, a decision.Action) error {
	f.sends.Add(1)
	return &dispatch.DispatchError{Action: a, Target: "COM9", Err: errors.New("unplugged")}
}
func (f *failingDispatcher) Close() error { return nil }

func TestCycleSurfacesDispatchErrorWithoutRetry(t *testing.T) {
	board, hand, status := bettingFixture()
	disp := &failingDispatcher{}
	loop := NewLoop(LoopConfig{Board: board, Hand: hand, Status: status, Dispatcher: disp, Clock: quartz.NewMock(t)})
	snap, err := loop.Cycle(context.Background())
	require.NoError(t, err)
	require.Contains(t, snap.DispatchErr, "unplugged")
	snap, err = loop.Cycle(context.Background())
	require.NoError(t, err)
	require.Contains(t, snap.DispatchErr, "unplugged")
	require.Equal(t, int64(1), disp.sends.Load())
}

func TestCycleDropsActionAfterStopRequest(t *testing.T) {
	board, hand, status := bettingFixture()
	dry := dispatch.NewDryRun(nil)
	flags := NewFlags()
	loop := NewLoop(LoopConfig{Board: board, Hand: hand, Status: status, Dispatcher: dry, Flags: flags, Clock: quartz.NewMock(t)})
	flags.RequestStop()
	_, err := loop.Cycle(context.Background())
	require.NoError(t, err)
	require.Empty(t, dry.Sent())
}

func TestBackoffDelay(t *testing.T) {
	p := DefaultPacing()
	require.Equal(t, 50*time.Millisecond, p.backoffDelay(0))
	require.Equal(t, 100*time.Millisecond, p.backoffDelay(1))
	require.Equal(t, 200*time.Millisecond, p.backoffDelay(2))
	require.Equal(t, 1600*time.Millisecond, p.backoffDelay(5))
	require.Equal(t, 2*time.Second, p.backoffDelay(6))
	require.Equal(t, 2*time.Second, p.backoffDelay(60))
}

func fastDeps(board, hand *fakeCards, status *fakeStatus, dry *dispatch.DryRun) Deps {
	return Deps{
		Board: board, Hand: hand, Status: status,
		Dial:   func(string) (dispatch.Dispatcher, error) { return dry, nil },
		Clock:  quartz.NewReal(),
		Pacing: Pacing{MinInterval: time.Millisecond, FailureBackoff: time.Millisecond, MaxBackoff: 4 * time.Millisecond},
		Logger: discardLogger,
	}
}

func waitFor(t *testing.T, cond func() bool, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestControllerStopEndsWorker(t *testing.T) {
	board, hand, status := bettingFixture()
	dry := dispatch.NewDryRun(nil)
	c := NewController(fastDeps(board, hand, status, dry))
	sub, cancel := c.Publisher().Subscribe()
	defer cancel()

	id, err := c.Start(context.Background(), "COM3")
	require.NoError(t, err)
	require.NotEmpty(t, id)
	waitFor(t, func() bool { return board.calls.Load() > 5 }, 2*time.Second)
	require.True(t, c.Running())

	require.True(t, c.Stop())
	ctx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()
	require.NoError(t, c.Wait(ctx))
	require.False(t, c.Running())
	require.NoError(t, c.Err())

	calls := board.calls.Load()
	sent := len(dry.Sent())
	require.Equal(t, 1, sent)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, calls, board.calls.Load())
	require.Len(t, dry.Sent(), sent)

	final, ok := c.Publisher().Latest()
	require.True(t, ok)
	require.False(t, final.Running)
	require.Equal(t, "Idle.", final.Label())
	require.Equal(t, id, final.Session)
	select {
	case <-sub:
	default:
		t.Fatalf("subscriber received nothing")
	}
}

func TestControllerRefusesSecondSession(t *testing.T) {
	board, hand, status := bettingFixture()
	c := NewController(fastDeps(board, hand, status, dispatch.NewDryRun(nil)))
	_, err := c.Start(context.Background(), "COM3")
	require.NoError(t, err)
	_, err = c.Start(context.Background(), "COM3")
	require.ErrorIs(t, err, ErrSessionActive)

	c.Stop()
	second, err := c.Start(context.Background(), "COM4")
	require.NoError(t, err)
	id, port := c.Session()
	require.Equal(t, second, id)
	require.Equal(t, "COM4", port)
	c.Stop()
	require.NoError(t, c.Wait(context.Background()))
}

func TestControllerSetDepsOnlyWhileIdle(t *testing.T) {
	board, hand, status := bettingFixture()
	c := NewController(fastDeps(board, hand, status, dispatch.NewDryRun(nil)))
	pub := c.Publisher()
	_, err := c.Start(context.Background(), "COM3")
	require.NoError(t, err)

	other := dispatch.NewDryRun(nil)
	require.ErrorIs(t, c.SetDeps(fastDeps(board, hand, status, other)), ErrSessionActive)
	c.Stop()
	require.NoError(t, c.Wait(context.Background()))

	require.NoError(t, c.SetDeps(fastDeps(board, hand, status, other)))
	require.Same(t, pub, c.Publisher())
	_, err = c.Start(context.Background(), "COM3")
	require.NoError(t, err)
	waitFor(t, func() bool { return len(other.Sent()) == 1 }, 2*time.Second)
	c.Stop()
	require.NoError(t, c.Wait(context.Background()))
}

func TestControllerDialErrorStartsNothing(t *testing.T) {
	board, hand, status := bettingFixture()
	deps := fastDeps(board, hand, status, nil)
	deps.Dial = func(string) (dispatch.Dispatcher, error) { return nil, errors.New("no such port") }
	c := NewController(deps)
	_, err := c.Start(context.Background(), "COM7")
	require.Error(t, err)
	require.False(t, c.Running())
	require.Zero(t, board.calls.Load())
}

func TestControllerRecoversWorkerPanic(t *testing.T) {
	board, hand, status := bettingFixture()
	board.panic = true
	c := NewController(fastDeps(board, hand, status, dispatch.NewDryRun(nil)))
	_, err := c.Start(context.Background(), "COM3")
	require.NoError(t, err)
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not exit")
	}
	require.ErrorContains(t, c.Err(), "matcher exploded")
	require.False(t, c.Running())
	require.False(t, c.Stop())
}

func TestStopWakesBackoffSleep(t *testing.T) {
	board, hand, status := bettingFixture()
	board.setErr(errors.New("screen locked"))
	deps := fastDeps(board, hand, status, dispatch.NewDryRun(nil))
	deps.Pacing = Pacing{MinInterval: time.Hour, FailureBackoff: time.Hour, MaxBackoff: time.Hour}
	c := NewController(deps)
	_, err := c.Start(context.Background(), "COM3")
	require.NoError(t, err)
	waitFor(t, func() bool { return board.calls.Load() == 1 }, time.Second)

	c.Stop()
	ctx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	require.NoError(t, c.Wait(ctx))
	require.Equal(t, uint64(1), c.Stats().Failures)
}

func TestContextCancelEndsWorker(t *testing.T) {
	board, hand, status := bettingFixture()
	c := NewController(fastDeps(board, hand, status, dispatch.NewDryRun(nil)))
	ctx, cancel := context.WithCancel(context.Background())
	_, err := c.Start(ctx, "COM3")
	require.NoError(t, err)
	cancel()
	wctx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	require.NoError(t, c.Wait(wctx))
}

func TestPublisherKeepsLatestOnly(t *testing.T) {
	p := NewPublisher()
	ch, cancel := p.Subscribe()
	for i := 1; i <= 3; i++ {
		p.Publish(Snapshot{Seq: uint64(i)})
	}
	got := <-ch
	require.Equal(t, uint64(3), got.Seq)
	select {
	case s := <-ch:
		t.Fatalf("unexpected extra snapshot %d", s.Seq)
	default:
	}
	cancel()
	cancel()
	p.Publish(Snapshot{Seq: 4})
	_, open := <-ch
	require.False(t, open)
}

func TestPublishedSnapshotsAreCopies(t *testing.T) {
	p := NewPublisher()
	cards := map[string]card.Set{region.HandA: card.NewSet("AH")}
	p.Publish(Snapshot{Cards: cards})
	cards[region.HandA].Add("KD")
	got, _ := p.Latest()
	require.Equal(t, "AH", got.Text(region.HandA))
	got.Cards[region.HandA].Add("QS")
	again, _ := p.Latest()
	require.Equal(t, "AH", again.Text(region.HandA))
}

func TestCycleStatsSummary(t *testing.T) {
	s := NewCycleStats()
	require.Equal(t, Summary{}, s.Summary())
	s.Observe(10*time.Millisecond, true)
	require.Equal(t, 10*time.Millisecond, s.Summary().MeanCycle)
	s.Observe(20*time.Millisecond, false)
	s.Observe(30*time.Millisecond, false)
	s.Fail()
	sum := s.Summary()
	require.Equal(t, uint64(3), sum.Cycles)
	require.Equal(t, uint64(1), sum.Dispatches)
	require.Equal(t, uint64(1), sum.Failures)
	require.InDelta(t, float64(20*time.Millisecond), float64(sum.MeanCycle), float64(time.Microsecond))
	require.InDelta(t, float64(10*time.Millisecond), float64(sum.StdCycle), float64(time.Microsecond))
}
