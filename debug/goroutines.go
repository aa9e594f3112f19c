package debug

// Debug goroutine metrics logger. Started only when config.Debug is true.
// Emits goroutine count (runtime metrics) and stack usage at a fixed interval,
// plus whatever the probes report (capture counters, cycle timing).

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"
)

// Probe contributes extra attributes to a periodic debug record.
type Probe func() []slog.Attr

// StartGoroutineLogger launches a ticker that logs goroutine count and stack
// memory until ctx ends.
func StartGoroutineLogger(ctx context.Context, interval time.Duration, logger *slog.Logger, probes ...Probe) {
	if interval <= 0 {
		interval = time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			metrics.Read(samples)
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			attrs := []slog.Attr{
				slog.Uint64("goroutines", samples[0].Value.Uint64()),
				slog.Uint64("stack_inuse", ms.StackInuse),
				slog.Uint64("stack_sys", ms.StackSys),
				slog.Uint64("heap_alloc", ms.HeapAlloc),
			}
			logger.LogAttrs(ctx, slog.LevelInfo, "goroutine-stacks", withProbes(attrs, probes)...)
		}
	}()
}

func withProbes(attrs []slog.Attr, probes []Probe) []slog.Attr {
	for _, p := range probes {
		if p != nil {
			attrs = append(attrs, p()...)
		}
	}
	return attrs
}
