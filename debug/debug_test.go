package debug

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLoggersEmitProbesUntilCancelled(t *testing.T) {
	var out syncBuffer
	logger := slog.New(slog.NewJSONHandler(&out, nil))
	ctx, cancel := context.WithCancel(context.Background())
	probe := func() []slog.Attr { return []slog.Attr{slog.Int("captures", 42)} }
	StartGoroutineLogger(ctx, 5*time.Millisecond, logger, probe)
	StartMemLogger(ctx, 5*time.Millisecond, logger, probe)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s := out.String()
		if strings.Contains(s, `"msg":"goroutine-stacks"`) && strings.Contains(s, `"msg":"memstats"`) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	s := out.String()
	if !strings.Contains(s, `"msg":"goroutine-stacks"`) || !strings.Contains(s, `"msg":"memstats"`) {
		t.Fatalf("expected both records, got %s", s)
	}
	if !strings.Contains(s, `"captures":42`) {
		t.Fatalf("probe attrs missing: %s", s)
	}
}
