package dispatch

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soocke/poker-pixel-bot/domain/decision"
)

type fakePort struct {
	buf      bytes.Buffer
	writeErr error
	drains   int
	closed   bool
}

func (f *fakePort) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.buf.Write(p)
}

func (f *fakePort) Drain() error { f.drains++; return nil }
func (f *fakePort) Close() error { f.closed = true; return nil }

func TestSerialSendWritesTokenLines(t *testing.T) {
	p := &fakePort{}
	s := newSerialDispatcher("COM3", p, nil)
	ctx := context.Background()
	require.NoError(t, s.Send(ctx, decision.ActionCall))
	require.NoError(t, s.Send(ctx, decision.ActionFold))
	require.NoError(t, s.Send(ctx, decision.ActionStart))
	require.Equal(t, "call\nfold\nstart\n", p.buf.String())
	require.Equal(t, 3, p.drains)
}

func TestSerialSendFailureIsDispatchError(t *testing.T) {
	boom := errors.New("device unplugged")
	s := newSerialDispatcher("COM3", &fakePort{writeErr: boom}, nil)
	err := s.Send(context.Background(), decision.ActionCall)
	var de *DispatchError
	require.ErrorAs(t, err, &de)
	require.Equal(t, decision.ActionCall, de.Action)
	require.Equal(t, "COM3", de.Target)
	require.ErrorIs(t, err, boom)
}

func TestSerialRejectsUnknownAndClosed(t *testing.T) {
	p := &fakePort{}
	s := newSerialDispatcher("COM3", p, nil)
	require.ErrorIs(t, s.Send(context.Background(), decision.Action("raise")), ErrUnknownAction)

	require.NoError(t, s.Close())
	require.True(t, p.closed)
	require.NoError(t, s.Close())
	require.ErrorIs(t, s.Send(context.Background(), decision.ActionFold), ErrClosed)
	require.Empty(t, p.buf.String())
}

func TestSerialHonoursCancelledContext(t *testing.T) {
	p := &fakePort{}
	s := newSerialDispatcher("COM3", p, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Send(ctx, decision.ActionCall), context.Canceled)
	require.Empty(t, p.buf.String())
}

func TestOpenSerialNeedsPort(t *testing.T) {
	_, err := OpenSerial("", 0, nil)
	require.Error(t, err)
}

func TestDryRunRecords(t *testing.T) {
	d := NewDryRun(nil)
	require.NoError(t, d.Send(context.Background(), decision.ActionStart))
	require.NoError(t, d.Send(context.Background(), decision.ActionFold))
	require.Equal(t, []decision.Action{decision.ActionStart, decision.ActionFold}, d.Sent())
	require.NoError(t, d.Close())
	require.ErrorIs(t, d.Send(context.Background(), decision.ActionCall), ErrClosed)
}

func TestOpenSelectsKind(t *testing.T) {
	d, err := Open(Options{Kind: KindDryRun}, nil)
	require.NoError(t, err)
	require.IsType(t, &DryRun{}, d)

	_, err = Open(Options{Kind: "pigeon"}, nil)
	require.Error(t, err)
}

func TestParseVK(t *testing.T) {
	cases := map[string]byte{"F1": 0x70, "f3": 0x72, "F9": 0x78, "F10": 0x79, "F12": 0x7B, "r": 'R', "7": '7', "space": 0x20}
	for in, want := range cases {
		got, ok := ParseVK(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}
	_, ok := ParseVK("F13")
	require.False(t, ok)
}

func TestKeyTableFillsDefaults(t *testing.T) {
	tbl, err := keyTable(map[decision.Action]string{decision.ActionCall: "F5"})
	require.NoError(t, err)
	require.Equal(t, byte(0x74), tbl[decision.ActionCall])
	require.Equal(t, byte('F'), tbl[decision.ActionFold])
	require.Equal(t, byte('S'), tbl[decision.ActionStart])

	_, err = keyTable(map[decision.Action]string{decision.ActionFold: "??"})
	var de *DispatchError
	require.ErrorAs(t, err, &de)
}
