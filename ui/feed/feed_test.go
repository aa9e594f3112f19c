package feed

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/soocke/poker-pixel-bot/domain/card"
	"github.com/soocke/poker-pixel-bot/domain/decision"
	"github.com/soocke/poker-pixel-bot/domain/region"
	"github.com/soocke/poker-pixel-bot/domain/session"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubSendsLatestOnConnectAndBroadcasts(t *testing.T) {
	pub := session.NewPublisher()
	pub.Publish(session.Snapshot{Seq: 1, Status: decision.StatusPaused, Cards: map[string]card.Set{
		region.HandA: card.NewSet("AH"),
		region.HandB: card.NewSet(),
	}})
	hub := NewHub(pub, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	defer srv.Close()
	conn := dial(t, srv)

	var first Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&first))
	require.Equal(t, uint64(1), first.Seq)
	require.Equal(t, "Pause.", first.Status)
	require.Equal(t, "AH", first.Regions[region.HandA])
	require.Equal(t, "--", first.Regions[region.HandB])

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	pub.Publish(session.Snapshot{Seq: 2, Status: decision.StatusBetting, Action: decision.ActionFold, Running: true})

	var second Message
	require.NoError(t, conn.ReadJSON(&second))
	require.Equal(t, uint64(2), second.Seq)
	require.Equal(t, "Betting.", second.Status)
	require.Equal(t, "fold", second.Action)
	require.True(t, second.Running)
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub(session.NewPublisher(), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 5*time.Millisecond)
}
