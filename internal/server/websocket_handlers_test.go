package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"vidtube/internal/notifications"
	"vidtube/internal/testutil"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebsocketFeedDeliversNewSubscriber(t *testing.T) {
	ts := newTestServer(t)
	alice := testutil.CreateUser(t, ts.db, "alice")
	carol := testutil.CreateUser(t, ts.db, "carol")

	ts.srv.StartBackground()
	t.Cleanup(ts.srv.shutdownFn)
	require.Eventually(t, func() bool { return ts.mr.PubSubNumPat() > 0 },
		2*time.Second, 10*time.Millisecond, "notification wiring never subscribed")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = ts.app.Listener(ln) }()
	t.Cleanup(func() { _ = ts.app.Shutdown() })

	url := fmt.Sprintf("ws://%s/api/v1/ws?token=%s", ln.Addr(), ts.token(t, alice))
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()

	require.Eventually(t, func() bool { return ts.srv.hub.Connections(alice.ID) == 1 },
		2*time.Second, 10*time.Millisecond)

	status, _ := ts.call(t, http.MethodPost, fmt.Sprintf("/api/v1/subscriptions/channel/%d", alice.ID), ts.token(t, carol), nil)
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev notifications.Event
	require.NoError(t, json.Unmarshal(raw, &ev), "payload: %s", raw)
	assert.Equal(t, notifications.EventSubscribed, ev.Type)
	assert.Equal(t, carol.ID, ev.ActorID)
}

func TestWebsocketDialRejectsMissingToken(t *testing.T) {
	ts := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = ts.app.Listener(ln) }()
	t.Cleanup(func() { _ = ts.app.Shutdown() })

	_, resp, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/api/v1/ws", ln.Addr()), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
