package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/listeningjourney/engine"
)

func readFrame(t *testing.T, conn *websocket.Conn) engine.FrameState {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	var fs engine.FrameState
	require.NoError(t, json.Unmarshal(b, &fs))
	return fs
}

func TestHubStreamsFrames(t *testing.T) {
	h := NewHub()
	h.Publish(engine.FrameState{Frame: 1, CurrentTime: 0.5})

	ts := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer ts.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), readFrame(t, conn).Frame, "latest frame first")
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)

	h.Publish(engine.FrameState{Frame: 2, IsPlaying: true})
	fs := readFrame(t, conn)
	assert.Equal(t, uint64(2), fs.Frame)
	assert.True(t, fs.IsPlaying)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return h.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubDropsSlowClient(t *testing.T) {
	h := NewHub()
	c := &client{send: make(chan []byte, 1)}
	h.clients[c] = struct{}{}

	h.Publish(engine.FrameState{Frame: 1})
	h.Publish(engine.FrameState{Frame: 2})

	assert.Equal(t, 0, h.Clients())
	_, ok := <-c.send
	assert.True(t, ok, "buffered frame still delivered")
	_, ok = <-c.send
	assert.False(t, ok, "send channel closed")

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, uint64(2), last.Frame)
}
