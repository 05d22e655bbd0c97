package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/logging"
)

func dialTestHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(logging.NewNop(), nil)
	router := gin.New()
	router.GET("/stream", hub.HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	return hub, conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	var frame map[string]interface{}
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestConnectReceivesWelcome(t *testing.T) {
	_, conn := dialTestHub(t)

	frame := readFrame(t, conn)
	assert.Equal(t, EventSystem, frame["type"])
	assert.Contains(t, frame["message"], "Connected")
}

func TestPingPong(t *testing.T) {
	_, conn := dialTestHub(t)
	readFrame(t, conn) // welcome

	require.NoError(t, conn.WriteJSON(Message{Type: "ping"}))
	frame := readFrame(t, conn)
	assert.Equal(t, "pong", frame["type"])
}

func TestUnknownMessageType(t *testing.T) {
	_, conn := dialTestHub(t)
	readFrame(t, conn) // welcome

	require.NoError(t, conn.WriteJSON(Message{Type: "bogus"}))
	frame := readFrame(t, conn)
	assert.Equal(t, "error", frame["type"])
	assert.Equal(t, "unknown message type", frame["message"])
}

func TestBroadcast(t *testing.T) {
	hub, conn := dialTestHub(t)
	readFrame(t, conn) // welcome, also proves registration

	hub.Broadcast(Event{
		Type:    EventPage,
		RunID:   "run_01",
		URL:     "https://example.org/cities?page=2",
		Page:    2,
		Records: 50,
	})

	frame := readFrame(t, conn)
	assert.Equal(t, EventPage, frame["type"])
	assert.Equal(t, "run_01", frame["run_id"])
	assert.Equal(t, float64(2), frame["page"])
	assert.Greater(t, frame["timestamp"], float64(0))
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	hub, first := dialTestHub(t)
	readFrame(t, first)

	// Second subscriber on the same hub.
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/stream", hub.HandleConnection)
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	second, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer second.Close()
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	readFrame(t, second)

	hub.Broadcast(Event{Type: EventRunComplete, RunID: "run_02"})

	assert.Equal(t, EventRunComplete, readFrame(t, first)["type"])
	assert.Equal(t, EventRunComplete, readFrame(t, second)["type"])
}

func TestClientsLifecycle(t *testing.T) {
	hub, conn := dialTestHub(t)
	readFrame(t, conn)

	assert.Equal(t, 1, hub.Clients())

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 },
		2*time.Second, 10*time.Millisecond)
}
