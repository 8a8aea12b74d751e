package ws_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/product-catalog/internal/domain/event"
	"github.com/alanyang/product-catalog/internal/transport/ws"
)

func init() { gin.SetMode(gin.TestMode) }

func newServer(t *testing.T) (*ws.Hub, *httptest.Server) {
	t.Helper()
	hub := ws.NewHub()
	r := gin.New()
	hub.Register(r.Group("/ws"))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *ws.Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Len() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	hub, srv := newServer(t)
	conn := dial(t, srv, "")
	waitForClients(t, hub, 1)

	hub.Broadcast(event.New(event.TypeProductCreated, "p-1"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got event.Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, event.TypeProductCreated, got.Type)
	assert.Equal(t, "p-1", got.EntityID)
}

func TestHub_ChannelFilter(t *testing.T) {
	hub, srv := newServer(t)
	conn := dial(t, srv, "?channel=project")
	waitForClients(t, hub, 1)

	hub.Broadcast(event.New(event.TypeProductUpdated, "p-1"))
	hub.Broadcast(event.New(event.TypeProjectCreated, "7"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got event.Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, event.TypeProjectCreated, got.Type)
}

func TestHub_UnknownChannelRejected(t *testing.T) {
	_, srv := newServer(t)
	resp, err := http.Get(srv.URL + "/ws?channel=orders")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHub_DisconnectRemovesClient(t *testing.T) {
	hub, srv := newServer(t)
	conn := dial(t, srv, "")
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}
