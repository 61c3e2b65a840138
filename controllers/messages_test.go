package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/CPU-commits/Intranet_BCourses/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newMessagesServer(t *testing.T) (*httptest.Server, *services.MessageHub) {
	hub := services.NewMessageHub(nil, zap.NewNop())
	controller := NewMessagesController(hub, []string{"http://localhost:8080"}, zap.NewNop())
	router := gin.New()
	router.GET("/ws", controller.Connect)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, hub
}

func dial(t *testing.T, server *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial(url, header)
}

func TestMessagesController_Broadcast(t *testing.T) {
	server, hub := newMessagesServer(t)

	sender, _, err := dial(t, server, "http://localhost:8080")
	require.NoError(t, err)
	defer sender.Close()
	receiver, _, err := dial(t, server, "")
	require.NoError(t, err)
	defer receiver.Close()
	require.Eventually(t, func() bool {
		return hub.Count() == 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte("hello")))
	for _, conn := range []*websocket.Conn{sender, receiver} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		messageType, message, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, messageType)
		assert.Equal(t, "hello", string(message))
	}

	sender.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	assert.Eventually(t, func() bool {
		return hub.Count() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMessagesController_RejectsOrigin(t *testing.T) {
	server, hub := newMessagesServer(t)

	_, resp, err := dial(t, server, "http://evil.example")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, hub.Count())
}
