package controllers

import (
	"net/http"
	"time"

	"github.com/CPU-commits/Intranet_BCourses/funct"
	"github.com/CPU-commits/Intranet_BCourses/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	WRITE_WAIT       = 10 * time.Second
	MAX_MESSAGE_SIZE = 4096
)

type MessagesController struct {
	hub      *services.MessageHub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// Connect godoc
// @Summary Messages channel
// @Desc    Websocket relay, every text frame is broadcast to all clients
// @Tags    messages
// @Success 101
// @Router  /messages/ws [get]
func (m *MessagesController) Connect(c *gin.Context) {
	conn, err := m.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		m.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	client := m.hub.Register()
	go m.write(conn, client)
	m.read(conn, client)
}

func (m *MessagesController) read(conn *websocket.Conn, client *services.HubClient) {
	defer m.hub.Unregister(client)

	conn.SetReadLimit(MAX_MESSAGE_SIZE)
	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Warn("websocket read", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		if err := m.hub.Publish(message); err != nil {
			m.logger.Error("publish message", zap.Error(err))
		}
	}
}

// Single writer per connection
func (m *MessagesController) write(conn *websocket.Conn, client *services.HubClient) {
	defer conn.Close()

	for message := range client.Send {
		conn.SetWriteDeadline(time.Now().Add(WRITE_WAIT))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			m.logger.Warn("websocket write", zap.Error(err))
			return
		}
	}
	conn.SetWriteDeadline(time.Now().Add(WRITE_WAIT))
	conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
}

func NewMessagesController(
	hub *services.MessageHub,
	allowedOrigins []string,
	logger *zap.Logger,
) *MessagesController {
	return &MessagesController{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return funct.Some(allowedOrigins, func(allowed string) bool {
					return allowed == origin
				})
			},
		},
	}
}
