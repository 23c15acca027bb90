package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"propertychat/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	wsReadLimit    = 4096
	wsPongWait     = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteWait    = 5 * time.Second
	wsSendTimeout  = 10 * time.Second
)

// WSMessage is the JSON frame sent to WebSocket clients
type WSMessage struct {
	Event string `json:"event"` // message or error
	Data  any    `json:"data,omitempty"`
	TS    int64  `json:"ts"` // Unix ms
}

// wsInbound is the JSON frame a client sends to post an utterance
type wsInbound struct {
	Text string `json:"text"`
}

// ChatWSHandler runs a conversation over a WebSocket: clients send
// utterances and receive every message appended to the log
type ChatWSHandler struct {
	chat     *service.ChatService
	upgrader websocket.Upgrader
}

// NewChatWSHandler creates a WebSocket chat handler
func NewChatWSHandler(chat *service.ChatService) *ChatWSHandler {
	return &ChatWSHandler{
		chat: chat,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle handles GET /api/v1/chat/:id/ws
func (h *ChatWSHandler) Handle(c *gin.Context) {
	id := c.Param("id")
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	messages, unsubscribe := h.chat.Subscribe(id)
	defer unsubscribe()

	errCh := make(chan error, 8)
	done := make(chan struct{})

	// Reader goroutine - turns inbound frames into user turns
	go func() {
		defer close(done)
		conn.SetReadLimit(wsReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
			return nil
		})
		for {
			var in wsInbound
			if err := conn.ReadJSON(&in); err != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

			ctx, cancel := context.WithTimeout(context.Background(), wsSendTimeout)
			_, err := h.chat.Send(ctx, id, in.Text)
			cancel()
			if err != nil {
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	var writeMu sync.Mutex
	write := func(frame WSMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(frame)
	}

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-done:
			return
		case <-ticker.C:
			writeMu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				return
			}
		case err := <-errCh:
			frame := WSMessage{Event: "error", Data: gin.H{"error": err.Error()}, TS: time.Now().UnixMilli()}
			if err := write(frame); err != nil {
				return
			}
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := write(WSMessage{Event: "message", Data: msg, TS: time.Now().UnixMilli()}); err != nil {
				log.Debug().Err(err).Str("conversation_id", id).Msg("websocket write failed")
				return
			}
		}
	}
}
