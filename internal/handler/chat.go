package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"propertychat/internal/model"
	"propertychat/internal/service"

	"github.com/gin-gonic/gin"
)

// streamKeepAlive is how often an idle SSE stream sends a comment line
const streamKeepAlive = 15 * time.Second

// ChatHandler handles conversation HTTP requests
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Starters handles GET /api/v1/chat/starters
func (h *ChatHandler) Starters(c *gin.Context) {
	c.JSON(http.StatusOK, model.StartersResponse{Questions: service.StarterQuestions})
}

// Create handles POST /api/v1/chat
func (h *ChatHandler) Create(c *gin.Context) {
	state, err := h.chat.Create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conversationResponse(state))
}

// Send handles POST /api/v1/chat/:id/messages
func (h *ChatHandler) Send(c *gin.Context) {
	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	id := c.Param("id")
	result, err := h.chat.Send(c.Request.Context(), id, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if result.Deferred {
		status = http.StatusAccepted
	}
	c.JSON(status, model.SendMessageResponse{
		ConversationID: id,
		UserMessage:    result.UserMessage,
		Reply:          result.Reply,
		Stage:          result.Stage,
		Deferred:       result.Deferred,
	})
}

// Messages handles GET /api/v1/chat/:id/messages
func (h *ChatHandler) Messages(c *gin.Context) {
	state, err := h.chat.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conversationResponse(state))
}

// Preferences handles GET /api/v1/chat/:id/preferences
func (h *ChatHandler) Preferences(c *gin.Context) {
	state, err := h.chat.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.PreferencesResponse{
		ConversationID: state.ID,
		Preferences:    state.Preferences,
		Stage:          state.Preferences.Stage(),
	})
}

// Reset handles DELETE /api/v1/chat/:id
func (h *ChatHandler) Reset(c *gin.Context) {
	state, err := h.chat.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conversationResponse(state))
}

// Stream handles GET /api/v1/chat/:id/stream - SSE of delivered messages
func (h *ChatHandler) Stream(c *gin.Context) {
	id := c.Param("id")

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	messages, unsubscribe := h.chat.Subscribe(id)
	defer unsubscribe()

	sendSSE(c, "start", gin.H{"conversation_id": id})
	flusher.Flush()

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()
		case msg, ok := <-messages:
			if !ok {
				return
			}
			sendSSE(c, "message", msg)
			flusher.Flush()
		}
	}
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	} else {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
	}
}

func conversationResponse(state *model.ConversationState) model.ConversationResponse {
	return model.ConversationResponse{
		ConversationID: state.ID,
		Messages:       state.Messages,
		Preferences:    state.Preferences,
		Stage:          state.Preferences.Stage(),
	}
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrListingNotFound),
		errors.Is(err, service.ErrAreaNotFound),
		errors.Is(err, service.ErrSlotNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSlotFull):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
