package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hoppa-app/chat-server/internal/core"
	"github.com/hoppa-app/chat-server/internal/presence"
	"github.com/hoppa-app/chat-server/internal/service/messaging"
	"github.com/hoppa-app/chat-server/internal/store"
)

// minSearchLength is the shortest query the search endpoint will run;
// shorter queries return an empty list to tolerate incremental typing.
const minSearchLength = 3

// ChatHandlers provides HTTP handlers for the messaging gateway.
type ChatHandlers struct {
	messenger   *messaging.Service
	tracker     *presence.Tracker
	hub         *core.Hub
	store       store.UserStore
	searchLimit int
	log         *zerolog.Logger
}

// NewChatHandlers creates a new chat handlers instance.
func NewChatHandlers(messenger *messaging.Service, tracker *presence.Tracker, hub *core.Hub, st store.UserStore, searchLimit int, logger *zerolog.Logger) *ChatHandlers {
	return &ChatHandlers{
		messenger:   messenger,
		tracker:     tracker,
		hub:         hub,
		store:       st,
		searchLimit: searchLimit,
		log:         logger,
	}
}

// PartnerResponse is one conversation-list entry.
type PartnerResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	AvatarURL   string    `json:"avatar_url"`
	IsOnline    bool      `json:"is_online"`
	LastSeen    time.Time `json:"last_seen"`
	LastMessage string    `json:"last_message"`
	Room        string    `json:"room"`
}

// UserResponse represents a user in search results.
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// MessageResponse represents a stored message.
type MessageResponse struct {
	ID        int64     `json:"id"`
	Room      string    `json:"room"`
	Message   string    `json:"message"`
	Sender    int64     `json:"sender"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryRequest is the room-history request body.
type HistoryRequest struct {
	Room string `json:"room" binding:"required"`
}

// SendMessageRequest is the send-message request body.
type SendMessageRequest struct {
	Room    string `json:"room" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// SuccessResponse acknowledges a persisted message.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// Conversations lists the caller's conversation partners with presence
// and last-message annotations. Order is unspecified.
// GET /api/chat/conversations
func (h *ChatHandlers) Conversations(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
		return
	}

	partners, err := h.messenger.Conversations(c.Request.Context(), uid)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to list conversations")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]PartnerResponse, 0, len(partners))
	for _, p := range partners {
		response = append(response, PartnerResponse{
			ID:          p.User.ID,
			Username:    p.User.Username,
			AvatarURL:   p.User.AvatarURL,
			IsOnline:    p.User.IsOnline,
			LastSeen:    p.User.LastSeen,
			LastMessage: p.LastMessage,
			Room:        p.RoomID,
		})
	}

	c.JSON(http.StatusOK, response)
}

// SearchUsers searches accounts by partial name, case-insensitively.
// Queries shorter than the minimum return an empty list, not an error.
// GET /api/chat/search?q=query
func (h *ChatHandlers) SearchUsers(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if len(query) < minSearchLength {
		c.JSON(http.StatusOK, []UserResponse{})
		return
	}

	users, err := h.store.SearchUsers(c.Request.Context(), query, h.searchLimit)
	if err != nil {
		h.log.Error().Err(err).Str("query", query).Msg("failed to search users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		if u.ID == uid {
			continue
		}
		response = append(response, UserResponse{
			ID:        u.ID,
			Username:  u.Username,
			AvatarURL: u.AvatarURL,
		})
	}

	c.JSON(http.StatusOK, response)
}

// History returns all messages of a room in ascending id order for
// deterministic replay, provided the caller is a participant.
// POST /api/chat/history
func (h *ChatHandlers) History(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
		return
	}

	var req HistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msgs, err := h.messenger.History(c.Request.Context(), uid, req.Room)
	if err != nil {
		h.respondDomainError(c, err, uid, req.Room)
		return
	}

	response := make([]MessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		response = append(response, MessageResponse{
			ID:        msg.ID,
			Room:      msg.RoomID,
			Message:   msg.Body,
			Sender:    msg.SenderID,
			CreatedAt: msg.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, response)
}

// SendMessage persists one message, updates the pair's last-message
// pointer and then broadcasts the stored message to connected peers.
// POST /api/chat/messages
func (h *ChatHandlers) SendMessage(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.messenger.Send(c.Request.Context(), uid, req.Room, req.Message)
	if err != nil {
		h.respondDomainError(c, err, uid, req.Room)
		return
	}

	// Broadcast only after the persist succeeded.
	h.hub.Notify(core.Message{
		ID:        msg.ID,
		Room:      msg.RoomID,
		Sender:    msg.SenderID,
		Body:      msg.Body,
		CreatedAt: msg.CreatedAt,
	})

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// Heartbeat marks the caller online and refreshes last-seen. A call
// without a valid credential is a no-op.
// POST /api/chat/heartbeat
func (h *ChatHandlers) Heartbeat(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.tracker.Heartbeat(c.Request.Context(), uid); err != nil {
		h.log.Warn().Err(err).Int64("user_id", uid).Msg("heartbeat failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ChatHandlers) respondDomainError(c *gin.Context, err error, uid int64, roomID string) {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room format"})
	case errors.Is(err, core.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	default:
		h.log.Error().Err(err).Int64("user_id", uid).Str("room", roomID).Msg("chat request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
