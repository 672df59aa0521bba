// Package messaging implements the send and history paths shared by the
// REST gateway and the realtime hub. Persistence is the source of
// truth: a send stores the message and updates the pair's last-message
// pointer before anything is broadcast.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/hoppa-app/chat-server/internal/core"
	"github.com/hoppa-app/chat-server/internal/room"
	"github.com/hoppa-app/chat-server/internal/store"
)

// Partner is one entry of a user's conversation list: the other
// participant with presence fields plus the cached last message.
type Partner struct {
	User        *store.User
	RoomID      string
	LastMessage string
}

// Service provides messaging business logic.
type Service struct {
	store store.Store
}

// New creates a new messaging service.
func New(st store.Store) *Service {
	return &Service{
		store: st,
	}
}

// authorize decomposes roomID and checks the caller against its two
// participants. Self-pair rooms are invalid input, not forbidden.
func authorize(callerID int64, roomID string) error {
	a, b, err := room.Participants(roomID)
	if err != nil {
		return fmt.Errorf("room %q: %w", roomID, core.ErrInvalidInput)
	}
	if a == b {
		return fmt.Errorf("self room %q: %w", roomID, core.ErrInvalidInput)
	}
	if callerID != a && callerID != b {
		return fmt.Errorf("user %d in room %q: %w", callerID, roomID, core.ErrForbidden)
	}
	return nil
}

// Send validates, persists one message and upserts the denormalized
// last-message pointer for the pair. The stored message (with its
// assigned id and timestamp) is returned for broadcast.
func (s *Service) Send(ctx context.Context, senderID int64, roomID, body string) (*store.Message, error) {
	if body == "" {
		return nil, fmt.Errorf("empty message: %w", core.ErrInvalidInput)
	}
	if err := authorize(senderID, roomID); err != nil {
		return nil, err
	}

	msg := &store.Message{
		RoomID:    roomID,
		SenderID:  senderID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}

	// The pointer race between concurrent senders is accepted: it is
	// display-only staleness, history stays authoritative.
	a, b, _ := room.Participants(roomID)
	if err := s.store.UpsertConversation(ctx, roomID, a, b, body); err != nil {
		return nil, fmt.Errorf("upsert conversation: %w", err)
	}

	return msg, nil
}

// History returns all messages of the room in ascending id order,
// provided the caller is one of its two participants.
func (s *Service) History(ctx context.Context, callerID int64, roomID string) ([]*store.Message, error) {
	if err := authorize(callerID, roomID); err != nil {
		return nil, err
	}

	msgs, err := s.store.ListMessages(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// Conversations returns, for each pair the caller has a conversation
// row with, the other participant annotated with the cached last
// message. Order is unspecified.
func (s *Service) Conversations(ctx context.Context, callerID int64) ([]Partner, error) {
	convs, err := s.store.ListConversations(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	if len(convs) == 0 {
		return nil, nil
	}

	otherIDs := make([]int64, 0, len(convs))
	byOther := make(map[int64]*store.Conversation, len(convs))
	for _, c := range convs {
		other := c.User1ID
		if other == callerID {
			other = c.User2ID
		}
		otherIDs = append(otherIDs, other)
		byOther[other] = c
	}

	users, err := s.store.GetUsersByIDs(ctx, otherIDs)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	partners := make([]Partner, 0, len(users))
	for _, u := range users {
		c, ok := byOther[u.ID]
		if !ok {
			continue
		}
		partners = append(partners, Partner{
			User:        u,
			RoomID:      c.RoomID,
			LastMessage: c.LastMessage,
		})
	}

	return partners, nil
}
