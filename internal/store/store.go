package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// User represents a user in the system. IsOnline and LastSeen are
// mutated only by the presence tracker.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	AvatarURL    string
	IsOnline     bool
	LastSeen     time.Time
	CreatedAt    time.Time
}

// Message is a persisted chat message. Immutable once stored; within a
// room, display order is ascending id.
type Message struct {
	ID        int64
	RoomID    string
	SenderID  int64
	Body      string
	CreatedAt time.Time
}

// Conversation is the lazily-materialized row for a user pair, holding
// the denormalized last-message pointer used by list views.
type Conversation struct {
	RoomID      string
	User1ID     int64
	User2ID     int64
	LastMessage string
	UpdatedAt   time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash, avatarURL string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// GetUsersByIDs retrieves users for a set of IDs.
	GetUsersByIDs(ctx context.Context, ids []int64) ([]*User, error)

	// SearchUsers searches users by username substring, case-insensitive,
	// capped at limit.
	SearchUsers(ctx context.Context, query string, limit int) ([]*User, error)

	// SetPresence updates a user's online flag and last-seen timestamp.
	SetPresence(ctx context.Context, userID int64, online bool, lastSeen time.Time) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message and fills in its assigned ID.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListMessages retrieves all messages for a room in ascending id order.
	ListMessages(ctx context.Context, roomID string) ([]*Message, error)
}

// ConversationStore handles the denormalized per-pair rows.
type ConversationStore interface {
	// UpsertConversation updates the last-message pointer for the pair,
	// inserting the row if it does not exist yet. Last writer wins.
	UpsertConversation(ctx context.Context, roomID string, user1ID, user2ID int64, lastMessage string) error

	// ListConversations returns every conversation row the user is a
	// participant of. Order is unspecified.
	ListConversations(ctx context.Context, userID int64) ([]*Conversation, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore
	ConversationStore

	// Close closes the underlying database connection.
	Close() error
}
