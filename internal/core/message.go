package core

import "time"

// Message is the domain model for a chat message as broadcast to
// connected clients. ID and CreatedAt come from the stored row.
type Message struct {
	ID        int64
	Room      string
	Sender    int64
	Body      string
	CreatedAt time.Time
}
