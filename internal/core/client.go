package core

// Client is a single socket connection as seen by the hub. UserID is
// bound exactly once at handshake time and never reassigned; every
// authorization check reads it.
type Client struct {
	ID       string
	UserID   int64
	Commands chan *Command
	Events   chan *Event
	Rooms    map[string]struct{}
}

// NewClient constructs a client with initialized channels. userID must
// be the identity resolved during the socket handshake.
func NewClient(id string, userID int64) *Client {
	return &Client{
		ID:       id,
		UserID:   userID,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 8),
		Rooms:    make(map[string]struct{}),
	}
}
