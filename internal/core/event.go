package core

// EventKind is a notification the hub emits to clients.
type EventKind int

const (
	// EventRoomMessage notifies clients about a stored chat message in a
	// room they are joined to.
	EventRoomMessage EventKind = iota
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Message Message
}
