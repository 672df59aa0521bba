package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom subscribes the client to a room it participates in.
	CommandJoinRoom CommandKind = iota
	// CommandLeaveRoom unsubscribes the client from a room.
	CommandLeaveRoom
	// CommandSendRoomMessage persists and delivers a chat message.
	CommandSendRoomMessage
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	Room string
	Body string
}
