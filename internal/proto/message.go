package proto

import (
	"encoding/json"
	"time"
)

// Inbound is the envelope for events coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinRoom    = "join_room"
	InboundTypeLeaveRoom   = "leave_room"
	InboundTypeSendMessage = "send_message"

	OutboundTypeReceiveMessage = "receive_message"
)

// JoinRoomData requests to join (or leave) a specific room.
type JoinRoomData struct {
	Room string `json:"room"`
}

// SendMessageData is a chat message from the client.
type SendMessageData struct {
	Room    string `json:"room"`
	Message string `json:"message"`
}

// Outbound is the envelope for events sent to the client. No error or
// acknowledgment envelopes exist: invalid events are dropped.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ReceiveMessageData is the broadcast payload for a stored message.
type ReceiveMessageData struct {
	ID        int64     `json:"id"`
	Room      string    `json:"room"`
	Message   string    `json:"message"`
	Sender    int64     `json:"sender"`
	CreatedAt time.Time `json:"created_at"`
}
