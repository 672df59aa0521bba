package http

import (
	"encoding/json"

	"github.com/hoppa-app/chat-server/internal/core"
	"github.com/hoppa-app/chat-server/internal/proto"
)

// inboundToCommand maps a wire event to a hub command. A nil command
// with nil error means the event is dropped; semantic validation
// (membership, room shape) happens in the hub.
func inboundToCommand(inbound proto.Inbound) (*core.Command, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, err
		}
		return &core.Command{
			Kind: core.CommandJoinRoom,
			Room: join.Room,
		}, nil
	case proto.InboundTypeLeaveRoom:
		var leave proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &leave); err != nil {
			return nil, err
		}
		return &core.Command{
			Kind: core.CommandLeaveRoom,
			Room: leave.Room,
		}, nil
	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, err
		}
		return &core.Command{
			Kind: core.CommandSendRoomMessage,
			Room: msg.Room,
			Body: msg.Message,
		}, nil
	default:
		return nil, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRoomMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeReceiveMessage,
			Data: proto.ReceiveMessageData{
				ID:        event.Message.ID,
				Room:      event.Message.Room,
				Message:   event.Message.Body,
				Sender:    event.Message.Sender,
				CreatedAt: event.Message.CreatedAt,
			},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeReceiveMessage}
	}
}
