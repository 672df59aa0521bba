package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hoppa-app/chat-server/internal/room"
	"github.com/hoppa-app/chat-server/internal/store"
)

// Messenger is the persistence path for sends. The hub stores a message
// through it before any broadcast; a failed store means no broadcast.
type Messenger interface {
	Send(ctx context.Context, senderID int64, roomID, body string) (*store.Message, error)
}

// PresenceNotifier receives socket lifecycle signals. The hub never
// flips presence flags itself.
type PresenceNotifier interface {
	Connected(userID int64)
	Disconnected(userID int64)
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

// Hub coordinates connected clients and their room subscriptions. All
// state is owned by the Run goroutine; the exported methods only pass
// messages to it.
type Hub struct {
	messenger Messenger
	presence  PresenceNotifier
	log       zerolog.Logger

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
	notify     chan Message

	clients map[*Client]struct{}
	rooms   map[string]*Room
}

// NewHub creates a new hub. messenger and presence may be nil in tests;
// a nil messenger drops all sends.
func NewHub(messenger Messenger, presence PresenceNotifier, logger *zerolog.Logger) *Hub {
	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}
	return &Hub{
		messenger:  messenger,
		presence:   presence,
		log:        log,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan clientCommand, 64),
		notify:     make(chan Message, 64),
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]*Room),
	}
}

// RegisterClient adds a client to the hub and starts forwarding its
// commands. The caller must close the client's Commands channel after
// UnregisterClient.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
	go func() {
		for cmd := range c.Commands {
			h.commands <- clientCommand{client: c, cmd: cmd}
		}
	}()
}

// UnregisterClient releases all room memberships of the client and
// closes its event channel.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Notify broadcasts an already-persisted message to the clients joined
// to its room. Used by the REST send path.
func (h *Hub) Notify(msg Message) {
	h.notify <- msg
}

// Run processes hub traffic until the context is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			if h.presence != nil {
				h.presence.Connected(c.UserID)
			}
			h.log.Debug().Str("client_id", c.ID).Int64("user_id", c.UserID).Msg("client registered")
		case c := <-h.unregister:
			h.removeClient(c)
		case cc := <-h.commands:
			if _, ok := h.clients[cc.client]; !ok {
				continue
			}
			h.handleCommand(ctx, cc.client, cc.cmd)
		case msg := <-h.notify:
			h.broadcast(msg)
		}
	}
}

func (h *Hub) removeClient(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)

	for name := range c.Rooms {
		if r, ok := h.rooms[name]; ok {
			r.RemoveClient(c)
			if r.Empty() {
				delete(h.rooms, name)
			}
		}
	}

	close(c.Events)
	if h.presence != nil {
		h.presence.Disconnected(c.UserID)
	}
	h.log.Debug().Str("client_id", c.ID).Int64("user_id", c.UserID).Msg("client unregistered")
}

// handleCommand dispatches one client command. Validation failures are
// silent drops: no membership change, no event back to the client.
func (h *Hub) handleCommand(ctx context.Context, c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandJoinRoom:
		h.handleJoin(c, cmd.Room)
	case CommandLeaveRoom:
		h.handleLeave(c, cmd.Room)
	case CommandSendRoomMessage:
		h.handleSend(ctx, c, cmd)
	}
}

func (h *Hub) handleJoin(c *Client, roomID string) {
	if !h.authorized(c, roomID) {
		h.log.Debug().Str("client_id", c.ID).Str("room", roomID).Msg("join dropped")
		return
	}

	r, ok := h.rooms[roomID]
	if !ok {
		r = NewRoom(roomID)
		h.rooms[roomID] = r
	}
	r.AddClient(c)
	c.Rooms[roomID] = struct{}{}
}

func (h *Hub) handleLeave(c *Client, roomID string) {
	r, ok := h.rooms[roomID]
	if !ok {
		return
	}
	r.RemoveClient(c)
	delete(c.Rooms, roomID)
	if r.Empty() {
		delete(h.rooms, roomID)
	}
}

func (h *Hub) handleSend(ctx context.Context, c *Client, cmd *Command) {
	if cmd.Room == "" || cmd.Body == "" {
		return
	}
	if !h.authorized(c, cmd.Room) {
		h.log.Debug().Str("client_id", c.ID).Str("room", cmd.Room).Msg("send dropped")
		return
	}
	if h.messenger == nil {
		return
	}

	stored, err := h.messenger.Send(ctx, c.UserID, cmd.Room, cmd.Body)
	if err != nil {
		// Persist failed: nothing is broadcast.
		h.log.Warn().Err(err).Str("room", cmd.Room).Int64("user_id", c.UserID).Msg("persist message")
		return
	}

	h.broadcast(Message{
		ID:        stored.ID,
		Room:      stored.RoomID,
		Sender:    stored.SenderID,
		Body:      stored.Body,
		CreatedAt: stored.CreatedAt,
	})
}

// authorized reports whether the client's bound identity is one of the
// two participants encoded in roomID. Self-pair rooms are rejected
// here, not by the room namer.
func (h *Hub) authorized(c *Client, roomID string) bool {
	a, b, err := room.Participants(roomID)
	if err != nil {
		return false
	}
	if a == b {
		return false
	}
	return c.UserID == a || c.UserID == b
}

func (h *Hub) broadcast(msg Message) {
	r, ok := h.rooms[msg.Room]
	if !ok {
		return
	}
	r.Broadcast(&Event{Kind: EventRoomMessage, Message: msg})
}
