package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/hoppa-app/chat-server/internal/core"
	"github.com/hoppa-app/chat-server/internal/room"
	"github.com/hoppa-app/chat-server/internal/store"
	"github.com/hoppa-app/chat-server/internal/store/sqlite"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	for _, name := range []string{"alice", "bob", "carol"} {
		if _, err := st.CreateUser(ctx, name, "hash", ""); err != nil {
			t.Fatalf("create user %s: %v", name, err)
		}
	}

	return New(st), st
}

func TestSendPersistsAndUpserts(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	roomID := room.CanonicalID(1, 2)

	msg, err := svc.Send(ctx, 1, roomID, "hi")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.ID == 0 {
		t.Fatal("expected assigned message id")
	}

	if _, err := svc.Send(ctx, 2, roomID, "hello back"); err != nil {
		t.Fatalf("Send reply: %v", err)
	}

	convs, err := st.ListConversations(ctx, 1)
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation row, got %d", len(convs))
	}
	if convs[0].LastMessage != "hello back" {
		t.Errorf("expected last message %q, got %q", "hello back", convs[0].LastMessage)
	}
}

func TestSendValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		sender  int64
		roomID  string
		body    string
		wantErr error
	}{
		{"empty body", 1, "1_2", "", core.ErrInvalidInput},
		{"malformed room", 1, "garbage", "hi", core.ErrInvalidInput},
		{"self room", 1, "1_1", "hi", core.ErrInvalidInput},
		{"non-participant", 3, "1_2", "hi", core.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Send(ctx, tt.sender, tt.roomID, tt.body); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestHistoryRoundTripAscending(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	roomID := room.CanonicalID(1, 2)
	bodies := []string{"m1", "m2", "m3", "m4"}
	for i, body := range bodies {
		sender := int64(1 + i%2)
		if _, err := svc.Send(ctx, sender, roomID, body); err != nil {
			t.Fatalf("Send(%q): %v", body, err)
		}
	}

	msgs, err := svc.History(ctx, 2, roomID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(msgs) != len(bodies) {
		t.Fatalf("expected %d messages, got %d", len(bodies), len(msgs))
	}
	for i, msg := range msgs {
		if msg.Body != bodies[i] {
			t.Errorf("expected %q at index %d, got %q", bodies[i], i, msg.Body)
		}
	}
}

func TestHistoryForbiddenForOutsider(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	roomID := room.CanonicalID(1, 3)
	if _, err := svc.Send(ctx, 1, roomID, "private"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	// Authenticated as 2, fetching 1_3.
	if _, err := svc.History(ctx, 2, roomID); !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestConversationsAnnotatesPartners(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Send(ctx, 1, room.CanonicalID(1, 2), "to bob"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := svc.Send(ctx, 3, room.CanonicalID(1, 3), "from carol"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	partners, err := svc.Conversations(ctx, 1)
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(partners) != 2 {
		t.Fatalf("expected 2 partners, got %d", len(partners))
	}

	byName := make(map[string]Partner)
	for _, p := range partners {
		byName[p.User.Username] = p
	}
	if p, ok := byName["bob"]; !ok || p.LastMessage != "to bob" {
		t.Errorf("unexpected bob entry: %+v", p)
	}
	if p, ok := byName["carol"]; !ok || p.LastMessage != "from carol" {
		t.Errorf("unexpected carol entry: %+v", p)
	}

	// Bob sees exactly his one conversation with alice.
	partners, err = svc.Conversations(ctx, 2)
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(partners) != 1 || partners[0].User.Username != "alice" {
		t.Fatalf("unexpected partners for bob: %+v", partners)
	}
}
