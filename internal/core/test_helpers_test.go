package core

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hoppa-app/chat-server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	// Give the hub time to misbehave.
	time.Sleep(100 * time.Millisecond)
	select {
	case ev := <-ch:
		t.Fatalf("expected no event, got %+v", ev)
	default:
	}
}

// fakeMessenger records sends and assigns sequential ids, standing in
// for the messaging service.
type fakeMessenger struct {
	mu     sync.Mutex
	nextID int64
	sent   []*store.Message
}

func (f *fakeMessenger) Send(_ context.Context, senderID int64, roomID, body string) (*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	msg := &store.Message{
		ID:        f.nextID,
		RoomID:    roomID,
		SenderID:  senderID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	f.sent = append(f.sent, msg)
	return msg, nil
}

func (f *fakeMessenger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// recordingPresence counts lifecycle signals from the hub.
type recordingPresence struct {
	connects    atomic.Int64
	disconnects atomic.Int64
}

func (p *recordingPresence) Connected(int64)    { p.connects.Add(1) }
func (p *recordingPresence) Disconnected(int64) { p.disconnects.Add(1) }
