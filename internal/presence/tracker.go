// Package presence owns the online flag and last-seen timestamp per
// user. It is the only writer of those fields: the hub reports raw
// socket lifecycle, clients send periodic heartbeats, and the tracker
// decides what they mean.
package presence

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoppa-app/chat-server/internal/store"
)

type state struct {
	conns    int
	lastBeat time.Time
	// pendingSince is set when the last connection dropped; it marks the
	// user "possibly offline" until the sweeper decides.
	pendingSince time.Time
}

// Tracker maintains presence driven by heartbeats and connect/disconnect
// signals. Socket teardown alone never flips the flag: demotion happens
// only when no heartbeat arrives within the grace window.
type Tracker struct {
	store store.UserStore
	log   zerolog.Logger
	grace time.Duration
	sweep time.Duration

	mu     sync.Mutex
	states map[int64]*state
}

// New creates a tracker. grace is how long a disconnected user keeps
// their online flag without a heartbeat; sweep is the demotion check
// interval.
func New(userStore store.UserStore, grace, sweep time.Duration, logger *zerolog.Logger) *Tracker {
	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}
	return &Tracker{
		store:  userStore,
		log:    log,
		grace:  grace,
		sweep:  sweep,
		states: make(map[int64]*state),
	}
}

func (t *Tracker) touch(userID int64, now time.Time) *state {
	st, ok := t.states[userID]
	if !ok {
		st = &state{}
		t.states[userID] = st
	}
	if now.After(st.lastBeat) {
		st.lastBeat = now
	}
	return st
}

// Heartbeat marks the user online and refreshes last-seen. Last-seen
// never regresses.
func (t *Tracker) Heartbeat(ctx context.Context, userID int64) error {
	now := time.Now().UTC()

	t.mu.Lock()
	// Refresh activity only; a possibly-offline mark stays until a
	// reconnect, so the demotion window restarts from this beat.
	st := t.touch(userID, now)
	seen := st.lastBeat
	t.mu.Unlock()

	return t.store.SetPresence(ctx, userID, true, seen)
}

// Connected records a new socket for the user and promotes them online.
func (t *Tracker) Connected(userID int64) {
	now := time.Now().UTC()

	t.mu.Lock()
	st := t.touch(userID, now)
	st.conns++
	st.pendingSince = time.Time{}
	seen := st.lastBeat
	t.mu.Unlock()

	if err := t.store.SetPresence(context.Background(), userID, true, seen); err != nil {
		t.log.Warn().Err(err).Int64("user_id", userID).Msg("set presence online")
	}
}

// Disconnected records a socket teardown. When the last connection is
// gone the user becomes possibly offline; only the sweeper demotes.
func (t *Tracker) Disconnected(userID int64) {
	now := time.Now().UTC()

	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.touch(userID, time.Time{})
	if st.conns > 0 {
		st.conns--
	}
	if st.conns == 0 {
		st.pendingSince = now
	}
}

// Run sweeps for stale users until the context is canceled.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.demoteStale(ctx)
		}
	}
}

func (t *Tracker) demoteStale(ctx context.Context) {
	now := time.Now().UTC()

	type demotion struct {
		userID int64
		seen   time.Time
	}
	var stale []demotion

	t.mu.Lock()
	for userID, st := range t.states {
		if st.conns > 0 || st.pendingSince.IsZero() {
			continue
		}
		if now.Sub(st.lastBeat) <= t.grace {
			continue
		}
		stale = append(stale, demotion{userID: userID, seen: st.lastBeat})
		delete(t.states, userID)
	}
	t.mu.Unlock()

	for _, d := range stale {
		if err := t.store.SetPresence(ctx, d.userID, false, d.seen); err != nil {
			t.log.Warn().Err(err).Int64("user_id", d.userID).Msg("set presence offline")
			continue
		}
		t.log.Debug().Int64("user_id", d.userID).Msg("presence demoted")
	}
}
