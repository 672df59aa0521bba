package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoppa-app/chat-server/internal/auth"
	"github.com/hoppa-app/chat-server/internal/config"
	"github.com/hoppa-app/chat-server/internal/core"
	"github.com/hoppa-app/chat-server/internal/presence"
	"github.com/hoppa-app/chat-server/internal/service/messaging"
	"github.com/hoppa-app/chat-server/internal/store"
	"github.com/hoppa-app/chat-server/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite store with schema applied.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return st
}

// createTestAuthService creates an auth service for testing.
func createTestAuthService(t *testing.T, st store.Store, jwtSecret string) *auth.Service {
	t.Helper()

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(jwtSecret),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	return auth.NewService(st, jwtConfig)
}

type testEnv struct {
	store       store.Store
	authService *auth.Service
	tracker     *presence.Tracker
	hub         *core.Hub
	ts          *httptest.Server
}

// startTestServer spins up the full HTTP stack against an in-memory store.
func startTestServer(t *testing.T) *testEnv {
	t.Helper()

	testStore := createTestStore(t)
	authService := createTestAuthService(t, testStore, "test-secret")
	messenger := messaging.New(testStore)
	tracker := presence.New(testStore, time.Minute, time.Minute, nil)

	disabledLogger := zerolog.New(nil)
	hub := core.NewHub(messenger, tracker, &disabledLogger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.JWTSecret = "test-secret"
	cfg.SearchLimit = 25

	server := NewServer(hub, authService, messenger, tracker, testStore, &cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{
		store:       testStore,
		authService: authService,
		tracker:     tracker,
		hub:         hub,
		ts:          ts,
	}
}

// registerUser creates an account and returns its token. User ids are
// assigned sequentially starting at 1, in registration order.
func registerUser(t *testing.T, env *testEnv, username string) string {
	t.Helper()

	token, err := env.authService.Register(context.Background(), username, "password123", "")
	if err != nil {
		t.Fatalf("failed to register %s: %v", username, err)
	}
	return token
}
