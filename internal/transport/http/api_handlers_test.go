package http

import (
	"net/http"
	"testing"
)

func TestRegisterEndpoint(t *testing.T) {
	env := startTestServer(t)

	resp := doJSON(t, env, http.MethodPost, "/api/register", "",
		`{"username":"alice","password":"password123"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.StatusCode)
	}
	auth := decodeBody[AuthResponse](t, resp)
	if auth.Token == "" {
		t.Fatal("expected a token")
	}

	// Duplicate username.
	resp = doJSON(t, env, http.MethodPost, "/api/register", "",
		`{"username":"alice","password":"password123"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.StatusCode)
	}

	// Too-short password fails binding.
	resp = doJSON(t, env, http.MethodPost, "/api/register", "",
		`{"username":"bob","password":"nope"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
}

func TestLoginEndpoint(t *testing.T) {
	env := startTestServer(t)

	registerUser(t, env, "alice")

	resp := doJSON(t, env, http.MethodPost, "/api/login", "",
		`{"username":"alice","password":"password123"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	auth := decodeBody[AuthResponse](t, resp)
	if auth.Token == "" {
		t.Fatal("expected a token")
	}

	resp = doJSON(t, env, http.MethodPost, "/api/login", "",
		`{"username":"alice","password":"wrong-password"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.StatusCode)
	}
}

func TestChatEndpointsRejectBadTokens(t *testing.T) {
	env := startTestServer(t)

	registerUser(t, env, "alice")

	for _, token := range []string{"", "garbage", "eyJhbGciOiJIUzI1NiJ9.e30.x"} {
		resp := doJSON(t, env, http.MethodPost, "/api/chat/history", token, `{"room":"1_2"}`)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("token %q: expected status 401, got %d", token, resp.StatusCode)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := startTestServer(t)

	resp, err := env.ts.Client().Get(env.ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}
