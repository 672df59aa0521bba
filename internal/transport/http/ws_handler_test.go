package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/hoppa-app/chat-server/internal/proto"
)

func wsURL(env *testEnv, token string) string {
	url := strings.Replace(env.ts.URL, "http", "ws", 1) + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	return url
}

func dialWS(t *testing.T, ctx context.Context, env *testEnv, token string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, wsURL(env, token), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func sendInbound(t *testing.T, ctx context.Context, conn *websocket.Conn, kind string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s payload: %v", kind, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: kind, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", kind, err)
	}
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) proto.ReceiveMessageData {
	t.Helper()

	var outbound struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := wsjson.Read(ctx, conn, &outbound); err != nil {
		t.Fatalf("read outbound: %v", err)
	}
	if outbound.Type != proto.OutboundTypeReceiveMessage {
		t.Fatalf("unexpected outbound type: %s", outbound.Type)
	}

	var msg proto.ReceiveMessageData
	if err := json.Unmarshal(outbound.Data, &msg); err != nil {
		t.Fatalf("unmarshal message data: %v", err)
	}
	return msg
}

func TestWebSocketRejectsBadHandshake(t *testing.T) {
	env := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, token := range []string{"", "garbage"} {
		_, resp, err := websocket.Dial(ctx, wsURL(env, token), nil)
		if err == nil {
			t.Fatalf("token %q: expected dial to fail", token)
		}
		if resp != nil && resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("token %q: expected status 401, got %d", token, resp.StatusCode)
		}
	}
}

func TestWebSocketJoinAndExchange(t *testing.T) {
	env := startTestServer(t)

	aliceToken := registerUser(t, env, "alice") // id 1
	bobToken := registerUser(t, env, "bob")     // id 2

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialWS(t, ctx, env, aliceToken)
	bob := dialWS(t, ctx, env, bobToken)

	sendInbound(t, ctx, alice, proto.InboundTypeJoinRoom, proto.JoinRoomData{Room: "1_2"})
	sendInbound(t, ctx, bob, proto.InboundTypeJoinRoom, proto.JoinRoomData{Room: "1_2"})

	// Let both joins reach the hub before sending.
	time.Sleep(50 * time.Millisecond)

	sendInbound(t, ctx, alice, proto.InboundTypeSendMessage,
		proto.SendMessageData{Room: "1_2", Message: "hello bob"})

	msg := readMessage(t, ctx, bob)
	if msg.Room != "1_2" || msg.Message != "hello bob" || msg.Sender != 1 {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.ID == 0 {
		t.Fatal("expected stored message id")
	}

	// The message was persisted before delivery, so history replays it.
	resp := doJSON(t, env, http.MethodPost, "/api/chat/history", bobToken, `{"room":"1_2"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	history := decodeBody[[]MessageResponse](t, resp)
	if len(history) != 1 || history[0].ID != msg.ID {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestRestSendReachesSocketSubscribers(t *testing.T) {
	env := startTestServer(t)

	aliceToken := registerUser(t, env, "alice") // id 1
	bobToken := registerUser(t, env, "bob")     // id 2

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bob := dialWS(t, ctx, env, bobToken)
	sendInbound(t, ctx, bob, proto.InboundTypeJoinRoom, proto.JoinRoomData{Room: "1_2"})
	time.Sleep(50 * time.Millisecond)

	resp := doJSON(t, env, http.MethodPost, "/api/chat/messages", aliceToken,
		`{"room":"1_2","message":"sent over rest"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	msg := readMessage(t, ctx, bob)
	if msg.Message != "sent over rest" || msg.Sender != 1 {
		t.Fatalf("unexpected message: %+v", msg)
	}
}
