//go:build integration
// +build integration

package integration

import (
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	ws "github.com/codecrafters-dev/platform/pkg/http/ws"
)

func TestSubmissionSocketPing(t *testing.T) {
	user := seedUser(t)
	url := "ws" + strings.TrimPrefix(baseURL(), "http") + "/ws/submissions?token=" + user.AccessToken

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(ws.Message{Type: ws.TypePing, RequestID: "it-1"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg ws.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read pong: %v", err)
	}
	if msg.Type != ws.TypePong || msg.RequestID != "it-1" {
		t.Fatalf("unexpected reply: %+v", msg)
	}
}

func TestSubmissionSocketRequiresToken(t *testing.T) {
	url := "ws" + strings.TrimPrefix(baseURL(), "http") + "/ws/submissions"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake to fail without a token")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %+v", resp)
	}
}
