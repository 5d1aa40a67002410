package revoltgo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"revoltgo/pkg/revolt"
)

var upgrader = websocket.Upgrader{}

const testBootstrap = `{
	"type":"Ready",
	"users":[{"_id":"user-self","username":"selfbot","relationship":"User"}],
	"servers":[{"_id":"server-1","owner":"user-self","name":"home","channels":["ch-general"]}],
	"channels":[{"_id":"ch-general","channel_type":"TextChannel","server":"server-1","name":"general"}],
	"members":[]
}`

// newTestBackend runs a websocket endpoint that authenticates one session,
// replays the bootstrap snapshot plus extra records, and a REST endpoint
// that advertises it.
func newTestBackend(t *testing.T, extraRecords ...string) (restURL string) {
	t.Helper()

	wsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		conn.WriteJSON(map[string]string{"type": "Authenticated"})
		conn.WriteMessage(websocket.TextMessage, []byte(testBootstrap))
		for _, record := range extraRecords {
			conn.WriteMessage(websocket.TextMessage, []byte(record))
		}

		for {
			conn.SetReadDeadline(time.Now().Add(30 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(wsServer.Close)

	websocketURL := "ws" + strings.TrimPrefix(wsServer.URL, "http")
	restServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/":
			json.NewEncoder(w).Encode(revolt.APIInfo{
				Version:      "0.5.1",
				WebsocketURL: websocketURL,
			})
		case r.Method == http.MethodPost && r.URL.Path == "/channels/ch-general/messages":
			var body struct {
				Content string `json:"content"`
				Nonce   string `json:"nonce"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(revolt.MessagePayload{
				ID:        "msg-sent",
				ChannelID: "ch-general",
				AuthorID:  "user-self",
				Content:   body.Content,
				Nonce:     body.Nonce,
			})
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(restServer.Close)

	return restServer.URL
}

func newTestClient(t *testing.T, restURL string) *Client {
	t.Helper()

	return New("secret",
		WithAPIURL(restURL),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithHeartbeatInterval(time.Second),
	)
}

func TestClientSessionLifecycle(t *testing.T) {
	t.Parallel()

	restURL := newTestBackend(t,
		`{"type":"Message","_id":"msg-1","channel":"ch-general","author":"user-self","content":"hi"}`)
	client := newTestClient(t, restURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan *revolt.ReadyEvent, 1)
	if _, err := client.On(ctx, revolt.EventReady, func(_ context.Context, event *revolt.Event) error {
		ready <- event.Ready
		return nil
	}); err != nil {
		t.Fatalf("subscribe ready failed: %v", err)
	}

	messages := make(chan *revolt.Message, 1)
	if _, err := client.On(ctx, revolt.EventMessage, func(_ context.Context, event *revolt.Event) error {
		messages <- event.Message
		return nil
	}); err != nil {
		t.Fatalf("subscribe message failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- client.Run(ctx)
	}()

	select {
	case readyEvent := <-ready:
		if readyEvent.SelfID != "user-self" || readyEvent.Channels != 1 {
			t.Fatalf("ready = %+v", readyEvent)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for ready")
	}

	select {
	case message := <-messages:
		if message.ID != "msg-1" {
			t.Fatalf("message = %+v", message)
		}
		cached, ok := client.Channel("ch-general")
		if !ok || message.Channel != cached {
			t.Fatal("dispatched message does not reference the cached channel")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}

	if client.SelfID() != "user-self" {
		t.Fatalf("self id = %q", client.SelfID())
	}
	if info := client.APIInfo(); info == nil || info.Version != "0.5.1" {
		t.Fatalf("api info = %+v", info)
	}

	sent, err := client.SendMessage(ctx, "ch-general", "pong")
	if err != nil {
		t.Fatalf("send message failed: %v", err)
	}
	if sent == nil || sent.ID != "msg-sent" || sent.Content != "pong" {
		t.Fatalf("sent = %+v", sent)
	}
	if cached, ok := client.Message("msg-sent"); !ok || cached != sent {
		t.Fatal("sent message not cached")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
}

func TestClientRunFailsWithoutNodeInfo(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	if err := client.Run(context.Background()); err == nil {
		t.Fatal("expected run to fail when node info is unavailable")
	}
}
