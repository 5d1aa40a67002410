package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"revoltgo/pkg/revolt"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNodeInfoIsUnauthenticated(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-bot-token") != "" || r.Header.Get("x-session-token") != "" {
			t.Error("node info request carried a token")
		}
		if r.URL.Path != "/" {
			t.Errorf("path = %q, want /", r.URL.Path)
		}
		json.NewEncoder(w).Encode(revolt.APIInfo{
			Version:      "0.5.1",
			WebsocketURL: "wss://events.example.test",
		})
	}))
	t.Cleanup(server.Close)

	client := New(newTestLogger(), server.URL, "", true)
	info, err := client.NodeInfo(context.Background())
	if err != nil {
		t.Fatalf("node info failed: %v", err)
	}
	if info.Version != "0.5.1" || info.WebsocketURL != "wss://events.example.test" {
		t.Fatalf("info = %+v", info)
	}
}

func TestAuthHeaderSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		bot        bool
		wantHeader string
	}{
		{name: "bot token header", bot: true, wantHeader: "x-bot-token"},
		{name: "session token header", bot: false, wantHeader: "x-session-token"},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var gotHeader http.Header
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotHeader = r.Header.Clone()
				json.NewEncoder(w).Encode(revolt.UserPayload{ID: "user-1"})
			}))
			t.Cleanup(server.Close)

			client := New(newTestLogger(), server.URL, "secret", testCase.bot)
			if _, err := client.FetchUser(context.Background(), "user-1"); err != nil {
				t.Fatalf("fetch user failed: %v", err)
			}

			if gotHeader.Get(testCase.wantHeader) != "secret" {
				t.Fatalf("header %s = %q, want secret", testCase.wantHeader, gotHeader.Get(testCase.wantHeader))
			}
		})
	}
}

func TestAuthedRequestWithoutTokenFailsFast(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request reached server without token")
	}))
	t.Cleanup(server.Close)

	client := New(newTestLogger(), server.URL, "", true)
	_, err := client.FetchUser(context.Background(), "user-1")
	if !errors.Is(err, revolt.ErrNotAuthenticated) {
		t.Fatalf("error = %v, want ErrNotAuthenticated", err)
	}
}

func TestSendMessageAttachesNonce(t *testing.T) {
	t.Parallel()

	var gotBody sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/channels/ch-1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(revolt.MessagePayload{
			ID:        "msg-1",
			ChannelID: "ch-1",
			Content:   gotBody.Content,
			Nonce:     gotBody.Nonce,
		})
	}))
	t.Cleanup(server.Close)

	client := New(newTestLogger(), server.URL, "secret", true,
		WithNonceSource(func() string { return "nonce-fixed" }))

	message, err := client.SendMessage(context.Background(), "ch-1", "hello")
	if err != nil {
		t.Fatalf("send message failed: %v", err)
	}
	if gotBody.Nonce != "nonce-fixed" {
		t.Fatalf("nonce = %q, want nonce-fixed", gotBody.Nonce)
	}
	if message.ID != "msg-1" || message.Content != "hello" {
		t.Fatalf("message = %+v", message)
	}
}

func TestMessageLifecycleRoutes(t *testing.T) {
	t.Parallel()

	type call struct {
		method string
		path   string
	}
	var calls []call
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{method: r.Method, path: r.URL.Path})
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(revolt.MessagePayload{ID: "msg-1"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	client := New(newTestLogger(), server.URL, "secret", true)
	ctx := context.Background()

	if err := client.EditMessage(ctx, "ch-1", "msg-1", "edited"); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if _, err := client.GetMessage(ctx, "ch-1", "msg-1"); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if err := client.AckMessage(ctx, "ch-1", "msg-1"); err != nil {
		t.Fatalf("ack failed: %v", err)
	}
	if err := client.DeleteMessage(ctx, "ch-1", "msg-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	want := []call{
		{method: http.MethodPatch, path: "/channels/ch-1/messages/msg-1"},
		{method: http.MethodGet, path: "/channels/ch-1/messages/msg-1"},
		{method: http.MethodPut, path: "/channels/ch-1/ack/msg-1"},
		{method: http.MethodDelete, path: "/channels/ch-1/messages/msg-1"},
	}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for idx := range want {
		if calls[idx] != want[idx] {
			t.Fatalf("call %d = %v, want %v", idx, calls[idx], want[idx])
		}
	}
}

func TestOpenDMRoute(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/user-2/dm" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(revolt.ChannelPayload{
			ID:           "ch-dm",
			ChannelType:  "DirectMessage",
			RecipientIDs: []string{"user-1", "user-2"},
		})
	}))
	t.Cleanup(server.Close)

	client := New(newTestLogger(), server.URL, "secret", true)
	channel, err := client.OpenDM(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("open dm failed: %v", err)
	}
	if channel.ID != "ch-dm" || channel.ChannelType != "DirectMessage" {
		t.Fatalf("channel = %+v", channel)
	}
}

func TestNon2xxResponseBecomesAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"type":"NotFound"}`))
	}))
	t.Cleanup(server.Close)

	client := New(newTestLogger(), server.URL, "secret", true)
	_, err := client.FetchChannel(context.Background(), "ch-missing")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", apiErr.Status)
	}
}
