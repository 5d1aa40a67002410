// Package rest is the request/response binding to the chat node's HTTP
// API. It owns authentication headers, idempotency nonces, and error
// decoding; entity construction from the returned payloads is the
// caller's concern.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"revoltgo/pkg/revolt"
)

const defaultUserAgent = "revoltgo (https://github.com/revoltgo/revoltgo)"

// APIError is a non-2xx response from the node.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rest: api error: status %d: %s", e.Status, e.Body)
}

// Client issues HTTP requests against one API node.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	bot        bool
	userAgent  string
	logger     *slog.Logger

	// nonce generates idempotency keys for message sends.
	nonce func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithNonceSource overrides the idempotency nonce generator. Used by tests.
func WithNonceSource(nonce func() string) Option {
	return func(c *Client) {
		if nonce != nil {
			c.nonce = nonce
		}
	}
}

// New creates a REST client. bot selects the bot-token header scheme;
// session tokens use the user header scheme instead.
func New(logger *slog.Logger, baseURL, token string, bot bool, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	client := &Client{
		httpClient: http.DefaultClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		bot:        bot,
		userAgent:  defaultUserAgent,
		logger:     logger,
		nonce:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(client)
	}

	return client
}

// request performs one API call. out, when non-nil, receives the decoded
// response body. authed requests fail fast without a token.
func (c *Client) request(ctx context.Context, method, path string, body, out any, authed bool) error {
	if authed && c.token == "" {
		return fmt.Errorf("rest: %s %s: %w", method, path, revolt.ErrNotAuthenticated)
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("rest: %s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	url := c.baseURL
	if path != "" {
		url += "/" + strings.TrimLeft(path, "/")
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("rest: %s %s: %w", method, path, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if c.bot {
			req.Header.Set("x-bot-token", c.token)
		} else {
			req.Header.Set("x-session-token", c.token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rest: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.DebugContext(ctx, "api request failed",
			"method", method, "path", path, "status", resp.StatusCode)
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("rest: %s %s: decode response: %w", method, path, err)
	}

	return nil
}

// NodeInfo fetches the node information document at the API root. This is
// the only unauthenticated operation.
func (c *Client) NodeInfo(ctx context.Context) (*revolt.APIInfo, error) {
	var info revolt.APIInfo
	if err := c.request(ctx, http.MethodGet, "", nil, &info, false); err != nil {
		return nil, err
	}

	return &info, nil
}

type sendMessageRequest struct {
	Content string `json:"content"`
	Nonce   string `json:"nonce"`
}

// SendMessage posts a text message to a channel. A fresh nonce is attached
// so the node can deduplicate retried sends.
func (c *Client) SendMessage(ctx context.Context, channelID, content string) (*revolt.MessagePayload, error) {
	body := sendMessageRequest{Content: content, Nonce: c.nonce()}

	var message revolt.MessagePayload
	path := fmt.Sprintf("channels/%s/messages", channelID)
	if err := c.request(ctx, http.MethodPost, path, body, &message, true); err != nil {
		return nil, err
	}

	return &message, nil
}

// EditMessage patches the content of an existing message.
func (c *Client) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	body := revolt.MessageEditData{Content: &content}
	path := fmt.Sprintf("channels/%s/messages/%s", channelID, messageID)

	return c.request(ctx, http.MethodPatch, path, body, nil, true)
}

// DeleteMessage removes a message.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	path := fmt.Sprintf("channels/%s/messages/%s", channelID, messageID)

	return c.request(ctx, http.MethodDelete, path, nil, nil, true)
}

// GetMessage fetches one message by id.
func (c *Client) GetMessage(ctx context.Context, channelID, messageID string) (*revolt.MessagePayload, error) {
	var message revolt.MessagePayload
	path := fmt.Sprintf("channels/%s/messages/%s", channelID, messageID)
	if err := c.request(ctx, http.MethodGet, path, nil, &message, true); err != nil {
		return nil, err
	}

	return &message, nil
}

// FetchUser fetches one user by id.
func (c *Client) FetchUser(ctx context.Context, userID string) (*revolt.UserPayload, error) {
	var user revolt.UserPayload
	if err := c.request(ctx, http.MethodGet, "users/"+userID, nil, &user, true); err != nil {
		return nil, err
	}

	return &user, nil
}

// FetchChannel fetches one channel by id.
func (c *Client) FetchChannel(ctx context.Context, channelID string) (*revolt.ChannelPayload, error) {
	var channel revolt.ChannelPayload
	if err := c.request(ctx, http.MethodGet, "channels/"+channelID, nil, &channel, true); err != nil {
		return nil, err
	}

	return &channel, nil
}

// FetchServer fetches one server by id.
func (c *Client) FetchServer(ctx context.Context, serverID string) (*revolt.ServerPayload, error) {
	var server revolt.ServerPayload
	if err := c.request(ctx, http.MethodGet, "servers/"+serverID, nil, &server, true); err != nil {
		return nil, err
	}

	return &server, nil
}

// OpenDM opens, or returns the existing, direct-message channel with a user.
func (c *Client) OpenDM(ctx context.Context, userID string) (*revolt.ChannelPayload, error) {
	var channel revolt.ChannelPayload
	path := fmt.Sprintf("users/%s/dm", userID)
	if err := c.request(ctx, http.MethodGet, path, nil, &channel, true); err != nil {
		return nil, err
	}

	return &channel, nil
}

// AckMessage marks a channel as read up to the given message.
func (c *Client) AckMessage(ctx context.Context, channelID, messageID string) error {
	path := fmt.Sprintf("channels/%s/ack/%s", channelID, messageID)

	return c.request(ctx, http.MethodPut, path, nil, nil, true)
}
