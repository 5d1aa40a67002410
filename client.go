package revoltgo

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"revoltgo/internal/dispatch"
	"revoltgo/internal/gateway"
	"revoltgo/internal/rest"
	"revoltgo/internal/state"
	"revoltgo/pkg/revolt"
)

// Client is a full chat session: REST binding, realtime gateway, entity
// cache, and event dispatch. Construct with New, register handlers, then
// call Run.
type Client struct {
	logger *slog.Logger

	token string
	bot   bool

	apiURL       string
	websocketURL string

	maxMessages       int
	heartbeatInterval time.Duration

	subscriptionBuffer  int
	subscriptionWorkers int
	handlerTimeout      time.Duration
	onAsyncError        func(ctx context.Context, scope string, err error)

	httpClient *http.Client

	rest  *rest.Client
	bus   *dispatch.Bus
	state *state.State

	// session is the gateway driver, set for the duration of Run.
	session atomic.Pointer[gateway.Gateway]
}

// New creates a client authenticating with a bot token. WithSessionToken
// switches to the user session scheme.
func New(token string, opts ...Option) *Client {
	client := &Client{
		logger:              slog.Default(),
		token:               token,
		bot:                 true,
		apiURL:              defaultAPIURL,
		maxMessages:         state.DefaultMaxMessages,
		subscriptionBuffer:  defaultSubscriptionBuffer,
		subscriptionWorkers: defaultSubscriptionWorkers,
		handlerTimeout:      defaultHandlerTimeout,
	}
	for _, opt := range opts {
		opt(client)
	}

	var restOpts []rest.Option
	if client.httpClient != nil {
		restOpts = append(restOpts, rest.WithHTTPClient(client.httpClient))
	}
	client.rest = rest.New(client.logger, client.apiURL, client.token, client.bot, restOpts...)
	client.bus = dispatch.NewBus(
		client.subscriptionBuffer,
		client.subscriptionWorkers,
		client.handlerTimeout,
		client.onAsyncError,
	)
	client.state = state.New(client.logger, client.bus, client.maxMessages)

	return client
}

// Run connects to the node and blocks until ctx is cancelled. The node
// information document is fetched first to resolve the gateway endpoint,
// then the realtime session runs with automatic reconnection. On return
// all subscriptions are shut down.
func (c *Client) Run(ctx context.Context) error {
	info, err := c.rest.NodeInfo(ctx)
	if err != nil {
		return fmt.Errorf("client: fetch node info: %w", err)
	}
	c.state.SetAPIInfo(info)

	websocketURL := c.websocketURL
	if websocketURL == "" {
		websocketURL = info.WebsocketURL
	}
	if websocketURL == "" {
		return fmt.Errorf("client: node advertises no websocket endpoint")
	}

	gatewayOpts := []gateway.Option{
		gateway.WithOnReconnect(func(ctx context.Context) {
			c.logger.InfoContext(ctx, "clearing session state before reconnect")
			c.state.Clear()
		}),
	}
	if c.heartbeatInterval > 0 {
		gatewayOpts = append(gatewayOpts, gateway.WithHeartbeatInterval(c.heartbeatInterval))
	}

	session := gateway.New(c.logger, websocketURL, c.token, c.state.HandleRecord, gatewayOpts...)
	c.session.Store(session)
	defer c.session.Store(nil)
	runErr := session.Run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.bus.Close(closeCtx); err != nil {
		c.logger.Warn("dispatch shutdown incomplete", "error", err)
	}

	return runErr
}

// Subscribe registers a handler with explicit interest and queueing
// behavior. The returned subscription stays active until closed or the
// client shuts down.
func (c *Client) Subscribe(
	ctx context.Context,
	interest revolt.InterestSet,
	spec revolt.SubscriptionSpec,
	handler revolt.EventHandler,
) (revolt.Subscription, error) {
	return c.bus.Subscribe(ctx, interest, spec, handler)
}

// On registers a handler for a single event name with default queueing.
func (c *Client) On(ctx context.Context, name revolt.EventName, handler revolt.EventHandler) (revolt.Subscription, error) {
	interest := revolt.InterestSet{Names: []revolt.EventName{name}}

	return c.bus.Subscribe(ctx, interest, revolt.SubscriptionSpec{Name: string(name)}, handler)
}

// Cache read surface.

// SelfID returns the session user id, empty before the bootstrap event.
func (c *Client) SelfID() string { return c.state.SelfID() }

// Self returns the session user when cached.
func (c *Client) Self() (*revolt.User, bool) { return c.state.Self() }

// User returns a cached user.
func (c *Client) User(userID string) (*revolt.User, bool) { return c.state.User(userID) }

// Server returns a cached server.
func (c *Client) Server(serverID string) (*revolt.Server, bool) { return c.state.Server(serverID) }

// Channel returns a cached channel.
func (c *Client) Channel(channelID string) (*revolt.Channel, bool) { return c.state.Channel(channelID) }

// Member returns a cached server member.
func (c *Client) Member(serverID, userID string) (*revolt.Member, bool) {
	return c.state.Member(serverID, userID)
}

// Message returns a recently cached message.
func (c *Client) Message(messageID string) (*revolt.Message, bool) { return c.state.Message(messageID) }

// Messages returns the recent-message cache in arrival order.
func (c *Client) Messages() []*revolt.Message { return c.state.Messages() }

// APIInfo returns the node information document, nil before Run.
func (c *Client) APIInfo() *revolt.APIInfo { return c.state.APIInfo() }

// Actions.

// SendMessage posts a message and returns the cached entity built from the
// node's response. The entity is nil when the target channel is not cached.
func (c *Client) SendMessage(ctx context.Context, channelID, content string) (*revolt.Message, error) {
	payload, err := c.rest.SendMessage(ctx, channelID, content)
	if err != nil {
		return nil, err
	}

	message, err := c.state.AddMessage(*payload)
	if err != nil {
		return nil, fmt.Errorf("client: cache sent message: %w", err)
	}

	return message, nil
}

// EditMessage patches the content of an existing message.
func (c *Client) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	return c.rest.EditMessage(ctx, channelID, messageID, content)
}

// DeleteMessage removes a message.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return c.rest.DeleteMessage(ctx, channelID, messageID)
}

// DeleteMessageAfter schedules a message deletion. The returned handle can
// cancel the deletion while it is still pending.
func (c *Client) DeleteMessageAfter(ctx context.Context, channelID, messageID string, delay time.Duration) *Deferred {
	return newDeferred(ctx, delay, func(ctx context.Context) error {
		return c.rest.DeleteMessage(ctx, channelID, messageID)
	})
}

// BeginTyping announces a typing indicator in the given channel. Fails
// with gateway.ErrNoSession outside an active Run session.
func (c *Client) BeginTyping(channelID string) error {
	session := c.session.Load()
	if session == nil {
		return gateway.ErrNoSession
	}

	return session.BeginTyping(channelID)
}

// EndTyping withdraws the typing indicator in the given channel.
func (c *Client) EndTyping(channelID string) error {
	session := c.session.Load()
	if session == nil {
		return gateway.ErrNoSession
	}

	return session.EndTyping(channelID)
}

// AckMessage marks a channel as read up to the given message.
func (c *Client) AckMessage(ctx context.Context, channelID, messageID string) error {
	return c.rest.AckMessage(ctx, channelID, messageID)
}

// FetchMessage fetches one message over REST. When the channel is cached
// the message references the cached entity; otherwise the channel is
// fetched too and the result is detached from the cache.
func (c *Client) FetchMessage(ctx context.Context, channelID, messageID string) (*revolt.Message, error) {
	payload, err := c.rest.GetMessage(ctx, channelID, messageID)
	if err != nil {
		return nil, err
	}

	channel, ok := c.state.Channel(payload.ChannelID)
	if !ok {
		channel, err = c.FetchChannel(ctx, payload.ChannelID)
		if err != nil {
			return nil, err
		}
	}

	fileBaseURL := ""
	if info := c.state.APIInfo(); info != nil && info.Features.Autumn.Enabled {
		fileBaseURL = info.Features.Autumn.URL
	}

	return revolt.NewMessage(*payload, channel, fileBaseURL)
}

// FetchUser fetches a user over REST. The result is not cached; the cache
// tracks only event-stream state.
func (c *Client) FetchUser(ctx context.Context, userID string) (*revolt.User, error) {
	payload, err := c.rest.FetchUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return revolt.NewUser(*payload), nil
}

// FetchChannel fetches a channel over REST, resolving its server against
// the cache. The result is not cached.
func (c *Client) FetchChannel(ctx context.Context, channelID string) (*revolt.Channel, error) {
	payload, err := c.rest.FetchChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	server, _ := c.state.Server(payload.ServerID)

	return revolt.NewChannel(*payload, server)
}

// FetchServer fetches a server over REST. The result is not cached.
func (c *Client) FetchServer(ctx context.Context, serverID string) (*revolt.Server, error) {
	payload, err := c.rest.FetchServer(ctx, serverID)
	if err != nil {
		return nil, err
	}

	return revolt.NewServer(*payload), nil
}

// OpenDM opens, or resumes, the direct-message channel with a user and
// caches it so follow-up sends resolve.
func (c *Client) OpenDM(ctx context.Context, userID string) (*revolt.Channel, error) {
	payload, err := c.rest.OpenDM(ctx, userID)
	if err != nil {
		return nil, err
	}

	channel, err := c.state.AddChannel(*payload)
	if err != nil {
		return nil, fmt.Errorf("client: cache dm channel: %w", err)
	}

	return channel, nil
}
