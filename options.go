package revoltgo

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultAPIURL = "https://api.revolt.chat"

	defaultSubscriptionBuffer  = 64
	defaultSubscriptionWorkers = 1
	defaultHandlerTimeout      = 30 * time.Second
)

// Option configures a Client.
type Option func(*Client)

// WithAPIURL overrides the REST API base URL.
func WithAPIURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.apiURL = url
		}
	}
}

// WithWebsocketURL pins the gateway endpoint instead of using the one the
// node advertises in its information document.
func WithWebsocketURL(url string) Option {
	return func(c *Client) {
		c.websocketURL = url
	}
}

// WithSessionToken authenticates as a user session instead of a bot.
func WithSessionToken() Option {
	return func(c *Client) {
		c.bot = false
	}
}

// WithMaxMessages bounds the recent-message cache. Zero disables message
// caching, negative selects the engine default.
func WithMaxMessages(maxMessages int) Option {
	return func(c *Client) {
		c.maxMessages = maxMessages
	}
}

// WithHeartbeatInterval overrides the gateway keepalive cadence.
func WithHeartbeatInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.heartbeatInterval = interval
		}
	}
}

// WithDefaultSubscriptionBuffer sets the queue capacity applied to
// subscriptions that do not specify their own.
func WithDefaultSubscriptionBuffer(buffer int) Option {
	return func(c *Client) {
		if buffer > 0 {
			c.subscriptionBuffer = buffer
		}
	}
}

// WithDefaultSubscriptionWorkers sets the worker count applied to
// subscriptions that do not specify their own.
func WithDefaultSubscriptionWorkers(workers int) Option {
	return func(c *Client) {
		if workers > 0 {
			c.subscriptionWorkers = workers
		}
	}
}

// WithDefaultHandlerTimeout sets the per-call handler timeout applied to
// subscriptions that do not specify their own.
func WithDefaultHandlerTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.handlerTimeout = timeout
		}
	}
}

// WithLogger overrides the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAsyncErrorHandler registers a sink for failures that happen off the
// caller's goroutine: handler errors, panics, and backpressure drops.
func WithAsyncErrorHandler(handler func(ctx context.Context, scope string, err error)) Option {
	return func(c *Client) {
		c.onAsyncError = handler
	}
}

// WithHTTPClient overrides the HTTP client used for REST calls.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}
