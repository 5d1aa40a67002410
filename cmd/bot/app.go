package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"revoltgo"
	"revoltgo/pkg/revolt"
)

const (
	envConfigFile = "REVOLT_CONFIG_FILE"
	envToken      = "REVOLT_TOKEN"

	defaultConfigFilePath   = "config/bot.json"
	alternateConfigFilePath = "bin/config/bot.json"
)

type appConfig struct {
	logLevel slog.Level

	token        string
	sessionToken bool

	apiURL       string
	websocketURL string

	maxMessages       int
	heartbeatInterval time.Duration

	subscriptionBuffer  int
	subscriptionWorkers int
	handlerTimeout      time.Duration
}

type fileConfig struct {
	LogLevel string           `json:"log_level"`
	Token    string           `json:"token"`
	Session  bool             `json:"session_token"`
	API      fileAPIConfig    `json:"api"`
	Client   fileClientConfig `json:"client"`
}

type fileAPIConfig struct {
	URL          string `json:"url"`
	WebsocketURL string `json:"websocket_url"`
}

type fileClientConfig struct {
	MaxMessages         *int   `json:"max_messages"`
	HeartbeatInterval   string `json:"heartbeat_interval"`
	SubscriptionBuffer  *int   `json:"subscription_buffer"`
	SubscriptionWorkers *int   `json:"subscription_workers"`
	HandlerTimeout      string `json:"handler_timeout"`
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.logLevel}))
	client := buildClient(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := registerHandlers(ctx, logger, client); err != nil {
		return fmt.Errorf("register handlers: %w", err)
	}

	if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run client: %w", err)
	}

	return nil
}

func buildClient(logger *slog.Logger, cfg appConfig) *revoltgo.Client {
	opts := []revoltgo.Option{
		revoltgo.WithLogger(logger),
		revoltgo.WithMaxMessages(cfg.maxMessages),
		revoltgo.WithAsyncErrorHandler(func(ctx context.Context, scope string, err error) {
			logger.WarnContext(ctx, "async failure", "scope", scope, "error", err)
		}),
	}
	if cfg.sessionToken {
		opts = append(opts, revoltgo.WithSessionToken())
	}
	if cfg.apiURL != "" {
		opts = append(opts, revoltgo.WithAPIURL(cfg.apiURL))
	}
	if cfg.websocketURL != "" {
		opts = append(opts, revoltgo.WithWebsocketURL(cfg.websocketURL))
	}
	if cfg.heartbeatInterval > 0 {
		opts = append(opts, revoltgo.WithHeartbeatInterval(cfg.heartbeatInterval))
	}
	if cfg.subscriptionBuffer > 0 {
		opts = append(opts, revoltgo.WithDefaultSubscriptionBuffer(cfg.subscriptionBuffer))
	}
	if cfg.subscriptionWorkers > 0 {
		opts = append(opts, revoltgo.WithDefaultSubscriptionWorkers(cfg.subscriptionWorkers))
	}
	if cfg.handlerTimeout > 0 {
		opts = append(opts, revoltgo.WithDefaultHandlerTimeout(cfg.handlerTimeout))
	}

	return revoltgo.New(cfg.token, opts...)
}

func registerHandlers(ctx context.Context, logger *slog.Logger, client *revoltgo.Client) error {
	if _, err := client.On(ctx, revolt.EventReady, func(ctx context.Context, event *revolt.Event) error {
		logger.InfoContext(ctx, "session ready",
			"self", event.Ready.SelfID,
			"servers", event.Ready.Servers,
			"channels", event.Ready.Channels)
		return nil
	}); err != nil {
		return err
	}

	_, err := client.On(ctx, revolt.EventMessage, func(ctx context.Context, event *revolt.Event) error {
		message := event.Message
		if message.AuthorID == client.SelfID() {
			return nil
		}
		if strings.TrimSpace(message.Content) != "!ping" {
			return nil
		}

		reply, err := client.SendMessage(ctx, message.Channel.ID, "pong")
		if err != nil {
			return fmt.Errorf("send pong: %w", err)
		}
		client.DeleteMessageAfter(ctx, reply.Channel.ID, reply.ID, 30*time.Second)

		return nil
	})

	return err
}

func loadConfig() (appConfig, error) {
	cfg := defaultAppConfig()
	configFile, err := resolveConfigFilePath()
	if err != nil {
		return appConfig{}, err
	}

	if err := applyConfigFile(&cfg, configFile); err != nil {
		return appConfig{}, err
	}
	if token := strings.TrimSpace(os.Getenv(envToken)); token != "" {
		cfg.token = token
	}
	if cfg.token == "" {
		return appConfig{}, fmt.Errorf("token is required; set it in %s or via %s", configFile, envToken)
	}

	return cfg, nil
}

func resolveConfigFilePath() (string, error) {
	if configFile := strings.TrimSpace(os.Getenv(envConfigFile)); configFile != "" {
		return configFile, nil
	}

	candidates := []string{defaultConfigFilePath, alternateConfigFilePath}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config file %s is a directory", candidate)
			}
			return candidate, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat config file %s: %w", candidate, err)
		}
	}

	return "", fmt.Errorf(
		"config file not found; create %s or %s, or set %s",
		defaultConfigFilePath,
		alternateConfigFilePath,
		envConfigFile,
	)
}

func defaultAppConfig() appConfig {
	return appConfig{
		logLevel:    slog.LevelInfo,
		maxMessages: -1,
	}
}

func applyConfigFile(cfg *appConfig, path string) error {
	if cfg == nil {
		return fmt.Errorf("apply config file: nil config")
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var parsed fileConfig
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if rawLevel := strings.TrimSpace(parsed.LogLevel); rawLevel != "" {
		level, err := parseLogLevel(rawLevel)
		if err != nil {
			return fmt.Errorf("parse log_level: %w", err)
		}
		cfg.logLevel = level
	}

	cfg.token = strings.TrimSpace(parsed.Token)
	cfg.sessionToken = parsed.Session
	cfg.apiURL = strings.TrimSpace(parsed.API.URL)
	cfg.websocketURL = strings.TrimSpace(parsed.API.WebsocketURL)

	if parsed.Client.MaxMessages != nil {
		if *parsed.Client.MaxMessages < 0 {
			return fmt.Errorf("parse client.max_messages: must be >= 0")
		}
		cfg.maxMessages = *parsed.Client.MaxMessages
	}
	if rawInterval := strings.TrimSpace(parsed.Client.HeartbeatInterval); rawInterval != "" {
		interval, err := time.ParseDuration(rawInterval)
		if err != nil {
			return fmt.Errorf("parse client.heartbeat_interval: %w", err)
		}
		if interval <= 0 {
			return fmt.Errorf("parse client.heartbeat_interval: must be > 0")
		}
		cfg.heartbeatInterval = interval
	}
	if parsed.Client.SubscriptionBuffer != nil {
		if *parsed.Client.SubscriptionBuffer <= 0 {
			return fmt.Errorf("parse client.subscription_buffer: must be > 0")
		}
		cfg.subscriptionBuffer = *parsed.Client.SubscriptionBuffer
	}
	if parsed.Client.SubscriptionWorkers != nil {
		if *parsed.Client.SubscriptionWorkers <= 0 {
			return fmt.Errorf("parse client.subscription_workers: must be > 0")
		}
		cfg.subscriptionWorkers = *parsed.Client.SubscriptionWorkers
	}
	if rawTimeout := strings.TrimSpace(parsed.Client.HandlerTimeout); rawTimeout != "" {
		timeout, err := time.ParseDuration(rawTimeout)
		if err != nil {
			return fmt.Errorf("parse client.handler_timeout: %w", err)
		}
		if timeout <= 0 {
			return fmt.Errorf("parse client.handler_timeout: must be > 0")
		}
		cfg.handlerTimeout = timeout
	}

	return nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unsupported level %q", raw)
	}
}
