// Package state implements the connection-state synchronization engine:
// it ingests decoded gateway records one at a time, mutates the in-memory
// entity cache, and publishes typed notifications through the dispatch
// seam. All cache mutation happens on the single ingestion sequence; the
// read surface is guarded so handlers can resolve entities concurrently.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"revoltgo/pkg/revolt"
)

// DefaultMaxMessages is the default recent-message buffer capacity.
const DefaultMaxMessages = 1000

// Publisher is the dispatch seam between cache mutation and user-visible
// callback invocation. Implementations must not block the caller beyond
// bounded enqueueing.
type Publisher interface {
	Publish(ctx context.Context, event *revolt.Event) error
}

// parserFunc normalizes one gateway record into cache mutations and
// dispatch calls. The raw record is passed whole; each parser decodes the
// payload shape it expects.
type parserFunc func(ctx context.Context, record json.RawMessage) error

// memberKey identifies a member within the member cache.
//
// The upstream protocol addresses members inconsistently (bare user id in
// some events, composite id in others); the cache uses the composite key
// everywhere since every member-bearing event can produce one.
type memberKey struct {
	serverID string
	userID   string
}

// State is the connection-state engine owning the entity cache and the
// event parser table.
type State struct {
	logger    *slog.Logger
	publisher Publisher

	parsers map[string]parserFunc

	mu       sync.RWMutex
	selfID   string
	apiInfo  *revolt.APIInfo
	users    map[string]*revolt.User
	servers  map[string]*revolt.Server
	channels map[string]*revolt.Channel
	members  map[memberKey]*revolt.Member
	messages *messageRing
}

// New creates an empty connection state publishing through the given seam.
// maxMessages bounds the recent-message buffer; zero disables it, negative
// selects the default.
func New(logger *slog.Logger, publisher Publisher, maxMessages int) *State {
	if logger == nil {
		logger = slog.Default()
	}
	if maxMessages < 0 {
		maxMessages = DefaultMaxMessages
	}

	engine := &State{
		logger:    logger,
		publisher: publisher,
		users:     make(map[string]*revolt.User),
		servers:   make(map[string]*revolt.Server),
		channels:  make(map[string]*revolt.Channel),
		members:   make(map[memberKey]*revolt.Member),
		messages:  newMessageRing(maxMessages),
	}

	// The parser table is built once per connection-state instance and is
	// immutable thereafter. Every recognized wire event type binds to
	// exactly one parser; the set is auditable here.
	engine.parsers = map[string]parserFunc{
		"Ready":              engine.parseReady,
		"Message":            engine.parseMessage,
		"MessageUpdate":      engine.parseMessageUpdate,
		"MessageDelete":      engine.parseMessageDelete,
		"ChannelCreate":      engine.parseChannelCreate,
		"ChannelUpdate":      engine.parseChannelUpdate,
		"ChannelDelete":      engine.parseChannelDelete,
		"ChannelGroupJoin":   engine.parseChannelGroupJoin,
		"ChannelGroupLeave":  engine.parseChannelGroupLeave,
		"ChannelStartTyping": engine.parseChannelStartTyping,
		"ChannelStopTyping":  engine.parseChannelStopTyping,
		"ChannelAck":         engine.parseChannelAck,
		"ServerUpdate":       engine.parseServerUpdate,
		"ServerDelete":       engine.parseServerDelete,
		"ServerMemberJoin":   engine.parseServerMemberJoin,
		"ServerMemberLeave":  engine.parseServerMemberLeave,
		"ServerMemberUpdate": engine.parseServerMemberUpdate,
		"ServerRoleUpdate":   engine.parseServerRoleUpdate,
		"ServerRoleDelete":   engine.parseServerRoleDelete,
		"UserUpdate":         engine.parseUserUpdate,
		"UserRelationship":   engine.parseUserRelationship,
	}

	return engine
}

// recordEnvelope extracts the event-type discriminant from a gateway record.
type recordEnvelope struct {
	Type string `json:"type"`
}

// HandleRecord ingests one decoded gateway record. Unrecognized event
// types are logged and dropped: the realtime protocol may introduce
// forward-compatible events. A returned error means this single record
// failed; the ingestion loop continues with the next.
func (s *State) HandleRecord(ctx context.Context, record json.RawMessage) error {
	var envelope recordEnvelope
	if err := json.Unmarshal(record, &envelope); err != nil {
		return fmt.Errorf("handle record: %w: %w", revolt.ErrInvalidPayload, err)
	}
	if envelope.Type == "" {
		return fmt.Errorf("handle record: %w: missing type", revolt.ErrInvalidPayload)
	}

	parser, known := s.parsers[envelope.Type]
	if !known {
		s.logger.DebugContext(ctx, "unknown gateway event type, dropping", "type", envelope.Type)
		return nil
	}

	if err := parser(ctx, record); err != nil {
		return fmt.Errorf("handle record %s: %w", envelope.Type, err)
	}

	return nil
}

// Clear resets the entity cache and self identity. API info survives: it
// is REST-provided runtime configuration, not event state, and is reused
// across gateway reconnects.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *State) clearLocked() {
	s.selfID = ""
	s.users = make(map[string]*revolt.User)
	s.servers = make(map[string]*revolt.Server)
	s.channels = make(map[string]*revolt.Channel)
	s.members = make(map[memberKey]*revolt.Member)
	s.messages.Reset()
}

// SetAPIInfo stores the node information fetched over REST. The file
// server base URL inside it is the source of attachment download URLs.
func (s *State) SetAPIInfo(info *revolt.APIInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiInfo = info
}

// APIInfo returns the stored node information, nil before the first fetch.
func (s *State) APIInfo() *revolt.APIInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.apiInfo
}

// fileBaseURLLocked returns the advertised file server base, empty when
// the node does not serve files. Callers hold s.mu.
func (s *State) fileBaseURLLocked() string {
	if s.apiInfo == nil || !s.apiInfo.Features.Autumn.Enabled {
		return ""
	}

	return s.apiInfo.Features.Autumn.URL
}

// publish forwards events to the dispatch seam. Publish failures are
// engine-side defects (validation or shutdown races) and are contained
// here: they must never abort record ingestion.
func (s *State) publish(ctx context.Context, events ...*revolt.Event) {
	if s.publisher == nil {
		return
	}
	for _, event := range events {
		if event == nil {
			continue
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "event dispatch failed", "event", string(event.Name), "error", err)
		}
	}
}
