package state

import (
	"context"
	"encoding/json"
	"fmt"

	"revoltgo/pkg/revolt"
)

// Update-style parsers follow a uniform two-phase notify pattern: the raw
// notification always fires first, the typed old/new notification fires
// second and only when the referenced entity was resolvable. A reference
// to an absent entity is recoverable: skip the mutation, keep the raw
// notification, log at debug.

// parseReady bulk-populates the cache from the bootstrap snapshot.
func (s *State) parseReady(ctx context.Context, record json.RawMessage) error {
	var payload revolt.ReadyPayload
	if err := json.Unmarshal(record, &payload); err != nil {
		return fmt.Errorf("parse ready: %w", err)
	}

	s.mu.Lock()
	s.clearLocked()

	for _, user := range payload.Users {
		s.addUserLocked(user)
	}
	s.selfID = resolveSelfID(payload.Users)

	for _, server := range payload.Servers {
		s.addServerLocked(server)
	}

	for _, channel := range payload.Channels {
		if _, err := s.addChannelLocked(channel); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("parse ready: %w", err)
		}
	}

	for _, member := range payload.Members {
		if _, err := s.addMemberLocked(member, ""); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("parse ready: %w", err)
		}
	}

	ready := &revolt.ReadyEvent{
		SelfID:   s.selfID,
		Users:    len(s.users),
		Servers:  len(s.servers),
		Channels: len(s.channels),
		Members:  len(s.members),
	}
	s.mu.Unlock()

	s.publish(ctx, &revolt.Event{Name: revolt.EventReady, Ready: ready})

	return nil
}

// resolveSelfID picks the session user from the bootstrap user list: the
// entry the server marks as the session's own relationship, falling back
// to the first entry, which is how bot sessions are delivered.
func resolveSelfID(users []revolt.UserPayload) string {
	for _, user := range users {
		if user.Relationship == "User" {
			return user.ID
		}
	}
	if len(users) > 0 {
		return users[0].ID
	}

	return ""
}

// parseMessage appends a new message to the recent-message buffer. The
// owning channel must already be cached; messages never create channels.
func (s *State) parseMessage(ctx context.Context, record json.RawMessage) error {
	var payload revolt.MessagePayload
	if err := json.Unmarshal(record, &payload); err != nil {
		return fmt.Errorf("parse message: %w", err)
	}

	s.mu.Lock()
	message, err := s.addMessageLocked(payload)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("parse message: %w", err)
	}
	if message == nil {
		s.logger.DebugContext(ctx, "message for unknown channel, dropping",
			"message", payload.ID, "channel", payload.ChannelID)
		return nil
	}

	s.publish(ctx, &revolt.Event{Name: revolt.EventMessage, Message: message})

	return nil
}

func (s *State) parseMessageUpdate(ctx context.Context, record json.RawMessage) error {
	var payload revolt.MessageUpdatePayload
	if err := json.Unmarshal(record, &payload); err != nil {
		return fmt.Errorf("parse message update: %w", err)
	}

	s.mu.Lock()
	message := s.messages.Get(payload.ID)
	var old *revolt.Message
	if message != nil {
		old = message.Snapshot()
		message.ApplyUpdate(payload.Data)
	}
	s.mu.Unlock()

	if message == nil {
		s.logger.DebugContext(ctx, "message update for unknown message", "message", payload.ID)
		s.publish(ctx, &revolt.Event{Name: revolt.EventRawMessageEdit, Raw: record})
		return nil
	}

	s.publish(ctx,
		&revolt.Event{Name: revolt.EventRawMessageEdit, Raw: record, CachedMessage: old},
		&revolt.Event{Name: revolt.EventMessageEdit, MessageDiff: &revolt.MessageDiff{Old: old, New: message}},
	)

	return nil
}

func (s *State) parseMessageDelete(ctx context.Context, record json.RawMessage) error {
	var payload revolt.MessageDeletePayload
	if err := json.Unmarshal(record, &payload); err != nil {
		return fmt.Errorf("parse message delete: %w", err)
	}

	s.mu.Lock()
	found := s.messages.Get(payload.ID)
	if found != nil {
		s.messages.Remove(payload.ID)
	}
	s.mu.Unlock()

	events := []*revolt.Event{
		{Name: revolt.EventRawMessageDelete, Raw: record, CachedMessage: found},
	}
	if found != nil {
		events = append(events, &revolt.Event{Name: revolt.EventMessageDelete, Message: found})
	} else {
		s.logger.DebugContext(ctx, "message delete for unknown message", "message", payload.ID)
	}
	s.publish(ctx, events...)

	return nil
}

// parseChannelCreate adds a channel. An unrecognized channel discriminant
// is protocol drift: this record fails, the ingestion loop continues.
func (s *State) parseChannelCreate(ctx context.Context, record json.RawMessage) error {
	var payload revolt.ChannelPayload
	if err := json.Unmarshal(record, &payload); err != nil {
		return fmt.Errorf("parse channel create: %w", err)
	}

	s.mu.Lock()
	channel, err := s.addChannelLocked(payload)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("parse channel create: %w", err)
	}

	s.publish(ctx, &revolt.Event{Name: revolt.EventChannelCreate, Channel: channel})

	return nil
}

func (s *State) parseChannelUpdate(ctx context.Context, record json.RawMessage) error {
	var payload revolt.ChannelUpdatePayload
	if err := json.Unmarshal(record, &payload); err != nil {
		return fmt.Errorf("parse channel update: %w", err)
	}

	s.mu.Lock()
	channel := s.channels[payload.ID]
	var old *revolt.Channel
	if channel != nil {
		old = channel.Snapshot()
		channel.ApplyUpdate(payload.Data, payload.Clear)
	}
	s.mu.Unlock()

	if channel == nil {
		s.logger.DebugContext(ctx, "channel update for unknown channel", "channel", payload.ID)
		s.publish(ctx, &revolt.Event{Name: revolt.EventRawChannelUpdate, Raw: record})
		return nil
	}

	s.publish(ctx,
		&revolt.Event{Name: revolt.EventRawChannelUpdate, Raw: record},
		&revolt.Event{Name: revolt.EventChannelUpdate, ChannelDiff: &revolt.ChannelDiff{Old: old, New: channel}},
	)

	return nil
}

// parseChannelDelete snapshots then removes the channel, detaching it from
// the owning server's lists.
func (s *State) parseChannelDelete(ctx context.Context, record json.RawMessage) error {
	var payload revolt.ChannelDeletePayload
	if err := json.Unmarshal(record, &payload); err != nil {
		return fmt.Errorf("parse channel delete: %w", err)
	}

	s.mu.Lock()
	channel := s.channels[payload.ID]
	var snapshot *revolt.Channel
	if channel != nil {
		snapshot = channel.Snapshot()
		s.removeChannelLocked(payload.ID)
	}
	s.mu.Unlock()

	if snapshot == nil {
		s.logger.DebugContext(ctx, "channel delete for unknown channel", "channel", payload.ID)
		return nil
	}

	s.publish(ctx, &revolt.Event{Name: revolt.EventChannelDelete, Channel: snapshot})

	return nil
}

func (s *State) parseChannelGroupJoin(ctx context.Context, record json.RawMessage) error {
	var payload revolt.GroupMembershipPayload
	if err := json.Unmarshal(record, &payload); err != nil {
		return fmt.Errorf("parse channel group join: %w", err)
	}

	s.mu.RLock()
	channel := s.channels[payload.ChannelID]
	user := s.users[payload.UserID]
	s.mu.RUnlock()

	s.publish(ctx, &revolt.Event{
		Name:    revolt.EventChannelGroupJoin,
		Raw:     record,
		Channel: channel,
		User:    user,
	})

	return nil
}

// parseChannelGroupLeave removes the group channel only when the session
// user left; other members leaving keep the group cached and emit the raw
// notification only.
func (s *State) parseChannelGroupLeave(ctx context.Context, record json.RawMessage) error {
	var payload revolt.GroupMembershipPayload
	if err := json.Unmarshal(record, &payload); err != nil {
		return fmt.Errorf("parse channel group leave: %w", err)
	}

	s.mu.Lock()
	selfLeft := payload.UserID != "" && payload.UserID == s.selfID
	channel := s.channels[payload.ChannelID]
	var snapshot *revolt.Channel
	if channel != nil {
		snapshot = channel.Snapshot()
		if selfLeft {
			s.removeChannelLocked(payload.ChannelID)
		}
	}
	user := s.users[payload.UserID]
	s.mu.Unlock()

	s.publish(ctx, &revolt.Event{
		Name:    revolt.EventChannelGroupLeave,
		Raw:     record,
		Channel: snapshot,
		User:    user,
	})

	return nil
}

func (s *State) parseChannelStartTyping(ctx context.Context, record json.RawMessage) error {
	return s.parseTyping(ctx, record, revolt.EventChannelStartTyping)
}

func (s *State) parseChannelStopTyping(ctx context.Context, record json.RawMessage) error {
	return s.parseTyping(ctx, record, revolt.EventChannelStopTyping)
}

// parseTyping resolves the channel and user best-effort; typing events are
// ephemeral and dispatch even when either reference is unknown.
func (s *State) parseTyping(ctx context.Context, record json.RawMessage, name revolt.EventName) error {
	var payload revolt.TypingPayload
	if err := json.Unmarshal(record, &payload); err != nil {
		return fmt.Errorf("parse typing: %w", err)
	}

	s.mu.RLock()
	channel := s.channels[payload.ChannelID]
	user := s.users[payload.UserID]
	s.mu.RUnlock()

	s.publish(ctx, &revolt.Event{Name: name, Raw: record, Channel: channel, User: user})

	return nil
}

func (s *State) parseChannelAck(ctx context.Context, record json.RawMessage) error {
	s.publish(ctx, &revolt.Event{Name: revolt.EventChannelAck, Raw: record})

	return nil
}

// parseServerUpdate requires a cached server; an unknown reference is
// logged and dropped.
func (s *State) parseServerUpdate(ctx context.Context, record json.RawMessage) error {
	var payload revolt.ServerUpdatePayload
	if err := json.Unmarshal(record, &payload); err != nil {
		return fmt.Errorf("parse server update: %w", err)
	}

	s.mu.Lock()
	server := s.servers[payload.ID]
	var old *revolt.Server
	if server != nil {
		old = server.Snapshot()
		server.ApplyUpdate(payload.Data, payload.Clear)
	}
	s.mu.Unlock()

	if server == nil {
		s.logger.DebugContext(ctx, "server update for unknown server, dropping", "server", payload.ID)
		return nil
	}

	s.publish(ctx, &revolt.Event{Name: revolt.EventServerUpdate, ServerDiff: &revolt.ServerDiff{Old: old, New: server}})

	return nil
}

// parseServerDelete snapshots then removes the server, cascading channel
// and member removal.
func (s *State) parseServerDelete(ctx context.Context, record json.RawMessage) error {
	var payload revolt.ServerDeletePayload
	if err := json.Unmarshal(record, &payload); err != nil {
		return fmt.Errorf("parse server delete: %w", err)
	}

	s.mu.Lock()
	server := s.servers[payload.ID]
	var snapshot *revolt.Server
	if server != nil {
		snapshot = server.Snapshot()
		s.removeServerLocked(payload.ID)
	}
	s.mu.Unlock()

	if snapshot == nil {
		s.logger.DebugContext(ctx, "server delete for unknown server, dropping", "server", payload.ID)
		return nil
	}

	s.publish(ctx, &revolt.Event{Name: revolt.EventServerDelete, Server: snapshot})

	return nil
}

// parseServerMemberJoin adds a member. Join records reference the user by
// bare id, so the new entry is the partial shape scoped to the server.
func (s *State) parseServerMemberJoin(ctx context.Context, record json.RawMessage) error {
	var payload revolt.ServerMembershipPayload
	if err := json.Unmarshal(record, &payload); err != nil {
		return fmt.Errorf("parse server member join: %w", err)
	}

	s.mu.Lock()
	member, err := s.addMemberLocked(revolt.MemberPayload{UserID: payload.UserID}, payload.ServerID)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("parse server member join: %w", err)
	}

	s.publish(ctx, &revolt.Event{Name: revolt.EventServerMemberJoin, Member: member})

	return nil
}

func (s *State) parseServerMemberLeave(ctx context.Context, record json.RawMessage) error {
	var payload revolt.ServerMembershipPayload
	if err := json.Unmarshal(record, &payload); err != nil {
		return fmt.Errorf("parse server member leave: %w", err)
	}

	s.mu.Lock()
	member := s.members[memberKey{serverID: payload.ServerID, userID: payload.UserID}]
	var snapshot *revolt.Member
	if member != nil {
		snapshot = member.Snapshot()
		s.removeMemberLocked(payload.ServerID, payload.UserID)
	}
	s.mu.Unlock()

	if member == nil {
		s.logger.DebugContext(ctx, "member leave for unknown member",
			"server", payload.ServerID, "user", payload.UserID)
	}

	s.publish(ctx, &revolt.Event{Name: revolt.EventServerMemberLeave, Raw: record, Member: snapshot})

	return nil
}

func (s *State) parseServerMemberUpdate(ctx context.Context, record json.RawMessage) error {
	var payload revolt.ServerMemberUpdatePayload
	if err := json.Unmarshal(record, &payload); err != nil {
		return fmt.Errorf("parse server member update: %w", err)
	}

	s.mu.Lock()
	member := s.members[memberKey{serverID: payload.ID.ServerID, userID: payload.ID.UserID}]
	var old *revolt.Member
	if member != nil {
		old = member.Snapshot()
		member.ApplyUpdate(payload.Data, payload.Clear)
	}
	s.mu.Unlock()

	if member == nil {
		s.logger.DebugContext(ctx, "member update for unknown member",
			"server", payload.ID.ServerID, "user", payload.ID.UserID)
		s.publish(ctx, &revolt.Event{Name: revolt.EventRawServerMemberUpdate, Raw: record})
		return nil
	}

	s.publish(ctx,
		&revolt.Event{Name: revolt.EventRawServerMemberUpdate, Raw: record},
		&revolt.Event{Name: revolt.EventServerMemberUpdate, MemberDiff: &revolt.MemberDiff{Old: old, New: member}},
	)

	return nil
}

// Roles are not cached entities; role events dispatch raw only.

func (s *State) parseServerRoleUpdate(ctx context.Context, record json.RawMessage) error {
	s.publish(ctx, &revolt.Event{Name: revolt.EventServerRoleUpdate, Raw: record})

	return nil
}

func (s *State) parseServerRoleDelete(ctx context.Context, record json.RawMessage) error {
	s.publish(ctx, &revolt.Event{Name: revolt.EventServerRoleDelete, Raw: record})

	return nil
}

func (s *State) parseUserUpdate(ctx context.Context, record json.RawMessage) error {
	var payload revolt.UserUpdatePayload
	if err := json.Unmarshal(record, &payload); err != nil {
		return fmt.Errorf("parse user update: %w", err)
	}

	s.mu.Lock()
	user := s.users[payload.ID]
	var old *revolt.User
	if user != nil {
		old = user.Snapshot()
		user.ApplyUpdate(payload.Data, payload.Clear)
	}
	s.mu.Unlock()

	if user == nil {
		s.logger.DebugContext(ctx, "user update for unknown user", "user", payload.ID)
		s.publish(ctx, &revolt.Event{Name: revolt.EventRawUserUpdate, Raw: record})
		return nil
	}

	s.publish(ctx,
		&revolt.Event{Name: revolt.EventRawUserUpdate, Raw: record},
		&revolt.Event{Name: revolt.EventUserUpdate, UserDiff: &revolt.UserDiff{Old: old, New: user}},
	)

	return nil
}

// parseUserRelationship tracks the relationship on the cached user. A
// relationship dropping to None evicts the user: nothing references them
// anymore and further events will not arrive for them.
func (s *State) parseUserRelationship(ctx context.Context, record json.RawMessage) error {
	var payload revolt.UserRelationshipPayload
	if err := json.Unmarshal(record, &payload); err != nil {
		return fmt.Errorf("parse user relationship: %w", err)
	}

	s.mu.Lock()
	user := s.users[payload.UserID]
	var snapshot *revolt.User
	if user != nil {
		user.Relationship = payload.Status
		snapshot = user.Snapshot()
		if payload.Status == "None" {
			s.removeUserLocked(payload.UserID)
		}
	}
	s.mu.Unlock()

	s.publish(ctx, &revolt.Event{Name: revolt.EventUserRelationship, Raw: record, User: snapshot})

	return nil
}
