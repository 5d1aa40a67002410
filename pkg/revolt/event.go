package revolt

import (
	"encoding/json"
	"fmt"
)

// EventName identifies a user-facing notification emitted by the
// connection state engine.
//
// Raw events carry the undecoded gateway payload and fire regardless of
// whether the referenced entities were resolvable; their typed
// counterparts fire only when resolution succeeded and carry old/new
// entity pairs for update-style events.
type EventName string

const (
	// EventReady fires after the bootstrap snapshot populated the cache.
	EventReady EventName = "ready"
	// EventMessage fires when a new message is cached.
	EventMessage EventName = "message"
	// EventRawMessageEdit fires for every message edit, resolved or not.
	EventRawMessageEdit EventName = "raw_message_edit"
	// EventMessageEdit fires with old/new pairs for cached messages.
	EventMessageEdit EventName = "message_edit"
	// EventRawMessageDelete fires for every message delete, resolved or not.
	EventRawMessageDelete EventName = "raw_message_delete"
	// EventMessageDelete fires when a cached message is removed.
	EventMessageDelete EventName = "message_delete"
	// EventChannelCreate fires when a channel is cached.
	EventChannelCreate EventName = "channel_create"
	// EventRawChannelUpdate fires for every channel update, resolved or not.
	EventRawChannelUpdate EventName = "raw_channel_update"
	// EventChannelUpdate fires with old/new pairs for cached channels.
	EventChannelUpdate EventName = "channel_update"
	// EventChannelDelete fires with the snapshot of a removed channel.
	EventChannelDelete EventName = "channel_delete"
	// EventChannelGroupJoin fires when a user joins a group channel.
	EventChannelGroupJoin EventName = "channel_group_join"
	// EventChannelGroupLeave fires when a user leaves a group channel.
	EventChannelGroupLeave EventName = "channel_group_leave"
	// EventChannelStartTyping fires when a user starts typing.
	EventChannelStartTyping EventName = "channel_start_typing"
	// EventChannelStopTyping fires when a user stops typing.
	EventChannelStopTyping EventName = "channel_stop_typing"
	// EventChannelAck fires when a channel read-marker moves.
	EventChannelAck EventName = "channel_ack"
	// EventServerUpdate fires with old/new pairs for cached servers.
	EventServerUpdate EventName = "server_update"
	// EventServerDelete fires with the snapshot of a removed server.
	EventServerDelete EventName = "server_delete"
	// EventServerMemberJoin fires when a member is cached.
	EventServerMemberJoin EventName = "server_member_join"
	// EventServerMemberLeave fires when a member leaves a server.
	EventServerMemberLeave EventName = "server_member_leave"
	// EventRawServerMemberUpdate fires for every member update, resolved or not.
	EventRawServerMemberUpdate EventName = "raw_server_member_update"
	// EventServerMemberUpdate fires with old/new pairs for cached members.
	EventServerMemberUpdate EventName = "server_member_update"
	// EventServerRoleUpdate fires for role changes; roles are not cached entities.
	EventServerRoleUpdate EventName = "server_role_update"
	// EventServerRoleDelete fires for role removals; roles are not cached entities.
	EventServerRoleDelete EventName = "server_role_delete"
	// EventRawUserUpdate fires for every user update, resolved or not.
	EventRawUserUpdate EventName = "raw_user_update"
	// EventUserUpdate fires with old/new pairs for cached users.
	EventUserUpdate EventName = "user_update"
	// EventUserRelationship fires when a relationship status changes.
	EventUserRelationship EventName = "user_relationship"
)

// ReadyEvent summarizes the bootstrap snapshot applied to the cache.
type ReadyEvent struct {
	// SelfID is the session user id resolved from the snapshot.
	SelfID string
	// Entity counts after bulk population.
	Users    int
	Servers  int
	Channels int
	Members  int
}

// MessageDiff carries the before/after pair of a message update.
type MessageDiff struct {
	Old *Message
	New *Message
}

// ChannelDiff carries the before/after pair of a channel update.
type ChannelDiff struct {
	Old *Channel
	New *Channel
}

// ServerDiff carries the before/after pair of a server update.
type ServerDiff struct {
	Old *Server
	New *Server
}

// MemberDiff carries the before/after pair of a member update.
type MemberDiff struct {
	Old *Member
	New *Member
}

// UserDiff carries the before/after pair of a user update.
type UserDiff struct {
	Old *User
	New *User
}

// Event is the envelope delivered to user-registered handlers.
//
// Fields are composable payload branches selected by Name: raw events set
// Raw (and CachedMessage when a lookup was attempted), typed events set
// the resolved entity or diff branch. Branches not named by the event are
// nil.
type Event struct {
	Name EventName

	// Raw is the undecoded gateway payload, set on every raw_* event and
	// on events that have no typed entity form.
	Raw json.RawMessage

	// CachedMessage is the cache lookup result accompanying raw message
	// events; nil when the referenced message was unknown.
	CachedMessage *Message

	Ready       *ReadyEvent
	Message     *Message
	MessageDiff *MessageDiff
	Channel     *Channel
	ChannelDiff *ChannelDiff
	Server      *Server
	ServerDiff  *ServerDiff
	Member      *Member
	MemberDiff  *MemberDiff
	User        *User
	UserDiff    *UserDiff
}

// Validate checks envelope and payload-branch coherence before dispatch.
func (e *Event) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}
	if e.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidEvent)
	}

	return validatePayloadByName(e)
}

// validatePayloadByName enforces the payload branch each event name requires.
func validatePayloadByName(e *Event) error {
	switch e.Name {
	case EventReady:
		if e.Ready == nil {
			return fmt.Errorf("%w: ready requires ready payload", ErrInvalidEvent)
		}
	case EventMessage, EventMessageDelete:
		if e.Message == nil {
			return fmt.Errorf("%w: %s requires message payload", ErrInvalidEvent, e.Name)
		}
	case EventMessageEdit:
		if e.MessageDiff == nil || e.MessageDiff.Old == nil || e.MessageDiff.New == nil {
			return fmt.Errorf("%w: message_edit requires old/new messages", ErrInvalidEvent)
		}
	case EventChannelCreate, EventChannelDelete:
		if e.Channel == nil {
			return fmt.Errorf("%w: %s requires channel payload", ErrInvalidEvent, e.Name)
		}
	case EventChannelUpdate:
		if e.ChannelDiff == nil || e.ChannelDiff.Old == nil || e.ChannelDiff.New == nil {
			return fmt.Errorf("%w: channel_update requires old/new channels", ErrInvalidEvent)
		}
	case EventServerUpdate:
		if e.ServerDiff == nil || e.ServerDiff.Old == nil || e.ServerDiff.New == nil {
			return fmt.Errorf("%w: server_update requires old/new servers", ErrInvalidEvent)
		}
	case EventServerDelete:
		if e.Server == nil {
			return fmt.Errorf("%w: server_delete requires server payload", ErrInvalidEvent)
		}
	case EventServerMemberJoin:
		if e.Member == nil {
			return fmt.Errorf("%w: server_member_join requires member payload", ErrInvalidEvent)
		}
	case EventServerMemberUpdate:
		if e.MemberDiff == nil || e.MemberDiff.Old == nil || e.MemberDiff.New == nil {
			return fmt.Errorf("%w: server_member_update requires old/new members", ErrInvalidEvent)
		}
	case EventUserUpdate:
		if e.UserDiff == nil || e.UserDiff.Old == nil || e.UserDiff.New == nil {
			return fmt.Errorf("%w: user_update requires old/new users", ErrInvalidEvent)
		}
	case EventRawMessageEdit, EventRawMessageDelete, EventRawChannelUpdate,
		EventRawServerMemberUpdate, EventRawUserUpdate,
		EventChannelGroupJoin, EventChannelGroupLeave,
		EventChannelStartTyping, EventChannelStopTyping, EventChannelAck,
		EventServerMemberLeave, EventServerRoleUpdate, EventServerRoleDelete,
		EventUserRelationship:
		if e.Raw == nil {
			return fmt.Errorf("%w: %s requires raw payload", ErrInvalidEvent, e.Name)
		}
	default:
		return fmt.Errorf("%w: unsupported name %q", ErrInvalidEvent, e.Name)
	}

	return nil
}
