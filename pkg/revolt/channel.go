package revolt

import "fmt"

// ChannelType identifies a channel variant. Values match the wire
// discriminant carried in ChannelPayload.ChannelType.
type ChannelType string

const (
	// ChannelTypeSavedMessages is the per-user notes channel.
	ChannelTypeSavedMessages ChannelType = "SavedMessages"
	// ChannelTypeDirectMessage is a one-to-one conversation.
	ChannelTypeDirectMessage ChannelType = "DirectMessage"
	// ChannelTypeGroup is a multi-user conversation outside a server.
	ChannelTypeGroup ChannelType = "Group"
	// ChannelTypeText is a text channel owned by a server.
	ChannelTypeText ChannelType = "TextChannel"
	// ChannelTypeVoice is a voice channel owned by a server.
	ChannelTypeVoice ChannelType = "VoiceChannel"
)

// Channel is a cached channel. It is a tagged union over the five variants:
// Type selects which fields are meaningful.
//
// The server back-reference is set at construction and never changes.
type Channel struct {
	ID   string
	Type ChannelType

	// Name and Topic apply to server channels and groups.
	Name  string
	Topic string

	// Active and RecipientIDs apply to direct messages and groups.
	Active       bool
	RecipientIDs []string

	// OwnerID applies to saved-messages channels.
	OwnerID string

	LastMessageID string

	server *Server
}

// channelConstructor is the per-variant construction function selected by
// the discriminant. All variants share the Channel representation; each
// constructor populates only its variant's fields.
type channelConstructor func(payload ChannelPayload, server *Server) *Channel

// constructorForChannelType selects a variant constructor from the payload
// discriminant. An unrecognized discriminant is a hard error: it indicates
// protocol drift the client cannot safely ignore.
func constructorForChannelType(channelType ChannelType) (channelConstructor, error) {
	switch channelType {
	case ChannelTypeSavedMessages:
		return newSavedMessagesChannel, nil
	case ChannelTypeDirectMessage:
		return newDirectMessageChannel, nil
	case ChannelTypeGroup:
		return newGroupChannel, nil
	case ChannelTypeText:
		return newTextChannel, nil
	case ChannelTypeVoice:
		return newVoiceChannel, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannelType, channelType)
	}
}

// NewChannel constructs a channel entity from its wire payload, dispatching
// on the channel_type discriminant. The server reference may be nil for
// variants that live outside a server.
func NewChannel(payload ChannelPayload, server *Server) (*Channel, error) {
	if payload.ID == "" {
		return nil, fmt.Errorf("new channel: %w: missing id", ErrInvalidPayload)
	}
	construct, err := constructorForChannelType(ChannelType(payload.ChannelType))
	if err != nil {
		return nil, fmt.Errorf("new channel %s: %w", payload.ID, err)
	}

	return construct(payload, server), nil
}

func newSavedMessagesChannel(payload ChannelPayload, server *Server) *Channel {
	return &Channel{
		ID:      payload.ID,
		Type:    ChannelTypeSavedMessages,
		OwnerID: payload.OwnerID,
		server:  server,
	}
}

func newDirectMessageChannel(payload ChannelPayload, server *Server) *Channel {
	return &Channel{
		ID:            payload.ID,
		Type:          ChannelTypeDirectMessage,
		Active:        payload.Active,
		RecipientIDs:  append([]string(nil), payload.RecipientIDs...),
		LastMessageID: payload.LastMessageID,
		server:        server,
	}
}

func newGroupChannel(payload ChannelPayload, server *Server) *Channel {
	return &Channel{
		ID:            payload.ID,
		Type:          ChannelTypeGroup,
		Name:          payload.Name,
		Active:        payload.Active,
		RecipientIDs:  append([]string(nil), payload.RecipientIDs...),
		LastMessageID: payload.LastMessageID,
		server:        server,
	}
}

func newTextChannel(payload ChannelPayload, server *Server) *Channel {
	return &Channel{
		ID:            payload.ID,
		Type:          ChannelTypeText,
		Name:          payload.Name,
		Topic:         payload.Topic,
		LastMessageID: payload.LastMessageID,
		server:        server,
	}
}

func newVoiceChannel(payload ChannelPayload, server *Server) *Channel {
	return &Channel{
		ID:     payload.ID,
		Type:   ChannelTypeVoice,
		Name:   payload.Name,
		Topic:  payload.Topic,
		server: server,
	}
}

// Server returns the owning server back-reference, nil for channels that
// live outside a server.
func (c *Channel) Server() *Server {
	return c.server
}

// ApplyUpdate merges partial update data into the channel in place.
// Clear removes one optional field ahead of the merge.
func (c *Channel) ApplyUpdate(data ChannelEditData, clear string) {
	if clear == "Topic" {
		c.Topic = ""
	}
	if data.Name != nil {
		c.Name = *data.Name
	}
	if data.Topic != nil {
		c.Topic = *data.Topic
	}
	if data.Active != nil {
		c.Active = *data.Active
	}
}

// Snapshot returns a copy with the owned recipients slice cloned. The
// server back-reference is shared: it identifies the owner, it is not an
// owned collection.
func (c *Channel) Snapshot() *Channel {
	if c == nil {
		return nil
	}
	copied := *c
	copied.RecipientIDs = append([]string(nil), c.RecipientIDs...)

	return &copied
}
