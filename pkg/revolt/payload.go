package revolt

import "encoding/json"

// UserPayload is the wire shape of a user object.
type UserPayload struct {
	ID           string      `json:"_id"`
	Username     string      `json:"username"`
	Status       *UserStatus `json:"status,omitempty"`
	Online       bool        `json:"online,omitempty"`
	Relationship string      `json:"relationship,omitempty"`
	Bot          *BotInfo    `json:"bot,omitempty"`
}

// UserStatus is the presence block attached to a user object.
type UserStatus struct {
	Text     string `json:"text,omitempty"`
	Presence string `json:"presence,omitempty"`
}

// BotInfo marks a user as an automated account.
type BotInfo struct {
	OwnerID string `json:"owner"`
}

// CategoryPayload is the wire shape of a server channel category.
type CategoryPayload struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	ChannelIDs []string `json:"channels"`
}

// ServerPayload is the wire shape of a server object.
type ServerPayload struct {
	ID          string            `json:"_id"`
	OwnerID     string            `json:"owner"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	ChannelIDs  []string          `json:"channels"`
	MemberIDs   []string          `json:"members,omitempty"`
	Categories  []CategoryPayload `json:"categories,omitempty"`
	Roles       json.RawMessage   `json:"roles,omitempty"`
}

// ChannelPayload is the wire shape of a channel object for every variant.
// ChannelType selects which fields are meaningful.
type ChannelPayload struct {
	ID            string   `json:"_id"`
	ChannelType   string   `json:"channel_type"`
	ServerID      string   `json:"server,omitempty"`
	Name          string   `json:"name,omitempty"`
	Topic         string   `json:"topic,omitempty"`
	Active        bool     `json:"active,omitempty"`
	RecipientIDs  []string `json:"recipients,omitempty"`
	OwnerID       string   `json:"user,omitempty"`
	LastMessageID string   `json:"last_message,omitempty"`
}

// MemberID is the composite identifier of a server member.
type MemberID struct {
	ServerID string `json:"server"`
	UserID   string `json:"user"`
}

// MemberPayload is the wire shape of a server member.
//
// Two shapes exist on the wire: a full member carries the composite ID
// object plus server-scoped fields, a partial member carries only a bare
// user id reference. See NewMember for the selection rule.
type MemberPayload struct {
	ID       *MemberID `json:"_id,omitempty"`
	UserID   string    `json:"user,omitempty"`
	Nickname string    `json:"nickname,omitempty"`
}

// AttachmentMetadata describes attachment media dimensions.
type AttachmentMetadata struct {
	Type   string `json:"type"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// AttachmentPayload is the wire shape of a file attachment.
type AttachmentPayload struct {
	ID          string             `json:"_id"`
	Tag         string             `json:"tag"`
	Filename    string             `json:"filename"`
	Size        int64              `json:"size"`
	ContentType string             `json:"content_type,omitempty"`
	Metadata    AttachmentMetadata `json:"metadata"`
}

// MessagePayload is the wire shape of a message object.
type MessagePayload struct {
	ID          string              `json:"_id"`
	ChannelID   string              `json:"channel"`
	AuthorID    string              `json:"author"`
	Content     string              `json:"content"`
	Nonce       string              `json:"nonce,omitempty"`
	Attachments []AttachmentPayload `json:"attachments,omitempty"`
}

// APIInfo is the node information document served at the API root.
//
// It is fetched once per session and carries the runtime endpoints the
// client cannot know statically, including the file server base URL used
// to derive attachment download URLs.
type APIInfo struct {
	Version      string      `json:"revolt"`
	Features     APIFeatures `json:"features"`
	WebsocketURL string      `json:"ws"`
	AppURL       string      `json:"app,omitempty"`
}

// APIFeatures lists optional service endpoints advertised by the node.
type APIFeatures struct {
	Autumn  FeatureEndpoint `json:"autumn"`
	January FeatureEndpoint `json:"january"`
}

// FeatureEndpoint describes one optional service endpoint.
type FeatureEndpoint struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
}

// ReadyPayload is the bootstrap snapshot sent once per gateway connection.
type ReadyPayload struct {
	Users    []UserPayload    `json:"users"`
	Servers  []ServerPayload  `json:"servers"`
	Channels []ChannelPayload `json:"channels"`
	Members  []MemberPayload  `json:"members"`
}

// UserEditData is the partial field set of a UserUpdate event.
type UserEditData struct {
	Username *string     `json:"username,omitempty"`
	Status   *UserStatus `json:"status,omitempty"`
	Online   *bool       `json:"online,omitempty"`
}

// ServerEditData is the partial field set of a ServerUpdate event.
type ServerEditData struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	OwnerID     *string `json:"owner,omitempty"`
}

// ChannelEditData is the partial field set of a ChannelUpdate event.
type ChannelEditData struct {
	Name   *string `json:"name,omitempty"`
	Topic  *string `json:"topic,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// MemberEditData is the partial field set of a ServerMemberUpdate event.
type MemberEditData struct {
	Nickname *string `json:"nickname,omitempty"`
}

// MessageEditData is the partial field set of a MessageUpdate event.
type MessageEditData struct {
	Content *string `json:"content,omitempty"`
}

// MessageUpdatePayload is the wire shape of a MessageUpdate event.
type MessageUpdatePayload struct {
	ID        string          `json:"id"`
	ChannelID string          `json:"channel,omitempty"`
	Data      MessageEditData `json:"data"`
}

// MessageDeletePayload is the wire shape of a MessageDelete event.
type MessageDeletePayload struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel,omitempty"`
}

// ChannelUpdatePayload is the wire shape of a ChannelUpdate event.
type ChannelUpdatePayload struct {
	ID    string          `json:"id"`
	Data  ChannelEditData `json:"data"`
	Clear string          `json:"clear,omitempty"`
}

// ChannelDeletePayload is the wire shape of a ChannelDelete event.
type ChannelDeletePayload struct {
	ID string `json:"id"`
}

// GroupMembershipPayload is the wire shape of group join/leave events.
type GroupMembershipPayload struct {
	ChannelID string `json:"id"`
	UserID    string `json:"user"`
}

// TypingPayload is the wire shape of typing start/stop events.
type TypingPayload struct {
	ChannelID string `json:"id"`
	UserID    string `json:"user"`
}

// ChannelAckPayload is the wire shape of a ChannelAck event.
type ChannelAckPayload struct {
	ChannelID string `json:"id"`
	UserID    string `json:"user"`
	MessageID string `json:"message_id"`
}

// ServerUpdatePayload is the wire shape of a ServerUpdate event.
type ServerUpdatePayload struct {
	ID    string         `json:"id"`
	Data  ServerEditData `json:"data"`
	Clear string         `json:"clear,omitempty"`
}

// ServerDeletePayload is the wire shape of a ServerDelete event.
type ServerDeletePayload struct {
	ID string `json:"id"`
}

// ServerMembershipPayload is the wire shape of member join/leave events.
type ServerMembershipPayload struct {
	ServerID string `json:"id"`
	UserID   string `json:"user"`
}

// ServerMemberUpdatePayload is the wire shape of a ServerMemberUpdate event.
type ServerMemberUpdatePayload struct {
	ID    MemberID       `json:"id"`
	Data  MemberEditData `json:"data"`
	Clear string         `json:"clear,omitempty"`
}

// ServerRolePayload is the wire shape of role update/delete events.
type ServerRolePayload struct {
	ServerID string          `json:"id"`
	RoleID   string          `json:"role_id"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// UserUpdatePayload is the wire shape of a UserUpdate event.
type UserUpdatePayload struct {
	ID    string       `json:"id"`
	Data  UserEditData `json:"data"`
	Clear string       `json:"clear,omitempty"`
}

// UserRelationshipPayload is the wire shape of a UserRelationship event.
type UserRelationshipPayload struct {
	ID     string `json:"id"`
	UserID string `json:"user"`
	Status string `json:"status"`
}
