package revolt

import (
	"fmt"
	"strings"
)

// spoilerPrefix is the filename convention marking spoiler attachments.
const spoilerPrefix = "SPOILER_"

// Attachment is immutable file metadata attached to a message.
type Attachment struct {
	ID          string
	Tag         string
	Filename    string
	ContentType string
	Size        int64
	Width       int
	Height      int

	// fileBaseURL is the file server base advertised by the node at
	// runtime; it is unknown statically and injected at construction.
	fileBaseURL string
}

// NewAttachment constructs attachment metadata from its wire payload.
func NewAttachment(payload AttachmentPayload, fileBaseURL string) Attachment {
	return Attachment{
		ID:          payload.ID,
		Tag:         payload.Tag,
		Filename:    payload.Filename,
		ContentType: payload.ContentType,
		Size:        payload.Size,
		Width:       payload.Metadata.Width,
		Height:      payload.Metadata.Height,
		fileBaseURL: fileBaseURL,
	}
}

// URL returns the download location for this attachment, empty when the
// node did not advertise a file server.
func (a Attachment) URL() string {
	if a.fileBaseURL == "" {
		return ""
	}

	return a.fileBaseURL + "/" + a.Tag + "/" + a.ID
}

// IsSpoiler reports whether the attachment uses the spoiler filename convention.
func (a Attachment) IsSpoiler() bool {
	return strings.HasPrefix(a.Filename, spoilerPrefix)
}

// Message is a cached message. It belongs to exactly one channel, which
// must already exist in the cache when the message is constructed; the
// author is referenced by id and resolved lazily through the cache.
type Message struct {
	ID          string
	Channel     *Channel
	AuthorID    string
	Content     string
	Nonce       string
	Attachments []Attachment
}

// NewMessage constructs a message entity from its wire payload. The channel
// reference is mandatory: messages are never cached for unknown channels.
func NewMessage(payload MessagePayload, channel *Channel, fileBaseURL string) (*Message, error) {
	if payload.ID == "" {
		return nil, fmt.Errorf("new message: %w: missing id", ErrInvalidPayload)
	}
	if channel == nil {
		return nil, fmt.Errorf("new message %s: %w: missing channel", payload.ID, ErrInvalidPayload)
	}

	message := &Message{
		ID:       payload.ID,
		Channel:  channel,
		AuthorID: payload.AuthorID,
		Content:  payload.Content,
		Nonce:    payload.Nonce,
	}
	for _, attachment := range payload.Attachments {
		message.Attachments = append(message.Attachments, NewAttachment(attachment, fileBaseURL))
	}

	return message, nil
}

// ApplyUpdate merges partial update data into the message in place.
func (m *Message) ApplyUpdate(data MessageEditData) {
	if data.Content != nil {
		m.Content = *data.Content
	}
}

// Snapshot returns a copy with the owned attachments slice cloned. The
// channel back-reference stays shared; it identifies the owner.
func (m *Message) Snapshot() *Message {
	if m == nil {
		return nil
	}
	copied := *m
	copied.Attachments = append([]Attachment(nil), m.Attachments...)

	return &copied
}
