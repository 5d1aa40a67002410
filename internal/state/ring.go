package state

import "revoltgo/pkg/revolt"

// messageRing is the bounded recent-message buffer. Insertion order is
// arrival order; when the buffer is full the oldest entry is evicted.
// Capacity zero disables message caching entirely.
type messageRing struct {
	capacity int
	items    []*revolt.Message
}

func newMessageRing(capacity int) *messageRing {
	return &messageRing{capacity: capacity}
}

// Add appends one message, evicting the oldest entry when full.
func (r *messageRing) Add(message *revolt.Message) {
	if r.capacity <= 0 || message == nil {
		return
	}
	if len(r.items) == r.capacity {
		copy(r.items, r.items[1:])
		r.items[len(r.items)-1] = nil
		r.items = r.items[:len(r.items)-1]
	}
	r.items = append(r.items, message)
}

// Get returns the newest cached message with the given id, nil when absent.
func (r *messageRing) Get(messageID string) *revolt.Message {
	for idx := len(r.items) - 1; idx >= 0; idx-- {
		if r.items[idx].ID == messageID {
			return r.items[idx]
		}
	}

	return nil
}

// Remove drops the message with the given id, reporting whether it was present.
func (r *messageRing) Remove(messageID string) bool {
	for idx, item := range r.items {
		if item.ID == messageID {
			copy(r.items[idx:], r.items[idx+1:])
			r.items[len(r.items)-1] = nil
			r.items = r.items[:len(r.items)-1]
			return true
		}
	}

	return false
}

// RemoveChannel drops every message belonging to the given channel.
func (r *messageRing) RemoveChannel(channelID string) {
	kept := r.items[:0]
	for _, item := range r.items {
		if item.Channel == nil || item.Channel.ID != channelID {
			kept = append(kept, item)
		}
	}
	for idx := len(kept); idx < len(r.items); idx++ {
		r.items[idx] = nil
	}
	r.items = kept
}

// Len returns the number of cached messages.
func (r *messageRing) Len() int {
	return len(r.items)
}

// All returns a copy of the buffer in arrival order.
func (r *messageRing) All() []*revolt.Message {
	return append([]*revolt.Message(nil), r.items...)
}

// Reset drops every cached message, keeping capacity.
func (r *messageRing) Reset() {
	r.items = nil
}
