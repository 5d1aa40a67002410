package revolt

import "fmt"

// Member pairs a user reference with server-scoped fields. Two shapes share
// identity by user id: a partial member carries only the reference, a full
// member carries the server-scoped fields as well.
type Member struct {
	ServerID string
	UserID   string
	Nickname string

	// Partial reports that this member was built from a bare user
	// reference and carries no server-scoped fields yet.
	Partial bool
}

// NewMember constructs a member entity from its wire payload.
//
// Shape selection is structural: a payload carrying a bare "user" id is a
// partial member scoped to serverID, a payload carrying the composite "_id"
// object is a full member. The protocol offers no explicit shape tag, so
// this heuristic is load-bearing; if upstream ever adds a tag, prefer it.
func NewMember(payload MemberPayload, serverID string) (*Member, error) {
	if payload.UserID != "" {
		if serverID == "" {
			return nil, fmt.Errorf("new member %s: %w: missing server id", payload.UserID, ErrInvalidPayload)
		}

		return &Member{
			ServerID: serverID,
			UserID:   payload.UserID,
			Partial:  true,
		}, nil
	}

	if payload.ID == nil || payload.ID.UserID == "" || payload.ID.ServerID == "" {
		return nil, fmt.Errorf("new member: %w: missing identity", ErrInvalidPayload)
	}

	return &Member{
		ServerID: payload.ID.ServerID,
		UserID:   payload.ID.UserID,
		Nickname: payload.Nickname,
	}, nil
}

// ApplyUpdate merges partial update data into the member in place.
// Clear removes one optional field ahead of the merge.
func (m *Member) ApplyUpdate(data MemberEditData, clear string) {
	if clear == "Nickname" {
		m.Nickname = ""
	}
	if data.Nickname != nil {
		m.Nickname = *data.Nickname
		m.Partial = false
	}
}

// Snapshot returns a shallow copy preserving every field value at this instant.
func (m *Member) Snapshot() *Member {
	if m == nil {
		return nil
	}
	copied := *m

	return &copied
}
