package revolt

// User is a cached user profile.
//
// Users are created and mutated exclusively by the connection state engine;
// consumers holding a pointer observe updates applied by later events.
type User struct {
	ID           string
	Username     string
	StatusText   string
	Presence     string
	Online       bool
	Relationship string
	Bot          bool
	BotOwnerID   string
}

// NewUser constructs a user entity from its wire payload.
func NewUser(payload UserPayload) *User {
	user := &User{
		ID:           payload.ID,
		Username:     payload.Username,
		Online:       payload.Online,
		Relationship: payload.Relationship,
	}
	if payload.Status != nil {
		user.StatusText = payload.Status.Text
		user.Presence = payload.Status.Presence
	}
	if payload.Bot != nil {
		user.Bot = true
		user.BotOwnerID = payload.Bot.OwnerID
	}

	return user
}

// ApplyUpdate merges partial update data into the user in place.
// Clear removes one optional field ahead of the merge.
func (u *User) ApplyUpdate(data UserEditData, clear string) {
	if clear == "StatusText" {
		u.StatusText = ""
	}
	if data.Username != nil {
		u.Username = *data.Username
	}
	if data.Status != nil {
		u.StatusText = data.Status.Text
		u.Presence = data.Status.Presence
	}
	if data.Online != nil {
		u.Online = *data.Online
	}
}

// Snapshot returns a shallow copy preserving every field value at this instant.
func (u *User) Snapshot() *User {
	if u == nil {
		return nil
	}
	copied := *u

	return &copied
}
