package revolt

import "encoding/json"

// Category is an ordered subset of a server's channels under one title.
type Category struct {
	ID         string
	Title      string
	ChannelIDs []string
}

// Server is a cached server (guild) and the authority for its channel and
// member membership lists. Channels and members hold back-references to the
// server, never the other way around.
type Server struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	ChannelIDs  []string
	MemberIDs   []string
	Categories  []Category
	Roles       json.RawMessage
}

// NewServer constructs a server entity from its wire payload.
func NewServer(payload ServerPayload) *Server {
	server := &Server{
		ID:          payload.ID,
		OwnerID:     payload.OwnerID,
		Name:        payload.Name,
		Description: payload.Description,
		ChannelIDs:  append([]string(nil), payload.ChannelIDs...),
		MemberIDs:   append([]string(nil), payload.MemberIDs...),
		Roles:       payload.Roles,
	}
	for _, category := range payload.Categories {
		server.Categories = append(server.Categories, Category{
			ID:         category.ID,
			Title:      category.Title,
			ChannelIDs: append([]string(nil), category.ChannelIDs...),
		})
	}

	return server
}

// ApplyUpdate merges partial update data into the server in place.
// Clear removes one optional field ahead of the merge.
func (s *Server) ApplyUpdate(data ServerEditData, clear string) {
	if clear == "Description" {
		s.Description = ""
	}
	if data.Name != nil {
		s.Name = *data.Name
	}
	if data.Description != nil {
		s.Description = *data.Description
	}
	if data.OwnerID != nil {
		s.OwnerID = *data.OwnerID
	}
}

// Snapshot returns a copy with owned membership slices cloned, so diff
// consumers never alias the live server's collections.
func (s *Server) Snapshot() *Server {
	if s == nil {
		return nil
	}
	copied := *s
	copied.ChannelIDs = append([]string(nil), s.ChannelIDs...)
	copied.MemberIDs = append([]string(nil), s.MemberIDs...)
	copied.Categories = make([]Category, 0, len(s.Categories))
	for _, category := range s.Categories {
		copied.Categories = append(copied.Categories, Category{
			ID:         category.ID,
			Title:      category.Title,
			ChannelIDs: append([]string(nil), category.ChannelIDs...),
		})
	}

	return &copied
}

// RemoveChannelID drops one channel id from the server's channel list and
// from every category holding it.
func (s *Server) RemoveChannelID(channelID string) {
	s.ChannelIDs = removeString(s.ChannelIDs, channelID)
	for idx := range s.Categories {
		s.Categories[idx].ChannelIDs = removeString(s.Categories[idx].ChannelIDs, channelID)
	}
}

// AddMemberID appends one member user id when not already listed.
func (s *Server) AddMemberID(userID string) {
	for _, existing := range s.MemberIDs {
		if existing == userID {
			return
		}
	}
	s.MemberIDs = append(s.MemberIDs, userID)
}

// RemoveMemberID drops one member user id from the server's member list.
func (s *Server) RemoveMemberID(userID string) {
	s.MemberIDs = removeString(s.MemberIDs, userID)
}

func removeString(values []string, target string) []string {
	filtered := values[:0]
	for _, value := range values {
		if value != target {
			filtered = append(filtered, value)
		}
	}

	return filtered
}
