package state

import "revoltgo/pkg/revolt"

// Read surface. Getters return live entities: they are mutated only on
// the single ingestion sequence, and diff consumers receive snapshots.

// SelfID returns the session user id, empty before the bootstrap event.
func (s *State) SelfID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selfID
}

// Self returns the session user when cached.
func (s *State) Self() (*revolt.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[s.selfID]

	return user, ok
}

// User returns a cached user by id.
func (s *State) User(userID string) (*revolt.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]

	return user, ok
}

// Users returns all cached users.
func (s *State) Users() []*revolt.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*revolt.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}

	return users
}

// Server returns a cached server by id.
func (s *State) Server(serverID string) (*revolt.Server, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	server, ok := s.servers[serverID]

	return server, ok
}

// Servers returns all cached servers.
func (s *State) Servers() []*revolt.Server {
	s.mu.RLock()
	defer s.mu.RUnlock()

	servers := make([]*revolt.Server, 0, len(s.servers))
	for _, server := range s.servers {
		servers = append(servers, server)
	}

	return servers
}

// Channel returns a cached channel by id.
func (s *State) Channel(channelID string) (*revolt.Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	channel, ok := s.channels[channelID]

	return channel, ok
}

// ServerChannels resolves a server's channel list against the cache,
// preserving the server's ordering and skipping unresolvable ids.
func (s *State) ServerChannels(serverID string) []*revolt.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	server, ok := s.servers[serverID]
	if !ok {
		return nil
	}
	channels := make([]*revolt.Channel, 0, len(server.ChannelIDs))
	for _, channelID := range server.ChannelIDs {
		if channel, cached := s.channels[channelID]; cached {
			channels = append(channels, channel)
		}
	}

	return channels
}

// Member returns a cached member by its composite identity.
func (s *State) Member(serverID, userID string) (*revolt.Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.members[memberKey{serverID: serverID, userID: userID}]

	return member, ok
}

// ServerMembers returns all cached members of one server.
func (s *State) ServerMembers(serverID string) []*revolt.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make([]*revolt.Member, 0)
	for key, member := range s.members {
		if key.serverID == serverID {
			members = append(members, member)
		}
	}

	return members
}

// Message returns the newest cached message with the given id.
func (s *State) Message(messageID string) (*revolt.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	message := s.messages.Get(messageID)

	return message, message != nil
}

// Messages returns the recent-message buffer contents in arrival order.
func (s *State) Messages() []*revolt.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.messages.All()
}

// MessageCount returns the number of cached messages.
func (s *State) MessageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.messages.Len()
}

// AddChannel caches a channel obtained outside the event stream, such as a
// freshly opened direct-message channel.
func (s *State) AddChannel(payload revolt.ChannelPayload) (*revolt.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addChannelLocked(payload)
}

// AddMessage caches a message obtained outside the event stream, such as
// the response to a send. Returns nil when the owning channel is unknown.
func (s *State) AddMessage(payload revolt.MessagePayload) (*revolt.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addMessageLocked(payload)
}

// Mutation surface, engine-internal. addX always constructs a fresh entity
// from the payload and overwrites any same-ID entry; removeX is no-op-safe.
// Callers hold s.mu.

func (s *State) addUserLocked(payload revolt.UserPayload) *revolt.User {
	user := revolt.NewUser(payload)
	s.users[user.ID] = user

	return user
}

func (s *State) removeUserLocked(userID string) {
	delete(s.users, userID)
}

func (s *State) addServerLocked(payload revolt.ServerPayload) *revolt.Server {
	server := revolt.NewServer(payload)
	s.servers[server.ID] = server

	return server
}

// removeServerLocked removes a server and cascades: every channel owned by
// the server and every member scoped to it leaves the cache too, so no
// live cache entry can reach a removed entity.
func (s *State) removeServerLocked(serverID string) {
	server, ok := s.servers[serverID]
	if !ok {
		return
	}
	delete(s.servers, serverID)

	for _, channelID := range server.ChannelIDs {
		s.removeChannelLocked(channelID)
	}
	for key := range s.members {
		if key.serverID == serverID {
			delete(s.members, key)
		}
	}
}

func (s *State) addChannelLocked(payload revolt.ChannelPayload) (*revolt.Channel, error) {
	server := s.servers[payload.ServerID]
	channel, err := revolt.NewChannel(payload, server)
	if err != nil {
		return nil, err
	}
	s.channels[channel.ID] = channel

	return channel, nil
}

// removeChannelLocked drops a channel, its cached messages, and the id
// from the owning server's membership lists.
func (s *State) removeChannelLocked(channelID string) {
	channel, ok := s.channels[channelID]
	if !ok {
		return
	}
	delete(s.channels, channelID)
	s.messages.RemoveChannel(channelID)

	if server := channel.Server(); server != nil {
		server.RemoveChannelID(channelID)
	}
}

func (s *State) addMemberLocked(payload revolt.MemberPayload, serverID string) (*revolt.Member, error) {
	member, err := revolt.NewMember(payload, serverID)
	if err != nil {
		return nil, err
	}
	s.members[memberKey{serverID: member.ServerID, userID: member.UserID}] = member

	if server, ok := s.servers[member.ServerID]; ok {
		server.AddMemberID(member.UserID)
	}

	return member, nil
}

func (s *State) removeMemberLocked(serverID, userID string) {
	delete(s.members, memberKey{serverID: serverID, userID: userID})
	if server, ok := s.servers[serverID]; ok {
		server.RemoveMemberID(userID)
	}
}

func (s *State) addMessageLocked(payload revolt.MessagePayload) (*revolt.Message, error) {
	channel, ok := s.channels[payload.ChannelID]
	if !ok {
		return nil, nil
	}
	message, err := revolt.NewMessage(payload, channel, s.fileBaseURLLocked())
	if err != nil {
		return nil, err
	}
	s.messages.Add(message)
	channel.LastMessageID = message.ID

	return message, nil
}
