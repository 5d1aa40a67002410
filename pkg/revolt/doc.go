// Package revolt defines the public model and event contract for the
// Revolt chat API client.
//
// It contains the typed entities kept in the connection cache (users,
// servers, channels, members, messages), the wire payload DTOs shared by
// the REST and gateway collaborators, the entity factories, and the event
// envelope delivered to user-registered handlers. Runtime components
// (cache engine, dispatch bus, REST and websocket collaborators) live in
// internal packages and are wired together by the top-level client.
package revolt
