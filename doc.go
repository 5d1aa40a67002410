// Package revoltgo is a client library for Revolt-compatible chat nodes.
// It binds the REST API and the realtime event gateway behind one Client:
// the REST layer performs actions, the gateway feeds a connection-state
// engine that keeps an in-memory entity cache consistent with the node,
// and registered handlers receive typed events derived from that cache.
package revoltgo
