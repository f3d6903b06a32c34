// Package realtime pushes post events to the owner's open WebSocket sessions.
//
// The wire contract is a flat JSON envelope:
//
//	{"v":"v1","type":"post.created","id":"<ulid>","postID":42,"ts":"..."}
//
// Clients may send {"v":"v1","type":"ping"} and receive a "pong". Any other
// inbound type yields an "error" envelope. Delivery is best effort: a slow
// client loses events rather than stalling the publisher.
package realtime
