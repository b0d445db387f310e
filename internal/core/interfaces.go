package core

import "github.com/retroboard/relay/internal/domain"

// Frame is a marshaled outbound event.
type Frame []byte

// SessionID identifies one transport connection.
type SessionID string

// SignalConnection abstracts the messaging transport for one connection.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Emitter fans events out to room members or a single connection.
// Delivery is fire-and-forget: a slow or dead target drops the frame,
// nothing is retried or acknowledged.
type Emitter interface {
	ToRoom(key domain.RoomKey, v any)
	ToOne(sid SessionID, v any)
	RawToRoom(key domain.RoomKey, f Frame)
}

// Presence answers how many members of a room are still backed by a
// live transport connection. The reaper trusts this over the store's
// member set, since out-of-band disconnects may never reach Disconnect.
type Presence interface {
	LiveCount(key domain.RoomKey) int
}
