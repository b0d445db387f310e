package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/retroboard/relay/internal/core"
	"github.com/retroboard/relay/internal/domain"
)

type sessionEntry struct {
	conn  core.SignalConnection
	rooms map[domain.RoomKey]struct{}
}

// Registry is the per-connection inverse index: which live connections
// exist and which rooms each one has joined. An entry exists exactly as
// long as the transport keeps the connection bound, which makes the
// registry the liveness authority the reaper consults.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[core.SessionID]*sessionEntry)}
}

// Bind registers a live connection for sid.
func (r *Registry) Bind(sid core.SessionID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{
		conn:  conn,
		rooms: make(map[domain.RoomKey]struct{}),
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound session")
}

// Unbind forgets sid entirely.
func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbound session")
}

// Conn returns the transport endpoint bound to sid.
func (r *Registry) Conn(sid core.SessionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil, false
	}
	return e.conn, true
}

// Enter records sid as joined to key. Reports false when sid was
// already a member (join is idempotent) or is not bound at all.
func (r *Registry) Enter(sid core.SessionID, key domain.RoomKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	if _, joined := e.rooms[key]; joined {
		return false
	}
	e.rooms[key] = struct{}{}
	return true
}

// Exit drops key from sid's joined set.
func (r *Registry) Exit(sid core.SessionID, key domain.RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok {
		delete(e.rooms, key)
	}
}

// Rooms returns every room sid currently belongs to.
func (r *Registry) Rooms(sid core.SessionID) []domain.RoomKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil
	}
	out := make([]domain.RoomKey, 0, len(e.rooms))
	for key := range e.rooms {
		out = append(out, key)
	}
	return out
}

// LiveCount implements core.Presence: the number of bound connections
// joined to key. Out-of-band disconnects drop out of here immediately,
// even when the store's member set has not caught up.
func (r *Registry) LiveCount(key domain.RoomKey) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.sessions {
		if _, joined := e.rooms[key]; joined {
			n++
		}
	}
	return n
}
