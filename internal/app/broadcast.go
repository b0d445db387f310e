package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/retroboard/relay/internal/core"
	"github.com/retroboard/relay/internal/domain"
)

// Router fans events out to the current members of a room, or unicasts
// to a single connection. Frames are marshaled once and handed to each
// member's TrySend; a full send buffer drops the frame for that member
// only. Nothing is awaited, retried or acknowledged.
type Router struct {
	store *Store
	reg   *Registry
}

func NewRouter(store *Store, reg *Registry) *Router {
	return &Router{store: store, reg: reg}
}

func (r *Router) ToRoom(key domain.RoomKey, v any) {
	f, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.router").Msg("marshal event")
		return
	}
	r.RawToRoom(key, f)
}

func (r *Router) RawToRoom(key domain.RoomKey, f core.Frame) {
	for _, sid := range r.store.Members(key) {
		r.deliver(sid, f)
	}
}

func (r *Router) ToOne(sid core.SessionID, v any) {
	f, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.router").Msg("marshal event")
		return
	}
	r.deliver(sid, f)
}

func (r *Router) deliver(sid core.SessionID, f core.Frame) {
	conn, ok := r.reg.Conn(sid)
	if !ok {
		// Member without a bound connection: stale entry, the
		// reaper or disconnect path will collect it.
		return
	}
	if err := conn.TrySend(f); err != nil {
		log.Debug().Err(err).Str("module", "app.router").Str("sid", string(sid)).Msg("frame dropped")
	}
}
