package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/retroboard/relay/internal/core"
)

// Reaper periodically deletes rooms with zero live members. It trusts
// the transport-side Presence over the store's member set: a connection
// that died without a clean disconnect still counts as gone.
type Reaper struct {
	store    *Store
	presence core.Presence
	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup
}

func NewReaper(store *Store, presence core.Presence, interval time.Duration) *Reaper {
	return &Reaper{
		store:    store,
		presence: presence,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (r *Reaper) Start() {
	r.wg.Add(1)
	go r.run()
	log.Info().Str("module", "app.reaper").Dur("interval", r.interval).Msg("reaper started")
}

func (r *Reaper) Stop() {
	close(r.stop)
	r.wg.Wait()
}

func (r *Reaper) run() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep deletes every room the transport reports no live members for.
// Idempotent and safe to run concurrently with handlers: liveness is
// rechecked under the store lock, so a join racing the sweep keeps its
// room (JoinRoom enters the registry before touching the store, which
// means any member visible in the store is already live here).
func (r *Reaper) Sweep() int {
	swept := 0
	for _, key := range r.store.Keys() {
		if r.presence.LiveCount(key) != 0 {
			continue
		}
		if r.store.DeleteIf(key, func() bool { return r.presence.LiveCount(key) == 0 }) {
			swept++
			log.Info().Str("module", "app.reaper").Str("room", string(key)).Msg("swept empty room")
		}
	}
	return swept
}
