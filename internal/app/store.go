package app

import (
	"maps"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/retroboard/relay/internal/core"
	"github.com/retroboard/relay/internal/domain"
)

// roomState is everything the relay knows about one room: the card
// sequence in insertion order and the member set. Guarded by the store
// lock.
type roomState struct {
	cards   []domain.Card
	members map[core.SessionID]struct{}
}

func newRoomState() *roomState {
	return &roomState{members: make(map[core.SessionID]struct{})}
}

// Store is the authoritative room map. One coarse lock serializes every
// mutation; callers never hold it across transport I/O.
type Store struct {
	mu    sync.RWMutex
	rooms map[domain.RoomKey]*roomState
}

func NewStore() *Store {
	return &Store{rooms: make(map[domain.RoomKey]*roomState)}
}

// EnsureRoom creates an empty room under key if absent. Idempotent.
func (s *Store) EnsureRoom(key domain.RoomKey) {
	s.mu.RLock()
	_, ok := s.rooms[key]
	s.mu.RUnlock()
	if ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[key]; !ok {
		s.rooms[key] = newRoomState()
		log.Info().Str("module", "app.store").Str("room", string(key)).Msg("room created")
	}
}

// Cards returns a snapshot of the room's card sequence, empty when the
// room does not exist. Never creates a room. Each card map is cloned so
// the snapshot can be marshaled while later mutations swap fields.
func (s *Store) Cards(key domain.RoomKey) []domain.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[key]
	if !ok {
		return nil
	}
	out := make([]domain.Card, len(r.cards))
	for i, c := range r.cards {
		out[i] = maps.Clone(c)
	}
	return out
}

// AddCard appends card to the room's sequence, creating the room when
// absent. Duplicate ids are allowed; nothing is de-duplicated here.
func (s *Store) AddCard(key domain.RoomKey, card domain.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[key]
	if !ok {
		r = newRoomState()
		s.rooms[key] = r
	}
	r.cards = append(r.cards, card)
}

// UpdateCard replaces the first card whose id equals cardID, keeping
// its position. Reports false when no card matched (or the room does
// not exist); the caller treats that as a soft warning, not an error.
func (s *Store) UpdateCard(key domain.RoomKey, cardID string, card domain.Card) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[key]
	if !ok {
		return false
	}
	for i, c := range r.cards {
		if c.ID() == cardID {
			r.cards[i] = card
			return true
		}
	}
	return false
}

// RemoveCard drops every card whose id equals cardID and returns how
// many were removed. Under duplicate ids this is filter semantics, not
// first-match.
func (s *Store) RemoveCard(key domain.RoomKey, cardID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[key]
	if !ok {
		return 0
	}
	kept := r.cards[:0]
	removed := 0
	for _, c := range r.cards {
		if c.ID() == cardID {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	r.cards = kept
	return removed
}

// ReassignUser swaps the embedded user snapshot on every card whose
// user name matches user's name. Returns the match count; zero matches
// is a soft warning for the caller.
func (s *Store) ReassignUser(key domain.RoomKey, user domain.User) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[key]
	if !ok {
		return 0
	}
	matched := 0
	for i, c := range r.cards {
		if c.User().Name() == user.Name() {
			c = maps.Clone(c)
			c.SetUser(user)
			r.cards[i] = c
			matched++
		}
	}
	return matched
}

// RetagColumn sets the column object on every card tagged with
// columnID and returns the match count.
func (s *Store) RetagColumn(key domain.RoomKey, columnID string, column any) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[key]
	if !ok {
		return 0
	}
	matched := 0
	for i, c := range r.cards {
		if c.ColumnID() == columnID {
			c = maps.Clone(c)
			c.SetColumn(column)
			r.cards[i] = c
			matched++
		}
	}
	return matched
}

// ClearColumn drops the column tag from every card tagged with
// columnID and returns the match count.
func (s *Store) ClearColumn(key domain.RoomKey, columnID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[key]
	if !ok {
		return 0
	}
	matched := 0
	for i, c := range r.cards {
		if c.ColumnID() == columnID {
			c = maps.Clone(c)
			c.ClearColumn()
			r.cards[i] = c
			matched++
		}
	}
	return matched
}

// AddMember records sid as a member, creating the room when absent.
func (s *Store) AddMember(key domain.RoomKey, sid core.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[key]
	if !ok {
		r = newRoomState()
		s.rooms[key] = r
	}
	r.members[sid] = struct{}{}
}

// RemoveMember drops sid from the member set and reports whether the
// room is now empty. The caller decides between immediate deletion and
// leaving the reaper to it.
func (s *Store) RemoveMember(key domain.RoomKey, sid core.SessionID) (empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[key]
	if !ok {
		return false
	}
	delete(r.members, sid)
	return len(r.members) == 0
}

// DeleteIfEmpty removes the room entry when its member set is empty.
func (s *Store) DeleteIfEmpty(key domain.RoomKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[key]
	if !ok || len(r.members) > 0 {
		return false
	}
	delete(s.rooms, key)
	log.Info().Str("module", "app.store").Str("room", string(key)).Msg("empty room deleted")
	return true
}

// DeleteIf removes the room entry when cond still holds under the
// store lock. The reaper rechecks transport liveness here: a join that
// landed between its unlocked read and the delete has already entered
// the registry, so the recheck sees the member and keeps the room. A
// zero live count overrules a stale member set.
func (s *Store) DeleteIf(key domain.RoomKey, cond func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[key]; !ok {
		return false
	}
	if !cond() {
		return false
	}
	delete(s.rooms, key)
	return true
}

// Members returns the current member ids of a room.
func (s *Store) Members(key domain.RoomKey) []core.SessionID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[key]
	if !ok {
		return nil
	}
	out := make([]core.SessionID, 0, len(r.members))
	for sid := range r.members {
		out = append(out, sid)
	}
	return out
}

// Keys returns every room key currently known.
func (s *Store) Keys() []domain.RoomKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RoomKey, 0, len(s.rooms))
	for key := range s.rooms {
		out = append(out, key)
	}
	return out
}

type RoomInfo struct {
	Key         domain.RoomKey `json:"room"`
	MemberCount int            `json:"member_count"`
	CardCount   int            `json:"card_count"`
}

// List is a read-only view for the rooms API.
func (s *Store) List() []RoomInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RoomInfo, 0, len(s.rooms))
	for key, r := range s.rooms {
		out = append(out, RoomInfo{Key: key, MemberCount: len(r.members), CardCount: len(r.cards)})
	}
	return out
}
