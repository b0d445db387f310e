package app

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/retroboard/relay/internal/core"
	"github.com/retroboard/relay/internal/domain"
)

// Manager owns per-connection membership and drives every room
// operation as one logical step: validate, broadcast, mutate.
//
// Card and user mutations broadcast before the store lookup resolves,
// so the emitted payload is always the caller's input and a missed
// update target still broadcasts. That mirrors the observed protocol
// and is intentional, not a bug to fix.
//
// A returned error means the input failed validation; the transport
// surfaces it to the originating connection only. Missed lookup targets
// are logged warnings, never errors.
type Manager struct {
	store *Store
	reg   *Registry
	emit  core.Emitter
}

func NewManager(store *Store, reg *Registry, emit core.Emitter) *Manager {
	return &Manager{store: store, reg: reg, emit: emit}
}

// JoinRoom makes sid a member of key, creating the room when unseen.
// The room hears room.join (the user object when the join carried one,
// a plain notice otherwise); the joiner alone receives cards.initial,
// and only when the room already holds cards. Joining twice is
// harmless: membership is idempotent, the announcements repeat.
func (m *Manager) JoinRoom(sid core.SessionID, key domain.RoomKey, user domain.User) error {
	if !domain.ValidRoomKey(key) {
		return domain.ErrBadRoomKey
	}
	m.store.EnsureRoom(key)
	if m.reg.Enter(sid, key) {
		m.store.AddMember(key, sid)
	}
	log.Info().Str("module", "app.session").Str("sid", string(sid)).Str("room", string(key)).Msg("joined room")

	if user != nil {
		m.emit.ToRoom(key, userEvent{Type: EventRoomJoin, Room: key, User: user})
	} else {
		m.emit.ToRoom(key, noticeEvent{
			Type:   EventRoomJoin,
			Room:   key,
			Notice: fmt.Sprintf("User %s has joined the room", sid),
		})
	}

	if cards := m.store.Cards(key); len(cards) > 0 {
		m.emit.ToOne(sid, cardsInitialEvent{Type: EventCardsInitial, Room: key, Cards: cards})
		log.Info().Str("module", "app.session").Str("sid", string(sid)).Str("room", string(key)).Int("cards", len(cards)).Msg("sent initial cards")
	}
	return nil
}

// LeaveRoom drops sid from key. The leave notice goes out before the
// membership is removed, so the leaver can still hear it; an emptied
// room is deleted immediately rather than left for the reaper.
func (m *Manager) LeaveRoom(sid core.SessionID, key domain.RoomKey) error {
	if !domain.ValidRoomKey(key) {
		return domain.ErrBadRoomKey
	}
	m.emit.ToRoom(key, noticeEvent{
		Type:   EventRoomLeave,
		Room:   key,
		Notice: fmt.Sprintf("User %s has left the room", sid),
	})
	m.reg.Exit(sid, key)
	if m.store.RemoveMember(key, sid) {
		m.store.DeleteIfEmpty(key)
	}
	log.Info().Str("module", "app.session").Str("sid", string(sid)).Str("room", string(key)).Msg("left room")
	return nil
}

// AddCard appends a card. No id uniqueness is enforced; duplicates are
// part of the contract.
func (m *Manager) AddCard(sid core.SessionID, key domain.RoomKey, card domain.Card) error {
	if !domain.ValidRoomKey(key) {
		return domain.ErrBadRoomKey
	}
	if !domain.ValidCard(card) {
		return domain.ErrBadCard
	}
	m.emit.ToRoom(key, cardEvent{Type: EventCardAdded, Room: key, Card: card})
	m.store.AddCard(key, card)
	log.Info().Str("module", "app.session").Str("room", string(key)).Str("card", card.ID()).Msg("card added")
	return nil
}

// UpdateCard replaces the first card matching cardID in place.
func (m *Manager) UpdateCard(sid core.SessionID, key domain.RoomKey, cardID string, card domain.Card) error {
	if !domain.ValidRoomKey(key) {
		return domain.ErrBadRoomKey
	}
	if cardID == "" {
		return domain.ErrBadCardID
	}
	if !domain.ValidCard(card) {
		return domain.ErrBadCard
	}
	m.emit.ToRoom(key, cardUpdateEvent{Type: EventCardUpdated, Room: key, CardID: cardID, Card: card})
	if !m.store.UpdateCard(key, cardID, card) {
		log.Warn().Str("module", "app.session").Str("room", string(key)).Str("card", cardID).Msg("update target not found")
	}
	return nil
}

// RemoveCard drops every card matching cardID.
func (m *Manager) RemoveCard(sid core.SessionID, key domain.RoomKey, cardID string) error {
	if !domain.ValidRoomKey(key) {
		return domain.ErrBadRoomKey
	}
	if cardID == "" {
		return domain.ErrBadCardID
	}
	m.emit.ToRoom(key, cardRemoveEvent{Type: EventCardRemoved, Room: key, CardID: cardID})
	n := m.store.RemoveCard(key, cardID)
	log.Info().Str("module", "app.session").Str("room", string(key)).Str("card", cardID).Int("removed", n).Msg("card removed")
	return nil
}

// UpdateUser rewrites the embedded user snapshot on every card whose
// user name matches, keyed by name.
func (m *Manager) UpdateUser(sid core.SessionID, key domain.RoomKey, user domain.User) error {
	if !domain.ValidRoomKey(key) {
		return domain.ErrBadRoomKey
	}
	if !domain.ValidUser(user) {
		return domain.ErrBadUser
	}
	m.emit.ToRoom(key, userEvent{Type: EventUserUpdated, Room: key, User: user})
	if m.store.ReassignUser(key, user) == 0 {
		log.Warn().Str("module", "app.session").Str("room", string(key)).Str("user", user.Name()).Msg("user not found on any card")
	}
	return nil
}

// UpdateColumn retags every card whose columnId matches column["id"].
func (m *Manager) UpdateColumn(sid core.SessionID, key domain.RoomKey, column map[string]any) error {
	if !domain.ValidRoomKey(key) {
		return domain.ErrBadRoomKey
	}
	if column == nil {
		return domain.ErrBadCard
	}
	columnID, _ := column["id"].(string)
	m.emit.ToRoom(key, columnEvent{Type: EventColumnUpdated, Room: key, ColumnID: columnID, Column: column})
	m.store.RetagColumn(key, columnID, column)
	return nil
}

// DeleteColumn clears the column tag from every card whose columnId
// matches.
func (m *Manager) DeleteColumn(sid core.SessionID, key domain.RoomKey, columnID string) error {
	if !domain.ValidRoomKey(key) {
		return domain.ErrBadRoomKey
	}
	m.emit.ToRoom(key, columnEvent{Type: EventColumnDeleted, Room: key, ColumnID: columnID})
	m.store.ClearColumn(key, columnID)
	return nil
}

// Relay mirrors a frame to the room verbatim. No state is kept; timer,
// hide/filter and presentation events flow through here.
func (m *Manager) Relay(sid core.SessionID, key domain.RoomKey, f core.Frame) error {
	if !domain.ValidRoomKey(key) {
		return domain.ErrBadRoomKey
	}
	m.emit.RawToRoom(key, f)
	return nil
}

// Disconnect tears down every membership sid still holds: each room
// hears a disconnect notice, emptied rooms are deleted eagerly, and the
// inverse-index entry is cleared.
func (m *Manager) Disconnect(sid core.SessionID) {
	for _, key := range m.reg.Rooms(sid) {
		m.emit.ToRoom(key, noticeEvent{
			Type:   EventUserDisconnected,
			Room:   key,
			Notice: fmt.Sprintf("User %s has disconnected", sid),
		})
		m.reg.Exit(sid, key)
		if m.store.RemoveMember(key, sid) {
			m.store.DeleteIfEmpty(key)
		}
	}
	m.reg.Unbind(sid)
	log.Info().Str("module", "app.session").Str("sid", string(sid)).Msg("disconnected")
}
