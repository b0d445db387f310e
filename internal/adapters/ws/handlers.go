package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/retroboard/relay/internal/core"
	"github.com/retroboard/relay/internal/domain"
)

// relayed events pass through to the room verbatim, no state kept.
var relayed = map[string]struct{}{
	"timer.open":          {},
	"timer.update":        {},
	"hide.users":          {},
	"filter.users":        {},
	"presentation.update": {},
}

func (ctl *Controller) dispatch(sid core.SessionID, conn *Conn, data []byte) {
	var env struct {
		Type string         `json:"type"`
		Room domain.RoomKey `json:"room"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("bad json")
		ctl.sendError(conn, "bad payload")
		return
	}

	if !ctl.limiter.Allow(sid) {
		log.Warn().Str("module", "ws").Str("sid", string(sid)).Str("type", env.Type).Msg("rate limited")
		ctl.sendError(conn, "rate limited")
		return
	}

	switch env.Type {
	case "joinRoom":
		ctl.handleJoin(sid, conn, data)
	case "leaveRoom":
		ctl.handleLeave(sid, conn, env.Room)
	case "card.add":
		ctl.handleCardAdd(sid, conn, data)
	case "card.update":
		ctl.handleCardUpdate(sid, conn, data)
	case "card.remove":
		ctl.handleCardRemove(sid, conn, data)
	case "user.update":
		ctl.handleUserUpdate(sid, conn, data)
	case "column.update":
		ctl.handleColumnUpdate(sid, conn, data)
	case "column.delete":
		ctl.handleColumnDelete(sid, conn, data)
	default:
		if _, ok := relayed[env.Type]; ok {
			if err := ctl.sessions.Relay(sid, env.Room, data); err != nil {
				ctl.sendError(conn, "failed to relay event")
			}
			return
		}
		log.Warn().Str("module", "ws").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *Controller) handleJoin(sid core.SessionID, conn *Conn, data []byte) {
	var p struct {
		Room domain.RoomKey `json:"room"`
		User domain.User    `json:"user,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(conn, "failed to join room")
		return
	}
	if err := ctl.sessions.JoinRoom(sid, p.Room, p.User); err != nil {
		log.Error().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("joinRoom")
		ctl.sendError(conn, "failed to join room")
	}
}

func (ctl *Controller) handleLeave(sid core.SessionID, conn *Conn, room domain.RoomKey) {
	if err := ctl.sessions.LeaveRoom(sid, room); err != nil {
		log.Error().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("leaveRoom")
		ctl.sendError(conn, "failed to leave room")
	}
}

func (ctl *Controller) handleCardAdd(sid core.SessionID, conn *Conn, data []byte) {
	var p struct {
		Room domain.RoomKey `json:"room"`
		Card domain.Card    `json:"card"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(conn, "failed to add card")
		return
	}
	if err := ctl.sessions.AddCard(sid, p.Room, p.Card); err != nil {
		log.Error().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("card.add")
		ctl.sendError(conn, "failed to add card")
	}
}

func (ctl *Controller) handleCardUpdate(sid core.SessionID, conn *Conn, data []byte) {
	var p struct {
		Room   domain.RoomKey `json:"room"`
		CardID string         `json:"cardId"`
		Card   domain.Card    `json:"card"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(conn, "failed to update card")
		return
	}
	if err := ctl.sessions.UpdateCard(sid, p.Room, p.CardID, p.Card); err != nil {
		log.Error().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("card.update")
		ctl.sendError(conn, "failed to update card")
	}
}

func (ctl *Controller) handleCardRemove(sid core.SessionID, conn *Conn, data []byte) {
	var p struct {
		Room   domain.RoomKey `json:"room"`
		CardID string         `json:"cardId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(conn, "failed to remove card")
		return
	}
	if err := ctl.sessions.RemoveCard(sid, p.Room, p.CardID); err != nil {
		log.Error().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("card.remove")
		ctl.sendError(conn, "failed to remove card")
	}
}

func (ctl *Controller) handleUserUpdate(sid core.SessionID, conn *Conn, data []byte) {
	var p struct {
		Room domain.RoomKey `json:"room"`
		User domain.User    `json:"user"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(conn, "failed to update user")
		return
	}
	if err := ctl.sessions.UpdateUser(sid, p.Room, p.User); err != nil {
		log.Error().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("user.update")
		ctl.sendError(conn, "failed to update user")
	}
}

func (ctl *Controller) handleColumnUpdate(sid core.SessionID, conn *Conn, data []byte) {
	var p struct {
		Room   domain.RoomKey `json:"room"`
		Column map[string]any `json:"column"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(conn, "failed to update column")
		return
	}
	if err := ctl.sessions.UpdateColumn(sid, p.Room, p.Column); err != nil {
		log.Error().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("column.update")
		ctl.sendError(conn, "failed to update column")
	}
}

func (ctl *Controller) handleColumnDelete(sid core.SessionID, conn *Conn, data []byte) {
	var p struct {
		Room     domain.RoomKey `json:"room"`
		ColumnID string         `json:"columnId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(conn, "failed to delete column")
		return
	}
	if err := ctl.sessions.DeleteColumn(sid, p.Room, p.ColumnID); err != nil {
		log.Error().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("column.delete")
		ctl.sendError(conn, "failed to delete column")
	}
}

// sendError reports a failure to the originating connection only.
// Errors never fan out to the room.
func (ctl *Controller) sendError(conn *Conn, msg string) {
	b, err := json.Marshal(map[string]string{"type": "error", "error": msg})
	if err != nil {
		return
	}
	_ = conn.TrySend(b)
}
