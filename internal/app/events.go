package app

import "github.com/retroboard/relay/internal/domain"

// Outbound event names. These are the wire contract; clients switch on
// the "type" field.
const (
	EventError            = "error"
	EventRoomJoin         = "room.join"
	EventRoomLeave        = "room.leave"
	EventCardsInitial     = "cards.initial"
	EventCardAdded        = "card.added"
	EventCardUpdated      = "card.updated"
	EventCardRemoved      = "card.removed"
	EventUserUpdated      = "user.updated"
	EventColumnUpdated    = "column.updated"
	EventColumnDeleted    = "column.deleted"
	EventUserDisconnected = "user.disconnected"
)

type noticeEvent struct {
	Type   string         `json:"type"`
	Room   domain.RoomKey `json:"room"`
	Notice string         `json:"notice"`
}

type userEvent struct {
	Type string         `json:"type"`
	Room domain.RoomKey `json:"room"`
	User domain.User    `json:"user"`
}

type cardEvent struct {
	Type string         `json:"type"`
	Room domain.RoomKey `json:"room"`
	Card domain.Card    `json:"card"`
}

type cardUpdateEvent struct {
	Type   string         `json:"type"`
	Room   domain.RoomKey `json:"room"`
	CardID string         `json:"cardId"`
	Card   domain.Card    `json:"card"`
}

type cardRemoveEvent struct {
	Type   string         `json:"type"`
	Room   domain.RoomKey `json:"room"`
	CardID string         `json:"cardId"`
}

type cardsInitialEvent struct {
	Type  string         `json:"type"`
	Room  domain.RoomKey `json:"room"`
	Cards []domain.Card  `json:"cards"`
}

type columnEvent struct {
	Type     string         `json:"type"`
	Room     domain.RoomKey `json:"room"`
	ColumnID string         `json:"columnId"`
	Column   any            `json:"column,omitempty"`
}
