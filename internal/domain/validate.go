package domain

import "errors"

var (
	ErrBadRoomKey = errors.New("room key empty")
	ErrBadCard    = errors.New("card is not an object")
	ErrBadCardID  = errors.New("card id empty")
	ErrBadUser    = errors.New("user is not an object")
)

// ValidRoomKey reports whether v names a room: any non-empty string.
func ValidRoomKey(v RoomKey) bool {
	return v != ""
}

// ValidCard reports whether v is a usable card payload: a decoded JSON
// object. A null, array or primitive decodes to a nil map and fails.
func ValidCard(v Card) bool {
	return v != nil
}

// ValidUser reports whether v is a usable user payload.
func ValidUser(v User) bool {
	return v != nil
}
