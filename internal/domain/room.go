package domain

// RoomKey is the opaque identifier clients join by. Rooms are created
// implicitly on first join and die when their member set empties.
type RoomKey string
