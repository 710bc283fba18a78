package domain

import "github.com/google/uuid"

// ChatRoomStatus is the lifecycle state of a chat room.
type ChatRoomStatus string

const (
	ChatRoomActive  ChatRoomStatus = "active"
	ChatRoomDeleted ChatRoomStatus = "deleted"
)

// ChatRoom is the group chat attached to a meeting.
type ChatRoom struct {
	ID      uuid.UUID
	Name    string
	OwnerID uuid.UUID
	Status  ChatRoomStatus
}

// SystemMessage is a server-authored chat line, e.g. "alice joined".
type SystemMessage struct {
	RoomID  uuid.UUID `json:"room_id"`
	Writer  string    `json:"writer"`
	Message string    `json:"message"`
}
