package session

import (
	"errors"

	"uno-server/internal/game"
)

var (
	ErrRoomNotFound = errors.New("room_not_found")
	ErrRoomFull     = game.ErrRoomFull
	ErrRoomClosed   = errors.New("room_closed")
	ErrNotSeated    = errors.New("not_seated")
)

// Message is the text shown to a client for a join failure.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrRoomClosed):
		return "room not found"
	case errors.Is(err, ErrRoomFull):
		return "room full"
	default:
		return "join failed"
	}
}
