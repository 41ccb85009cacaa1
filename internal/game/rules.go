package game

import (
	"errors"
	"fmt"
)

var (
	ErrNotYourTurn = errors.New("not_your_turn")
	ErrCardNotHeld = errors.New("card_not_held")
	ErrIllegalCard = errors.New("illegal_card")
	ErrRoomFull    = errors.New("room_full")
	ErrNotStarted  = errors.New("not_started")
	ErrGameOver    = errors.New("game_over")
	ErrNoPlayers   = errors.New("no_players")
)

// CanPlay reports whether card may go on top. While a stack is pending only
// a card that continues it is legal: draw2 or draw4 on a draw2 stack, draw4
// on a draw4 stack.
func CanPlay(card, top Card, stack StackState) bool {
	if stack.Pending() {
		switch stack.Kind {
		case StackDraw2:
			return card.Value == Draw2 || card.Value == Draw4
		case StackDraw4:
			return card.Value == Draw4
		}
		return false
	}
	return card.Color == top.Color || card.Value == top.Value || card.Color == Wild
}

// NextIndex steps one seat in direction, wrapping in both directions.
func NextIndex(current, direction, count int) int {
	if count <= 0 {
		return 0
	}
	return ((current+direction)%count + count) % count
}

// WinMessage attributes a win. Four-player rooms play as fixed teams:
// seats 0 and 2 are Team A, seats 1 and 3 are Team B.
func WinMessage(seat, playerCount int, playerID string) string {
	if playerCount == 4 {
		if seat%2 == 0 {
			return "Team A wins!"
		}
		return "Team B wins!"
	}
	return fmt.Sprintf("Player %s wins!", ShortID(playerID))
}
