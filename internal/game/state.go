package game

import (
	"bytes"
	"encoding/json"
)

const (
	MinPlayers = 2
	MaxPlayers = 4
	HandSize   = 7
)

type StackKind string

const (
	StackNone  StackKind = ""
	StackDraw2 StackKind = "draw2"
	StackDraw4 StackKind = "draw4"
)

// MarshalJSON encodes an empty stack kind as null.
func (k StackKind) MarshalJSON() ([]byte, error) {
	if k == StackNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(k))
}

func (k *StackKind) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*k = StackNone
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*k = StackKind(s)
	return nil
}

// StackState is the forced-draw obligation the next player inherits.
// Count is zero iff Kind is StackNone.
type StackState struct {
	Count int       `json:"value"`
	Kind  StackKind `json:"type"`
}

func (s StackState) Pending() bool {
	return s.Count > 0
}

type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseActive
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseActive:
		return "active"
	case PhaseFinished:
		return "finished"
	}
	return ""
}

type Player struct {
	ID   string
	Hand []Card
}

// Room is the aggregate root of one game. It is not safe for concurrent
// use; callers serialize every mutation.
type Room struct {
	ID        string
	Players   []*Player
	Deck      *Deck
	Discard   []Card
	Direction int
	Stack     StackState
	Phase     Phase

	// turnID is the stable identity of the seat to act. The seat index is
	// re-derived from it so removals never leave a dangling index.
	turnID string
}

// Snapshot is the per-player view of a room.
type Snapshot struct {
	MyHand          []Card     `json:"myHand"`
	TopCard         *Card      `json:"topCard"`
	MyTurn          bool       `json:"myTurn"`
	Direction       int        `json:"direction"`
	Stack           StackState `json:"stack"`
	Opponents       []Opponent `json:"opponents"`
	CurrentPlayerID string     `json:"currentPlayerId"`
}

// Opponent exposes only the size of another player's hand.
type Opponent struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

type GameOver struct {
	Message string `json:"message"`
	Winner  string `json:"winner"`
}

// ShortID is the display form of a player id.
func ShortID(id string) string {
	if len(id) > 6 {
		return id[:6]
	}
	return id
}

func (r *Room) SnapshotFor(playerID string) Snapshot {
	hand := []Card{}
	if p := r.player(playerID); p != nil {
		hand = append(hand, p.Hand...)
	}
	var top *Card
	if c, ok := r.Top(); ok {
		top = &c
	}
	opponents := []Opponent{}
	for _, p := range r.Players {
		if p.ID == playerID {
			continue
		}
		opponents = append(opponents, Opponent{ID: ShortID(p.ID), Count: len(p.Hand)})
	}
	return Snapshot{
		MyHand:          hand,
		TopCard:         top,
		MyTurn:          r.Phase == PhaseActive && r.turnID == playerID,
		Direction:       r.Direction,
		Stack:           r.Stack,
		Opponents:       opponents,
		CurrentPlayerID: r.turnID,
	}
}
