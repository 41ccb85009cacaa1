package main

import (
	"math/rand"

	"uno-server/internal/game"
)

type snapshot struct {
	MyHand []game.Card     `json:"myHand"`
	Top    *game.Card      `json:"topCard"`
	MyTurn bool            `json:"myTurn"`
	Stack  game.StackState `json:"stack"`
}

// decide picks a random legal card, or draws when nothing fits. It returns
// false when it is not the bot's turn.
func decide(rnd *rand.Rand, s snapshot) (outFrame, bool) {
	if !s.MyTurn || s.Top == nil {
		return outFrame{}, false
	}
	legal := make([]game.Card, 0, len(s.MyHand))
	for _, c := range s.MyHand {
		if game.CanPlay(c, *s.Top, s.Stack) {
			legal = append(legal, c)
		}
	}
	if len(legal) == 0 {
		return outFrame{Event: "draw"}, true
	}
	return outFrame{Event: "play", Data: legal[rnd.Intn(len(legal))]}, true
}
