package game

import (
	"fmt"
	"math/rand"
	"strconv"
)

type Color string

const (
	Red    Color = "red"
	Yellow Color = "yellow"
	Green  Color = "green"
	Blue   Color = "blue"
	Wild   Color = "wild"
)

// Value is the face of a card: "0".."9" or one of the action values.
type Value string

const (
	Skip      Value = "skip"
	Reverse   Value = "reverse"
	Draw2     Value = "draw2"
	Draw4     Value = "draw4"
	WildValue Value = "wild"
)

// DeckSize is the number of cards in the standard set. Cards are never
// created or destroyed after the deck is built.
const DeckSize = 108

var suitColors = []Color{Red, Yellow, Green, Blue}

// Card is compared by value: two cards are equal iff color and value match.
type Card struct {
	Color Color `json:"color"`
	Value Value `json:"value"`
}

func (c Card) String() string {
	return fmt.Sprintf("%s %s", c.Color, c.Value)
}

// Stacking reports whether the card adds to a forced-draw stack.
func (c Card) Stacking() bool {
	return c.Value == Draw2 || c.Value == Draw4
}

func suitValues() []Value {
	values := make([]Value, 0, 13)
	for n := 0; n <= 9; n++ {
		values = append(values, Value(strconv.Itoa(n)))
	}
	return append(values, Skip, Reverse, Draw2)
}

// BuildCards returns the standard 108-card set in generation order:
// colors outer, values inner, then the eight wild cards.
func BuildCards() []Card {
	cards := make([]Card, 0, DeckSize)
	for _, color := range suitColors {
		for _, value := range suitValues() {
			cards = append(cards, Card{Color: color, Value: value})
			if value != "0" {
				cards = append(cards, Card{Color: color, Value: value})
			}
		}
	}
	for i := 0; i < 4; i++ {
		cards = append(cards, Card{Color: Wild, Value: WildValue}, Card{Color: Wild, Value: Draw4})
	}
	return cards
}

// Shuffle permutes cards in place with a Fisher-Yates shuffle.
func Shuffle(cards []Card) {
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// Deck is the draw pile. The front of the slice is the top.
type Deck struct {
	cards []Card
}

func NewDeck() *Deck {
	return &Deck{cards: BuildCards()}
}

// NewDeckFrom wraps an explicit card order, top first.
func NewDeckFrom(cards []Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

func (d *Deck) Shuffle() {
	Shuffle(d.cards)
}

func (d *Deck) Len() int {
	return len(d.cards)
}

// Draw removes up to n cards from the top. It never refills.
func (d *Deck) Draw(n int) []Card {
	if n <= 0 {
		return nil
	}
	if n > len(d.cards) {
		n = len(d.cards)
	}
	out := append([]Card(nil), d.cards[:n]...)
	d.cards = d.cards[n:]
	return out
}

// PutBottom returns cards underneath the existing pile.
func (d *Deck) PutBottom(cards ...Card) {
	d.cards = append(d.cards, cards...)
}

// Refill moves every discard card except the top one into the deck,
// shuffled, and returns the discard pile that remains. With one card or
// fewer in discard nothing moves.
func (d *Deck) Refill(discard []Card) []Card {
	if len(discard) <= 1 {
		return discard
	}
	top := discard[len(discard)-1]
	rest := append([]Card(nil), discard[:len(discard)-1]...)
	Shuffle(rest)
	d.cards = append(d.cards, rest...)
	return []Card{top}
}
