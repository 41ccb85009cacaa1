package game

// Outcome describes what a successful play did.
type Outcome struct {
	Card     Card
	Skipped  bool
	Finished bool
	Result   GameOver
}

// NewRoom creates a waiting room with a freshly shuffled deck.
func NewRoom(id string) *Room {
	deck := NewDeck()
	deck.Shuffle()
	return &Room{
		ID:        id,
		Deck:      deck,
		Discard:   []Card{},
		Direction: 1,
	}
}

func (r *Room) player(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) seatOf(id string) int {
	for i, p := range r.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *Room) Seated(id string) bool {
	return r.seatOf(id) >= 0
}

func (r *Room) Hand(id string) []Card {
	if p := r.player(id); p != nil {
		return p.Hand
	}
	return nil
}

func (r *Room) Top() (Card, bool) {
	if len(r.Discard) == 0 {
		return Card{}, false
	}
	return r.Discard[len(r.Discard)-1], true
}

// CurrentTurn is the seat index of the player to act, or -1 with no players.
func (r *Room) CurrentTurn() int {
	return r.seatOf(r.turnID)
}

func (r *Room) CurrentPlayerID() string {
	return r.turnID
}

// SetTurn points the turn at a seat index.
func (r *Room) SetTurn(seat int) {
	if seat >= 0 && seat < len(r.Players) {
		r.turnID = r.Players[seat].ID
	}
}

// CardCount totals deck, discard and every hand.
func (r *Room) CardCount() int {
	n := r.Deck.Len() + len(r.Discard)
	for _, p := range r.Players {
		n += len(p.Hand)
	}
	return n
}

// AddPlayer seats id at the next free seat. Seating an already seated
// player is a no-op reporting false. Players joining a running game are
// dealt a hand straight away.
func (r *Room) AddPlayer(id string) (bool, error) {
	if r.Phase == PhaseFinished {
		return false, ErrGameOver
	}
	if r.Seated(id) {
		return false, nil
	}
	if len(r.Players) >= MaxPlayers {
		return false, ErrRoomFull
	}
	p := &Player{ID: id, Hand: []Card{}}
	r.Players = append(r.Players, p)
	if r.turnID == "" {
		r.turnID = id
	}
	if r.Phase == PhaseActive {
		p.Hand = append(p.Hand, r.drawCards(HandSize)...)
	}
	return true, nil
}

func (r *Room) CanStart() bool {
	return r.Phase == PhaseWaiting && len(r.Players) >= MinPlayers
}

// Start flips the first discard card and deals every seat a hand.
func (r *Room) Start() error {
	if r.Phase != PhaseWaiting {
		return nil
	}
	if len(r.Players) < MinPlayers {
		return ErrNoPlayers
	}
	r.Discard = append(r.Discard, r.Deck.Draw(1)...)
	for _, p := range r.Players {
		p.Hand = append(p.Hand, r.Deck.Draw(HandSize)...)
	}
	r.turnID = r.Players[0].ID
	r.Phase = PhaseActive
	return nil
}

// drawCards takes n cards from the deck, refilling it from the discard
// pile whenever it runs dry. It returns fewer than n when both are spent.
func (r *Room) drawCards(n int) []Card {
	out := make([]Card, 0, n)
	for len(out) < n {
		if r.Deck.Len() == 0 {
			r.Discard = r.Deck.Refill(r.Discard)
			if r.Deck.Len() == 0 {
				break
			}
		}
		out = append(out, r.Deck.Draw(n-len(out))...)
	}
	return out
}

func (r *Room) advance() {
	if len(r.Players) == 0 {
		r.turnID = ""
		return
	}
	next := NextIndex(r.CurrentTurn(), r.Direction, len(r.Players))
	r.turnID = r.Players[next].ID
}

func (r *Room) checkTurn(playerID string) (*Player, error) {
	switch r.Phase {
	case PhaseWaiting:
		return nil, ErrNotStarted
	case PhaseFinished:
		return nil, ErrGameOver
	}
	if r.turnID != playerID {
		return nil, ErrNotYourTurn
	}
	p := r.player(playerID)
	if p == nil {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

// Play puts card from playerID's hand on the discard pile and applies its
// effect. A play that empties the hand finishes the room before the turn
// moves.
func (r *Room) Play(playerID string, card Card) (Outcome, error) {
	p, err := r.checkTurn(playerID)
	if err != nil {
		return Outcome{}, err
	}
	idx := -1
	for i, c := range p.Hand {
		if c == card {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Outcome{}, ErrCardNotHeld
	}
	top, _ := r.Top()
	if !CanPlay(card, top, r.Stack) {
		return Outcome{}, ErrIllegalCard
	}

	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	r.Discard = append(r.Discard, card)

	out := Outcome{Card: card}
	switch card.Value {
	case Skip:
		out.Skipped = true
	case Reverse:
		r.Direction = -r.Direction
	case Draw2:
		r.Stack = StackState{Count: r.Stack.Count + 2, Kind: StackDraw2}
	case Draw4:
		r.Stack = StackState{Count: r.Stack.Count + 4, Kind: StackDraw4}
	}

	if len(p.Hand) == 0 {
		r.Phase = PhaseFinished
		out.Finished = true
		out.Result = GameOver{
			Message: WinMessage(r.seatOf(playerID), len(r.Players), playerID),
			Winner:  playerID,
		}
		return out, nil
	}

	if out.Skipped {
		r.advance()
	}
	r.advance()
	if !card.Stacking() {
		r.Stack = StackState{}
	}
	return out, nil
}

// Draw resolves playerID's turn by drawing the pending stack, or one card
// without a stack.
func (r *Room) Draw(playerID string) ([]Card, error) {
	if _, err := r.checkTurn(playerID); err != nil {
		return nil, err
	}
	return r.resolveDraw(), nil
}

// ForceDraw performs the draw on behalf of whoever holds the turn. It is
// the timeout path and skips the turn ownership check.
func (r *Room) ForceDraw() (string, []Card, error) {
	switch r.Phase {
	case PhaseWaiting:
		return "", nil, ErrNotStarted
	case PhaseFinished:
		return "", nil, ErrGameOver
	}
	if r.player(r.turnID) == nil {
		return "", nil, ErrNoPlayers
	}
	id := r.turnID
	return id, r.resolveDraw(), nil
}

func (r *Room) resolveDraw() []Card {
	p := r.player(r.turnID)
	n := r.Stack.Count
	if n < 1 {
		n = 1
	}
	drawn := r.drawCards(n)
	p.Hand = append(p.Hand, drawn...)
	r.Stack = StackState{}
	r.advance()
	return drawn
}

// RemovePlayer unseats id. When id held the turn it passes on first, so
// the next seat in play direction acts. The departing hand goes to the
// bottom of the deck.
func (r *Room) RemovePlayer(id string) (removed, hadTurn bool) {
	seat := r.seatOf(id)
	if seat < 0 {
		return false, false
	}
	hadTurn = r.turnID == id
	if hadTurn {
		r.advance()
	}
	p := r.Players[seat]
	r.Players = append(r.Players[:seat], r.Players[seat+1:]...)
	r.Deck.PutBottom(p.Hand...)
	if len(r.Players) == 0 || r.turnID == id {
		r.turnID = ""
		if len(r.Players) > 0 {
			r.turnID = r.Players[0].ID
		}
	}
	return true, hadTurn
}
