package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// fixedRoom builds an active room with explicit hands, seat i holding
// hands[i], top on the discard pile and p0 to act.
func fixedRoom(top Card, deck []Card, hands ...[]Card) *Room {
	r := &Room{
		ID:        "r1",
		Deck:      NewDeckFrom(deck),
		Discard:   []Card{top},
		Direction: 1,
		Phase:     PhaseActive,
	}
	for i, h := range hands {
		r.Players = append(r.Players, &Player{ID: fmt.Sprintf("p%d", i), Hand: append([]Card{}, h...)})
	}
	r.SetTurn(0)
	return r
}

func filler(n int) []Card {
	out := make([]Card, n)
	for i := range out {
		out[i] = Card{Yellow, "5"}
	}
	return out
}

func mustAdd(t *testing.T, r *Room, id string) {
	t.Helper()
	if _, err := r.AddPlayer(id); err != nil {
		t.Fatalf("add %s: %v", id, err)
	}
}

func mustPlay(t *testing.T, r *Room, id string, c Card) Outcome {
	t.Helper()
	out, err := r.Play(id, c)
	if err != nil {
		t.Fatalf("%s plays %s: %v", id, c, err)
	}
	return out
}

func expectErr(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func expectTurn(t *testing.T, r *Room, want int) {
	t.Helper()
	if got := r.CurrentTurn(); got != want {
		t.Fatalf("expected seat %d to act, got %d", want, got)
	}
}

func expectHand(t *testing.T, r *Room, id string, n int) {
	t.Helper()
	if got := len(r.Hand(id)); got != n {
		t.Fatalf("%s: expected %d cards, got %d", id, n, got)
	}
}

func expectStack(t *testing.T, got, want StackState) {
	t.Helper()
	if got != want {
		t.Fatalf("expected stack %+v, got %+v", want, got)
	}
}

func TestStartDealsHands(t *testing.T) {
	r := NewRoom("r1")
	mustAdd(t, r, "a")
	if r.CanStart() {
		t.Fatal("one player cannot start")
	}
	mustAdd(t, r, "b")
	if !r.CanStart() {
		t.Fatal("two players should start")
	}

	if err := r.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if r.Phase != PhaseActive || len(r.Discard) != 1 {
		t.Fatalf("unexpected phase %s discard %d", r.Phase, len(r.Discard))
	}
	expectHand(t, r, "a", HandSize)
	expectHand(t, r, "b", HandSize)
	expectTurn(t, r, 0)
	if n := r.CardCount(); n != DeckSize {
		t.Fatalf("expected %d cards in play, got %d", DeckSize, n)
	}
}

func TestAddPlayerIdempotentAndFull(t *testing.T) {
	r := NewRoom("r1")
	for _, id := range []string{"a", "b", "c", "d"} {
		added, err := r.AddPlayer(id)
		if err != nil || !added {
			t.Fatalf("add %s: added=%v err=%v", id, added, err)
		}
	}
	added, err := r.AddPlayer("b")
	if err != nil || added {
		t.Fatalf("re-adding b: added=%v err=%v", added, err)
	}
	if len(r.Players) != 4 {
		t.Fatalf("expected 4 players, got %d", len(r.Players))
	}

	_, err = r.AddPlayer("e")
	expectErr(t, err, ErrRoomFull)
}

func TestLateJoinerIsDealt(t *testing.T) {
	r := NewRoom("r1")
	mustAdd(t, r, "a")
	mustAdd(t, r, "b")
	if err := r.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	added, err := r.AddPlayer("c")
	if err != nil || !added {
		t.Fatalf("add c: added=%v err=%v", added, err)
	}
	expectHand(t, r, "c", HandSize)
	if n := r.CardCount(); n != DeckSize {
		t.Fatalf("expected %d cards in play, got %d", DeckSize, n)
	}
}

func TestPlayRejections(t *testing.T) {
	r := fixedRoom(Card{Red, "7"}, filler(5),
		[]Card{{Blue, "2"}, {Red, "1"}},
		[]Card{{Red, "3"}, {Green, "4"}},
	)

	_, err := r.Play("p1", Card{Red, "3"})
	expectErr(t, err, ErrNotYourTurn)
	_, err = r.Play("p0", Card{Green, "9"})
	expectErr(t, err, ErrCardNotHeld)
	_, err = r.Play("p0", Card{Blue, "2"})
	expectErr(t, err, ErrIllegalCard)

	expectHand(t, r, "p0", 2)
	if len(r.Discard) != 1 {
		t.Fatalf("rejected plays must not touch the discard, got %d", len(r.Discard))
	}
	expectTurn(t, r, 0)
}

func TestPlayNumberAdvancesOneSeat(t *testing.T) {
	r := fixedRoom(Card{Red, "7"}, filler(5),
		[]Card{{Red, "1"}, {Blue, "2"}},
		[]Card{{Red, "3"}},
		[]Card{{Red, "4"}},
	)
	if out := mustPlay(t, r, "p0", Card{Red, "1"}); out.Finished {
		t.Fatal("game should not be over")
	}
	if top := r.Discard[len(r.Discard)-1]; top != (Card{Red, "1"}) {
		t.Fatalf("unexpected top %s", top)
	}
	if hand := r.Hand("p0"); !reflect.DeepEqual(hand, []Card{{Blue, "2"}}) {
		t.Fatalf("unexpected hand %v", hand)
	}
	expectTurn(t, r, 1)
}

func TestSkipConsumesOneSeat(t *testing.T) {
	hands := [][]Card{{{Red, Skip}, {Red, "1"}}, {{Red, "3"}}, {{Red, "4"}}}

	r := fixedRoom(Card{Red, "7"}, filler(5), hands...)
	mustPlay(t, r, "p0", Card{Red, Skip})
	expectTurn(t, r, 2)

	r = fixedRoom(Card{Red, "7"}, filler(5), hands...)
	r.Direction = -1
	mustPlay(t, r, "p0", Card{Red, Skip})
	expectTurn(t, r, 1)
}

func TestSkipInTwoPlayerRoomReturnsToPlayer(t *testing.T) {
	r := fixedRoom(Card{Red, "7"}, filler(5), []Card{{Red, Skip}, {Red, "1"}}, []Card{{Red, "3"}})
	mustPlay(t, r, "p0", Card{Red, Skip})
	expectTurn(t, r, 0)
}

func TestReverseFlipsDirection(t *testing.T) {
	r := fixedRoom(Card{Red, "7"}, filler(5),
		[]Card{{Red, Reverse}, {Red, "1"}},
		[]Card{{Red, "3"}},
		[]Card{{Red, "4"}},
	)
	mustPlay(t, r, "p0", Card{Red, Reverse})
	if r.Direction != -1 {
		t.Fatalf("expected direction -1, got %d", r.Direction)
	}
	expectTurn(t, r, 2)
}

func TestStackChainAndResolve(t *testing.T) {
	r := fixedRoom(Card{Red, "7"}, filler(20),
		[]Card{{Red, Draw2}, {Red, "1"}},
		[]Card{{Wild, Draw4}, {Blue, "3"}},
		[]Card{{Green, "4"}},
	)
	mustPlay(t, r, "p0", Card{Red, Draw2})
	expectStack(t, r.Stack, StackState{Count: 2, Kind: StackDraw2})

	// An ordinary card cannot escape the stack.
	_, err := r.Play("p1", Card{Blue, "3"})
	expectErr(t, err, ErrIllegalCard)

	mustPlay(t, r, "p1", Card{Wild, Draw4})
	expectStack(t, r.Stack, StackState{Count: 6, Kind: StackDraw4})
	expectTurn(t, r, 2)

	drawn, err := r.Draw("p2")
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(drawn) != 6 {
		t.Fatalf("expected 6 drawn, got %d", len(drawn))
	}
	expectHand(t, r, "p2", 7)
	expectStack(t, r.Stack, StackState{})
	expectTurn(t, r, 0)
}

func TestDrawWithoutStackTakesOne(t *testing.T) {
	r := fixedRoom(Card{Red, "7"}, filler(3), []Card{{Blue, "1"}}, []Card{{Blue, "2"}})
	_, err := r.Draw("p1")
	expectErr(t, err, ErrNotYourTurn)

	drawn, err := r.Draw("p0")
	if err != nil || len(drawn) != 1 {
		t.Fatalf("draw: %v drawn=%d", err, len(drawn))
	}
	expectHand(t, r, "p0", 2)
	expectTurn(t, r, 1)
}

func TestDrawRefillsFromDiscard(t *testing.T) {
	r := fixedRoom(Card{Green, "9"}, nil, []Card{{Blue, "1"}}, []Card{{Blue, "2"}})
	r.Discard = []Card{{Red, "1"}, {Red, "2"}, {Red, "3"}, {Green, "9"}}
	r.Stack = StackState{Count: 2, Kind: StackDraw2}

	drawn, err := r.Draw("p0")
	if err != nil || len(drawn) != 2 {
		t.Fatalf("draw: %v drawn=%d", err, len(drawn))
	}
	if want := []Card{{Green, "9"}}; !reflect.DeepEqual(r.Discard, want) {
		t.Fatalf("expected discard %v, got %v", want, r.Discard)
	}
	if r.Deck.Len() != 1 {
		t.Fatalf("expected 1 card left in the deck, got %d", r.Deck.Len())
	}
}

func TestDrawStarvedIsShort(t *testing.T) {
	r := fixedRoom(Card{Green, "9"}, nil, []Card{{Blue, "1"}}, []Card{{Blue, "2"}})
	r.Stack = StackState{Count: 4, Kind: StackDraw4}

	drawn, err := r.Draw("p0")
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(drawn) != 0 {
		t.Fatalf("expected nothing to draw, got %v", drawn)
	}
	expectHand(t, r, "p0", 1)
	expectStack(t, r.Stack, StackState{})
	expectTurn(t, r, 1)
}

func TestBasicWin(t *testing.T) {
	r := fixedRoom(Card{Red, "7"}, filler(5), []Card{{Red, "1"}}, []Card{{Red, "3"}})
	out := mustPlay(t, r, "p0", Card{Red, "1"})
	if !out.Finished {
		t.Fatal("expected the game to finish")
	}
	if want := (GameOver{Message: "Player p0 wins!", Winner: "p0"}); out.Result != want {
		t.Fatalf("expected %+v, got %+v", want, out.Result)
	}
	if r.Phase != PhaseFinished {
		t.Fatalf("expected finished, got %s", r.Phase)
	}
	// The turn does not move after a win.
	expectTurn(t, r, 0)

	_, err := r.Play("p1", Card{Red, "3"})
	expectErr(t, err, ErrGameOver)
	_, _, err = r.ForceDraw()
	expectErr(t, err, ErrGameOver)
}

func TestWinWithStackingCardEndsGame(t *testing.T) {
	r := fixedRoom(Card{Red, "7"}, filler(5), []Card{{Red, Draw2}}, []Card{{Red, "3"}})
	if out := mustPlay(t, r, "p0", Card{Red, Draw2}); !out.Finished {
		t.Fatal("emptying a hand with a draw2 should still win")
	}
}

func TestTeamAttribution(t *testing.T) {
	hands := [][]Card{{{Blue, "1"}, {Blue, "2"}}, {{Red, "1"}, {Red, "2"}}, {{Red, "4"}}, {{Red, "5"}}}

	r := fixedRoom(Card{Red, "7"}, filler(5), hands...)
	r.SetTurn(2)
	out := mustPlay(t, r, "p2", Card{Red, "4"})
	if out.Result.Message != "Team A wins!" || out.Result.Winner != "p2" {
		t.Fatalf("unexpected result %+v", out.Result)
	}

	hands[1] = []Card{{Red, "1"}}
	r = fixedRoom(Card{Red, "7"}, filler(5), hands...)
	r.SetTurn(1)
	out = mustPlay(t, r, "p1", Card{Red, "1"})
	if out.Result.Message != "Team B wins!" {
		t.Fatalf("unexpected result %+v", out.Result)
	}
}

func TestForceDrawTakesPendingStack(t *testing.T) {
	r := fixedRoom(Card{Red, Draw2}, filler(10), []Card{{Blue, "1"}}, []Card{{Blue, "2"}})
	r.Stack = StackState{Count: 4, Kind: StackDraw2}

	id, drawn, err := r.ForceDraw()
	if err != nil {
		t.Fatalf("force draw: %v", err)
	}
	if id != "p0" || len(drawn) != 4 {
		t.Fatalf("expected p0 to draw 4, got %s drew %d", id, len(drawn))
	}
	expectHand(t, r, "p0", 5)
	expectStack(t, r.Stack, StackState{})
	expectTurn(t, r, 1)
}

func TestForceDrawNeedsActiveRoom(t *testing.T) {
	r := NewRoom("r1")
	mustAdd(t, r, "a")
	_, _, err := r.ForceDraw()
	expectErr(t, err, ErrNotStarted)
}

func TestRemoveCurrentPlayerPassesTurn(t *testing.T) {
	hands := [][]Card{{{Blue, "1"}}, {{Blue, "2"}}, {{Blue, "3"}}}

	r := fixedRoom(Card{Red, "7"}, nil, hands...)
	r.SetTurn(1)
	removed, hadTurn := r.RemovePlayer("p1")
	if !removed || !hadTurn {
		t.Fatalf("remove p1: removed=%v hadTurn=%v", removed, hadTurn)
	}
	if id := r.CurrentPlayerID(); id != "p2" {
		t.Fatalf("expected p2 to act, got %s", id)
	}
	expectTurn(t, r, 1)
	if r.Deck.Len() != 1 {
		t.Fatalf("expected the hand back in the deck, got %d cards", r.Deck.Len())
	}

	r = fixedRoom(Card{Red, "7"}, nil, hands...)
	r.Direction = -1
	r.SetTurn(0)
	r.RemovePlayer("p0")
	if id := r.CurrentPlayerID(); id != "p2" {
		t.Fatalf("expected p2 to act against the direction, got %s", id)
	}

	r = fixedRoom(Card{Red, "7"}, nil, hands...)
	r.SetTurn(2)
	removed, hadTurn = r.RemovePlayer("p0")
	if !removed || hadTurn {
		t.Fatalf("remove p0: removed=%v hadTurn=%v", removed, hadTurn)
	}
	if id := r.CurrentPlayerID(); id != "p2" {
		t.Fatalf("expected p2 to keep the turn, got %s", id)
	}
	expectTurn(t, r, 1)

	if removed, _ = r.RemovePlayer("nobody"); removed {
		t.Fatal("unknown player should not be removed")
	}
}

func TestRemoveLastPlayer(t *testing.T) {
	r := fixedRoom(Card{Red, "7"}, nil, []Card{{Blue, "1"}})
	if removed, _ := r.RemovePlayer("p0"); !removed {
		t.Fatal("expected p0 removed")
	}
	if len(r.Players) != 0 {
		t.Fatalf("expected no players, got %d", len(r.Players))
	}
	expectTurn(t, r, -1)
}

func TestSnapshotHidesOpponentCards(t *testing.T) {
	r := fixedRoom(Card{Red, "7"}, filler(5),
		[]Card{{Blue, "1"}, {Blue, "2"}},
		[]Card{{Red, "3"}},
	)
	r.Players[1].ID = "abcdefghij"
	r.Stack = StackState{Count: 2, Kind: StackDraw2}

	snap := r.SnapshotFor("p0")
	if want := []Card{{Blue, "1"}, {Blue, "2"}}; !reflect.DeepEqual(snap.MyHand, want) {
		t.Fatalf("expected hand %v, got %v", want, snap.MyHand)
	}
	if !snap.MyTurn || snap.CurrentPlayerID != "p0" {
		t.Fatalf("expected p0 to act, got turn=%v current=%s", snap.MyTurn, snap.CurrentPlayerID)
	}
	if want := []Opponent{{ID: "abcdef", Count: 1}}; !reflect.DeepEqual(snap.Opponents, want) {
		t.Fatalf("expected opponents %v, got %v", want, snap.Opponents)
	}

	b, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got, want any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	_ = json.Unmarshal([]byte(`{
		"myHand":[{"color":"blue","value":"1"},{"color":"blue","value":"2"}],
		"topCard":{"color":"red","value":"7"},
		"myTurn":true,
		"direction":1,
		"stack":{"value":2,"type":"draw2"},
		"opponents":[{"id":"abcdef","count":1}],
		"currentPlayerId":"p0"
	}`), &want)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected snapshot json %s", b)
	}

	other := r.SnapshotFor("abcdefghij")
	if other.MyTurn {
		t.Fatal("opponent should not see its turn")
	}
	if want := []Opponent{{ID: "p0", Count: 2}}; !reflect.DeepEqual(other.Opponents, want) {
		t.Fatalf("expected opponents %v, got %v", want, other.Opponents)
	}
}

func TestSnapshotWaitingRoom(t *testing.T) {
	r := NewRoom("r1")
	mustAdd(t, r, "a")
	snap := r.SnapshotFor("a")
	if snap.TopCard != nil || snap.MyTurn {
		t.Fatalf("unexpected waiting snapshot %+v", snap)
	}
	if snap.MyHand == nil || snap.Opponents == nil {
		t.Fatal("hand and opponents must encode as arrays")
	}

	b, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"stack":{"value":0,"type":null}`) {
		t.Fatalf("unexpected stack encoding in %s", b)
	}
}

// The closed card system holds across a long run of random legal actions,
// including timeouts, seat removal and a late joiner.
func TestCardConservation(t *testing.T) {
	for round := 0; round < 20; round++ {
		r := NewRoom("r1")
		mustAdd(t, r, "a")
		mustAdd(t, r, "b")
		mustAdd(t, r, "c")
		if err := r.Start(); err != nil {
			t.Fatalf("start: %v", err)
		}
		mustAdd(t, r, "d")
		if n := r.CardCount(); n != DeckSize {
			t.Fatalf("expected %d cards after late join, got %d", DeckSize, n)
		}

		for step := 0; step < 2000 && r.Phase == PhaseActive; step++ {
			id := r.CurrentPlayerID()
			top, _ := r.Top()
			played := false
			if step%7 != 0 {
				for _, c := range r.Hand(id) {
					if CanPlay(c, top, r.Stack) {
						mustPlay(t, r, id, c)
						played = true
						break
					}
				}
			}
			if !played {
				var err error
				if step%5 == 0 {
					_, _, err = r.ForceDraw()
				} else {
					_, err = r.Draw(id)
				}
				if err != nil {
					t.Fatalf("round %d step %d draw: %v", round, step, err)
				}
			}
			if step == 300 && len(r.Players) > 2 {
				r.RemovePlayer(r.Players[1].ID)
			}
			if n := r.CardCount(); n != DeckSize {
				t.Fatalf("round %d step %d: %d cards in play", round, step, n)
			}
			if r.Phase == PhaseActive && (r.CurrentTurn() < 0 || len(r.Discard) == 0) {
				t.Fatalf("round %d step %d: turn=%d discard=%d", round, step, r.CurrentTurn(), len(r.Discard))
			}
		}
	}
}
