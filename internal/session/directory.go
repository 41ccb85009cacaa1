package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"uno-server/internal/game"

	"github.com/rs/zerolog/log"
)

const defaultRecordTimeout = 2 * time.Second

type Options struct {
	TurnSeconds   int
	NewTicker     TickerFunc
	Recorder      ResultRecorder
	RecordTimeout time.Duration
}

// Directory maps room ids and seated players to running rooms. The lock
// only guards the maps; it is never held while talking to a room.
type Directory struct {
	opts    Options
	newRoom func(id string) *game.Room

	mu       sync.Mutex
	nextID   int
	rooms    map[string]*roomRuntime
	byPlayer map[string]string

	recording sync.WaitGroup
}

func NewDirectory(opts Options) *Directory {
	if opts.TurnSeconds <= 0 {
		opts.TurnSeconds = DefaultTurnSeconds
	}
	if opts.NewTicker == nil {
		opts.NewTicker = NewTimeTicker
	}
	if opts.RecordTimeout <= 0 {
		opts.RecordTimeout = defaultRecordTimeout
	}
	return &Directory{
		opts:     opts,
		newRoom:  game.NewRoom,
		rooms:    map[string]*roomRuntime{},
		byPlayer: map[string]string{},
	}
}

// JoinOrCreate seats c in roomID, or in a fresh room when roomID is empty.
// A player already seated elsewhere leaves that room once the new seat is
// confirmed.
func (d *Directory) JoinOrCreate(ctx context.Context, roomID string, c Client) (string, error) {
	playerID := c.ID()

	d.mu.Lock()
	var rt *roomRuntime
	if roomID == "" {
		rt = d.createLocked()
	} else {
		rt = d.rooms[roomID]
	}
	var prev *roomRuntime
	seated := false
	if prevID, ok := d.byPlayer[playerID]; ok {
		if rt != nil && prevID == rt.id {
			seated = true
		} else {
			prev = d.rooms[prevID]
		}
	}
	d.mu.Unlock()

	if rt == nil {
		return "", ErrRoomNotFound
	}
	reply := make(chan error, 1)
	if !rt.submit(joinCmd{ctx: ctx, client: c, reply: reply}) {
		return "", ErrRoomNotFound
	}
	select {
	case err := <-reply:
		if err != nil {
			return "", err
		}
	case <-rt.done:
		return "", ErrRoomClosed
	case <-ctx.Done():
		if !seated {
			go undoJoin(rt, playerID, reply)
		}
		return "", ctx.Err()
	}
	if prev != nil {
		prev.submit(leaveCmd{playerID: playerID})
	}
	return rt.id, nil
}

// undoJoin waits for a join the caller gave up on and takes the seat back
// if the room granted it anyway.
func undoJoin(rt *roomRuntime, playerID string, reply <-chan error) {
	select {
	case err := <-reply:
		if err == nil {
			rt.submit(leaveCmd{playerID: playerID})
		}
	case <-rt.done:
	}
}

func (d *Directory) createLocked() *roomRuntime {
	d.nextID++
	id := fmt.Sprintf("r%d", d.nextID)
	rt := newRoomRuntime(d, id, d.nextID)
	d.rooms[id] = rt
	go rt.run()

	metricRoomsCreatedTotal.Add(1)
	metricRoomsActive.Add(1)
	log.Info().Str("room_id", id).Msg("room_created")
	return rt
}

// Play forwards a card to the room the player sits in. Illegal plays are
// dropped by the room without a reply.
func (d *Directory) Play(playerID string, card game.Card) error {
	rt := d.route(playerID)
	if rt == nil || !rt.submit(playCmd{playerID: playerID, card: card}) {
		return ErrNotSeated
	}
	return nil
}

func (d *Directory) Draw(playerID string) error {
	rt := d.route(playerID)
	if rt == nil || !rt.submit(drawCmd{playerID: playerID}) {
		return ErrNotSeated
	}
	return nil
}

// Leave removes the player from whatever room holds them. Unknown players
// are ignored.
func (d *Directory) Leave(playerID string) {
	if rt := d.route(playerID); rt != nil {
		rt.submit(leaveCmd{playerID: playerID})
	}
}

// RoomOf returns the id of the room the player is seated in.
func (d *Directory) RoomOf(playerID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, ok := d.byPlayer[playerID]
	return id, ok
}

// Rooms lists live rooms in creation order.
func (d *Directory) Rooms(ctx context.Context) []RoomInfo {
	runtimes := d.snapshot()
	out := make([]RoomInfo, 0, len(runtimes))
	for _, rt := range runtimes {
		reply := make(chan RoomInfo, 1)
		if !rt.submit(infoCmd{reply: reply}) {
			continue
		}
		select {
		case info := <-reply:
			out = append(out, info)
		case <-rt.done:
		case <-ctx.Done():
			return out
		}
	}
	return out
}

func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rooms)
}

// Close shuts every room down and waits for pending result writes.
func (d *Directory) Close() {
	for _, rt := range d.snapshot() {
		rt.submit(closeCmd{})
		<-rt.done
	}
	d.recording.Wait()
}

func (d *Directory) snapshot() []*roomRuntime {
	d.mu.Lock()
	out := make([]*roomRuntime, 0, len(d.rooms))
	for _, rt := range d.rooms {
		out = append(out, rt)
	}
	d.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (d *Directory) route(playerID string) *roomRuntime {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, ok := d.byPlayer[playerID]
	if !ok {
		return nil
	}
	return d.rooms[id]
}

func (d *Directory) bind(playerID, roomID string) {
	d.mu.Lock()
	d.byPlayer[playerID] = roomID
	d.mu.Unlock()
}

// unbind drops the mapping only if it still points at roomID; the player
// may already be seated somewhere else.
func (d *Directory) unbind(playerID, roomID string) {
	d.mu.Lock()
	if d.byPlayer[playerID] == roomID {
		delete(d.byPlayer, playerID)
	}
	d.mu.Unlock()
}

func (d *Directory) release(roomID string, playerIDs []string) {
	d.mu.Lock()
	if _, ok := d.rooms[roomID]; ok {
		delete(d.rooms, roomID)
		metricRoomsActive.Add(-1)
	}
	for _, id := range playerIDs {
		if d.byPlayer[id] == roomID {
			delete(d.byPlayer, id)
		}
	}
	d.mu.Unlock()
}

func (d *Directory) recordResult(res Result) {
	rec := d.opts.Recorder
	if rec == nil {
		return
	}
	d.recording.Add(1)
	go func() {
		defer d.recording.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.opts.RecordTimeout)
		defer cancel()
		if err := rec.RecordResult(ctx, res); err != nil {
			log.Warn().Err(err).Str("room_id", res.RoomID).Msg("record result failed")
		}
	}()
}
