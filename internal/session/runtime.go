package session

import (
	"context"
	"time"

	"uno-server/internal/game"

	"github.com/rs/zerolog/log"
)

type joinCmd struct {
	ctx    context.Context
	client Client
	reply  chan error
}

type playCmd struct {
	playerID string
	card     game.Card
}

type drawCmd struct {
	playerID string
}

type leaveCmd struct {
	playerID string
}

type infoCmd struct {
	reply chan RoomInfo
}

type closeCmd struct{}

// RoomInfo is the public listing entry of a room.
type RoomInfo struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Players int    `json:"players"`
}

// Result is a finished game as handed to a ResultRecorder.
type Result struct {
	RoomID     string
	WinnerID   string
	Message    string
	Players    int
	FinishedAt time.Time
}

type ResultRecorder interface {
	RecordResult(ctx context.Context, res Result) error
}

// roomRuntime owns one room. Every mutation, countdown ticks included,
// runs on its goroutine in arrival order.
type roomRuntime struct {
	id      string
	seq     int
	room    *game.Room
	clients map[string]Client
	inbox   chan any
	done    chan struct{}
	timer   *countdown
	dir     *Directory
}

func newRoomRuntime(dir *Directory, id string, seq int) *roomRuntime {
	return &roomRuntime{
		id:      id,
		seq:     seq,
		room:    dir.newRoom(id),
		clients: map[string]Client{},
		inbox:   make(chan any, 16),
		done:    make(chan struct{}),
		timer:   newCountdown(dir.opts.TurnSeconds, dir.opts.NewTicker),
		dir:     dir,
	}
}

// submit queues cmd unless the room has already shut down.
func (rt *roomRuntime) submit(cmd any) bool {
	select {
	case <-rt.done:
		return false
	default:
	}
	select {
	case rt.inbox <- cmd:
		return true
	case <-rt.done:
		return false
	}
}

func (rt *roomRuntime) run() {
	defer close(rt.done)
	defer rt.timer.stop()
	for {
		select {
		case cmd := <-rt.inbox:
			if rt.handle(cmd) {
				return
			}
		case <-rt.timer.C():
			rt.onTick()
		}
	}
}

// handle applies one command and reports whether the room is gone.
func (rt *roomRuntime) handle(cmd any) bool {
	switch c := cmd.(type) {
	case joinCmd:
		return rt.handleJoin(c)
	case playCmd:
		return rt.handlePlay(c)
	case drawCmd:
		rt.handleDraw(c)
	case leaveCmd:
		return rt.handleLeave(c)
	case infoCmd:
		c.reply <- rt.info()
	case closeCmd:
		rt.destroy("shutdown")
		return true
	}
	return false
}

// handleJoin seats the client. A fresh room whose first join is rejected
// is destroyed.
func (rt *roomRuntime) handleJoin(c joinCmd) bool {
	id := c.client.ID()
	err := c.ctx.Err()
	added := false
	if err == nil {
		added, err = rt.room.AddPlayer(id)
	}
	if err != nil {
		c.reply <- err
		if len(rt.room.Players) == 0 {
			rt.destroy("empty")
			return true
		}
		return false
	}
	rt.clients[id] = c.client
	if !added {
		c.reply <- nil
		return false
	}
	rt.dir.bind(id, rt.id)
	c.reply <- nil

	c.client.Send(Event{Name: EventJoined, Data: rt.id})
	log.Info().Str("room_id", rt.id).Str("player_id", id).Int("players", len(rt.room.Players)).Msg("player_joined")

	if rt.room.CanStart() {
		if err := rt.room.Start(); err != nil {
			log.Error().Err(err).Str("room_id", rt.id).Msg("room start failed")
			rt.broadcastState()
			return false
		}
		log.Info().Str("room_id", rt.id).Int("players", len(rt.room.Players)).Msg("room_started")
		rt.broadcastState()
		rt.restartTimer()
		return false
	}
	rt.broadcastState()
	return false
}

func (rt *roomRuntime) handlePlay(c playCmd) bool {
	out, err := rt.room.Play(c.playerID, c.card)
	if err != nil {
		rt.dropped("play", c.playerID, err)
		return false
	}
	metricCardsPlayedTotal.Add(1)
	log.Debug().Str("room_id", rt.id).Str("player_id", c.playerID).Str("card", out.Card.String()).Msg("card_played")

	if out.Finished {
		rt.finish(out.Result)
		return true
	}
	rt.broadcastState()
	rt.restartTimer()
	return false
}

func (rt *roomRuntime) handleDraw(c drawCmd) {
	drawn, err := rt.room.Draw(c.playerID)
	if err != nil {
		rt.dropped("draw", c.playerID, err)
		return
	}
	metricDrawsTotal.Add(1)
	log.Debug().Str("room_id", rt.id).Str("player_id", c.playerID).Int("count", len(drawn)).Msg("cards_drawn")
	rt.broadcastState()
	rt.restartTimer()
}

func (rt *roomRuntime) handleLeave(c leaveCmd) bool {
	removed, hadTurn := rt.room.RemovePlayer(c.playerID)
	delete(rt.clients, c.playerID)
	rt.dir.unbind(c.playerID, rt.id)
	if !removed {
		return false
	}
	log.Info().Str("room_id", rt.id).Str("player_id", c.playerID).Int("players", len(rt.room.Players)).Msg("player_left")

	if len(rt.room.Players) == 0 {
		rt.destroy("empty")
		return true
	}
	rt.broadcastState()
	if rt.room.Phase == game.PhaseActive && (hadTurn || !rt.timer.running()) {
		rt.restartTimer()
	}
	return false
}

func (rt *roomRuntime) onTick() {
	remaining, expired := rt.timer.tick()
	rt.broadcast(Event{Name: EventTimer, Data: remaining})
	if !expired || rt.room.Phase != game.PhaseActive {
		return
	}
	playerID, drawn, err := rt.room.ForceDraw()
	if err != nil {
		log.Warn().Err(err).Str("room_id", rt.id).Msg("forced draw failed")
		return
	}
	metricForcedDrawsTotal.Add(1)
	log.Info().Str("room_id", rt.id).Str("player_id", playerID).Int("count", len(drawn)).Msg("turn_timeout")
	rt.broadcastState()
	rt.restartTimer()
}

func (rt *roomRuntime) restartTimer() {
	rt.broadcast(Event{Name: EventTimer, Data: rt.timer.start()})
}

func (rt *roomRuntime) finish(res game.GameOver) {
	rt.timer.stop()
	rt.broadcast(Event{Name: EventGameOver, Data: res})
	metricGamesFinishedTotal.Add(1)
	log.Info().Str("room_id", rt.id).Str("winner", res.Winner).Str("message", res.Message).Msg("game_over")
	rt.dir.recordResult(Result{
		RoomID:     rt.id,
		WinnerID:   res.Winner,
		Message:    res.Message,
		Players:    len(rt.room.Players),
		FinishedAt: time.Now().UTC(),
	})
	rt.destroy("game_over")
}

// destroy cancels the countdown and drops the room from the directory.
// The caller must return from run right after.
func (rt *roomRuntime) destroy(reason string) {
	rt.timer.stop()
	ids := make([]string, 0, len(rt.room.Players))
	for _, p := range rt.room.Players {
		ids = append(ids, p.ID)
	}
	rt.dir.release(rt.id, ids)
	log.Info().Str("room_id", rt.id).Str("reason", reason).Msg("room_destroyed")
}

func (rt *roomRuntime) dropped(action, playerID string, err error) {
	metricIllegalActionsTotal.Add(1)
	log.Debug().Err(err).Str("room_id", rt.id).Str("player_id", playerID).Str("action", action).Msg("action_dropped")
}

func (rt *roomRuntime) broadcastState() {
	for _, p := range rt.room.Players {
		if c := rt.clients[p.ID]; c != nil {
			c.Send(Event{Name: EventState, Data: rt.room.SnapshotFor(p.ID)})
		}
	}
}

func (rt *roomRuntime) broadcast(ev Event) {
	for _, p := range rt.room.Players {
		if c := rt.clients[p.ID]; c != nil {
			c.Send(ev)
		}
	}
}

func (rt *roomRuntime) info() RoomInfo {
	return RoomInfo{ID: rt.id, Status: rt.room.Phase.String(), Players: len(rt.room.Players)}
}
