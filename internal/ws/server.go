package ws

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"uno-server/internal/game"
	"uno-server/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
	joinTimeout    = 5 * time.Second
)

var (
	metricConnectionsTotal  = expvar.NewInt("ws_connections_total")
	metricConnectionsActive = expvar.NewInt("ws_connections_active")
	metricMessagesDropped   = expvar.NewInt("ws_messages_dropped_total")
)

// Client is one websocket connection and the player identity bound to it.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func (c *Client) ID() string { return c.id }

// Send queues ev for the write loop. A full buffer drops the message.
func (c *Client) Send(ev session.Event) {
	msg, err := encodeEvent(ev)
	if err != nil {
		log.Error().Err(err).Str("event", ev.Name).Msg("encode event failed")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		metricMessagesDropped.Add(1)
		log.Warn().Str("player_id", c.id).Str("event", ev.Name).Msg("send buffer full")
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

type Server struct {
	dir      *session.Directory
	upgrader websocket.Upgrader
}

// NewServer accepts connections from allowedOrigin, or from anywhere when
// it is empty or "*".
func NewServer(dir *session.Directory, allowedOrigin string) *Server {
	return &Server{
		dir: dir,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				return origin == allowedOrigin
			},
		},
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("ws upgrade failed")
		return
	}
	client := &Client{id: newPlayerID(), conn: conn, send: make(chan []byte, sendBuffer)}
	metricConnectionsTotal.Add(1)
	metricConnectionsActive.Add(1)
	log.Debug().Str("player_id", client.id).Str("remote", r.RemoteAddr).Msg("ws_connected")

	go s.writeLoop(client)
	s.readLoop(client)
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		s.dir.Leave(c.id)
		c.close()
		_ = c.conn.Close()
		metricConnectionsActive.Add(-1)
		log.Debug().Str("player_id", c.id).Msg("ws_disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("player_id", c.id).Msg("ws read failed")
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			log.Debug().Err(err).Str("player_id", c.id).Msg("malformed frame")
			continue
		}
		s.dispatch(c, env)
	}
}

func (s *Server) dispatch(c *Client, env Envelope) {
	switch env.Event {
	case EventJoin:
		roomID, err := joinRoomID(env.Data)
		if err != nil {
			c.Send(session.Event{Name: session.EventError, Data: session.Message(session.ErrRoomNotFound)})
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), joinTimeout)
		defer cancel()
		if _, err := s.dir.JoinOrCreate(ctx, roomID, c); err != nil {
			log.Debug().Err(err).Str("player_id", c.id).Str("room_id", roomID).Msg("join rejected")
			c.Send(session.Event{Name: session.EventError, Data: session.Message(err)})
		}
	case EventPlay:
		var card game.Card
		if err := json.Unmarshal(env.Data, &card); err != nil {
			log.Debug().Err(err).Str("player_id", c.id).Msg("malformed play")
			return
		}
		s.ignoreUnseated(c, s.dir.Play(c.id, card))
	case EventDraw:
		s.ignoreUnseated(c, s.dir.Draw(c.id))
	default:
		log.Debug().Str("player_id", c.id).Str("event", env.Event).Msg("unknown event")
	}
}

func (s *Server) ignoreUnseated(c *Client, err error) {
	if err != nil && !errors.Is(err, session.ErrNotSeated) {
		log.Warn().Err(err).Str("player_id", c.id).Msg("action failed")
	}
}

func (s *Server) writeLoop(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
