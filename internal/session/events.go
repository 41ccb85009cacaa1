package session

const (
	EventJoined   = "joined"
	EventState    = "state"
	EventTimer    = "timer"
	EventGameOver = "gameover"
	EventError    = "error"
)

// Event is one named message for a client.
type Event struct {
	Name string
	Data any
}

// Client is the channel to one connected player. Send must not block;
// the transport owns buffering and drops for slow readers.
type Client interface {
	ID() string
	Send(Event)
}
