package ws

import (
	"encoding/json"

	"uno-server/internal/session"
)

// Inbound event names.
const (
	EventJoin = "join"
	EventPlay = "play"
	EventDraw = "draw"
)

// Envelope is the inbound frame. Data is decoded per event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func encodeEvent(ev session.Event) ([]byte, error) {
	return json.Marshal(outbound{Event: ev.Name, Data: ev.Data})
}

// joinRoomID reads the optional room id of a join. Missing data, null and
// "" all ask for a new room.
func joinRoomID(data json.RawMessage) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	var id *string
	if err := json.Unmarshal(data, &id); err != nil {
		return "", err
	}
	if id == nil {
		return "", nil
	}
	return *id, nil
}
