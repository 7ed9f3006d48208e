/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package race

// EventType names an outbound event.
type EventType string

const (
	RoomCreated         EventType = "roomCreated"
	PlayerJoined        EventType = "playerJoined"
	PlayerStatusChanged EventType = "playerStatusChanged"
	RaceStarted         EventType = "raceStarted"
	ProgressUpdated     EventType = "progressUpdated"
	PlayerFinished      EventType = "playerFinished"
	PlayerLeft          EventType = "playerLeft"
	RaceEnded           EventType = "raceEnded"
)

// Event is a state change fanned out to every current member of a room.
// RoomID is always set; PlayerID is set whenever a single player is the
// subject of the change.
type Event struct {
	Type        EventType  `json:"type"`
	RoomID      string     `json:"roomId"`
	PlayerID    string     `json:"playerId,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	Ready       *bool      `json:"ready,omitempty"`
	Progress    *float64   `json:"progress,omitempty"`
	Speed       *int       `json:"speed,omitempty"`
	Elapsed     *float64   `json:"elapsed,omitempty"`
	Text        string     `json:"text,omitempty"`
	RaceID      string     `json:"raceId,omitempty"`
	StartedAt   int64      `json:"startedAt,omitempty"`
	Results     []Standing `json:"results,omitempty"`
	Room        *Snapshot  `json:"room,omitempty"`
}

// Sink receives every event together with the handles it must reach.
//
// Deliver is called while the affected room is locked, so events for one
// room arrive in order. It must not block and must not call back into the
// Registry.
type Sink interface {
	Deliver(to []string, ev Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(to []string, ev Event)

func (f SinkFunc) Deliver(to []string, ev Event) {
	f(to, ev)
}

type discard struct{}

func (discard) Deliver([]string, Event) {}
