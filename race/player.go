/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package race

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	// MaxPlayers is the capacity of a single room.
	MaxPlayers = 4

	// MinRacers is the membership needed to start, and keep, a race.
	MinRacers = 2

	maxNameLength = 32
	defaultName   = "Player"
)

// State is the phase of a room's race cycle.
type State string

const (
	Waiting  State = "waiting"
	Racing   State = "racing"
	Finished State = "finished"
)

// Player is a room member as seen by clients.
type Player struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	Progress    float64 `json:"progress"`
	Speed       int     `json:"speed"`
	Ready       bool    `json:"ready"`
	Finished    bool    `json:"finished"`
}

// Snapshot is the full, authoritative state of a room at one instant.
type Snapshot struct {
	ID        string   `json:"id"`
	Players   []Player `json:"players"`
	Text      string   `json:"text"`
	State     State    `json:"state"`
	RaceID    string   `json:"raceId,omitempty"`
	StartedAt int64    `json:"startedAt,omitempty"`
}

// Standing is one line of a race's final results.
type Standing struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Speed       int    `json:"speed"`
}

// room is guarded by mu; the registry owns every room and never hands
// out pointers to it.
type room struct {
	mu sync.Mutex

	id        string
	order     []string // join order of player handles
	players   map[string]*Player
	text      string
	state     State
	raceID    string
	startedAt time.Time

	// closed is set once the room has been removed from the registry.
	closed bool
}

func newRoom(id, text string) *room {
	return &room{
		id:      id,
		players: make(map[string]*Player, MaxPlayers),
		text:    text,
		state:   Waiting,
	}
}

func (r *room) add(p *Player) {
	r.players[p.ID] = p
	r.order = append(r.order, p.ID)
}

func (r *room) remove(id string) bool {
	if _, ok := r.players[id]; !ok {
		return false
	}

	delete(r.players, id)

	dst := r.order[:0]
	for _, pid := range r.order {
		if pid != id {
			dst = append(dst, pid)
		}
	}
	r.order = dst

	return true
}

// members returns the current member handles in join order.
func (r *room) members() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)

	return out
}

func (r *room) allReady() bool {
	for _, p := range r.players {
		if !p.Ready {
			return false
		}
	}

	return true
}

func (r *room) allFinished() bool {
	for _, p := range r.players {
		if !p.Finished {
			return false
		}
	}

	return true
}

func (r *room) snapshot() *Snapshot {
	s := &Snapshot{
		ID:      r.id,
		Players: make([]Player, 0, len(r.order)),
		Text:    r.text,
		State:   r.state,
		RaceID:  r.raceID,
	}

	if !r.startedAt.IsZero() {
		s.StartedAt = r.startedAt.UnixMilli()
	}

	for _, id := range r.order {
		s.Players = append(s.Players, *r.players[id])
	}

	return s
}

// cleanName trims a user-supplied display name and caps its length.
func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultName
	}

	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}

	return name
}
