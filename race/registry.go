/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package race is the room registry and session coordinator for typerace.
//
// Features:
// - Rooms addressed by short case-insensitive codes, regenerated on collision
// - Up to four players per room, kept in join order
// - Reverse index from player handle to room, so a player is in at most one room
// - Races start on their own once at least two members are all ready
// - Cumulative words-per-minute recomputed on every progress update
// - Results ranked by speed (ties keep join order), then the room resets
// - A race with fewer than two members left ends early
// - Empty rooms are deleted immediately
//
// Every mutation of a room happens under that room's lock; rooms never share
// a lock, so actions against different rooms run in parallel.
package race

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
)

// Options configures a Registry. Zero values select the defaults.
type Options struct {
	Sink       Sink
	Logger     *zerolog.Logger
	Texts      []string
	CodeLength int

	// Test hooks.
	Now       func() time.Time
	Pick      func(n int) int
	NewCode   func(n int) string
	NewRaceID func() string
}

// Stats is a point-in-time count of live state.
type Stats struct {
	Rooms   int
	Players int
}

// Registry owns every room and player for the lifetime of the process.
// Lock order is room before registry; the registry lock is never held while
// waiting for a room. When two rooms are locked at once, the lower room id
// goes first.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*room
	index map[string]string // player handle -> room id

	sink       Sink
	log        zerolog.Logger
	texts      []string
	codeLength int
	now        func() time.Time
	pick       func(n int) int
	newCode    func(n int) string
	newRaceID  func() string
}

func NewRegistry(opts Options) *Registry {
	g := &Registry{
		rooms:      make(map[string]*room),
		index:      make(map[string]string),
		sink:       opts.Sink,
		log:        zerolog.Nop(),
		texts:      opts.Texts,
		codeLength: opts.CodeLength,
		now:        opts.Now,
		pick:       opts.Pick,
		newCode:    opts.NewCode,
		newRaceID:  opts.NewRaceID,
	}

	if opts.Logger != nil {
		g.log = opts.Logger.With().Str("component", "race").Logger()
	}
	if g.sink == nil {
		g.sink = discard{}
	}
	if len(g.texts) == 0 {
		g.texts = DefaultTexts
	}
	if g.codeLength < MinCodeLength || g.codeLength > MaxCodeLength {
		g.codeLength = DefaultCodeLength
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.pick == nil {
		g.pick = rand.IntN
	}
	if g.newCode == nil {
		g.newCode = newCode
	}
	if g.newRaceID == nil {
		g.newRaceID = func() string { return ksuid.New().String() }
	}

	return g
}

// Apply runs one inbound action from the player identified by handle.
//
// Only JoinRoom can fail; every other action either applies or is ignored,
// which Result.Ignored reports.
func (g *Registry) Apply(handle string, a Action) (Result, error) {
	if handle == "" {
		return Result{}, errMissingIdentity
	}

	switch a := a.(type) {
	case CreateRoom:
		return g.create(handle, a.DisplayName), nil
	case JoinRoom:
		res, err := g.join(handle, a.RoomID, a.DisplayName)
		if err != nil {
			g.log.Debug().Str("player", handle).Str("room", NormalizeCode(a.RoomID)).Err(err).Msg("join rejected")
		}
		return res, err
	case SetReady:
		return g.setReady(handle, a.Ready), nil
	case LeaveRoom:
		return g.remove(handle), nil
	case UpdateProgress:
		return g.updateProgress(handle, a.Progress, a.TypedText), nil
	}

	return Result{}, errUnknownAction
}

// Disconnect drops a player whose connection has gone away. It behaves
// exactly like LeaveRoom and is safe to call for handles with no room.
func (g *Registry) Disconnect(handle string) {
	g.remove(handle)
}

// Room returns a snapshot of a live room.
func (g *Registry) Room(code string) (*Snapshot, bool) {
	rm := g.lookup(NormalizeCode(code))
	if rm == nil {
		return nil, false
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.closed {
		return nil, false
	}

	return rm.snapshot(), true
}

// RoomOf returns the code of the room handle belongs to.
func (g *Registry) RoomOf(handle string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, ok := g.index[handle]

	return id, ok
}

func (g *Registry) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Stats{
		Rooms:   len(g.rooms),
		Players: len(g.index),
	}
}

func (g *Registry) lookup(code string) *room {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.rooms[code]
}

func (g *Registry) roomOf(handle string) *room {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, ok := g.index[handle]
	if !ok {
		return nil
	}

	return g.rooms[id]
}

// lockMember returns handle's room, locked, and its player entry. On a nil
// room nothing is locked.
func (g *Registry) lockMember(handle string) (*room, *Player) {
	rm := g.roomOf(handle)
	if rm == nil {
		return nil, nil
	}

	rm.mu.Lock()

	p, ok := rm.players[handle]
	if rm.closed || !ok {
		rm.mu.Unlock()
		return nil, nil
	}

	return rm, p
}

func (g *Registry) create(handle, name string) Result {
	g.remove(handle)

	p := &Player{
		ID:          handle,
		DisplayName: cleanName(name),
	}

	g.mu.Lock()
	id := g.newCode(g.codeLength)
	for g.rooms[id] != nil {
		id = g.newCode(g.codeLength)
	}

	// Not yet reachable by anyone else, so locking it here cannot deadlock.
	rm := newRoom(id, g.pickText(""))
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.add(p)
	g.rooms[id] = rm
	g.index[handle] = id
	g.mu.Unlock()

	g.log.Info().Str("room", id).Str("player", handle).Str("name", p.DisplayName).Msg("room created")

	snap := rm.snapshot()
	g.emit(rm, Event{
		Type:        RoomCreated,
		RoomID:      id,
		PlayerID:    handle,
		DisplayName: p.DisplayName,
		Room:        snap,
	})

	return Result{RoomID: id, Room: snap}
}

func (g *Registry) join(handle, code, name string) (Result, error) {
	code = NormalizeCode(code)

	for {
		rm := g.lookup(code)
		if rm == nil {
			return Result{}, ErrRoomNotFound
		}

		old := g.roomOf(handle)
		if old == rm {
			if snap, ok := g.Room(code); ok {
				return Result{RoomID: code, Room: snap}, nil
			}
			return Result{}, ErrRoomNotFound
		}

		unlock := lockPair(rm, old)

		// The player moved while we waited for the locks.
		if g.roomOf(handle) != old {
			unlock()
			continue
		}

		res, err := g.joinLocked(handle, rm, old, name)
		unlock()

		return res, err
	}
}

// joinLocked admits handle to rm, leaving old first when it is set. Every
// check runs before anything is mutated, so a rejected join leaves both rooms
// untouched. Must be called with rm.mu and old.mu held.
func (g *Registry) joinLocked(handle string, rm, old *room, name string) (Result, error) {
	switch {
	case rm.closed:
		return Result{}, ErrRoomNotFound
	case rm.state != Waiting:
		return Result{}, ErrRaceInProgress
	case len(rm.players) >= MaxPlayers:
		return Result{}, ErrRoomFull
	}

	if old != nil {
		g.leaveLocked(old, handle)
	}

	p := &Player{
		ID:          handle,
		DisplayName: cleanName(name),
	}
	rm.add(p)

	g.mu.Lock()
	g.index[handle] = rm.id
	g.mu.Unlock()

	g.log.Info().Str("room", rm.id).Str("player", handle).Str("name", p.DisplayName).Int("players", len(rm.players)).Msg("player joined")

	snap := rm.snapshot()
	g.emit(rm, Event{
		Type:        PlayerJoined,
		RoomID:      rm.id,
		PlayerID:    handle,
		DisplayName: p.DisplayName,
		Room:        snap,
	})

	return Result{RoomID: rm.id, Room: snap}, nil
}

// lockPair locks a and, when set, b in room id order and returns the unlock.
func lockPair(a, b *room) func() {
	if b == nil {
		a.mu.Lock()
		return a.mu.Unlock
	}

	first, second := a, b
	if b.id < a.id {
		first, second = b, a
	}

	first.mu.Lock()
	second.mu.Lock()

	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}

// remove takes handle out of its room, deleting the room once it is empty.
func (g *Registry) remove(handle string) Result {
	rm := g.roomOf(handle)
	if rm == nil {
		return ignored
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	return g.leaveLocked(rm, handle)
}

// leaveLocked must be called with rm.mu held.
func (g *Registry) leaveLocked(rm *room, handle string) Result {
	if rm.closed || !rm.remove(handle) {
		return ignored
	}

	empty := len(rm.players) == 0

	g.mu.Lock()
	if g.index[handle] == rm.id {
		delete(g.index, handle)
	}
	if empty {
		rm.closed = true
		delete(g.rooms, rm.id)
	}
	g.mu.Unlock()

	if empty {
		g.log.Info().Str("room", rm.id).Str("player", handle).Msg("room deleted")

		return Result{RoomID: rm.id}
	}

	g.log.Info().Str("room", rm.id).Str("player", handle).Int("players", len(rm.players)).Msg("player left")

	g.emit(rm, Event{
		Type:     PlayerLeft,
		RoomID:   rm.id,
		PlayerID: handle,
		Room:     rm.snapshot(),
	})

	switch rm.state {
	case Racing:
		if len(rm.players) < MinRacers || rm.allFinished() {
			g.finish(rm)
		}
	case Waiting:
		g.maybeStart(rm)
	}

	return Result{RoomID: rm.id}
}

func (g *Registry) pickText(prev string) string {
	i := g.pick(len(g.texts))
	if g.texts[i] == prev {
		i = (i + 1) % len(g.texts)
	}

	return g.texts[i]
}

// emit must be called with rm.mu held.
func (g *Registry) emit(rm *room, ev Event) {
	g.sink.Deliver(rm.members(), ev)
}
