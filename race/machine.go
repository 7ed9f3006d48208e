/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package race

import (
	"slices"
	"time"
)

func (g *Registry) setReady(handle string, ready bool) Result {
	rm, p := g.lockMember(handle)
	if rm == nil {
		return ignored
	}
	defer rm.mu.Unlock()

	if rm.state != Waiting {
		return ignored
	}

	p.Ready = ready

	g.emit(rm, Event{
		Type:     PlayerStatusChanged,
		RoomID:   rm.id,
		PlayerID: handle,
		Ready:    ptr(ready),
		Room:     rm.snapshot(),
	})

	g.maybeStart(rm)

	return Result{RoomID: rm.id}
}

// maybeStart starts the race when every member of a waiting room with
// enough members is ready. Must be called with rm.mu held.
func (g *Registry) maybeStart(rm *room) {
	if rm.state != Waiting || len(rm.players) < MinRacers || !rm.allReady() {
		return
	}

	rm.state = Racing
	rm.startedAt = g.now()
	rm.raceID = g.newRaceID()

	for _, p := range rm.players {
		p.Progress = 0
		p.Speed = 0
		p.Finished = false
	}

	g.log.Info().Str("room", rm.id).Str("race", rm.raceID).Int("players", len(rm.players)).Msg("race started")

	g.emit(rm, Event{
		Type:      RaceStarted,
		RoomID:    rm.id,
		RaceID:    rm.raceID,
		Text:      rm.text,
		StartedAt: rm.startedAt.UnixMilli(),
		Room:      rm.snapshot(),
	})
}

func (g *Registry) updateProgress(handle string, progress float64, typed string) Result {
	rm, p := g.lockMember(handle)
	if rm == nil {
		return ignored
	}
	defer rm.mu.Unlock()

	if rm.state != Racing || p.Finished {
		return ignored
	}

	elapsed := g.now().Sub(rm.startedAt)

	p.Progress = clampProgress(progress)
	p.Speed = Speed(typed, elapsed)

	g.emit(rm, Event{
		Type:     ProgressUpdated,
		RoomID:   rm.id,
		PlayerID: handle,
		Progress: ptr(p.Progress),
		Speed:    ptr(p.Speed),
	})

	if p.Progress < 100 {
		return Result{RoomID: rm.id}
	}

	p.Finished = true

	g.log.Info().Str("room", rm.id).Str("race", rm.raceID).Str("player", handle).Int("speed", p.Speed).Dur("elapsed", elapsed).Msg("player finished")

	g.emit(rm, Event{
		Type:        PlayerFinished,
		RoomID:      rm.id,
		PlayerID:    handle,
		DisplayName: p.DisplayName,
		Speed:       ptr(p.Speed),
		Elapsed:     ptr(elapsed.Round(time.Millisecond).Seconds()),
	})

	if rm.allFinished() {
		g.finish(rm)
	}

	return Result{RoomID: rm.id}
}

// finish is the Finished boundary: it ranks the current members, announces
// the results and puts the room back into Waiting with a fresh text. Must be
// called with rm.mu held.
func (g *Registry) finish(rm *room) {
	results := standings(rm)
	raceID := rm.raceID

	rm.state = Waiting
	rm.text = g.pickText(rm.text)
	rm.raceID = ""
	rm.startedAt = time.Time{}

	for _, p := range rm.players {
		p.Progress = 0
		p.Speed = 0
		p.Ready = false
		p.Finished = false
	}

	g.log.Info().Str("room", rm.id).Str("race", raceID).Int("players", len(results)).Msg("race ended")

	g.emit(rm, Event{
		Type:    RaceEnded,
		RoomID:  rm.id,
		RaceID:  raceID,
		Results: results,
		Room:    rm.snapshot(),
	})
}

// standings orders members by descending speed; equal speeds keep join order.
func standings(rm *room) []Standing {
	out := make([]Standing, 0, len(rm.order))
	for _, id := range rm.order {
		p := rm.players[id]
		out = append(out, Standing{
			PlayerID:    p.ID,
			DisplayName: p.DisplayName,
			Speed:       p.Speed,
		})
	}

	slices.SortStableFunc(out, func(a, b Standing) int {
		return b.Speed - a.Speed
	})

	return out
}

func ptr[T any](v T) *T {
	return &v
}
