/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package race

// Action is an inbound player request. The concrete types below are the
// only implementations.
type Action interface {
	action() string
}

// CreateRoom opens a new room with the sender as its sole member.
type CreateRoom struct {
	DisplayName string
}

// JoinRoom adds the sender to an existing room.
type JoinRoom struct {
	RoomID      string
	DisplayName string
}

// SetReady toggles the sender's ready flag while their room is waiting.
type SetReady struct {
	Ready bool
}

// LeaveRoom removes the sender from their room.
type LeaveRoom struct{}

// UpdateProgress reports how much of the race text the sender has typed.
//
// Progress is computed by the client from TypedText and the race text and
// is not checked against either.
type UpdateProgress struct {
	Progress  float64
	TypedText string
}

func (CreateRoom) action() string     { return "createRoom" }
func (JoinRoom) action() string       { return "joinRoom" }
func (SetReady) action() string       { return "playerReady" }
func (LeaveRoom) action() string      { return "leaveRoom" }
func (UpdateProgress) action() string { return "updateProgress" }

// Name returns the protocol name of an action.
func Name(a Action) string {
	if a == nil {
		return ""
	}

	return a.action()
}

// Result is what the requester receives back from Apply.
type Result struct {
	RoomID string
	Room   *Snapshot

	// Ignored reports that the action did not apply to the sender's current
	// room, or that the sender has no room.
	Ignored bool
}

var ignored = Result{Ignored: true}
