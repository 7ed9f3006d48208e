/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package race

import "errors"

// Error is a coordinator failure returned synchronously to the requester.
// It is never broadcast to the rest of a room.
type Error struct {
	code    string
	message string
}

func (e *Error) Error() string {
	return e.message
}

// Code is the stable identifier sent over the wire.
func (e *Error) Code() string {
	return e.code
}

var (
	ErrRoomNotFound    = &Error{code: "RoomNotFound", message: "room not found"}
	ErrRoomFull        = &Error{code: "RoomFull", message: "room is full"}
	ErrRaceInProgress  = &Error{code: "RaceInProgress", message: "race already in progress"}
	errUnknownAction   = errors.New("unknown action")
	errMissingIdentity = errors.New("missing player handle")
)

// Code returns the wire code of err, or an empty string when err did not
// originate from the coordinator's taxonomy.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}

	return ""
}
