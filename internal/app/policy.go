package app

import "github.com/loopwell/engage/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropEvent
	DisconnectMember
)

type Policy interface {
	OnBackpressure(room core.RoomService, member core.MemberSession) BackpressureAction
}

// SimplePolicy disconnects a member whose outbound buffer overflowed.
// A slow recipient must never stall delivery to the rest of the room.
type SimplePolicy struct{}

func (SimplePolicy) OnBackpressure(room core.RoomService, member core.MemberSession) BackpressureAction {
	return DisconnectMember
}
