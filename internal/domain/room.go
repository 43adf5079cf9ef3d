package domain

type RoomSlug string

// Room is a named scope for chat and reactions, 1:1 with one live session.
// The core never creates or destroys sessions; it only tracks membership.
type Room struct {
	Slug  RoomSlug
	Title string
}

// SessionStatus is the lifecycle state of the external live session.
// Owned by the platform's CRUD side; read-only here.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "SCHEDULED"
	SessionActive    SessionStatus = "ACTIVE"
	SessionEnded     SessionStatus = "ENDED"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionScheduled, SessionActive, SessionEnded:
		return true
	}
	return false
}

// SessionState is what the session directory reports for a room.
type SessionState struct {
	Status SessionStatus `json:"status"`
	Title  string        `json:"title"`
}
