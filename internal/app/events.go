package app

import (
	"encoding/json"

	"github.com/loopwell/engage/internal/core"
	"github.com/loopwell/engage/internal/domain"
)

// Outbound event types of the session-addressed protocol.
const (
	EvtWelcome         = "welcome"
	EvtSessionJoined   = "session_joined"
	EvtSessionLeft     = "session_left"
	EvtUserJoined      = "user_joined_session"
	EvtUserLeft        = "user_left_session"
	EvtNewComment      = "new_comment"
	EvtCommentReaction = "comment_reaction"
	EvtMotivation      = "motivation"
	EvtSessionStatus   = "session_status"
	EvtSessionUpdate   = "session_update"
	EvtError           = "error"
	EvtPong            = "pong"
)

// Error reason codes carried by EvtError events.
const (
	ReasonBadPayload   = "bad_payload"
	ReasonNotFound     = "not_found"
	ReasonNotActive    = "not_active"
	ReasonNotInSession = "not_in_session"
	ReasonStoreError   = "store_error"
)

// Event is the tagged envelope every outbound frame carries.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

func (e Event) Frame() (core.Frame, error) {
	b, err := json.Marshal(e)
	return core.Frame(b), err
}

type WelcomeData struct {
	Participant core.MemberDTO `json:"participant"`
}

type SessionJoinedData struct {
	Session        domain.RoomSlug      `json:"session"`
	Title          string               `json:"title,omitempty"`
	Members        []core.MemberDTO     `json:"members"`
	MemberCount    int                  `json:"member_count"`
	RecentComments []domain.ChatMessage `json:"recent_comments"`
}

type SessionLeftData struct {
	Session domain.RoomSlug `json:"session"`
}

type PresenceData struct {
	Session domain.RoomSlug `json:"session"`
	User    core.MemberDTO  `json:"user"`
}

type NewCommentData struct {
	Session domain.RoomSlug    `json:"session"`
	Comment domain.ChatMessage `json:"comment"`
}

type CommentReactionData struct {
	Session domain.RoomSlug        `json:"session"`
	Summary []domain.ReactionCount `json:"summary"`
}

type MotivationData struct {
	Session domain.RoomSlug     `json:"session"`
	Type    domain.ReactionType `json:"reaction_type"`
	Text    string              `json:"text"`
}

type SessionStatusData struct {
	Session domain.RoomSlug      `json:"session"`
	Status  domain.SessionStatus `json:"status"`
}

type SessionUpdateData struct {
	Session domain.RoomSlug `json:"session"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ErrorData struct {
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}
