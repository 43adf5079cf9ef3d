package core

import (
	"context"

	"github.com/loopwell/engage/internal/domain"
)

// Frame is a marshaled outbound event, ready for the wire.
type Frame []byte

// EventConn abstracts one duplex messaging transport.
// Owned by the adapter; the adapter must Close() it.
type EventConn interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds a domain.Participant and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	Meta() *domain.Participant
	Conn() EventConn
}

// PublishResult reports delivery stats/backpressure to the gateway.
type PublishResult struct {
	SentTo  int
	Dropped []MemberSession
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID          domain.ParticipantID `json:"id"`
	DisplayName string               `json:"display_name,omitempty"`
}

// RoomService is the core-facing API of a room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	MembersSnapshot() []MemberDTO
	Contains(pid domain.ParticipantID) bool

	AddMember(pid domain.ParticipantID, ms MemberSession)
	RemoveMember(pid domain.ParticipantID)
	// Broadcast fans a frame out to every current member except the
	// excluded participant ("" excludes nobody). At-most-once, no retry.
	Broadcast(excluding domain.ParticipantID, data Frame) PublishResult
}

type RoomInfo struct {
	Slug        domain.RoomSlug `json:"slug"`
	Title       string          `json:"title"`
	MemberCount int             `json:"member_count"`
}

// RoomManager creates rooms lazily and garbage-collects empty ones.
type RoomManager interface {
	GetOrCreate(slug domain.RoomSlug, title string) RoomService
	Get(slug domain.RoomSlug) (RoomService, bool)
	List() []RoomInfo
	// Release drops the room entry when its membership is empty.
	Release(slug domain.RoomSlug)
}

// SessionDirectory is the read-only view of the external Session/Looproom
// collaborator. The gateway consults it before admitting a join.
type SessionDirectory interface {
	State(slug domain.RoomSlug) (domain.SessionState, error)
}

// EngagementStore is the durable side of the core: append-only chat log,
// write-once reaction events with running per-(room,type) totals, and the
// motivational candidate pool.
type EngagementStore interface {
	AppendComment(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error)
	RecentComments(ctx context.Context, room domain.RoomSlug, limit int) ([]domain.ChatMessage, error)

	AppendReaction(ctx context.Context, ev domain.ReactionEvent) error
	Summary(ctx context.Context, room domain.RoomSlug) ([]domain.ReactionCount, error)

	PutCandidate(ctx context.Context, c domain.MotivationalCandidate) error
	CandidatesFor(ctx context.Context, room domain.RoomSlug, t domain.ReactionType) ([]domain.MotivationalCandidate, error)
}
