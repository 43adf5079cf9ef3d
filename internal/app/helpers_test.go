package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/loopwell/engage/internal/core"
	"github.com/loopwell/engage/internal/domain"
	"github.com/loopwell/engage/internal/session"
)

// fakeConn records every frame it accepts so tests can assert on the
// exact event stream a participant saw.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return errors.New("send buffer full")
	}
	cp := make(core.Frame, len(f))
	copy(cp, f)
	c.frames = append(c.frames, cp)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type recordedEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (c *fakeConn) events(t *testing.T) []recordedEvent {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]recordedEvent, 0, len(c.frames))
	for _, f := range c.frames {
		var ev recordedEvent
		require.NoError(t, json.Unmarshal(f, &ev))
		out = append(out, ev)
	}
	return out
}

func (c *fakeConn) eventTypes(t *testing.T) []string {
	t.Helper()
	evs := c.events(t)
	out := make([]string, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Type)
	}
	return out
}

func countEvents(t *testing.T, c *fakeConn, evType string) int {
	t.Helper()
	n := 0
	for _, ty := range c.eventTypes(t) {
		if ty == evType {
			n++
		}
	}
	return n
}

// lastEvent decodes the payload of the most recent event of the given
// type, failing the test when none was delivered.
func lastEvent[T any](t *testing.T, c *fakeConn, evType string) T {
	t.Helper()
	evs := c.events(t)
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Type != evType {
			continue
		}
		var data T
		require.NoError(t, json.Unmarshal(evs[i].Data, &data))
		return data
	}
	t.Fatalf("no %q event delivered; saw %v", evType, c.eventTypes(t))
	var zero T
	return zero
}

// fakeStore is an in-memory EngagementStore with a fault injector for
// the retry paths.
type fakeStore struct {
	mu         sync.Mutex
	comments   map[domain.RoomSlug][]domain.ChatMessage
	totals     map[domain.RoomSlug]map[domain.ReactionType]int64
	candidates []domain.MotivationalCandidate

	failNext int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		comments: make(map[domain.RoomSlug][]domain.ChatMessage),
		totals:   make(map[domain.RoomSlug]map[domain.ReactionType]int64),
	}
}

func (s *fakeStore) maybeFail() error {
	if s.failNext > 0 {
		s.failNext--
		return errors.New("store unavailable")
	}
	return nil
}

func (s *fakeStore) AppendComment(_ context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.maybeFail(); err != nil {
		return domain.ChatMessage{}, err
	}
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now().UTC()
	s.comments[msg.Room] = append(s.comments[msg.Room], msg)
	return msg, nil
}

func (s *fakeStore) RecentComments(_ context.Context, room domain.RoomSlug, limit int) ([]domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.maybeFail(); err != nil {
		return nil, err
	}
	all := s.comments[room]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]domain.ChatMessage, len(all))
	copy(out, all)
	return out, nil
}

func (s *fakeStore) AppendReaction(_ context.Context, ev domain.ReactionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.maybeFail(); err != nil {
		return err
	}
	if s.totals[ev.Room] == nil {
		s.totals[ev.Room] = make(map[domain.ReactionType]int64)
	}
	s.totals[ev.Room][ev.Type] += ev.Weight
	return nil
}

func (s *fakeStore) Summary(_ context.Context, room domain.RoomSlug) ([]domain.ReactionCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.maybeFail(); err != nil {
		return nil, err
	}
	out := make([]domain.ReactionCount, 0, len(domain.ReactionTypes))
	for _, t := range domain.ReactionTypes {
		out = append(out, domain.ReactionCount{Type: t, Total: s.totals[room][t]})
	}
	return out, nil
}

func (s *fakeStore) PutCandidate(_ context.Context, c domain.MotivationalCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = append(s.candidates, c)
	return nil
}

func (s *fakeStore) CandidatesFor(_ context.Context, room domain.RoomSlug, t domain.ReactionType) ([]domain.MotivationalCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.MotivationalCandidate
	for _, c := range s.candidates {
		if c.EligibleFor(room, t) {
			out = append(out, c)
		}
	}
	return out, nil
}

var _ core.EngagementStore = (*fakeStore)(nil)

func newTestGateway(t *testing.T) (*Gateway, *session.Directory, *fakeStore) {
	t.Helper()
	st := newFakeStore()
	dir := session.NewDirectory()
	gw := NewGateway(NewRegistry(), NewRoomManager(), dir, st)
	gw.RetryBackoff = time.Millisecond
	return gw, dir, st
}

// connect wires a participant with a recording connection.
func connect(t *testing.T, gw *Gateway, id domain.ParticipantID, name string) (*fakeConn, core.MemberSession) {
	t.Helper()
	p, err := domain.NewParticipant(id, name)
	require.NoError(t, err)
	conn := &fakeConn{}
	sess := gw.Connect(p, conn, func() {})
	return conn, sess
}
