// Package store is the durable side of the engagement core, backed by
// pebble. Comments and reaction events are append-only; the running
// per-(room, reaction type) totals are stored alongside the event log so
// a summary read never scans it.
package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/loopwell/engage/internal/core"
	"github.com/loopwell/engage/internal/domain"
)

// Key layout:
//
//	comment:<room>:<unix_nano_padded>-<seq>          chat message JSON
//	reaction:<room>:<type>:<unix_nano_padded>-<seq>  reaction event JSON
//	agg:<room>:<type>                                big-endian uint64 total
//	cand:<type>:<id>                                 candidate JSON
type Pebble struct {
	db *pebble.DB

	// aggMu serializes read-modify-write of the aggregate counters.
	aggMu sync.Mutex

	// seq reduces key collisions when multiple writes share the same
	// nanosecond timestamp.
	seq atomic.Uint64
}

func Open(path string) (*Pebble, error) {
	log.Info().Str("module", "store").Str("path", path).Msg("opening pebble db")
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}
	return &Pebble{db: db}, nil
}

func (s *Pebble) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Pebble) orderedKey(prefix string) string {
	ts := time.Now().UTC().UnixNano()
	return fmt.Sprintf("%s%020d-%06d", prefix, ts, s.seq.Add(1))
}

// AppendComment assigns the durable ID and timestamp, then appends the
// message under a sortable key so insertion order is iteration order.
func (s *Pebble) AppendComment(_ context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(msg)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("marshal comment: %w", err)
	}
	key := s.orderedKey("comment:" + string(msg.Room) + ":")
	if err := s.db.Set([]byte(key), data, pebble.Sync); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("append comment: %w", err)
	}
	return msg, nil
}

// RecentComments returns up to limit messages for the room, most recent
// last.
func (s *Pebble) RecentComments(_ context.Context, room domain.RoomSlug, limit int) ([]domain.ChatMessage, error) {
	prefix := []byte("comment:" + string(room) + ":")
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("recent comments iter: %w", err)
	}
	defer it.Close()

	var out []domain.ChatMessage
	for ok := it.Last(); ok && len(out) < limit; ok = it.Prev() {
		var msg domain.ChatMessage
		if err := json.Unmarshal(it.Value(), &msg); err != nil {
			return nil, fmt.Errorf("decode comment %q: %w", it.Key(), err)
		}
		out = append(out, msg)
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("recent comments scan: %w", err)
	}
	// walked newest-first; flip to most recent last
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// AppendReaction writes the event and bumps the durable aggregate. The
// counter update is a read-modify-write guarded by aggMu, so concurrent
// reactions against the same (room, type) never lose weight.
func (s *Pebble) AppendReaction(_ context.Context, ev domain.ReactionEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal reaction: %w", err)
	}
	evKey := s.orderedKey("reaction:" + string(ev.Room) + ":" + string(ev.Type) + ":")

	s.aggMu.Lock()
	defer s.aggMu.Unlock()

	if err := s.db.Set([]byte(evKey), data, pebble.Sync); err != nil {
		return fmt.Errorf("append reaction: %w", err)
	}
	aggKey := aggregateKey(ev.Room, ev.Type)
	total, err := s.readCounter(aggKey)
	if err != nil {
		return err
	}
	return s.writeCounter(aggKey, total+ev.Weight)
}

// Summary reports the running totals for every reaction type, including
// zeroes, in the fixed vocabulary order.
func (s *Pebble) Summary(_ context.Context, room domain.RoomSlug) ([]domain.ReactionCount, error) {
	out := make([]domain.ReactionCount, 0, len(domain.ReactionTypes))
	for _, t := range domain.ReactionTypes {
		total, err := s.readCounter(aggregateKey(room, t))
		if err != nil {
			return nil, err
		}
		out = append(out, domain.ReactionCount{Type: t, Total: total})
	}
	return out, nil
}

// ReactionEvents replays the raw event log for one (room, type) pair.
func (s *Pebble) ReactionEvents(room domain.RoomSlug, t domain.ReactionType) ([]domain.ReactionEvent, error) {
	prefix := []byte("reaction:" + string(room) + ":" + string(t) + ":")
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("reaction events iter: %w", err)
	}
	defer it.Close()

	var out []domain.ReactionEvent
	for ok := it.First(); ok; ok = it.Next() {
		var ev domain.ReactionEvent
		if err := json.Unmarshal(it.Value(), &ev); err != nil {
			return nil, fmt.Errorf("decode reaction %q: %w", it.Key(), err)
		}
		out = append(out, ev)
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("reaction events scan: %w", err)
	}
	return out, nil
}

func (s *Pebble) PutCandidate(_ context.Context, c domain.MotivationalCandidate) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal candidate: %w", err)
	}
	key := "cand:" + string(c.Type) + ":" + c.ID
	if err := s.db.Set([]byte(key), data, pebble.Sync); err != nil {
		return fmt.Errorf("put candidate: %w", err)
	}
	return nil
}

// CandidatesFor returns the active candidates whose type matches and
// whose room is the requested one or global.
func (s *Pebble) CandidatesFor(_ context.Context, room domain.RoomSlug, t domain.ReactionType) ([]domain.MotivationalCandidate, error) {
	prefix := []byte("cand:" + string(t) + ":")
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("candidates iter: %w", err)
	}
	defer it.Close()

	var out []domain.MotivationalCandidate
	for ok := it.First(); ok; ok = it.Next() {
		var c domain.MotivationalCandidate
		if err := json.Unmarshal(it.Value(), &c); err != nil {
			return nil, fmt.Errorf("decode candidate %q: %w", it.Key(), err)
		}
		if c.EligibleFor(room, t) {
			out = append(out, c)
		}
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("candidates scan: %w", err)
	}
	return out, nil
}

func aggregateKey(room domain.RoomSlug, t domain.ReactionType) []byte {
	return []byte("agg:" + string(room) + ":" + string(t))
}

func (s *Pebble) readCounter(key []byte) (int64, error) {
	v, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read counter %q: %w", key, err)
	}
	defer closer.Close()
	if len(v) != 8 {
		return 0, fmt.Errorf("counter %q has %d bytes", key, len(v))
	}
	return int64(binary.BigEndian.Uint64(v)), nil
}

func (s *Pebble) writeCounter(key []byte, total int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(total))
	if err := s.db.Set(key, buf[:], pebble.Sync); err != nil {
		return fmt.Errorf("write counter %q: %w", key, err)
	}
	return nil
}

// keyUpperBound returns the smallest key greater than every key with
// the given prefix.
func keyUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

var _ core.EngagementStore = (*Pebble)(nil)
