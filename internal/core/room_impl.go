package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/loopwell/engage/internal/domain"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	room    *domain.Room
	mu      sync.RWMutex
	members map[domain.ParticipantID]MemberSession
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room:    room,
		members: make(map[domain.ParticipantID]MemberSession),
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) Contains(pid domain.ParticipantID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[pid]
	return ok
}

// AddMember is idempotent; joining twice is a no-op.
func (r *roomImpl) AddMember(pid domain.ParticipantID, ms MemberSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[pid]; ok {
		return
	}
	r.members[pid] = ms
	log.Info().Str("module", "core.room").Str("room", string(r.room.Slug)).Str("pid", string(pid)).Msg("member added")
}

func (r *roomImpl) RemoveMember(pid domain.ParticipantID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[pid]; !ok {
		return
	}
	delete(r.members, pid)
	log.Info().Str("module", "core.room").Str("room", string(r.room.Slug)).Str("pid", string(pid)).Msg("member removed")
}

func (r *roomImpl) Broadcast(excluding domain.ParticipantID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for pid, m := range r.members {
		if pid == excluding {
			continue
		}
		if err := m.Conn().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.room.Slug)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberDTO, 0, len(r.members))
	for _, ms := range r.members {
		p := ms.Meta()
		out = append(out, MemberDTO{ID: p.ID, DisplayName: p.DisplayName})
	}
	return out
}
