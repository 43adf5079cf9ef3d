package app

import (
	"math/rand/v2"

	"github.com/loopwell/engage/internal/domain"
)

// Selector draws one motivational candidate with probability
// proportional to its weight among the eligible pool.
type Selector struct {
	// intN is swappable for deterministic tests.
	intN func(int64) int64
}

func NewSelector() *Selector {
	return &Selector{intN: rand.Int64N}
}

// Pick returns nil when no candidate is eligible; callers treat that as
// "no overlay", never as an error.
func (s *Selector) Pick(pool []domain.MotivationalCandidate, room domain.RoomSlug, t domain.ReactionType) *domain.MotivationalCandidate {
	var total int64
	eligible := pool[:0:0]
	for _, c := range pool {
		if !c.EligibleFor(room, t) {
			continue
		}
		eligible = append(eligible, c)
		total += c.Weight
	}
	if total == 0 {
		return nil
	}
	ticket := s.intN(total)
	for i := range eligible {
		ticket -= eligible[i].Weight
		if ticket < 0 {
			return &eligible[i]
		}
	}
	return &eligible[len(eligible)-1]
}
