package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/loopwell/engage/internal/domain"
)

// Comment persists a chat message and broadcasts it with its durable ID
// to every member, sender included. The sender's UI reconciles against
// the durable copy instead of an optimistic local echo.
func (g *Gateway) Comment(ctx context.Context, pid domain.ParticipantID, slug domain.RoomSlug, body string) error {
	room, err := g.memberRoom(pid, slug)
	if err != nil {
		return err
	}
	msg, err := domain.NewChatMessage(slug, pid, body)
	if err != nil {
		return err
	}

	var persisted domain.ChatMessage
	if err := g.withRetry(ctx, "append comment", func() error {
		var e error
		persisted, e = g.Store.AppendComment(ctx, msg)
		return e
	}); err != nil {
		return err
	}

	g.broadcast(room, "", Event{Type: EvtNewComment, Data: NewCommentData{
		Session: slug,
		Comment: persisted,
	}})
	return nil
}

// React persists the reaction event, recomputes the room's full summary
// and broadcasts it, then runs motivational selection. The summary and a
// following motivation event reach each recipient in that causal order
// because both go through the same per-connection FIFO.
func (g *Gateway) React(ctx context.Context, pid domain.ParticipantID, slug domain.RoomSlug, t domain.ReactionType, weight int64) error {
	room, err := g.memberRoom(pid, slug)
	if err != nil {
		return err
	}
	ev, err := domain.NewReactionEvent(slug, pid, t, weight)
	if err != nil {
		return err
	}

	if err := g.withRetry(ctx, "append reaction", func() error {
		return g.Store.AppendReaction(ctx, ev)
	}); err != nil {
		return err
	}

	var summary []domain.ReactionCount
	if err := g.withRetry(ctx, "reaction summary", func() error {
		var e error
		summary, e = g.Store.Summary(ctx, slug)
		return e
	}); err != nil {
		return err
	}

	g.broadcast(room, "", Event{Type: EvtCommentReaction, Data: CommentReactionData{
		Session: slug,
		Summary: summary,
	}})

	pool, err := g.Store.CandidatesFor(ctx, slug, ev.Type)
	if err != nil {
		// No overlay is acceptable; the reaction itself already landed.
		log.Warn().Err(err).Str("module", "app.gateway").Str("room", string(slug)).Msg("candidate lookup failed")
		return nil
	}
	if c := g.Selector.Pick(pool, slug, ev.Type); c != nil {
		g.broadcast(room, "", Event{Type: EvtMotivation, Data: MotivationData{
			Session: slug,
			Type:    c.Type,
			Text:    c.Text,
		}})
	}
	return nil
}
