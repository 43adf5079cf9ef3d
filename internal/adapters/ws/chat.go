package ws

import (
	"context"
	"encoding/json"

	"github.com/loopwell/engage/internal/app"
	"github.com/loopwell/engage/internal/domain"
)

func (ctl *Controller) handleComment(ctx context.Context, pid domain.ParticipantID, c *wsConn, data json.RawMessage) {
	var p struct {
		SessionID string `json:"session_id"`
		Body      string `json:"body"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" {
		ctl.sendError(c, app.ReasonBadPayload, "session_id required")
		return
	}

	if err := ctl.Gateway.Comment(ctx, pid, domain.RoomSlug(p.SessionID), p.Body); err != nil {
		ctl.sendError(c, reasonOf(err), err.Error())
	}
}

func (ctl *Controller) handleReaction(ctx context.Context, pid domain.ParticipantID, c *wsConn, data json.RawMessage) {
	var p struct {
		SessionID    string `json:"session_id"`
		ReactionType string `json:"reaction_type"`
		Weight       int64  `json:"weight"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" {
		ctl.sendError(c, app.ReasonBadPayload, "session_id required")
		return
	}

	err := ctl.Gateway.React(ctx, pid, domain.RoomSlug(p.SessionID), domain.ReactionType(p.ReactionType), p.Weight)
	if err != nil {
		ctl.sendError(c, reasonOf(err), err.Error())
	}
}
