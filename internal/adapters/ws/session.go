package ws

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/loopwell/engage/internal/app"
	"github.com/loopwell/engage/internal/domain"
)

func (ctl *Controller) handleJoin(ctx context.Context, pid domain.ParticipantID, c *wsConn, data json.RawMessage) {
	var p struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" {
		log.Debug().Str("module", "ws").Str("pid", string(pid)).Msg("bad join payload")
		ctl.sendError(c, app.ReasonBadPayload, "session_id required")
		return
	}

	if err := ctl.Gateway.Join(ctx, pid, domain.RoomSlug(p.SessionID)); err != nil {
		log.Info().Err(err).Str("module", "ws").Str("pid", string(pid)).Str("session", p.SessionID).Msg("join rejected")
		ctl.sendError(c, reasonOf(err), err.Error())
	}
}

func (ctl *Controller) handleLeave(pid domain.ParticipantID, c *wsConn, data json.RawMessage) {
	var p struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" {
		ctl.sendError(c, app.ReasonBadPayload, "session_id required")
		return
	}

	if err := ctl.Gateway.Leave(pid, domain.RoomSlug(p.SessionID)); err != nil {
		ctl.sendError(c, reasonOf(err), err.Error())
	}
}
