package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/loopwell/engage/internal/app"
	"github.com/loopwell/engage/internal/core"
	"github.com/loopwell/engage/internal/domain"
	"github.com/loopwell/engage/internal/metrics"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "ws").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Cfg.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump reads until the connection dies or goes idle past the
// configured interval without a ping. Either way the exit runs the
// disconnect cleanup exactly once for this physical connection.
func (ctl *Controller) readPump(ctx context.Context, pid domain.ParticipantID, sess core.MemberSession, c *wsConn) {
	defer func() {
		log.Info().Str("module", "ws").Str("pid", string(pid)).Msg("readPump closing")
		ctl.Gateway.DisconnectSession(pid, sess)
	}()

	c.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	if err := c.conn.SetReadDeadline(time.Now().Add(ctl.Cfg.IdleTimeout)); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "ws").Str("pid", string(pid)).Msg("unexpected close")
				}
				return
			}
			ctl.handleEvent(ctx, pid, c, data)
		}
	}
}

// handleEvent decodes one inbound frame and dispatches it. A malformed
// payload yields an error event back to the sender only; it never tears
// the connection down or reaches other participants.
func (ctl *Controller) handleEvent(ctx context.Context, pid domain.ParticipantID, c *wsConn, data []byte) {
	var env struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Debug().Err(err).Str("module", "ws").Str("pid", string(pid)).Msg("bad json")
		ctl.sendError(c, app.ReasonBadPayload, "invalid json")
		return
	}
	metrics.EventsIn.WithLabelValues(inboundLabel(env.Type)).Inc()

	switch env.Type {
	case "join_session":
		ctl.handleJoin(ctx, pid, c, env.Data)
	case "leave_session":
		ctl.handleLeave(pid, c, env.Data)
	case "session_comment":
		ctl.handleComment(ctx, pid, c, env.Data)
	case "session_reaction":
		ctl.handleReaction(ctx, pid, c, env.Data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "ws").Str("type", env.Type).Msg("unknown event type")
		ctl.sendError(c, app.ReasonBadPayload, "unknown event type")
	}
}

func (ctl *Controller) sendEvent(c *wsConn, ev app.Event) {
	frame, err := ev.Frame()
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("sendEvent marshal")
		return
	}
	_ = c.TrySend(frame)
}

func (ctl *Controller) sendError(c *wsConn, reason, detail string) {
	ctl.sendEvent(c, app.Event{Type: app.EvtError, Data: app.ErrorData{Reason: reason, Detail: detail}})
}

// inboundLabel collapses client-chosen event types outside the protocol
// into one label value, keeping the counter's cardinality bounded.
func inboundLabel(t string) string {
	switch t {
	case "join_session", "leave_session", "session_comment", "session_reaction", "ping":
		return t
	}
	return "unknown"
}

// reasonOf maps gateway errors onto wire reason codes. Anything outside
// the taxonomy is a validation problem with the sender's payload.
func reasonOf(err error) string {
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		return app.ReasonNotFound
	case errors.Is(err, core.ErrSessionNotActive):
		return app.ReasonNotActive
	case errors.Is(err, core.ErrNotAMember):
		return app.ReasonNotInSession
	case errors.Is(err, core.ErrTransientStore):
		return app.ReasonStoreError
	default:
		return app.ReasonBadPayload
	}
}
