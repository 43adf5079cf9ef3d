package ws

import (
	"time"

	"github.com/loopwell/engage/internal/app"
)

// handlePing refreshes the idle deadline and answers with a pong.
// A connection that stops pinging past the idle timeout is treated as
// disconnected by the read pump.
func (ctl *Controller) handlePing(c *wsConn) {
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.Cfg.IdleTimeout))
	ctl.sendEvent(c, app.Event{Type: app.EvtPong})
}
