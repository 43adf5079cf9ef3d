// Package ws is the websocket transport of the engagement core: one
// duplex connection per participant, tagged JSON events both ways.
package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/loopwell/engage/internal/app"
	"github.com/loopwell/engage/internal/config"
	"github.com/loopwell/engage/internal/core"
	"github.com/loopwell/engage/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Gateway *app.Gateway
	Cfg     *config.Config
}

func NewController(gw *app.Gateway, cfg *config.Config) *Controller {
	return &Controller{Gateway: gw, Cfg: cfg}
}

// wsConn adapts one gorilla connection to core.EventConn. Sends go
// through a bounded channel; a full buffer is reported as backpressure
// and never blocks the sender.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleEngage upgrades the request and hands the connection to the
// gateway. Identity comes from the platform cookie; visitors without
// one get a throwaway anonymous identity.
func (ctl *Controller) HandleEngage(ctx context.Context, c *gin.Context) {
	pid := domain.ParticipantID(c.GetString("client_token"))
	name := c.Query("name")
	if len(name) > domain.MaxDisplayNameLen {
		name = name[:domain.MaxDisplayNameLen]
	}

	p, err := domain.NewParticipant(pid, name)
	if err != nil {
		p = domain.NewAnonymousParticipant()
	}
	log.Info().Str("module", "ws").Str("pid", string(p.ID)).Msg("new WS connection")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("ws upgrade")
		return
	}

	wc := &wsConn{
		conn: conn,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}

	ctx, cancel := context.WithCancel(ctx)
	sess := ctl.Gateway.Connect(p, wc, cancel)

	go ctl.writePump(ctx, wc)
	go ctl.readPump(ctx, p.ID, sess, wc)
}
