package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/retroboard/relay/internal/app"
	"github.com/retroboard/relay/internal/config"
	"github.com/retroboard/relay/internal/core"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller owns the websocket endpoint: upgrades, pumps, and the
// inbound event dispatch into the session manager.
type Controller struct {
	cfg      *config.Config
	sessions *app.Manager
	registry *app.Registry
	limiter  *RateLimiter
}

func NewController(cfg *config.Config, sessions *app.Manager, registry *app.Registry) *Controller {
	return &Controller{
		cfg:      cfg,
		sessions: sessions,
		registry: registry,
		limiter:  NewRateLimiter(cfg.RateLimit, cfg.RateInterval),
	}
}

func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token"))
	log.Info().Str("module", "ws").Str("sid", string(sid)).Msg("new connection")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade")
		return
	}

	wc := newConn(conn, ctl.cfg.SendBuffer)
	ctl.registry.Bind(sid, wc)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, wc)
	go ctl.readPump(ctx, cancel, sid, wc)
}

func (ctl *Controller) writePump(ctx context.Context, c *Conn) {
	ping := time.NewTicker(ctl.cfg.PingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := c.ws.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout)); err != nil {
				return
			}
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.ws.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump set deadline")
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, sid core.SessionID, c *Conn) {
	defer func() {
		cancel()
		// Disconnect tears down memberships and unbinds before the
		// transport resources go away.
		ctl.sessions.Disconnect(sid)
		c.Close()
		log.Info().Str("module", "ws").Str("sid", string(sid)).Msg("connection closed")
	}()

	c.ws.SetReadLimit(ctl.cfg.ReadLimit)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("read error")
				}
				return
			}
			ctl.dispatch(sid, c, data)
		}
	}
}
