// Package ws is the transport shell: it upgrades sockets, pumps frames and
// translates wire envelopes into session-layer calls. No room logic here.
package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/nonsequitr/relay/internal/app"
	"github.com/nonsequitr/relay/internal/config"
	"github.com/nonsequitr/relay/internal/domain"
)

const sendBuffer = 32

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Sessions *app.SessionManager
	Hub      *Hub
	Cfg      *config.Config
}

func NewController(sessions *app.SessionManager, hub *Hub, cfg *config.Config) *Controller {
	return &Controller{Sessions: sessions, Hub: hub, Cfg: cfg}
}

// HandleWS upgrades the request and runs the connection until it drops.
// Each socket gets a fresh connection id; there is no resume across drops.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade")
		return
	}

	id := domain.ConnectionID(uuid.NewString())
	log.Info().Str("module", "ws").Str("id", string(id)).Msg("connected")

	wc := newWSConn(conn, sendBuffer)
	ctl.Hub.Register(id, wc)

	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, wc)
	go func() {
		defer cancel()
		ctl.readPump(ctx, id, wc)
		// Socket is gone: unsubscribe first so the leaver is not in the
		// participant-left audience, then let the session layer clean up.
		ctl.Hub.Unregister(id)
		ctl.Sessions.Disconnect(id)
		log.Info().Str("module", "ws").Str("id", string(id)).Msg("disconnected")
	}()
}
