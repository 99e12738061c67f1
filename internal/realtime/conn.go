package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/saransh000/hackathonpractice/internal/metrics"
)

const (
	writeWait = 10 * time.Second
	// Presence should reflect departures quickly, so the heartbeat is
	// shorter than gorilla's usual 60s example.
	pongWait       = 30 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// errSendBufferFull is returned by Send when a peer stops draining its
// socket; the hub drops that single delivery.
var errSendBufferFull = errors.New("send buffer full")

// wsConn adapts one gorilla websocket connection to the hub's Conn
// interface: a buffered outbound queue drained by a write pump, and a read
// pump feeding inbound frames to the router.
type wsConn struct {
	id     string
	ws     *websocket.Conn
	send   chan Event
	hub    *Hub
	router *Router
	log    zerolog.Logger
}

func newWSConn(ws *websocket.Conn, hub *Hub, router *Router, log zerolog.Logger) *wsConn {
	id := uuid.New().String()
	return &wsConn{
		id:     id,
		ws:     ws,
		send:   make(chan Event, sendBuffer),
		hub:    hub,
		router: router,
		log:    log.With().Str("component", "conn").Str("connId", id).Logger(),
	}
}

func (c *wsConn) ID() string { return c.id }

// Send enqueues an event for delivery. Never blocks: a full buffer means
// the peer is not keeping up and the event is dropped for this peer only.
func (c *wsConn) Send(ev Event) error {
	select {
	case c.send <- ev:
		return nil
	default:
		return errSendBufferFull
	}
}

func (c *wsConn) start() {
	metrics.ConnectionsActive.Inc()
	go c.writePump()
	go c.readPump()
}

func (c *wsConn) readPump() {
	defer func() {
		c.hub.Disconnect(c.id)
		c.ws.Close()
		metrics.ConnectionsActive.Dec()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("read error")
			}
			return
		}
		c.router.HandleFrame(c, data)
	}
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				c.log.Warn().Err(err).Msg("marshal error")
				continue
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Handler returns the HTTP handler that upgrades requests to websocket
// connections. Origin checking is left to the CORS layer in front of it;
// socket-level auth is limited to the identity carried by join-team.
func Handler(hub *Hub, router *Router, log zerolog.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("websocket upgrade failed")
			return
		}
		conn := newWSConn(ws, hub, router, log)
		conn.start()
	}
}
