package realtime

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Router translates inbound client frames into hub operations. It never
// validates the identity inside a frame — userId and userName come from the
// authenticated session and are passed through as-is.
type Router struct {
	hub *Hub
	log zerolog.Logger
}

// NewRouter creates a router bound to a hub.
func NewRouter(hub *Hub, log zerolog.Logger) *Router {
	return &Router{
		hub: hub,
		log: log.With().Str("component", "router").Logger(),
	}
}

// HandleFrame processes one raw frame from a connection. Malformed frames
// are dropped and logged; the dispatch loop must never die on bad input.
func (r *Router) HandleFrame(c Conn, data []byte) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		r.log.Warn().Str("connId", c.ID()).Err(err).Msg("invalid frame")
		return
	}

	switch ev.Type {
	case EventJoinTeam:
		var p JoinPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.TeamID == "" || p.UserID == "" {
			r.drop(c, ev.Type, err)
			return
		}
		r.hub.Join(c, p.TeamID, Participant{
			UserID:   p.UserID,
			UserName: p.UserName,
			JoinedAt: time.Now().UTC(),
		})

	case EventLeaveTeam:
		var p JoinPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.TeamID == "" {
			r.drop(c, ev.Type, err)
			return
		}
		r.hub.Leave(c.ID(), p.TeamID)

	case EventTaskUpdate:
		var p TaskUpdatePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.TeamID == "" {
			r.drop(c, ev.Type, err)
			return
		}
		out, err := NewEvent(EventTaskUpdated, RoomKey(p.TeamID), TaskUpdatedPayload{
			Task:      p.Task,
			Action:    p.Action,
			Timestamp: time.Now().UTC(),
		})
		if err != nil {
			r.drop(c, ev.Type, err)
			return
		}
		r.hub.Broadcast(p.TeamID, out, c.ID())

	case EventColumnUpdate:
		var p ColumnUpdatePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.TeamID == "" {
			r.drop(c, ev.Type, err)
			return
		}
		out, err := NewEvent(EventColumnsUpdated, RoomKey(p.TeamID), ColumnsUpdatedPayload{
			Columns:   p.Columns,
			Timestamp: time.Now().UTC(),
		})
		if err != nil {
			r.drop(c, ev.Type, err)
			return
		}
		r.hub.Broadcast(p.TeamID, out, c.ID())

	case EventUserTyping:
		var p TypingPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.TeamID == "" {
			r.drop(c, ev.Type, err)
			return
		}
		// Advisory only: forwarded, never retained
		out, err := NewEvent(EventTypingUpdate, RoomKey(p.TeamID), p)
		if err != nil {
			r.drop(c, ev.Type, err)
			return
		}
		r.hub.Broadcast(p.TeamID, out, c.ID())

	default:
		r.log.Warn().Str("connId", c.ID()).Str("type", ev.Type).Msg("unknown event type")
	}
}

func (r *Router) drop(c Conn, eventType string, err error) {
	r.log.Warn().Str("connId", c.ID()).Str("type", eventType).Err(err).Msg("dropped malformed event")
}
