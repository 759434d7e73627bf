package websocket

import "github.com/sensoryplay/portal-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action of a client message.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError        Event = "error"
	EventAvailability Event = "availability"
	EventPong         Event = "pong"
)

// AvailabilityEvent carries the seat counts of a class. The first one is the
// snapshot taken on connect.
type AvailabilityEvent struct {
	Event Event `json:"event"`
	model.Availability
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
