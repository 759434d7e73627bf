package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sensoryplay/portal-backend/internal/model"
)

const (
	writeWait = 10 * time.Second
	// ReadWait closes idle connections; clients keep alive with ping actions.
	ReadWait = 5 * time.Minute
)

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// WriteAvailability sends an availability event.
func WriteAvailability(conn *websocket.Conn, a model.Availability) error {
	return WriteTyped(conn, AvailabilityEvent{Event: EventAvailability, Availability: a})
}

// ReadJSON reads and decodes a message into the provided structure
// under the idle read deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(ReadWait))
	return conn.ReadJSON(v)
}
