package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/sensoryplay/portal-backend/internal/response"
	"github.com/sensoryplay/portal-backend/internal/service"
	ws "github.com/sensoryplay/portal-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// ClassReader loads the current state of a class.
type ClassReader interface {
	Get(ctx context.Context, id uuid.UUID) (*model.ClassView, error)
}

// AvailabilityFeed streams availability snapshots of one class.
type AvailabilityFeed interface {
	SubscribeAvailability(ctx context.Context, classID uuid.UUID) (<-chan model.Availability, func() error, error)
}

// WSHandler streams live seat availability of a class.
type WSHandler struct {
	classes  ClassReader
	feed     AvailabilityFeed
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(classes ClassReader, feed AvailabilityFeed, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		classes:  classes,
		feed:     feed,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// ClassAvailabilityStream godoc
// WS /ws/v1/classes/:id/availability
// Sends the current snapshot, then every enrollment change of the class.
// Answers {"action":"ping"} with {"event":"pong"}.
func (h *WSHandler) ClassAvailabilityStream(c *gin.Context) {
	classID, ok := paramID(c, "id")
	if !ok {
		return
	}

	// Subscribe before loading the snapshot so no enrollment change between the
	// two is lost. Updates carry the full counts.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	updates, closeFeed, err := h.feed.SubscribeAvailability(ctx, classID)
	if err != nil {
		h.log.Error().Err(err).Str("class_id", classID.String()).Msg("availability subscribe failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer closeFeed()

	class, err := h.classes.Get(ctx, classID)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrClassNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("class_id", classID.String()).Logger()
	wsLog.Debug().Msg("availability watcher connected")

	if err := ws.WriteAvailability(conn, model.NewAvailability(class.ID, class.Enrolled, class.Capacity)); err != nil {
		return
	}

	// The reader goroutine only reports pings; all writes happen in the loop below.
	pings := make(chan struct{}, 1)
	readErr := make(chan error, 1)
	go func() {
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				readErr <- err
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
				continue
			}
			wsLog.Debug().Str("action", string(msg.Action)).Msg("Unknown action")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-readErr:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case a, ok := <-updates:
			if !ok {
				ws.WriteError(conn, "availability feed closed")
				return
			}
			if err := ws.WriteAvailability(conn, a); err != nil {
				return
			}
		}
	}
}
