package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gringo-delivery/backend/internal/sse"
	"github.com/labstack/echo/v4"
)

const heartbeatInterval = 25 * time.Second

// EventsHandler streams server-sent events to connected dashboards and
// courier apps
type EventsHandler struct {
	hub *sse.Hub
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(hub *sse.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// RegisterEventRoutes registers the event-stream route
func (h *EventsHandler) RegisterEventRoutes(g *echo.Group) {
	g.GET("/events", h.StreamEvents)
}

// StreamEvents holds the connection open and forwards every event addressed
// to the authenticated Firebase identity. Heartbeat comments keep proxies
// from closing idle connections.
func (h *EventsHandler) StreamEvents(c echo.Context) error {
	firebaseUID, _ := c.Get("firebaseUID").(string)
	if firebaseUID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	events := h.hub.Subscribe(firebaseUID)
	defer h.hub.Unsubscribe(firebaseUID, events)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(event.Payload)
			if err != nil {
				continue
			}
			fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event.Name, payload)
			res.Flush()
		case <-heartbeat.C:
			fmt.Fprint(res, ": ping\n\n")
			res.Flush()
		}
	}
}
