package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/dal"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/service"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/response"
)

const keepAliveInterval = 30 * time.Second

// EventsHandler streams collection-change notifications to browsers over
// server-sent events, so open pages can refetch without polling.
type EventsHandler struct {
	dal     *dal.DAL
	metrics *service.MetricsService
}

// NewEventsHandler constructs an events handler. metrics may be nil.
func NewEventsHandler(d *dal.DAL, metrics *service.MetricsService) *EventsHandler {
	return &EventsHandler{dal: d, metrics: metrics}
}

// Stream godoc
// @Summary Server-sent events for collection changes
// @Tags Events
// @Produce text/event-stream
// @Success 200
// @Router /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	// a full buffer drops events rather than blocking the notifier; clients
	// treat any event as a refetch hint, so losing duplicates is harmless
	events := make(chan string, 16)
	unsub, err := h.dal.Subscribe(c.Request.Context(), func(collection string) {
		h.metrics.RecordChangeEvent(collection)
		select {
		case events <- collection:
		default:
		}
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	defer unsub()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case collection := <-events:
			c.SSEvent("change", gin.H{"collection": collection})
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
