package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/streaming"
	"honeypot-lab/pkg/logger"
)

// EventsHandler streams live session events to monitoring clients
type EventsHandler struct {
	publisher *streaming.NATSPublisher
	logger    *logger.Logger
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(pub *streaming.NATSPublisher, log *logger.Logger) *EventsHandler {
	return &EventsHandler{
		publisher: pub,
		logger:    log.WithComponent("events-handler"),
	}
}

// Stream handles GET /api/v1/events - server-sent events feed of
// session activity, filtered by query parameters
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil || !h.publisher.IsConnected() {
		http.Error(w, "Event stream unavailable", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub := subscriptionFromQuery(r)
	ctx := r.Context()

	events, err := h.publisher.Subscribe(ctx, sub)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to subscribe to events")
		http.Error(w, "Subscription failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Warn().Err(err).Msg("failed to marshal event")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}

// subscriptionFromQuery maps filter query parameters onto subscription
// preferences. Repeated parameters accumulate.
func subscriptionFromQuery(r *http.Request) *streaming.Subscription {
	q := r.URL.Query()
	sub := &streaming.Subscription{
		ScamTypes: q["scam_type"],
	}

	for _, t := range q["type"] {
		sub.Types = append(sub.Types, streaming.EventType(t))
	}
	for _, p := range q["phase"] {
		sub.Phases = append(sub.Phases, models.Phase(p))
	}
	if v := q.Get("min_confidence"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			sub.MinConfidence = f
		}
	}
	return sub
}
