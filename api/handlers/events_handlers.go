package handlers

import (
	"net/http"
	"strconv"

	"dispatch-console/core/auth"
	"dispatch-console/core/realtime"
	"dispatch-console/core/utils"
)

type EventsHandler struct {
	hub    *realtime.Hub
	logger *utils.Logger
}

func NewEventsHandler(hub *realtime.Hub, logger *utils.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, logger: logger}
}

// Stream is the SSE endpoint the console subscribes to for live report
// changes. It holds the connection open until the client goes away.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	sess := auth.FromContext(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := h.hub.Subscribe(strconv.FormatInt(sess.UserID, 10))
	defer h.hub.Unsubscribe(client)

	for {
		select {
		case ev, open := <-client.Send:
			if !open {
				return
			}
			if _, err := w.Write(ev.Encode()); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
