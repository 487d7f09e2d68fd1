package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ytradio/internal/sessions"
	"github.com/desertthunder/ytradio/internal/shared"
)

const (
	msgInvalidSession = "Invalid session ID"
	msgSessionBusy    = "Session already has an active stream"
	keepAliveComment  = "keepalive"
)

// StreamHandler relays a session's events to the client as Server-Sent Events.
type StreamHandler struct {
	server *Server
}

func (h *StreamHandler) Routes() []string {
	return []string{"GET /stream_related_songs/{session_id}"}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s := h.server
	id := r.PathValue("session_id")

	session, ok := s.registry.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, msgInvalidSession)
		return
	}

	release, err := session.Attach()
	if err != nil {
		if errors.Is(err, shared.ErrSessionBusy) {
			writeError(w, http.StatusConflict, msgSessionBusy)
			return
		}
		writeError(w, statusFor(err), err.Error())
		return
	}
	defer release()

	setStreamHeaders(w)
	w.WriteHeader(http.StatusOK)

	sse := NewSSEWriter(w)
	if err := sse.Flush(); err != nil {
		return
	}

	logger := shared.WithLogger(s.logger, "session_id", id)
	s.relay(r.Context(), sse, session, logger)
}

// relay drains session until its terminal event, a write failure, or ctx is done.
func (s *Server) relay(ctx context.Context, sse *SSEWriter, session *sessions.Session, logger *log.Logger) {
	timer := time.NewTimer(s.keepAlive)
	defer timer.Stop()

	delivered := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("client disconnected", "delivered", delivered)
			return

		case <-timer.C:
			if err := sse.WriteComment(keepAliveComment); err != nil {
				logger.Warn("keep-alive write failed", "error", err)
				return
			}
			if err := sse.Flush(); err != nil {
				logger.Warn("keep-alive flush failed", "error", err)
				return
			}
			s.metrics.KeepAlives.Inc()
			timer.Reset(s.keepAlive)

		case event := <-session.Events():
			if event.Terminal() {
				s.registry.Remove(session.ID)
			}

			err := sse.WriteEvent(string(event.Kind), event.Payload())
			if err == nil {
				err = sse.Flush()
			}
			if err != nil {
				logger.Warn("event write failed", "event", event.Kind, "error", err)
				return
			}

			s.metrics.Events.WithLabelValues(string(event.Kind)).Inc()
			if event.Terminal() {
				logger.Info("stream closed", "event", event.Kind, "delivered", delivered)
				return
			}
			delivered++
			timer.Reset(s.keepAlive)
		}
	}
}
