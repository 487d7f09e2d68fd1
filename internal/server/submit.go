package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/shared"
)

const (
	msgMissingFields = "Missing required fields"
	msgNoResults     = "No results found"
	msgSubmitted     = "Song details sent successfully. Connect to /stream_related_songs/%s to receive related songs."
)

// SubmitHandler looks up a seed song and starts discovery of its related songs.
type SubmitHandler struct {
	server *Server
}

func (h *SubmitHandler) Routes() []string {
	return []string{"POST /get_song"}
}

func (h *SubmitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s := h.server

	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	songName := strings.TrimSpace(req.SongName)
	username := strings.TrimSpace(req.Username)
	if songName == "" || username == "" {
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	details, err := s.discovery.Lookup(r.Context(), songName)
	if err != nil {
		status := statusFor(err)
		s.logger.Warn("seed lookup failed", "song_name", songName, "status", status, "error", err)
		if errors.Is(err, shared.ErrTrackNotFound) {
			writeError(w, http.StatusNotFound, msgNoResults)
			return
		}
		writeError(w, status, err.Error())
		return
	}
	details.RequestedBy = username

	session := s.Launch(r.Context(), req.SessionID, details.DiscoveryQuery())
	logger := shared.WithLogger(s.logger, "session_id", session.ID)
	logger.Info("discovery started", "video_id", details.VideoID, "requested_by", username)

	if s.history != nil {
		if _, err := s.history.Record(session.ID, username, songName, *details); err != nil {
			logger.Error("failed to record request", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, models.SubmitResponse{
		SongDetails: *details,
		Message:     fmt.Sprintf(msgSubmitted, session.ID),
		SessionID:   session.ID,
	})
}
