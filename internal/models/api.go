package models

// SubmitRequest is the body of POST /get_song.
type SubmitRequest struct {
	SongName  string `json:"song_name"`
	Username  string `json:"username"`
	SessionID string `json:"session_id,omitempty"`
}

// SubmitResponse is returned when a seed song was found and discovery was started.
type SubmitResponse struct {
	SongDetails SongDetails `json:"song_details"`
	Message     string      `json:"message"`
	SessionID   string      `json:"session_id"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}
