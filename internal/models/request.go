package models

import (
	"fmt"
	"time"
)

// SongRequest records a submitted query and the session it spawned.
type SongRequest struct {
	id        string
	sequence  int
	sessionID string
	username  string
	query     string
	videoID   string
	title     string
	createdAt time.Time
	updatedAt time.Time
}

// NewSongRequest creates a [SongRequest] stamped with the current time. The ID is assigned on insert.
func NewSongRequest(sequence int, sessionID, username, query string, details SongDetails) *SongRequest {
	now := time.Now().UTC()
	return &SongRequest{
		sequence:  sequence,
		sessionID: sessionID,
		username:  username,
		query:     query,
		videoID:   details.VideoID,
		title:     details.Title,
		createdAt: now,
		updatedAt: now,
	}
}

// RestoreSongRequest rebuilds a [SongRequest] from stored columns.
func RestoreSongRequest(id string, sequence int, sessionID, username, query, videoID, title string, createdAt, updatedAt time.Time) *SongRequest {
	return &SongRequest{
		id:        id,
		sequence:  sequence,
		sessionID: sessionID,
		username:  username,
		query:     query,
		videoID:   videoID,
		title:     title,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (r *SongRequest) ID() string           { return r.id }
func (r *SongRequest) Sequence() int        { return r.sequence }
func (r *SongRequest) SessionID() string    { return r.sessionID }
func (r *SongRequest) Username() string     { return r.username }
func (r *SongRequest) Query() string        { return r.query }
func (r *SongRequest) VideoID() string      { return r.videoID }
func (r *SongRequest) Title() string        { return r.title }
func (r *SongRequest) CreatedAt() time.Time { return r.createdAt }
func (r *SongRequest) UpdatedAt() time.Time { return r.updatedAt }

func (r *SongRequest) SetID(id string)           { r.id = id }
func (r *SongRequest) SetSequence(sequence int)  { r.sequence = sequence }
func (r *SongRequest) SetTitle(title string)     { r.title = title }
func (r *SongRequest) SetVideoID(videoID string) { r.videoID = videoID }
func (r *SongRequest) SetUpdatedAt(t time.Time)  { r.updatedAt = t }

// Validate checks required fields.
func (r *SongRequest) Validate() error {
	if r.sessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	if r.username == "" {
		return fmt.Errorf("username is required")
	}
	if r.query == "" {
		return fmt.Errorf("query is required")
	}
	return nil
}
