// package services defines the collaborator interfaces used by discovery
//
// YouTube Music (via proxy), yt-dlp, ytradio server (via HTTP)
package services

import (
	"context"

	"github.com/desertthunder/ytradio/internal/models"
)

// MetadataProvider looks up songs, artwork and related tracks.
type MetadataProvider interface {
	// Search returns up to limit candidates matching query, restricted by filter (e.g. "songs").
	Search(ctx context.Context, query, filter string, limit int) ([]models.Candidate, error)

	// GetSong retrieves per-track details, including the full thumbnail set.
	GetSong(ctx context.Context, videoID string) (*models.TrackDetails, error)

	// GetWatchPlaylist returns the tracks the provider would queue after videoID, in provider order.
	GetWatchPlaylist(ctx context.Context, videoID string, limit int) ([]models.Candidate, error)

	// Name returns the name of the provider (e.g., "YouTube Music")
	Name() string
}

// MediaResolver turns a video ID into a directly playable media URL.
type MediaResolver interface {
	Resolve(ctx context.Context, videoID string) (string, error)
}
