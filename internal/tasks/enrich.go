package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/services"
	"github.com/desertthunder/ytradio/internal/shared"
)

// Enricher resolves artwork and a playable media URL for candidates.
type Enricher struct {
	metadata services.MetadataProvider
	media    services.MediaResolver
	logger   *log.Logger
}

// NewEnricher creates an [Enricher]. Rate limiting, if any, is applied by wrapping metadata with [RateLimited].
func NewEnricher(metadata services.MetadataProvider, media services.MediaResolver, logger *log.Logger) *Enricher {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Enricher{metadata: metadata, media: media, logger: logger}
}

// Enrich fills in artwork, media URL and featured artists for candidate.
//
// It fails only for candidates missing a title, ID or artists. Artwork and media
// failures degrade to [models.NoAlbumArt] and a nil AudioURL respectively.
func (e *Enricher) Enrich(ctx context.Context, candidate models.Candidate) (models.EnrichedSong, error) {
	if !candidate.Valid() {
		return models.EnrichedSong{}, fmt.Errorf("%w: %q", shared.ErrInvalidCandidate, candidate.VideoID)
	}

	art, audio := e.resolve(ctx, candidate.VideoID)

	song := models.EnrichedSong{
		Title:       candidate.Title,
		Artists:     append([]string(nil), candidate.Artists...),
		VideoID:     candidate.VideoID,
		AlbumArtURL: art,
		Featuring:   ExtractFeatured(candidate.Title),
	}
	if audio != "" {
		song.AudioURL = &audio
	}
	return song, nil
}

// Details builds the summary returned to a submitting client for the seed candidate.
func (e *Enricher) Details(ctx context.Context, candidate models.Candidate) models.SongDetails {
	art, audio := e.resolve(ctx, candidate.VideoID)
	if audio == "" {
		audio = models.NoAudioURL
	}
	return models.SongDetails{
		Title:    candidate.Title,
		Artists:  shared.JoinArtists(candidate.Artists),
		AlbumArt: art,
		AudioURL: audio,
		VideoID:  candidate.VideoID,
	}
}

// resolve runs the artwork lookup and media resolution concurrently.
func (e *Enricher) resolve(ctx context.Context, videoID string) (art, audio string) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer e.recoverStage("artwork", videoID)
		art = e.artwork(ctx, videoID)
	}()

	go func() {
		defer wg.Done()
		defer e.recoverStage("media", videoID)
		audio = e.audio(ctx, videoID)
	}()

	wg.Wait()
	if art == "" {
		art = models.NoAlbumArt
	}
	return art, audio
}

func (e *Enricher) recoverStage(stage, videoID string) {
	if r := recover(); r != nil {
		e.logger.Error("enrichment panicked", "stage", stage, "video_id", videoID, "panic", r)
	}
}

func (e *Enricher) artwork(ctx context.Context, videoID string) string {
	details, err := e.metadata.GetSong(ctx, videoID)
	if err != nil {
		e.logger.Warn("artwork lookup failed", "video_id", videoID, "error", err)
		return models.NoAlbumArt
	}
	if details == nil {
		return models.NoAlbumArt
	}

	best, ok := BestThumbnail(details.Thumbnails)
	if !ok {
		return models.NoAlbumArt
	}
	return best.URL
}

func (e *Enricher) audio(ctx context.Context, videoID string) string {
	if e.media == nil {
		return ""
	}
	url, err := e.media.Resolve(ctx, videoID)
	if err != nil {
		e.logger.Error("media resolution failed", "video_id", videoID, "error", err)
		return ""
	}
	return url
}

// BestThumbnail returns the widest thumbnail with a URL, breaking ties by height.
func BestThumbnail(thumbnails []models.Thumbnail) (models.Thumbnail, bool) {
	var (
		best  models.Thumbnail
		found bool
	)
	for _, t := range thumbnails {
		if t.URL == "" {
			continue
		}
		if !found || t.Width > best.Width || (t.Width == best.Width && t.Height > best.Height) {
			best, found = t, true
		}
	}
	return best, found
}
