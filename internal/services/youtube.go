// YouTube Music [MetadataProvider] implementation
//
// Communicates with the FastAPI proxy server running on port 8080.
// The proxy wraps the ytmusicapi Python library for YouTube Music operations.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/shared"
)

const defaultYTBaseURL string = "http://localhost:8080"

// YouTubeImage represents an image/thumbnail from YouTube Music.
type YouTubeImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// YouTubeArtist represents an artist in YouTube Music responses.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeTrack represents a track in search and watch playlist responses.
//
// Search results carry "thumbnails" while watch playlist tracks carry "thumbnail".
type YouTubeTrack struct {
	VideoID    string          `json:"videoId"`
	Title      string          `json:"title"`
	Artists    []YouTubeArtist `json:"artists"`
	Thumbnails []YouTubeImage  `json:"thumbnails"`
	Thumbnail  []YouTubeImage  `json:"thumbnail"`
}

// Candidate converts the track into a [models.Candidate], dropping unnamed artists.
func (t YouTubeTrack) Candidate() models.Candidate {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a.Name != "" {
			artists = append(artists, a.Name)
		}
	}

	images := t.Thumbnails
	if len(images) == 0 {
		images = t.Thumbnail
	}

	return models.Candidate{
		VideoID:    t.VideoID,
		Title:      t.Title,
		Artists:    artists,
		Thumbnails: toThumbnails(images),
	}
}

// YouTubeSong is the get_song response shape.
type YouTubeSong struct {
	VideoDetails struct {
		VideoID       string `json:"videoId"`
		Title         string `json:"title"`
		LengthSeconds string `json:"lengthSeconds"`
		Thumbnail     struct {
			Thumbnails []YouTubeImage `json:"thumbnails"`
		} `json:"thumbnail"`
	} `json:"videoDetails"`
}

func toThumbnails(images []YouTubeImage) []models.Thumbnail {
	thumbs := make([]models.Thumbnail, len(images))
	for i, img := range images {
		thumbs[i] = models.Thumbnail{URL: img.URL, Width: img.Width, Height: img.Height}
	}
	return thumbs
}

// YouTubeService implements [MetadataProvider] for YouTube Music via proxy.
type YouTubeService struct {
	baseURL    string
	httpClient *http.Client
}

// NewYouTubeService creates a new YouTube Music service instance.
func NewYouTubeService(baseURL string, client *http.Client) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &YouTubeService{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube Music"
}

func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, result any) error {
	apiURL := y.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("%w: youtube music API error (status %d): %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("%w: youtube music API error: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %w", shared.ErrAPIRequest, err)
		}
	}

	return nil
}

// Search returns up to limit tracks matching query.
//
// Calls GET /api/search?q={query}&filter={filter}&limit={limit} on the proxy.
func (y *YouTubeService) Search(ctx context.Context, query, filter string, limit int) ([]models.Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	if filter != "" {
		params.Set("filter", filter)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var results []YouTubeTrack
	if err := y.doRequest(ctx, http.MethodGet, "/api/search?"+params.Encode(), &results); err != nil {
		return nil, err
	}

	// ytmusicapi treats limit as a lower bound
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	candidates := make([]models.Candidate, len(results))
	for i, r := range results {
		candidates[i] = r.Candidate()
	}
	return candidates, nil
}

// GetSong retrieves track details and the full thumbnail set.
//
// Calls GET /api/songs/{id} on the proxy.
func (y *YouTubeService) GetSong(ctx context.Context, videoID string) (*models.TrackDetails, error) {
	if videoID == "" {
		return nil, fmt.Errorf("%w: video ID is required", shared.ErrMissingArgument)
	}

	var song YouTubeSong
	endpoint := fmt.Sprintf("/api/songs/%s", url.PathEscape(videoID))
	if err := y.doRequest(ctx, http.MethodGet, endpoint, &song); err != nil {
		return nil, err
	}

	details := song.VideoDetails
	length, _ := strconv.Atoi(details.LengthSeconds)
	id := details.VideoID
	if id == "" {
		id = videoID
	}

	return &models.TrackDetails{
		VideoID:       id,
		Title:         details.Title,
		LengthSeconds: length,
		Thumbnails:    toThumbnails(details.Thumbnail.Thumbnails),
	}, nil
}

// GetWatchPlaylist returns the related tracks for videoID in provider order.
//
// Calls GET /api/watch?videoId={id}&limit={limit} on the proxy.
func (y *YouTubeService) GetWatchPlaylist(ctx context.Context, videoID string, limit int) ([]models.Candidate, error) {
	if videoID == "" {
		return nil, fmt.Errorf("%w: video ID is required", shared.ErrMissingArgument)
	}

	params := url.Values{}
	params.Set("videoId", videoID)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var playlist struct {
		Tracks []YouTubeTrack `json:"tracks"`
	}
	if err := y.doRequest(ctx, http.MethodGet, "/api/watch?"+params.Encode(), &playlist); err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, len(playlist.Tracks))
	for i, t := range playlist.Tracks {
		candidates[i] = t.Candidate()
	}
	return candidates, nil
}
