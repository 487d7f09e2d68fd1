package models

const (
	NoAlbumArt = "No album art found" // Artwork sentinel used when no thumbnail could be resolved
	NoAudioURL = "No audio URL found" // Audio sentinel used in [SongDetails] when resolution failed
)

// Thumbnail is a single artwork rendition.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Candidate is an unfiltered track record returned by a search or related-tracks lookup.
type Candidate struct {
	VideoID    string
	Title      string
	Artists    []string
	Thumbnails []Thumbnail
}

// Valid reports whether the candidate carries the fields required for enrichment.
func (c Candidate) Valid() bool {
	return c.VideoID != "" && c.Title != "" && len(c.Artists) > 0
}

// TrackDetails is the result of a per-track detail lookup.
type TrackDetails struct {
	VideoID       string
	Title         string
	LengthSeconds int
	Thumbnails    []Thumbnail
}

// EnrichedSong is a candidate with artwork and media resolved.
//
// Values are treated as immutable once constructed; [EnrichedSong.WithIndex] returns a copy.
// AudioURL is nil when media resolution failed.
type EnrichedSong struct {
	Title       string   `json:"title"`
	Artists     []string `json:"artists"`
	VideoID     string   `json:"video_id"`
	AlbumArtURL string   `json:"album_art_url"`
	AudioURL    *string  `json:"audio_url"`
	Featuring   []string `json:"featuring"`
	Index       int      `json:"index,omitempty"`
}

// WithIndex returns a copy of the song carrying the given 1-based rank.
func (s EnrichedSong) WithIndex(index int) EnrichedSong {
	s.Index = index
	return s
}

// HasAudio reports whether a media URL was resolved.
func (s EnrichedSong) HasAudio() bool {
	return s.AudioURL != nil && *s.AudioURL != ""
}

// SongDetails summarises the seed song for the submitting client.
type SongDetails struct {
	Title       string `json:"title"`
	Artists     string `json:"artists"`
	AlbumArt    string `json:"albumArt"`
	AudioURL    string `json:"audioUrl"`
	VideoID     string `json:"videoId"`
	RequestedBy string `json:"requested_by,omitempty"`
}

// DiscoveryQuery is the free-text query used to re-resolve the seed during discovery.
func (d SongDetails) DiscoveryQuery() string {
	if d.Artists == "" {
		return d.Title
	}
	return d.Title + " " + d.Artists
}
