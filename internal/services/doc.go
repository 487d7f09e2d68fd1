// Package services implements the external collaborators used by the discovery pipeline.
//
// # Metadata Provider
//
// [YouTubeService] communicates with the FastAPI proxy server wrapping ytmusicapi.
// It implements [MetadataProvider] through three endpoints:
//   - GET /api/search : free-text search, filtered to songs
//   - GET /api/songs/{id} : per-track details with the full thumbnail set
//   - GET /api/watch : the watch playlist (related tracks) for a video ID
//
// # Media Resolver
//
// [YTDLPResolver] implements [MediaResolver] with the yt-dlp binary driven through go-ytdlp.
// It asks for the best audio format and returns the first printed URL.
//
// # Server Client
//
// [APIService] is a client for a running ytradio server. It submits seeds and consumes the
// related-songs event stream, and backs the listen and tui commands.
//
// # Error Handling
//
// Services wrap typed errors from the shared package:
//   - [shared.ErrAPIRequest] : HTTP request failed or returned a non-2xx status
//   - [shared.ErrTrackNotFound] : search or lookup returned nothing
//   - [shared.ErrMediaUnavailable] : yt-dlp returned no URL
package services
