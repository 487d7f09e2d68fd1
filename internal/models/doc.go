// Package models defines domain entities for the ytradio related-songs service.
//
// The package contains two categories of types:
//
// 1. Transient values that flow through the discovery pipeline
//   - [Candidate] : Raw track record returned by the metadata provider
//   - [TrackDetails] : Per-track detail lookup carrying artwork thumbnails
//   - [EnrichedSong] : Fully resolved song pushed to a session's delivery channel
//   - [ChannelEvent] : Tagged union of related_song, error and complete events
//   - [SongDetails] : Summary of the seed song returned to the submitting client
//
// 2. Persistent entities backed by the request history store
//   - [SongRequest] : A submitted query with the session it spawned
//
// Persistent entities implement the Model interface providing ID generation, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
