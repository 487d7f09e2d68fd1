// Package tasks implements the related-songs discovery pipeline.
//
// # Pipeline
//
// [Discovery.Run] drives a single discovery for a free-text query:
//
//  1. Search for the seed track ("songs" filter, one result)
//  2. Enrich the seed; its video ID anchors the walk and is never emitted
//  3. Fetch the watch playlist for the seed, truncated to [Options.MaxRelated]
//  4. Filter each candidate with [Accept], enrich it, and push a related_song event
//  5. Push exactly one terminal event: complete on exhaustion, error on failure
//
// Candidates are enriched in parallel (bounded by [Options.Concurrency]) but are emitted in
// walk order, so indices start at 1 and increase without gaps regardless of skipped candidates.
//
// # Failure Handling
//
// Item-level failures degrade the item: a missing thumbnail becomes [models.NoAlbumArt] and a
// failed media resolution leaves AudioURL nil. Pipeline-level failures (seed search, related
// lookup) and panics short-circuit the run into a single terminal error event.
//
// # Sinks
//
// The pipeline's only output is a [Sink]. The session registry implements it for the HTTP server,
// [ChanSink] serves in-process consumers such as the CLI and TUI.
//
// # Rate Limiting
//
// [RateLimited] wraps a metadata provider so that every call waits on a shared limiter.
package tasks
