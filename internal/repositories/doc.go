// Package repositories implements SQLite persistence for submitted song requests.
//
// Key Implementations:
//   - [RequestRepository] : request history keyed by session, listed newest first
//
// Sequence numbers provide stable, human-readable ordering (e.g., request #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
