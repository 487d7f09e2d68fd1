// Package sessions tracks the delivery channel of each related-songs session.
//
// A [Session] owns one buffered channel of [models.ChannelEvent]. The discovery task is its only
// producer ([Session.Start] runs at most once) and the stream relay its only consumer
// ([Session.Attach] admits one reader at a time). The channel is sized so the producer never
// blocks, whether or not a reader ever attaches.
//
// The [Registry] maps session IDs to sessions. Creation is idempotent, and a janitor
// ([Registry.Run]) sweeps sessions nobody drained within the configured TTL.
package sessions
