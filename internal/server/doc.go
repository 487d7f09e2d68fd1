// Package server provides HTTP routing, middleware, and the handlers of the related-songs service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
// Routes use method-qualified [http.ServeMux] patterns such as "GET /stream_related_songs/{session_id}".
//
// # Endpoints
//
//   - POST /get_song : looks up the seed, opens a session, starts discovery in the background
//   - GET /stream_related_songs/{session_id} : relays the session's events as Server-Sent Events
//   - GET /health : liveness and live session count
//   - GET /metrics : Prometheus exposition
//
// # Stream Relay
//
// The relay waits for the next event with a keep-alive timer. An idle interval writes a ": keepalive"
// comment; an event is written as "event: <kind>" plus a JSON "data:" line. The terminal event
// removes the session and closes the stream. A client disconnect releases the session so it can be
// drained again or swept by the registry janitor.
package server
