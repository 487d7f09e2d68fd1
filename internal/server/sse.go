package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

const defaultSSEBuffer = 16 * 1024

// setStreamHeaders prepares w for an event stream. Proxies must not buffer the response.
func setStreamHeaders(w http.ResponseWriter) {
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
}

// SSEWriter emits Server-Sent Events frames.
type SSEWriter struct {
	mu     sync.Mutex
	writer *bufio.Writer
	w      http.ResponseWriter
}

// NewSSEWriter constructs a writer for the provided response writer.
func NewSSEWriter(w http.ResponseWriter) *SSEWriter {
	return &SSEWriter{
		writer: bufio.NewWriterSize(w, defaultSSEBuffer),
		w:      w,
	}
}

// WriteEvent encodes payload as JSON and emits it as a named event.
func (s *SSEWriter) WriteEvent(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.writer, "event: %s\ndata: ", event); err != nil {
		return err
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	_, err = s.writer.WriteString("\n\n")
	return err
}

// WriteComment emits a comment line, ignored by clients.
func (s *SSEWriter) WriteComment(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := fmt.Fprintf(s.writer, ": %s\n\n", text)
	return err
}

// Flush flushes the buffered writer and underlying ResponseWriter if possible.
func (s *SSEWriter) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writer.Flush(); err != nil {
		return err
	}
	if flusher, ok := s.w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
