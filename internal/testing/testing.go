// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/ytradio/internal/models"
)

// MockMetadata is a goroutine-safe test double for [services.MetadataProvider].
//
// Search returns Results regardless of query; GetSong and GetWatchPlaylist look up by video ID.
type MockMetadata struct {
	Results    []models.Candidate
	Songs      map[string]*models.TrackDetails
	Related    map[string][]models.Candidate
	SearchErr  error
	SongErr    error
	RelatedErr error
	// PanicOnRelated makes GetWatchPlaylist panic, simulating a provider bug.
	PanicOnRelated bool

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockMetadata) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

// Calls returns how many times method was invoked.
func (m *MockMetadata) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockMetadata) Search(ctx context.Context, query, filter string, limit int) ([]models.Candidate, error) {
	m.record("Search")
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	results := m.Results
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MockMetadata) GetSong(ctx context.Context, videoID string) (*models.TrackDetails, error) {
	m.record("GetSong")
	if m.SongErr != nil {
		return nil, m.SongErr
	}
	if song, ok := m.Songs[videoID]; ok {
		return song, nil
	}
	return &models.TrackDetails{VideoID: videoID}, nil
}

func (m *MockMetadata) GetWatchPlaylist(ctx context.Context, videoID string, limit int) ([]models.Candidate, error) {
	m.record("GetWatchPlaylist")
	if m.PanicOnRelated {
		panic("watch playlist exploded")
	}
	if m.RelatedErr != nil {
		return nil, m.RelatedErr
	}
	return m.Related[videoID], nil
}

func (m *MockMetadata) Name() string { return "mock" }

// MockResolver is a goroutine-safe test double for [services.MediaResolver].
//
// Resolve returns "https://media.test/<id>" unless the ID is listed in Failures.
type MockResolver struct {
	Failures map[string]error
	// Delays holds per-ID latency, used to force out-of-order completion.
	Delays map[string]time.Duration

	mu       sync.Mutex
	resolved []string
}

func (m *MockResolver) Resolve(ctx context.Context, videoID string) (string, error) {
	if d, ok := m.Delays[videoID]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	m.mu.Lock()
	m.resolved = append(m.resolved, videoID)
	m.mu.Unlock()

	if err, ok := m.Failures[videoID]; ok {
		return "", err
	}
	return "https://media.test/" + videoID, nil
}

// Resolved returns the IDs passed to Resolve, in call order.
func (m *MockResolver) Resolved() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.resolved...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// Candidate builds a [models.Candidate] with a single artist and one thumbnail.
func Candidate(id, title, artist string) models.Candidate {
	return models.Candidate{
		VideoID:    id,
		Title:      title,
		Artists:    []string{artist},
		Thumbnails: []models.Thumbnail{{URL: "https://img.test/" + id + ".jpg", Width: 60, Height: 60}},
	}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
