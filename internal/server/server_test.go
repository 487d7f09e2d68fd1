package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/services"
	"github.com/desertthunder/ytradio/internal/sessions"
	"github.com/desertthunder/ytradio/internal/shared"
	"github.com/desertthunder/ytradio/internal/tasks"
	tu "github.com/desertthunder/ytradio/internal/testing"
)

var quiet = shared.NewLogger(io.Discard)

// gatedDiscoverer returns fixed details and pushes fixed events once gate is closed.
type gatedDiscoverer struct {
	details *models.SongDetails
	err     error
	gate    chan struct{}
	events  []models.ChannelEvent

	mu      sync.Mutex
	queries []string
}

func (g *gatedDiscoverer) Lookup(ctx context.Context, songName string) (*models.SongDetails, error) {
	if g.err != nil {
		return nil, g.err
	}
	d := *g.details
	return &d, nil
}

func (g *gatedDiscoverer) Run(ctx context.Context, query string, sink tasks.Sink) {
	g.mu.Lock()
	g.queries = append(g.queries, query)
	g.mu.Unlock()

	if g.gate != nil {
		select {
		case <-g.gate:
		case <-ctx.Done():
			sink.Push(models.ErrorEvent(ctx.Err().Error()))
			return
		}
	}
	for _, e := range g.events {
		sink.Push(e)
	}
}

type fakeHistory struct {
	mu      sync.Mutex
	records []string
	err     error
}

func (f *fakeHistory) Record(sessionID, username, query string, details models.SongDetails) (*models.SongRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, sessionID+"|"+username+"|"+query)
	if f.err != nil {
		return nil, f.err
	}
	return models.NewSongRequest(len(f.records), sessionID, username, query, details), nil
}

func newTestServer(t *testing.T, d Discoverer, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	registry := sessions.NewRegistry(sessions.Options{Capacity: tasks.DefaultMaxRelated + 1, Logger: quiet})
	opts.Logger = quiet
	s := New(registry, d, opts)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return s, ts
}

func shapeOfYou() *tu.MockMetadata {
	return &tu.MockMetadata{
		Results: []models.Candidate{tu.Candidate("X", "Shape of You", "Ed Sheeran")},
		Related: map[string][]models.Candidate{
			"X": {
				tu.Candidate("t1", "Perfect", "Ed Sheeran"),
				tu.Candidate("t2", "Photograph", "Ed Sheeran"),
				tu.Candidate("X", "Shape of You", "Ed Sheeran"),
				tu.Candidate("t4", "Thinking Out Loud", "Ed Sheeran"),
				tu.Candidate("t5", "Shape of You (Karaoke Version)", "Sing King"),
				tu.Candidate("t6", "Castle on the Hill", "Ed Sheeran"),
				tu.Candidate("t7", "Galway Girl", "Ed Sheeran"),
				tu.Candidate("t8", "Bad Habits", "Ed Sheeran"),
			},
		},
	}
}

func submit(t *testing.T, ts *httptest.Server, body any) (*http.Response, []byte) {
	t.Helper()
	data, _ := json.Marshal(body)
	resp, err := http.Post(ts.URL+"/get_song", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func decodeError(t *testing.T, body []byte) string {
	t.Helper()
	var e models.ErrorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("expected JSON error body, got %s", body)
	}
	return e.Error
}

func TestSubmitHandler(t *testing.T) {
	t.Run("Missing Fields", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{name: "no username", body: `{"song_name":"x"}`},
			{name: "no song", body: `{"username":"ed"}`},
			{name: "blank values", body: `{"song_name":"  ","username":"ed"}`},
			{name: "malformed", body: `{`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s, ts := newTestServer(t, &gatedDiscoverer{details: &models.SongDetails{}}, Options{})

				resp, err := http.Post(ts.URL+"/get_song", "application/json", strings.NewReader(tt.body))
				if err != nil {
					t.Fatalf("request failed: %v", err)
				}
				body, _ := io.ReadAll(resp.Body)
				resp.Body.Close()

				if resp.StatusCode != http.StatusBadRequest {
					t.Errorf("expected 400, got %d", resp.StatusCode)
				}
				if msg := decodeError(t, body); msg != msgMissingFields {
					t.Errorf("expected %q, got %q", msgMissingFields, msg)
				}
				if s.registry.Len() != 0 {
					t.Error("no session must be created")
				}
			})
		}
	})

	t.Run("Not Found Creates No Session", func(t *testing.T) {
		metadata := &tu.MockMetadata{}
		d := tasks.NewDiscovery(metadata, &tu.MockResolver{}, tasks.Options{}, quiet)
		s, ts := newTestServer(t, d, Options{})

		resp, body := submit(t, ts, models.SubmitRequest{SongName: "nothing", Username: "ed"})
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
		if msg := decodeError(t, body); msg != msgNoResults {
			t.Errorf("expected %q, got %q", msgNoResults, msg)
		}
		if s.registry.Len() != 0 {
			t.Error("no session must be created")
		}
	})

	t.Run("Provider Error", func(t *testing.T) {
		d := &gatedDiscoverer{err: shared.ErrAPIRequest}
		_, ts := newTestServer(t, d, Options{})

		resp, _ := submit(t, ts, models.SubmitRequest{SongName: "x", Username: "ed"})
		if resp.StatusCode != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", resp.StatusCode)
		}
	})

	t.Run("Success", func(t *testing.T) {
		d := &gatedDiscoverer{
			details: &models.SongDetails{Title: "Shape of You", Artists: "Ed Sheeran", VideoID: "X"},
			events:  []models.ChannelEvent{models.CompleteEvent(tasks.CompleteMessage)},
		}
		history := &fakeHistory{}
		s, ts := newTestServer(t, d, Options{History: history})

		resp, body := submit(t, ts, models.SubmitRequest{SongName: "shape of you", Username: "ed"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
		}

		var out models.SubmitResponse
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !shared.IsValidID(out.SessionID) {
			t.Errorf("expected generated UUID, got %q", out.SessionID)
		}
		if out.SongDetails.RequestedBy != "ed" {
			t.Errorf("expected requested_by ed, got %q", out.SongDetails.RequestedBy)
		}
		if !strings.Contains(out.Message, "/stream_related_songs/"+out.SessionID) {
			t.Errorf("expected stream hint in message, got %q", out.Message)
		}
		if _, ok := s.registry.Lookup(out.SessionID); !ok {
			t.Error("expected session to be registered")
		}

		s.Close()
		d.mu.Lock()
		queries := d.queries
		d.mu.Unlock()
		if len(queries) != 1 || queries[0] != "Shape of You Ed Sheeran" {
			t.Errorf("expected discovery query from seed details, got %v", queries)
		}

		history.mu.Lock()
		defer history.mu.Unlock()
		if len(history.records) != 1 || history.records[0] != out.SessionID+"|ed|shape of you" {
			t.Errorf("unexpected history: %v", history.records)
		}
	})

	t.Run("History Failure Is Not Fatal", func(t *testing.T) {
		d := &gatedDiscoverer{details: &models.SongDetails{Title: "A", VideoID: "X"}}
		_, ts := newTestServer(t, d, Options{History: &fakeHistory{err: errors.New("disk full")}})

		resp, _ := submit(t, ts, models.SubmitRequest{SongName: "a", Username: "ed"})
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("Session IDs", func(t *testing.T) {
		supplied := shared.GenerateID()

		tests := []struct {
			name      string
			requested string
			keep      bool
		}{
			{name: "valid UUID kept", requested: supplied, keep: true},
			{name: "non-UUID replaced", requested: "my-session", keep: false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				d := &gatedDiscoverer{details: &models.SongDetails{Title: "A", VideoID: "X"}}
				_, ts := newTestServer(t, d, Options{})

				_, body := submit(t, ts, models.SubmitRequest{SongName: "a", Username: "ed", SessionID: tt.requested})
				var out models.SubmitResponse
				json.Unmarshal(body, &out)

				if (out.SessionID == tt.requested) != tt.keep {
					t.Errorf("requested %q, got %q", tt.requested, out.SessionID)
				}
				if !shared.IsValidID(out.SessionID) {
					t.Errorf("expected UUID session, got %q", out.SessionID)
				}
			})
		}
	})

	t.Run("Running Session Is Not Joined", func(t *testing.T) {
		gate := make(chan struct{})
		defer close(gate)
		d := &gatedDiscoverer{details: &models.SongDetails{Title: "A", VideoID: "X"}, gate: gate}
		s, ts := newTestServer(t, d, Options{})

		id := shared.GenerateID()
		_, body := submit(t, ts, models.SubmitRequest{SongName: "a", Username: "ed", SessionID: id})
		var first models.SubmitResponse
		json.Unmarshal(body, &first)

		_, body = submit(t, ts, models.SubmitRequest{SongName: "a", Username: "ed", SessionID: id})
		var second models.SubmitResponse
		json.Unmarshal(body, &second)

		if first.SessionID != id {
			t.Errorf("expected first submit to use %s, got %s", id, first.SessionID)
		}
		if second.SessionID == id {
			t.Error("second submit must not share a running producer")
		}
		if s.registry.Len() != 2 {
			t.Errorf("expected 2 sessions, got %d", s.registry.Len())
		}
	})
}

// readFrames reads raw SSE frames (including comments) until a terminal event or EOF.
func readFrames(t *testing.T, body io.Reader) []string {
	t.Helper()
	reader := bufio.NewReader(body)

	var (
		frames  []string
		current strings.Builder
	)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return frames
		}
		if line == "\n" {
			frame := current.String()
			frames = append(frames, frame)
			current.Reset()
			if strings.HasPrefix(frame, "event: complete") || strings.HasPrefix(frame, "event: error") {
				return frames
			}
			continue
		}
		current.WriteString(line)
	}
}

func TestStreamHandler(t *testing.T) {
	t.Run("Unknown Session", func(t *testing.T) {
		_, ts := newTestServer(t, &gatedDiscoverer{}, Options{})

		resp, err := http.Get(ts.URL + "/stream_related_songs/nope")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
		if msg := decodeError(t, body); msg != msgInvalidSession {
			t.Errorf("expected %q, got %q", msgInvalidSession, msg)
		}
	})

	t.Run("Busy Session", func(t *testing.T) {
		s, ts := newTestServer(t, &gatedDiscoverer{}, Options{})
		session, _ := s.registry.Create("busy")
		release, _ := session.Attach()
		defer release()

		resp, err := http.Get(ts.URL + "/stream_related_songs/busy")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusConflict {
			t.Errorf("expected 409, got %d", resp.StatusCode)
		}
	})

	t.Run("End To End", func(t *testing.T) {
		d := tasks.NewDiscovery(shapeOfYou(), &tu.MockResolver{
			Failures: map[string]error{"t2": shared.ErrMediaUnavailable},
		}, tasks.Options{}, quiet)
		s, ts := newTestServer(t, d, Options{})

		_, body := submit(t, ts, models.SubmitRequest{SongName: "shape of you", Username: "ed"})
		var out models.SubmitResponse
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("failed to decode submit: %v (%s)", err, body)
		}

		client := services.NewAPIService(ts.URL, nil)
		var events []models.ChannelEvent
		err := client.Stream(context.Background(), out.SessionID, func(e models.ChannelEvent) error {
			events = append(events, e)
			return nil
		})
		if err != nil {
			t.Fatalf("stream failed: %v", err)
		}

		var ids []string
		for i, e := range events[:len(events)-1] {
			if e.Song.Index != i+1 {
				t.Errorf("event %d: expected index %d, got %d", i, i+1, e.Song.Index)
			}
			if e.Song.VideoID == "t2" && e.Song.AudioURL != nil {
				t.Error("expected null audio_url for t2")
			}
			ids = append(ids, e.Song.VideoID)
		}
		if strings.Join(ids, ",") != "t1,t2,t4,t6,t7,t8" {
			t.Errorf("unexpected emitted ids %v", ids)
		}
		if last := events[len(events)-1]; last.Kind != models.EventComplete || last.Message != tasks.CompleteMessage {
			t.Errorf("expected complete, got %+v", last)
		}

		if _, ok := s.registry.Lookup(out.SessionID); ok {
			t.Error("session must be removed after the terminal event")
		}
	})

	t.Run("Headers And Keep-Alive", func(t *testing.T) {
		gate := make(chan struct{})
		song := models.EnrichedSong{Title: "Perfect", Artists: []string{"Ed Sheeran"}, VideoID: "t1", AlbumArtURL: models.NoAlbumArt}
		d := &gatedDiscoverer{
			details: &models.SongDetails{Title: "A", VideoID: "X"},
			gate:    gate,
			events: []models.ChannelEvent{
				models.RelatedSongEvent(song, 1),
				models.CompleteEvent(tasks.CompleteMessage),
			},
		}
		_, ts := newTestServer(t, d, Options{KeepAlive: 20 * time.Millisecond})

		_, body := submit(t, ts, models.SubmitRequest{SongName: "a", Username: "ed"})
		var out models.SubmitResponse
		json.Unmarshal(body, &out)

		resp, err := http.Get(ts.URL + "/stream_related_songs/" + out.SessionID)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		for header, want := range map[string]string{
			"Content-Type":      "text/event-stream",
			"Cache-Control":     "no-cache",
			"X-Accel-Buffering": "no",
		} {
			if got := resp.Header.Get(header); got != want {
				t.Errorf("expected %s %q, got %q", header, want, got)
			}
		}

		time.AfterFunc(70*time.Millisecond, func() { close(gate) })
		frames := readFrames(t, resp.Body)

		if len(frames) < 3 {
			t.Fatalf("expected keep-alives followed by events, got %q", frames)
		}
		if frames[0] != ": keepalive\n" {
			t.Errorf("expected first frame to be a keep-alive, got %q", frames[0])
		}

		var events []string
		for _, f := range frames {
			if !strings.HasPrefix(f, ":") {
				events = append(events, f)
			}
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %q", events)
		}
		if !strings.HasPrefix(events[0], "event: related_song\ndata: ") || !strings.Contains(events[0], `"index":1`) {
			t.Errorf("unexpected song frame %q", events[0])
		}
		if !strings.Contains(events[0], `"audio_url":null`) || !strings.Contains(events[0], `"featuring":[]`) {
			t.Errorf("expected null audio and empty featuring, got %q", events[0])
		}
		if events[1] != "event: complete\ndata: {\"message\":\"Related songs processing complete\"}\n" {
			t.Errorf("unexpected terminal frame %q", events[1])
		}
	})

	t.Run("Disconnect Releases Session", func(t *testing.T) {
		gate := make(chan struct{})
		defer close(gate)
		d := &gatedDiscoverer{details: &models.SongDetails{Title: "A", VideoID: "X"}, gate: gate}
		s, ts := newTestServer(t, d, Options{KeepAlive: time.Hour})

		_, body := submit(t, ts, models.SubmitRequest{SongName: "a", Username: "ed"})
		var out models.SubmitResponse
		json.Unmarshal(body, &out)

		ctx, cancel := context.WithCancel(context.Background())
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/stream_related_songs/"+out.SessionID, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}

		session, _ := s.registry.Lookup(out.SessionID)
		if !session.Attached() {
			t.Error("expected session to be attached while streaming")
		}

		cancel()
		resp.Body.Close()

		deadline := time.Now().Add(time.Second)
		for session.Attached() && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		if session.Attached() {
			t.Error("expected session to be released after disconnect")
		}
		if _, ok := s.registry.Lookup(out.SessionID); !ok {
			t.Error("session must survive a disconnect so it can be drained again")
		}
	})
}

func TestHealthAndMetrics(t *testing.T) {
	s, ts := newTestServer(t, &gatedDiscoverer{}, Options{})
	s.registry.Create("a")
	s.registry.Create("b")

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var health models.HealthResponse
	json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()

	if health.Status != "ok" || health.Sessions != 2 {
		t.Errorf("unexpected health %+v", health)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	for _, want := range []string{"ytradio_sessions 2", "ytradio_http_requests_total"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected metrics to contain %q", want)
		}
	}

	resp, err = http.Post(ts.URL+"/metrics", "text/plain", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}
