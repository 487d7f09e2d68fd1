// API service for talking to a running ytradio server
package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/shared"
)

const defaultServerURL = "http://127.0.0.1:5000"

// ErrStopStream can be returned from a [StreamFunc] to stop consuming without an error.
var ErrStopStream = errors.New("stop stream")

// APIService is an HTTP client for the ytradio server.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for a ytradio server.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = defaultServerURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// ErrorMessage returns the "error" field of a JSON error body, or the status text.
func (r *APIResponse) ErrorMessage() string {
	var body models.ErrorResponse
	if err := json.Unmarshal(r.Body, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return http.StatusText(r.StatusCode)
}

func (a *APIService) do(req *http.Request) (*APIResponse, error) {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return a.do(req)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

// Health calls GET /health.
func (a *APIService) Health(ctx context.Context) (*models.HealthResponse, error) {
	resp, err := a.Get(ctx, "/health")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: health check returned %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}

	var health models.HealthResponse
	if err := json.Unmarshal(resp.Body, &health); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return &health, nil
}

// Submit posts a seed song and returns its details and the session to stream from.
func (a *APIService) Submit(ctx context.Context, body models.SubmitRequest) (*models.SubmitResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := a.Post(ctx, "/get_song", data)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", shared.ErrMissingArgument, resp.ErrorMessage())
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, resp.ErrorMessage())
	default:
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, resp.ErrorMessage())
	}

	var out models.SubmitResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

// StreamFunc receives each event of a related-songs stream.
type StreamFunc func(models.ChannelEvent) error

// Stream connects to the session's event stream and calls fn for every event until a terminal event arrives,
// fn returns an error, or ctx is done. Keep-alive comments are skipped.
func (a *APIService) Stream(ctx context.Context, sessionID string, fn StreamFunc) error {
	endpoint := a.baseURL + "/stream_related_songs/" + url.PathEscape(sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrSessionNotFound, sessionID)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", shared.ErrSessionBusy, sessionID)
	default:
		return fmt.Errorf("%w: stream returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	err = ReadEvents(resp.Body, func(frame Frame) error {
		event, err := frame.ChannelEvent()
		if err != nil {
			return err
		}
		if err := fn(event); err != nil {
			return err
		}
		if event.Terminal() {
			return ErrStopStream
		}
		return nil
	})
	if errors.Is(err, ErrStopStream) {
		return nil
	}
	return err
}

// Frame is a single Server-Sent Events message.
type Frame struct {
	Event string
	Data  string
}

// ChannelEvent decodes the frame payload according to its event name.
func (f Frame) ChannelEvent() (models.ChannelEvent, error) {
	kind := models.EventKind(f.Event)
	switch kind {
	case models.EventRelatedSong:
		var song models.EnrichedSong
		if err := json.Unmarshal([]byte(f.Data), &song); err != nil {
			return models.ChannelEvent{}, fmt.Errorf("failed to decode song: %w", err)
		}
		return models.ChannelEvent{Kind: kind, Song: &song}, nil
	case models.EventError, models.EventComplete:
		var msg models.MessagePayload
		if err := json.Unmarshal([]byte(f.Data), &msg); err != nil {
			return models.ChannelEvent{}, fmt.Errorf("failed to decode message: %w", err)
		}
		return models.ChannelEvent{Kind: kind, Message: msg.Message}, nil
	default:
		return models.ChannelEvent{}, fmt.Errorf("%w: unknown event %q", shared.ErrAPIRequest, f.Event)
	}
}

// ReadEvents parses an event stream from r, calling fn for each complete frame.
//
// Comment lines (including keep-alives) are ignored. Returns nil at EOF.
func ReadEvents(r io.Reader, fn func(Frame) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		frame Frame
		data  []string
	)

	dispatch := func() error {
		if frame.Event == "" && len(data) == 0 {
			return nil
		}
		if frame.Event == "" {
			frame.Event = "message"
		}
		frame.Data = strings.Join(data, "\n")
		err := fn(frame)
		frame, data = Frame{}, nil
		return err
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if err := dispatch(); err != nil {
				return err
			}
		case strings.HasPrefix(line, ":"):
		default:
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				frame.Event = value
			case "data":
				data = append(data, value)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}
	return dispatch()
}
