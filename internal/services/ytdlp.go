package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"github.com/desertthunder/ytradio/internal/shared"
)

const (
	defaultFormat = "bestaudio/best"
	watchURL      = "https://www.youtube.com/watch?v="
)

// runFunc executes yt-dlp against url and returns its stdout.
type runFunc func(ctx context.Context, url string) (string, error)

// YTDLPResolver implements [MediaResolver] by asking yt-dlp for the URL of the best audio format.
type YTDLPResolver struct {
	binary string
	format string
	run    runFunc
}

// NewYTDLPResolver creates a resolver using the given yt-dlp binary (empty means look it up on PATH) and format selector.
func NewYTDLPResolver(cfg shared.YTDLPConfig) *YTDLPResolver {
	r := &YTDLPResolver{binary: cfg.Binary, format: cfg.Format}
	if r.format == "" {
		r.format = defaultFormat
	}
	r.run = r.exec
	return r
}

func (r *YTDLPResolver) command() *ytdlp.Command {
	cmd := ytdlp.New().
		Format(r.format).
		NoPlaylist().
		NoWarnings().
		Quiet().
		GetURL()
	if r.binary != "" {
		cmd = cmd.SetExecutable(r.binary)
	}
	return cmd
}

func (r *YTDLPResolver) exec(ctx context.Context, url string) (string, error) {
	res, err := r.command().Run(ctx, url)
	if err != nil {
		if res != nil && res.Stderr != "" {
			return "", fmt.Errorf("yt-dlp failed: %w\nstderr: %s", err, strings.TrimSpace(res.Stderr))
		}
		return "", fmt.Errorf("yt-dlp failed: %w", err)
	}
	return res.Stdout, nil
}

// Resolve returns a playable media URL for videoID.
func (r *YTDLPResolver) Resolve(ctx context.Context, videoID string) (string, error) {
	if videoID == "" {
		return "", fmt.Errorf("%w: video ID is required", shared.ErrMissingArgument)
	}

	out, err := r.run(ctx, watchURL+videoID)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", shared.ErrMediaUnavailable, videoID, err)
	}

	for line := range strings.SplitSeq(out, "\n") {
		if line = strings.TrimSpace(line); strings.HasPrefix(line, "http") {
			return line, nil
		}
	}
	return "", fmt.Errorf("%w: %s: no URL in yt-dlp output", shared.ErrMediaUnavailable, videoID)
}
