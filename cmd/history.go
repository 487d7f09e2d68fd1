package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/shared"
	"github.com/urfave/cli/v3"
)

// historyEntry is the JSON rendering of a [models.SongRequest].
type historyEntry struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"sequence"`
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
	Query     string    `json:"query"`
	VideoID   string    `json:"video_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

func newHistoryEntry(req *models.SongRequest) historyEntry {
	return historyEntry{
		ID:        req.ID(),
		Sequence:  req.Sequence(),
		SessionID: req.SessionID(),
		Username:  req.Username(),
		Query:     req.Query(),
		VideoID:   req.VideoID(),
		Title:     req.Title(),
		CreatedAt: req.CreatedAt(),
	}
}

// History lists recorded requests, or deletes one when --delete is given.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	repo, db, err := r.openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	if repo == nil {
		return fmt.Errorf("%w: request history is disabled (database.enabled = false)", shared.ErrServiceUnavailable)
	}
	defer db.Close()

	if id := cmd.String("delete"); id != "" {
		if err := repo.Delete(id); err != nil {
			return err
		}
		r.logger.Info("deleted request", "id", id)
		return nil
	}

	requests, err := repo.List(map[string]any{
		"session_id": cmd.String("session"),
		"username":   cmd.String("username"),
		"limit":      cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		entries := make([]historyEntry, len(requests))
		for i, req := range requests {
			entries[i] = newHistoryEntry(req)
		}
		return r.writeJSON(entries, true)
	}

	if len(requests) == 0 {
		return r.writePlain("No requests recorded.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Recent requests (%d)", len(requests)))
	for _, req := range requests {
		r.writePlain("%d. %s  %s  %q -> %s [%s]\n",
			req.Sequence(),
			req.CreatedAt().Local().Format(time.DateTime),
			req.Username(),
			req.Query(),
			req.Title(),
			req.VideoID(),
		)
	}
	return nil
}
