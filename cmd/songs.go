package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/desertthunder/ytradio/internal/formatter"
	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/services"
	"github.com/desertthunder/ytradio/internal/shared"
	"github.com/desertthunder/ytradio/internal/tasks"
	"github.com/urfave/cli/v3"
)

var relatedFormats = []string{"text", "json", "markdown", "csv"}

// relatedResult is the JSON rendering of a completed discovery.
type relatedResult struct {
	Seed    models.SongDetails    `json:"seed"`
	Songs   []models.EnrichedSong `json:"songs"`
	Status  models.EventKind      `json:"status"`
	Message string                `json:"message"`
}

func defaultUsername() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "ytradio"
}

func queryArg(cmd *cli.Command, name string) (string, error) {
	query := strings.TrimSpace(cmd.StringArg(name))
	if query == "" {
		return "", fmt.Errorf("%w: %s is required", shared.ErrMissingArgument, name)
	}
	return query, nil
}

// Search looks up the seed song for a query.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query, err := queryArg(cmd, "query")
	if err != nil {
		return err
	}

	r.logger.Info("searching for seed", "query", query, "provider", r.metadata.Name())

	details, err := r.discovery.Lookup(ctx, query)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(details, cmd.Bool("pretty"))
	}

	r.writePlain("Found song:\n\n")
	return r.writePlain("%s", formatter.FormatSeedText(*details))
}

// Related runs discovery in-process, printing songs as they arrive in text mode and exporting them otherwise.
func (r *Runner) Related(ctx context.Context, cmd *cli.Command) error {
	query, err := queryArg(cmd, "query")
	if err != nil {
		return err
	}

	format := strings.ToLower(cmd.String("format"))
	if !slices.Contains(relatedFormats, format) {
		return fmt.Errorf("%w: format must be one of %s", shared.ErrInvalidFlag, strings.Join(relatedFormats, ", "))
	}

	discovery := r.discovery
	if limit := cmd.Int("max"); limit > 0 {
		opts := discovery.Options()
		opts.MaxRelated = limit
		discovery = tasks.NewDiscovery(r.metadata, r.media, opts, shared.WithLogger(r.logger, "component", "discovery"))
	}

	seed, err := discovery.Lookup(ctx, query)
	if err != nil {
		return err
	}

	text := format == "text"
	if text {
		r.writePlainHeader(fmt.Sprintf("Songs like %s (%s)", seed.Title, seed.Artists))
	}

	events := make(tasks.ChanSink, discovery.Options().MaxRelated+1)
	go discovery.Run(ctx, seed.DiscoveryQuery(), events)

	result := relatedResult{Seed: *seed, Songs: []models.EnrichedSong{}}
	for event := range events {
		if event.Terminal() {
			result.Status = event.Kind
			result.Message = event.Message
			break
		}
		result.Songs = append(result.Songs, *event.Song)
		if text {
			if err := r.writePlain("\n%s", formatter.FormatSongText(*event.Song, event.Song.Index)); err != nil {
				return err
			}
		}
	}

	if err := r.exportRelated(format, cmd.String("output"), result); err != nil {
		return err
	}

	if result.Status == models.EventError && result.Message != tasks.NoRelatedMessage {
		return fmt.Errorf("%w: %s", shared.ErrDiscoveryFailed, result.Message)
	}
	return nil
}

func (r *Runner) exportRelated(format, output string, result relatedResult) error {
	switch format {
	case "json":
		return r.writeJSON(result, true)

	case "csv":
		if output == "" {
			data, err := formatter.ExportToCSV(result.Songs)
			if err != nil {
				return err
			}
			return r.writePlain("%s", data)
		}
		files, err := formatter.WriteCSVExport(result.Seed, result.Songs, output)
		if err != nil {
			return err
		}
		r.logger.Info("exported related songs", "songs", files.SongsFile, "seed", files.SeedFile)
		return nil

	case "markdown":
		if output == "" {
			data, err := formatter.ExportToMarkdown(result.Seed, result.Songs, "")
			if err != nil {
				return err
			}
			return r.writePlain("%s", data)
		}
		export, err := formatter.WriteMarkdownExport(r.httpClient, result.Seed, result.Songs, output, os.Stderr)
		if err != nil {
			return err
		}
		r.logger.Info("exported related songs", "directory", export.Directory, "files", len(export.Files))
		return nil

	default:
		if err := r.writePlainln("%s", result.Message); err != nil {
			return err
		}
		if output == "" {
			return nil
		}
		path, err := formatter.WriteTextExport(result.Seed, result.Songs, output)
		if err != nil {
			return err
		}
		r.logger.Info("exported related songs", "file", path)
		return nil
	}
}

// Listen submits a seed to a running server and prints its event stream until the terminal event.
func (r *Runner) Listen(ctx context.Context, cmd *cli.Command) error {
	song, err := queryArg(cmd, "song")
	if err != nil {
		return err
	}

	api := r.api
	if base := cmd.String("server"); base != "" {
		api = services.NewAPIService(base, r.httpClient)
	}
	asJSON := cmd.Bool("json")

	resp, err := api.Submit(ctx, models.SubmitRequest{
		SongName:  song,
		Username:  cmd.String("username"),
		SessionID: cmd.String("session"),
	})
	if err != nil {
		return err
	}

	r.logger.Info("session created", "session_id", resp.SessionID)
	if asJSON {
		if err := r.writeJSON(resp, false); err != nil {
			return err
		}
	} else {
		r.writePlainHeader(fmt.Sprintf("Songs like %s (%s)", resp.SongDetails.Title, resp.SongDetails.Artists))
	}

	var final models.ChannelEvent
	err = api.Stream(ctx, resp.SessionID, func(event models.ChannelEvent) error {
		if event.Terminal() {
			final = event
		}
		if asJSON {
			return r.writeJSON(map[string]any{"event": event.Kind, "data": event.Payload()}, false)
		}
		if event.Terminal() {
			return r.writePlainln("%s", event.Message)
		}
		return r.writePlain("\n%s", formatter.FormatSongText(*event.Song, event.Song.Index))
	})
	if err != nil {
		return err
	}

	switch {
	case final.Kind == "":
		return fmt.Errorf("%w: stream ended before completion", shared.ErrAPIRequest)
	case final.Kind == models.EventError && final.Message != tasks.NoRelatedMessage:
		return fmt.Errorf("%w: %s", shared.ErrDiscoveryFailed, final.Message)
	}
	return nil
}
