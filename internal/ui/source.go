package ui

import (
	"context"
	"errors"

	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/services"
	"github.com/desertthunder/ytradio/internal/tasks"
)

// Source resolves a seed song and starts streaming its related songs into sink.
//
// Start returns once the seed is known; events arrive on sink afterwards, ending with a terminal event.
type Source interface {
	Start(ctx context.Context, songName string, sink tasks.Sink) (*models.SongDetails, error)
}

// LocalSource runs discovery in-process.
type LocalSource struct {
	Discovery *tasks.Discovery
}

func (s *LocalSource) Start(ctx context.Context, songName string, sink tasks.Sink) (*models.SongDetails, error) {
	details, err := s.Discovery.Lookup(ctx, songName)
	if err != nil {
		return nil, err
	}
	go s.Discovery.Run(ctx, details.DiscoveryQuery(), sink)
	return details, nil
}

var errStreamEnded = errors.New("stream ended before completion")

// RemoteSource submits the seed to a running server and relays its event stream.
type RemoteSource struct {
	API      *services.APIService
	Username string
}

func (s *RemoteSource) Start(ctx context.Context, songName string, sink tasks.Sink) (*models.SongDetails, error) {
	resp, err := s.API.Submit(ctx, models.SubmitRequest{SongName: songName, Username: s.Username})
	if err != nil {
		return nil, err
	}

	go func() {
		terminal := false
		err := s.API.Stream(ctx, resp.SessionID, func(e models.ChannelEvent) error {
			terminal = e.Terminal()
			sink.Push(e)
			return nil
		})
		if ctx.Err() != nil || terminal {
			return
		}
		if err == nil {
			err = errStreamEnded
		}
		sink.Push(models.ErrorEvent(err.Error()))
	}()

	details := resp.SongDetails
	return &details, nil
}
