package tasks

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/services"
	"github.com/desertthunder/ytradio/internal/shared"
)

// limitedProvider gates every [services.MetadataProvider] call behind a shared [rate.Limiter].
type limitedProvider struct {
	services.MetadataProvider
	limiter *rate.Limiter
}

// RateLimited wraps provider so that calls wait on limiter. A nil limiter returns provider unchanged.
func RateLimited(provider services.MetadataProvider, limiter *rate.Limiter) services.MetadataProvider {
	if limiter == nil {
		return provider
	}
	return &limitedProvider{MetadataProvider: provider, limiter: limiter}
}

// NewLimiter builds a limiter from discovery settings; a non-positive rate disables limiting.
func NewLimiter(cfg shared.DiscoveryConfig) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}

func (p *limitedProvider) wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %w", shared.ErrServiceUnavailable, err)
	}
	return nil
}

func (p *limitedProvider) Search(ctx context.Context, query, filter string, limit int) ([]models.Candidate, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.MetadataProvider.Search(ctx, query, filter, limit)
}

func (p *limitedProvider) GetSong(ctx context.Context, videoID string) (*models.TrackDetails, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.MetadataProvider.GetSong(ctx, videoID)
}

func (p *limitedProvider) GetWatchPlaylist(ctx context.Context, videoID string, limit int) ([]models.Candidate, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.MetadataProvider.GetWatchPlaylist(ctx, videoID, limit)
}
