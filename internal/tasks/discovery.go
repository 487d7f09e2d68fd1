package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/services"
	"github.com/desertthunder/ytradio/internal/shared"
)

const (
	DefaultMaxRelated  = 8
	DefaultConcurrency = 4
)

// Sink receives the events of a discovery run, in order.
type Sink interface {
	Push(models.ChannelEvent)
}

// ChanSink adapts a channel to [Sink]. Push blocks until the event is received or buffered.
type ChanSink chan models.ChannelEvent

func (c ChanSink) Push(e models.ChannelEvent) { c <- e }

// SinkFunc adapts a function to [Sink].
type SinkFunc func(models.ChannelEvent)

func (f SinkFunc) Push(e models.ChannelEvent) { f(e) }

// Options tunes a [Discovery].
type Options struct {
	MaxRelated  int // Related tracks considered, counted before filtering
	Concurrency int // Candidates enriched in parallel
}

// OptionsFromConfig maps discovery settings to [Options], applying defaults.
func OptionsFromConfig(cfg shared.DiscoveryConfig) Options {
	return Options{MaxRelated: cfg.MaxRelated, Concurrency: cfg.Concurrency}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.MaxRelated <= 0 {
		o.MaxRelated = DefaultMaxRelated
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// Discovery finds songs related to a seed query and pushes them to a [Sink] as they are enriched.
type Discovery struct {
	metadata services.MetadataProvider
	enricher *Enricher
	opts     Options
	logger   *log.Logger
}

// NewDiscovery creates a [Discovery]. metadata should already be rate limited if limiting is wanted.
func NewDiscovery(metadata services.MetadataProvider, media services.MediaResolver, opts Options, logger *log.Logger) *Discovery {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Discovery{
		metadata: metadata,
		enricher: NewEnricher(metadata, media, logger),
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// Options returns the effective options.
func (d *Discovery) Options() Options { return d.opts }

// Lookup finds the best match for songName and summarises it for the submitting client.
//
// Returns [shared.ErrTrackNotFound] when the search is empty or the match has no video ID.
func (d *Discovery) Lookup(ctx context.Context, songName string) (*models.SongDetails, error) {
	results, err := d.metadata.Search(ctx, songName, "songs", 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || results[0].VideoID == "" {
		return nil, fmt.Errorf("%w: %q", shared.ErrTrackNotFound, songName)
	}

	details := d.enricher.Details(ctx, results[0])
	return &details, nil
}

// Run executes a discovery for query, pushing related_song events followed by exactly one terminal event.
//
// Run never returns an error: every failure, including panics, becomes the terminal error event.
func (d *Discovery) Run(ctx context.Context, query string, sink Sink) {
	logger := shared.WithLogger(d.logger, "query", query)
	started := time.Now()

	var terminal models.ChannelEvent
	defer func() {
		if r := recover(); r != nil {
			logger.Error("discovery panicked", "panic", r)
			terminal = panicEvent(r)
		}
		sink.Push(terminal)
		logger.Info("discovery finished", "event", terminal.Kind, "duration", time.Since(started))
	}()

	emitted, err := d.run(ctx, query, sink, logger)
	if err != nil {
		logger.Error("discovery failed", "phase", phaseOf(err), "emitted", emitted, "error", err)
		terminal = failureEvent(err)
		return
	}
	terminal = completeEvent()
}

func (d *Discovery) run(ctx context.Context, query string, sink Sink, logger *log.Logger) (int, error) {
	results, err := d.metadata.Search(ctx, query, "songs", 1)
	if err != nil {
		return 0, failAt(SearchSeed, err)
	}
	if len(results) == 0 {
		return 0, failAt(SearchSeed, fmt.Errorf("%w: %q", shared.ErrTrackNotFound, query))
	}

	seed, err := d.enricher.Enrich(ctx, results[0])
	if err != nil {
		return 0, failAt(EnrichSeed, err)
	}
	logger.Debug("seed resolved", "video_id", seed.VideoID, "title", seed.Title)

	related, err := d.metadata.GetWatchPlaylist(ctx, seed.VideoID, d.opts.MaxRelated)
	if err != nil {
		return 0, failAt(FetchRelated, err)
	}
	if len(related) > d.opts.MaxRelated {
		related = related[:d.opts.MaxRelated]
	}

	accepted := make([]models.Candidate, 0, len(related))
	for _, c := range related {
		if Accept(c, seed.VideoID) {
			accepted = append(accepted, c)
		} else {
			logger.Debug("skipping candidate", "video_id", c.VideoID, "title", c.Title)
		}
	}

	emitted := 0
	for r := range d.enrichAll(ctx, accepted) {
		if ctx.Err() != nil {
			break
		}
		if r.err != nil {
			logger.Warn("skipping candidate", "phase", EnrichRelated, "error", r.err)
			continue
		}
		emitted++
		sink.Push(models.RelatedSongEvent(r.song, emitted))
	}

	if err := ctx.Err(); err != nil {
		return emitted, failAt(EnrichRelated, err)
	}
	return emitted, nil
}

type enrichResult struct {
	song models.EnrichedSong
	err  error
}

// enrichAll enriches candidates with bounded parallelism and yields results in input order.
func (d *Discovery) enrichAll(ctx context.Context, candidates []models.Candidate) <-chan enrichResult {
	slots := make([]chan enrichResult, len(candidates))
	for i := range slots {
		slots[i] = make(chan enrichResult, 1)
	}

	go func() {
		sem := make(chan struct{}, d.opts.Concurrency)
		for i, c := range candidates {
			sem <- struct{}{}
			go func() {
				defer func() { <-sem }()
				slots[i] <- d.enrichOne(ctx, c)
			}()
		}
	}()

	out := make(chan enrichResult, len(candidates))
	go func() {
		defer close(out)
		for _, slot := range slots {
			out <- <-slot
		}
	}()
	return out
}

func (d *Discovery) enrichOne(ctx context.Context, c models.Candidate) (r enrichResult) {
	defer func() {
		if p := recover(); p != nil {
			r = enrichResult{err: fmt.Errorf("enrichment of %s panicked: %v", c.VideoID, p)}
		}
	}()

	song, err := d.enricher.Enrich(ctx, c)
	return enrichResult{song: song, err: err}
}
