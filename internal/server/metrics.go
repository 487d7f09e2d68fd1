package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/services"
)

const namespace = "ytradio"

// Metrics holds the Prometheus collectors of the service, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Requests   *prometheus.CounterVec
	Events     *prometheus.CounterVec
	KeepAlives prometheus.Counter
	Discovery  prometheus.Histogram
	Provider   *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors. liveSessions backs the sessions gauge.
func NewMetrics(liveSessions func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_events_total",
			Help:      "Events written to event streams by kind.",
		}, []string{"kind"}),
		KeepAlives: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_keepalives_total",
			Help:      "Keep-alive comments written to idle event streams.",
		}),
		Discovery: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "discovery_duration_seconds",
			Help:      "Wall time of discovery runs.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}),
		Provider: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Metadata provider call latency by method and outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "outcome"}),
	}

	sessionsGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions",
		Help:      "Sessions currently held by the registry.",
	}, func() float64 {
		if liveSessions == nil {
			return 0
		}
		return float64(liveSessions())
	})

	m.registry.MustRegister(
		m.Requests, m.Events, m.KeepAlives, m.Discovery, m.Provider, sessionsGauge,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the registry for tests and embedding.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// InstrumentMetadata wraps provider so every call is timed into the provider histogram.
func (m *Metrics) InstrumentMetadata(provider services.MetadataProvider) services.MetadataProvider {
	return &instrumentedProvider{MetadataProvider: provider, hist: m.Provider}
}

type instrumentedProvider struct {
	services.MetadataProvider
	hist *prometheus.HistogramVec
}

func (p *instrumentedProvider) observe(method string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.hist.WithLabelValues(method, outcome).Observe(time.Since(started).Seconds())
}

func (p *instrumentedProvider) Search(ctx context.Context, query, filter string, limit int) (_ []models.Candidate, err error) {
	started := time.Now()
	defer func() { p.observe("search", started, err) }()
	return p.MetadataProvider.Search(ctx, query, filter, limit)
}

func (p *instrumentedProvider) GetSong(ctx context.Context, videoID string) (_ *models.TrackDetails, err error) {
	started := time.Now()
	defer func() { p.observe("get_song", started, err) }()
	return p.MetadataProvider.GetSong(ctx, videoID)
}

func (p *instrumentedProvider) GetWatchPlaylist(ctx context.Context, videoID string, limit int) (_ []models.Candidate, err error) {
	started := time.Now()
	defer func() { p.observe("get_watch_playlist", started, err) }()
	return p.MetadataProvider.GetWatchPlaylist(ctx, videoID, limit)
}
