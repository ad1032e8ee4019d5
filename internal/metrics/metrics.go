// Package metrics exposes prometheus instrumentation for world generation,
// meshing and the client loop.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "blueycraft"

// Chunk sources for ChunksReady.
const (
	SourceGenerated = "generated"
	SourceStore     = "store"
)

// Metrics holds every collector on a private registry.
// All methods are safe on a nil *Metrics and do nothing.
type Metrics struct {
	registry *prometheus.Registry

	ChunksReady      *prometheus.CounterVec
	ChunksMeshed     prometheus.Counter
	FacesEmitted     prometheus.Counter
	MeshDuration     prometheus.Histogram
	GenerateDuration prometheus.Histogram
	ActiveChunks     prometheus.Gauge
	StoreErrors      prometheus.Counter
	FrameDuration    prometheus.Histogram
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ChunksReady: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_ready_total",
			Help:      "Chunks whose voxel grid became available, by source.",
		}, []string{"source"}),
		ChunksMeshed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_meshed_total",
			Help:      "Chunk meshes built.",
		}),
		FacesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mesh_faces_total",
			Help:      "Quads emitted by the mesher.",
		}),
		MeshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mesh_duration_seconds",
			Help:      "Time to mesh one chunk.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		GenerateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generate_duration_seconds",
			Help:      "Time to produce one chunk grid, from store or generator.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		ActiveChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_chunks",
			Help:      "Chunks inside the current view distance.",
		}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Chunk store reads or writes that failed.",
		}),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Client frame time.",
			Buckets:   []float64{0.004, 0.008, 0.016, 0.033, 0.05, 0.1, 0.25},
		}),
	}

	m.registry.MustRegister(
		m.ChunksReady,
		m.ChunksMeshed,
		m.FacesEmitted,
		m.MeshDuration,
		m.GenerateDuration,
		m.ActiveChunks,
		m.StoreErrors,
		m.FrameDuration,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveChunk records a chunk grid becoming available.
func (m *Metrics) ObserveChunk(source string, d time.Duration) {
	if m == nil {
		return
	}
	m.ChunksReady.WithLabelValues(source).Inc()
	m.GenerateDuration.Observe(d.Seconds())
}

// ObserveMesh records one mesher run.
func (m *Metrics) ObserveMesh(faces int, d time.Duration) {
	if m == nil {
		return
	}
	m.ChunksMeshed.Inc()
	m.FacesEmitted.Add(float64(faces))
	m.MeshDuration.Observe(d.Seconds())
}

// SetActiveChunks sets the active chunk gauge.
func (m *Metrics) SetActiveChunks(n int) {
	if m == nil {
		return
	}
	m.ActiveChunks.Set(float64(n))
}

// StoreError counts a failed store operation.
func (m *Metrics) StoreError() {
	if m == nil {
		return
	}
	m.StoreErrors.Inc()
}

// ObserveFrame records one client frame.
func (m *Metrics) ObserveFrame(d time.Duration) {
	if m == nil {
		return
	}
	m.FrameDuration.Observe(d.Seconds())
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics endpoint listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
