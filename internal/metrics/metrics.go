package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"actionScope/internal/model"
)

const namespace = "actionscope"

// Recorder collects classification counters. A nil *Recorder records nothing.
type Recorder struct {
	registry     *prometheus.Registry
	actions      *prometheus.CounterVec
	unclassified *prometheus.CounterVec
	blocks       prometheus.Counter
	lastBlock    prometheus.Gauge
	blockSeconds prometheus.Histogram
}

// New registers the collectors on a fresh registry together with the Go and process
// collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Classified actions by kind.",
		}, []string{"kind"}),
		unclassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unclassified_total",
			Help:      "Unclassified traces by reason.",
		}, []string{"reason"}),
		blocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_total",
			Help:      "Blocks traced and classified.",
		}),
		lastBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_block",
			Help:      "Last fully processed block.",
		}),
		blockSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "block_duration_seconds",
			Help:      "Time to trace and classify one block.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
	reg.MustRegister(
		r.actions,
		r.unclassified,
		r.blocks,
		r.lastBlock,
		r.blockSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveActions counts a classified batch.
func (r *Recorder) ObserveActions(actions []model.Action) {
	if r == nil {
		return
	}
	for _, action := range actions {
		r.actions.WithLabelValues(string(action.Kind)).Inc()
		if action.Unclassified != nil {
			r.unclassified.WithLabelValues(action.Unclassified.Reason).Inc()
		}
	}
}

// ObserveBlock records a traced and classified block.
func (r *Recorder) ObserveBlock(took time.Duration) {
	if r == nil {
		return
	}
	r.blocks.Inc()
	r.blockSeconds.Observe(took.Seconds())
}

// SetLastBlock records the last block whose actions were stored.
func (r *Recorder) SetLastBlock(number uint64) {
	if r == nil {
		return
	}
	r.lastBlock.Set(float64(number))
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", zap.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
