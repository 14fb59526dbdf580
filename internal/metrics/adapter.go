// Package metrics instruments a seal.Adapter with Prometheus metrics.
package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
	"github.com/letmevibethatforyou/seal/schema"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeOK                 = "ok"
	OutcomeCanceled           = "canceled"
	OutcomeConfiguration      = "configuration"
	OutcomeInvalidDocument    = "invalid_document"
	OutcomeBackendUnavailable = "backend_unavailable"
	OutcomeError              = "error"
)

// Adapter decorates another adapter and records every call.
type Adapter struct {
	next seal.Adapter

	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	hits       *prometheus.HistogramVec
}

// New wraps next and registers the metrics with reg.
func New(next seal.Adapter, reg prometheus.Registerer) (*Adapter, error) {
	a := &Adapter{
		next: next,
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "seal",
				Name:      "operations_total",
				Help:      "Total number of adapter operations",
			},
			[]string{"operation", "index", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "seal",
				Name:      "operation_duration_seconds",
				Help:      "Adapter operation duration in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"operation", "index"},
		),
		hits: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "seal",
				Name:      "search_hits",
				Help:      "Number of documents matching a search before pagination",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"index"},
		),
	}

	for _, c := range []prometheus.Collector{a.operations, a.duration, a.hits} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register metrics")
		}
	}
	return a, nil
}

func (a *Adapter) Indexer() seal.Indexer             { return indexer{a} }
func (a *Adapter) Searcher() seal.Searcher           { return searcher{a} }
func (a *Adapter) SchemaManager() seal.SchemaManager { return schemaManager{a} }

func (a *Adapter) observe(operation, index string, start time.Time, err error) {
	a.duration.WithLabelValues(operation, index).Observe(time.Since(start).Seconds())
	a.operations.WithLabelValues(operation, index, Outcome(err)).Inc()
}

// Outcome classifies an error for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.IsAny(err, seal.ErrCanceled, context.Canceled, context.DeadlineExceeded):
		return OutcomeCanceled
	case seal.IsConfigurationError(err):
		return OutcomeConfiguration
	case errors.Is(err, seal.ErrInvalidDocument):
		return OutcomeInvalidDocument
	case errors.Is(err, seal.ErrBackendUnavailable):
		return OutcomeBackendUnavailable
	default:
		return OutcomeError
	}
}

type indexer struct{ a *Adapter }

func (i indexer) Save(ctx context.Context, index *schema.Index, doc seal.Document, opts ...seal.WriteOption) (seal.Task, error) {
	start := time.Now()
	task, err := i.a.next.Indexer().Save(ctx, index, doc, opts...)
	i.a.observe("save", index.Name(), start, err)
	return task, err
}

func (i indexer) Delete(ctx context.Context, index *schema.Index, identifier string, opts ...seal.WriteOption) (seal.Task, error) {
	start := time.Now()
	task, err := i.a.next.Indexer().Delete(ctx, index, identifier, opts...)
	i.a.observe("delete", index.Name(), start, err)
	return task, err
}

type searcher struct{ a *Adapter }

func (s searcher) Search(ctx context.Context, search *seal.Search) (*seal.Result, error) {
	names := make([]string, 0, len(search.Indexes))
	for _, index := range search.Indexes {
		if index != nil {
			names = append(names, index.Name())
		}
	}
	label := strings.Join(names, ",")

	start := time.Now()
	res, err := s.a.next.Searcher().Search(ctx, search)
	s.a.observe("search", label, start, err)
	if err == nil {
		s.a.hits.WithLabelValues(label).Observe(float64(res.Total()))
	}
	return res, err
}

type schemaManager struct{ a *Adapter }

func (m schemaManager) CreateIndex(ctx context.Context, index *schema.Index, opts ...seal.WriteOption) (seal.Task, error) {
	start := time.Now()
	task, err := m.a.next.SchemaManager().CreateIndex(ctx, index, opts...)
	m.a.observe("create_index", index.Name(), start, err)
	return task, err
}

func (m schemaManager) DropIndex(ctx context.Context, index *schema.Index, opts ...seal.WriteOption) (seal.Task, error) {
	start := time.Now()
	task, err := m.a.next.SchemaManager().DropIndex(ctx, index, opts...)
	m.a.observe("drop_index", index.Name(), start, err)
	return task, err
}

func (m schemaManager) ExistIndex(ctx context.Context, index *schema.Index) (bool, error) {
	start := time.Now()
	exists, err := m.a.next.SchemaManager().ExistIndex(ctx, index)
	m.a.observe("exist_index", index.Name(), start, err)
	return exists, err
}

var _ seal.Adapter = (*Adapter)(nil)
