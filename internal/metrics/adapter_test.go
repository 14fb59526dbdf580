package metrics

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
	"github.com/letmevibethatforyou/seal/memory"
	"github.com/letmevibethatforyou/seal/schema"
	"github.com/letmevibethatforyou/seal/sealtest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newInstrumented(t *testing.T) (*Adapter, *prometheus.Registry) {
	t.Helper()

	inner, err := memory.New()
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}
	reg := prometheus.NewRegistry()
	a, err := New(inner, reg)
	if err != nil {
		t.Fatalf("Failed to create metrics adapter: %v", err)
	}
	return a, reg
}

func TestConformance(t *testing.T) {
	sealtest.TestSearcher(t, func(t *testing.T) seal.Adapter {
		a, _ := newInstrumented(t)
		return a
	})
}

func TestRecordsOperations(t *testing.T) {
	a, _ := newInstrumented(t)
	engine := seal.NewEngine(a, sealtest.Schema())
	ctx := context.Background()

	if _, err := engine.CreateSchema(ctx); err != nil {
		t.Fatalf("CreateSchema failed: %v", err)
	}
	for _, doc := range sealtest.SimpleDocuments() {
		if _, err := engine.SaveDocument(ctx, sealtest.IndexSimple, doc); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}
	}
	if _, err := engine.SaveDocument(ctx, sealtest.IndexSimple, seal.Document{"title": "no id"}); err == nil {
		t.Fatal("Expected invalid document error")
	}
	if _, err := engine.Search(ctx, []string{sealtest.IndexSimple}); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if _, err := engine.Search(ctx, []string{sealtest.IndexSimple}, seal.Equal("a.b", 1)); err == nil {
		t.Fatal("Expected unsupported field error")
	}

	tests := []struct {
		operation, index, outcome string
		want                      float64
	}{
		{"create_index", sealtest.IndexSimple, OutcomeOK, 1},
		{"create_index", sealtest.IndexComplex, OutcomeOK, 1},
		{"save", sealtest.IndexSimple, OutcomeOK, 2},
		{"save", sealtest.IndexSimple, OutcomeInvalidDocument, 1},
		{"search", sealtest.IndexSimple, OutcomeOK, 1},
		{"search", sealtest.IndexSimple, OutcomeConfiguration, 1},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(a.operations.WithLabelValues(tt.operation, tt.index, tt.outcome))
		if got != tt.want {
			t.Errorf("Expected %v %s/%s/%s, got %v", tt.want, tt.operation, tt.index, tt.outcome, got)
		}
	}

	if count := testutil.CollectAndCount(a.hits); count != 1 {
		t.Errorf("Expected one search_hits series, got %d", count)
	}
	if count := testutil.CollectAndCount(a.duration); count == 0 {
		t.Error("Expected operation_duration_seconds to have observations")
	}
}

func TestSearchLabelJoinsIndexes(t *testing.T) {
	a, _ := newInstrumented(t)
	ctx := context.Background()

	for _, index := range []*schema.Index{sealtest.ComplexIndex(), sealtest.SimpleIndex()} {
		if _, err := a.SchemaManager().CreateIndex(ctx, index); err != nil {
			t.Fatalf("CreateIndex failed: %v", err)
		}
	}

	s := seal.NewSearch([]*schema.Index{sealtest.ComplexIndex(), sealtest.SimpleIndex()})
	if _, err := a.Searcher().Search(ctx, s); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	got := testutil.ToFloat64(a.operations.WithLabelValues("search", "complex,simple", OutcomeOK))
	if got != 1 {
		t.Errorf("Expected 1 search on complex,simple, got %v", got)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	inner, err := memory.New()
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}
	reg := prometheus.NewRegistry()

	if _, err := New(inner, reg); err != nil {
		t.Fatalf("Expected first registration to succeed, got %v", err)
	}
	if _, err := New(inner, reg); err == nil {
		t.Error("Expected duplicate registration to fail")
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{seal.ErrCanceled, OutcomeCanceled},
		{context.DeadlineExceeded, OutcomeCanceled},
		{errors.Wrap(seal.ErrIndexNotFound, "x"), OutcomeConfiguration},
		{seal.ErrTypeMismatch, OutcomeConfiguration},
		{seal.ErrInvalidDocument, OutcomeInvalidDocument},
		{seal.ErrBackendUnavailable, OutcomeBackendUnavailable},
		{errors.New("boom"), OutcomeError},
	}

	for _, tt := range tests {
		if got := Outcome(tt.err); got != tt.want {
			t.Errorf("Expected %s for %v, got %s", tt.want, tt.err, got)
		}
	}
}
