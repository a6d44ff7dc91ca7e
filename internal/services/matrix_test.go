package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"feeadmin/internal/core"
	"feeadmin/internal/log"
)

type fakeAPI struct {
	mu sync.Mutex

	terms    []core.Term
	termsErr error

	classes    []core.ClassInfo
	classesErr error
	classCalls int

	summaries map[string][]core.StructureSummary
	listErr   map[string]error

	details     map[string]core.FeeStructure
	detailErr   map[string]error
	detailCalls []string

	statuses  []core.ClassFeeStatus
	statusErr error
}

func (f *fakeAPI) ListTerms(ctx context.Context, academicYearID string) ([]core.Term, error) {
	return f.terms, f.termsErr
}

func (f *fakeAPI) ListClasses(ctx context.Context, academicYearID string) ([]core.ClassInfo, error) {
	f.mu.Lock()
	f.classCalls++
	f.mu.Unlock()
	return f.classes, f.classesErr
}

func (f *fakeAPI) ListStructuresForTerm(ctx context.Context, termID string) ([]core.StructureSummary, error) {
	if err := f.listErr[termID]; err != nil {
		return nil, err
	}
	return f.summaries[termID], nil
}

func (f *fakeAPI) GetStructureDetail(ctx context.Context, structureID string) (core.FeeStructure, error) {
	f.mu.Lock()
	f.detailCalls = append(f.detailCalls, structureID)
	f.mu.Unlock()
	if err := f.detailErr[structureID]; err != nil {
		return core.FeeStructure{}, err
	}
	return f.details[structureID], nil
}

func (f *fakeAPI) ListClassFeeStatus(ctx context.Context, academicYearID string) ([]core.ClassFeeStatus, error) {
	return f.statuses, f.statusErr
}

func serviceLogger() *log.Logger {
	return log.NewWithHandler(slog.NewTextHandler(io.Discard, nil), log.ComponentApp)
}

func twoTermYear() []core.Term {
	return []core.Term{
		// Deliberately out of order; the service must sort by start date.
		{ID: "t2", AcademicYearID: "y1", Name: "Term 2", StartDate: core.MustDate("2024-05-01")},
		{ID: "t1", AcademicYearID: "y1", Name: "Term 1", StartDate: core.MustDate("2024-01-01")},
	}
}

func exampleAPI() *fakeAPI {
	return &fakeAPI{
		terms:   twoTermYear(),
		classes: []core.ClassInfo{{ID: "c1", Name: "Primary 1", CampusName: "Main"}},
		summaries: map[string][]core.StructureSummary{
			"t1": {{ID: "s1", ClassID: "c1", TermID: "t1"}},
			"t2": {{ID: "s2", ClassID: "c1", TermID: "t2"}},
		},
		details: map[string]core.FeeStructure{
			"s1": {
				StructureSummary: core.StructureSummary{ID: "s1", ClassID: "c1", TermID: "t1"},
				LineItems: []core.LineItem{
					{Name: "tuition", Amount: "1000"},
					{Name: "admission", Amount: "500", IsAnnual: true},
				},
			},
			"s2": {
				StructureSummary: core.StructureSummary{ID: "s2", ClassID: "c1", TermID: "t2"},
				LineItems: []core.LineItem{
					{Name: "tuition", Amount: "1200"},
					{Name: "admission", Amount: "500", IsAnnual: true},
				},
			},
		},
	}
}

func newMatrixService(api *fakeAPI) *MatrixService {
	logger := serviceLogger()
	return NewMatrixService(api, NewRosterProvider(api), 2, logger)
}

func TestMatrixServiceBuild(t *testing.T) {
	api := exampleAPI()
	service := newMatrixService(api)

	result, err := service.Build(context.Background(), "y1")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(result.Terms) != 2 || result.Terms[0].ID != "t1" {
		t.Fatalf("terms not sorted by start date: %+v", result.Terms)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
	row := result.Rows[0]
	if row.TermAmounts["t1"].Cents != 100000 || row.TermAmounts["t2"].Cents != 120000 {
		t.Errorf("term amounts wrong: %+v", row.TermAmounts)
	}
	if row.AnnualAmount.Cents != 50000 {
		t.Errorf("annual amount: expected 50000, got %d", row.AnnualAmount.Cents)
	}
	if row.Total.Cents != 270000 {
		t.Errorf("total: expected 270000, got %d", row.Total.Cents)
	}
}

func TestMatrixServiceTermFetchFailureDegrades(t *testing.T) {
	api := exampleAPI()
	api.listErr = map[string]error{"t2": errors.New("boom")}
	service := newMatrixService(api)

	result, err := service.Build(context.Background(), "y1")
	if err != nil {
		t.Fatalf("a failed term must not fail the build: %v", err)
	}
	row := result.Rows[0]
	if _, ok := row.TermAmounts["t2"]; ok {
		t.Error("failed term contributed amounts")
	}
	if row.Total.Cents != 150000 {
		t.Errorf("total: expected 150000 (t1 + annual), got %d", row.Total.Cents)
	}
}

func TestMatrixServiceDetailFetchFailureSkipsStructure(t *testing.T) {
	api := exampleAPI()
	api.detailErr = map[string]error{"s2": errors.New("boom")}
	service := newMatrixService(api)

	result, err := service.Build(context.Background(), "y1")
	if err != nil {
		t.Fatalf("a failed detail must not fail the build: %v", err)
	}
	row := result.Rows[0]
	if _, ok := row.TermAmounts["t2"]; ok {
		t.Error("skipped structure contributed amounts")
	}
	if row.TermAmounts["t1"].Cents != 100000 {
		t.Errorf("t1 amount: expected 100000, got %d", row.TermAmounts["t1"].Cents)
	}
}

func TestMatrixServiceRosterFailureAborts(t *testing.T) {
	api := exampleAPI()
	api.classesErr = errors.New("roster unavailable")
	service := newMatrixService(api)

	result, err := service.Build(context.Background(), "y1")
	if err == nil {
		t.Fatal("expected error when roster fetch fails")
	}
	if len(result.Rows) != 0 {
		t.Errorf("expected empty result, got %d rows", len(result.Rows))
	}
}

func TestMatrixServiceTermsFailureAborts(t *testing.T) {
	api := exampleAPI()
	api.termsErr = errors.New("terms unavailable")
	service := newMatrixService(api)

	if _, err := service.Build(context.Background(), "y1"); err == nil {
		t.Fatal("expected error when terms fetch fails")
	}
}

func TestMatrixServiceDedupBeforeDetailFetch(t *testing.T) {
	api := exampleAPI()
	// A superseded revision for the same (class, term) behind the current one.
	api.summaries["t1"] = append(api.summaries["t1"],
		core.StructureSummary{ID: "s1-old", ClassID: "c1", TermID: "t1"})
	service := newMatrixService(api)

	if _, err := service.Build(context.Background(), "y1"); err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, id := range api.detailCalls {
		if id == "s1-old" {
			t.Error("detail fetched for a superseded structure")
		}
	}
}

func TestMatrixServiceCancellation(t *testing.T) {
	api := exampleAPI()
	service := newMatrixService(api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := service.Build(ctx, "y1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMatrixServiceEmptyYear(t *testing.T) {
	api := &fakeAPI{}
	service := newMatrixService(api)

	result, err := service.Build(context.Background(), "y1")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(result.Rows) != 0 || len(result.Terms) != 0 {
		t.Errorf("expected empty result for year without terms: %+v", result)
	}
}

func TestRosterProviderCaches(t *testing.T) {
	api := exampleAPI()
	provider := NewRosterProvider(api)

	for i := 0; i < 3; i++ {
		if _, err := provider.Classes(context.Background(), "y1"); err != nil {
			t.Fatalf("classes: %v", err)
		}
	}
	if api.classCalls != 1 {
		t.Errorf("expected a single roster fetch, got %d", api.classCalls)
	}
}
