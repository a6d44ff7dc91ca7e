package services

import (
	"context"
	"errors"
	"testing"

	"feeadmin/internal/core"
)

func newStatusService(api *fakeAPI) *StatusService {
	logger := serviceLogger()
	roster := NewRosterProvider(api)
	matrix := NewMatrixService(api, roster, 2, logger)
	return NewStatusService(api, matrix, roster, logger)
}

func TestStatusServiceJoin(t *testing.T) {
	api := exampleAPI()
	api.classes = append(api.classes, core.ClassInfo{ID: "c2", Name: "Primary 2", CampusName: "Main"})
	api.statuses = []core.ClassFeeStatus{
		{ClassID: "c1", Collected: core.Money{Cents: 100000}, Waived: core.Money{Cents: 20000}},
		{ClassID: "c2", Collected: core.Money{Cents: 5000}}, // record without expected fees
		{ClassID: "zz", Collected: core.Money{Cents: 9999}}, // outside the roster
	}
	service := newStatusService(api)

	lines, err := service.Build(context.Background(), "y1")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %+v", len(lines), lines)
	}

	// Sorted by campus then class name.
	c1 := lines[0]
	if c1.ClassID != "c1" {
		t.Fatalf("expected c1 first, got %s", c1.ClassID)
	}
	if c1.Expected.Cents != 270000 {
		t.Errorf("expected: want 270000, got %d", c1.Expected.Cents)
	}
	if c1.Collected.Cents != 100000 || c1.Waived.Cents != 20000 {
		t.Errorf("collection record not joined: %+v", c1)
	}
	if c1.Outstanding.Cents != 150000 {
		t.Errorf("outstanding: want 150000, got %d", c1.Outstanding.Cents)
	}

	c2 := lines[1]
	if c2.Expected.Cents != 0 || c2.Collected.Cents != 5000 {
		t.Errorf("class without structures should still appear with its record: %+v", c2)
	}
	if c2.Outstanding.Cents != -5000 {
		t.Errorf("outstanding may go negative on overpayment, got %d", c2.Outstanding.Cents)
	}
}

func TestStatusServiceStatusFetchFailure(t *testing.T) {
	api := exampleAPI()
	api.statusErr = errors.New("boom")
	service := newStatusService(api)

	if _, err := service.Build(context.Background(), "y1"); err == nil {
		t.Fatal("expected error when status fetch fails")
	}
}

func TestStatusServiceSharesRosterFetch(t *testing.T) {
	api := exampleAPI()
	service := newStatusService(api)

	if _, err := service.Build(context.Background(), "y1"); err != nil {
		t.Fatalf("build: %v", err)
	}
	if api.classCalls != 1 {
		t.Errorf("matrix and status should share one roster fetch, got %d", api.classCalls)
	}
}
