package render

import (
	"bytes"
	"strings"
	"testing"

	"feeadmin/internal/core"
	"feeadmin/internal/services"
)

func exampleResult() services.MatrixResult {
	return services.MatrixResult{
		Terms: []core.Term{
			{ID: "t1", Name: "Term 1"},
			{ID: "t2", Name: "Term 2"},
		},
		Rows: []core.MatrixRow{
			{
				ClassID:    "c1",
				ClassName:  "Primary 1",
				CampusName: "Main",
				TermAmounts: map[string]core.Money{
					"t1": {Cents: 100000},
					"t2": {Cents: 120000},
				},
				AnnualAmount: core.Money{Cents: 50000},
				Total:        core.Money{Cents: 270000},
				LineItems: []core.MatrixLineItem{
					{TermID: "t1", Name: "tuition", Amount: core.Money{Cents: 100000}},
					{TermID: "t1", Name: "admission", Amount: core.Money{Cents: 50000}, IsAnnual: true},
					{TermID: "t2", Name: "tuition", Amount: core.Money{Cents: 120000}},
				},
			},
		},
	}
}

func TestMatrixTable(t *testing.T) {
	var buf bytes.Buffer
	if err := Matrix(&buf, exampleResult()); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"CAMPUS", "Term 1", "Term 2", "ANNUAL", "TOTAL", "Primary 1", "1000.00", "1200.00", "500.00", "2700.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMatrixTableMissingTermColumn(t *testing.T) {
	result := exampleResult()
	delete(result.Rows[0].TermAmounts, "t2")
	var buf bytes.Buffer
	if err := Matrix(&buf, result); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "-") {
		t.Errorf("missing term should render as dash:\n%s", buf.String())
	}
}

func TestMatrixTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Matrix(&buf, services.MatrixResult{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "no fee structures") {
		t.Errorf("unexpected empty output: %q", buf.String())
	}
}

func TestLineItemsTable(t *testing.T) {
	result := exampleResult()
	var buf bytes.Buffer
	if err := LineItems(&buf, result.Rows[0], result.Terms); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Main / Primary 1", "tuition", "admission", "annual", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStatusTable(t *testing.T) {
	lines := []services.StatusLine{
		{
			ClassID: "c1", ClassName: "Primary 1", CampusName: "Main",
			Expected:    core.Money{Cents: 270000},
			Collected:   core.Money{Cents: 100000},
			Outstanding: core.Money{Cents: 170000},
		},
	}
	var buf bytes.Buffer
	if err := Status(&buf, lines); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"OUTSTANDING", "2700.00", "1000.00", "1700.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDiscountsTable(t *testing.T) {
	discounts := []core.Discount{
		{ID: "d1", Name: "Sibling", Type: core.DiscountPercentage, Percentage: 10, Active: true},
		{ID: "d2", Name: "Bursary", Type: core.DiscountFixed, Amount: core.Money{Cents: 25000}},
	}
	var buf bytes.Buffer
	if err := Discounts(&buf, discounts); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "10%") {
		t.Errorf("percentage discount not rendered:\n%s", out)
	}
	if !strings.Contains(out, "250.00") {
		t.Errorf("fixed discount not rendered:\n%s", out)
	}
}
