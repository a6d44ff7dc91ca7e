// Package render formats domain data as terminal tables. It is pure
// formatting: everything here takes already-built data and an io.Writer.
package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"feeadmin/internal/core"
	"feeadmin/internal/services"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// Matrix prints the per-class fee matrix with one column per term plus the
// annual and total columns.
func Matrix(w io.Writer, result services.MatrixResult) error {
	if len(result.Rows) == 0 {
		_, err := fmt.Fprintln(w, "no fee structures found")
		return err
	}

	tw := newTabWriter(w)
	fmt.Fprint(tw, "CAMPUS\tCLASS")
	for _, term := range result.Terms {
		fmt.Fprintf(tw, "\t%s", term.Name)
	}
	fmt.Fprint(tw, "\tANNUAL\tTOTAL\n")

	for _, row := range result.Rows {
		fmt.Fprintf(tw, "%s\t%s", row.CampusName, row.ClassName)
		for _, term := range result.Terms {
			if amount, ok := row.TermAmounts[term.ID]; ok {
				fmt.Fprintf(tw, "\t%s", amount)
			} else {
				fmt.Fprint(tw, "\t-")
			}
		}
		fmt.Fprintf(tw, "\t%s\t%s\n", row.AnnualAmount, row.Total)
	}
	return tw.Flush()
}

// LineItems prints the drill-down charge list of one matrix row, term by
// term in the given term order.
func LineItems(w io.Writer, row core.MatrixRow, terms []core.Term) error {
	fmt.Fprintf(w, "%s / %s\n", row.CampusName, row.ClassName)

	names := make(map[string]string, len(terms))
	for _, term := range terms {
		names[term.ID] = term.Name
	}

	tw := newTabWriter(w)
	fmt.Fprint(tw, "TERM\tITEM\tAMOUNT\t\n")
	for _, item := range row.LineItems {
		kind := ""
		if item.IsAnnual {
			kind = "annual"
		}
		name := names[item.TermID]
		if name == "" {
			name = item.TermID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, item.Name, item.Amount, kind)
	}
	fmt.Fprintf(tw, "\tTOTAL\t%s\t\n", row.Total)
	return tw.Flush()
}

// Status prints the per-class collection dashboard.
func Status(w io.Writer, lines []services.StatusLine) error {
	if len(lines) == 0 {
		_, err := fmt.Fprintln(w, "no fee status records found")
		return err
	}
	tw := newTabWriter(w)
	fmt.Fprint(tw, "CAMPUS\tCLASS\tEXPECTED\tCOLLECTED\tWAIVED\tOUTSTANDING\n")
	for _, line := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			line.CampusName, line.ClassName,
			line.Expected, line.Collected, line.Waived, line.Outstanding)
	}
	return tw.Flush()
}

// Parents prints the parent directory.
func Parents(w io.Writer, parents []core.Parent) error {
	if len(parents) == 0 {
		_, err := fmt.Fprintln(w, "no parents found")
		return err
	}
	tw := newTabWriter(w)
	fmt.Fprint(tw, "ID\tNAME\tEMAIL\tPHONE\n")
	for _, parent := range parents {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", parent.ID, parent.FullName(), parent.Email, parent.Phone)
	}
	return tw.Flush()
}

// Discounts prints the global discount list.
func Discounts(w io.Writer, discounts []core.Discount) error {
	if len(discounts) == 0 {
		_, err := fmt.Fprintln(w, "no discounts found")
		return err
	}
	tw := newTabWriter(w)
	fmt.Fprint(tw, "ID\tNAME\tVALUE\tACTIVE\n")
	for _, discount := range discounts {
		value := discount.Amount.String()
		if discount.Type == core.DiscountPercentage {
			value = fmt.Sprintf("%d%%", discount.Percentage)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", discount.ID, discount.Name, value, discount.Active)
	}
	return tw.Flush()
}

// Years prints the academic year list.
func Years(w io.Writer, years []core.AcademicYear) error {
	tw := newTabWriter(w)
	fmt.Fprint(tw, "ID\tNAME\tSTART\tEND\tCURRENT\n")
	for _, year := range years {
		current := ""
		if year.IsCurrent {
			current = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", year.ID, year.Name, year.StartDate, year.EndDate, current)
	}
	return tw.Flush()
}

// Terms prints the terms of one academic year.
func Terms(w io.Writer, terms []core.Term) error {
	tw := newTabWriter(w)
	fmt.Fprint(tw, "ID\tNAME\tSTART\tEND\n")
	for _, term := range terms {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", term.ID, term.Name, term.StartDate, term.EndDate)
	}
	return tw.Flush()
}
