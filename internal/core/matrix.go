package core

import "sort"

type (
	// TermStructures carries the fee structures fetched for one term, in
	// the order the API listed them (most recent first per class and term).
	// A term that failed to fetch is simply absent from the input.
	TermStructures struct {
		TermID     string
		Structures []FeeStructure
	}

	// MatrixLineItem is one charge contributing to a matrix row, kept for
	// drill-down display. Annual items carry the anchor term's ID.
	MatrixLineItem struct {
		TermID   string
		Name     string
		Amount   Money
		IsAnnual bool
	}

	// MatrixRow is the derived per-class aggregation of all term charges
	// plus annual charges. TermAmounts maps term ID to the summed
	// non-annual amount for that term.
	MatrixRow struct {
		ClassID      string
		ClassName    string
		CampusName   string
		TermAmounts  map[string]Money
		AnnualAmount Money
		Total        Money
		LineItems    []MatrixLineItem
	}
)

// BuildMatrix folds the fetched fee structures of one academic year into one
// MatrixRow per class. It is a pure function over already-fetched data: fetch
// ordering decides the outcome, so callers must pass structures in the order
// the API listed them.
//
// Rules:
//   - Terms are processed ascending by start date; the earliest term is the
//     anchor term for annual charges.
//   - For each (class, term) pair only the first structure encountered is
//     used; later ones are revisions already superseded.
//   - Structures for classes outside the roster are dropped (cross-year
//     leakage guard).
//   - Annual line items count once per (class, name+amount) and only when
//     they appear in the anchor term; non-annual items accumulate into the
//     term's column.
//   - Line items whose amount does not parse are dropped.
//
// Rows are sorted by campus name, then class name. Classes with no structure
// in any term never appear.
func BuildMatrix(terms []Term, fetched []TermStructures, roster []ClassInfo) []MatrixRow {
	if len(terms) == 0 {
		return nil
	}

	ordered := make([]Term, len(terms))
	copy(ordered, terms)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartDate.Before(ordered[j].StartDate)
	})
	anchorTermID := ordered[0].ID

	classes := make(map[string]ClassInfo, len(roster))
	for _, c := range roster {
		classes[c.ID] = c
	}

	byTerm := make(map[string][]FeeStructure, len(fetched))
	for _, ts := range fetched {
		byTerm[ts.TermID] = append(byTerm[ts.TermID], ts.Structures...)
	}

	rows := make(map[string]*MatrixRow)
	seenStructure := make(map[string]bool) // class|term
	seenAnnual := make(map[string]bool)    // class|name|rawAmount

	for _, term := range ordered {
		for _, s := range byTerm[term.ID] {
			structKey := s.ClassID + "|" + term.ID
			if seenStructure[structKey] {
				continue
			}
			seenStructure[structKey] = true

			class, ok := classes[s.ClassID]
			if !ok {
				continue
			}

			row := rows[s.ClassID]
			if row == nil {
				row = &MatrixRow{
					ClassID:     class.ID,
					ClassName:   class.Name,
					CampusName:  class.CampusName,
					TermAmounts: make(map[string]Money),
				}
				rows[s.ClassID] = row
			}

			for _, item := range s.LineItems {
				cents, err := ParseAmountToCents(item.Amount)
				if err != nil {
					continue
				}
				if item.IsAnnual {
					// Annual charges belong to the anchor term only.
					if term.ID != anchorTermID {
						continue
					}
					annualKey := s.ClassID + "|" + item.Name + item.Amount
					if !seenAnnual[annualKey] {
						seenAnnual[annualKey] = true
						row.AnnualAmount.Cents += cents
					}
					row.LineItems = append(row.LineItems, MatrixLineItem{
						TermID:   term.ID,
						Name:     item.Name,
						Amount:   Money{Cents: cents},
						IsAnnual: true,
					})
					continue
				}
				row.TermAmounts[term.ID] = row.TermAmounts[term.ID].Add(Money{Cents: cents})
				row.LineItems = append(row.LineItems, MatrixLineItem{
					TermID: term.ID,
					Name:   item.Name,
					Amount: Money{Cents: cents},
				})
			}
		}
	}

	result := make([]MatrixRow, 0, len(rows))
	for _, row := range rows {
		total := row.AnnualAmount
		for _, amount := range row.TermAmounts {
			total = total.Add(amount)
		}
		row.Total = total
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CampusName != result[j].CampusName {
			return result[i].CampusName < result[j].CampusName
		}
		return result[i].ClassName < result[j].ClassName
	})
	return result
}
