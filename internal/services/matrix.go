// Package services contains the fetch pipelines that feed the pure
// aggregation functions in core: sequential per-term fetching with fault
// isolation, order-stable parallel detail resolution, and the roster and
// status joins behind the dashboards.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"feeadmin/internal/core"
	"feeadmin/internal/log"
)

// MatrixAPI is the slice of the platform client the matrix pipeline needs.
type MatrixAPI interface {
	ListTerms(ctx context.Context, academicYearID string) ([]core.Term, error)
	ListStructuresForTerm(ctx context.Context, termID string) ([]core.StructureSummary, error)
	GetStructureDetail(ctx context.Context, structureID string) (core.FeeStructure, error)
}

// MatrixResult is the built fee matrix plus the term columns it spans.
type MatrixResult struct {
	Terms []core.Term // ascending by start date
	Rows  []core.MatrixRow
}

// MatrixService drives the per-year fee matrix build: fetch terms and
// roster, then walk terms in chronological order collecting structures,
// and fold everything through core.BuildMatrix.
//
// Fault tolerance follows a fixed taxonomy: a failed term listing degrades
// that term to empty, a failed detail fetch skips that one structure, and
// only the terms or roster fetch failing aborts the build.
type MatrixService struct {
	api     MatrixAPI
	roster  *RosterProvider
	workers int
	log     *log.Logger
}

func NewMatrixService(api MatrixAPI, roster *RosterProvider, workers int, logger *log.Logger) *MatrixService {
	if workers < 1 {
		workers = 1
	}
	return &MatrixService{
		api:     api,
		roster:  roster,
		workers: workers,
		log:     logger.WithComponent(log.ComponentMatrix),
	}
}

// Build produces the fee matrix for one academic year.
func (s *MatrixService) Build(ctx context.Context, academicYearID string) (MatrixResult, error) {
	terms, err := s.api.ListTerms(ctx, academicYearID)
	if err != nil {
		return MatrixResult{}, fmt.Errorf("list terms: %w", err)
	}
	if len(terms) == 0 {
		return MatrixResult{}, nil
	}

	roster, err := s.roster.Classes(ctx, academicYearID)
	if err != nil {
		return MatrixResult{}, err
	}

	ordered := make([]core.Term, len(terms))
	copy(ordered, terms)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartDate.Before(ordered[j].StartDate)
	})

	// Terms are fetched one after another on purpose: it bounds load on
	// the platform and keeps a failed term isolated from the others.
	seen := make(map[string]bool)
	fetched := make([]core.TermStructures, 0, len(ordered))
	for _, term := range ordered {
		if err := ctx.Err(); err != nil {
			return MatrixResult{}, err
		}
		summaries, err := s.api.ListStructuresForTerm(ctx, term.ID)
		if err != nil {
			if ctxDone(err) {
				return MatrixResult{}, err
			}
			s.log.WarnContext(ctx, "term fetch failed, treating term as empty",
				log.FieldTermID, term.ID, log.FieldError, err)
			continue
		}

		// One structure per (class, term): the listing is newest first, so
		// the first summary seen for a pair wins and later ones are
		// superseded revisions. Filtering here also avoids fetching detail
		// for structures that would be discarded anyway.
		unique := make([]core.StructureSummary, 0, len(summaries))
		for _, summary := range summaries {
			key := summary.ClassID + "|" + summary.TermID
			if seen[key] {
				continue
			}
			seen[key] = true
			unique = append(unique, summary)
		}

		structures, err := s.resolveDetails(ctx, unique)
		if err != nil {
			return MatrixResult{}, err
		}
		fetched = append(fetched, core.TermStructures{TermID: term.ID, Structures: structures})
	}

	rows := core.BuildMatrix(ordered, fetched, roster)
	s.log.InfoContext(ctx, "fee matrix built",
		log.FieldYearID, academicYearID,
		"terms", len(ordered), "rows", len(rows))
	return MatrixResult{Terms: ordered, Rows: rows}, nil
}

// resolveDetails fetches structure details in parallel but slots results by
// list position, so downstream processing order matches the listing order
// regardless of completion order. A failed detail is logged and dropped;
// only context cancellation aborts the group.
func (s *MatrixService) resolveDetails(ctx context.Context, summaries []core.StructureSummary) ([]core.FeeStructure, error) {
	results := make([]*core.FeeStructure, len(summaries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, summary := range summaries {
		i, summary := i, summary
		g.Go(func() error {
			detail, err := s.api.GetStructureDetail(gctx, summary.ID)
			if err != nil {
				if ctxDone(err) || gctx.Err() != nil {
					return err
				}
				s.log.WarnContext(gctx, "structure detail fetch failed, skipping",
					log.FieldStructID, summary.ID, log.FieldError, err)
				return nil
			}
			results[i] = &detail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	structures := make([]core.FeeStructure, 0, len(summaries))
	for _, detail := range results {
		if detail != nil {
			structures = append(structures, *detail)
		}
	}
	return structures, nil
}

func ctxDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
