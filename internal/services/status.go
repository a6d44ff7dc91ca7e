package services

import (
	"context"
	"fmt"
	"sort"

	"feeadmin/internal/core"
	"feeadmin/internal/log"
)

// StatusAPI is the slice of the platform client the status report needs.
type StatusAPI interface {
	ListClassFeeStatus(ctx context.Context, academicYearID string) ([]core.ClassFeeStatus, error)
}

// StatusLine is one row of the collection dashboard: expected fees from the
// matrix joined with the platform's collection record for the class.
type StatusLine struct {
	ClassID     string
	ClassName   string
	CampusName  string
	Expected    core.Money
	Collected   core.Money
	Waived      core.Money
	Outstanding core.Money
}

// StatusService joins matrix totals with per-class collection records.
type StatusService struct {
	api    StatusAPI
	matrix *MatrixService
	roster *RosterProvider
	log    *log.Logger
}

func NewStatusService(api StatusAPI, matrix *MatrixService, roster *RosterProvider, logger *log.Logger) *StatusService {
	return &StatusService{
		api:    api,
		matrix: matrix,
		roster: roster,
		log:    logger.WithComponent(log.ComponentStatus),
	}
}

// Build produces the collection dashboard for one academic year. A class
// appears when it has expected fees, a collection record, or both; records
// for classes outside the year's roster are dropped like everywhere else.
func (s *StatusService) Build(ctx context.Context, academicYearID string) ([]StatusLine, error) {
	result, err := s.matrix.Build(ctx, academicYearID)
	if err != nil {
		return nil, err
	}
	statuses, err := s.api.ListClassFeeStatus(ctx, academicYearID)
	if err != nil {
		return nil, fmt.Errorf("list fee status: %w", err)
	}
	roster, err := s.roster.Classes(ctx, academicYearID)
	if err != nil {
		return nil, err
	}

	classes := make(map[string]core.ClassInfo, len(roster))
	for _, class := range roster {
		classes[class.ID] = class
	}

	lines := make(map[string]*StatusLine)
	line := func(classID string) *StatusLine {
		if l, ok := lines[classID]; ok {
			return l
		}
		class := classes[classID]
		l := &StatusLine{ClassID: classID, ClassName: class.Name, CampusName: class.CampusName}
		lines[classID] = l
		return l
	}

	for _, row := range result.Rows {
		line(row.ClassID).Expected = row.Total
	}
	for _, status := range statuses {
		if _, ok := classes[status.ClassID]; !ok {
			s.log.WarnContext(ctx, "collection record for class outside roster, dropped",
				log.FieldClassID, status.ClassID)
			continue
		}
		l := line(status.ClassID)
		l.Collected = status.Collected
		l.Waived = status.Waived
	}

	out := make([]StatusLine, 0, len(lines))
	for _, l := range lines {
		l.Outstanding = core.Money{Cents: l.Expected.Cents - l.Collected.Cents - l.Waived.Cents}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CampusName != out[j].CampusName {
			return out[i].CampusName < out[j].CampusName
		}
		return out[i].ClassName < out[j].ClassName
	})
	return out, nil
}
