package api

import (
	"context"
	"fmt"

	"feeadmin/internal/core"
)

type academicYearDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsCurrent bool   `json:"is_current"`
}

type termDTO struct {
	ID             string `json:"id"`
	AcademicYearID string `json:"academic_year_id"`
	Name           string `json:"name"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
}

type classDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Campus struct {
		Name string `json:"name"`
	} `json:"campus"`
}

// ListAcademicYears returns all academic years known to the platform.
func (c *Client) ListAcademicYears(ctx context.Context) ([]core.AcademicYear, error) {
	var dtos []academicYearDTO
	if err := c.get(ctx, "/academic-years", &dtos); err != nil {
		return nil, err
	}
	years := make([]core.AcademicYear, 0, len(dtos))
	for _, d := range dtos {
		year := core.AcademicYear{ID: d.ID, Name: d.Name, IsCurrent: d.IsCurrent}
		// Year boundary dates are informational; a malformed one stays zero.
		year.StartDate, _ = core.ParseDate(d.StartDate)
		year.EndDate, _ = core.ParseDate(d.EndDate)
		years = append(years, year)
	}
	return years, nil
}

// ListTerms returns the terms of one academic year. Term start dates drive
// anchor-term selection, so a malformed date is an error rather than a
// silently zeroed field.
func (c *Client) ListTerms(ctx context.Context, academicYearID string) ([]core.Term, error) {
	var dtos []termDTO
	if err := c.get(ctx, "/academic-years/"+academicYearID+"/terms", &dtos); err != nil {
		return nil, err
	}
	terms := make([]core.Term, 0, len(dtos))
	for _, d := range dtos {
		start, err := core.ParseDate(d.StartDate)
		if err != nil {
			return nil, fmt.Errorf("term %s: bad start date %q: %w", d.ID, d.StartDate, err)
		}
		end, err := core.ParseDate(d.EndDate)
		if err != nil {
			return nil, fmt.Errorf("term %s: bad end date %q: %w", d.ID, d.EndDate, err)
		}
		terms = append(terms, core.Term{
			ID:             d.ID,
			AcademicYearID: d.AcademicYearID,
			Name:           d.Name,
			StartDate:      start,
			EndDate:        end,
		})
	}
	return terms, nil
}

// ListClasses returns the class roster of one academic year.
func (c *Client) ListClasses(ctx context.Context, academicYearID string) ([]core.ClassInfo, error) {
	var dtos []classDTO
	if err := c.get(ctx, "/academic-years/"+academicYearID+"/classes", &dtos); err != nil {
		return nil, err
	}
	classes := make([]core.ClassInfo, 0, len(dtos))
	for _, d := range dtos {
		classes = append(classes, core.ClassInfo{
			ID:         d.ID,
			Name:       d.Name,
			CampusName: d.Campus.Name,
		})
	}
	return classes, nil
}
