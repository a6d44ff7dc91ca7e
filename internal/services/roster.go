package services

import (
	"context"
	"fmt"
	"time"

	"feeadmin/internal/cache"
	"feeadmin/internal/core"
)

// ClassLister fetches the class roster of an academic year.
type ClassLister interface {
	ListClasses(ctx context.Context, academicYearID string) ([]core.ClassInfo, error)
}

// RosterProvider memoizes class rosters per academic year so the matrix and
// status pipelines of one run share a single fetch. The cache lives only for
// the process lifetime.
type RosterProvider struct {
	api   ClassLister
	cache *cache.LRU[[]core.ClassInfo]
}

func NewRosterProvider(api ClassLister) *RosterProvider {
	return &RosterProvider{
		api:   api,
		cache: cache.NewLRU[[]core.ClassInfo](8, 5*time.Minute),
	}
}

// Classes returns the roster of the given year, fetching it at most once
// per cache window.
func (p *RosterProvider) Classes(ctx context.Context, academicYearID string) ([]core.ClassInfo, error) {
	if classes, ok := p.cache.Get(academicYearID); ok {
		return classes, nil
	}
	classes, err := p.api.ListClasses(ctx, academicYearID)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	p.cache.Set(academicYearID, classes)
	return classes, nil
}
