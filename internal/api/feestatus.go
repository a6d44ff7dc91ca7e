package api

import (
	"context"

	"feeadmin/internal/core"
)

type classFeeStatusDTO struct {
	ClassID   string `json:"class_id"`
	Collected string `json:"collected"`
	Waived    string `json:"waived"`
}

// ListClassFeeStatus returns the platform's per-class collection records
// for an academic year. Records with unparseable amounts are kept with the
// bad field zeroed so one corrupt row does not hide a whole class.
func (c *Client) ListClassFeeStatus(ctx context.Context, academicYearID string) ([]core.ClassFeeStatus, error) {
	var dtos []classFeeStatusDTO
	if err := c.get(ctx, "/academic-years/"+academicYearID+"/fee-status", &dtos); err != nil {
		return nil, err
	}
	statuses := make([]core.ClassFeeStatus, 0, len(dtos))
	for _, d := range dtos {
		status := core.ClassFeeStatus{ClassID: d.ClassID}
		if cents, err := core.ParseAmountToCents(d.Collected); err == nil {
			status.Collected = core.Money{Cents: cents}
		} else {
			c.log.Warn("fee status has unparseable collected amount",
				"class_id", d.ClassID, "amount", d.Collected)
		}
		if cents, err := core.ParseAmountToCents(d.Waived); err == nil {
			status.Waived = core.Money{Cents: cents}
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
