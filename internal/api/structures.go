package api

import (
	"context"
	"fmt"
	"time"

	"feeadmin/internal/core"
)

type structureSummaryDTO struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"class_id"`
	TermID    string    `json:"term_id"`
	CreatedAt time.Time `json:"created_at"`
}

type lineItemDTO struct {
	ItemName string `json:"item_name"`
	Amount   string `json:"amount"`
	IsAnnual bool   `json:"is_annual"`
}

type structureDetailDTO struct {
	structureSummaryDTO
	LineItems []lineItemDTO `json:"line_items"`
}

// LineItemInput is one charge of a new fee structure.
type LineItemInput struct {
	ItemName string `json:"item_name" validate:"required"`
	Amount   string `json:"amount" validate:"required"`
	IsAnnual bool   `json:"is_annual"`
}

// CreateFeeStructureInput is the payload for creating a fee structure. A
// new structure for an existing (class, term) pair supersedes the old one;
// the platform keeps both and lists the newest first.
type CreateFeeStructureInput struct {
	ClassID   string          `json:"class_id" validate:"required"`
	TermID    string          `json:"term_id" validate:"required"`
	LineItems []LineItemInput `json:"line_items" validate:"required,min=1,dive"`
}

// ListStructuresForTerm returns the summary form of every fee structure
// scoped to the term, newest first per class (ordering contract of the
// platform; assumed, not verified).
func (c *Client) ListStructuresForTerm(ctx context.Context, termID string) ([]core.StructureSummary, error) {
	var dtos []structureSummaryDTO
	if err := c.get(ctx, "/terms/"+termID+"/fee-structures", &dtos); err != nil {
		return nil, err
	}
	summaries := make([]core.StructureSummary, 0, len(dtos))
	for _, d := range dtos {
		summaries = append(summaries, core.StructureSummary(d))
	}
	return summaries, nil
}

// GetStructureDetail returns the full structure including line items.
func (c *Client) GetStructureDetail(ctx context.Context, structureID string) (core.FeeStructure, error) {
	var dto structureDetailDTO
	if err := c.get(ctx, "/fee-structures/"+structureID, &dto); err != nil {
		return core.FeeStructure{}, err
	}
	structure := core.FeeStructure{
		StructureSummary: core.StructureSummary(dto.structureSummaryDTO),
		LineItems:        make([]core.LineItem, 0, len(dto.LineItems)),
	}
	for _, item := range dto.LineItems {
		structure.LineItems = append(structure.LineItems, core.LineItem{
			Name:     item.ItemName,
			Amount:   item.Amount,
			IsAnnual: item.IsAnnual,
		})
	}
	return structure, nil
}

// CreateFeeStructure validates and submits a new fee structure, returning
// its summary. Amounts are checked client-side before the call so a typo
// fails fast instead of becoming a silently dropped line item later.
func (c *Client) CreateFeeStructure(ctx context.Context, input CreateFeeStructureInput) (core.StructureSummary, error) {
	if err := c.validate.Struct(input); err != nil {
		return core.StructureSummary{}, fmt.Errorf("validate fee structure: %w", err)
	}
	for _, item := range input.LineItems {
		if _, err := core.ParseAmountToCents(item.Amount); err != nil {
			return core.StructureSummary{}, fmt.Errorf("line item %q: %w", item.ItemName, err)
		}
	}
	var dto structureSummaryDTO
	if err := c.post(ctx, "/fee-structures", input, &dto); err != nil {
		return core.StructureSummary{}, err
	}
	return core.StructureSummary(dto), nil
}
