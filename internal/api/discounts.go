package api

import (
	"context"
	"fmt"

	"feeadmin/internal/core"
)

type discountDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Percentage int    `json:"percentage"`
	Amount     string `json:"amount"`
	Active     bool   `json:"active"`
}

// DiscountInput is the payload for creating a school-wide discount. Fixed
// discounts carry a decimal amount, percentage discounts a 1-100 percent.
type DiscountInput struct {
	Name       string `json:"name" validate:"required"`
	Type       string `json:"type" validate:"required,oneof=percentage fixed"`
	Percentage int    `json:"percentage" validate:"required_if=Type percentage,omitempty,min=1,max=100"`
	Amount     string `json:"amount" validate:"required_if=Type fixed"`
}

func (c *Client) discountFromDTO(d discountDTO) core.Discount {
	discount := core.Discount{
		ID:         d.ID,
		Name:       d.Name,
		Type:       core.DiscountType(d.Type),
		Percentage: d.Percentage,
		Active:     d.Active,
	}
	if d.Amount != "" {
		cents, err := core.ParseAmountToCents(d.Amount)
		if err != nil {
			c.log.Warn("discount has unparseable amount",
				"discount_id", d.ID, "amount", d.Amount)
		} else {
			discount.Amount = core.Money{Cents: cents}
		}
	}
	return discount
}

// ListDiscounts returns every global discount, active or not.
func (c *Client) ListDiscounts(ctx context.Context) ([]core.Discount, error) {
	var dtos []discountDTO
	if err := c.get(ctx, "/discounts", &dtos); err != nil {
		return nil, err
	}
	discounts := make([]core.Discount, 0, len(dtos))
	for _, d := range dtos {
		discounts = append(discounts, c.discountFromDTO(d))
	}
	return discounts, nil
}

// CreateDiscount validates and creates a global discount.
func (c *Client) CreateDiscount(ctx context.Context, input DiscountInput) (core.Discount, error) {
	if err := c.validate.Struct(input); err != nil {
		return core.Discount{}, fmt.Errorf("validate discount: %w", err)
	}
	if input.Type == string(core.DiscountFixed) {
		if _, err := core.ParseAmountToCents(input.Amount); err != nil {
			return core.Discount{}, fmt.Errorf("discount amount %q: %w", input.Amount, err)
		}
	}
	var dto discountDTO
	if err := c.post(ctx, "/discounts", input, &dto); err != nil {
		return core.Discount{}, err
	}
	return c.discountFromDTO(dto), nil
}

// SetDiscountActive toggles a discount on or off.
func (c *Client) SetDiscountActive(ctx context.Context, discountID string, active bool) (core.Discount, error) {
	var dto discountDTO
	body := map[string]bool{"active": active}
	if err := c.patch(ctx, "/discounts/"+discountID, body, &dto); err != nil {
		return core.Discount{}, err
	}
	return c.discountFromDTO(dto), nil
}
