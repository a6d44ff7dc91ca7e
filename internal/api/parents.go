package api

import (
	"context"
	"fmt"
	"time"

	"feeadmin/internal/core"
)

type parentDTO struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// ParentInput is the payload for creating or updating a parent record.
type ParentInput struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,min=7,max=20"`
	Address   string `json:"address" validate:"omitempty,max=500"`
}

func (d parentDTO) toCore() core.Parent {
	return core.Parent{
		ID:        d.ID,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Phone:     d.Phone,
		Address:   d.Address,
		CreatedAt: d.CreatedAt,
	}
}

// ListParents returns all parent records.
func (c *Client) ListParents(ctx context.Context) ([]core.Parent, error) {
	var dtos []parentDTO
	if err := c.get(ctx, "/parents", &dtos); err != nil {
		return nil, err
	}
	parents := make([]core.Parent, 0, len(dtos))
	for _, d := range dtos {
		parents = append(parents, d.toCore())
	}
	return parents, nil
}

// CreateParent validates and creates a parent record.
func (c *Client) CreateParent(ctx context.Context, input ParentInput) (core.Parent, error) {
	if err := c.validate.Struct(input); err != nil {
		return core.Parent{}, fmt.Errorf("validate parent: %w", err)
	}
	var dto parentDTO
	if err := c.post(ctx, "/parents", input, &dto); err != nil {
		return core.Parent{}, err
	}
	return dto.toCore(), nil
}

// UpdateParent validates and replaces a parent record.
func (c *Client) UpdateParent(ctx context.Context, parentID string, input ParentInput) (core.Parent, error) {
	if err := c.validate.Struct(input); err != nil {
		return core.Parent{}, fmt.Errorf("validate parent: %w", err)
	}
	var dto parentDTO
	if err := c.put(ctx, "/parents/"+parentID, input, &dto); err != nil {
		return core.Parent{}, err
	}
	return dto.toCore(), nil
}
