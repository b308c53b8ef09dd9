package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a priced catalog entry. The unit price is copied into document
// line items when a line is added; later price changes never rewrite
// existing documents.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit" validate:"required,max=50"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Unit        *string          `json:"unit,omitempty" validate:"omitempty,max=50"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

type ListProductsRequest struct {
	IsActive *bool
	Search   *string
	Limit    int
	Offset   int
}
