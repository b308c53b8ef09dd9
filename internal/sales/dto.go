package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItemRequest adds one line to a quotation or invoice. When a product is
// referenced, its name, description and unit price are snapshotted at
// add-time unless the request overrides them.
type LineItemRequest struct {
	ProductID   *int64           `json:"product_id,omitempty" validate:"omitempty,gt=0"`
	Name        string           `json:"name" validate:"required_without=ProductID,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	Quantity    int64            `json:"quantity" validate:"required,gt=0"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
}

// CustomerSnapshotRequest supplies customer fields directly instead of
// referencing a customer record.
type CustomerSnapshotRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
	TaxID   *string `json:"tax_id,omitempty" validate:"omitempty,max=50"`
}

type ImageRequest struct {
	Path    string  `json:"path" validate:"required,max=500"`
	Caption *string `json:"caption,omitempty" validate:"omitempty,max=500"`
}

type CreateQuotationRequest struct {
	CustomerID *int64                   `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	Customer   *CustomerSnapshotRequest `json:"customer,omitempty"`
	Lines      []LineItemRequest        `json:"lines" validate:"required,min=1,dive"`
	Discount   decimal.Decimal          `json:"discount"`
	VATRate    decimal.Decimal          `json:"vat_rate"`
	Notes      *string                  `json:"notes,omitempty" validate:"omitempty,max=2000"`
	ValidUntil *time.Time               `json:"valid_until,omitempty"`
	Images     []ImageRequest           `json:"images,omitempty" validate:"omitempty,dive"`
}

type UpdateQuotationRequest struct {
	Lines      *[]LineItemRequest `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
	Discount   *decimal.Decimal   `json:"discount,omitempty"`
	VATRate    *decimal.Decimal   `json:"vat_rate,omitempty"`
	Notes      *string            `json:"notes,omitempty" validate:"omitempty,max=2000"`
	ValidUntil *time.Time         `json:"valid_until,omitempty"`
}

type QuotationStatusRequest struct {
	// Conversion is never requested through the status endpoint.
	Status QuotationStatus `json:"status" validate:"required,oneof=sent accepted rejected"`
}

type ListQuotationsRequest struct {
	Status *QuotationStatus
	Search *string
	Limit  int
	Offset int
}

type CreateInvoiceRequest struct {
	CustomerID *int64                   `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	Customer   *CustomerSnapshotRequest `json:"customer,omitempty"`
	Lines      []LineItemRequest        `json:"lines" validate:"required,min=1,dive"`
	Discount   decimal.Decimal          `json:"discount"`
	VATRate    decimal.Decimal          `json:"vat_rate"`
	Notes      *string                  `json:"notes,omitempty" validate:"omitempty,max=2000"`
	DueDate    *time.Time               `json:"due_date,omitempty"`
	Images     []ImageRequest           `json:"images,omitempty" validate:"omitempty,dive"`
}

type InvoiceStatusRequest struct {
	Status InvoiceStatus `json:"status" validate:"required,oneof=unpaid partial paid"`
}

type ListInvoicesRequest struct {
	Status *InvoiceStatus
	Search *string
	Limit  int
	Offset int
}

type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      PaymentMethod   `json:"payment_method" validate:"required,oneof=cash transfer credit"`
	Notes       *string         `json:"notes,omitempty" validate:"omitempty,max=2000"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
}

type AddSignatureRequest struct {
	Type          SignatureType `json:"type" validate:"required,oneof=shop customer"`
	SignatureData string        `json:"signature_data" validate:"required"`
	SignerName    string        `json:"signer_name" validate:"required,max=200"`
}

type AddImagesRequest struct {
	Images []ImageRequest `json:"images" validate:"required,min=1,dive"`
}

type ConvertQuotationRequest struct {
	DueDate *time.Time `json:"due_date,omitempty"`
}
