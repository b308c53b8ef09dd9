package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// QUOTATION
// ============================================================================

type QuotationStatus string

const (
	QuotationStatusDraft     QuotationStatus = "draft"
	QuotationStatusSent      QuotationStatus = "sent"
	QuotationStatusAccepted  QuotationStatus = "accepted"
	QuotationStatusRejected  QuotationStatus = "rejected"
	QuotationStatusConverted QuotationStatus = "converted"
)

// CustomerSnapshot is the customer data frozen onto a document at creation
// time. Historical documents render unchanged if the customer record is
// edited or deleted later.
type CustomerSnapshot struct {
	CustomerName    string  `json:"customer_name"`
	CustomerPhone   *string `json:"customer_phone,omitempty"`
	CustomerAddress *string `json:"customer_address,omitempty"`
	CustomerTaxID   *string `json:"customer_tax_id,omitempty"`
}

type Quotation struct {
	ID         int64  `json:"id"`
	DocNumber  string `json:"doc_number"`
	CustomerID *int64 `json:"customer_id,omitempty"`
	CustomerSnapshot
	Discount   decimal.Decimal `json:"discount"`
	VATRate    decimal.Decimal `json:"vat_rate"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	VATAmount  decimal.Decimal `json:"vat_amount"`
	Total      decimal.Decimal `json:"total"`
	Notes      *string         `json:"notes,omitempty"`
	Status     QuotationStatus `json:"status"`
	ValidUntil *time.Time      `json:"valid_until,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Lines      []QuotationLine   `json:"lines,omitempty"`
	Signatures []Signature       `json:"signatures,omitempty"`
	Images     []ImageAttachment `json:"images,omitempty"`
}

// Editable reports whether line items and header fields may still change.
func (q *Quotation) Editable() bool {
	return q.Status == QuotationStatusDraft || q.Status == QuotationStatusSent
}

type QuotationLine struct {
	ID          int64           `json:"id"`
	QuotationID int64           `json:"quotation_id"`
	ProductID   *int64          `json:"product_id,omitempty"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	LineOrder   int             `json:"line_order"`
}

// ============================================================================
// INVOICE
// ============================================================================

type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "unpaid"
	InvoiceStatusPartial InvoiceStatus = "partial"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	// InvoiceStatusOverdue is derived at read time, never stored.
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

type Invoice struct {
	ID          int64  `json:"id"`
	DocNumber   string `json:"doc_number"`
	QuotationID *int64 `json:"quotation_id,omitempty"`
	CustomerID  *int64 `json:"customer_id,omitempty"`
	CustomerSnapshot
	Discount        decimal.Decimal `json:"discount"`
	VATRate         decimal.Decimal `json:"vat_rate"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	VATAmount       decimal.Decimal `json:"vat_amount"`
	Total           decimal.Decimal `json:"total"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          InvoiceStatus   `json:"status"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Lines        []InvoiceLine     `json:"lines,omitempty"`
	Payments     []Payment         `json:"payments,omitempty"`
	Signatures   []Signature       `json:"signatures,omitempty"`
	Images       []ImageAttachment `json:"images,omitempty"`
	Appointments []AppointmentRef  `json:"appointments,omitempty"`
}

// EffectiveStatus overlays the time-based overdue state on the stored
// payment-derived status.
func (inv *Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	if inv.Status != InvoiceStatusPaid && inv.DueDate != nil && inv.DueDate.Before(now) {
		return InvoiceStatusOverdue
	}
	return inv.Status
}

type InvoiceLine struct {
	ID          int64           `json:"id"`
	InvoiceID   int64           `json:"invoice_id"`
	ProductID   *int64          `json:"product_id,omitempty"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	LineOrder   int             `json:"line_order"`
}

// ============================================================================
// PAYMENT
// ============================================================================

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCredit   PaymentMethod = "credit"
)

// Payment is one append-only ledger entry. Payments are never edited or
// deleted once recorded.
type Payment struct {
	ID          int64           `json:"id"`
	InvoiceID   int64           `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      PaymentMethod   `json:"method"`
	Notes       *string         `json:"notes,omitempty"`
	PaymentDate time.Time       `json:"payment_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// derivePaymentStatus maps the ledger sum onto the stored status.
func derivePaymentStatus(paid, total decimal.Decimal) InvoiceStatus {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return InvoiceStatusUnpaid
	case paid.LessThan(total):
		return InvoiceStatusPartial
	default:
		return InvoiceStatusPaid
	}
}

// ============================================================================
// EVIDENCE RECORDS
// ============================================================================

// DocumentKind discriminates the parent table of signatures and images.
type DocumentKind string

const (
	DocumentKindQuotation DocumentKind = "quotation"
	DocumentKindInvoice   DocumentKind = "invoice"
)

type SignatureType string

const (
	SignatureTypeShop     SignatureType = "shop"
	SignatureTypeCustomer SignatureType = "customer"
)

type Signature struct {
	ID         int64         `json:"id"`
	DocKind    DocumentKind  `json:"-"`
	DocID      int64         `json:"-"`
	Type       SignatureType `json:"type"`
	ImagePath  string        `json:"image_path"`
	SignerName string        `json:"signer_name"`
	SignedAt   time.Time     `json:"signed_at"`
}

type ImageAttachment struct {
	ID        int64        `json:"id"`
	DocKind   DocumentKind `json:"-"`
	DocID     int64        `json:"-"`
	Path      string       `json:"path"`
	Caption   *string      `json:"caption,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// AppointmentRef is the subset of an appointment surfaced on an invoice.
type AppointmentRef struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	AppointmentDate time.Time `json:"appointment_date"`
	Type            string    `json:"type"`
	Status          string    `json:"status"`
}
