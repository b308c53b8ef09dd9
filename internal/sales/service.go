package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/docket-th/docket/internal/catalog"
	"github.com/docket-th/docket/internal/money"
	"github.com/docket-th/docket/internal/sales/customers"
	"github.com/docket-th/docket/internal/shared"
)

const (
	docTypeQuotation = "QT"
	docTypeInvoice   = "INV"

	defaultDueDays = 30
)

// Repository is the persistence surface the service depends on. The
// read-only operations run without a transaction; everything that mutates
// goes through WithTx.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	GetQuotation(ctx context.Context, id int64) (*Quotation, error)
	ListQuotations(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error)
	GetInvoice(ctx context.Context, id int64) (*Invoice, error)
	ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)
	ListImages(ctx context.Context, kind DocumentKind, docID int64) ([]ImageAttachment, error)
	GetImage(ctx context.Context, kind DocumentKind, docID, imageID int64) (*ImageAttachment, error)
}

// BlobStore persists binary evidence (signature strokes, photos) outside the
// database and returns the public path a row should reference.
type BlobStore interface {
	SaveDataURL(dataURL string) (string, error)
	Remove(path string) error
}

// CacheInvalidator bumps the dashboard cache version after any write that
// changes revenue or document counts. May be nil.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// Service implements the quotation and invoice lifecycles.
type Service struct {
	repo      Repository
	customers customers.Repository
	products  catalog.Repository
	blobs     BlobStore
	cache     CacheInvalidator

	now func() time.Time
}

// NewService constructs the sales service. cache may be nil.
func NewService(repo Repository, cust customers.Repository, prod catalog.Repository, blobs BlobStore, cache CacheInvalidator) *Service {
	return &Service{
		repo:      repo,
		customers: cust,
		products:  prod,
		blobs:     blobs,
		cache:     cache,
		now:       time.Now,
	}
}

func (s *Service) bumpCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}

// resolvedLine is a line item after product lookup, ready for persistence.
type resolvedLine struct {
	ProductID   *int64
	Name        string
	Description *string
	Quantity    int64
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// resolveLines snapshots product data into each line. Request fields win over
// the product record, so a caller can reference a product and still override
// its price for this one document.
func (s *Service) resolveLines(ctx context.Context, reqs []LineItemRequest) ([]resolvedLine, []money.Line, error) {
	lines := make([]resolvedLine, 0, len(reqs))
	moneyLines := make([]money.Line, 0, len(reqs))
	for i, lr := range reqs {
		rl := resolvedLine{
			ProductID:   lr.ProductID,
			Name:        lr.Name,
			Description: lr.Description,
			Quantity:    lr.Quantity,
		}
		if lr.UnitPrice != nil {
			rl.UnitPrice = *lr.UnitPrice
		}

		if lr.ProductID != nil {
			product, err := s.products.Get(ctx, *lr.ProductID)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: line %d references unknown product %d", shared.ErrValidation, i+1, *lr.ProductID)
			}
			if rl.Name == "" {
				rl.Name = product.Name
			}
			if rl.Description == nil {
				rl.Description = product.Description
			}
			if lr.UnitPrice == nil {
				rl.UnitPrice = product.UnitPrice
			}
		}
		if rl.Name == "" {
			return nil, nil, fmt.Errorf("%w: line %d has no name", shared.ErrValidation, i+1)
		}
		if rl.UnitPrice.IsNegative() {
			return nil, nil, fmt.Errorf("%w: line %d has a negative unit price", shared.ErrValidation, i+1)
		}

		ml := money.Line{Quantity: decimal.NewFromInt(rl.Quantity), UnitPrice: rl.UnitPrice}
		rl.LineTotal = ml.Total()
		lines = append(lines, rl)
		moneyLines = append(moneyLines, ml)
	}
	return lines, moneyLines, nil
}

// resolveSnapshot freezes customer fields onto the document. Either an
// existing customer is referenced or the fields come inline; one of the two
// is required.
func (s *Service) resolveSnapshot(ctx context.Context, customerID *int64, inline *CustomerSnapshotRequest) (*int64, CustomerSnapshot, error) {
	if customerID != nil {
		customer, err := s.customers.Get(ctx, *customerID)
		if err != nil {
			return nil, CustomerSnapshot{}, fmt.Errorf("%w: customer %d not found", shared.ErrValidation, *customerID)
		}
		return customerID, CustomerSnapshot{
			CustomerName:    customer.Name,
			CustomerPhone:   customer.Phone,
			CustomerAddress: customer.Address,
			CustomerTaxID:   customer.TaxID,
		}, nil
	}
	if inline != nil {
		return nil, CustomerSnapshot{
			CustomerName:    inline.Name,
			CustomerPhone:   inline.Phone,
			CustomerAddress: inline.Address,
			CustomerTaxID:   inline.TaxID,
		}, nil
	}
	return nil, CustomerSnapshot{}, fmt.Errorf("%w: customer_id or customer is required", shared.ErrValidation)
}

// ============================================================================
// QUOTATIONS
// ============================================================================

func (s *Service) CreateQuotation(ctx context.Context, req CreateQuotationRequest) (*Quotation, error) {
	customerID, snapshot, err := s.resolveSnapshot(ctx, req.CustomerID, req.Customer)
	if err != nil {
		return nil, err
	}
	lines, moneyLines, err := s.resolveLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}
	totals := money.CalculateTotals(moneyLines, req.Discount, req.VATRate)

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		number, err := tx.GenerateNumber(ctx, docTypeQuotation, s.now())
		if err != nil {
			return fmt.Errorf("generate quotation number: %w", err)
		}
		id, err = tx.CreateQuotation(ctx, Quotation{
			DocNumber:        number,
			CustomerID:       customerID,
			CustomerSnapshot: snapshot,
			Discount:         totals.Discount,
			VATRate:          req.VATRate,
			Subtotal:         totals.Subtotal,
			VATAmount:        totals.VATAmount,
			Total:            totals.Total,
			Notes:            req.Notes,
			Status:           QuotationStatusDraft,
			ValidUntil:       req.ValidUntil,
		})
		if err != nil {
			return fmt.Errorf("create quotation: %w", err)
		}
		if err := insertQuotationLines(ctx, tx, id, lines); err != nil {
			return err
		}
		for _, img := range req.Images {
			if _, err := tx.InsertImage(ctx, ImageAttachment{
				DocKind: DocumentKindQuotation,
				DocID:   id,
				Path:    img.Path,
				Caption: img.Caption,
			}); err != nil {
				return fmt.Errorf("attach image: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bumpCache(ctx)
	return s.repo.GetQuotation(ctx, id)
}

func insertQuotationLines(ctx context.Context, tx TxRepository, quotationID int64, lines []resolvedLine) error {
	for i, l := range lines {
		if _, err := tx.InsertQuotationLine(ctx, QuotationLine{
			QuotationID: quotationID,
			ProductID:   l.ProductID,
			Name:        l.Name,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
			LineOrder:   i + 1,
		}); err != nil {
			return fmt.Errorf("insert quotation line: %w", err)
		}
	}
	return nil
}

func (s *Service) GetQuotation(ctx context.Context, id int64) (*Quotation, error) {
	return s.repo.GetQuotation(ctx, id)
}

func (s *Service) ListQuotations(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	return s.repo.ListQuotations(ctx, req)
}

// UpdateQuotation rewrites header fields and optionally replaces the full
// line set. Only draft and sent quotations are editable.
func (s *Service) UpdateQuotation(ctx context.Context, id int64, req UpdateQuotationRequest) (*Quotation, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		quotation, err := tx.GetQuotationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !quotation.Editable() {
			return fmt.Errorf("%w: %s quotation cannot be edited", shared.ErrInvalidState, quotation.Status)
		}

		discount := quotation.Discount
		if req.Discount != nil {
			discount = *req.Discount
		}
		vatRate := quotation.VATRate
		if req.VATRate != nil {
			vatRate = *req.VATRate
		}

		var moneyLines []money.Line
		if req.Lines != nil {
			lines, ml, err := s.resolveLines(ctx, *req.Lines)
			if err != nil {
				return err
			}
			if err := tx.DeleteQuotationLines(ctx, id); err != nil {
				return fmt.Errorf("replace lines: %w", err)
			}
			if err := insertQuotationLines(ctx, tx, id, lines); err != nil {
				return err
			}
			moneyLines = ml
		} else {
			for _, l := range quotation.Lines {
				moneyLines = append(moneyLines, money.Line{
					Quantity:  decimal.NewFromInt(l.Quantity),
					UnitPrice: l.UnitPrice,
				})
			}
		}

		totals := money.CalculateTotals(moneyLines, discount, vatRate)
		updates := map[string]any{
			"discount":   totals.Discount.String(),
			"vat_rate":   vatRate.String(),
			"subtotal":   totals.Subtotal.String(),
			"vat_amount": totals.VATAmount.String(),
			"total":      totals.Total.String(),
		}
		if req.Notes != nil {
			updates["notes"] = *req.Notes
		}
		if req.ValidUntil != nil {
			updates["valid_until"] = *req.ValidUntil
		}
		return tx.UpdateQuotation(ctx, id, updates)
	})
	if err != nil {
		return nil, err
	}

	s.bumpCache(ctx)
	return s.repo.GetQuotation(ctx, id)
}

// quotationTransitions lists the legal status moves. Converted is only ever
// set by conversion, never through the status endpoint.
var quotationTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationStatusDraft: {QuotationStatusSent, QuotationStatusAccepted, QuotationStatusRejected},
	QuotationStatusSent:  {QuotationStatusAccepted, QuotationStatusRejected},
}

func (s *Service) UpdateQuotationStatus(ctx context.Context, id int64, target QuotationStatus) (*Quotation, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		quotation, err := tx.GetQuotationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		for _, allowed := range quotationTransitions[quotation.Status] {
			if target == allowed {
				return tx.UpdateQuotationStatus(ctx, id, target)
			}
		}
		return fmt.Errorf("%w: cannot move quotation from %s to %s", shared.ErrInvalidState, quotation.Status, target)
	})
	if err != nil {
		return nil, err
	}

	s.bumpCache(ctx)
	return s.repo.GetQuotation(ctx, id)
}

func (s *Service) DeleteQuotation(ctx context.Context, id int64) error {
	quotation, err := s.repo.GetQuotation(ctx, id)
	if err != nil {
		return err
	}
	if quotation.Status == QuotationStatusConverted {
		return fmt.Errorf("%w: converted quotation cannot be deleted", shared.ErrInvalidState)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeleteQuotation(ctx, id)
	})
	if err != nil {
		return err
	}

	// Rows are gone; orphaned files are removed best effort.
	for _, sig := range quotation.Signatures {
		_ = s.blobs.Remove(sig.ImagePath)
	}
	for _, img := range quotation.Images {
		_ = s.blobs.Remove(img.Path)
	}
	s.bumpCache(ctx)
	return nil
}

// ConvertToInvoice turns a quotation into a new invoice. The
// invoice gets its own document number and fresh line rows; later edits to
// either document never bleed into the other. Conversion is one-shot: the
// quotation ends up converted and a second call fails.
func (s *Service) ConvertToInvoice(ctx context.Context, quotationID int64, req ConvertQuotationRequest) (*Invoice, error) {
	var invoiceID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		quotation, err := tx.GetQuotationForUpdate(ctx, quotationID)
		if err != nil {
			return err
		}
		if quotation.Status == QuotationStatusConverted {
			return fmt.Errorf("%w: quotation %s is already converted", shared.ErrInvalidState, quotation.DocNumber)
		}

		number, err := tx.GenerateNumber(ctx, docTypeInvoice, s.now())
		if err != nil {
			return fmt.Errorf("generate invoice number: %w", err)
		}

		dueDate := req.DueDate
		if dueDate == nil {
			d := s.now().AddDate(0, 0, defaultDueDays)
			dueDate = &d
		}

		invoiceID, err = tx.CreateInvoice(ctx, Invoice{
			DocNumber:        number,
			QuotationID:      &quotation.ID,
			CustomerID:       quotation.CustomerID,
			CustomerSnapshot: quotation.CustomerSnapshot,
			Discount:         quotation.Discount,
			VATRate:          quotation.VATRate,
			Subtotal:         quotation.Subtotal,
			VATAmount:        quotation.VATAmount,
			Total:            quotation.Total,
			PaidAmount:       decimal.Zero,
			Status:           InvoiceStatusUnpaid,
			DueDate:          dueDate,
			Notes:            quotation.Notes,
		})
		if err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}

		for _, l := range quotation.Lines {
			if _, err := tx.InsertInvoiceLine(ctx, InvoiceLine{
				InvoiceID:   invoiceID,
				ProductID:   l.ProductID,
				Name:        l.Name,
				Description: l.Description,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				LineTotal:   l.LineTotal,
				LineOrder:   l.LineOrder,
			}); err != nil {
				return fmt.Errorf("copy line: %w", err)
			}
		}
		return tx.UpdateQuotationStatus(ctx, quotationID, QuotationStatusConverted)
	})
	if err != nil {
		return nil, err
	}

	s.bumpCache(ctx)
	return s.GetInvoice(ctx, invoiceID)
}

// ============================================================================
// INVOICES
// ============================================================================

func (s *Service) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	customerID, snapshot, err := s.resolveSnapshot(ctx, req.CustomerID, req.Customer)
	if err != nil {
		return nil, err
	}
	lines, moneyLines, err := s.resolveLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}
	totals := money.CalculateTotals(moneyLines, req.Discount, req.VATRate)

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		number, err := tx.GenerateNumber(ctx, docTypeInvoice, s.now())
		if err != nil {
			return fmt.Errorf("generate invoice number: %w", err)
		}
		id, err = tx.CreateInvoice(ctx, Invoice{
			DocNumber:        number,
			CustomerID:       customerID,
			CustomerSnapshot: snapshot,
			Discount:         totals.Discount,
			VATRate:          req.VATRate,
			Subtotal:         totals.Subtotal,
			VATAmount:        totals.VATAmount,
			Total:            totals.Total,
			PaidAmount:       decimal.Zero,
			Status:           InvoiceStatusUnpaid,
			DueDate:          req.DueDate,
			Notes:            req.Notes,
		})
		if err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		for i, l := range lines {
			if _, err := tx.InsertInvoiceLine(ctx, InvoiceLine{
				InvoiceID:   id,
				ProductID:   l.ProductID,
				Name:        l.Name,
				Description: l.Description,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				LineTotal:   l.LineTotal,
				LineOrder:   i + 1,
			}); err != nil {
				return fmt.Errorf("insert invoice line: %w", err)
			}
		}
		for _, img := range req.Images {
			if _, err := tx.InsertImage(ctx, ImageAttachment{
				DocKind: DocumentKindInvoice,
				DocID:   id,
				Path:    img.Path,
				Caption: img.Caption,
			}); err != nil {
				return fmt.Errorf("attach image: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bumpCache(ctx)
	return s.GetInvoice(ctx, id)
}

// GetInvoice returns the invoice with the overdue overlay applied: an unpaid
// or partial invoice past its due date presents as overdue without the
// stored status changing.
func (s *Service) GetInvoice(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Status = inv.EffectiveStatus(s.now())
	return inv, nil
}

func (s *Service) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	invoices, total, err := s.repo.ListInvoices(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	for i := range invoices {
		invoices[i].Status = invoices[i].EffectiveStatus(now)
	}
	return invoices, total, nil
}

// UpdateInvoiceStatus accepts only the status the payment ledger already
// implies. The endpoint exists so clients can resynchronize, not so they can
// contradict recorded payments.
func (s *Service) UpdateInvoiceStatus(ctx context.Context, id int64, target InvoiceStatus) (*Invoice, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInvoiceForUpdate(ctx, id)
		if err != nil {
			return err
		}
		derived := derivePaymentStatus(inv.PaidAmount, inv.Total)
		if target != derived {
			return fmt.Errorf("%w: ledger implies %s, not %s", shared.ErrInvalidState, derived, target)
		}
		return tx.UpdateInvoiceStatus(ctx, id, target)
	})
	if err != nil {
		return nil, err
	}
	return s.GetInvoice(ctx, id)
}

// RecordPayment appends a ledger entry under a row lock and re-derives the
// stored status. Overpayment is rejected rather than capped, and a paid
// invoice takes no further payments.
func (s *Service) RecordPayment(ctx context.Context, invoiceID int64, req RecordPaymentRequest) (*Invoice, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", shared.ErrValidation)
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInvoiceForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status == InvoiceStatusPaid {
			return fmt.Errorf("%w: invoice %s is already paid", shared.ErrInvalidState, inv.DocNumber)
		}
		remaining := inv.Total.Sub(inv.PaidAmount)
		if req.Amount.GreaterThan(remaining) {
			return fmt.Errorf("%w: payment %s exceeds remaining balance %s", shared.ErrValidation, req.Amount, remaining)
		}

		paymentDate := s.now()
		if req.PaymentDate != nil {
			paymentDate = *req.PaymentDate
		}
		if _, err := tx.InsertPayment(ctx, Payment{
			InvoiceID:   invoiceID,
			Amount:      req.Amount,
			Method:      req.Method,
			Notes:       req.Notes,
			PaymentDate: paymentDate,
		}); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		paid := inv.PaidAmount.Add(req.Amount)
		return tx.UpdateInvoicePayment(ctx, invoiceID, paid, derivePaymentStatus(paid, inv.Total))
	})
	if err != nil {
		return nil, err
	}

	s.bumpCache(ctx)
	return s.GetInvoice(ctx, invoiceID)
}

func (s *Service) DeleteInvoice(ctx context.Context, id int64) error {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeleteInvoice(ctx, id)
	})
	if err != nil {
		return err
	}

	for _, sig := range inv.Signatures {
		_ = s.blobs.Remove(sig.ImagePath)
	}
	for _, img := range inv.Images {
		_ = s.blobs.Remove(img.Path)
	}
	s.bumpCache(ctx)
	return nil
}

// ============================================================================
// SIGNATURES & IMAGES
// ============================================================================

func (s *Service) verifyDocument(ctx context.Context, kind DocumentKind, docID int64) error {
	switch kind {
	case DocumentKindQuotation:
		_, err := s.repo.GetQuotation(ctx, docID)
		return err
	case DocumentKindInvoice:
		_, err := s.repo.GetInvoice(ctx, docID)
		return err
	default:
		return fmt.Errorf("%w: unknown document kind %q", shared.ErrValidation, kind)
	}
}

// AddSignature stores the stroke image first and links it under the
// transaction, so a failed insert leaves at worst an orphaned file, never a
// dangling row. A document holds at most one signature per type.
func (s *Service) AddSignature(ctx context.Context, kind DocumentKind, docID int64, req AddSignatureRequest) (*Signature, error) {
	if err := s.verifyDocument(ctx, kind, docID); err != nil {
		return nil, err
	}

	path, err := s.blobs.SaveDataURL(req.SignatureData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	sig := Signature{
		DocKind:    kind,
		DocID:      docID,
		Type:       req.Type,
		ImagePath:  path,
		SignerName: req.SignerName,
		SignedAt:   s.now(),
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		exists, err := tx.HasSignature(ctx, kind, docID, req.Type)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s signature already present", shared.ErrConflict, req.Type)
		}
		sig.ID, err = tx.InsertSignature(ctx, sig)
		return err
	})
	if err != nil {
		_ = s.blobs.Remove(path)
		return nil, err
	}
	return &sig, nil
}

func (s *Service) AddImages(ctx context.Context, kind DocumentKind, docID int64, req AddImagesRequest) ([]ImageAttachment, error) {
	if err := s.verifyDocument(ctx, kind, docID); err != nil {
		return nil, err
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, img := range req.Images {
			if _, err := tx.InsertImage(ctx, ImageAttachment{
				DocKind: kind,
				DocID:   docID,
				Path:    img.Path,
				Caption: img.Caption,
			}); err != nil {
				return fmt.Errorf("attach image: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.ListImages(ctx, kind, docID)
}

func (s *Service) DeleteImage(ctx context.Context, kind DocumentKind, docID, imageID int64) error {
	img, err := s.repo.GetImage(ctx, kind, docID, imageID)
	if err != nil {
		return err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeleteImage(ctx, kind, docID, imageID)
	})
	if err != nil {
		return err
	}
	_ = s.blobs.Remove(img.Path)
	return nil
}
