package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/docket-th/docket/internal/platform/db"
	"github.com/docket-th/docket/internal/shared"
)

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// queries holds every SQL operation; it runs against the pool directly or
// against a transaction inside WithTx.
type queries struct {
	db dbtx
}

// PGRepository provides PostgreSQL backed persistence for quotations,
// invoices, payments and document evidence records.
type PGRepository struct {
	queries
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{queries: queries{db: pool}, pool: pool}
}

// TxRepository exposes the operations available inside a transaction.
type TxRepository interface {
	GenerateNumber(ctx context.Context, docType string, date time.Time) (string, error)

	GetQuotation(ctx context.Context, id int64) (*Quotation, error)
	GetQuotationForUpdate(ctx context.Context, id int64) (*Quotation, error)
	CreateQuotation(ctx context.Context, q Quotation) (int64, error)
	InsertQuotationLine(ctx context.Context, line QuotationLine) (int64, error)
	UpdateQuotation(ctx context.Context, id int64, updates map[string]any) error
	UpdateQuotationStatus(ctx context.Context, id int64, status QuotationStatus) error
	DeleteQuotationLines(ctx context.Context, quotationID int64) error
	DeleteQuotation(ctx context.Context, id int64) error

	GetInvoiceForUpdate(ctx context.Context, id int64) (*Invoice, error)
	CreateInvoice(ctx context.Context, inv Invoice) (int64, error)
	InsertInvoiceLine(ctx context.Context, line InvoiceLine) (int64, error)
	InsertPayment(ctx context.Context, p Payment) (int64, error)
	UpdateInvoicePayment(ctx context.Context, id int64, paid decimal.Decimal, status InvoiceStatus) error
	UpdateInvoiceStatus(ctx context.Context, id int64, status InvoiceStatus) error
	DeleteInvoice(ctx context.Context, id int64) error

	HasSignature(ctx context.Context, kind DocumentKind, docID int64, sigType SignatureType) (bool, error)
	InsertSignature(ctx context.Context, sig Signature) (int64, error)
	InsertImage(ctx context.Context, img ImageAttachment) (int64, error)
	DeleteImage(ctx context.Context, kind DocumentKind, docID, imageID int64) error
}

// WithTx wraps fn in a repeatable-read transaction.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &queries{db: tx})
	})
}

// ============================================================================
// DOCUMENT NUMBERING
// ============================================================================

// GenerateNumber allocates the next sequence value for a document type and
// month. The upsert serializes concurrent callers on the sequence row, so
// two simultaneous creations can never collide.
func (q *queries) GenerateNumber(ctx context.Context, docType string, date time.Time) (string, error) {
	var seq int64
	period := date.Format("200601")
	err := q.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, docType, period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", docType, date.Format("0601"), seq), nil
}

// ============================================================================
// QUOTATIONS
// ============================================================================

const quotationColumns = `id, doc_number, customer_id, customer_name, customer_phone, customer_address, customer_tax_id,
	discount::text, vat_rate::text, subtotal::text, vat_amount::text, total::text,
	notes, status, valid_until, created_at, updated_at`

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	var discount, vatRate, subtotal, vatAmount, total string
	err := row.Scan(
		&q.ID, &q.DocNumber, &q.CustomerID, &q.CustomerName, &q.CustomerPhone, &q.CustomerAddress, &q.CustomerTaxID,
		&discount, &vatRate, &subtotal, &vatAmount, &total,
		&q.Notes, &q.Status, &q.ValidUntil, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	q.Discount = mustDec(discount)
	q.VATRate = mustDec(vatRate)
	q.Subtotal = mustDec(subtotal)
	q.VATAmount = mustDec(vatAmount)
	q.Total = mustDec(total)
	return &q, nil
}

func (q *queries) GetQuotation(ctx context.Context, id int64) (*Quotation, error) {
	return q.getQuotation(ctx, id, false)
}

func (q *queries) GetQuotationForUpdate(ctx context.Context, id int64) (*Quotation, error) {
	return q.getQuotation(ctx, id, true)
}

func (q *queries) getQuotation(ctx context.Context, id int64, forUpdate bool) (*Quotation, error) {
	query := "SELECT " + quotationColumns + " FROM quotations WHERE id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}
	quotation, err := scanQuotation(q.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	lines, err := q.listQuotationLines(ctx, id)
	if err != nil {
		return nil, err
	}
	quotation.Lines = lines

	quotation.Signatures, err = q.ListSignatures(ctx, DocumentKindQuotation, id)
	if err != nil {
		return nil, err
	}
	quotation.Images, err = q.ListImages(ctx, DocumentKindQuotation, id)
	if err != nil {
		return nil, err
	}
	return quotation, nil
}

func (q *queries) listQuotationLines(ctx context.Context, quotationID int64) ([]QuotationLine, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, quotation_id, product_id, name, description, quantity, unit_price::text, line_total::text, line_order
		FROM quotation_lines
		WHERE quotation_id = $1
		ORDER BY line_order, id
	`, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []QuotationLine
	for rows.Next() {
		var l QuotationLine
		var unitPrice, lineTotal string
		if err := rows.Scan(&l.ID, &l.QuotationID, &l.ProductID, &l.Name, &l.Description, &l.Quantity, &unitPrice, &lineTotal, &l.LineOrder); err != nil {
			return nil, err
		}
		l.UnitPrice = mustDec(unitPrice)
		l.LineTotal = mustDec(lineTotal)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (q *queries) ListQuotations(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	var conditions []string
	var args []any
	argPos := 1

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.Search != nil && *req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(doc_number ILIKE $%d OR customer_name ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}

	where := ""
	for i, cond := range conditions {
		if i == 0 {
			where = "WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	var total int
	if err := q.db.QueryRow(ctx, "SELECT COUNT(*) FROM quotations "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(
		"SELECT %s FROM quotations %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		quotationColumns, where, argPos, argPos+1,
	)
	args = append(args, limit, req.Offset)

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Quotation
	for rows.Next() {
		quotation, err := scanQuotation(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *quotation)
	}
	return result, total, rows.Err()
}

func (q *queries) CreateQuotation(ctx context.Context, quotation Quotation) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO quotations (
			doc_number, customer_id, customer_name, customer_phone, customer_address, customer_tax_id,
			discount, vat_rate, subtotal, vat_amount, total, notes, status, valid_until, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING id
	`,
		quotation.DocNumber, quotation.CustomerID,
		quotation.CustomerName, quotation.CustomerPhone, quotation.CustomerAddress, quotation.CustomerTaxID,
		quotation.Discount.String(), quotation.VATRate.String(), quotation.Subtotal.String(),
		quotation.VATAmount.String(), quotation.Total.String(),
		quotation.Notes, quotation.Status, quotation.ValidUntil,
	).Scan(&id)
	return id, err
}

func (q *queries) InsertQuotationLine(ctx context.Context, line QuotationLine) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO quotation_lines (quotation_id, product_id, name, description, quantity, unit_price, line_total, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, line.QuotationID, line.ProductID, line.Name, line.Description, line.Quantity,
		line.UnitPrice.String(), line.LineTotal.String(), line.LineOrder,
	).Scan(&id)
	return id, err
}

func (q *queries) UpdateQuotation(ctx context.Context, id int64, updates map[string]any) error {
	query := "UPDATE quotations SET updated_at = NOW()"
	var args []any
	argPos := 1

	for _, col := range []string{"discount", "vat_rate", "subtotal", "vat_amount", "total", "notes", "valid_until"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	_, err := q.db.Exec(ctx, query, args...)
	return err
}

func (q *queries) UpdateQuotationStatus(ctx context.Context, id int64, status QuotationStatus) error {
	tag, err := q.db.Exec(ctx, "UPDATE quotations SET status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (q *queries) DeleteQuotationLines(ctx context.Context, quotationID int64) error {
	_, err := q.db.Exec(ctx, "DELETE FROM quotation_lines WHERE quotation_id = $1", quotationID)
	return err
}

func (q *queries) DeleteQuotation(ctx context.Context, id int64) error {
	if err := q.DeleteQuotationLines(ctx, id); err != nil {
		return err
	}
	if _, err := q.db.Exec(ctx, "DELETE FROM document_signatures WHERE doc_kind = $1 AND doc_id = $2", DocumentKindQuotation, id); err != nil {
		return err
	}
	if _, err := q.db.Exec(ctx, "DELETE FROM document_images WHERE doc_kind = $1 AND doc_id = $2", DocumentKindQuotation, id); err != nil {
		return err
	}
	tag, err := q.db.Exec(ctx, "DELETE FROM quotations WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ============================================================================
// INVOICES
// ============================================================================

const invoiceColumns = `id, doc_number, quotation_id, customer_id, customer_name, customer_phone, customer_address, customer_tax_id,
	discount::text, vat_rate::text, subtotal::text, vat_amount::text, total::text, paid_amount::text,
	status, due_date, notes, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var discount, vatRate, subtotal, vatAmount, total, paid string
	err := row.Scan(
		&inv.ID, &inv.DocNumber, &inv.QuotationID, &inv.CustomerID,
		&inv.CustomerName, &inv.CustomerPhone, &inv.CustomerAddress, &inv.CustomerTaxID,
		&discount, &vatRate, &subtotal, &vatAmount, &total, &paid,
		&inv.Status, &inv.DueDate, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	inv.Discount = mustDec(discount)
	inv.VATRate = mustDec(vatRate)
	inv.Subtotal = mustDec(subtotal)
	inv.VATAmount = mustDec(vatAmount)
	inv.Total = mustDec(total)
	inv.PaidAmount = mustDec(paid)
	inv.RemainingAmount = inv.Total.Sub(inv.PaidAmount)
	return &inv, nil
}

func (q *queries) GetInvoice(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := scanInvoice(q.db.QueryRow(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = $1", id))
	if err != nil {
		return nil, err
	}

	if inv.Lines, err = q.listInvoiceLines(ctx, id); err != nil {
		return nil, err
	}
	if inv.Payments, err = q.listPayments(ctx, id); err != nil {
		return nil, err
	}
	if inv.Signatures, err = q.ListSignatures(ctx, DocumentKindInvoice, id); err != nil {
		return nil, err
	}
	if inv.Images, err = q.ListImages(ctx, DocumentKindInvoice, id); err != nil {
		return nil, err
	}
	if inv.Appointments, err = q.listAppointmentRefs(ctx, id); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetInvoiceForUpdate locks the invoice row for the duration of the
// surrounding transaction. Payment validation depends on this lock.
func (q *queries) GetInvoiceForUpdate(ctx context.Context, id int64) (*Invoice, error) {
	return scanInvoice(q.db.QueryRow(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = $1 FOR UPDATE", id))
}

func (q *queries) listInvoiceLines(ctx context.Context, invoiceID int64) ([]InvoiceLine, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, invoice_id, product_id, name, description, quantity, unit_price::text, line_total::text, line_order
		FROM invoice_lines
		WHERE invoice_id = $1
		ORDER BY line_order, id
	`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []InvoiceLine
	for rows.Next() {
		var l InvoiceLine
		var unitPrice, lineTotal string
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.ProductID, &l.Name, &l.Description, &l.Quantity, &unitPrice, &lineTotal, &l.LineOrder); err != nil {
			return nil, err
		}
		l.UnitPrice = mustDec(unitPrice)
		l.LineTotal = mustDec(lineTotal)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (q *queries) listPayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, invoice_id, amount::text, method, notes, payment_date, created_at
		FROM payments
		WHERE invoice_id = $1
		ORDER BY payment_date, id
	`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		var amount string
		if err := rows.Scan(&p.ID, &p.InvoiceID, &amount, &p.Method, &p.Notes, &p.PaymentDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Amount = mustDec(amount)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (q *queries) listAppointmentRefs(ctx context.Context, invoiceID int64) ([]AppointmentRef, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, title, appointment_date, type, status
		FROM appointments
		WHERE invoice_id = $1
		ORDER BY appointment_date, id
	`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []AppointmentRef
	for rows.Next() {
		var a AppointmentRef
		if err := rows.Scan(&a.ID, &a.Title, &a.AppointmentDate, &a.Type, &a.Status); err != nil {
			return nil, err
		}
		refs = append(refs, a)
	}
	return refs, rows.Err()
}

func (q *queries) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	var conditions []string
	var args []any
	argPos := 1

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.Search != nil && *req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(doc_number ILIKE $%d OR customer_name ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}

	where := ""
	for i, cond := range conditions {
		if i == 0 {
			where = "WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	var total int
	if err := q.db.QueryRow(ctx, "SELECT COUNT(*) FROM invoices "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(
		"SELECT %s FROM invoices %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		invoiceColumns, where, argPos, argPos+1,
	)
	args = append(args, limit, req.Offset)

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *inv)
	}
	return result, total, rows.Err()
}

func (q *queries) CreateInvoice(ctx context.Context, inv Invoice) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO invoices (
			doc_number, quotation_id, customer_id, customer_name, customer_phone, customer_address, customer_tax_id,
			discount, vat_rate, subtotal, vat_amount, total, paid_amount, status, due_date, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
		RETURNING id
	`,
		inv.DocNumber, inv.QuotationID, inv.CustomerID,
		inv.CustomerName, inv.CustomerPhone, inv.CustomerAddress, inv.CustomerTaxID,
		inv.Discount.String(), inv.VATRate.String(), inv.Subtotal.String(),
		inv.VATAmount.String(), inv.Total.String(), inv.PaidAmount.String(),
		inv.Status, inv.DueDate, inv.Notes,
	).Scan(&id)
	return id, err
}

func (q *queries) InsertInvoiceLine(ctx context.Context, line InvoiceLine) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO invoice_lines (invoice_id, product_id, name, description, quantity, unit_price, line_total, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, line.InvoiceID, line.ProductID, line.Name, line.Description, line.Quantity,
		line.UnitPrice.String(), line.LineTotal.String(), line.LineOrder,
	).Scan(&id)
	return id, err
}

func (q *queries) InsertPayment(ctx context.Context, p Payment) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO payments (invoice_id, amount, method, notes, payment_date, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id
	`, p.InvoiceID, p.Amount.String(), p.Method, p.Notes, p.PaymentDate).Scan(&id)
	return id, err
}

func (q *queries) UpdateInvoicePayment(ctx context.Context, id int64, paid decimal.Decimal, status InvoiceStatus) error {
	tag, err := q.db.Exec(ctx,
		"UPDATE invoices SET paid_amount = $1, status = $2, updated_at = NOW() WHERE id = $3",
		paid.String(), status, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (q *queries) UpdateInvoiceStatus(ctx context.Context, id int64, status InvoiceStatus) error {
	tag, err := q.db.Exec(ctx, "UPDATE invoices SET status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (q *queries) DeleteInvoice(ctx context.Context, id int64) error {
	if _, err := q.db.Exec(ctx, "DELETE FROM payments WHERE invoice_id = $1", id); err != nil {
		return err
	}
	if _, err := q.db.Exec(ctx, "DELETE FROM invoice_lines WHERE invoice_id = $1", id); err != nil {
		return err
	}
	if _, err := q.db.Exec(ctx, "DELETE FROM document_signatures WHERE doc_kind = $1 AND doc_id = $2", DocumentKindInvoice, id); err != nil {
		return err
	}
	if _, err := q.db.Exec(ctx, "DELETE FROM document_images WHERE doc_kind = $1 AND doc_id = $2", DocumentKindInvoice, id); err != nil {
		return err
	}
	// Appointments survive their invoice; only the link is cleared.
	if _, err := q.db.Exec(ctx, "UPDATE appointments SET invoice_id = NULL WHERE invoice_id = $1", id); err != nil {
		return err
	}
	tag, err := q.db.Exec(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ============================================================================
// SIGNATURES & IMAGES
// ============================================================================

func (q *queries) ListSignatures(ctx context.Context, kind DocumentKind, docID int64) ([]Signature, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, doc_kind, doc_id, type, image_path, signer_name, signed_at
		FROM document_signatures
		WHERE doc_kind = $1 AND doc_id = $2
		ORDER BY signed_at, id
	`, kind, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sigs []Signature
	for rows.Next() {
		var s Signature
		if err := rows.Scan(&s.ID, &s.DocKind, &s.DocID, &s.Type, &s.ImagePath, &s.SignerName, &s.SignedAt); err != nil {
			return nil, err
		}
		sigs = append(sigs, s)
	}
	return sigs, rows.Err()
}

func (q *queries) HasSignature(ctx context.Context, kind DocumentKind, docID int64, sigType SignatureType) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM document_signatures WHERE doc_kind = $1 AND doc_id = $2 AND type = $3)",
		kind, docID, sigType,
	).Scan(&exists)
	return exists, err
}

func (q *queries) InsertSignature(ctx context.Context, sig Signature) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO document_signatures (doc_kind, doc_id, type, image_path, signer_name, signed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, sig.DocKind, sig.DocID, sig.Type, sig.ImagePath, sig.SignerName, sig.SignedAt).Scan(&id)
	return id, err
}

func (q *queries) ListImages(ctx context.Context, kind DocumentKind, docID int64) ([]ImageAttachment, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, doc_kind, doc_id, path, caption, created_at
		FROM document_images
		WHERE doc_kind = $1 AND doc_id = $2
		ORDER BY id
	`, kind, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []ImageAttachment
	for rows.Next() {
		var img ImageAttachment
		if err := rows.Scan(&img.ID, &img.DocKind, &img.DocID, &img.Path, &img.Caption, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (q *queries) GetImage(ctx context.Context, kind DocumentKind, docID, imageID int64) (*ImageAttachment, error) {
	var img ImageAttachment
	err := q.db.QueryRow(ctx, `
		SELECT id, doc_kind, doc_id, path, caption, created_at
		FROM document_images
		WHERE id = $1 AND doc_kind = $2 AND doc_id = $3
	`, imageID, kind, docID).Scan(&img.ID, &img.DocKind, &img.DocID, &img.Path, &img.Caption, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}

func (q *queries) InsertImage(ctx context.Context, img ImageAttachment) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO document_images (doc_kind, doc_id, path, caption, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id
	`, img.DocKind, img.DocID, img.Path, img.Caption).Scan(&id)
	return id, err
}

func (q *queries) DeleteImage(ctx context.Context, kind DocumentKind, docID, imageID int64) error {
	tag, err := q.db.Exec(ctx,
		"DELETE FROM document_images WHERE id = $1 AND doc_kind = $2 AND doc_id = $3",
		imageID, kind, docID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
