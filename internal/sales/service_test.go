package sales

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docket-th/docket/internal/catalog"
	"github.com/docket-th/docket/internal/sales/customers"
	"github.com/docket-th/docket/internal/shared"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// ============================================================================
// MOCKS
// ============================================================================

type mockRepository struct {
	mu         sync.Mutex
	nextID     int64
	seqs       map[string]int64
	quotations map[int64]*Quotation
	invoices   map[int64]*Invoice
	payments   []Payment
	signatures []Signature
	images     []ImageAttachment
	failOn     map[string]error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		seqs:       make(map[string]int64),
		quotations: make(map[int64]*Quotation),
		invoices:   make(map[int64]*Invoice),
		failOn:     make(map[string]error),
	}
}

func (m *mockRepository) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, m)
}

func (m *mockRepository) GenerateNumber(_ context.Context, docType string, date time.Time) (string, error) {
	if err := m.failOn["GenerateNumber"]; err != nil {
		return "", err
	}
	key := docType + date.Format("200601")
	m.seqs[key]++
	return fmt.Sprintf("%s-%s-%04d", docType, date.Format("0601"), m.seqs[key]), nil
}

func (m *mockRepository) GetQuotation(_ context.Context, id int64) (*Quotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotations[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *q
	cp.Lines = append([]QuotationLine(nil), q.Lines...)
	cp.Signatures = m.signaturesFor(DocumentKindQuotation, id)
	cp.Images = m.imagesFor(DocumentKindQuotation, id)
	return &cp, nil
}

func (m *mockRepository) GetQuotationForUpdate(ctx context.Context, id int64) (*Quotation, error) {
	return m.GetQuotation(ctx, id)
}

func (m *mockRepository) ListQuotations(_ context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Quotation
	for _, q := range m.quotations {
		if req.Status != nil && q.Status != *req.Status {
			continue
		}
		out = append(out, *q)
	}
	return out, len(out), nil
}

func (m *mockRepository) CreateQuotation(_ context.Context, q Quotation) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q.ID = m.id()
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	m.quotations[q.ID] = &q
	return q.ID, nil
}

func (m *mockRepository) InsertQuotationLine(_ context.Context, line QuotationLine) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotations[line.QuotationID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	line.ID = m.id()
	q.Lines = append(q.Lines, line)
	return line.ID, nil
}

func (m *mockRepository) UpdateQuotation(_ context.Context, id int64, updates map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotations[id]
	if !ok {
		return shared.ErrNotFound
	}
	setDec := func(dst *decimal.Decimal, key string) {
		if v, ok := updates[key]; ok {
			*dst, _ = decimal.NewFromString(v.(string))
		}
	}
	setDec(&q.Discount, "discount")
	setDec(&q.VATRate, "vat_rate")
	setDec(&q.Subtotal, "subtotal")
	setDec(&q.VATAmount, "vat_amount")
	setDec(&q.Total, "total")
	if v, ok := updates["notes"]; ok {
		notes := v.(string)
		q.Notes = &notes
	}
	return nil
}

func (m *mockRepository) UpdateQuotationStatus(_ context.Context, id int64, status QuotationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotations[id]
	if !ok {
		return shared.ErrNotFound
	}
	q.Status = status
	return nil
}

func (m *mockRepository) DeleteQuotationLines(_ context.Context, quotationID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q, ok := m.quotations[quotationID]; ok {
		q.Lines = nil
	}
	return nil
}

func (m *mockRepository) DeleteQuotation(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quotations[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.quotations, id)
	return nil
}

func (m *mockRepository) GetInvoice(_ context.Context, id int64) (*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *inv
	cp.RemainingAmount = cp.Total.Sub(cp.PaidAmount)
	cp.Lines = append([]InvoiceLine(nil), inv.Lines...)
	for _, p := range m.payments {
		if p.InvoiceID == id {
			cp.Payments = append(cp.Payments, p)
		}
	}
	cp.Signatures = m.signaturesFor(DocumentKindInvoice, id)
	cp.Images = m.imagesFor(DocumentKindInvoice, id)
	return &cp, nil
}

func (m *mockRepository) GetInvoiceForUpdate(ctx context.Context, id int64) (*Invoice, error) {
	return m.GetInvoice(ctx, id)
}

func (m *mockRepository) ListInvoices(_ context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Invoice
	for _, inv := range m.invoices {
		if req.Status != nil && inv.Status != *req.Status {
			continue
		}
		cp := *inv
		cp.RemainingAmount = cp.Total.Sub(cp.PaidAmount)
		out = append(out, cp)
	}
	return out, len(out), nil
}

func (m *mockRepository) CreateInvoice(_ context.Context, inv Invoice) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv.ID = m.id()
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	m.invoices[inv.ID] = &inv
	return inv.ID, nil
}

func (m *mockRepository) InsertInvoiceLine(_ context.Context, line InvoiceLine) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[line.InvoiceID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	line.ID = m.id()
	inv.Lines = append(inv.Lines, line)
	return line.ID, nil
}

func (m *mockRepository) InsertPayment(_ context.Context, p Payment) (int64, error) {
	if err := m.failOn["InsertPayment"]; err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.id()
	p.CreatedAt = time.Now()
	m.payments = append(m.payments, p)
	return p.ID, nil
}

func (m *mockRepository) UpdateInvoicePayment(_ context.Context, id int64, paid decimal.Decimal, status InvoiceStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return shared.ErrNotFound
	}
	inv.PaidAmount = paid
	inv.Status = status
	return nil
}

func (m *mockRepository) UpdateInvoiceStatus(_ context.Context, id int64, status InvoiceStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return shared.ErrNotFound
	}
	inv.Status = status
	return nil
}

func (m *mockRepository) DeleteInvoice(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.invoices[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.invoices, id)
	return nil
}

func (m *mockRepository) signaturesFor(kind DocumentKind, docID int64) []Signature {
	var out []Signature
	for _, s := range m.signatures {
		if s.DocKind == kind && s.DocID == docID {
			out = append(out, s)
		}
	}
	return out
}

func (m *mockRepository) imagesFor(kind DocumentKind, docID int64) []ImageAttachment {
	var out []ImageAttachment
	for _, img := range m.images {
		if img.DocKind == kind && img.DocID == docID {
			out = append(out, img)
		}
	}
	return out
}

func (m *mockRepository) HasSignature(_ context.Context, kind DocumentKind, docID int64, sigType SignatureType) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.signatures {
		if s.DocKind == kind && s.DocID == docID && s.Type == sigType {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) InsertSignature(_ context.Context, sig Signature) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sig.ID = m.id()
	m.signatures = append(m.signatures, sig)
	return sig.ID, nil
}

func (m *mockRepository) ListImages(_ context.Context, kind DocumentKind, docID int64) ([]ImageAttachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.imagesFor(kind, docID), nil
}

func (m *mockRepository) GetImage(_ context.Context, kind DocumentKind, docID, imageID int64) (*ImageAttachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, img := range m.images {
		if img.ID == imageID && img.DocKind == kind && img.DocID == docID {
			cp := img
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepository) InsertImage(_ context.Context, img ImageAttachment) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img.ID = m.id()
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now()
	}
	m.images = append(m.images, img)
	return img.ID, nil
}

func (m *mockRepository) DeleteImage(_ context.Context, kind DocumentKind, docID, imageID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, img := range m.images {
		if img.ID == imageID && img.DocKind == kind && img.DocID == docID {
			m.images = append(m.images[:i], m.images[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

type mockCustomers struct {
	byID map[int64]customers.Customer
}

func (m *mockCustomers) Get(_ context.Context, id int64) (*customers.Customer, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (m *mockCustomers) List(context.Context, customers.ListCustomersRequest) ([]customers.Customer, int, error) {
	return nil, 0, nil
}
func (m *mockCustomers) Create(context.Context, customers.Customer) (int64, error) { return 0, nil }
func (m *mockCustomers) Update(context.Context, int64, map[string]any) error       { return nil }
func (m *mockCustomers) Delete(context.Context, int64) error                       { return nil }

type mockProducts struct {
	byID map[int64]catalog.Product
}

func (m *mockProducts) Get(_ context.Context, id int64) (*catalog.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (m *mockProducts) List(context.Context, catalog.ListProductsRequest) ([]catalog.Product, int, error) {
	return nil, 0, nil
}
func (m *mockProducts) Create(context.Context, catalog.Product) (int64, error) { return 0, nil }
func (m *mockProducts) Update(context.Context, int64, map[string]any) error    { return nil }
func (m *mockProducts) Delete(context.Context, int64) error                    { return nil }

type mockBlobs struct {
	saved   []string
	removed []string
	n       int
}

func (m *mockBlobs) SaveDataURL(string) (string, error) {
	m.n++
	path := fmt.Sprintf("/uploads/sig-%d.png", m.n)
	m.saved = append(m.saved, path)
	return path, nil
}

func (m *mockBlobs) Remove(path string) error {
	m.removed = append(m.removed, path)
	return nil
}

type mockCache struct{ bumps int }

func (m *mockCache) Bump(context.Context) error {
	m.bumps++
	return nil
}

// ============================================================================
// FIXTURES
// ============================================================================

type fixture struct {
	repo  *mockRepository
	blobs *mockBlobs
	cache *mockCache
	svc   *Service
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMockRepository()
	blobs := &mockBlobs{}
	cache := &mockCache{}
	phone := "0812345678"
	cust := &mockCustomers{byID: map[int64]customers.Customer{
		1: {ID: 1, Name: "Somchai Co", Phone: &phone},
	}}
	prod := &mockProducts{byID: map[int64]catalog.Product{
		10: {ID: 10, Name: "Aircon Cleaning", UnitPrice: decimal.NewFromInt(500), Unit: "unit", IsActive: true},
	}}
	svc := NewService(repo, cust, prod, blobs, cache)
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return &fixture{repo: repo, blobs: blobs, cache: cache, svc: svc, now: now}
}

func (f *fixture) createQuotation(t *testing.T, total string) *Quotation {
	t.Helper()
	price := dec(t, total)
	q, err := f.svc.CreateQuotation(context.Background(), CreateQuotationRequest{
		CustomerID: ptr(int64(1)),
		Lines: []LineItemRequest{
			{Name: "Service", Quantity: 1, UnitPrice: &price},
		},
	})
	require.NoError(t, err)
	return q
}

func (f *fixture) createAcceptedQuotation(t *testing.T, total string) *Quotation {
	t.Helper()
	q := f.createQuotation(t, total)
	_, err := f.svc.UpdateQuotationStatus(context.Background(), q.ID, QuotationStatusSent)
	require.NoError(t, err)
	q2, err := f.svc.UpdateQuotationStatus(context.Background(), q.ID, QuotationStatusAccepted)
	require.NoError(t, err)
	return q2
}

func (f *fixture) createInvoice(t *testing.T, total string) *Invoice {
	t.Helper()
	price := dec(t, total)
	inv, err := f.svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		CustomerID: ptr(int64(1)),
		Lines: []LineItemRequest{
			{Name: "Service", Quantity: 1, UnitPrice: &price},
		},
	})
	require.NoError(t, err)
	return inv
}

func ptr[T any](v T) *T { return &v }

// ============================================================================
// QUOTATION TESTS
// ============================================================================

func TestCreateQuotationSnapshotsCustomerAndComputesTotals(t *testing.T) {
	f := newFixture(t)

	vat := dec(t, "7")
	q, err := f.svc.CreateQuotation(context.Background(), CreateQuotationRequest{
		CustomerID: ptr(int64(1)),
		VATRate:    vat,
		Lines: []LineItemRequest{
			{ProductID: ptr(int64(10)), Quantity: 2},
			{Name: "Extra parts", Quantity: 1, UnitPrice: ptr(dec(t, "150.50"))},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "QT-2503-0001", q.DocNumber)
	assert.Equal(t, QuotationStatusDraft, q.Status)
	assert.Equal(t, "Somchai Co", q.CustomerName)
	require.NotNil(t, q.CustomerPhone)
	assert.Equal(t, "0812345678", *q.CustomerPhone)

	// 2x500 + 150.50 = 1150.50; VAT 7% = 80.535; total rounds to 1231.04
	assert.True(t, q.Subtotal.Equal(dec(t, "1150.50")), "subtotal %s", q.Subtotal)
	assert.True(t, q.Total.Equal(dec(t, "1231.04")), "total %s", q.Total)

	require.Len(t, q.Lines, 2)
	assert.Equal(t, "Aircon Cleaning", q.Lines[0].Name)
	assert.True(t, q.Lines[0].UnitPrice.Equal(dec(t, "500")))
	assert.Equal(t, 1, q.Lines[0].LineOrder)
	assert.Equal(t, 2, q.Lines[1].LineOrder)
	assert.Equal(t, 1, f.cache.bumps)
}

func TestCreateQuotationRejectsUnknownCustomerAndProduct(t *testing.T) {
	f := newFixture(t)
	price := dec(t, "100")

	_, err := f.svc.CreateQuotation(context.Background(), CreateQuotationRequest{
		CustomerID: ptr(int64(99)),
		Lines:      []LineItemRequest{{Name: "x", Quantity: 1, UnitPrice: &price}},
	})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = f.svc.CreateQuotation(context.Background(), CreateQuotationRequest{
		CustomerID: ptr(int64(1)),
		Lines:      []LineItemRequest{{ProductID: ptr(int64(404)), Quantity: 1}},
	})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = f.svc.CreateQuotation(context.Background(), CreateQuotationRequest{
		Lines: []LineItemRequest{{Name: "x", Quantity: 1, UnitPrice: &price}},
	})
	assert.ErrorIs(t, err, shared.ErrValidation, "neither customer_id nor inline customer")
}

func TestQuotationDocNumbersIncrementPerMonth(t *testing.T) {
	f := newFixture(t)
	q1 := f.createQuotation(t, "100")
	q2 := f.createQuotation(t, "100")
	assert.Equal(t, "QT-2503-0001", q1.DocNumber)
	assert.Equal(t, "QT-2503-0002", q2.DocNumber)
}

func TestQuotationStatusTransitions(t *testing.T) {
	cases := []struct {
		name   string
		from   QuotationStatus
		to     QuotationStatus
		wantOK bool
	}{
		{"draft to sent", QuotationStatusDraft, QuotationStatusSent, true},
		{"draft to accepted", QuotationStatusDraft, QuotationStatusAccepted, true},
		{"draft to rejected", QuotationStatusDraft, QuotationStatusRejected, true},
		{"sent to accepted", QuotationStatusSent, QuotationStatusAccepted, true},
		{"sent to rejected", QuotationStatusSent, QuotationStatusRejected, true},
		{"accepted is terminal for status endpoint", QuotationStatusAccepted, QuotationStatusRejected, false},
		{"rejected is terminal", QuotationStatusRejected, QuotationStatusSent, false},
		{"converted is terminal", QuotationStatusConverted, QuotationStatusSent, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			q := f.createQuotation(t, "100")
			f.repo.quotations[q.ID].Status = tc.from

			_, err := f.svc.UpdateQuotationStatus(context.Background(), q.ID, tc.to)
			if tc.wantOK {
				require.NoError(t, err)
				got, _ := f.svc.GetQuotation(context.Background(), q.ID)
				assert.Equal(t, tc.to, got.Status)
			} else {
				assert.ErrorIs(t, err, shared.ErrInvalidState)
			}
		})
	}
}

func TestUpdateQuotationOnlyWhileEditable(t *testing.T) {
	f := newFixture(t)
	q := f.createQuotation(t, "100")

	for _, status := range []QuotationStatus{QuotationStatusAccepted, QuotationStatusRejected, QuotationStatusConverted} {
		f.repo.quotations[q.ID].Status = status
		_, err := f.svc.UpdateQuotation(context.Background(), q.ID, UpdateQuotationRequest{Notes: ptr("late edit")})
		assert.ErrorIs(t, err, shared.ErrInvalidState, "status %s", status)
	}

	f.repo.quotations[q.ID].Status = QuotationStatusSent
	updated, err := f.svc.UpdateQuotation(context.Background(), q.ID, UpdateQuotationRequest{
		Lines: ptr([]LineItemRequest{{Name: "New line", Quantity: 3, UnitPrice: ptr(dec(t, "40"))}}),
	})
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)
	assert.True(t, updated.Total.Equal(dec(t, "120")), "total %s", updated.Total)
}

func TestDeleteQuotationRefusesConverted(t *testing.T) {
	f := newFixture(t)
	q := f.createAcceptedQuotation(t, "100")
	_, err := f.svc.ConvertToInvoice(context.Background(), q.ID, ConvertQuotationRequest{})
	require.NoError(t, err)

	err = f.svc.DeleteQuotation(context.Background(), q.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	_, err = f.svc.GetQuotation(context.Background(), q.ID)
	assert.NoError(t, err, "quotation must survive the refused delete")
}

// ============================================================================
// CONVERSION TESTS
// ============================================================================

func TestConvertToInvoice(t *testing.T) {
	f := newFixture(t)
	q := f.createAcceptedQuotation(t, "1000")

	inv, err := f.svc.ConvertToInvoice(context.Background(), q.ID, ConvertQuotationRequest{})
	require.NoError(t, err)

	assert.Equal(t, "INV-2503-0001", inv.DocNumber)
	require.NotNil(t, inv.QuotationID)
	assert.Equal(t, q.ID, *inv.QuotationID)
	assert.Equal(t, InvoiceStatusUnpaid, inv.Status)
	assert.True(t, inv.Total.Equal(q.Total))
	assert.True(t, inv.PaidAmount.IsZero())
	require.NotNil(t, inv.DueDate)
	assert.Equal(t, f.now.AddDate(0, 0, 30), *inv.DueDate)

	converted, err := f.svc.GetQuotation(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, QuotationStatusConverted, converted.Status)

	// Lines are fresh rows, not references to the quotation's lines.
	require.Len(t, inv.Lines, len(q.Lines))
	for i := range inv.Lines {
		assert.NotEqual(t, q.Lines[i].ID, inv.Lines[i].ID)
		assert.Equal(t, inv.ID, inv.Lines[i].InvoiceID)
		assert.Equal(t, q.Lines[i].Name, inv.Lines[i].Name)
		assert.True(t, inv.Lines[i].LineTotal.Equal(q.Lines[i].LineTotal))
	}
}

func TestConvertToInvoiceIsOneShot(t *testing.T) {
	f := newFixture(t)
	q := f.createAcceptedQuotation(t, "1000")

	_, err := f.svc.ConvertToInvoice(context.Background(), q.ID, ConvertQuotationRequest{})
	require.NoError(t, err)

	_, err = f.svc.ConvertToInvoice(context.Background(), q.ID, ConvertQuotationRequest{})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, total, err := f.svc.ListInvoices(context.Background(), ListInvoicesRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, total, "second conversion must not create another invoice")
}

func TestConvertFromAnyNonConvertedStatus(t *testing.T) {
	for _, status := range []QuotationStatus{QuotationStatusDraft, QuotationStatusSent, QuotationStatusAccepted, QuotationStatusRejected} {
		f := newFixture(t)
		q := f.createQuotation(t, "100")
		f.repo.quotations[q.ID].Status = status

		inv, err := f.svc.ConvertToInvoice(context.Background(), q.ID, ConvertQuotationRequest{})
		require.NoError(t, err, "status %s", status)
		assert.Equal(t, InvoiceStatusUnpaid, inv.Status)

		got, err := f.svc.GetQuotation(context.Background(), q.ID)
		require.NoError(t, err)
		assert.Equal(t, QuotationStatusConverted, got.Status)
	}
}

func TestConvertHonorsExplicitDueDate(t *testing.T) {
	f := newFixture(t)
	q := f.createAcceptedQuotation(t, "100")
	due := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	inv, err := f.svc.ConvertToInvoice(context.Background(), q.ID, ConvertQuotationRequest{DueDate: &due})
	require.NoError(t, err)
	require.NotNil(t, inv.DueDate)
	assert.Equal(t, due, *inv.DueDate)
}

// ============================================================================
// PAYMENT TESTS
// ============================================================================

func TestRecordPaymentLedger(t *testing.T) {
	f := newFixture(t)
	inv := f.createInvoice(t, "1000")
	ctx := context.Background()

	// Partial payment.
	after, err := f.svc.RecordPayment(ctx, inv.ID, RecordPaymentRequest{
		Amount: dec(t, "400"), Method: PaymentMethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPartial, after.Status)
	assert.True(t, after.PaidAmount.Equal(dec(t, "400")))
	assert.True(t, after.RemainingAmount.Equal(dec(t, "600")))

	// Overpayment is rejected, ledger unchanged.
	_, err = f.svc.RecordPayment(ctx, inv.ID, RecordPaymentRequest{
		Amount: dec(t, "700"), Method: PaymentMethodTransfer,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
	check, _ := f.svc.GetInvoice(ctx, inv.ID)
	assert.True(t, check.PaidAmount.Equal(dec(t, "400")))
	assert.Len(t, check.Payments, 1)

	// Exact remainder settles the invoice.
	after, err = f.svc.RecordPayment(ctx, inv.ID, RecordPaymentRequest{
		Amount: dec(t, "600"), Method: PaymentMethodTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, after.Status)
	assert.True(t, after.RemainingAmount.IsZero())
	assert.Len(t, after.Payments, 2)

	// A paid invoice takes no further payments.
	_, err = f.svc.RecordPayment(ctx, inv.ID, RecordPaymentRequest{
		Amount: dec(t, "1"), Method: PaymentMethodCash,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestRecordPaymentRejectsNonPositiveAmounts(t *testing.T) {
	f := newFixture(t)
	inv := f.createInvoice(t, "1000")

	for _, amount := range []string{"0", "-50"} {
		_, err := f.svc.RecordPayment(context.Background(), inv.ID, RecordPaymentRequest{
			Amount: dec(t, amount), Method: PaymentMethodCash,
		})
		assert.ErrorIs(t, err, shared.ErrValidation, "amount %s", amount)
	}
	check, _ := f.svc.GetInvoice(context.Background(), inv.ID)
	assert.Empty(t, check.Payments)
}

func TestRecordPaymentRollsBackOnInsertFailure(t *testing.T) {
	f := newFixture(t)
	inv := f.createInvoice(t, "1000")
	f.repo.failOn["InsertPayment"] = fmt.Errorf("disk full")

	_, err := f.svc.RecordPayment(context.Background(), inv.ID, RecordPaymentRequest{
		Amount: dec(t, "400"), Method: PaymentMethodCash,
	})
	require.Error(t, err)

	check, _ := f.svc.GetInvoice(context.Background(), inv.ID)
	assert.Equal(t, InvoiceStatusUnpaid, check.Status)
	assert.True(t, check.PaidAmount.IsZero())
}

// ============================================================================
// INVOICE STATUS TESTS
// ============================================================================

func TestInvoiceOverdueIsDerivedNotStored(t *testing.T) {
	f := newFixture(t)
	inv := f.createInvoice(t, "1000")
	past := f.now.AddDate(0, 0, -1)
	f.repo.invoices[inv.ID].DueDate = &past

	got, err := f.svc.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusOverdue, got.Status)
	assert.Equal(t, InvoiceStatusUnpaid, f.repo.invoices[inv.ID].Status, "stored status untouched")

	// Settling the invoice clears the overlay.
	_, err = f.svc.RecordPayment(context.Background(), inv.ID, RecordPaymentRequest{
		Amount: dec(t, "1000"), Method: PaymentMethodTransfer,
	})
	require.NoError(t, err)
	got, err = f.svc.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, got.Status)
}

func TestUpdateInvoiceStatusMustMatchLedger(t *testing.T) {
	f := newFixture(t)
	inv := f.createInvoice(t, "1000")

	_, err := f.svc.UpdateInvoiceStatus(context.Background(), inv.ID, InvoiceStatusPaid)
	assert.ErrorIs(t, err, shared.ErrInvalidState, "no payments recorded, cannot be paid")

	got, err := f.svc.UpdateInvoiceStatus(context.Background(), inv.ID, InvoiceStatusUnpaid)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusUnpaid, got.Status)
}

// ============================================================================
// SIGNATURE & IMAGE TESTS
// ============================================================================

func TestAddSignatureOncePerType(t *testing.T) {
	f := newFixture(t)
	q := f.createQuotation(t, "100")
	ctx := context.Background()

	sig, err := f.svc.AddSignature(ctx, DocumentKindQuotation, q.ID, AddSignatureRequest{
		Type: SignatureTypeCustomer, SignatureData: "data:image/png;base64,aGVsbG8=", SignerName: "Somchai",
	})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/sig-1.png", sig.ImagePath)

	// Second signature of the same type conflicts; its uploaded file is cleaned up.
	_, err = f.svc.AddSignature(ctx, DocumentKindQuotation, q.ID, AddSignatureRequest{
		Type: SignatureTypeCustomer, SignatureData: "data:image/png;base64,aGVsbG8=", SignerName: "Somchai",
	})
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.Contains(t, f.blobs.removed, "/uploads/sig-2.png")

	// The other type is still free.
	_, err = f.svc.AddSignature(ctx, DocumentKindQuotation, q.ID, AddSignatureRequest{
		Type: SignatureTypeShop, SignatureData: "data:image/png;base64,aGVsbG8=", SignerName: "Shop",
	})
	require.NoError(t, err)

	got, err := f.svc.GetQuotation(ctx, q.ID)
	require.NoError(t, err)
	assert.Len(t, got.Signatures, 2)
}

func TestAddSignatureToMissingDocument(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AddSignature(context.Background(), DocumentKindInvoice, 999, AddSignatureRequest{
		Type: SignatureTypeShop, SignatureData: "data:image/png;base64,aGVsbG8=", SignerName: "Shop",
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, f.blobs.saved, "nothing uploaded for a missing document")
}

func TestImageAttachmentLifecycle(t *testing.T) {
	f := newFixture(t)
	inv := f.createInvoice(t, "100")
	ctx := context.Background()

	images, err := f.svc.AddImages(ctx, DocumentKindInvoice, inv.ID, AddImagesRequest{
		Images: []ImageRequest{
			{Path: "/uploads/a.jpg", Caption: ptr("before")},
			{Path: "/uploads/b.jpg"},
		},
	})
	require.NoError(t, err)
	require.Len(t, images, 2)

	err = f.svc.DeleteImage(ctx, DocumentKindInvoice, inv.ID, images[0].ID)
	require.NoError(t, err)
	assert.Contains(t, f.blobs.removed, "/uploads/a.jpg")

	got, err := f.svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 1)
	assert.Equal(t, "/uploads/b.jpg", got.Images[0].Path)

	// Deleting through the wrong parent is a not-found, not a cross-document delete.
	err = f.svc.DeleteImage(ctx, DocumentKindQuotation, inv.ID, got.Images[0].ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteQuotationRemovesBlobs(t *testing.T) {
	f := newFixture(t)
	q := f.createQuotation(t, "100")
	ctx := context.Background()

	_, err := f.svc.AddSignature(ctx, DocumentKindQuotation, q.ID, AddSignatureRequest{
		Type: SignatureTypeShop, SignatureData: "data:image/png;base64,aGVsbG8=", SignerName: "Shop",
	})
	require.NoError(t, err)
	_, err = f.svc.AddImages(ctx, DocumentKindQuotation, q.ID, AddImagesRequest{
		Images: []ImageRequest{{Path: "/uploads/site.jpg"}},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteQuotation(ctx, q.ID))
	assert.Contains(t, f.blobs.removed, "/uploads/sig-1.png")
	assert.Contains(t, f.blobs.removed, "/uploads/site.jpg")
}
