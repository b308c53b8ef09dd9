package analytics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// QuotationCounts breaks down quotations by lifecycle state.
type QuotationCounts struct {
	Total     int64 `json:"total"`
	Draft     int64 `json:"draft"`
	Sent      int64 `json:"sent"`
	Accepted  int64 `json:"accepted"`
	Rejected  int64 `json:"rejected"`
	Converted int64 `json:"converted"`
}

// InvoiceCounts breaks down invoices by payment state. Overdue counts the
// unsettled invoices past due regardless of their stored status.
type InvoiceCounts struct {
	Total   int64 `json:"total"`
	Unpaid  int64 `json:"unpaid"`
	Partial int64 `json:"partial"`
	Paid    int64 `json:"paid"`
	Overdue int64 `json:"overdue"`
}

// Summary is the dashboard headline payload.
type Summary struct {
	Quotations           QuotationCounts `json:"quotations"`
	Invoices             InvoiceCounts   `json:"invoices"`
	RevenueThisMonth     decimal.Decimal `json:"revenue_this_month"`
	Outstanding          decimal.Decimal `json:"outstanding"`
	UpcomingAppointments int64           `json:"upcoming_appointments"`
}

// MonthRevenue is one point on the revenue chart: payments received during
// the month, keyed as YYYY-MM.
type MonthRevenue struct {
	Month        string          `json:"month"`
	Revenue      decimal.Decimal `json:"revenue"`
	PaymentCount int64           `json:"payment_count"`
}

// Repository runs the dashboard aggregate queries.
type Repository interface {
	Summary(ctx context.Context, now time.Time) (*Summary, error)
	Revenue(ctx context.Context, from time.Time) ([]MonthRevenue, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Summary(ctx context.Context, now time.Time) (*Summary, error) {
	var s Summary
	var outstanding, revenue string
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	// The four aggregates touch independent tables; run them concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.pool.QueryRow(gctx, `
			SELECT COUNT(*),
				COUNT(*) FILTER (WHERE status = 'draft'),
				COUNT(*) FILTER (WHERE status = 'sent'),
				COUNT(*) FILTER (WHERE status = 'accepted'),
				COUNT(*) FILTER (WHERE status = 'rejected'),
				COUNT(*) FILTER (WHERE status = 'converted')
			FROM quotations
		`).Scan(&s.Quotations.Total, &s.Quotations.Draft, &s.Quotations.Sent,
			&s.Quotations.Accepted, &s.Quotations.Rejected, &s.Quotations.Converted)
	})
	g.Go(func() error {
		return r.pool.QueryRow(gctx, `
			SELECT COUNT(*),
				COUNT(*) FILTER (WHERE status = 'unpaid'),
				COUNT(*) FILTER (WHERE status = 'partial'),
				COUNT(*) FILTER (WHERE status = 'paid'),
				COUNT(*) FILTER (WHERE status <> 'paid' AND due_date IS NOT NULL AND due_date < $1),
				COALESCE(SUM(total - paid_amount) FILTER (WHERE status <> 'paid'), 0)::text
			FROM invoices
		`, now).Scan(&s.Invoices.Total, &s.Invoices.Unpaid, &s.Invoices.Partial,
			&s.Invoices.Paid, &s.Invoices.Overdue, &outstanding)
	})
	g.Go(func() error {
		return r.pool.QueryRow(gctx, `
			SELECT COALESCE(SUM(amount), 0)::text
			FROM payments
			WHERE payment_date >= $1
		`, monthStart).Scan(&revenue)
	})
	g.Go(func() error {
		return r.pool.QueryRow(gctx, `
			SELECT COUNT(*)
			FROM appointments
			WHERE status = 'pending' AND appointment_date >= $1
		`, now).Scan(&s.UpcomingAppointments)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.Outstanding, _ = decimal.NewFromString(outstanding)
	s.RevenueThisMonth, _ = decimal.NewFromString(revenue)
	return &s, nil
}

func (r *repository) Revenue(ctx context.Context, from time.Time) ([]MonthRevenue, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(date_trunc('month', payment_date), 'YYYY-MM'),
			COALESCE(SUM(amount), 0)::text,
			COUNT(*)
		FROM payments
		WHERE payment_date >= $1
		GROUP BY 1
		ORDER BY 1
	`, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var series []MonthRevenue
	for rows.Next() {
		var m MonthRevenue
		var revenue string
		if err := rows.Scan(&m.Month, &revenue, &m.PaymentCount); err != nil {
			return nil, err
		}
		m.Revenue, _ = decimal.NewFromString(revenue)
		series = append(series, m)
	}
	return series, rows.Err()
}
