package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docket-th/docket/internal/shared"
)

// Repository is the persistence surface for appointments.
type Repository interface {
	Get(ctx context.Context, id int64) (*Appointment, error)
	List(ctx context.Context, req ListAppointmentsRequest) ([]Appointment, int, error)
	Create(ctx context.Context, a Appointment) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	UpdateStatus(ctx context.Context, id int64, status AppointmentStatus) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const appointmentColumns = `id, title, description, appointment_date, start_time, end_time, type, status, location, contact_person, contact_phone, notes, customer_id, invoice_id, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.Title, &a.Description, &a.AppointmentDate, &a.StartTime, &a.EndTime,
		&a.Type, &a.Status, &a.Location, &a.ContactPerson, &a.ContactPhone, &a.Notes,
		&a.CustomerID, &a.InvoiceID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx,
		"SELECT "+appointmentColumns+" FROM appointments WHERE id = $1", id))
}

func (r *repository) List(ctx context.Context, req ListAppointmentsRequest) ([]Appointment, int, error) {
	var conditions []string
	var args []any
	argPos := 1

	add := func(cond string, v any) {
		conditions = append(conditions, fmt.Sprintf(cond, argPos))
		args = append(args, v)
		argPos++
	}
	if req.Status != nil {
		add("status = $%d", *req.Status)
	}
	if req.Type != nil {
		add("type = $%d", *req.Type)
	}
	if req.From != nil {
		add("appointment_date >= $%d", *req.From)
	}
	if req.To != nil {
		add("appointment_date < $%d", *req.To)
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
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM appointments "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(
		"SELECT %s FROM appointments %s ORDER BY appointment_date, id LIMIT $%d OFFSET $%d",
		appointmentColumns, where, argPos, argPos+1,
	)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *a)
	}
	return result, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, a Appointment) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (title, description, appointment_date, start_time, end_time, type, status, location, contact_person, contact_phone, notes, customer_id, invoice_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING id
	`, a.Title, a.Description, a.AppointmentDate, a.StartTime, a.EndTime, a.Type, a.Status,
		a.Location, a.ContactPerson, a.ContactPhone, a.Notes, a.CustomerID, a.InvoiceID).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, fmt.Errorf("%w: referenced customer or invoice does not exist", shared.ErrValidation)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	query := "UPDATE appointments SET updated_at = NOW()"
	var args []any
	argPos := 1

	for _, col := range []string{"title", "description", "appointment_date", "start_time", "end_time", "type", "location", "contact_person", "contact_phone", "notes", "customer_id", "invoice_id"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: referenced customer or invoice does not exist", shared.ErrValidation)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status AppointmentStatus) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE appointments SET status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM appointments WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
