package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/docket-th/docket/internal/shared"
)

// ReminderScheduler queues a reminder to fire before the appointment. May be
// nil when the worker is not deployed.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, appointmentID int64, at time.Time) error
}

// reminderLead is how long before the appointment the reminder fires.
const reminderLead = 24 * time.Hour

// Service implements the appointment lifecycle.
type Service struct {
	repo      Repository
	reminders ReminderScheduler

	now func() time.Time
}

// NewService constructs the scheduling service. reminders may be nil.
func NewService(repo Repository, reminders ReminderScheduler) *Service {
	return &Service{repo: repo, reminders: reminders, now: time.Now}
}

func (s *Service) Get(ctx context.Context, id int64) (*Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListAppointmentsRequest) ([]Appointment, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Create(ctx context.Context, req CreateAppointmentRequest) (*Appointment, error) {
	id, err := s.repo.Create(ctx, Appointment{
		Title:           req.Title,
		Description:     req.Description,
		AppointmentDate: req.AppointmentDate,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Type:            req.Type,
		Status:          AppointmentStatusPending,
		Location:        req.Location,
		ContactPerson:   req.ContactPerson,
		ContactPhone:    req.ContactPhone,
		Notes:           req.Notes,
		CustomerID:      req.CustomerID,
		InvoiceID:       req.InvoiceID,
	})
	if err != nil {
		return nil, err
	}

	if s.reminders != nil {
		if at := req.AppointmentDate.Add(-reminderLead); at.After(s.now()) {
			// Reminder delivery is best effort; the appointment stands either way.
			_ = s.reminders.ScheduleReminder(ctx, id, at)
		}
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateAppointmentRequest) (*Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.Terminal() {
		return nil, fmt.Errorf("%w: %s appointment cannot be edited", shared.ErrInvalidState, appointment.Status)
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.AppointmentDate != nil {
		updates["appointment_date"] = *req.AppointmentDate
	}
	if req.StartTime != nil {
		updates["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		updates["end_time"] = *req.EndTime
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.ContactPerson != nil {
		updates["contact_person"] = *req.ContactPerson
	}
	if req.ContactPhone != nil {
		updates["contact_phone"] = *req.ContactPhone
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.CustomerID != nil {
		updates["customer_id"] = *req.CustomerID
	}
	if req.InvoiceID != nil {
		updates["invoice_id"] = *req.InvoiceID
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, err
		}
	}

	if s.reminders != nil && req.AppointmentDate != nil {
		if at := req.AppointmentDate.Add(-reminderLead); at.After(s.now()) {
			_ = s.reminders.ScheduleReminder(ctx, id, at)
		}
	}
	return s.repo.Get(ctx, id)
}

// UpdateStatus moves a pending appointment to completed or cancelled. Both
// targets are terminal; a finished appointment never reopens.
func (s *Service) UpdateStatus(ctx context.Context, id int64, target AppointmentStatus) (*Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.Terminal() {
		return nil, fmt.Errorf("%w: appointment is already %s", shared.ErrInvalidState, appointment.Status)
	}
	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
