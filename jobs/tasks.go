// Package jobs runs background work over Asynq: appointment reminders
// scheduled at creation time and a periodic overdue sweep that keeps the
// dashboard fresh.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/docket-th/docket/internal/analytics"
	"github.com/docket-th/docket/internal/money"
	"github.com/docket-th/docket/internal/scheduling"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAppointmentReminder fires ahead of a pending appointment.
	TaskTypeAppointmentReminder = "appointment:remind"
	// TaskTypeOverdueScan periodically refreshes overdue invoice figures.
	TaskTypeOverdueScan = "invoice:overdue_scan"
)

// AppointmentReminderPayload identifies the appointment to remind about.
type AppointmentReminderPayload struct {
	AppointmentID int64 `json:"appointment_id"`
}

// NewAppointmentReminderTask constructs an Asynq task.
func NewAppointmentReminderTask(payload AppointmentReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAppointmentReminder, data), nil
}

// NewOverdueScanTask constructs the parameterless sweep task.
func NewOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeOverdueScan, nil)
}

// NewAppointmentReminderHandler processes reminder tasks. Appointments that
// were completed, cancelled or deleted since scheduling are dropped quietly.
func NewAppointmentReminderHandler(logger *slog.Logger, repo scheduling.Repository) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AppointmentReminderPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		appointment, err := repo.Get(ctx, payload.AppointmentID)
		if err != nil {
			return asynq.SkipRetry
		}
		if appointment.Terminal() {
			return nil
		}
		// Placeholder delivery channel; SMS/LINE notify integration comes later.
		logger.Info("appointment reminder",
			slog.Int64("appointment_id", appointment.ID),
			slog.String("title", appointment.Title),
			slog.Time("at", appointment.AppointmentDate),
		)
		return nil
	}
}

// NewOverdueScanHandler processes sweep tasks: it retires cached dashboard
// payloads so overdue counts move without waiting for a write, then logs the
// current figure.
func NewOverdueScanHandler(logger *slog.Logger, svc *analytics.Service) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		if err := svc.Bump(ctx); err != nil {
			return err
		}
		summary, err := svc.Summary(ctx)
		if err != nil {
			return err
		}
		logger.Info("overdue scan",
			slog.Int64("overdue_invoices", summary.Invoices.Overdue),
			slog.String("outstanding", money.FormatTHB(summary.Outstanding)),
		)
		return nil
	}
}
