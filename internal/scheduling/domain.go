package scheduling

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type AppointmentType string

const (
	AppointmentTypeInstallation AppointmentType = "installation"
	AppointmentTypePayment      AppointmentType = "payment"
	AppointmentTypeOther        AppointmentType = "other"
)

// Appointment is a scheduled visit or follow-up, optionally linked to the
// customer and invoice it concerns.
type Appointment struct {
	ID              int64             `json:"id"`
	Title           string            `json:"title"`
	Description     *string           `json:"description,omitempty"`
	AppointmentDate time.Time         `json:"appointment_date"`
	StartTime       *string           `json:"start_time,omitempty"`
	EndTime         *string           `json:"end_time,omitempty"`
	Type            AppointmentType   `json:"type"`
	Status          AppointmentStatus `json:"status"`
	Location        *string           `json:"location,omitempty"`
	ContactPerson   *string           `json:"contact_person,omitempty"`
	ContactPhone    *string           `json:"contact_phone,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
	CustomerID      *int64            `json:"customer_id,omitempty"`
	InvoiceID       *int64            `json:"invoice_id,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Terminal reports whether the appointment can still change status.
func (a *Appointment) Terminal() bool {
	return a.Status != AppointmentStatusPending
}

type CreateAppointmentRequest struct {
	Title           string          `json:"title" validate:"required,max=200"`
	Description     *string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	AppointmentDate time.Time       `json:"appointment_date" validate:"required"`
	StartTime       *string         `json:"start_time,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime         *string         `json:"end_time,omitempty" validate:"omitempty,datetime=15:04"`
	Type            AppointmentType `json:"type" validate:"required,oneof=installation payment other"`
	Location        *string         `json:"location,omitempty" validate:"omitempty,max=500"`
	ContactPerson   *string         `json:"contact_person,omitempty" validate:"omitempty,max=200"`
	ContactPhone    *string         `json:"contact_phone,omitempty" validate:"omitempty,max=50"`
	Notes           *string         `json:"notes,omitempty" validate:"omitempty,max=2000"`
	CustomerID      *int64          `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	InvoiceID       *int64          `json:"invoice_id,omitempty" validate:"omitempty,gt=0"`
}

type UpdateAppointmentRequest struct {
	Title           *string          `json:"title,omitempty" validate:"omitempty,max=200"`
	Description     *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	AppointmentDate *time.Time       `json:"appointment_date,omitempty"`
	StartTime       *string          `json:"start_time,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime         *string          `json:"end_time,omitempty" validate:"omitempty,datetime=15:04"`
	Type            *AppointmentType `json:"type,omitempty" validate:"omitempty,oneof=installation payment other"`
	Location        *string          `json:"location,omitempty" validate:"omitempty,max=500"`
	ContactPerson   *string          `json:"contact_person,omitempty" validate:"omitempty,max=200"`
	ContactPhone    *string          `json:"contact_phone,omitempty" validate:"omitempty,max=50"`
	Notes           *string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
	CustomerID      *int64           `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	InvoiceID       *int64           `json:"invoice_id,omitempty" validate:"omitempty,gt=0"`
}

type AppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" validate:"required,oneof=completed cancelled"`
}

type ListAppointmentsRequest struct {
	Status *AppointmentStatus
	Type   *AppointmentType
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}
