package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Duration is the fixed consultation length; end_at is always start_at + Duration.
const Duration = time.Hour

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

type Appointment struct {
	ID              uuid.UUID
	PatientID       uuid.UUID
	StartAt         time.Time
	EndAt           time.Time
	Status          Status
	ExternalEventID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// OrphanedEvent records a calendar event whose compensating delete failed.
// The sweeper retries these out of band.
type OrphanedEvent struct {
	ID              int64
	CalendarEventID string
	Reason          string
	CreatedAt       time.Time
	ResolvedAt      *time.Time
}
