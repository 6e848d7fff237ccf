package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and the pgxmock pool.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository interface {
	Create(ctx context.Context, patientID uuid.UUID, startAt, endAt time.Time, externalEventID string) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error)

	InsertEvent(ctx context.Context, ev EventLog) error

	RecordOrphanedEvent(ctx context.Context, calendarEventID, reason string) error
	FindUnresolvedOrphans(ctx context.Context, limit int) ([]OrphanedEvent, error)
	MarkOrphanResolved(ctx context.Context, id int64) error
}
