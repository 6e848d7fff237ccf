package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PgRepository struct {
	db DBTX
}

func NewPgRepository(db DBTX) *PgRepository {
	return &PgRepository{db: db}
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.StartAt,
		&a.EndAt,
		&a.Status,
		&a.ExternalEventID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func (r *PgRepository) Create(ctx context.Context, patientID uuid.UUID, startAt, endAt time.Time, externalEventID string) (*Appointment, error) {
	id := uuid.New()

	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, start_at, end_at, status, external_event_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'confirmed', $5, now(), now())
		RETURNING id, patient_id, start_at, end_at, status, external_event_id, created_at, updated_at
	`, id, patientID, startAt, endAt, externalEventID)

	return scanAppointment(row)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, patient_id, start_at, end_at, status, external_event_id, created_at, updated_at
		FROM appointments
		WHERE patient_id = $1
		ORDER BY start_at DESC
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	var appID *uuid.UUID
	if ev.AppointmentID != nil {
		appID = ev.AppointmentID
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, appID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func (r *PgRepository) RecordOrphanedEvent(ctx context.Context, calendarEventID, reason string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO orphaned_events (calendar_event_id, reason, created_at)
		VALUES ($1, $2, now())
	`, calendarEventID, reason)
	if err != nil {
		return fmt.Errorf("record orphaned event: %w", err)
	}
	return nil
}

func (r *PgRepository) FindUnresolvedOrphans(ctx context.Context, limit int) ([]OrphanedEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, calendar_event_id, reason, created_at, resolved_at
		FROM orphaned_events
		WHERE resolved_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []OrphanedEvent
	for rows.Next() {
		var ev OrphanedEvent
		if err := rows.Scan(&ev.ID, &ev.CalendarEventID, &ev.Reason, &ev.CreatedAt, &ev.ResolvedAt); err != nil {
			return nil, err
		}
		result = append(result, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) MarkOrphanResolved(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orphaned_events
		SET resolved_at = now()
		WHERE id = $1
		  AND resolved_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("orphaned event not found or already resolved")
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
