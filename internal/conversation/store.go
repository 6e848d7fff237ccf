package conversation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sorrisolabs/clinic-assistant/internal/appointment"
	"github.com/sorrisolabs/clinic-assistant/internal/patient"
)

// Store gives the engine one database transaction per turn. Every patient
// and appointment write inside fn commits or rolls back together, so a
// failed turn leaves no partial state behind.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, patients patient.Repository, appts appointment.Repository) error) error

	// RecordOrphanedEvent runs on its own connection: it must survive the
	// rollback of the turn that produced the orphan.
	RecordOrphanedEvent(ctx context.Context, calendarEventID, reason string) error
}

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) RunInTx(ctx context.Context, fn func(ctx context.Context, patients patient.Repository, appts appointment.Repository) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin turn tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, patient.NewPgRepository(tx), appointment.NewPgRepository(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit turn tx: %w", err)
	}
	return nil
}

func (s *PgStore) RecordOrphanedEvent(ctx context.Context, calendarEventID, reason string) error {
	return appointment.NewPgRepository(s.pool).RecordOrphanedEvent(ctx, calendarEventID, reason)
}
