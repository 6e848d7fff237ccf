package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrSenderConflict  = errors.New("sender key already registered")
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and the pgxmock pool, so the
// same repository runs inside a per-turn transaction or standalone.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository interface {
	GetBySenderKey(ctx context.Context, senderKey string) (*Patient, error)
	Create(ctx context.Context, senderKey string, displayName *string) (*Patient, error)
	UpdateConversation(ctx context.Context, id uuid.UUID, state string, pendingDate *time.Time) error
	UpdateDisplayName(ctx context.Context, id uuid.UUID, name string) error
}
