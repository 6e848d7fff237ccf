package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type PgRepository struct {
	db DBTX
}

func NewPgRepository(db DBTX) *PgRepository {
	return &PgRepository{db: db}
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var displayName *string
	var pendingDate *time.Time

	err := row.Scan(
		&p.ID,
		&p.SenderKey,
		&displayName,
		&p.ConversationState,
		&pendingDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.DisplayName = displayName
	p.PendingDate = pendingDate
	return &p, nil
}

func (r *PgRepository) GetBySenderKey(ctx context.Context, senderKey string) (*Patient, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, sender_key, display_name, conversation_state, pending_date, created_at, updated_at
		FROM patients
		WHERE sender_key = $1
	`, senderKey)
	return scanPatient(row)
}

func (r *PgRepository) Create(ctx context.Context, senderKey string, displayName *string) (*Patient, error) {
	id := uuid.New()

	row := r.db.QueryRow(ctx, `
		INSERT INTO patients (id, sender_key, display_name, conversation_state, created_at, updated_at)
		VALUES ($1, $2, $3, 'none', now(), now())
		RETURNING id, sender_key, display_name, conversation_state, pending_date, created_at, updated_at
	`, id, senderKey, displayName)

	p, err := scanPatient(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrSenderConflict
		}
		return nil, err
	}
	return p, nil
}

func (r *PgRepository) UpdateConversation(ctx context.Context, id uuid.UUID, state string, pendingDate *time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE patients
		SET conversation_state = $2,
		    pending_date = $3,
		    updated_at = now()
		WHERE id = $1
	`, id, state, pendingDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

func (r *PgRepository) UpdateDisplayName(ctx context.Context, id uuid.UUID, name string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE patients
		SET display_name = $2,
		    updated_at = now()
		WHERE id = $1
	`, id, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}
