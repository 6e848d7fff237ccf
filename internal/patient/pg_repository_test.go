package patient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *PgRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewPgRepository(mock)
}

func patientColumns() []string {
	return []string{"id", "sender_key", "display_name", "conversation_state", "pending_date", "created_at", "updated_at"}
}

func TestGetBySenderKey(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()
	now := time.Now()
	name := "Maria Silva"

	mock.ExpectQuery("SELECT id, sender_key, display_name, conversation_state, pending_date, created_at, updated_at").
		WithArgs("5511999999999").
		WillReturnRows(pgxmock.NewRows(patientColumns()).
			AddRow(id, "5511999999999", &name, "awaiting_date", nil, now, now))

	p, err := repo.GetBySenderKey(context.Background(), "5511999999999")
	if err != nil {
		t.Fatalf("GetBySenderKey: %v", err)
	}
	if p.ID != id {
		t.Errorf("id = %s, want %s", p.ID, id)
	}
	if p.ConversationState != "awaiting_date" {
		t.Errorf("state = %q", p.ConversationState)
	}
	if p.DisplayName == nil || *p.DisplayName != "Maria Silva" {
		t.Errorf("display name = %v", p.DisplayName)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestGetBySenderKeyNotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("SELECT id, sender_key").
		WithArgs("unknown").
		WillReturnRows(pgxmock.NewRows(patientColumns()))

	_, err := repo.GetBySenderKey(context.Background(), "unknown")
	if !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("err = %v, want ErrPatientNotFound", err)
	}
}

func TestCreateDuplicateSenderKey(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO patients").
		WithArgs(pgxmock.AnyArg(), "5511999999999", (*string)(nil)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "patients_sender_key_key"})

	_, err := repo.Create(context.Background(), "5511999999999", nil)
	if !errors.Is(err, ErrSenderConflict) {
		t.Errorf("err = %v, want ErrSenderConflict", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUpdateConversation(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()
	pending := time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE patients").
		WithArgs(id, "awaiting_slot_choice", &pending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdateConversation(context.Background(), id, "awaiting_slot_choice", &pending); err != nil {
		t.Fatalf("UpdateConversation: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUpdateConversationMissingPatient(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()

	mock.ExpectExec("UPDATE patients").
		WithArgs(id, "none", (*time.Time)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateConversation(context.Background(), id, "none", nil)
	if !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("err = %v, want ErrPatientNotFound", err)
	}
}
