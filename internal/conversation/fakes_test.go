package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sorrisolabs/clinic-assistant/internal/appointment"
	"github.com/sorrisolabs/clinic-assistant/internal/calendar"
	"github.com/sorrisolabs/clinic-assistant/internal/patient"
	redisclient "github.com/sorrisolabs/clinic-assistant/internal/redis"
)

var errLockBusy = redisclient.ErrLockNotAcquired

type fakePatients struct {
	bySender map[string]*patient.Patient
	byID     map[uuid.UUID]*patient.Patient
}

func newFakePatients() *fakePatients {
	return &fakePatients{
		bySender: make(map[string]*patient.Patient),
		byID:     make(map[uuid.UUID]*patient.Patient),
	}
}

func (f *fakePatients) add(p *patient.Patient) *patient.Patient {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ConversationState == "" {
		p.ConversationState = string(StateNone)
	}
	f.bySender[p.SenderKey] = p
	f.byID[p.ID] = p
	return p
}

func (f *fakePatients) GetBySenderKey(ctx context.Context, senderKey string) (*patient.Patient, error) {
	p, ok := f.bySender[senderKey]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePatients) Create(ctx context.Context, senderKey string, displayName *string) (*patient.Patient, error) {
	if _, ok := f.bySender[senderKey]; ok {
		return nil, patient.ErrSenderConflict
	}
	p := f.add(&patient.Patient{
		SenderKey:   senderKey,
		DisplayName: displayName,
		CreatedAt:   time.Now(),
	})
	cp := *p
	return &cp, nil
}

func (f *fakePatients) UpdateConversation(ctx context.Context, id uuid.UUID, state string, pendingDate *time.Time) error {
	p, ok := f.byID[id]
	if !ok {
		return patient.ErrPatientNotFound
	}
	p.ConversationState = state
	p.PendingDate = pendingDate
	return nil
}

func (f *fakePatients) UpdateDisplayName(ctx context.Context, id uuid.UUID, name string) error {
	p, ok := f.byID[id]
	if !ok {
		return patient.ErrPatientNotFound
	}
	p.DisplayName = &name
	return nil
}

type fakeAppointments struct {
	rows      []appointment.Appointment
	events    []appointment.EventLog
	orphans   []appointment.OrphanedEvent
	createErr error
}

func (f *fakeAppointments) Create(ctx context.Context, patientID uuid.UUID, startAt, endAt time.Time, externalEventID string) (*appointment.Appointment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	a := appointment.Appointment{
		ID:              uuid.New(),
		PatientID:       patientID,
		StartAt:         startAt,
		EndAt:           endAt,
		Status:          appointment.StatusConfirmed,
		ExternalEventID: externalEventID,
		CreatedAt:       time.Now(),
	}
	f.rows = append(f.rows, a)
	return &a, nil
}

func (f *fakeAppointments) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]appointment.Appointment, error) {
	var out []appointment.Appointment
	for _, a := range f.rows {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointments) InsertEvent(ctx context.Context, ev appointment.EventLog) error {
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeAppointments) RecordOrphanedEvent(ctx context.Context, calendarEventID, reason string) error {
	f.orphans = append(f.orphans, appointment.OrphanedEvent{
		ID:              int64(len(f.orphans) + 1),
		CalendarEventID: calendarEventID,
		Reason:          reason,
		CreatedAt:       time.Now(),
	})
	return nil
}

func (f *fakeAppointments) FindUnresolvedOrphans(ctx context.Context, limit int) ([]appointment.OrphanedEvent, error) {
	var out []appointment.OrphanedEvent
	for _, o := range f.orphans {
		if o.ResolvedAt == nil {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeAppointments) MarkOrphanResolved(ctx context.Context, id int64) error {
	for i := range f.orphans {
		if f.orphans[i].ID == id {
			now := time.Now()
			f.orphans[i].ResolvedAt = &now
			return nil
		}
	}
	return errors.New("orphan not found")
}

type fakeStore struct {
	patients *fakePatients
	appts    *fakeAppointments
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		patients: newFakePatients(),
		appts:    &fakeAppointments{},
	}
}

func (s *fakeStore) RunInTx(ctx context.Context, fn func(ctx context.Context, patients patient.Repository, appts appointment.Repository) error) error {
	return fn(ctx, s.patients, s.appts)
}

func (s *fakeStore) RecordOrphanedEvent(ctx context.Context, calendarEventID, reason string) error {
	return s.appts.RecordOrphanedEvent(ctx, calendarEventID, reason)
}

type fakeLocker struct {
	busy bool
}

func (l *fakeLocker) WithSenderLock(ctx context.Context, senderKey string, fn func(ctx context.Context) error) error {
	if l.busy {
		return errLockBusy
	}
	return fn(ctx)
}

type fakeGateway struct {
	busy        []calendar.Interval
	listErr     error
	createErr   error
	deleteErr   error
	created     []calendar.CreatedEvent
	deleteCalls []string
}

func (g *fakeGateway) ListBusy(ctx context.Context, from, to time.Time) ([]calendar.Interval, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.busy, nil
}

func (g *fakeGateway) CreateEvent(ctx context.Context, title, description string, start, end time.Time) (*calendar.CreatedEvent, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	ev := calendar.CreatedEvent{
		ID:       fmt.Sprintf("evt-%d", len(g.created)+1),
		HTMLLink: fmt.Sprintf("https://calendar.example/evt-%d", len(g.created)+1),
	}
	g.created = append(g.created, ev)
	return &ev, nil
}

func (g *fakeGateway) DeleteEvent(ctx context.Context, eventID string) error {
	g.deleteCalls = append(g.deleteCalls, eventID)
	return g.deleteErr
}
