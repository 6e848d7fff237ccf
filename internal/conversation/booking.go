package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sorrisolabs/clinic-assistant/internal/appointment"
	"github.com/sorrisolabs/clinic-assistant/internal/calendar"
)

const (
	EventBookingConfirmed = "BOOKING_CONFIRMED"

	eventTitlePrefix = "Consulta - "
	eventDescription = "Agendamento realizado pelo assistente virtual."
)

// ErrCompensationFailed means a calendar event was created, the local
// write failed, and the compensating delete also failed. The event id is
// recorded in orphaned_events for the sweeper; until it runs the two
// systems of record disagree.
var ErrCompensationFailed = errors.New("compensating calendar delete failed")

type bookingResult struct {
	appt  *appointment.Appointment
	event *calendar.CreatedEvent
}

// book creates the external calendar event and then the local appointment
// row. The external call goes first so a failure there leaves nothing to
// undo; a local failure afterwards triggers exactly one compensating
// delete of the just-created event.
func (e *Engine) book(ctx context.Context, t *turn, start time.Time) (*bookingResult, error) {
	end := start.Add(appointment.Duration)

	ev, err := e.cal.CreateEvent(ctx, eventTitlePrefix+t.patient.Name(), eventDescription, start, end)
	if err != nil {
		return nil, err
	}

	appt, err := t.appts.Create(ctx, t.patient.ID, start, end, ev.ID)
	if err != nil {
		if delErr := e.cal.DeleteEvent(ctx, ev.ID); delErr != nil {
			log.Printf("compensation failed: event %s survives without a local appointment: %v (original failure: %v)", ev.ID, delErr, err)
			if recErr := e.store.RecordOrphanedEvent(ctx, ev.ID, delErr.Error()); recErr != nil {
				log.Printf("failed to record orphaned event %s: %v", ev.ID, recErr)
			}
			return nil, fmt.Errorf("%w: event %s (local write: %v)", ErrCompensationFailed, ev.ID, err)
		}
		return nil, fmt.Errorf("persist appointment: %w", err)
	}

	e.logEvent(ctx, t.appts, appt.ID, EventBookingConfirmed, map[string]any{
		"patient_id":        t.patient.ID.String(),
		"start_at":          start,
		"external_event_id": ev.ID,
	})

	return &bookingResult{appt: appt, event: ev}, nil
}

func (e *Engine) logEvent(ctx context.Context, appts appointment.Repository, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal event payload for %s: %v", eventType, err)
		data = nil
	}

	apptID := appointmentID

	ev := appointment.EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := appts.InsertEvent(ctx, ev); err != nil {
		log.Printf("failed to insert event log %s for appointment %s: %v", eventType, appointmentID, err)
	}
}
