package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sorrisolabs/clinic-assistant/internal/appointment"
	"github.com/sorrisolabs/clinic-assistant/internal/calendar"
	"github.com/sorrisolabs/clinic-assistant/internal/intent"
	"github.com/sorrisolabs/clinic-assistant/internal/patient"
	redisclient "github.com/sorrisolabs/clinic-assistant/internal/redis"
	"github.com/sorrisolabs/clinic-assistant/internal/schedule"
)

const (
	UserStatusNewLead  = "new_lead"
	UserStatusExisting = "existing_patient"
)

type InboundMessage struct {
	SenderID   string
	SenderName string
	Text       string
	Timestamp  string
}

type Result struct {
	UserStatus   string
	Analysis     *intent.Classification
	NextAction   string
	ResponseText string
}

// Engine drives one conversation turn at a time: load the patient, route
// by conversation state (or by intent when no flow is in progress), talk
// to the calendar, and persist the next state. All writes of a turn share
// one transaction; concurrent turns for the same sender are serialized by
// the locker.
type Engine struct {
	store    Store
	locker   redisclient.Locker
	cal      calendar.Gateway
	resolver *schedule.DateResolver
	loc      *time.Location
	now      func() time.Time
}

func NewEngine(store Store, locker redisclient.Locker, cal calendar.Gateway, loc *time.Location) *Engine {
	return &Engine{
		store:    store,
		locker:   locker,
		cal:      cal,
		resolver: schedule.NewDateResolver(loc),
		loc:      loc,
		now:      time.Now,
	}
}

type turn struct {
	patients patient.Repository
	appts    appointment.Repository
	patient  *patient.Patient
	text     string
	isNew    bool
	result   *Result
}

func (t *turn) userStatus() string {
	if t.isNew {
		return UserStatusNewLead
	}
	return UserStatusExisting
}

func (t *turn) transition(ctx context.Context, next State, pendingDate *time.Time) error {
	if err := t.patients.UpdateConversation(ctx, t.patient.ID, string(next), pendingDate); err != nil {
		return fmt.Errorf("persist conversation state: %w", err)
	}
	return nil
}

type handlerFunc func(ctx context.Context, t *turn) error

// handlers is the state dispatch table. A state in progress owns the turn
// unconditionally; intent classification never runs mid-flow.
func (e *Engine) handlers() map[State]handlerFunc {
	return map[State]handlerFunc{
		StateAwaitingName: e.handleAwaitingName,
		StateAwaitingDate: e.handleAwaitingDate,
		StateAwaitingSlot: e.handleAwaitingSlot,
	}
}

func (e *Engine) HandleMessage(ctx context.Context, msg InboundMessage) (*Result, error) {
	senderKey := patient.NormalizeSenderKey(msg.SenderID)
	if senderKey == "" {
		return nil, errors.New("empty sender id")
	}

	var result *Result
	err := e.locker.WithSenderLock(ctx, senderKey, func(lockCtx context.Context) error {
		return e.store.RunInTx(lockCtx, func(txCtx context.Context, patients patient.Repository, appts appointment.Repository) error {
			r, err := e.runTurn(txCtx, patients, appts, senderKey, msg)
			result = r
			return err
		})
	})

	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return &Result{
			UserStatus:   UserStatusExisting,
			NextAction:   ActionRetry,
			ResponseText: replyBusy,
		}, nil
	}
	if err != nil {
		// The turn tx rolled back; the sender gets a generic apology and
		// the caller gets the real error.
		return &Result{
			NextAction:   ActionRetry,
			ResponseText: replyApology,
		}, err
	}

	return result, nil
}

func (e *Engine) runTurn(ctx context.Context, patients patient.Repository, appts appointment.Repository, senderKey string, msg InboundMessage) (*Result, error) {
	p, err := patients.GetBySenderKey(ctx, senderKey)
	isNew := false
	if errors.Is(err, patient.ErrPatientNotFound) {
		var name *string
		if n := strings.TrimSpace(msg.SenderName); n != "" {
			name = &n
		}
		p, err = patients.Create(ctx, senderKey, name)
		isNew = true
	}
	if err != nil {
		return nil, fmt.Errorf("load patient %s: %w", senderKey, err)
	}

	t := &turn{
		patients: patients,
		appts:    appts,
		patient:  p,
		text:     msg.Text,
		isNew:    isNew,
	}

	state := ParseState(p.ConversationState)
	if state.InFlow() {
		if err := e.handlers()[state](ctx, t); err != nil {
			return nil, err
		}
	} else {
		if err := e.handleIntent(ctx, t); err != nil {
			return nil, err
		}
	}

	return t.result, nil
}

// handleIntent owns turns with no flow in progress.
func (e *Engine) handleIntent(ctx context.Context, t *turn) error {
	cls := intent.Classify(t.text)

	prefix := greeting(t.patient.Name())
	if t.isNew {
		prefix = replyWelcomePrefix
	}

	switch cls.Intent {
	case intent.ScheduleAppointment:
		if t.isNew && t.patient.DisplayName == nil {
			if err := t.transition(ctx, StateAwaitingName, nil); err != nil {
				return err
			}
			t.result = &Result{
				UserStatus:   t.userStatus(),
				Analysis:     &cls,
				NextAction:   ActionCollectContactInfo,
				ResponseText: prefix + replyAskName,
			}
			return nil
		}
		if err := t.transition(ctx, StateAwaitingDate, nil); err != nil {
			return err
		}
		t.result = &Result{
			UserStatus:   t.userStatus(),
			Analysis:     &cls,
			NextAction:   ActionScheduleAppointment,
			ResponseText: prefix + replyAskDate,
		}

	case intent.RequestPrice:
		// Prices are never quoted before a clinical evaluation; always
		// pivot to scheduling.
		t.result = &Result{
			UserStatus:   t.userStatus(),
			Analysis:     &cls,
			NextAction:   ActionPivotToSchedule,
			ResponseText: prefix + replyPivotPrice,
		}

	case intent.Greeting:
		t.result = &Result{
			UserStatus:   t.userStatus(),
			Analysis:     &cls,
			NextAction:   ActionAskHowCanHelp,
			ResponseText: prefix + replyHowCanHelp,
		}

	default:
		t.result = &Result{
			UserStatus:   t.userStatus(),
			Analysis:     &cls,
			NextAction:   ActionClarifyIntent,
			ResponseText: prefix + replyClarify,
		}
	}

	return nil
}

func (e *Engine) handleAwaitingName(ctx context.Context, t *turn) error {
	name := strings.TrimSpace(t.text)
	if name == "" {
		t.result = &Result{
			UserStatus:   t.userStatus(),
			NextAction:   ActionCollectContactInfo,
			ResponseText: replyAskName,
		}
		return nil
	}

	if err := t.patients.UpdateDisplayName(ctx, t.patient.ID, name); err != nil {
		return fmt.Errorf("store display name: %w", err)
	}
	if err := t.transition(ctx, StateAwaitingDate, nil); err != nil {
		return err
	}

	t.result = &Result{
		UserStatus:   t.userStatus(),
		NextAction:   ActionCollectDate,
		ResponseText: fmt.Sprintf(replyThanksName, name),
	}
	return nil
}

func (e *Engine) handleAwaitingDate(ctx context.Context, t *turn) error {
	date, ok := e.resolver.Resolve(t.text, e.now().In(e.loc))
	if !ok {
		t.result = &Result{
			UserStatus:   t.userStatus(),
			NextAction:   ActionCollectDate,
			ResponseText: replyRephraseDate,
		}
		return nil
	}

	open, close := schedule.BusinessWindow(date, e.loc)
	busy, err := e.cal.ListBusy(ctx, open, close)
	if err != nil {
		if errors.Is(err, calendar.ErrAuth) {
			return err
		}
		log.Printf("list busy intervals for %s: %v", date.Format("2006-01-02"), err)
		t.result = &Result{
			UserStatus:   t.userStatus(),
			NextAction:   ActionCollectDate,
			ResponseText: replyBookingFail,
		}
		return nil
	}

	slots := schedule.FreeSlots(date, busy, e.loc)
	if len(slots) == 0 {
		t.result = &Result{
			UserStatus:   t.userStatus(),
			NextAction:   ActionCollectDate,
			ResponseText: replyNoSlots,
		}
		return nil
	}

	if err := t.transition(ctx, StateAwaitingSlot, &date); err != nil {
		return err
	}

	t.result = &Result{
		UserStatus:   t.userStatus(),
		NextAction:   ActionChooseSlot,
		ResponseText: fmt.Sprintf(replySlots, formatDay(date), formatSlotList(slots)),
	}
	return nil
}

func (e *Engine) handleAwaitingSlot(ctx context.Context, t *turn) error {
	if t.patient.PendingDate == nil {
		// The chosen day was lost; restart the date step.
		if err := t.transition(ctx, StateAwaitingDate, nil); err != nil {
			return err
		}
		t.result = &Result{
			UserStatus:   t.userStatus(),
			NextAction:   ActionCollectDate,
			ResponseText: replyAskDate,
		}
		return nil
	}

	hour, minute, ok := schedule.ParseTimeOfDay(t.text)
	if !ok {
		t.result = &Result{
			UserStatus:   t.userStatus(),
			NextAction:   ActionChooseSlot,
			ResponseText: replyRephraseTime,
		}
		return nil
	}
	if hour < schedule.BusinessOpenHour || hour >= schedule.BusinessCloseHour {
		t.result = &Result{
			UserStatus:   t.userStatus(),
			NextAction:   ActionChooseSlot,
			ResponseText: replySlotOutside,
		}
		return nil
	}

	day := t.patient.PendingDate.In(e.loc)
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, e.loc)

	booked, err := e.book(ctx, t, start)
	if err != nil {
		if errors.Is(err, calendar.ErrCalendar) && !errors.Is(err, ErrCompensationFailed) {
			// The external call failed before anything was written; the
			// sender keeps the chosen day and can retry.
			log.Printf("booking for patient %s failed: %v", t.patient.ID, err)
			t.result = &Result{
				UserStatus:   t.userStatus(),
				NextAction:   ActionChooseSlot,
				ResponseText: replyBookingFail,
			}
			return nil
		}
		return err
	}

	if err := t.transition(ctx, StateNone, nil); err != nil {
		return err
	}

	text := fmt.Sprintf(replyConfirmed, t.patient.Name(), formatDay(start), start.Format("15:04"))
	if booked.event.HTMLLink != "" {
		text += fmt.Sprintf(replyConfirmLink, booked.event.HTMLLink)
	}
	t.result = &Result{
		UserStatus:   t.userStatus(),
		NextAction:   ActionBookingConfirmed,
		ResponseText: text,
	}
	return nil
}
