package calendar

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAuth means the calendar credential could not be loaded or used.
	ErrAuth = errors.New("calendar authentication failed")
	// ErrCalendar wraps failures of individual calendar calls.
	ErrCalendar = errors.New("calendar request failed")
)

// Interval is a half-open [Start, End) busy range on the external calendar.
type Interval struct {
	Start time.Time
	End   time.Time
}

type CreatedEvent struct {
	ID       string
	HTMLLink string
}

// Gateway is the narrow surface the engine needs from the external
// calendar: read busy intervals, create an event, delete an event.
type Gateway interface {
	ListBusy(ctx context.Context, from, to time.Time) ([]Interval, error)
	CreateEvent(ctx context.Context, title, description string, start, end time.Time) (*CreatedEvent, error)
	DeleteEvent(ctx context.Context, eventID string) error
}
