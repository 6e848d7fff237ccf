package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleGateway talks to Google Calendar with a service account.
type GoogleGateway struct {
	svc        *gcal.Service
	calendarID string
	timezone   string
}

func NewGoogleGateway(ctx context.Context, credentialsFile, calendarID, timezone string) (*GoogleGateway, error) {
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuth, err)
	}

	return &GoogleGateway{
		svc:        svc,
		calendarID: calendarID,
		timezone:   timezone,
	}, nil
}

func (g *GoogleGateway) ListBusy(ctx context.Context, from, to time.Time) ([]Interval, error) {
	events, err := g.svc.Events.List(g.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %v", ErrCalendar, err)
	}

	var busy []Interval
	for _, item := range events.Items {
		// All-day events carry only a Date; they don't block hourly slots.
		if item.Start == nil || item.End == nil || item.Start.DateTime == "" || item.End.DateTime == "" {
			continue
		}
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			continue
		}
		busy = append(busy, Interval{Start: start, End: end})
	}

	return busy, nil
}

func (g *GoogleGateway) CreateEvent(ctx context.Context, title, description string, start, end time.Time) (*CreatedEvent, error) {
	event := &gcal.Event{
		Summary:     title,
		Description: description,
		Start: &gcal.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: g.timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: g.timezone,
		},
	}

	created, err := g.svc.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: insert event: %v", ErrCalendar, err)
	}

	return &CreatedEvent{ID: created.Id, HTMLLink: created.HtmlLink}, nil
}

func (g *GoogleGateway) DeleteEvent(ctx context.Context, eventID string) error {
	if err := g.svc.Events.Delete(g.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%w: delete event %s: %v", ErrCalendar, eventID, err)
	}
	return nil
}
