package schedule

import (
	"time"

	"github.com/sorrisolabs/clinic-assistant/internal/calendar"
)

// Business hours observed by the clinic; slots are walked in SlotWidth
// steps from open to close.
const (
	BusinessOpenHour  = 9
	BusinessCloseHour = 18
	SlotWidth         = time.Hour
)

// BusinessWindow returns the [open, close) interval for a day in loc.
func BusinessWindow(date time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := date.In(loc).Date()
	open := time.Date(y, m, d, BusinessOpenHour, 0, 0, 0, loc)
	close := time.Date(y, m, d, BusinessCloseHour, 0, 0, 0, loc)
	return open, close
}

// FreeSlots walks the business window in SlotWidth steps and returns the
// start times of slots that overlap no busy interval. Intervals are
// half-open: a slot that ends exactly when a busy interval starts (or
// starts exactly when one ends) is free.
func FreeSlots(date time.Time, busy []calendar.Interval, loc *time.Location) []time.Time {
	open, close := BusinessWindow(date, loc)

	var free []time.Time
	for start := open; start.Before(close); start = start.Add(SlotWidth) {
		end := start.Add(SlotWidth)
		if !overlapsAny(start, end, busy) {
			free = append(free, start)
		}
	}
	return free
}

func overlapsAny(start, end time.Time, busy []calendar.Interval) bool {
	for _, b := range busy {
		if start.Before(b.End) && end.After(b.Start) {
			return true
		}
	}
	return false
}
