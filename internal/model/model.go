package model

import (
	"time"

	"timespan/internal/schedule"
	"timespan/internal/span"
)

// Occurrence is a single concrete calendar entry as read from a feed,
// before it is turned into a busy span.
type Occurrence struct {
	SourceID string // calendar source ID
	UID      string // iCalendar UID

	Summary  string
	Location string

	AllDay bool

	// Start / End keep the feed's own timezone.
	Start time.Time
	End   time.Time
}

// Span returns the occurrence as a span of Unix seconds.
func (o Occurrence) Span() (span.Span, error) {
	return span.FromTime(o.Start, o.End)
}

// Clip returns the part of the occurrence that falls inside window as a
// schedule event. ok is false when the two do not share any time; an
// occurrence that only touches the window edge is not clipped in.
func (o Occurrence) Clip(window span.Reader) (ev schedule.Event, ok bool) {
	s, err := o.Span()
	if err != nil {
		return schedule.Event{}, false
	}
	start := max(s.Start(), window.Start())
	end := min(s.End(), window.End())
	if start >= end {
		return schedule.Event{}, false
	}
	ev, err = schedule.NewEvent(start, end)
	if err != nil {
		return schedule.Event{}, false
	}
	return ev, true
}
