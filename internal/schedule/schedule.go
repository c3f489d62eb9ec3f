// Package schedule models a bounded window (typically a working day) that
// holds busy events, and derives the free time left between them.
//
// A Schedule is not safe for concurrent mutation; callers that share one
// across goroutines must synchronize AddEvent themselves.
package schedule

import (
	"fmt"
	"time"

	"timespan/internal/span"
)

// Event is a busy span belonging to a schedule.
type Event struct {
	span.Span
}

// NewEvent returns the event [start, end].
func NewEvent(start, end int64) (Event, error) {
	s, err := span.New(start, end)
	if err != nil {
		return Event{}, err
	}
	return Event{Span: s}, nil
}

// AllDay returns an event spanning the whole calendar day of date, from
// midnight to the next midnight in date's own location. DST transition
// days are 23 or 25 hours long.
func AllDay(date time.Time) (Event, error) {
	y, m, d := date.Date()
	loc := date.Location()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)

	s, err := span.FromTime(start, end)
	if err != nil {
		return Event{}, err
	}
	return Event{Span: s}, nil
}

// Schedule is a bounding span plus its events, always sorted by start.
// Events may lie partly or fully outside the bounds; free time is computed
// assuming they share the schedule's coordinate space.
type Schedule struct {
	span.Span
	events []Event
}

// New returns an empty schedule bounded by [start, end].
func New(start, end int64) (*Schedule, error) {
	s, err := span.New(start, end)
	if err != nil {
		return nil, err
	}
	return FromSpan(s), nil
}

// FromSpan returns an empty schedule bounded by s.
func FromSpan(s span.Span) *Schedule {
	return &Schedule{Span: s}
}

// AddEvent inserts ev, keeping events ordered by start. Events with equal
// starts stay in insertion order.
func (s *Schedule) AddEvent(ev Event) {
	s.events = append(s.events, ev)
	span.SortInPlace(s.events)
}

// Events returns a copy of the sorted events.
func (s *Schedule) Events() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Gaps returns the stretches between adjacent events that neither touch
// nor overlap.
func (s *Schedule) Gaps() []span.Span {
	gaps := make([]span.Span, 0)
	for i := 0; i+1 < len(s.events); i++ {
		cur, next := s.events[i], s.events[i+1]
		if cur.Gap(next) == 0 {
			continue
		}
		// A positive gap between start-sorted events means next starts after cur ends.
		gaps = append(gaps, spanBetween(cur.End(), next.Start()))
	}
	return gaps
}

// FreeTime returns the gaps plus the stretch before the first event and the
// stretch after the last one, sorted by start.
//
// With a single event only the (empty) gaps are returned: the leading and
// trailing stretches are not padded in that case.
func (s *Schedule) FreeTime() []span.Span {
	free := s.Gaps()
	if len(s.events) < 2 {
		return free
	}

	first := s.events[0]
	last := s.events[len(s.events)-1]

	if s.Start() < first.Start() {
		free = append(free, spanBetween(s.Start(), first.Start()))
	}
	if s.End() > last.End() {
		free = append(free, spanBetween(last.End(), s.End()))
	}
	return span.Sort(free)
}

// ClosestFreeTime returns the earliest free span starting at or after ref.
func (s *Schedule) ClosestFreeTime(ref int64) (span.Span, error) {
	var (
		best  span.Span
		found bool
	)
	for _, free := range s.FreeTime() {
		if free.Start() < ref {
			continue
		}
		if !found || free.Start() < best.Start() {
			best, found = free, true
		}
	}
	if !found {
		return span.Span{}, fmt.Errorf("%w: no free time starting at or after %d", span.ErrNotFound, ref)
	}
	return best, nil
}

// spanBetween builds [start, end] for bounds already known to be ordered.
func spanBetween(start, end int64) span.Span {
	out, _ := span.New(start, end)
	return out
}
