package ics

import (
	"errors"
	"time"

	appLog "timespan/internal/log"
	"timespan/internal/model"
	"timespan/internal/span"
)

// OccurrenceConfig controls how parsed events become occurrences.
type OccurrenceConfig struct {
	// DisplayLocation anchors all-day events: they cover midnight to
	// midnight in this zone. If nil, time.Local is used.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd define the inclusive window for occurrences.
	RangeStart time.Time
	RangeEnd   time.Time
}

// OccurrenceResult wraps the occurrences and the UIDs of recurring events
// that were taken at their first instance only.
type OccurrenceResult struct {
	Occurrences []model.Occurrence
	Unexpanded  []string
}

// ToOccurrences turns parsed events into concrete occurrences that
// intersect the configured window. It handles:
//
//   - Single non-recurring events
//   - RECURRENCE-ID overrides, which replace the base instance they name
//     and otherwise stand on their own
//   - All-day semantics
//   - Transparent and cancelled events, which are dropped
//
// Recurrence rules are not expanded: a recurring event contributes its
// DTSTART instance and its UID is listed in Unexpanded.
func ToOccurrences(events []ParsedEvent, cfg OccurrenceConfig) (OccurrenceResult, error) {
	var result OccurrenceResult

	window, err := span.FromTime(cfg.RangeStart, cfg.RangeEnd)
	if err != nil {
		return result, errors.New("occurrences: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}

	overridesByUID := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
		}
	}

	out := make([]model.Occurrence, 0, len(events))
	for _, ev := range events {
		if ev.IsOverride {
			continue
		}
		if ev.RawRRule != "" {
			result.Unexpanded = append(result.Unexpanded, ev.UID)
		}
		if _, ok := findOverrideForStart(overridesByUID[ev.UID], ev.Start); ok {
			// Emitted with the overrides below.
			continue
		}
		if occ, ok := makeOccurrence(ev, cfg.DisplayLocation, window); ok {
			out = append(out, occ)
		}
	}
	for _, ovs := range overridesByUID {
		for _, ov := range ovs {
			if occ, ok := makeOccurrence(ov, cfg.DisplayLocation, window); ok {
				out = append(out, occ)
			}
		}
	}

	if len(result.Unexpanded) > 0 {
		appLog.Debug("occurrences: recurring events taken at first instance only", "count", len(result.Unexpanded))
	}

	result.Occurrences = out
	return result, nil
}

// findOverrideForStart finds an override whose RECURRENCE-ID names the
// given base start.
func findOverrideForStart(overrides []ParsedEvent, baseStart time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(baseStart) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// makeOccurrence converts a ParsedEvent into a model.Occurrence when it is
// busy and intersects window.
func makeOccurrence(ev ParsedEvent, loc *time.Location, window span.Span) (model.Occurrence, bool) {
	if !ev.Busy() {
		return model.Occurrence{}, false
	}

	start, end := ev.Start, ev.End
	if ev.AllDay {
		start = anchorDate(start, loc)
		end = anchorDate(end, loc)
		if !end.After(start) {
			end = start.AddDate(0, 0, 1)
		}
	}

	s, err := span.FromTime(start, end)
	if err != nil {
		appLog.Debug("occurrences: skipping event with inverted bounds", "uid", ev.UID)
		return model.Occurrence{}, false
	}
	if !s.Overlaps(window) {
		return model.Occurrence{}, false
	}

	return model.Occurrence{
		SourceID: ev.Source.ID,
		UID:      ev.UID,
		Summary:  ev.Summary,
		Location: ev.Location,
		AllDay:   ev.AllDay,
		Start:    start,
		End:      end,
	}, true
}

// anchorDate returns midnight of t's calendar date in loc.
func anchorDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
