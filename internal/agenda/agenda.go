// Package agenda turns the occurrences read from calendar feeds into day
// schedules and answers free-time queries against them.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"timespan/internal/config"
	"timespan/internal/ics"
	appLog "timespan/internal/log"
	"timespan/internal/model"
	"timespan/internal/schedule"
	"timespan/internal/span"
	"timespan/internal/timeline"
)

// ErrNoSources is returned by Refresh when nothing is configured to fetch.
var ErrNoSources = errors.New("agenda: no ICS sources configured")

// horizon is how far around "now" occurrences are kept after a refresh.
const (
	horizonBack    = 7 * 24 * time.Hour
	horizonForward = 60 * 24 * time.Hour
)

// Agenda holds the latest occurrence snapshot per source. It is safe for
// concurrent use; every query builds its own Schedule.
type Agenda struct {
	cfg     *config.Config
	loc     *time.Location
	fetcher *ics.Fetcher
	now     func() time.Time

	mu          sync.RWMutex
	bySource    map[string][]model.Occurrence
	refreshedAt time.Time
	horizon     span.Span // range the snapshot covers
	hasHorizon  bool
}

// Option customises an Agenda.
type Option func(*Agenda)

// WithHTTPClient sets the client used to fetch feeds.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Agenda) {
		a.fetcher = ics.NewFetcher(a.cfg.CacheDir, c)
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Agenda) {
		a.now = now
	}
}

// New creates an Agenda for cfg. No feed is fetched until Refresh.
func New(cfg *config.Config, opts ...Option) *Agenda {
	a := &Agenda{
		cfg:      cfg,
		loc:      cfg.Location(),
		fetcher:  ics.NewFetcher(cfg.CacheDir, nil),
		now:      time.Now,
		bySource: make(map[string][]model.Occurrence),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Location is the timezone day windows are anchored in.
func (a *Agenda) Location() *time.Location {
	return a.loc
}

// RefreshedAt returns the time of the last refresh that produced data.
func (a *Agenda) RefreshedAt() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.refreshedAt
}

// Refresh fetches and parses every configured source. Sources that fail keep
// their previous snapshot; the returned error joins the per-source failures.
func (a *Agenda) Refresh(ctx context.Context) error {
	sources := ics.SourcesFromConfig(a.cfg.ICS)
	if len(sources) == 0 {
		return ErrNoSources
	}

	now := a.now()
	horizon, err := span.FromTime(now.Add(-horizonBack), now.Add(horizonForward))
	if err != nil {
		return err
	}
	results, errs := a.fetcher.FetchAll(ctx, sources)

	fresh := make(map[string][]model.Occurrence, len(results))
	for _, res := range results {
		events, err := ics.ParseICS(res.Source, res.Body)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Source.ID, err))
			continue
		}
		occ, err := ics.ToOccurrences(events, ics.OccurrenceConfig{
			DisplayLocation: a.loc,
			RangeStart:      time.Unix(horizon.Start(), 0),
			RangeEnd:        time.Unix(horizon.End(), 0),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Source.ID, err))
			continue
		}
		fresh[res.Source.ID] = occ.Occurrences
	}

	if len(fresh) > 0 {
		a.mu.Lock()
		for id, occ := range fresh {
			a.bySource[id] = occ
		}
		a.refreshedAt = now
		a.horizon, a.hasHorizon = horizon, true
		a.mu.Unlock()
	}

	appLog.Info("agenda refreshed", "sources", len(sources), "updated", len(fresh), "errors", len(errs))
	return errors.Join(errs...)
}

// Occurrences returns every known occurrence across sources.
func (a *Agenda) Occurrences() []model.Occurrence {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []model.Occurrence
	for _, occ := range a.bySource {
		out = append(out, occ...)
	}
	return out
}

// Window returns the configured workday on the calendar date of day, in
// the agenda's timezone.
func (a *Agenda) Window(day time.Time) (span.Span, error) {
	startOff, endOff, err := a.cfg.WorkdayOffsets()
	if err != nil {
		return span.Span{}, err
	}
	y, m, d := day.In(a.loc).Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, a.loc)
	return span.FromTime(midnight.Add(startOff), midnight.Add(endOff))
}

// Horizon returns the range the occurrence snapshot covers. ok is false
// until a refresh has produced data.
func (a *Agenda) Horizon() (horizon span.Span, ok bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.horizon, a.hasHorizon
}

// Busy collects the busy spans of the workday containing day: occurrences
// clipped to the window plus the configured busy spans. All-day occurrences
// block the whole window only when the config says so.
//
// Once a refresh has produced data, a window reaching past the refreshed
// horizon fails with span.ErrOutOfRange rather than reporting a day with
// no events.
func (a *Agenda) Busy(day time.Time) (*timeline.Timeline, span.Span, error) {
	window, err := a.Window(day)
	if err != nil {
		return nil, span.Span{}, err
	}
	if h, ok := a.Horizon(); ok && !(h.Contains(window.Start()) && h.Contains(window.End())) {
		return nil, span.Span{}, fmt.Errorf("%w: workday %s is outside the refreshed range %s",
			span.ErrOutOfRange, window.FormatIn(a.loc), h.FormatIn(a.loc))
	}

	busy := timeline.New()
	for _, occ := range a.Occurrences() {
		if occ.AllDay && !a.cfg.BlockAllDay {
			continue
		}
		if ev, ok := occ.Clip(window); ok {
			busy.Add(ev)
		}
	}
	for _, b := range a.cfg.Busy {
		start := max(b.Start(), window.Start())
		end := min(b.End(), window.End())
		if start >= end {
			continue
		}
		if s, err := span.New(start, end); err == nil {
			busy.Add(s)
		}
	}
	return busy, window, nil
}

// Day builds the schedule for the workday containing day from Busy.
func (a *Agenda) Day(day time.Time) (*schedule.Schedule, error) {
	busy, window, err := a.Busy(day)
	if err != nil {
		return nil, err
	}
	sched := schedule.FromSpan(window)
	for _, s := range busy.Spans() {
		ev, err := schedule.NewEvent(s.Start(), s.End())
		if err != nil {
			return nil, err
		}
		sched.AddEvent(ev)
	}
	return sched, nil
}

// Closest returns the earliest free span on at's workday that starts at or
// after at.
func (a *Agenda) Closest(at time.Time) (span.Span, error) {
	sched, err := a.Day(at)
	if err != nil {
		return span.Span{}, err
	}
	return sched.ClosestFreeTime(at.Unix())
}
