package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"timespan/internal/agenda"
	appLog "timespan/internal/log"
	"timespan/internal/span"
)

const dateLayout = "2006-01-02"

// slotDTO is a span plus its wall-clock rendering.
type slotDTO struct {
	Start   int64  `json:"start"`
	End     int64  `json:"end"`
	Display string `json:"display"`
}

func slot(s span.Span, loc *time.Location) slotDTO {
	return slotDTO{Start: s.Start(), End: s.End(), Display: s.FormatIn(loc)}
}

func slots(spans []span.Span, loc *time.Location) []slotDTO {
	out := make([]slotDTO, 0, len(spans))
	for _, s := range spans {
		out = append(out, slot(s, loc))
	}
	return out
}

// dayResponse is the JSON response shape for /api/day.
type dayResponse struct {
	Date     string    `json:"date"`
	Timezone string    `json:"timezone"`
	Window   slotDTO   `json:"window"`
	Busy     []slotDTO `json:"busy"`
	Free     []slotDTO `json:"free"`
	FreeSecs int64     `json:"free_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleDay returns the schedule and free time for one workday.
//
// GET /api/day?date=2021-10-28 (defaults to today in the configured timezone)
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	loc := s.planner.Location()

	day := s.now().In(loc)
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.ParseInLocation(dateLayout, v, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	sched, err := s.planner.Day(day)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	events := sched.Events()
	busy := make([]span.Span, 0, len(events))
	for _, ev := range events {
		busy = append(busy, ev.Span)
	}
	free := sched.FreeTime()

	writeJSON(w, http.StatusOK, dayResponse{
		Date:     day.Format(dateLayout),
		Timezone: loc.String(),
		Window:   slot(sched.Span, loc),
		Busy:     slots(busy, loc),
		Free:     slots(free, loc),
		FreeSecs: span.SumDurations(free...),
	})
}

// handleClosest returns the earliest free span at or after a moment.
//
// GET /api/closest?at=2021-10-28T10:00:00Z (defaults to now)
func (s *Server) handleClosest(w http.ResponseWriter, r *http.Request) {
	at := s.now()
	if v := r.URL.Query().Get("at"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "at must be RFC3339")
			return
		}
		at = parsed
	}

	free, err := s.planner.Closest(at)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slot(free, s.planner.Location()))
}

// refreshResponse is the JSON response shape for /api/refresh.
type refreshResponse struct {
	Occurrences int       `json:"occurrences"`
	RefreshedAt time.Time `json:"refreshed_at"`
	Error       string    `json:"error,omitempty"`
}

// handleRefresh refetches every feed now. Partial failures still answer
// with the surviving snapshot, under 502.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	began := time.Now()
	err := s.planner.Refresh(r.Context())
	s.metrics.ObserveRefresh(err, time.Since(began))

	if errors.Is(err, agenda.ErrNoSources) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := refreshResponse{
		Occurrences: len(s.planner.Occurrences()),
		RefreshedAt: s.planner.RefreshedAt(),
	}
	status := http.StatusOK
	if err != nil {
		appLog.Error("api refresh had failures", err)
		resp.Error = err.Error()
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, span.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, span.ErrInvalidRange),
		errors.Is(err, span.ErrInvalidArgument),
		errors.Is(err, span.ErrOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		appLog.Error("api request failed", err)
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
