package agenda

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "timespan/internal/log"
)

// refreshTimeout bounds a single scheduled refresh.
const refreshTimeout = 2 * time.Minute

// Refresher runs Agenda.Refresh on a cron schedule.
type Refresher struct {
	agenda *Agenda
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped bool

	// OnRefresh, if set, is called after each scheduled run with its result.
	OnRefresh func(err error, took time.Duration)
}

// NewRefresher parses spec (standard 5-field cron syntax) and prepares a
// refresher. Nothing runs until Start.
func NewRefresher(a *Agenda, spec string) (*Refresher, error) {
	c := cron.New(
		cron.WithLocation(a.Location()),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)
	ctx, cancel := context.WithCancel(context.Background())
	r := &Refresher{agenda: a, cron: c, ctx: ctx, cancel: cancel}
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		cancel()
		return nil, err
	}
	return r, nil
}

// Start runs one refresh immediately, then hands over to the cron schedule.
// It does nothing once Stop has been called, so it may run in its own
// goroutine.
func (r *Refresher) Start() {
	if r.isStopped() {
		return
	}
	r.run()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.stopped {
		r.cron.Start()
	}
}

func (r *Refresher) isStopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

// Stop halts the schedule and waits for a running refresh to finish or
// ctx to expire.
func (r *Refresher) Stop(ctx context.Context) {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	r.cancel()
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(r.ctx, refreshTimeout)
	defer cancel()

	began := time.Now()
	err := r.agenda.Refresh(ctx)
	took := time.Since(began)

	switch {
	case errors.Is(err, ErrNoSources):
		appLog.Debug("refresh skipped: no sources")
	case err != nil:
		appLog.Error("scheduled refresh had failures", err, "took", took.String())
	}
	if r.OnRefresh != nil {
		r.OnRefresh(err, took)
	}
}

// cronLogger routes the scheduler's own logging through the app logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...any) {
	appLog.Debug("cron: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...any) {
	appLog.Error("cron: "+msg, err, kv...)
}
