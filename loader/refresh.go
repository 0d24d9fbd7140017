package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/petal-labs/pollen/tool"
)

var standardCronParser = cron.NewParser(
	cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow,
)

// parseCronExpressionUTC parses a five-field cron expression. Schedules are
// UTC-only; timezone prefixes are rejected.
func parseCronExpressionUTC(expr string) (cron.Schedule, error) {
	clean := strings.TrimSpace(expr)
	if clean == "" {
		return nil, fmt.Errorf("cron expression is required")
	}

	upper := strings.ToUpper(clean)
	if strings.Contains(upper, "CRON_TZ=") || strings.Contains(upper, "TZ=") {
		return nil, fmt.Errorf("cron expression must be UTC-only (timezone prefixes are not allowed)")
	}

	schedule, err := standardCronParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	return schedule, nil
}

// ReloadHandler receives each freshly built registry. The previous registry
// is never mutated; consumers swap to the new one wholesale.
type ReloadHandler func(reg *tool.Registry, report Report)

// RefresherConfig controls scheduled registry rebuilds.
type RefresherConfig struct {
	// Schedule is a five-field UTC cron expression.
	Schedule string
	Options  Options
	OnReload ReloadHandler
	Now      func() time.Time
}

// Refresher rebuilds the registry on a cron schedule and hands each new
// registry to the reload handler.
type Refresher struct {
	schedule cron.Schedule
	options  Options
	onReload ReloadHandler
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRefresher creates a refresher from config.
func NewRefresher(cfg RefresherConfig) (*Refresher, error) {
	schedule, err := parseCronExpressionUTC(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	if cfg.OnReload == nil {
		return nil, errors.New("loader: refresher reload handler is nil")
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}

	return &Refresher{
		schedule: schedule,
		options:  cfg.Options,
		onReload: cfg.OnReload,
		now:      cfg.Now,
	}, nil
}

// RunOnce performs one immediate rebuild and delivers it to the handler.
func (r *Refresher) RunOnce(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	reg, report := Load(r.options)
	slog.Debug("pollen: registry rebuilt",
		"tools", reg.Len(), "modules", len(report.Modules), "failures", len(report.Failures))
	r.onReload(reg, report)
}

// Start begins scheduler execution. Calling Start on a running refresher is
// a no-op.
func (r *Refresher) Start(ctx context.Context) error {
	if r == nil {
		return errors.New("loader: refresher is nil")
	}

	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	r.mu.Unlock()

	go func() {
		defer close(done)
		r.RunOnce(loopCtx)
		for {
			next := r.schedule.Next(r.now())
			timer := time.NewTimer(time.Until(next))
			select {
			case <-loopCtx.Done():
				timer.Stop()
				return
			case <-timer.C:
				r.RunOnce(loopCtx)
			}
		}
	}()

	return nil
}

// Stop terminates scheduler execution and waits for the loop to exit.
func (r *Refresher) Stop(ctx context.Context) error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
