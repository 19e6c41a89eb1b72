package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"event-agent/internal/orchestrator"
)

// Default polling policy. The interval matches the reference behavior;
// the wait bound keeps a stuck remote run from blocking the
// conversation loop forever.
const (
	DefaultPollInterval    = 500 * time.Millisecond
	DefaultMaxPollDuration = 2 * time.Minute
)

// ErrPollTimeout is returned when a run does not settle within the
// poller's maximum wait.
var ErrPollTimeout = errors.New("run did not settle within the maximum poll duration")

// Poller repeatedly queries run status until the run settles: a
// terminal state or requires_action. Only one poll may be in flight
// per run; Wait is synchronous, which enforces that by structure.
type Poller struct {
	service  orchestrator.Service
	interval time.Duration
	maxWait  time.Duration
	logger   *zap.Logger
}

// PollerOption is a functional option for configuring Poller.
type PollerOption func(*Poller)

// WithPollInterval sets the delay between status checks.
func WithPollInterval(interval time.Duration) PollerOption {
	return func(p *Poller) {
		p.interval = interval
	}
}

// WithMaxPollDuration sets the maximum total wait for one run to settle.
func WithMaxPollDuration(maxWait time.Duration) PollerOption {
	return func(p *Poller) {
		p.maxWait = maxWait
	}
}

// WithPollerLogger sets the logger used for state-transition debug output.
func WithPollerLogger(l *zap.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = l
	}
}

// NewPoller creates a Poller over the given orchestrator service.
func NewPoller(service orchestrator.Service, opts ...PollerOption) *Poller {
	p := &Poller{
		service:  service,
		interval: DefaultPollInterval,
		maxWait:  DefaultMaxPollDuration,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wait polls the run until it settles and returns the settled
// snapshot. Context cancellation aborts the poll immediately.
func (p *Poller) Wait(ctx context.Context, threadID, runID string) (*orchestrator.Run, error) {
	deadline := time.Now().Add(p.maxWait)
	var lastStatus orchestrator.RunStatus

	for {
		run, err := p.service.GetRun(ctx, threadID, runID)
		if err != nil {
			return nil, fmt.Errorf("polling run %s: %w", runID, err)
		}

		if run.Status != lastStatus {
			p.logger.Debug("run state transition",
				zap.String("run_id", runID),
				zap.String("from", string(lastStatus)),
				zap.String("to", string(run.Status)))
			lastStatus = run.Status
		}

		if run.Status.Settled() {
			return run, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: run %s still %s after %s", ErrPollTimeout, runID, run.Status, p.maxWait)
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
