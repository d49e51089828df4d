package probe

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/entrygate/entrygate/internal/config"
	"github.com/entrygate/entrygate/pkg/logging"
	"github.com/entrygate/entrygate/pkg/retry"
)

// logEvery is how many failed attempts pass between progress lines, so
// a stuck gate stays visible without flooding the log at 100ms polls.
const logEvery = 50

// Status is the outcome of a single connection attempt.
type Status struct {
	Endpoint config.Endpoint
	Up       bool
	Latency  time.Duration
	Err      error
}

// Prober gates startup on TCP reachability of configured endpoints.
type Prober struct {
	interval    time.Duration
	dialTimeout time.Duration
	log         *logging.Logger
}

// New creates a prober with a fixed poll interval
func New(interval, dialTimeout time.Duration, log *logging.Logger) *Prober {
	return &Prober{
		interval:    interval,
		dialTimeout: dialTimeout,
		log:         log,
	}
}

// Check makes exactly one connection attempt and reports the result.
func (p *Prober) Check(ctx context.Context, ep config.Endpoint) Status {
	start := time.Now()
	dialer := net.Dialer{Timeout: p.dialTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", ep.Addr())
	latency := time.Since(start)
	if err != nil {
		return Status{Endpoint: ep, Up: false, Latency: latency, Err: err}
	}
	conn.Close()

	return Status{Endpoint: ep, Up: true, Latency: latency}
}

// WaitUntilReady blocks until a TCP connection to the endpoint
// succeeds, polling at the fixed interval. There is no attempt cap and
// no overall timeout: the supervisor must not proceed without its
// dependency, and restart policy belongs to the orchestrator. The only
// other way out is context cancellation.
func (p *Prober) WaitUntilReady(ctx context.Context, ep config.Endpoint) error {
	log := p.log.WithField("endpoint", ep.String())
	log.Info("waiting for dependency", map[string]interface{}{
		"address":  ep.Addr(),
		"interval": p.interval.String(),
	})

	start := time.Now()
	attempts := 0

	err := retry.Do(ctx, retry.Fixed(p.interval), func() error {
		attempts++
		status := p.Check(ctx, ep)
		if !status.Up {
			if attempts%logEvery == 0 {
				log.Info("still waiting", map[string]interface{}{
					"attempts": attempts,
					"elapsed":  time.Since(start).Round(time.Millisecond).String(),
				})
			}
			return status.Err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("waiting for %s: %w", ep.String(), err)
	}

	log.Info("dependency is reachable", map[string]interface{}{
		"attempts": attempts,
		"elapsed":  time.Since(start).Round(time.Millisecond).String(),
	})
	return nil
}

// WaitAll gates on every endpoint in order. Sequential on purpose: the
// database is always first, and a later endpoint being up means nothing
// until the earlier ones are.
func (p *Prober) WaitAll(ctx context.Context, endpoints []config.Endpoint) error {
	for _, ep := range endpoints {
		if err := p.WaitUntilReady(ctx, ep); err != nil {
			return err
		}
	}
	return nil
}
