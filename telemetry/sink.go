// Package telemetry publishes what the advisor saw and decided each tick.
// Sinks are write-only; none of them can influence a decision.
package telemetry

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nstehr/volley/volley-core/assess"
	"github.com/nstehr/volley/volley-core/plan"
)

// Record is one tick of advisor output.
type Record struct {
	Situation assess.Summary `json:"situation"`
	PlanID    string         `json:"planId,omitempty"`
	Posture   string         `json:"posture,omitempty"`
	Step      string         `json:"step,omitempty"`
	// Reason is set on ticks where the plan was replaced.
	Reason   string      `json:"reason,omitempty"`
	Output   plan.Output `json:"output"`
	Fallback bool        `json:"fallback,omitempty"`
}

// Transition reports whether the record marks a new plan.
func (r Record) Transition() bool { return r.Reason != "" }

// Sink receives records. Publish must not block the tick for long.
type Sink interface {
	Publish(ctx context.Context, r Record)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Publish(context.Context, Record) {}

// Logger writes plan transitions as structured log lines.
type Logger struct {
	Log *slog.Logger
}

func (l Logger) Publish(ctx context.Context, r Record) {
	if !r.Transition() {
		return
	}
	l.Log.InfoContext(ctx, "plan changed",
		"tick", r.Situation.Tick,
		"agent", r.Situation.Agent,
		"plan", r.PlanID,
		"posture", r.Posture,
		"step", r.Step,
		"reason", r.Reason,
		"advantage", r.Situation.Advantage,
		"threat", r.Situation.Threat,
	)
}

// Multi fans a record out to several sinks.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, r Record) {
	for _, s := range m {
		s.Publish(ctx, r)
	}
}

// Closer is implemented by sinks holding files or connections.
type Closer interface {
	Close() error
}

// Close closes every sink in m that holds resources.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if c, ok := s.(Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
