// Package plan schedules Steps under a Posture: a plain Plan commits to each
// Step in turn, a first-viable Plan re-picks its Step every tick.
package plan

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
	bt "github.com/joeycumines/go-behaviortree"
)

// State is the lifecycle of a Plan.
type State int

const (
	Pending State = iota
	Active
	Complete
	Aborted
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Active:
		return "active"
	case Complete:
		return "complete"
	case Aborted:
		return "aborted"
	}
	return "unknown"
}

// Plan is an ordered set of Steps under one Posture. It is replaced
// wholesale on preemption; it never preempts itself.
type Plan struct {
	ID      string
	Posture Posture

	steps       []Step
	current     int
	firstViable bool
	state       State
	log         *slog.Logger

	// selector is built once for first-viable plans; its leaves read the
	// bundle for the tick and write the winning output into pick.
	selector bt.Node
	pick     selection
}

type selection struct {
	bundle Bundle
	out    Output
	chosen int
}

// New builds a Plan that runs steps one after another.
func New(posture Posture, steps ...Step) *Plan {
	return &Plan{
		ID:      uuid.NewString(),
		Posture: posture,
		steps:   steps,
		log:     slog.New(slog.DiscardHandler),
	}
}

// FirstViable builds a Plan that on every tick uses the first step, in
// declared order, able to produce output.
func FirstViable(posture Posture, steps ...Step) *Plan {
	p := New(posture, steps...)
	p.firstViable = true
	p.selector = p.buildSelector()
	return p
}

// WithStep appends a step. Only valid before the first tick.
func (p *Plan) WithStep(s Step) *Plan {
	p.steps = append(p.steps, s)
	if p.firstViable {
		p.selector = p.buildSelector()
	}
	return p
}

// WithLogger sets the logger used for lifecycle events.
func (p *Plan) WithLogger(l *slog.Logger) *Plan {
	if l != nil {
		p.log = l
	}
	return p
}

func (p *Plan) State() State { return p.state }

// IsComplete is true once the plan finished or was aborted.
func (p *Plan) IsComplete() bool { return p.state == Complete || p.state == Aborted }

// IsFirstViable reports the scheduling variant.
func (p *Plan) IsFirstViable() bool { return p.firstViable }

// Steps returns the declared steps.
func (p *Plan) Steps() []Step { return p.steps }

// CurrentStep is the step that produced the latest output, or the first one
// before any tick. The bool is false for an empty plan.
func (p *Plan) CurrentStep() (Step, bool) {
	if p.current >= len(p.steps) {
		return nil, false
	}
	return p.steps[p.current], true
}

// CanInterrupt defers to the current step.
func (p *Plan) CanInterrupt() bool {
	s, ok := p.CurrentStep()
	return !ok || s.CanInterrupt()
}

// Abort cancels the plan from outside.
func (p *Plan) Abort(reason string) {
	if p.IsComplete() {
		return
	}
	p.state = Aborted
	p.log.Info("plan aborted", "plan", p.ID, "posture", p.Posture, "reason", reason)
}

// Output advances the plan by one tick. false means the plan is complete or
// aborted and produced nothing.
func (p *Plan) Output(b Bundle) (Output, bool) {
	if p.IsComplete() {
		return Output{}, false
	}
	if p.state == Pending {
		p.state = Active
		p.log.Debug("plan started", "plan", p.ID, "posture", p.Posture, "steps", p.describeSteps())
	}
	if p.firstViable {
		return p.firstViableOutput(b)
	}
	for p.current < len(p.steps) {
		step := p.steps[p.current]
		if step.ShouldAbort(b) {
			p.Abort(step.Situation())
			return Output{}, false
		}
		if out, ok := step.Output(b); ok {
			return out, true
		}
		p.current++
	}
	p.finish()
	return Output{}, false
}

// buildSelector wires one leaf per step under a selector: the first leaf
// that succeeds supplies the output.
func (p *Plan) buildSelector() bt.Node {
	leaves := make([]bt.Node, len(p.steps))
	for i, step := range p.steps {
		leaves[i] = bt.New(func([]bt.Node) (bt.Status, error) {
			b := p.pick.bundle
			if step.ShouldAbort(b) {
				return bt.Failure, nil
			}
			o, ok := step.Output(b)
			if !ok {
				return bt.Failure, nil
			}
			p.pick.out, p.pick.chosen = o, i
			return bt.Success, nil
		})
	}
	return bt.New(bt.Selector, leaves...)
}

func (p *Plan) firstViableOutput(b Bundle) (Output, bool) {
	p.pick = selection{bundle: b, chosen: -1}
	defer func() { p.pick.bundle = Bundle{} }()

	status, err := p.selector.Tick()
	if err != nil || status != bt.Success {
		if err != nil {
			p.log.Warn("first viable selector failed", "plan", p.ID, "error", err)
		}
		p.finish()
		return Output{}, false
	}
	chosen := p.pick.chosen
	if chosen != p.current {
		p.log.Debug("first viable step changed", "plan", p.ID, "step", p.steps[chosen].Situation())
	}
	p.current = chosen
	return p.pick.out, true
}

func (p *Plan) finish() {
	p.state = Complete
	p.log.Debug("plan complete", "plan", p.ID, "posture", p.Posture)
}

// Situation describes the plan and its current step.
func (p *Plan) Situation() string {
	s, ok := p.CurrentStep()
	if !ok {
		return p.Posture.String()
	}
	return p.Posture.String() + ": " + s.Situation()
}

func (p *Plan) describeSteps() string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Situation()
	}
	return strings.Join(names, ", ")
}
