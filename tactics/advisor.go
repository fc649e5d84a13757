// Package tactics decides which Plan an agent should be running: urgency
// rules that may preempt the active plan, and a fresh-plan tree for when
// nothing is active.
package tactics

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/nstehr/volley/volley-core/assess"
	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/physics"
	"github.com/nstehr/volley/volley-core/plan"
	"github.com/nstehr/volley/volley-core/steps"
	"github.com/nstehr/volley/volley-core/strike"
	"github.com/nstehr/volley/volley-core/telemetry"
	"github.com/nstehr/volley/volley-core/tuning"
)

// Advisor owns one agent's Plan. It is not safe for concurrent use.
type Advisor struct {
	assessor *assess.Assessor
	engine   *Engine
	builder  *Builder
	tuning   tuning.Tuning
	doctrine Doctrine
	sink     telemetry.Sink
	log      *slog.Logger

	active *plan.Plan
}

// Option configures an Advisor.
type Option func(*Advisor)

func WithLogger(l *slog.Logger) Option { return func(a *Advisor) { a.log = l } }

func WithSink(s telemetry.Sink) Option { return func(a *Advisor) { a.sink = s } }

// WithPredictor replaces the reference trajectory oracle.
func WithPredictor(p physics.Predictor) Option {
	return func(a *Advisor) { a.assessor.Predictor = p }
}

func NewAdvisor(t tuning.Tuning, d Doctrine, opts ...Option) (*Advisor, error) {
	a := &Advisor{
		assessor: assess.NewAssessor(t),
		tuning:   t,
		doctrine: d,
		sink:     telemetry.Nop{},
		log:      slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(a)
	}
	a.builder = &Builder{Tuning: t, Log: a.log}
	engine, err := NewEngine(CompileDoctrine(d, t.Tactics), a.log)
	if err != nil {
		return nil, fmt.Errorf("new advisor: %w", err)
	}
	a.engine = engine
	return a, nil
}

// Plan is the active plan, possibly nil or complete.
func (a *Advisor) Plan() *plan.Plan { return a.active }

func (a *Advisor) Doctrine() Doctrine { return a.doctrine }

// SetDoctrine recompiles the urgency rules. On error the old rules stay.
func (a *Advisor) SetDoctrine(d Doctrine) error {
	if err := a.engine.Swap(CompileDoctrine(d, a.tuning.Tactics)); err != nil {
		return fmt.Errorf("set doctrine %q: %w", d.Name, err)
	}
	a.doctrine = d
	return nil
}

// Reset drops the active plan, e.g. after a goal or an unexpected touch.
func (a *Advisor) Reset(reason string) {
	if a.active != nil {
		a.active.Abort(reason)
	}
	a.active = nil
}

// Assess derives this tick's Situation.
func (a *Advisor) Assess(w model.World) (*assess.Situation, error) {
	desc := ""
	if a.active != nil && !a.active.IsComplete() {
		desc = a.active.Situation()
	}
	return a.assessor.Assess(w, desc)
}

// FindMoreUrgentPlan returns a plan that should replace the active one.
func (a *Advisor) FindMoreUrgentPlan(s *assess.Situation) (*plan.Plan, string, bool) {
	p, rule, ok := a.engine.Urgent(Env{S: s, Active: a.active}, a.builder)
	if !ok {
		return nil, "", false
	}
	return p, rule.Name, true
}

// MakeFreshPlan chooses a plan when none is active.
func (a *Advisor) MakeFreshPlan(s *assess.Situation) *plan.Plan {
	b := a.builder
	if !s.HasInitiative && !s.HasBestShot {
		return b.FirstViable(plan.Neutral,
			b.GetBoost(),
			steps.NewPositionForPass(),
			steps.NewGetOnOffense(),
			steps.NewDemolish(),
		)
	}
	if !s.ThreatExists {
		return a.planWithPlentyOfTime(s)
	}
	if s.Advantage > a.tuning.Tactics.ChallengeRace {
		return b.Plan(plan.Defensive, steps.NewChallenge())
	}
	// The rival probably gets there first.
	if s.RivalApproachError < math.Pi/3 && s.DistanceTargetIsBehindUs > -50 {
		return b.Plan(plan.Defensive, b.GetOnDefense(0))
	}
	// TODO: check where the rival sends the target before staying on offense here.
	return b.FirstViable(plan.Neutral,
		steps.NewGetOnOffense(),
		steps.NewDribble(),
		b.GetOnDefense(0),
	)
}

func (a *Advisor) planWithPlentyOfTime(s *assess.Situation) *plan.Plan {
	b := a.builder
	t := a.tuning.Tactics
	me := s.Me

	if me.Boost < t.LowBoost {
		return b.Plan(plan.Neutral, b.GetBoost())
	}
	if s.WallTouchOpportunity {
		return b.FirstViable(plan.Offensive,
			steps.NewWallTouch(),
			b.FlexibleKick(strike.WallPass{}),
		)
	}
	if s.ReallyWantsToDribble {
		return b.Plan(plan.Neutral, steps.NewDribble())
	}
	if s.GenerousShotAngle {
		return b.FirstViable(plan.Offensive,
			b.FlexibleKick(strike.KickAtEnemyGoal{}),
			b.FlexibleKick(strike.WallPass{}),
			steps.NewGetOnOffense(),
		)
	}
	if me.Boost < t.ComfortableBoost {
		return b.Plan(plan.Neutral, b.GetBoost())
	}
	if s.WrongSideOfTarget > 0 {
		return b.Plan(plan.Neutral, steps.NewGetOnOffense())
	}
	if s.CatchOpportunity {
		ownGoal := model.OwnGoal(s.Team).Center
		park := model.Vec2{X: 0, Y: s.World.Ball.Position.Y + ownGoal.Y*.5}
		return b.FirstViable(plan.Neutral,
			b.CatchBall(),
			steps.NewDribble(),
			steps.NewParkTheCar(park, ownGoal.Flatten()),
		)
	}
	return b.FirstViable(plan.Neutral,
		b.FlexibleKick(strike.WallPass{}),
		steps.NewDemolish(),
	)
}

// Tick runs one decision cycle and returns the control action. An error
// means the snapshot could not be assessed; the caller should send a safe
// default.
func (a *Advisor) Tick(ctx context.Context, w model.World) (plan.Output, error) {
	s, err := a.Assess(w)
	if err != nil {
		return plan.Idle(), err
	}

	reason := ""
	if p, rule, ok := a.FindMoreUrgentPlan(s); ok {
		a.replace(p, rule)
		reason = rule
	}
	if a.active == nil || a.active.IsComplete() {
		a.replace(a.MakeFreshPlan(s), "fresh")
		reason = "fresh"
	}

	b := plan.Bundle{Situation: s}
	out, ok := a.active.Output(b)
	if !ok && reason != "fresh" {
		// The plan finished this tick; give a fresh one a chance before
		// falling back.
		a.replace(a.MakeFreshPlan(s), "fresh")
		reason = "fresh"
		out, ok = a.active.Output(b)
	}
	fallback := !ok
	if fallback {
		out = steps.Greedy(s.Me, s.World.Ball.Position)
	}

	rec := telemetry.Record{
		Situation: s.Summary(),
		PlanID:    a.active.ID,
		Posture:   a.active.Posture.String(),
		Step:      a.active.Situation(),
		Reason:    reason,
		Output:    out,
		Fallback:  fallback,
	}
	a.sink.Publish(ctx, rec)
	return out, nil
}

func (a *Advisor) replace(p *plan.Plan, reason string) {
	if a.active != nil && !a.active.IsComplete() {
		a.active.Abort("preempted by " + reason)
	}
	a.log.Debug("plan selected", "plan", p.ID, "posture", p.Posture, "reason", reason)
	a.active = p
}
