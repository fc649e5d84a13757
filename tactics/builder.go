package tactics

import (
	"log/slog"

	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/plan"
	"github.com/nstehr/volley/volley-core/steps"
	"github.com/nstehr/volley/volley-core/strike"
	"github.com/nstehr/volley/volley-core/tuning"
)

// Builder constructs Steps and Plans with the tuning and logger of one agent.
type Builder struct {
	Tuning tuning.Tuning
	Log    *slog.Logger
}

func (b *Builder) Plan(posture plan.Posture, s ...plan.Step) *plan.Plan {
	return plan.New(posture, s...).WithLogger(b.Log)
}

func (b *Builder) FirstViable(posture plan.Posture, s ...plan.Step) *plan.Plan {
	return plan.FirstViable(posture, s...).WithLogger(b.Log)
}

func (b *Builder) Intercept(modifier model.Vec3) plan.Step {
	return steps.NewIntercept(modifier, b.Tuning.Steps.DivergenceTolerance)
}

func (b *Builder) FlexibleKick(strategy strike.KickStrategy) plan.Step {
	return steps.NewFlexibleKick(strategy, b.Tuning.Steps.DivergenceTolerance, b.Log)
}

func (b *Builder) GetBoost() plan.Step { return steps.NewGetBoost(b.Tuning.Steps.FullBoost) }

func (b *Builder) CatchBall() plan.Step { return steps.NewCatchBall(b.Tuning.Steps.CatchWaitSeconds) }

func (b *Builder) RotateAndWaitToClear() plan.Step {
	return steps.NewRotateAndWaitToClear(b.Tuning.Tactics.WaitToClearMaxAdvantage)
}

func (b *Builder) GetOnDefense(lifetime float64) plan.Step { return steps.NewGetOnDefense(lifetime) }
