package tactics

import (
	"fmt"
	"math"

	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/plan"
	"github.com/nstehr/volley/volley-core/steps"
	"github.com/nstehr/volley/volley-core/strike"
	"github.com/nstehr/volley/volley-core/tuning"
)

// CompileDoctrine generates the urgency rules from a doctrine and the tuned
// thresholds. Conditions are built via fmt.Sprintf with interpolated values.
// Priorities encode the precedence: kickoff, landing, save, wait to clear,
// forced defense, clear, threat, shot.
func CompileDoctrine(d Doctrine, t tuning.Tactics) []*Rule {
	d.Validate()
	threatThreshold := weighted(t.ThreatThreshold, d.Aggression)
	threatMaxAdvantage := weighted(t.ThreatMaxAdvantage, d.Caution)
	clearChallengeAdvantage := weighted(t.ClearChallengeAdvantage, d.Caution)
	shotWindow := weighted(t.ShotWindowSeconds, d.Aggression)
	dribbleWindow := t.DribbleWindowSeconds

	var rules []*Rule

	rules = append(rules, &Rule{
		Name:         "kickoff",
		Priority:     1000,
		Posture:      plan.Kickoff,
		ConditionSrc: `GoForKickoff()`,
		Build: func(env Env, b *Builder) *plan.Plan {
			if env.HasInitiative() {
				return b.Plan(plan.Kickoff, steps.NewGoForKickoff())
			}
			if env.KickoffCenter() {
				return b.Plan(plan.Defensive, b.GetOnDefense(3))
			}
			return b.Plan(plan.Kickoff, b.GetBoost())
		},
	})

	rules = append(rules, &Rule{
		Name:         "landing",
		Priority:     900,
		Posture:      plan.Landing,
		ConditionSrc: `OffWheels() && !BehindGoalLine()`,
		Build: func(env Env, b *Builder) *plan.Plan {
			return b.Plan(plan.Landing, steps.NewLandGracefully())
		},
	})

	rules = append(rules, &Rule{
		Name:         "save",
		Priority:     800,
		Posture:      plan.Save,
		ConditionSrc: `ScoredOnThreat()`,
		Build: func(env Env, b *Builder) *plan.Plan {
			if env.Advantage() < 0 && env.ThreatExists() && env.RivalContactBeforeThreat() && env.TargetBehindUs() < 0 {
				b.Log.Info("need to save, but also need to challenge first")
				return b.FirstViable(plan.Save,
					steps.NewChallenge(),
					steps.NewWhatASave(),
					b.Intercept(model.Vec3{}),
				)
			}
			b.Log.Info("canceling current plan, going for save")
			return b.Plan(plan.Save, steps.NewWhatASave())
		},
	})

	rules = append(rules, &Rule{
		Name:         "wait-to-clear",
		Priority:     700,
		Posture:      plan.Defensive,
		ConditionSrc: `!GoNuts() && WaitToClear()`,
		Build: func(env Env, b *Builder) *plan.Plan {
			return b.Plan(plan.Defensive, b.RotateAndWaitToClear())
		},
	})

	rules = append(rules, &Rule{
		Name:         "forced-defense",
		Priority:     600,
		Posture:      plan.Defensive,
		ConditionSrc: `!GoNuts() && ForceDefensivePosture()`,
		Build: func(env Env, b *Builder) *plan.Plan {
			return b.Plan(plan.Defensive, b.GetOnDefense(0.25))
		},
	})

	rules = append(rules, &Rule{
		Name:         "defensive-clear",
		Priority:     500,
		Posture:      plan.Clear,
		ConditionSrc: `NeedsDefensiveClear() && HasInitiative()`,
		Build: func(env Env, b *Builder) *plan.Plan {
			if env.Advantage() < clearChallengeAdvantage && env.ThreatExists() {
				return b.FirstViable(plan.Clear, steps.NewChallenge(), b.GetOnDefense(0.25))
			}
			if env.ApproachOpposesTarget() {
				side := math.Copysign(1, model.OwnGoal(env.S.Team).Center.Y)
				return b.Plan(plan.Clear, b.Intercept(model.Vec3{Y: side * 1.5}))
			}
			// The clearing kick is not checked against our own posts.
			return b.FirstViable(plan.Clear,
				b.FlexibleKick(strike.KickAwayFromOwnGoal{}),
				b.GetOnDefense(0),
			)
		},
	})

	rules = append(rules, &Rule{
		Name:     "threat",
		Priority: 400,
		Posture:  plan.Defensive,
		ConditionSrc: fmt.Sprintf(`!GoNuts() && Threat() > %v && Advantage() < %v && HasInitiative()`,
			threatThreshold, threatMaxAdvantage),
		Build: func(env Env, b *Builder) *plan.Plan {
			return b.FirstViable(plan.Defensive,
				steps.NewChallenge(),
				b.GetOnDefense(0),
				b.FlexibleKick(strike.KickAwayFromOwnGoal{}),
			)
		},
	})

	rules = append(rules, &Rule{
		Name:         "shot",
		Priority:     300,
		Posture:      plan.Offensive,
		ConditionSrc: fmt.Sprintf(`ShotOnGoalAvailable() && ContactWithin(%v) && HasBestShot()`, shotWindow),
		Build: func(env Env, b *Builder) *plan.Plan {
			var s []plan.Step
			if env.CanDribble() && env.ContactWithin(dribbleWindow) {
				s = append(s, steps.NewDribble())
			}
			s = append(s,
				b.FlexibleKick(strike.KickAtEnemyGoal{}),
				b.CatchBall(),
				steps.NewGetOnOffense(),
			)
			return b.FirstViable(plan.Offensive, s...)
		},
	})

	return rules
}

// DefaultRules compiles the balanced doctrine over default tuning.
func DefaultRules() []*Rule {
	return CompileDoctrine(DefaultDoctrine(), tuning.Default().Tactics)
}
