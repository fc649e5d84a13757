package steps

import (
	"math"

	"github.com/nstehr/volley/volley-core/intercept"
	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/plan"
	"github.com/nstehr/volley/volley-core/strike"
)

// WhatASaveStep gets a touch on the target before it crosses our goal line.
type WhatASaveStep struct {
	latch strikeLatch
}

func NewWhatASave() *WhatASaveStep { return &WhatASaveStep{} }

func (st *WhatASaveStep) Output(b plan.Bundle) (plan.Output, bool) {
	s := b.Situation
	if s.ScoredOnThreat == nil || s.Plot == nil || st.latch.spent(s.Time) {
		return plan.Output{}, false
	}
	threat := *s.ScoredOnThreat
	in, ok, err := intercept.Soonest(intercept.Query{
		Agent:   s.Me,
		Path:    s.Path,
		Plot:    s.Plot,
		Horizon: math.Max(0, threat.Time-s.Time),
	})
	if err == nil && ok {
		if s.Time >= in.Time-in.Profile.StrikeDuration() {
			st.latch.engage(in.Time)
			return StrikeOutput(s.Me, in, s.Time, model.Vec2{}), true
		}
		if kick, ok, err := strike.PlanKick(in, s.Path, s.Me, strike.KickAwayFromOwnGoal{}); err == nil && ok {
			return ApproachWaypoint(s.Me, kick.Waypoint, s.Time), true
		}
		return SteerTowards(s.Me, in.Space.Flatten()), true
	}
	// Nothing reachable in time: get onto the goal line where it will cross.
	goal := model.OwnGoal(s.Team)
	line := model.Vec2{
		X: math.Max(-model.GoalHalfWidth, math.Min(model.GoalHalfWidth, threat.Position.X)),
		Y: goal.Center.Y,
	}
	return SteerTowards(s.Me, line), true
}

func (st *WhatASaveStep) ShouldAbort(plan.Bundle) bool { return false }
func (st *WhatASaveStep) CanInterrupt() bool           { return !st.latch.held() }
func (st *WhatASaveStep) Situation() string            { return "making a save" }

// ChallengeStep contests the rival's contact from the goal side.
type ChallengeStep struct {
	latch strikeLatch
}

func NewChallenge() *ChallengeStep { return &ChallengeStep{} }

func (st *ChallengeStep) Output(b plan.Bundle) (plan.Output, bool) {
	s := b.Situation
	if !s.ThreatExists || s.ExpectedRivalContact == nil || st.latch.spent(s.Time) {
		return plan.Output{}, false
	}
	if mine := s.ExpectedContact; mine != nil && mine.Time <= s.ExpectedRivalContact.Time {
		if s.Time >= mine.Time-mine.Profile.StrikeDuration() {
			st.latch.engage(mine.Time)
			return StrikeOutput(s.Me, *mine, s.Time, model.Vec2{}), true
		}
		return SteerTowards(s.Me, mine.Space.Flatten()), true
	}
	contact := s.ExpectedRivalContact.Space.Flatten()
	toGoal := model.OwnGoal(s.Team).Center.Flatten().Sub(contact)
	return SteerTowards(s.Me, contact.Add(toGoal.ScaledToMagnitude(4))), true
}

func (st *ChallengeStep) ShouldAbort(plan.Bundle) bool { return false }
func (st *ChallengeStep) CanInterrupt() bool           { return !st.latch.held() }
func (st *ChallengeStep) Situation() string            { return "challenging" }

// GetOnDefenseStep parks between the target and our goal. With a positive
// lifetime it runs for that many seconds; otherwise until parked.
type GetOnDefenseStep struct {
	Lifetime float64

	start   float64
	started bool
}

func NewGetOnDefense(lifetime float64) *GetOnDefenseStep {
	return &GetOnDefenseStep{Lifetime: lifetime}
}

// DefensiveSpot is on the line from our goal to the target.
func DefensiveSpot(team model.Team, target model.Vec3) (position, facing model.Vec2) {
	goal := model.OwnGoal(team).Center.Flatten()
	toTarget := target.Flatten().Sub(goal)
	position = goal.Add(toTarget.ScaledToMagnitude(math.Min(15, toTarget.Magnitude()/2)))
	return position, target.Flatten().Sub(position)
}

func (st *GetOnDefenseStep) Output(b plan.Bundle) (plan.Output, bool) {
	s := b.Situation
	if !st.started {
		st.start, st.started = s.Time, true
	}
	if st.Lifetime > 0 && s.Time-st.start > st.Lifetime {
		return plan.Output{}, false
	}
	pos, facing := DefensiveSpot(s.Team, s.World.Ball.Position)
	if st.Lifetime <= 0 && pos.Distance(s.Me.Position.Flatten()) < 5 && FacingError(s.Me, facing) < math.Pi/8 {
		return plan.Output{}, false
	}
	return ParkAt(s.Me, pos, facing), true
}

func (st *GetOnDefenseStep) ShouldAbort(plan.Bundle) bool { return false }
func (st *GetOnDefenseStep) CanInterrupt() bool           { return true }
func (st *GetOnDefenseStep) Situation() string            { return "getting on defense" }

// farPostSpot sits just off the post away from the target, facing it.
func farPostSpot(team model.Team, target model.Vec3) (position, facing model.Vec2) {
	goal := model.OwnGoal(team).Center
	x := model.GoalHalfWidth
	if target.X > 0 {
		x = -x
	}
	position = model.Vec2{X: x, Y: goal.Y - team.Side()*5}
	return position, target.Flatten().Sub(position)
}

// NewRotateAndWaitToClear holds the far post while the target sits in one of
// our corners, parking there through a child plan when out of position.
func NewRotateAndWaitToClear(maxAdvantage float64) *plan.NestedPlanStep {
	return &plan.NestedPlanStep{
		Label: "rotate and wait to clear",
		Abort: func(b plan.Bundle) bool {
			s := b.Situation
			return !s.WaitToClear || s.Advantage > maxAdvantage
		},
		Direct: func(b plan.Bundle) (plan.Output, bool) {
			s := b.Situation
			pos, facing := farPostSpot(s.Team, s.World.Ball.Position)
			if pos.Distance(s.Me.Position.Flatten()) < 5 && FacingError(s.Me, facing) < math.Pi/8 {
				return plan.Idle(), true
			}
			return plan.Output{}, false
		},
		Spawn: func(b plan.Bundle) *plan.Plan {
			s := b.Situation
			pos, facing := farPostSpot(s.Team, s.World.Ball.Position)
			return plan.New(plan.Neutral, NewParkTheCar(pos, facing))
		},
	}
}
