package steps

import (
	"math"

	"github.com/nstehr/volley/volley-core/assess"
	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/plan"
)

// GoForKickoffStep drives at the resting target and dodges into it.
type GoForKickoffStep struct {
	dodged bool
}

func NewGoForKickoff() *GoForKickoffStep { return &GoForKickoffStep{} }

// kickoffLive is true until the target leaves the center spot.
func kickoffLive(target model.TargetState) bool {
	return target.Position.Flatten().Magnitude() < 1 && target.Velocity.Flatten().Magnitude() < 1
}

func (st *GoForKickoffStep) Output(b plan.Bundle) (plan.Output, bool) {
	s := b.Situation
	target := s.World.Ball
	if !kickoffLive(target) {
		return plan.Output{}, false
	}
	out := SteerTowards(s.Me, target.Position.Flatten())
	out.Boost = !st.dodged
	if target.Position.Flatten().Distance(s.Me.Position.Flatten()) < 8 {
		st.dodged = true
		out.Jump, out.Pitch, out.Boost = true, -1, false
	}
	return out, true
}

func (st *GoForKickoffStep) ShouldAbort(plan.Bundle) bool { return false }
func (st *GoForKickoffStep) CanInterrupt() bool           { return !st.dodged }
func (st *GoForKickoffStep) Situation() string            { return "going for kickoff" }

// GetOnOffenseStep gets behind the target relative to the rival goal.
type GetOnOffenseStep struct{}

func NewGetOnOffense() *GetOnOffenseStep { return &GetOnOffenseStep{} }

// OffensiveSpot is 15 units behind the target on the line into the rival goal.
func OffensiveSpot(team model.Team, target model.Vec3) (position, facing model.Vec2) {
	flat := target.Flatten()
	toGoal := model.EnemyGoal(team).Center.Flatten().Sub(flat)
	position = flat.Sub(toGoal.ScaledToMagnitude(15))
	position.X = math.Max(-model.SideWall+5, math.Min(model.SideWall-5, position.X))
	position.Y = math.Max(-model.BackWall+5, math.Min(model.BackWall-5, position.Y))
	return position, flat.Sub(position)
}

func (GetOnOffenseStep) Output(b plan.Bundle) (plan.Output, bool) {
	s := b.Situation
	pos, facing := OffensiveSpot(s.Team, s.World.Ball.Position)
	if pos.Distance(s.Me.Position.Flatten()) < 5 {
		return plan.Output{}, false
	}
	return ParkAt(s.Me, pos, facing), true
}

func (GetOnOffenseStep) ShouldAbort(plan.Bundle) bool { return false }
func (GetOnOffenseStep) CanInterrupt() bool           { return true }
func (GetOnOffenseStep) Situation() string            { return "getting on offense" }

// DribbleStep carries the target toward the rival goal while it sits low
// in front of the agent.
type DribbleStep struct{}

func NewDribble() *DribbleStep { return &DribbleStep{} }

func (DribbleStep) Output(b plan.Bundle) (plan.Output, bool) {
	s := b.Situation
	if !s.CanDribble {
		return plan.Output{}, false
	}
	target := s.World.Ball
	flat := target.Position.Flatten()
	toGoal := model.EnemyGoal(s.Team).Center.Flatten().Sub(flat)
	push := flat.Sub(toGoal.ScaledToMagnitude(1.5))
	out := SteerTowards(s.Me, push)
	out.Boost = false
	if s.Me.Velocity.Flatten().Magnitude() > target.Velocity.Flatten().Magnitude()+2 {
		out.Throttle = 0
	}
	return out, true
}

func (DribbleStep) ShouldAbort(plan.Bundle) bool { return false }
func (DribbleStep) CanInterrupt() bool           { return true }
func (DribbleStep) Situation() string            { return "dribbling" }

// CatchBallStep gets under a descending target to settle it on the roof.
// It gives up after WaitLimit seconds.
type CatchBallStep struct {
	WaitLimit float64

	start   float64
	started bool
}

func NewCatchBall(waitLimit float64) *CatchBallStep { return &CatchBallStep{WaitLimit: waitLimit} }

func (st *CatchBallStep) Output(b plan.Bundle) (plan.Output, bool) {
	s := b.Situation
	if !st.started {
		st.start, st.started = s.Time, true
	}
	slice, ok := assess.CatchOpportunity(s.Me, s.Path, s.Plot)
	if !ok {
		return plan.Output{}, false
	}
	flat := slice.Position.Flatten()
	awayFromGoal := flat.Sub(model.EnemyGoal(s.Team).Center.Flatten())
	spot := flat.Add(awayFromGoal.ScaledToMagnitude(1))
	return ArriveAt(s.Me, spot, s.Time, slice.Time), true
}

func (st *CatchBallStep) ShouldAbort(b plan.Bundle) bool {
	return st.started && b.Situation.Time-st.start > st.WaitLimit
}

func (st *CatchBallStep) CanInterrupt() bool { return true }
func (st *CatchBallStep) Situation() string  { return "catching" }

// WallTouchStep meets the target where it runs up a side wall.
type WallTouchStep struct {
	latch strikeLatch
}

func NewWallTouch() *WallTouchStep { return &WallTouchStep{} }

func (st *WallTouchStep) Output(b plan.Bundle) (plan.Output, bool) {
	s := b.Situation
	if !s.WallTouchOpportunity || s.ExpectedContact == nil || st.latch.spent(s.Time) {
		return plan.Output{}, false
	}
	in := *s.ExpectedContact
	if s.Time >= in.Time-in.Profile.StrikeDuration() {
		st.latch.engage(in.Time)
		return StrikeOutput(s.Me, in, s.Time, model.Vec2{}), true
	}
	return ArriveAt(s.Me, in.Space.Flatten(), s.Time, in.Time-in.Profile.StrikeDuration()), true
}

func (st *WallTouchStep) ShouldAbort(plan.Bundle) bool { return false }
func (st *WallTouchStep) CanInterrupt() bool           { return !st.latch.held() }
func (st *WallTouchStep) Situation() string            { return "wall touch" }

// DemolishStep rams the nearest grounded rival at speed.
type DemolishStep struct{}

func NewDemolish() *DemolishStep { return &DemolishStep{} }

const demolishMinBoost = 20.0

func nearestRival(s *assess.Situation) (model.AgentState, bool) {
	var (
		best  model.AgentState
		found bool
		dist  = math.Inf(1)
	)
	for _, r := range s.World.Rivals(s.Team) {
		if r.Demolished || !r.HasWheelContact {
			continue
		}
		if d := r.Position.Distance(s.Me.Position); d < dist {
			best, dist, found = r, d, true
		}
	}
	return best, found
}

func (DemolishStep) Output(b plan.Bundle) (plan.Output, bool) {
	s := b.Situation
	if s.Me.Boost < demolishMinBoost {
		return plan.Output{}, false
	}
	rival, ok := nearestRival(s)
	if !ok {
		return plan.Output{}, false
	}
	lead := rival.Position.Add(rival.Velocity.Scale(0.3)).Flatten()
	out := SteerTowards(s.Me, lead)
	out.Boost = out.Boost || math.Abs(out.Steer) < 0.3
	return out, true
}

func (DemolishStep) ShouldAbort(plan.Bundle) bool { return false }
func (DemolishStep) CanInterrupt() bool           { return true }
func (DemolishStep) Situation() string            { return "demolishing" }
