package steps

import (
	"math"

	"github.com/nstehr/volley/volley-core/assess"
	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/plan"
)

// ParkTheCarStep stops at a position with a given facing.
type ParkTheCarStep struct {
	Position model.Vec2
	Facing   model.Vec2
}

func NewParkTheCar(position, facing model.Vec2) *ParkTheCarStep {
	return &ParkTheCarStep{Position: position, Facing: facing}
}

func (st *ParkTheCarStep) Output(b plan.Bundle) (plan.Output, bool) {
	me := b.Situation.Me
	if st.Position.Distance(me.Position.Flatten()) < 3 && FacingError(me, st.Facing) < math.Pi/8 {
		return plan.Output{}, false
	}
	return ParkAt(me, st.Position, st.Facing), true
}

func (st *ParkTheCarStep) ShouldAbort(plan.Bundle) bool { return false }
func (st *ParkTheCarStep) CanInterrupt() bool           { return true }
func (st *ParkTheCarStep) Situation() string            { return "parking" }

// GetBoostStep collects the nearest active pad, preferring full ones.
type GetBoostStep struct {
	FullBoost float64

	pad    model.Vec3
	chosen bool
}

func NewGetBoost(fullBoost float64) *GetBoostStep { return &GetBoostStep{FullBoost: fullBoost} }

// NearestPad returns the closest active pad, full pads first.
func NearestPad(me model.AgentState, pads []model.BoostPad) (model.BoostPad, bool) {
	var (
		best      model.BoostPad
		bestScore = math.Inf(1)
		found     bool
	)
	for _, p := range pads {
		if !p.Active {
			continue
		}
		score := p.Location.Distance(me.Position)
		if !p.Full {
			score *= 2
		}
		if score < bestScore {
			best, bestScore, found = p, score, true
		}
	}
	return best, found
}

func (st *GetBoostStep) Output(b plan.Bundle) (plan.Output, bool) {
	s := b.Situation
	if s.Me.Boost > st.FullBoost {
		return plan.Output{}, false
	}
	if !st.chosen {
		pad, ok := NearestPad(s.Me, s.World.BoostPads)
		if !ok {
			return plan.Output{}, false
		}
		st.pad, st.chosen = pad.Location, true
	}
	return SteerTowards(s.Me, st.pad.Flatten()), true
}

// ShouldAbort once full, or when the chosen pad is gone or spent.
func (st *GetBoostStep) ShouldAbort(b plan.Bundle) bool {
	s := b.Situation
	if s.Me.Boost > st.FullBoost {
		return true
	}
	if !st.chosen {
		return false
	}
	for _, p := range s.World.BoostPads {
		if p.Location == st.pad {
			return !p.Active
		}
	}
	return true
}

func (st *GetBoostStep) CanInterrupt() bool { return true }
func (st *GetBoostStep) Situation() string  { return "getting boost" }

// LandGracefullyStep rights the agent while airborne, facing its motion.
type LandGracefullyStep struct{}

func NewLandGracefully() *LandGracefullyStep { return &LandGracefullyStep{} }

func (LandGracefullyStep) Output(b plan.Bundle) (plan.Output, bool) {
	me := b.Situation.Me
	if me.HasWheelContact {
		return plan.Output{}, false
	}
	return RecoverOutput(me, me.Velocity.Flatten()), true
}

func (LandGracefullyStep) ShouldAbort(plan.Bundle) bool { return false }
func (LandGracefullyStep) CanInterrupt() bool           { return true }
func (LandGracefullyStep) Situation() string            { return "landing" }

// PositionForPassStep waits upfield and across from the target for a
// teammate to play it.
type PositionForPassStep struct{}

func NewPositionForPass() *PositionForPassStep { return &PositionForPassStep{} }

// PassSpot mirrors the target across the field, behind it toward our goal.
func PassSpot(s *assess.Situation) (position, facing model.Vec2) {
	target := s.World.Ball.Position
	position = model.Vec2{X: -target.X * 0.5, Y: target.Y + s.Team.Side()*25}
	position.Y = math.Max(-model.BackWall+10, math.Min(model.BackWall-10, position.Y))
	return position, target.Flatten().Sub(position)
}

func (PositionForPassStep) Output(b plan.Bundle) (plan.Output, bool) {
	s := b.Situation
	if s.HasInitiative {
		return plan.Output{}, false
	}
	pos, facing := PassSpot(s)
	return ParkAt(s.Me, pos, facing), true
}

func (PositionForPassStep) ShouldAbort(plan.Bundle) bool { return false }
func (PositionForPassStep) CanInterrupt() bool           { return true }
func (PositionForPassStep) Situation() string            { return "positioning for pass" }
