package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/nstehr/volley/volley-core/model"
)

// ErrEmptyPath is returned by consumers that need at least one predicted slice.
var ErrEmptyPath = errors.New("empty target path")

// Predictor forecasts the target's future. Implementations are deterministic
// for a given snapshot and keep no state between calls.
type Predictor interface {
	PredictPath(w model.World) (model.Path, error)
}

// BallisticPredictor integrates gravity, drag and bounces off the floor,
// ceiling and walls. It stands in for the simulator's own prediction.
type BallisticPredictor struct {
	Step        float64 // seconds per slice
	Horizon     float64 // seconds of prediction
	Restitution float64 // fraction of normal speed kept on a bounce
	Drag        float64 // fraction of speed lost per second
}

// DefaultPredictor samples six seconds at 60Hz.
func DefaultPredictor() BallisticPredictor {
	return BallisticPredictor{Step: 1.0 / 60, Horizon: 6, Restitution: 0.6, Drag: 0.0305}
}

func (b BallisticPredictor) PredictPath(w model.World) (model.Path, error) {
	if b.Horizon < 0 {
		return nil, fmt.Errorf("predict path: %w", ErrNegativeHorizon)
	}
	if b.Step <= 0 {
		return nil, fmt.Errorf("predict path: non-positive step %v", b.Step)
	}
	n := int(math.Round(b.Horizon/b.Step)) + 1
	path := make(model.Path, 0, n)

	pos, vel := w.Ball.Position, w.Ball.Velocity
	t := w.Time
	path = append(path, model.TargetSlice{Time: t, Position: pos, Velocity: vel})
	for i := 1; i < n; i++ {
		vel = vel.Scale(1 - b.Drag*b.Step)
		vel.Z -= model.Gravity * b.Step
		pos = pos.Add(vel.Scale(b.Step))
		pos, vel = b.bounce(pos, vel)
		t += b.Step
		path = append(path, model.TargetSlice{Time: t, Position: pos, Velocity: vel})
	}
	return path, nil
}

func (b BallisticPredictor) bounce(pos, vel model.Vec3) (model.Vec3, model.Vec3) {
	r := model.BallRadius
	if pos.Z < r {
		pos.Z = r
		if vel.Z < 0 {
			vel.Z = -vel.Z * b.Restitution
		}
	}
	if pos.Z > model.Ceiling-r {
		pos.Z = model.Ceiling - r
		if vel.Z > 0 {
			vel.Z = -vel.Z * b.Restitution
		}
	}
	if math.Abs(pos.X) > model.SideWall-r {
		pos.X = math.Copysign(model.SideWall-r, pos.X)
		vel.X = -vel.X * b.Restitution
	}
	inGoalMouth := math.Abs(pos.X) < model.GoalHalfWidth && pos.Z < model.GoalHeight
	if !inGoalMouth && math.Abs(pos.Y) > model.BackWall-r {
		pos.Y = math.Copysign(model.BackWall-r, pos.Y)
		vel.Y = -vel.Y * b.Restitution
	}
	return pos, vel
}
