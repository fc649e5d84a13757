package model

import "math"

// Goal is a scoring opening on one of the back walls. Geometry is a
// parameter of the arena, not of the decision core.
type Goal struct {
	Center    Vec3
	LeftPost  Vec3
	RightPost Vec3
	Height    float64
}

// OwnGoal is the goal team defends.
func OwnGoal(team Team) Goal { return goalOnSide(team.Side()) }

// EnemyGoal is the goal team attacks.
func EnemyGoal(team Team) Goal { return goalOnSide(-team.Side()) }

func goalOnSide(side float64) Goal {
	y := side * BackWall
	// Left and right are as seen by a defender facing out of the goal.
	return Goal{
		Center:    Vec3{0, y, GoalHeight / 2},
		LeftPost:  Vec3{side * GoalHalfWidth, y, 0},
		RightPost: Vec3{-side * GoalHalfWidth, y, 0},
		Height:    GoalHeight,
	}
}

// PredictGoalEvent returns the first slice at which the target crosses into
// the goal mouth.
func (g Goal) PredictGoalEvent(path Path) (TargetSlice, bool) {
	side := math.Copysign(1, g.Center.Y)
	for _, s := range path {
		if s.Position.Y*side > BackWall+BallRadius &&
			math.Abs(s.Position.X) < GoalHalfWidth &&
			s.Position.Z < g.Height {
			return s, true
		}
	}
	return TargetSlice{}, false
}

// InBox reports whether pos is in the defensive box in front of the goal.
func (g Goal) InBox(pos Vec3) bool {
	side := math.Copysign(1, g.Center.Y)
	return math.Abs(pos.X) < GoalHalfWidth*2 &&
		pos.Y*side > BackWall-35 &&
		pos.Y*side < BackWall
}

// TargetLingersInBox is true when the predicted target spends at least
// lingerSeconds of the next lookahead seconds inside the box.
func (g Goal) TargetLingersInBox(path Path, lookahead, lingerSeconds float64) bool {
	start, ok := path.Start()
	if !ok {
		return false
	}
	inside := 0.0
	for i := 1; i < len(path); i++ {
		if path[i].Time-start.Time > lookahead {
			break
		}
		if g.InBox(path[i].Position) {
			inside += path[i].Time - path[i-1].Time
		}
	}
	return inside >= lingerSeconds
}

// NearPost clamps a goal post inward so shots aim inside the frame rather
// than at the post itself.
func (g Goal) NearPost(post Vec2) Vec2 {
	inward := Vec2{-post.X, 0}.ScaledToMagnitude(BallRadius)
	return post.Add(inward)
}
