package strike

import (
	"math"

	"github.com/nstehr/volley/volley-core/model"
)

// KickAtEnemyGoal aims between the rival posts, taking the easy kick when it
// already goes in.
type KickAtEnemyGoal struct{}

func (KickAtEnemyGoal) KickDirection(agent model.AgentState, contact model.Vec3, easyKick *model.Vec3) (model.Vec3, bool) {
	goal := model.EnemyGoal(agent.Team)
	inner := model.GoalHalfWidth - 2*model.BallRadius
	if easyKick != nil && headsBetween(contact.Flatten(), easyKick.Flatten(), goal.Center.Y, inner) {
		return *easyKick, true
	}
	aim := model.Vec2{X: clamp(contact.X, -inner, inner), Y: goal.Center.Y}
	dir := aim.Sub(contact.Flatten())
	if dir.IsZero() {
		return model.Vec3{}, false
	}
	return dir.ToVec3(), true
}

// headsBetween reports whether a ray from origin along dir crosses the line
// y = lineY with |x| < halfWidth.
func headsBetween(origin, dir model.Vec2, lineY, halfWidth float64) bool {
	if dir.Y == 0 || (lineY-origin.Y)/dir.Y <= 0 {
		return false
	}
	x := origin.X + dir.X*(lineY-origin.Y)/dir.Y
	return math.Abs(x) < halfWidth
}

// KickAwayFromOwnGoal sends the target wide of the own posts. The easy kick
// is kept whenever it already misses the safety arc around the goal.
type KickAwayFromOwnGoal struct{}

func (KickAwayFromOwnGoal) KickDirection(agent model.AgentState, contact model.Vec3, easyKick *model.Vec3) (model.Vec3, bool) {
	easy := contact.Sub(agent.Position).Flatten()
	if easyKick != nil {
		easy = easyKick.Flatten()
	}
	goal := model.OwnGoal(agent.Team)
	toLeft := goal.LeftPost.Sub(contact).Flatten()
	toRight := goal.RightPost.Sub(contact).Flatten()
	cwPost, ccwPost := toLeft, toRight
	if toLeft.CorrectionAngle(toRight) < 0 {
		cwPost, ccwPost = toRight, toLeft
	}
	safeCW := cwPost.Rotate(-math.Pi / 4)
	safeCCW := ccwPost.Rotate(math.Pi / 4)

	if counterClockwise(safeCW, safeCCW) < counterClockwise(safeCW, easy) {
		if easyKick != nil {
			return *easyKick, true
		}
		return easy.ToVec3(), true
	}
	if math.Abs(easy.CorrectionAngle(safeCW)) < math.Abs(easy.CorrectionAngle(safeCCW)) {
		return safeCW.ToVec3(), true
	}
	return safeCCW.ToVec3(), true
}

// counterClockwise is the unwrapped turn from a to b in [0, 2π).
func counterClockwise(a, b model.Vec2) float64 {
	angle := a.CorrectionAngle(b)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}

// WallPass banks the target off the nearer side wall toward the rival half.
type WallPass struct {
	// Lead is how far up the field the bank point sits. Zero means 40.
	Lead float64
}

func (w WallPass) KickDirection(agent model.AgentState, contact model.Vec3, _ *model.Vec3) (model.Vec3, bool) {
	lead := w.Lead
	if lead == 0 {
		lead = 40
	}
	wallX := model.SideWall
	if contact.X < 0 {
		wallX = -model.SideWall
	}
	upfield := -agent.Team.Side()
	bank := model.Vec2{X: wallX, Y: clamp(contact.Y+upfield*lead, -model.BackWall, model.BackWall)}
	dir := bank.Sub(contact.Flatten())
	if dir.IsZero() {
		return model.Vec3{}, false
	}
	return dir.ToVec3(), true
}

// LooksViable is false when the target already hugs the wall.
func (WallPass) LooksViable(contact model.Vec3) bool {
	return math.Abs(contact.X) < model.SideWall-10
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
