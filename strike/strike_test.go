package strike

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstehr/volley/volley-core/intercept"
	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/physics"
)

type fixedKick struct {
	dir model.Vec3
	ok  bool
}

func (f fixedKick) KickDirection(model.AgentState, model.Vec3, *model.Vec3) (model.Vec3, bool) {
	return f.dir, f.ok
}

// acceptEasy takes whatever easy kick is offered and otherwise kicks along +X.
type acceptEasy struct{}

func (acceptEasy) KickDirection(_ model.AgentState, _ model.Vec3, easyKick *model.Vec3) (model.Vec3, bool) {
	if easyKick != nil {
		return *easyKick, true
	}
	return model.Vec3{X: 1}, true
}

func approachingAgent() model.AgentState {
	return model.AgentState{
		Team:            model.Blue,
		Position:        model.Vec3{X: 0, Y: -30, Z: model.BaseAgentZ},
		Velocity:        model.Vec3{Y: 10},
		Orientation:     model.FacingOrientation(model.Vec2{Y: 1}),
		Boost:           50,
		HasWheelContact: true,
	}
}

func restingIntercept(style intercept.Style) intercept.Intercept {
	target := model.TargetSlice{Time: 2, Position: model.Vec3{Z: model.BallRadius}}
	return intercept.Intercept{
		Time:       2,
		Target:     target,
		Space:      target.Position,
		Profile:    intercept.ProfileFor(style, target.Position.Z),
		SpareTime:  0.5,
		AccelSlice: physics.Motion{Speed: 20},
	}
}

func TestChipOffsetMatchesApproachAngle(t *testing.T) {
	agent := approachingAgent()
	in := restingIntercept(intercept.Chip)
	plan, ok, err := PlanKick(in, nil, agent, fixedKick{dir: model.Vec3{X: 1, Y: 1}, ok: true})
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, plan.EasyKickAllowed)

	approach := EstimateApproachVector(agent.Position.Flatten(), agent.Orientation.Nose.Flatten(), in.Space.Flatten())
	angle := approach.CorrectionAngle(plan.PlannedKickForce.Flatten())
	offset := plan.Waypoint.Position.Distance(in.Target.Position.Flatten())
	assert.InDelta(t, ChipOffset(angle), offset, 1e-9)
	assert.Greater(t, offset, ChipBaseOffset)
	assert.True(t, plan.Waypoint.HasWait)
}

func TestEasyKickAccepted(t *testing.T) {
	agent := approachingAgent()
	in := restingIntercept(intercept.FlipHit)
	plan, ok, err := PlanKick(in, nil, agent, acceptEasy{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, plan.EasyKickAllowed)
	// A resting target bounces off at twice the wall speed.
	assert.InDelta(t, 2*plan.PlannedKickForce.Magnitude(), plan.DesiredTargetVelocity.Magnitude(), 1e-9)
	assert.Equal(t, plan.PlannedKickForce.Flatten().Normalized(), plan.Waypoint.Facing)
}

func TestStrategyRejectionMeansNoPlan(t *testing.T) {
	_, ok, err := PlanKick(restingIntercept(intercept.FlipHit), nil, approachingAgent(), fixedKick{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestZeroKickDirectionIsAnError(t *testing.T) {
	_, ok, err := PlanKick(restingIntercept(intercept.SideHit), nil, approachingAgent(), fixedKick{ok: true})
	require.ErrorIs(t, err, model.ErrZeroVector)
	assert.False(t, ok)
}

func TestDiagonalHitRejectsLargeDeflection(t *testing.T) {
	// Kicking straight back at the agent needs far more than a diagonal dodge can give.
	_, ok, err := PlanKick(restingIntercept(intercept.DiagonalHit), nil, approachingAgent(), fixedKick{dir: model.Vec3{Y: -1}, ok: true})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSideHitBehindFrontCornerUsesFacingWaypoint(t *testing.T) {
	agent := approachingAgent()
	in := restingIntercept(intercept.SideHit)
	plan, ok, err := PlanKick(in, nil, agent, fixedKick{dir: model.Vec3{X: 1}, ok: true})
	require.NoError(t, err)
	require.True(t, ok)

	wp := plan.Waypoint
	assert.False(t, wp.AnyFacing)
	assert.InDelta(t, 0, wp.Facing.X, 1e-9)
	assert.InDelta(t, 1, wp.Facing.Y, 1e-9)
	// Two seconds out the arrival speed is the current speed.
	backoff := in.Profile.StrikeDuration() * 10
	assert.InDelta(t, -2, wp.Position.X, 1e-9)
	assert.InDelta(t, -backoff, wp.Position.Y, 1e-9)
	assert.InDelta(t, in.Time-in.Profile.StrikeDuration(), wp.ExpectedTime, 1e-9)
}

func TestInterceptAtOrBeforeNowHasNoPlan(t *testing.T) {
	agent := approachingAgent()
	agent.Time = 2
	_, ok, err := PlanKick(restingIntercept(intercept.FlipHit), nil, agent, acceptEasy{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSideSideAngle(t *testing.T) {
	tri, ok := SideSideAngle(1, 1, math.Pi/3)
	require.True(t, ok)
	assert.InDelta(t, 1, tri.SideC, 1e-9)
	assert.InDelta(t, math.Pi/3, tri.AngleC, 1e-9)

	_, ok = SideSideAngle(1, 3, math.Pi/2)
	assert.False(t, ok, "side b too long for angle A")

	_, ok = SideSideAngle(1, 0.5, math.Pi)
	assert.False(t, ok, "straight angle is degenerate")
}

func TestKickAwayFromOwnGoal(t *testing.T) {
	agent := model.AgentState{Team: model.Blue, Position: model.Vec3{Y: -40}}
	contact := model.Vec3{Y: -60, Z: model.BallRadius}

	toward := model.Vec3{Y: -1}
	dir, ok := KickAwayFromOwnGoal{}.KickDirection(agent, contact, &toward)
	require.True(t, ok)
	assert.False(t, headsBetween(contact.Flatten(), dir.Flatten(), -model.BackWall, model.GoalHalfWidth))

	wide := model.Vec3{X: 1}
	dir, ok = KickAwayFromOwnGoal{}.KickDirection(agent, contact, &wide)
	require.True(t, ok)
	assert.Equal(t, wide, dir)
}

func TestKickAtEnemyGoal(t *testing.T) {
	agent := model.AgentState{Team: model.Blue, Position: model.Vec3{Y: 10}}
	contact := model.Vec3{Y: 30, Z: model.BallRadius}

	straight := model.Vec3{Y: 5}
	dir, ok := KickAtEnemyGoal{}.KickDirection(agent, contact, &straight)
	require.True(t, ok)
	assert.Equal(t, straight, dir)

	sideways := model.Vec3{X: 5}
	dir, ok = KickAtEnemyGoal{}.KickDirection(agent, contact, &sideways)
	require.True(t, ok)
	assert.True(t, headsBetween(contact.Flatten(), dir.Flatten(), model.BackWall, model.GoalHalfWidth))
}

func TestWallPassBanksUpfield(t *testing.T) {
	agent := model.AgentState{Team: model.Orange}
	dir, ok := WallPass{}.KickDirection(agent, model.Vec3{X: -10, Y: 0}, nil)
	require.True(t, ok)
	assert.Less(t, dir.X, 0.0)
	assert.Less(t, dir.Y, 0.0, "orange attacks toward -Y")
}
