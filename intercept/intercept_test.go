package intercept

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/physics"
)

func groundAgent(pos model.Vec3) model.AgentState {
	pos.Z = model.BaseAgentZ
	return model.AgentState{
		Position:        pos,
		Orientation:     model.FlatOrientation(),
		HasWheelContact: true,
		Boost:           100,
	}
}

func hoveringPath(pos model.Vec3, seconds float64) model.Path {
	var p model.Path
	for t := 0.0; t <= seconds+1e-9; t += 0.05 {
		p = append(p, model.TargetSlice{Time: t, Position: pos})
	}
	return p
}

func plotFor(t *testing.T, agent model.AgentState) physics.DistancePlot {
	t.Helper()
	plot, err := physics.SimulateAcceleration(agent, 7, agent.Boost)
	require.NoError(t, err)
	return plot
}

func TestAccelerationIsViableBoundary(t *testing.T) {
	limit := AccelNeededThreshold * BoostAccelInAir

	assert.False(t, AccelerationIsViable(limit), "exactly at the threshold is not viable")
	assert.True(t, AccelerationIsViable(math.Nextafter(limit, 0)))
	assert.True(t, AccelerationIsViable(0))
	assert.False(t, AccelerationIsViable(-0.01))
}

func TestCourseCorrectionInfeasibleWhenTurnUsesAllTime(t *testing.T) {
	agent := groundAgent(model.Vec3{})
	agent.Time = 10

	// Target behind the agent needs a half turn, which takes about a second.
	cc := CalculateCourseCorrection(agent, model.SpaceTime{Space: model.Vec3{X: -30, Z: 10}, Time: 10.5}, false, 1)
	assert.False(t, cc.Feasible)
	assert.True(t, math.IsInf(cc.AverageAccelerationRequired, 1))
	assert.False(t, IsViableAerial(agent, model.SpaceTime{Space: model.Vec3{X: -30, Z: 10}, Time: 10.5}, false, 1))

	// No time at all is the degenerate case of the same guard.
	cc = CalculateCourseCorrection(agent, model.SpaceTime{Space: model.Vec3{X: 5, Z: 5}, Time: 10}, false, 1)
	assert.False(t, cc.Feasible)
}

func TestCourseCorrectionTurnTime(t *testing.T) {
	agent := groundAgent(model.Vec3{})
	agent.Velocity = model.Vec3{}
	// secondsSinceJump past the assist window and no modeled jump: pure free fall.
	target := model.SpaceTime{Space: model.Vec3{X: 20, Z: model.BaseAgentZ - 0.5*model.Gravity*4}, Time: 2}
	cc := CalculateCourseCorrection(agent, target, false, 1)

	require.True(t, cc.Feasible)
	assert.InDelta(t, 20, cc.TargetError.Magnitude(), 1e-9)
	assert.InDelta(t, 0, cc.TurnSeconds, 1e-3, "already facing the correction")
	assert.InDelta(t, 2*20/4.0, cc.AverageAccelerationRequired, 0.02)
}

func TestCourseCorrectionModelsFullAssistBeforeContact(t *testing.T) {
	agent := groundAgent(model.Vec3{})
	agent.Velocity = model.Vec3{}
	// Contact lands inside the assist window: 0.2s left, 0.5s of assist.
	const remaining = 0.2
	target := model.SpaceTime{Space: agent.Position, Time: agent.Time + remaining}
	cc := CalculateCourseCorrection(agent, target, false, 0)

	assist := JumpAssistDuration
	post := remaining - assist
	rise := -0.5*(model.Gravity-JumpAssistAccel)*assist*assist +
		assist*(JumpAssistAccel-model.Gravity)*post -
		0.5*model.Gravity*post*post
	assert.InDelta(t, -rise, cc.TargetError.Z, 1e-9)
	assert.InDelta(t, 0, cc.TargetError.Flatten().Magnitude(), 1e-9)
}

func TestAerialViabilityMonotonicInDistance(t *testing.T) {
	agent := groundAgent(model.Vec3{})
	const T = 2.0
	coast := model.Vec3{Z: model.BaseAgentZ - 0.5*model.Gravity*T*T}
	dir := model.Vec3{X: 0.6, Y: 0.8}

	wasViable := true
	prevAccel := -1.0
	for d := 0.0; d < 200; d += 2.5 {
		target := model.SpaceTime{Space: coast.Add(dir.Scale(d)), Time: T}
		cc := CalculateCourseCorrection(agent, target, false, 1)
		viable := IsViableAerial(agent, target, false, 1)
		if viable {
			assert.True(t, wasViable, "aerial became viable again at distance %.1f", d)
		}
		assert.GreaterOrEqual(t, cc.AverageAccelerationRequired, prevAccel)
		prevAccel = cc.AverageAccelerationRequired
		wasViable = viable
	}
	assert.False(t, wasViable, "far targets must end up infeasible")
}

func TestTimeToAirGrowsWithHeight(t *testing.T) {
	assert.Less(t, TimeToAir(5), TimeToAir(10))
	assert.InDelta(t, aerialLiftoffDelay, TimeToAir(model.BaseAgentZ), 1e-9)
}

func TestSecondsForMashJumpHeight(t *testing.T) {
	s, ok := SecondsForMashJumpHeight(MashJumpHeight)
	require.True(t, ok)
	assert.InDelta(t, mashJumpVelocity/model.Gravity, s, 1e-6)

	_, ok = SecondsForMashJumpHeight(MashJumpHeight + 0.1)
	assert.False(t, ok)

	s, ok = SecondsForMashJumpHeight(0)
	require.True(t, ok)
	assert.Zero(t, s)
}

func TestSoonestRejectsNegativeHorizon(t *testing.T) {
	agent := groundAgent(model.Vec3{})
	_, _, err := Soonest(Query{Agent: agent, Plot: plotFor(t, agent), Horizon: -1})
	require.ErrorIs(t, err, ErrNegativeHorizon)
}

func TestSoonestNoOpportunityIsNotAnError(t *testing.T) {
	agent := groundAgent(model.Vec3{})

	_, ok, err := Soonest(Query{Agent: agent, Plot: plotFor(t, agent), Horizon: 5})
	require.NoError(t, err)
	assert.False(t, ok, "empty path")

	// Far away and only half a second to get there.
	far := hoveringPath(model.Vec3{X: 80, Y: 100, Z: model.BallRadius}, 0.5)
	_, ok, err = Soonest(Query{Agent: agent, Path: far, Plot: plotFor(t, agent), Horizon: 5})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSoonestIsMinimumOverStyles(t *testing.T) {
	agent := groundAgent(model.Vec3{Y: -30})
	path := hoveringPath(model.Vec3{Z: model.BallRadius}, 5)
	q := Query{Agent: agent, Path: path, Plot: plotFor(t, agent), Horizon: 5}

	got, ok, err := Soonest(q)
	require.NoError(t, err)
	require.True(t, ok)

	best := math.Inf(1)
	for _, style := range DefaultOrder {
		if in, ok := q.ForStyle(style); ok {
			best = math.Min(best, in.Time)
		}
	}
	assert.Equal(t, best, got.Time)
	assert.NotEqual(t, Aerial, got.Style(), "a ball on the floor is below the aerial band")
	assert.GreaterOrEqual(t, got.SpareTime, 0.0)
}

func TestSoonestTieGoesToFirstStyle(t *testing.T) {
	agent := groundAgent(model.Vec3{Y: -30})
	path := hoveringPath(model.Vec3{Z: model.BallRadius}, 5)
	q := Query{Agent: agent, Path: path, Plot: plotFor(t, agent), Horizon: 5}

	first, ok, err := SoonestAmong(q, FlipHit, FlipHit)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FlipHit, first.Style())

	jump, okJump := q.ForStyle(JumpHit)
	flip, okFlip := q.ForStyle(FlipHit)
	require.True(t, okJump)
	require.True(t, okFlip)
	if jump.Time == flip.Time {
		got, _, _ := SoonestAmong(q, JumpHit, FlipHit)
		assert.Equal(t, JumpHit, got.Style())
		got, _, _ = SoonestAmong(q, FlipHit, JumpHit)
		assert.Equal(t, FlipHit, got.Style())
	}
}

func TestSoonestFindsAerialForHighTarget(t *testing.T) {
	agent := groundAgent(model.Vec3{})
	path := hoveringPath(model.Vec3{Y: 20, Z: 12}, 4)
	q := Query{Agent: agent, Path: path, Plot: plotFor(t, agent), Horizon: 4}

	got, ok, err := Soonest(q)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Aerial, got.Style())
	assert.True(t, IsViableAerial(agent, got.SpaceTime(), true, 0))
	assert.Greater(t, got.Time, 0.0)

	// Without boost there is no way up.
	agent.Boost = 0
	q.Agent = agent
	_, ok, err = Soonest(q)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPredicateFiltersContacts(t *testing.T) {
	agent := groundAgent(model.Vec3{Y: -30})
	path := hoveringPath(model.Vec3{Z: model.BallRadius}, 5)
	never := func(model.AgentState, model.SpaceTime) bool { return false }

	_, ok, err := Soonest(Query{Agent: agent, Path: path, Plot: plotFor(t, agent), Horizon: 5, Predicate: never})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfilesForEveryStyle(t *testing.T) {
	for _, style := range Styles {
		p := ProfileFor(style, model.BallRadius)
		assert.Equal(t, style, p.Style)
		assert.GreaterOrEqual(t, p.StrikeDuration(), 0.0)
		assert.NotPanics(t, func() { p.IsForward() })
		assert.NotPanics(t, func() { p.PostDodgeVelocity(20) })
	}
	assert.Equal(t, DodgeSpeed, ProfileFor(SideHit, 1).PostDodgeVelocity(20).Sideways)
}
