package intercept

import (
	"math"

	"github.com/nstehr/volley/volley-core/model"
)

// Aerial constants. The acceleration threshold keeps headroom for steering
// and is tuned rather than derived.
const (
	JumpAssistDuration   = 0.5
	JumpAssistAccel      = 12.0
	BoostAccelInAir      = 19.8
	AccelNeededThreshold = 0.9
	TurnEfficiency       = 0.85
	AerialAngularAccel   = 9.0
	typicalUpwardAccel   = 2.5
	aerialJumpVelocity   = 12.0
	minimumJumpHeight    = 2.0
	aerialLiftoffDelay   = 0.3
	aerialInitialUpSpeed = 7.0
)

// CourseCorrection is the boost plan that turns the agent's coasting
// trajectory into arrival at a target point.
type CourseCorrection struct {
	// TargetError is the displacement from where the agent would coast to
	// the target.
	TargetError model.Vec3
	// Direction is the unit boost direction.
	Direction model.Vec3
	// TurnSeconds is the time to rotate onto Direction.
	TurnSeconds float64
	// AverageAccelerationRequired is the boost acceleration needed once aligned.
	// It is +Inf when Feasible is false.
	AverageAccelerationRequired float64
	// Feasible is false when the turn alone uses up the time remaining.
	Feasible bool
}

// CalculateCourseCorrection models an optional jump, a decaying jump assist
// and free fall, then measures how far off that trajectory the target is.
func CalculateCourseCorrection(agent model.AgentState, target model.SpaceTime, modelJump bool, secondsSinceJump float64) CourseCorrection {
	position := agent.Position
	velocity := agent.Velocity
	secondsRemaining := target.Time - agent.Time

	if modelJump {
		velocity = velocity.Add(agent.Orientation.Roof.Scale(aerialJumpVelocity))
		position = position.Add(agent.Orientation.Roof.Scale(minimumJumpHeight))
	}

	// The assist is modeled in full even when contact comes first; the
	// free-fall term then runs backwards over the overshoot.
	assistSeconds := math.Max(0, JumpAssistDuration-secondsSinceJump)

	afterAssist := position.Add(velocity.Scale(assistSeconds)).
		Sub(model.Up.Scale(0.5 * (model.Gravity - JumpAssistAccel) * assistSeconds * assistSeconds))
	velocityAfterAssist := velocity.Add(model.Up.Scale(assistSeconds * (JumpAssistAccel - model.Gravity)))

	postAssistSeconds := secondsRemaining - assistSeconds
	expected := afterAssist.Add(velocityAfterAssist.Scale(postAssistSeconds)).
		Sub(model.Up.Scale(0.5 * model.Gravity * postAssistSeconds * postAssistSeconds))

	targetError := target.Space.Sub(expected)
	errorDistance := targetError.Magnitude()

	cc := CourseCorrection{TargetError: targetError}
	if errorDistance == 0 {
		cc.Direction = agent.Orientation.Nose
	} else {
		cc.Direction = targetError.Scale(1 / errorDistance)
		angle := agent.Orientation.Matrix().AngleTo(model.LookingTo(cc.Direction, agent.Orientation.Roof))
		cc.TurnSeconds = TurnEfficiency * (2 * math.Sqrt(angle/AerialAngularAccel))
	}

	boostSeconds := secondsRemaining - cc.TurnSeconds
	if boostSeconds <= 0 {
		cc.AverageAccelerationRequired = math.Inf(1)
		return cc
	}
	cc.Feasible = true
	cc.AverageAccelerationRequired = 2 * errorDistance / (boostSeconds * boostSeconds)
	return cc
}

// AccelerationIsViable is the aerial gate: non-negative and strictly below
// the threshold fraction of full boost.
func AccelerationIsViable(accel float64) bool {
	return accel >= 0 && accel < AccelNeededThreshold*BoostAccelInAir
}

// IsViableAerial reports whether the agent can boost to target in time.
func IsViableAerial(agent model.AgentState, target model.SpaceTime, modelJump bool, secondsSinceJump float64) bool {
	cc := CalculateCourseCorrection(agent, target, modelJump, secondsSinceJump)
	return cc.Feasible && AccelerationIsViable(cc.AverageAccelerationRequired)
}

// AerialTimeNeeded is the shortest time to close the correction at the
// threshold acceleration, including the turn.
func AerialTimeNeeded(cc CourseCorrection) float64 {
	return cc.TurnSeconds + math.Sqrt(2*cc.TargetError.Magnitude()/(AccelNeededThreshold*BoostAccelInAir))
}

// TimeToAir estimates the seconds from liftoff to reaching height on a typical aerial.
func TimeToAir(height float64) float64 {
	a := typicalUpwardAccel
	b := aerialInitialUpSpeed
	c := -(height - model.BaseAgentZ)
	return (-b+math.Sqrt(b*b-4*a*c))/(2*a) + aerialLiftoffDelay
}
