// Package steps holds the concrete Steps the advisor assembles into Plans,
// and the steering primitives they share.
package steps

import (
	"math"

	"github.com/nstehr/volley/volley-core/intercept"
	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/plan"
	"github.com/nstehr/volley/volley-core/strike"
)

const (
	steerGain        = 3.0
	slideAngle       = 1.8
	boostAngle       = 0.3
	boostMinDistance = 30.0
	arrivalSlack     = 0.05
)

// SteerTowards drives at full throttle toward target on the ground.
func SteerTowards(me model.AgentState, target model.Vec2) plan.Output {
	toTarget := target.Sub(me.Position.Flatten())
	angle := me.Orientation.Nose.Flatten().CorrectionAngle(toTarget)
	return plan.Output{
		Throttle: 1,
		// CorrectionAngle is positive to the left; steer is positive to the right.
		Steer: -angle * steerGain,
		Slide: math.Abs(angle) > slideAngle && me.HasWheelContact,
		Boost: math.Abs(angle) < boostAngle && toTarget.Magnitude() > boostMinDistance && me.HasWheelContact,
	}.Clamped()
}

// Greedy is the fallback when no Plan yields: head for the target's ground
// position without spending boost.
func Greedy(me model.AgentState, target model.Vec3) plan.Output {
	out := SteerTowards(me, target.Flatten())
	out.Boost = false
	return out
}

// ArriveAt drives to position so as to get there at arrival, no earlier.
func ArriveAt(me model.AgentState, position model.Vec2, now, arrival float64) plan.Output {
	out := SteerTowards(me, position)
	remaining := arrival - now
	if remaining <= arrivalSlack {
		return out
	}
	distance := position.Distance(me.Position.Flatten())
	needed := distance / remaining
	speed := me.Velocity.Flatten().Magnitude()
	switch {
	case speed > needed*1.1:
		out.Throttle, out.Boost = 0, false
		if speed > needed*1.5 {
			out.Throttle = -1
		}
	case speed > needed:
		out.Boost = false
	}
	return out
}

// ApproachWaypoint steers to wp, honoring its wait time and facing.
func ApproachWaypoint(me model.AgentState, wp strike.Waypoint, now float64) plan.Output {
	target := wp.Position
	if !wp.AnyFacing && !wp.Facing.IsZero() {
		// Aim a little behind the waypoint along the facing so the agent
		// arrives lined up.
		toWaypoint := wp.Position.Sub(me.Position.Flatten())
		if toWaypoint.Magnitude() > 10 {
			target = wp.Position.Sub(wp.Facing.ScaledToMagnitude(math.Min(10, toWaypoint.Magnitude()/3)))
		}
	}
	if wp.HasWait {
		return ArriveAt(me, target, now, wp.WaitUntil)
	}
	return SteerTowards(me, target)
}

// ParkAt slows to a stop at position facing facing.
func ParkAt(me model.AgentState, position, facing model.Vec2) plan.Output {
	toTarget := position.Sub(me.Position.Flatten())
	distance := toTarget.Magnitude()
	if distance < 3 {
		angle := me.Orientation.Nose.Flatten().CorrectionAngle(facing)
		return plan.Output{Throttle: 0.3, Steer: -angle * steerGain}.Clamped()
	}
	out := SteerTowards(me, position)
	speed := me.Velocity.Flatten().Magnitude()
	if speed > distance*1.5 {
		out.Throttle, out.Boost = -1, false
	}
	return out
}

// FacingError is the turn the agent still needs to face facing.
func FacingError(me model.AgentState, facing model.Vec2) float64 {
	return math.Abs(me.Orientation.Nose.Flatten().CorrectionAngle(facing))
}

// StrikeOutput executes the contact phase of a strike style once the agent
// is in position.
func StrikeOutput(me model.AgentState, in intercept.Intercept, now float64, kick model.Vec2) plan.Output {
	secondsLeft := in.Time - now
	out := SteerTowards(me, in.Space.Flatten())
	profile := in.Profile
	switch profile.Style {
	case intercept.Chip:
		out.Jump = false
	case intercept.Aerial:
		return aerialOutput(me, in, now)
	case intercept.FlipHit, intercept.JumpHit, intercept.DiagonalHit, intercept.SideHit:
		if secondsLeft <= profile.StrikeDuration() {
			out.Jump = true
			if secondsLeft <= profile.DodgeSeconds {
				dodgeDir := kick
				if dodgeDir.IsZero() {
					dodgeDir = in.Space.Flatten().Sub(me.Position.Flatten())
				}
				angle := me.Orientation.Nose.Flatten().CorrectionAngle(dodgeDir)
				out.Pitch = -math.Cos(angle)
				out.Yaw = -math.Sin(angle)
			}
		}
	}
	return out.Clamped()
}

// aerialOutput points the nose along the course correction and boosts
// while the required acceleration is viable.
func aerialOutput(me model.AgentState, in intercept.Intercept, now float64) plan.Output {
	if me.HasWheelContact {
		return plan.Output{Jump: true, Boost: true, Pitch: 1}
	}
	cc := intercept.CalculateCourseCorrection(me, in.SpaceTime(), false, 0)
	local := toLocal(me.Orientation, cc.Direction)
	return plan.Output{
		Pitch: local.Z * steerGain,
		Yaw:   -local.Y * steerGain,
		Boost: cc.Feasible && local.X > 0.7,
	}.Clamped()
}

// toLocal expresses a world direction in the agent frame (nose, left, roof).
func toLocal(o model.Orientation, v model.Vec3) model.Vec3 {
	left := o.Roof.Cross(o.Nose)
	return model.Vec3{X: v.Dot(o.Nose), Y: v.Dot(left), Z: v.Dot(o.Roof)}
}

// RecoverOutput rights the agent in the air so it lands on its wheels.
func RecoverOutput(me model.AgentState, facing model.Vec2) plan.Output {
	o := me.Orientation
	rollError := o.Right.Z
	pitchError := o.Nose.Z
	out := plan.Output{
		Roll:     rollError * steerGain,
		Pitch:    -pitchError * steerGain,
		Throttle: 1,
	}
	if !facing.IsZero() {
		out.Yaw = -o.Nose.Flatten().CorrectionAngle(facing)
	}
	return out.Clamped()
}
