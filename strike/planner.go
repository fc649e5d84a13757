// Package strike turns a feasible intercept into the geometry of a directed
// kick: the force to apply, the waypoint to launch from and when to be there.
package strike

import (
	"fmt"
	"math"

	"github.com/nstehr/volley/volley-core/intercept"
	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/physics"
)

// Geometry constants of the planner.
const (
	BallVelocityInfluence = 0.2
	ChipBaseOffset        = 3.4
	ChipSpacingPerRadian  = 6.0
	agentStrikeRadius     = 1.5
	maxDeflectionError    = math.Pi * 0.45
	frontCornerLimit      = math.Pi * 0.45
	lazyApproachLimit     = math.Pi / 4
	approachTurnRadius    = 10.0
)

// KickStrategy picks the direction the target should leave the contact in.
type KickStrategy interface {
	// KickDirection returns the desired outgoing direction for a contact at
	// contact. easyKick, when non-nil, is the outcome of simply driving
	// through the target; returning it unchanged in X and Y accepts it.
	// The bool is false when the strategy does not want this kick.
	KickDirection(agent model.AgentState, contact model.Vec3, easyKick *model.Vec3) (model.Vec3, bool)
}

// ChipOffset is how far behind the target a chip launches for a given
// turn between the approach and the kick force.
func ChipOffset(approachToForce float64) float64 {
	return ChipBaseOffset + math.Abs(approachToForce)*ChipSpacingPerRadian
}

// PlanKick builds a DirectedKickPlan for in. The bool is false when the
// strategy rejects the kick or the style has no workable geometry. An error
// means the strategy returned a zero-length direction.
func PlanKick(in intercept.Intercept, path model.Path, agent model.AgentState, strategy KickStrategy) (DirectedKickPlan, bool, error) {
	secondsTillIntercept := in.Time - agent.Time
	if secondsTillIntercept <= 0 {
		return DirectedKickPlan{}, false, nil
	}
	target := in.Target
	flatPosition := agent.Position.Flatten()
	toIntercept := in.Space.Flatten().Sub(flatPosition)
	distanceToIntercept := toIntercept.Magnitude()
	averageSpeedNeeded := distanceToIntercept / secondsTillIntercept
	currentSpeed := agent.Velocity.Flatten().Magnitude()

	anticipatedSpeed := in.AccelSlice.Speed
	if in.SpareTime > 0 {
		anticipatedSpeed = math.Max(currentSpeed, averageSpeedNeeded)
	}
	closenessRatio := math.Max(1, 1/secondsTillIntercept)
	arrivalSpeed := closenessRatio*currentSpeed + (1-closenessRatio)*anticipatedSpeed

	impactSpeed := intercept.DodgeSpeed
	if in.Style() != intercept.SideHit {
		impactSpeed = math.Max(intercept.DodgeSpeed, arrivalSpeed)
	}

	var (
		kickForce       model.Vec3
		desiredVelocity model.Vec3
		easyKickAllowed bool
	)
	if in.Profile.IsForward() {
		easyForce := target.Position.Sub(agent.Position).ScaledToMagnitude(impactSpeed)
		easyKick := bump(target.Velocity, easyForce)
		dir, ok := strategy.KickDirection(agent, target.Position, &easyKick)
		if !ok {
			return DirectedKickPlan{}, false, nil
		}
		if dir.X == easyKick.X && dir.Y == easyKick.Y {
			easyKickAllowed = true
			kickForce = easyForce
			desiredVelocity = easyKick
		}
	}
	if !easyKickAllowed {
		dir, ok := strategy.KickDirection(agent, target.Position, nil)
		if !ok {
			return DirectedKickPlan{}, false, nil
		}
		unit, err := dir.Direction()
		if err != nil {
			return DirectedKickPlan{}, false, fmt.Errorf("kick direction at %.2fs: %w", in.Time, err)
		}
		transverse := target.Velocity.Flatten().Project(dir.Flatten().Orthogonal())
		desiredVelocity = unit.Scale(impactSpeed * 2)
		kickForce = model.Vec3{
			X: desiredVelocity.X - transverse.X*BallVelocityInfluence,
			Y: desiredVelocity.Y - transverse.Y*BallVelocityInfluence,
			Z: desiredVelocity.Z,
		}
	}

	g := geometry{
		in:                  in,
		agent:               agent,
		flatPosition:        flatPosition,
		flatForce:           kickForce.Flatten(),
		toIntercept:         toIntercept,
		distanceToIntercept: distanceToIntercept,
		averageSpeedNeeded:  averageSpeedNeeded,
		arrivalSpeed:        arrivalSpeed,
	}
	g.toKickForce = toIntercept.Normalized().CorrectionAngle(g.flatForce)
	approach := EstimateApproachVector(flatPosition, agent.Orientation.Nose.Flatten(), in.Space.Flatten())
	g.approachToForce = approach.CorrectionAngle(g.flatForce)

	wp, ok := g.waypoint()
	if !ok {
		return DirectedKickPlan{}, false, nil
	}
	return DirectedKickPlan{
		Intercept:             in,
		Path:                  path,
		InterceptModifier:     in.Space.Sub(target.Position),
		PlannedKickForce:      kickForce,
		DesiredTargetVelocity: desiredVelocity,
		Waypoint:              wp,
		EasyKickAllowed:       easyKickAllowed,
	}, true, nil
}

type geometry struct {
	in                  intercept.Intercept
	agent               model.AgentState
	flatPosition        model.Vec2
	flatForce           model.Vec2
	toIntercept         model.Vec2
	distanceToIntercept float64
	averageSpeedNeeded  float64
	arrivalSpeed        float64
	toKickForce         float64
	approachToForce     float64
}

func (g geometry) waypoint() (Waypoint, bool) {
	in := g.in
	profile := in.Profile
	contact := in.Space.Flatten()
	switch profile.Style {
	case intercept.Chip:
		launch := in.Target.Position.Flatten().Sub(g.flatForce.ScaledToMagnitude(ChipOffset(g.approachToForce)))
		return standardWaypoint(launch, g.toIntercept.Normalized(), in), true
	case intercept.DiagonalHit:
		return g.angledWaypoint()
	case intercept.SideHit:
		if math.Abs(g.toKickForce) < frontCornerLimit {
			return g.angledWaypoint()
		}
		facing := g.flatForce.Rotate(-signum(g.toKickForce) * math.Pi / 2).Normalized()
		backoff := profile.StrikeDuration() * g.arrivalSpeed
		launch := contact.Sub(g.flatForce.ScaledToMagnitude(2)).Sub(facing.ScaledToMagnitude(backoff))
		return standardWaypoint(launch, facing, in), true
	case intercept.FlipHit, intercept.JumpHit:
		postDodge := math.Min(physics.MaxSpeed, g.arrivalSpeed+profile.SpeedBoost)
		travel := profile.HangTime*g.arrivalSpeed + profile.DodgeSeconds*postDodge
		launch := contact.Sub(g.flatForce.ScaledToMagnitude(travel))
		return standardWaypoint(launch, g.flatForce.Normalized(), in), true
	case intercept.Aerial:
		ideal := g.flatForce.ScaledToMagnitude(profile.StrikeDuration() * g.averageSpeedNeeded)
		lazy := ideal.RotateTowards(g.toIntercept, lazyApproachLimit)
		lazyDistance := lazy.Magnitude()
		if lazyDistance > g.distanceToIntercept && g.distanceToIntercept/lazyDistance > 0.8 {
			lazy = lazy.Scale(g.distanceToIntercept / lazyDistance)
		}
		moment := math.Max(in.Time-profile.StrikeDuration(), g.agent.Time)
		return Waypoint{
			Position:     contact.Sub(lazy),
			Facing:       lazy.Normalized(),
			ExpectedTime: moment,
			WaitUntil:    moment,
			HasWait:      in.SpareTime > 0,
		}, true
	}
	panic(fmt.Sprintf("unhandled strike style %v", profile.Style))
}

// angledWaypoint places the hop so that the sideways dodge deflects the
// agent onto the kick line at contact.
func (g geometry) angledWaypoint() (Waypoint, bool) {
	in := g.in
	profile := in.Profile
	agentAtContact := in.Target.Position.Flatten().Sub(g.flatForce.ScaledToMagnitude(agentStrikeRadius + model.BallRadius))
	postDodge := profile.PostDodgeVelocity(g.arrivalSpeed)
	deflection := math.Atan2(postDodge.Sideways, postDodge.Forward) * signum(g.approachToForce)
	if math.Abs(g.approachToForce-deflection) > maxDeflectionError {
		return Waypoint{}, false
	}
	dodgeTravel := profile.DodgeSeconds * postDodge.Speed()
	dodge, ok := dodgePosition(g.flatPosition, agentAtContact, deflection, dodgeTravel)
	if !ok {
		return Waypoint{}, false
	}
	hop := g.flatPosition.Sub(dodge).ScaledToMagnitude(profile.HangTime * g.arrivalSpeed)
	moment := in.Time - profile.StrikeDuration()
	return Waypoint{
		Position:     dodge.Add(hop),
		AnyFacing:    true,
		ExpectedTime: moment,
		WaitUntil:    moment,
		HasWait:      in.SpareTime > 0,
	}, true
}

// dodgePosition solves for where the dodge must start so that travelling
// dodgeTravel at the deflected heading ends at agentAtContact.
func dodgePosition(position, agentAtContact model.Vec2, deflection, dodgeTravel float64) (model.Vec2, bool) {
	toContact := agentAtContact.Sub(position)
	tri, ok := SideSideAngle(toContact.Magnitude(), dodgeTravel, math.Pi-math.Abs(deflection))
	if !ok {
		return model.Vec2{}, false
	}
	sideAAngle := math.Atan2(toContact.Y, toContact.X)
	// TODO: the sign applied to AngleB looks inverted against the deflection
	// convention; confirm on a replay before changing it.
	sideBAngle := sideAAngle + tri.AngleB*signum(-deflection)
	toDodge := model.Vec2{X: math.Cos(sideBAngle), Y: math.Sin(sideBAngle)}.Scale(tri.SideC)
	return position.Add(toDodge), true
}

// EstimateApproachVector is the direction the agent will be travelling when
// it reaches target, allowing for the turn it has to make from facing.
func EstimateApproachVector(position, facing, target model.Vec2) model.Vec2 {
	toTarget := target.Sub(position)
	if facing.IsZero() {
		return toTarget.Normalized()
	}
	pivot := position.Add(facing.ScaledToMagnitude(approachTurnRadius))
	approach := target.Sub(pivot)
	if approach.IsZero() || toTarget.Magnitude() <= approachTurnRadius {
		return toTarget.Normalized()
	}
	return approach.Normalized()
}

// bump models the target rebounding off a moving wall.
func bump(incident, wallVelocity model.Vec3) model.Vec3 {
	return reflect(incident.Sub(wallVelocity), wallVelocity).Add(wallVelocity)
}

func reflect(incident, normal model.Vec3) model.Vec3 {
	n := normal.Normalized()
	return incident.Sub(n.Scale(2 * incident.Dot(n)))
}

func signum(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
