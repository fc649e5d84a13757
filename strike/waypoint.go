package strike

import (
	"github.com/nstehr/volley/volley-core/intercept"
	"github.com/nstehr/volley/volley-core/model"
)

// Waypoint is where, facing which way and when the agent should be just
// before it commits to a strike.
type Waypoint struct {
	Position model.Vec2
	// Facing is the required heading. It is meaningless when AnyFacing is set.
	Facing       model.Vec2
	AnyFacing    bool
	ExpectedTime float64
	// WaitUntil is the earliest arrival time; only set when HasWait is true.
	WaitUntil float64
	HasWait   bool
}

// DirectedKickPlan is a chosen intercept plus the geometry to execute it.
type DirectedKickPlan struct {
	Intercept             intercept.Intercept
	Path                  model.Path
	InterceptModifier     model.Vec3
	PlannedKickForce      model.Vec3
	DesiredTargetVelocity model.Vec3
	Waypoint              Waypoint
	EasyKickAllowed       bool
}

// AngleOfKickFromApproach is the turn between the agent's line to the contact
// point and the planned force.
func (p DirectedKickPlan) AngleOfKickFromApproach(agent model.AgentState) float64 {
	toIntercept := p.Intercept.Space.Sub(agent.Position).Flatten()
	return toIntercept.CorrectionAngle(p.PlannedKickForce.Flatten())
}

// standardWaypoint times the launch with a bias toward hurrying and only asks
// the agent to wait when the intercept has slack.
func standardWaypoint(position, facing model.Vec2, in intercept.Intercept) Waypoint {
	moment := in.Time - in.Profile.StrikeDuration()
	return Waypoint{
		Position:     position,
		Facing:       facing,
		ExpectedTime: moment,
		WaitUntil:    moment,
		HasWait:      in.SpareTime > 0,
	}
}
