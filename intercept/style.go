// Package intercept decides when and how an agent can reach the target: the
// per-style strike profiles, the aerial course corrector and the feasibility
// search over a predicted path.
package intercept

import (
	"fmt"
	"math"

	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/physics"
)

// Style is the closed set of strike techniques.
type Style int

const (
	Chip Style = iota
	DiagonalHit
	SideHit
	FlipHit
	JumpHit
	Aerial
)

// Styles lists every style in declaration order.
var Styles = []Style{Chip, DiagonalHit, SideHit, FlipHit, JumpHit, Aerial}

func (s Style) String() string {
	switch s {
	case Chip:
		return "chip"
	case DiagonalHit:
		return "diagonal_hit"
	case SideHit:
		return "side_hit"
	case FlipHit:
		return "flip_hit"
	case JumpHit:
		return "jump_hit"
	case Aerial:
		return "aerial"
	}
	return fmt.Sprintf("style(%d)", int(s))
}

// Maneuver constants shared by the profiles and the accessibility checks.
const (
	DodgeSpeed            = 10.0
	MashJumpHeight        = 4.6
	NeedsAerialThreshold  = MashJumpHeight
	MaxJumpHit            = NeedsAerialThreshold
	NeedsJumpHitThreshold = 3.6
	MaxFlipHit            = NeedsJumpHitThreshold
	MaxChipHeight         = model.BallRadius + 0.5
	BoostNeededForAerial  = 20.0
	aerialRiseRate        = 8.0
	launchCountdownSlack  = -0.1
)

// StrikeProfile holds the kinematic constants of one strike style.
type StrikeProfile struct {
	HangTime     float64 // airborne seconds before the dodge or contact
	SpeedBoost   float64 // speed added by the dodge
	DodgeSeconds float64 // seconds from dodge to contact
	Style        Style
}

// StrikeDuration is the time from leaving the ground to contact.
func (p StrikeProfile) StrikeDuration() float64 { return p.HangTime + p.DodgeSeconds }

// IsForward reports whether the strike drives the target along the agent's
// direction of travel.
func (p StrikeProfile) IsForward() bool {
	switch p.Style {
	case Chip, FlipHit, JumpHit, Aerial:
		return true
	case DiagonalHit, SideHit:
		return false
	}
	panic(fmt.Sprintf("unhandled strike style %v", p.Style))
}

// PostDodgeVelocity splits the agent's velocity after the dodge into the
// component along the approach and the sideways kick.
type PostDodgeVelocity struct {
	Forward  float64
	Sideways float64
}

func (v PostDodgeVelocity) Speed() float64 { return math.Hypot(v.Forward, v.Sideways) }

func (p StrikeProfile) PostDodgeVelocity(arrivalSpeed float64) PostDodgeVelocity {
	switch p.Style {
	case SideHit:
		return PostDodgeVelocity{Forward: arrivalSpeed, Sideways: DodgeSpeed}
	case DiagonalHit:
		return PostDodgeVelocity{
			Forward:  math.Min(physics.MaxSpeed, arrivalSpeed+DodgeSpeed*math.Cos(math.Pi/4)),
			Sideways: DodgeSpeed * math.Sin(math.Pi/4),
		}
	case Chip, FlipHit, JumpHit, Aerial:
		return PostDodgeVelocity{Forward: math.Min(physics.MaxSpeed, arrivalSpeed+p.SpeedBoost)}
	}
	panic(fmt.Sprintf("unhandled strike style %v", p.Style))
}

// ProfileFor returns the profile of style for a contact at height.
func ProfileFor(style Style, height float64) StrikeProfile {
	switch style {
	case Chip:
		return StrikeProfile{Style: Chip}
	case DiagonalHit:
		return StrikeProfile{HangTime: jumpSeconds(height), SpeedBoost: DodgeSpeed, DodgeSeconds: .25, Style: DiagonalHit}
	case SideHit:
		return StrikeProfile{HangTime: jumpSeconds(height), SpeedBoost: DodgeSpeed, DodgeSeconds: .25, Style: SideHit}
	case FlipHit:
		return StrikeProfile{HangTime: 0, SpeedBoost: 10, DodgeSeconds: .4, Style: FlipHit}
	case JumpHit:
		return StrikeProfile{HangTime: jumpSeconds(height), SpeedBoost: 10, DodgeSeconds: .15, Style: JumpHit}
	case Aerial:
		return StrikeProfile{HangTime: TimeToAir(height), Style: Aerial}
	}
	panic(fmt.Sprintf("unhandled strike style %v", style))
}

func jumpSeconds(height float64) float64 {
	s, ok := SecondsForMashJumpHeight(height)
	if !ok {
		return 0
	}
	return s
}

// mashJumpVelocity gives an apex of exactly MashJumpHeight.
var mashJumpVelocity = math.Sqrt(2 * model.Gravity * (MashJumpHeight - model.BaseAgentZ))

// SecondsForMashJumpHeight is the rising time of a held jump to reach height.
// The bool is false when height is above the jump's apex.
func SecondsForMashJumpHeight(height float64) (float64, bool) {
	if height > MashJumpHeight {
		return 0, false
	}
	rise := height - model.BaseAgentZ
	if rise <= 0 {
		return 0, true
	}
	disc := mashJumpVelocity*mashJumpVelocity - 2*model.Gravity*rise
	return (mashJumpVelocity - math.Sqrt(math.Max(0, disc))) / model.Gravity, true
}

// IsVerticallyAccessible reports whether a contact at st can still be reached
// in time by a jump or, with enough boost, an aerial.
func IsVerticallyAccessible(agent model.AgentState, st model.SpaceTime) bool {
	secondsTillIntercept := st.Time - agent.Time
	if st.Space.Z < NeedsAerialThreshold {
		return jumpLaunchCountdown(st.Space.Z, secondsTillIntercept) >= launchCountdownSlack
	}
	if agent.Boost > BoostNeededForAerial {
		return aerialLaunchCountdown(st.Space.Z, secondsTillIntercept) >= launchCountdownSlack
	}
	return false
}

func IsJumpHitAccessible(agent model.AgentState, st model.SpaceTime) bool {
	if st.Space.Z > MaxJumpHit {
		return false
	}
	return jumpLaunchCountdown(st.Space.Z, st.Time-agent.Time) >= launchCountdownSlack
}

func IsFlipHitAccessible(height float64) bool { return height <= MaxFlipHit }

func IsChipAccessible(height float64) bool { return height <= MaxChipHeight }

func aerialLaunchCountdown(height, secondsTillIntercept float64) float64 {
	return secondsTillIntercept - (height-model.BaseAgentZ)/aerialRiseRate
}

func jumpLaunchCountdown(height, secondsTillIntercept float64) float64 {
	s, ok := SecondsForMashJumpHeight(height)
	if !ok {
		s = math.MaxFloat64
	}
	return secondsTillIntercept - s
}

// BoostBudget is what the agent may spend on the ground and still afford an aerial.
func BoostBudget(agent model.AgentState) float64 {
	return agent.Boost - BoostNeededForAerial - 5
}
