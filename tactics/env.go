package tactics

import (
	"github.com/nstehr/volley/volley-core/assess"
	"github.com/nstehr/volley/volley-core/plan"
)

// Env wraps the Situation and the active Plan and exposes the helpers
// urgency conditions call.
type Env struct {
	S      *assess.Situation
	Active *plan.Plan
}

// CanInterrupt reports whether a plan of the named posture may replace the
// active one. Unknown names never interrupt.
func (e Env) CanInterrupt(posture string) bool {
	p, err := plan.ParsePosture(posture)
	if err != nil {
		return false
	}
	return p.CanInterrupt(e.Active)
}

func (e Env) GoForKickoff() bool          { return e.S.GoForKickoff }
func (e Env) KickoffCenter() bool         { return e.S.KickoffCenter }
func (e Env) OffWheels() bool             { return e.S.OffWheels }
func (e Env) BehindGoalLine() bool        { return e.S.BehindGoalLine }
func (e Env) ScoredOnThreat() bool        { return e.S.ScoredOnThreat != nil }
func (e Env) GoNuts() bool                { return e.S.GoNuts }
func (e Env) WaitToClear() bool           { return e.S.WaitToClear }
func (e Env) ForceDefensivePosture() bool { return e.S.ForceDefensivePosture }
func (e Env) NeedsDefensiveClear() bool   { return e.S.NeedsDefensiveClear }
func (e Env) HasInitiative() bool         { return e.S.HasInitiative }
func (e Env) HasBestShot() bool           { return e.S.HasBestShot }
func (e Env) ShotOnGoalAvailable() bool   { return e.S.ShotOnGoalAvailable }
func (e Env) ThreatExists() bool          { return e.S.ThreatExists }
func (e Env) Threat() float64             { return e.S.Threat }
func (e Env) Advantage() float64          { return e.S.Advantage }
func (e Env) TargetBehindUs() float64     { return e.S.DistanceTargetIsBehindUs }
func (e Env) CanDribble() bool            { return e.S.CanDribble }
func (e Env) Boost() float64              { return e.S.Me.Boost }

// ContactWithin is true when our expected contact is less than seconds away.
func (e Env) ContactWithin(seconds float64) bool { return e.S.ContactSoonerThan(seconds) }

// RivalContactBeforeThreat is true when the rival touches the target before
// it would cross our goal line.
func (e Env) RivalContactBeforeThreat() bool { return e.S.RivalContactBeforeThreat() }

// ApproachOpposesTarget is true when driving to our contact means meeting
// the target head on.
func (e Env) ApproachOpposesTarget() bool {
	return e.S.ExpectedContact != nil && e.S.ApproachOpposesTarget
}
