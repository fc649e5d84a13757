// Package assess derives the per-tick Situation: who reaches the target
// first, where it is going and which tactical conditions currently hold.
package assess

import (
	"math"

	"github.com/nstehr/volley/volley-core/intercept"
	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/physics"
)

// MaxAdvantage caps the race result when one side has no contact at all.
const MaxAdvantage = 10.0

// Contact is one agent's soonest intercept.
type Contact struct {
	Agent     model.AgentState
	Intercept intercept.Intercept
}

// Situation is built once per tick and never changed afterwards.
type Situation struct {
	Tick  int
	Time  float64
	World model.World
	Me    model.AgentState
	Team  model.Team
	Path  model.Path
	Plot  physics.DistancePlot

	// Contacts ordered by intercept time, soonest first.
	TeamContacts  []Contact
	RivalContacts []Contact

	ExpectedContact      *intercept.Intercept
	ExpectedRivalContact *intercept.Intercept
	RivalWithInitiative  *model.AgentState

	// Advantage is the rival's contact time minus ours; positive means we
	// get there first.
	Advantage                float64
	OwnGoalFutureProximity   float64
	DistanceTargetIsBehindUs float64
	// RivalApproachError is how far the rival's approach is from lining up a
	// shot on our goal. π when there is no rival contact.
	RivalApproachError float64
	WrongSideOfTarget  float64

	ScoredOnThreat        *model.TargetSlice
	NeedsDefensiveClear   bool
	ShotOnGoalAvailable   bool
	GenerousShotAngle     bool
	GoForKickoff          bool
	KickoffCenter         bool
	HasInitiative         bool
	HasBestShot           bool
	WaitToClear           bool
	ForceDefensivePosture bool
	ThreatExists          bool
	Threat                float64

	ScoreAdvantage int
	GoNuts         bool

	OffWheels             bool
	BehindGoalLine        bool
	ApproachOpposesTarget bool

	WallTouchOpportunity bool
	CatchOpportunity     bool
	CanDribble           bool
	ReallyWantsToDribble bool

	TargetZone model.Zone
	MyZone     model.Zone

	// ActivePlan describes the plan in force when the situation was taken.
	ActivePlan string
}

// ContactSoonerThan reports whether the expected contact is less than
// seconds away.
func (s *Situation) ContactSoonerThan(seconds float64) bool {
	return s.ExpectedContact != nil && s.ExpectedContact.Time-s.Time < seconds
}

// RivalContactBeforeThreat is true when the rival reaches the target before
// it would cross our goal line.
func (s *Situation) RivalContactBeforeThreat() bool {
	return s.ExpectedRivalContact != nil && s.ScoredOnThreat != nil &&
		s.ExpectedRivalContact.Time < s.ScoredOnThreat.Time
}

// Summary is the telemetry view of a Situation.
type Summary struct {
	Tick                int     `json:"tick"`
	Time                float64 `json:"time"`
	Agent               int     `json:"agent"`
	Advantage           float64 `json:"advantage"`
	Threat              float64 `json:"threat"`
	ContactTime         float64 `json:"contactTime,omitempty"`
	ContactStyle        string  `json:"contactStyle,omitempty"`
	ScoredOnThreat      bool    `json:"scoredOnThreat"`
	NeedsDefensiveClear bool    `json:"needsDefensiveClear"`
	ShotOnGoalAvailable bool    `json:"shotOnGoalAvailable"`
	GoForKickoff        bool    `json:"goForKickoff"`
	HasInitiative       bool    `json:"hasInitiative"`
	HasBestShot         bool    `json:"hasBestShot"`
	ScoreAdvantage      int     `json:"scoreAdvantage"`
	ActivePlan          string  `json:"activePlan,omitempty"`
}

func (s *Situation) Summary() Summary {
	sum := Summary{
		Tick:                s.Tick,
		Time:                s.Time,
		Agent:               s.Me.Index,
		Advantage:           s.Advantage,
		Threat:              s.Threat,
		ScoredOnThreat:      s.ScoredOnThreat != nil,
		NeedsDefensiveClear: s.NeedsDefensiveClear,
		ShotOnGoalAvailable: s.ShotOnGoalAvailable,
		GoForKickoff:        s.GoForKickoff,
		HasInitiative:       s.HasInitiative,
		HasBestShot:         s.HasBestShot,
		ScoreAdvantage:      s.ScoreAdvantage,
		ActivePlan:          s.ActivePlan,
	}
	if s.ExpectedContact != nil {
		sum.ContactTime = s.ExpectedContact.Time
		sum.ContactStyle = s.ExpectedContact.Style().String()
	}
	return sum
}

// raceResult is the signed head start of ours over theirs.
func raceResult(ours, theirs *intercept.Intercept) float64 {
	switch {
	case ours == nil && theirs == nil:
		return 0
	case ours == nil:
		return -MaxAdvantage
	case theirs == nil:
		return MaxAdvantage
	}
	return math.Max(-MaxAdvantage, math.Min(MaxAdvantage, theirs.Time-ours.Time))
}
