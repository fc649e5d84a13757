package intercept

import (
	"fmt"
	"math"

	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/physics"
)

// ErrNegativeHorizon is returned for a search asked to look backwards.
var ErrNegativeHorizon = physics.ErrNegativeHorizon

// DefaultOrder is the evaluation order of the soonest-intercept search.
// Ties on time go to the style evaluated first.
var DefaultOrder = []Style{Aerial, JumpHit, FlipHit}

// Intercept is one feasible opportunity to strike the target.
type Intercept struct {
	Time      float64           // moment of contact
	Target    model.TargetSlice // the target at Time
	Space     model.Vec3        // where the agent must be at Time
	Profile   StrikeProfile
	SpareTime float64 // slack between earliest feasible arrival and Time
	// AccelSlice is the ground motion reached when the strike begins.
	AccelSlice physics.Motion
	// AirBoost is the boost the strike itself consumes.
	AirBoost float64
	Plot     physics.DistancePlot
}

func (i Intercept) Style() Style { return i.Profile.Style }

// SpaceTime is where and when the agent meets the target.
func (i Intercept) SpaceTime() model.SpaceTime { return model.SpaceTime{Space: i.Space, Time: i.Time} }

// Predicate filters candidate contact points, e.g. to require a side of the target.
type Predicate func(agent model.AgentState, st model.SpaceTime) bool

// AnyContact accepts every contact point.
func AnyContact(model.AgentState, model.SpaceTime) bool { return true }

// Query is one search for intercepts. The evaluator never mutates it.
type Query struct {
	Agent model.AgentState
	Path  model.Path
	Plot  physics.DistancePlot
	// Modifier offsets the contact point from the target center.
	Modifier  model.Vec3
	Predicate Predicate
	// Horizon bounds how far past Agent.Time the search looks.
	Horizon float64
}

// Soonest searches DefaultOrder and returns the earliest feasible intercept.
func Soonest(q Query) (Intercept, bool, error) {
	return SoonestAmong(q, DefaultOrder...)
}

// SoonestAmong searches styles in order and keeps the strictly earliest.
func SoonestAmong(q Query, styles ...Style) (Intercept, bool, error) {
	if q.Horizon < 0 {
		return Intercept{}, false, fmt.Errorf("intercept search over %.2fs: %w", q.Horizon, ErrNegativeHorizon)
	}
	var (
		best  Intercept
		found bool
	)
	for _, style := range styles {
		cand, ok := q.ForStyle(style)
		if !ok {
			continue
		}
		if !found || cand.Time < best.Time {
			best, found = cand, true
		}
	}
	return best, found, nil
}

// ForStyle returns the first slice of the path that style can reach.
func (q Query) ForStyle(style Style) (Intercept, bool) {
	if q.Plot == nil {
		return Intercept{}, false
	}
	switch style {
	case Aerial:
		if q.Agent.Boost < BoostNeededForAerial {
			return Intercept{}, false
		}
		return q.search(style, func(st model.SpaceTime) bool {
			return st.Space.Z >= NeedsAerialThreshold && IsVerticallyAccessible(q.Agent, st)
		})
	case JumpHit:
		return q.search(style, func(st model.SpaceTime) bool { return IsJumpHitAccessible(q.Agent, st) })
	case FlipHit:
		return q.search(style, func(st model.SpaceTime) bool { return IsFlipHitAccessible(st.Space.Z) })
	case DiagonalHit, SideHit:
		return q.search(style, func(st model.SpaceTime) bool {
			return st.Space.Z <= MashJumpHeight && jumpLaunchCountdown(st.Space.Z, st.Time-q.Agent.Time) >= launchCountdownSlack
		})
	case Chip:
		return q.search(style, func(st model.SpaceTime) bool { return IsChipAccessible(st.Space.Z) })
	}
	panic(fmt.Sprintf("unhandled strike style %v", style))
}

func (q Query) search(style Style, accessible func(model.SpaceTime) bool) (Intercept, bool) {
	pred := q.Predicate
	if pred == nil {
		pred = AnyContact
	}
	for _, slice := range q.Path {
		dt := slice.Time - q.Agent.Time
		if dt < 0 {
			continue
		}
		if dt > q.Horizon {
			break
		}
		st := model.SpaceTime{Space: slice.Position.Add(q.Modifier), Time: slice.Time}
		if !pred(q.Agent, st) || !accessible(st) {
			continue
		}
		profile := ProfileFor(style, st.Space.Z)
		var (
			in Intercept
			ok bool
		)
		if style == Aerial {
			in, ok = q.aerialIntercept(slice, st, profile)
		} else {
			in, ok = q.groundIntercept(slice, st, profile)
		}
		if ok {
			return in, true
		}
	}
	return Intercept{}, false
}

// groundIntercept compares the reachable distance against the distance to
// the contact point, counting the ground covered during the strike itself.
func (q Query) groundIntercept(slice model.TargetSlice, st model.SpaceTime, profile StrikeProfile) (Intercept, bool) {
	dt := st.Time - q.Agent.Time
	groundSeconds := dt - profile.StrikeDuration()
	if groundSeconds < 0 {
		return Intercept{}, false
	}
	distance := q.Agent.Position.Flatten().Distance(st.Space.Flatten())
	motion := q.Plot.MotionAt(groundSeconds)
	travel := strikeTravel(profile, motion.Speed)
	if motion.Distance+travel < distance {
		return Intercept{}, false
	}
	spare := 0.0
	if arrival, ok := q.Plot.TimeAt(math.Max(0, distance-travel)); ok {
		spare = math.Max(0, groundSeconds-arrival)
	}
	return Intercept{
		Time:       st.Time,
		Target:     slice,
		Space:      st.Space,
		Profile:    profile,
		SpareTime:  spare,
		AccelSlice: motion,
		Plot:       q.Plot,
	}, true
}

func (q Query) aerialIntercept(slice model.TargetSlice, st model.SpaceTime, profile StrikeProfile) (Intercept, bool) {
	cc := CalculateCourseCorrection(q.Agent, st, q.Agent.HasWheelContact, 0)
	if !cc.Feasible || !AccelerationIsViable(cc.AverageAccelerationRequired) {
		return Intercept{}, false
	}
	dt := st.Time - q.Agent.Time
	boostSeconds := dt - cc.TurnSeconds
	return Intercept{
		Time:       st.Time,
		Target:     slice,
		Space:      st.Space,
		Profile:    profile,
		SpareTime:  math.Max(0, dt-AerialTimeNeeded(cc)),
		AccelSlice: q.Plot.MotionAt(math.Max(0, dt-profile.StrikeDuration())),
		AirBoost:   cc.AverageAccelerationRequired / BoostAccelInAir * physics.BoostPerSecond * boostSeconds,
		Plot:       q.Plot,
	}, true
}

// strikeTravel is the ground covered between leaving the floor and contact.
func strikeTravel(profile StrikeProfile, speed float64) float64 {
	return profile.HangTime*speed + profile.DodgeSeconds*math.Min(physics.MaxSpeed, speed+profile.SpeedBoost)
}
