package steps

import (
	"log/slog"
	"sort"

	"github.com/nstehr/volley/volley-core/assess"
	"github.com/nstehr/volley/volley-core/intercept"
	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/plan"
	"github.com/nstehr/volley/volley-core/strike"
)

// DefaultDivergenceTolerance is how far the live path may drift from the
// committed contact before a strike step gives up.
const DefaultDivergenceTolerance = 10.0

// KickStyles is the candidate order for directed kicks. On equal times the
// earlier style wins.
var KickStyles = []intercept.Style{
	intercept.Aerial,
	intercept.JumpHit,
	intercept.FlipHit,
	intercept.DiagonalHit,
	intercept.SideHit,
	intercept.Chip,
}

// commitment tracks what a strike step locked onto on its first tick.
type commitment struct {
	tolerance     float64
	first         *intercept.Intercept
	originalTouch *model.Touch
	touchSeen     bool
}

// stale reports whether the target was touched by someone since the step
// started, or the live path no longer passes near the committed contact.
func (c *commitment) stale(s *assess.Situation, current intercept.Intercept) bool {
	touch := s.World.Ball.LatestTouch
	if !c.touchSeen {
		c.originalTouch, c.touchSeen = touch, true
	} else if !model.SameTouch(c.originalTouch, touch) {
		return true
	}
	if c.first == nil {
		c.first = &current
		return false
	}
	live, ok := s.Path.MotionAt(c.first.Time)
	return ok && live.Position.Distance(c.first.Target.Position) > c.tolerance
}

// strikeLatch keeps a step uninterruptible from the first strike tick until
// the contact it struck for has passed.
type strikeLatch struct {
	engaged bool
	contact float64
}

// engage holds the latch for a strike at contact. A held latch keeps its
// first contact time.
func (l *strikeLatch) engage(contact float64) {
	if !l.engaged {
		l.engaged, l.contact = true, contact
	}
}

// spent releases the latch once now is past the contact and reports whether
// the strike is over.
func (l *strikeLatch) spent(now float64) bool {
	if !l.engaged || now <= l.contact {
		return false
	}
	l.engaged = false
	return true
}

func (l *strikeLatch) held() bool { return l.engaged }

// InterceptStep drives to the soonest contact and strikes it with whatever
// style gets there first.
type InterceptStep struct {
	Modifier  model.Vec3
	Predicate intercept.Predicate

	commit commitment
	latch  strikeLatch
}

func NewIntercept(modifier model.Vec3, tolerance float64) *InterceptStep {
	return &InterceptStep{Modifier: modifier, commit: commitment{tolerance: tolerance}}
}

func (st *InterceptStep) Output(b plan.Bundle) (plan.Output, bool) {
	s := b.Situation
	if s.Plot == nil || st.latch.spent(s.Time) {
		return plan.Output{}, false
	}
	in, ok, err := intercept.Soonest(intercept.Query{
		Agent:     s.Me,
		Path:      s.Path,
		Plot:      s.Plot,
		Modifier:  st.Modifier,
		Predicate: st.Predicate,
		Horizon:   s.Plot.Horizon(),
	})
	if err != nil || !ok {
		return plan.Output{}, false
	}
	if st.commit.stale(s, in) {
		return plan.Output{}, false
	}
	strikeAt := in.Time - in.Profile.StrikeDuration()
	if s.Time >= strikeAt {
		st.latch.engage(in.Time)
		return StrikeOutput(s.Me, in, s.Time, model.Vec2{}), true
	}
	if in.SpareTime > 0 {
		return ArriveAt(s.Me, in.Space.Flatten(), s.Time, strikeAt), true
	}
	return SteerTowards(s.Me, in.Space.Flatten()), true
}

func (st *InterceptStep) ShouldAbort(plan.Bundle) bool { return false }
func (st *InterceptStep) CanInterrupt() bool           { return !st.latch.held() }
func (st *InterceptStep) Situation() string            { return "intercept" }

// viabilityChecker is implemented by strategies that can rule out a contact
// before any geometry is planned.
type viabilityChecker interface {
	LooksViable(contact model.Vec3) bool
}

// FlexibleKickStep plans a directed kick every tick, trying candidate
// styles soonest first and falling through when a style has no geometry.
type FlexibleKickStep struct {
	Strategy strike.KickStrategy
	Styles   []intercept.Style

	log    *slog.Logger
	commit commitment
	latch  strikeLatch
	label  string
}

func NewFlexibleKick(strategy strike.KickStrategy, tolerance float64, log *slog.Logger) *FlexibleKickStep {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &FlexibleKickStep{
		Strategy: strategy,
		Styles:   KickStyles,
		log:      log,
		commit:   commitment{tolerance: tolerance},
		label:    "flexible kick",
	}
}

// PlanFor returns the first workable directed kick for s.
func (st *FlexibleKickStep) PlanFor(s *assess.Situation) (strike.DirectedKickPlan, bool) {
	if s.Plot == nil {
		return strike.DirectedKickPlan{}, false
	}
	q := intercept.Query{Agent: s.Me, Path: s.Path, Plot: s.Plot, Horizon: s.Plot.Horizon()}
	var candidates []intercept.Intercept
	for _, style := range st.Styles {
		if in, ok := q.ForStyle(style); ok {
			candidates = append(candidates, in)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Time < candidates[j].Time })

	checker, hasChecker := st.Strategy.(viabilityChecker)
	for _, in := range candidates {
		if hasChecker && !checker.LooksViable(in.Space) {
			continue
		}
		kick, ok, err := strike.PlanKick(in, s.Path, s.Me, st.Strategy)
		if err != nil {
			st.log.Error("kick planning failed", "style", in.Style(), "time", in.Time, "error", err)
			continue
		}
		if ok {
			return kick, true
		}
	}
	return strike.DirectedKickPlan{}, false
}

func (st *FlexibleKickStep) Output(b plan.Bundle) (plan.Output, bool) {
	s := b.Situation
	if st.latch.spent(s.Time) {
		return plan.Output{}, false
	}
	kick, ok := st.PlanFor(s)
	if !ok {
		return plan.Output{}, false
	}
	if st.commit.stale(s, kick.Intercept) {
		return plan.Output{}, false
	}
	in := kick.Intercept
	if s.Time >= in.Time-in.Profile.StrikeDuration() {
		st.latch.engage(in.Time)
		return StrikeOutput(s.Me, in, s.Time, kick.PlannedKickForce.Flatten()), true
	}
	return ApproachWaypoint(s.Me, kick.Waypoint, s.Time), true
}

func (st *FlexibleKickStep) ShouldAbort(plan.Bundle) bool { return false }
func (st *FlexibleKickStep) CanInterrupt() bool           { return !st.latch.held() }

func (st *FlexibleKickStep) Situation() string {
	switch st.Strategy.(type) {
	case strike.KickAtEnemyGoal:
		return st.label + " at goal"
	case strike.KickAwayFromOwnGoal:
		return st.label + " clear"
	case strike.WallPass:
		return st.label + " wall pass"
	}
	return st.label
}
