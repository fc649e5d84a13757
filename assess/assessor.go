package assess

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/nstehr/volley/volley-core/intercept"
	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/physics"
	"github.com/nstehr/volley/volley-core/tuning"
)

// ErrNoSelf is returned when the snapshot does not contain the controlled agent.
var ErrNoSelf = errors.New("snapshot has no controlled agent")

// Assessor turns snapshots into Situations. It holds no per-tick state.
type Assessor struct {
	Predictor physics.Predictor
	Zones     *model.ZoneGrid
	Tuning    tuning.Tuning
}

// NewAssessor uses the reference predictor and a 16x12 zone grid.
func NewAssessor(t tuning.Tuning) *Assessor {
	return &Assessor{
		Predictor: physics.DefaultPredictor(),
		Zones:     model.NewZoneGrid(16, 12),
		Tuning:    t,
	}
}

// Assess derives the Situation for w. activePlan is only recorded.
func (a *Assessor) Assess(w model.World, activePlan string) (*Situation, error) {
	me, ok := w.Me()
	if !ok {
		return nil, fmt.Errorf("assess tick %d: %w", w.Tick, ErrNoSelf)
	}
	path, err := a.Predictor.PredictPath(w)
	if err != nil {
		return nil, fmt.Errorf("assess tick %d: %w", w.Tick, err)
	}
	horizon := a.Tuning.LookaheadSeconds

	s := &Situation{
		Tick:       w.Tick,
		Time:       w.Time,
		World:      w,
		Me:         me,
		Team:       me.Team,
		Path:       path,
		ActivePlan: activePlan,
	}

	for _, agent := range w.Agents {
		if agent.Demolished {
			continue
		}
		plot, err := physics.SimulateAcceleration(agent, horizon, intercept.BoostBudget(agent))
		if err != nil {
			return nil, fmt.Errorf("assess tick %d: %w", w.Tick, err)
		}
		if agent.Index == me.Index {
			s.Plot = plot
		}
		in, found, err := intercept.Soonest(intercept.Query{Agent: agent, Path: path, Plot: plot, Horizon: horizon})
		if err != nil {
			return nil, fmt.Errorf("assess tick %d: %w", w.Tick, err)
		}
		if !found {
			continue
		}
		c := Contact{Agent: agent, Intercept: in}
		if agent.Team == me.Team {
			s.TeamContacts = append(s.TeamContacts, c)
		} else {
			s.RivalContacts = append(s.RivalContacts, c)
		}
	}
	bySoonest := func(cs []Contact) {
		sort.SliceStable(cs, func(i, j int) bool { return cs[i].Intercept.Time < cs[j].Intercept.Time })
	}
	bySoonest(s.TeamContacts)
	bySoonest(s.RivalContacts)

	for i := range s.TeamContacts {
		if s.TeamContacts[i].Agent.Index == me.Index {
			in := s.TeamContacts[i].Intercept
			s.ExpectedContact = &in
			break
		}
	}
	if len(s.RivalContacts) > 0 {
		rival := s.RivalContacts[0]
		s.ExpectedRivalContact = &rival.Intercept
		s.RivalWithInitiative = &rival.Agent
	}

	a.fill(s)
	return s, nil
}

func (a *Assessor) fill(s *Situation) {
	t := a.Tuning.Tactics
	me := s.Me
	target := s.World.Ball
	ownGoal := model.OwnGoal(s.Team)
	enemyGoal := model.EnemyGoal(s.Team)

	future := s.Path.MotionAtOrEnd(s.Time + a.Tuning.LookaheadSeconds)
	s.Advantage = raceResult(s.ExpectedContact, s.ExpectedRivalContact)
	s.OwnGoalFutureProximity = ownGoal.Center.Flatten().Distance(future.Position.Flatten())
	s.DistanceTargetIsBehindUs = me.Position.Distance(ownGoal.Center) - target.Position.Distance(ownGoal.Center)
	s.WrongSideOfTarget = (me.Position.Y - target.Position.Y) * -s.Team.Side()

	s.RivalApproachError = math.Pi
	if s.ExpectedRivalContact != nil {
		s.RivalApproachError = approachError(*s.RivalWithInitiative, s.ExpectedRivalContact.Space.Flatten(), ownGoal)
	}

	if slice, ok := ownGoal.PredictGoalEvent(s.Path); ok {
		s.ScoredOnThreat = &slice
	}
	s.NeedsDefensiveClear = ownGoal.TargetLingersInBox(s.Path, 3, 1)

	if s.ExpectedContact != nil {
		contact := s.ExpectedContact.Space.Flatten()
		s.GenerousShotAngle = GenerousShotAngle(enemyGoal, contact)
		s.ShotOnGoalAvailable = me.IsOnGround() &&
			model.SideWall-math.Abs(contact.X) >= 10 &&
			s.GenerousShotAngle
		toContact := s.ExpectedContact.Space.Sub(me.Position).Flatten()
		s.ApproachOpposesTarget = math.Abs(toContact.CorrectionAngle(target.Velocity.Flatten())) > math.Pi/2
		s.WallTouchOpportunity = model.SideWall-math.Abs(contact.X) < 10 && s.ExpectedContact.Space.Z > 3
	}

	s.GoForKickoff = target.Position.Flatten().MagnitudeSquared() == 0 && s.Team.OwnsPosition(me.Position)
	s.KickoffCenter = math.Abs(me.Position.X) < 2

	s.HasInitiative = holdsInitiative(s)
	s.HasBestShot = holdsBestShot(s, enemyGoal)

	zones := model.NewZonePlan(a.Zones, target.Position, me)
	s.TargetZone, s.MyZone = zones.TargetZone, zones.MyZone
	s.WaitToClear = waitToClear(s, zones, ownGoal)
	s.ForceDefensivePosture = offensiveBreakaway(s, ownGoal)

	s.ThreatExists = s.ExpectedRivalContact != nil && s.ExpectedRivalContact.Time-s.Time < 4
	s.Threat = MeasureThreat(s)

	s.ScoreAdvantage = s.World.ScoreAdvantage(s.Team)
	s.GoNuts = s.ScoreAdvantage < -1

	s.OffWheels = !me.HasWheelContact
	s.BehindGoalLine = model.IsBehindGoalLine(me.Position)

	_, s.CatchOpportunity = CatchOpportunity(me, s.Path, s.Plot)
	s.CanDribble = canDribble(me, target)
	s.ReallyWantsToDribble = s.CanDribble && target.Velocity.Y*-s.Team.Side() > 0 && me.Boost > t.LowBoost
}

// GenerousShotAngle is true when contact is roughly in front of the goal or
// sees a wide enough slice of it.
func GenerousShotAngle(goal model.Goal, contact model.Vec2) bool {
	goalCenter := goal.Center.Flatten()
	toGoal := goalCenter.Sub(contact)
	return model.AngleBetween(goalCenter, toGoal) < math.Pi/4 || shotTriangle(goal, contact) > math.Pi/4
}

func shotTriangle(goal model.Goal, position model.Vec2) float64 {
	right := goal.NearPost(goal.RightPost.Flatten()).Sub(position)
	left := goal.NearPost(goal.LeftPost.Flatten()).Sub(position)
	return model.AngleBetween(left, right)
}

// approachError is the turn between the agent's line to contact and the
// line from contact into goal.
func approachError(agent model.AgentState, contact model.Vec2, goal model.Goal) float64 {
	toContact := contact.Sub(agent.Position.Flatten())
	toGoal := goal.Center.Flatten().Sub(contact)
	return model.AngleBetween(toContact, toGoal)
}

func holdsInitiative(s *Situation) bool {
	if len(s.TeamContacts) > 0 {
		return s.TeamContacts[0].Agent.Index == s.Me.Index
	}
	nearest, best := -1, math.Inf(1)
	for _, a := range s.World.Teammates(s.Team) {
		if d := a.Position.Distance(s.World.Ball.Position); d < best {
			nearest, best = a.Index, d
		}
	}
	return nearest == s.Me.Index
}

// holdsBestShot picks the teammate whose approach lines up best with the
// rival goal.
func holdsBestShot(s *Situation, goal model.Goal) bool {
	best, bestError := -1, math.Inf(1)
	for _, c := range s.TeamContacts {
		e := approachError(c.Agent, c.Intercept.Space.Flatten(), goal)
		if e < bestError {
			best, bestError = c.Agent.Index, e
		}
	}
	if best < 0 {
		return s.HasInitiative
	}
	return best == s.Me.Index
}

func waitToClear(s *Situation, zones model.ZonePlan, ownGoal model.Goal) bool {
	target := s.World.Ball.Position
	myTargetDistance := target.Distance(s.Me.Position)
	rivalTargetDistance := math.MaxFloat64
	if s.RivalWithInitiative != nil {
		rivalTargetDistance = target.Distance(s.RivalWithInitiative.Position)
	}
	targetToGoal := target.Distance(ownGoal.Center)
	myDistanceToGoal := s.Me.Position.Distance(ownGoal.Center)

	if (myTargetDistance > rivalTargetDistance || myDistanceToGoal > targetToGoal) && zones.TargetZone.Sub.IsCorner() {
		return zones.TargetZone.Main == model.OwnThird(s.Team)
	}
	return false
}

// offensiveBreakaway is a rival closer to the target than us, the target in
// our half and us caught upfield of it.
func offensiveBreakaway(s *Situation, ownGoal model.Goal) bool {
	if s.RivalWithInitiative == nil {
		return false
	}
	target := s.World.Ball.Position
	rival := *s.RivalWithInitiative
	return s.Team.OwnsPosition(target) &&
		rival.Position.Distance(target) < s.Me.Position.Distance(target) &&
		s.Me.Position.Distance(ownGoal.Center) > target.Distance(ownGoal.Center) &&
		approachError(rival, target.Flatten(), ownGoal) < math.Pi/3
}

// MeasureThreat scores how dangerous the rival with the initiative is to our
// goal. Zero without such a rival.
func MeasureThreat(s *Situation) float64 {
	if s.RivalWithInitiative == nil || s.ExpectedRivalContact == nil {
		return 0
	}
	proximity := 3 * (1 - s.OwnGoalFutureProximity/(2*model.BackWall))
	alignment := 1.5 * math.Max(0, (math.Pi/3-s.RivalApproachError)/(math.Pi/3))
	towardGoal := model.OwnGoal(s.Team).Center.Sub(s.World.Ball.Position).Flatten().Normalized()
	speed := math.Min(1.5, math.Max(0, s.World.Ball.Velocity.Flatten().Dot(towardGoal)/20))
	return math.Max(0, proximity) + alignment + speed
}

// CatchOpportunity finds the first descending slice low enough to catch on
// the roof that the agent can reach in time.
func CatchOpportunity(me model.AgentState, path model.Path, plot physics.DistancePlot) (model.TargetSlice, bool) {
	if plot == nil {
		return model.TargetSlice{}, false
	}
	for _, slice := range path {
		dt := slice.Time - me.Time
		if dt <= 0 {
			continue
		}
		if dt > plot.Horizon() {
			break
		}
		if slice.Velocity.Z >= 0 || slice.Position.Z > 4 || slice.Position.Z < model.BallRadius+0.5 {
			continue
		}
		if plot.DistanceAt(dt) >= me.Position.Flatten().Distance(slice.Position.Flatten()) {
			return slice, true
		}
	}
	return model.TargetSlice{}, false
}

func canDribble(me model.AgentState, target model.TargetState) bool {
	if !me.HasWheelContact || target.Position.Z > 4 {
		return false
	}
	return me.Position.Flatten().Distance(target.Position.Flatten()) < 5 &&
		me.Velocity.Sub(target.Velocity).Flatten().Magnitude() < 5
}
