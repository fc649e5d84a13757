package model

import "math"

// World is the per-tick snapshot delivered by the simulator.
type World struct {
	Tick        int          `json:"tick"`
	Time        float64      `json:"time"` // seconds since match start
	Self        int          `json:"self"` // index into Agents of the agent being controlled
	Agents      []AgentState `json:"agents"`
	Ball        TargetState  `json:"ball"`
	BlueScore   int          `json:"blueScore"`
	OrangeScore int          `json:"orangeScore"`
	BoostPads   []BoostPad   `json:"boostPads"`
}

// Me returns the controlled agent. The bool is false when Self is out of range.
func (w World) Me() (AgentState, bool) {
	if w.Self < 0 || w.Self >= len(w.Agents) {
		return AgentState{}, false
	}
	return w.Agents[w.Self], true
}

// Teammates returns every agent on team, including the controlled one.
func (w World) Teammates(team Team) []AgentState {
	var out []AgentState
	for _, a := range w.Agents {
		if a.Team == team {
			out = append(out, a)
		}
	}
	return out
}

// Rivals returns every agent not on team.
func (w World) Rivals(team Team) []AgentState {
	var out []AgentState
	for _, a := range w.Agents {
		if a.Team != team {
			out = append(out, a)
		}
	}
	return out
}

// ScoreAdvantage is the score differential from team's point of view.
func (w World) ScoreAdvantage(team Team) int {
	if team == Blue {
		return w.BlueScore - w.OrangeScore
	}
	return w.OrangeScore - w.BlueScore
}

type Team int

const (
	Blue   Team = 0
	Orange Team = 1
)

func (t Team) Opposite() Team {
	if t == Blue {
		return Orange
	}
	return Blue
}

// Side is the sign of the Y half of the arena the team defends.
func (t Team) Side() float64 {
	if t == Blue {
		return -1
	}
	return 1
}

// OwnsPosition reports whether pos lies in the team's defensive half.
func (t Team) OwnsPosition(pos Vec3) bool {
	return pos.Y*t.Side() > 0
}

func (t Team) String() string {
	if t == Blue {
		return "blue"
	}
	return "orange"
}

// AgentState is one agent's kinematic state at a moment in time.
type AgentState struct {
	Index           int         `json:"index"`
	Team            Team        `json:"team"`
	Time            float64     `json:"time"`
	Position        Vec3        `json:"position"`
	Velocity        Vec3        `json:"velocity"`
	AngularVelocity Vec3        `json:"angularVelocity"`
	Orientation     Orientation `json:"orientation"`
	Boost           float64     `json:"boost"`
	HasWheelContact bool        `json:"hasWheelContact"`
	Demolished      bool        `json:"demolished"`
}

// IsOnGround is true when the agent is driving on the floor.
func (a AgentState) IsOnGround() bool {
	return a.HasWheelContact && a.Position.Z < 2*BaseAgentZ
}

// TargetState is the ball as observed this tick.
type TargetState struct {
	Position    Vec3   `json:"position"`
	Velocity    Vec3   `json:"velocity"`
	LatestTouch *Touch `json:"latestTouch,omitempty"`
}

// Touch records the most recent contact with the target.
type Touch struct {
	Time        float64 `json:"time"`
	Position    Vec3    `json:"position"`
	PlayerIndex int     `json:"playerIndex"`
}

// SameTouch compares two possibly-absent touches by position and time.
func SameTouch(a, b *Touch) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Position == b.Position && a.Time == b.Time
}

type BoostPad struct {
	Location   Vec3    `json:"location"`
	Full       bool    `json:"full"`
	Active     bool    `json:"active"`
	ActiveTime float64 `json:"activeTime"` // when an inactive pad respawns
}

// SpaceTime is a point in the arena at a moment in time.
type SpaceTime struct {
	Space Vec3    `json:"space"`
	Time  float64 `json:"time"`
}

// TargetSlice is one predicted state of the target.
type TargetSlice struct {
	Time     float64 `json:"time"`
	Position Vec3    `json:"position"`
	Velocity Vec3    `json:"velocity"`
}

func (s TargetSlice) SpaceTime() SpaceTime { return SpaceTime{Space: s.Position, Time: s.Time} }

// Path is a time-ordered prediction of the target's future.
type Path []TargetSlice

// Start returns the first slice. The bool is false for an empty path.
func (p Path) Start() (TargetSlice, bool) {
	if len(p) == 0 {
		return TargetSlice{}, false
	}
	return p[0], true
}

// End returns the final slice. The bool is false for an empty path.
func (p Path) End() (TargetSlice, bool) {
	if len(p) == 0 {
		return TargetSlice{}, false
	}
	return p[len(p)-1], true
}

// MotionAt linearly interpolates the path at time t.
// The bool is false when t falls outside the path.
func (p Path) MotionAt(t float64) (TargetSlice, bool) {
	if len(p) == 0 || t < p[0].Time || t > p[len(p)-1].Time {
		return TargetSlice{}, false
	}
	for i := 1; i < len(p); i++ {
		if p[i].Time < t {
			continue
		}
		a, b := p[i-1], p[i]
		span := b.Time - a.Time
		if span <= 0 {
			return b, true
		}
		f := (t - a.Time) / span
		return TargetSlice{
			Time:     t,
			Position: a.Position.Add(b.Position.Sub(a.Position).Scale(f)),
			Velocity: a.Velocity.Add(b.Velocity.Sub(a.Velocity).Scale(f)),
		}, true
	}
	return p[0], true
}

// MotionAtOrEnd is MotionAt falling back to the final slice.
func (p Path) MotionAtOrEnd(t float64) TargetSlice {
	if s, ok := p.MotionAt(t); ok {
		return s
	}
	end, _ := p.End()
	return end
}

// Arena dimensions in simulation units.
const (
	SideWall      = 81.92
	BackWall      = 102.4
	Ceiling       = 40.88
	GoalHalfWidth = 17.86
	GoalHeight    = 12.8
	BallRadius    = 1.8555
	BaseAgentZ    = 0.3405
	Gravity       = 13.0
)

// IsBehindGoalLine reports whether pos is past either back wall plane.
func IsBehindGoalLine(pos Vec3) bool {
	return math.Abs(pos.Y) > BackWall
}
