package plan

import "fmt"

// Posture is the priority class of a Plan. Higher values are more urgent.
type Posture int

const (
	Neutral    Posture = 0
	Offensive  Posture = 1
	EscapeGoal Posture = 2
	Defensive  Posture = 5
	Clear      Posture = 6
	Save       Posture = 7
	Landing    Posture = 8
	Override   Posture = 9
	Kickoff    Posture = 10
)

var postureNames = map[Posture]string{
	Neutral:    "neutral",
	Offensive:  "offensive",
	EscapeGoal: "escape_goal",
	Defensive:  "defensive",
	Clear:      "clear",
	Save:       "save",
	Landing:    "landing",
	Override:   "override",
	Kickoff:    "kickoff",
}

func (p Posture) String() string {
	if name, ok := postureNames[p]; ok {
		return name
	}
	return fmt.Sprintf("posture(%d)", int(p))
}

// ParsePosture is the inverse of String.
func ParsePosture(s string) (Posture, error) {
	for p, name := range postureNames {
		if name == s {
			return p, nil
		}
	}
	return Neutral, fmt.Errorf("unknown posture %q", s)
}

// CanInterrupt reports whether a new Plan of posture p may replace active.
// Nothing active, or an active plan that has finished, can always be replaced.
// Otherwise p must be strictly more urgent and the active step must allow it.
func (p Posture) CanInterrupt(active *Plan) bool {
	if active == nil || active.IsComplete() {
		return true
	}
	return active.Posture < p && active.CanInterrupt()
}
