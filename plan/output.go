package plan

import "math"

// Output is the control action for one tick.
type Output struct {
	Throttle float64 `json:"throttle"` // -1..1
	Steer    float64 `json:"steer"`    // -1..1, positive is right
	Pitch    float64 `json:"pitch"`
	Yaw      float64 `json:"yaw"`
	Roll     float64 `json:"roll"`
	Jump     bool    `json:"jump"`
	Boost    bool    `json:"boost"`
	Slide    bool    `json:"slide"`
}

// Idle is the do-nothing action.
func Idle() Output { return Output{} }

// Clamped limits every analog axis to [-1, 1].
func (o Output) Clamped() Output {
	c := func(v float64) float64 { return math.Max(-1, math.Min(1, v)) }
	o.Throttle, o.Steer = c(o.Throttle), c(o.Steer)
	o.Pitch, o.Yaw, o.Roll = c(o.Pitch), c(o.Yaw), c(o.Roll)
	return o
}
