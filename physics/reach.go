// Package physics holds the two oracles the decision core consumes: where the
// target is going, and how far an agent can get by a given time.
package physics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/nstehr/volley/volley-core/model"
)

// ErrNegativeHorizon is returned when a simulation is asked to look backwards in time.
var ErrNegativeHorizon = errors.New("negative time horizon")

// Ground handling constants, in arena units per second.
const (
	MaxSpeed         = 46.0
	SupersonicSpeed  = 44.0
	MaxThrottleSpeed = 28.0
	ThrottleAccel    = 32.0
	BoostAccel       = 19.8
	BoostPerSecond   = 33.3
	BrakingDecel     = 70.0
	simulationStep   = 1.0 / 60
)

// Motion is the state reached along a straight-line acceleration run.
// Time is seconds from the start of the run.
type Motion struct {
	Time     float64
	Distance float64
	Speed    float64
}

// DistancePlot answers "how far can the agent get by time t" for a single
// straight-line run. Distance is non-decreasing in time.
type DistancePlot interface {
	Horizon() float64
	MotionAt(t float64) Motion
	DistanceAt(t float64) float64
	TimeAt(distance float64) (float64, bool)
	SpeedAt(distance float64) (float64, bool)
}

// Plot is a sampled DistancePlot.
type Plot struct {
	samples []Motion
}

// SimulateAcceleration integrates full throttle plus boost, spending at most
// boostBudget, from the agent's current forward speed.
func SimulateAcceleration(agent model.AgentState, horizon, boostBudget float64) (*Plot, error) {
	if horizon < 0 {
		return nil, fmt.Errorf("simulate acceleration over %.2fs: %w", horizon, ErrNegativeHorizon)
	}
	speed := math.Max(0, agent.Velocity.Flatten().Dot(agent.Orientation.Nose.Flatten().Normalized()))
	boost := math.Max(0, boostBudget)

	samples := make([]Motion, 0, int(horizon/simulationStep)+2)
	m := Motion{Speed: speed}
	samples = append(samples, m)
	for m.Time < horizon {
		dt := math.Min(simulationStep, horizon-m.Time)
		accel := throttleAccel(m.Speed)
		if boost > 0 {
			accel += BoostAccel
			boost -= BoostPerSecond * dt
		}
		next := math.Min(MaxSpeed, m.Speed+accel*dt)
		m.Distance += (m.Speed + next) / 2 * dt
		m.Speed = next
		m.Time += dt
		samples = append(samples, m)
	}
	return &Plot{samples: samples}, nil
}

// NewPlot wraps precomputed samples. Samples must be ordered by time.
func NewPlot(samples []Motion) *Plot {
	return &Plot{samples: samples}
}

func throttleAccel(speed float64) float64 {
	if speed >= MaxThrottleSpeed {
		return 0
	}
	return ThrottleAccel * (1 - speed/MaxThrottleSpeed)
}

func (p *Plot) Horizon() float64 {
	if len(p.samples) == 0 {
		return 0
	}
	return p.samples[len(p.samples)-1].Time
}

// MotionAt interpolates the run at t, clamped to [0, Horizon].
func (p *Plot) MotionAt(t float64) Motion {
	if len(p.samples) == 0 {
		return Motion{}
	}
	i := sort.Search(len(p.samples), func(i int) bool { return p.samples[i].Time >= t })
	if i == 0 {
		return p.samples[0]
	}
	if i == len(p.samples) {
		return p.samples[len(p.samples)-1]
	}
	return lerpMotion(p.samples[i-1], p.samples[i], (t-p.samples[i-1].Time)/(p.samples[i].Time-p.samples[i-1].Time))
}

func (p *Plot) DistanceAt(t float64) float64 { return p.MotionAt(t).Distance }

// TimeAt is the earliest time the run covers distance.
func (p *Plot) TimeAt(distance float64) (float64, bool) {
	m, ok := p.motionAfterDistance(distance)
	return m.Time, ok
}

// SpeedAt is the speed reached once the run covers distance.
func (p *Plot) SpeedAt(distance float64) (float64, bool) {
	m, ok := p.motionAfterDistance(distance)
	return m.Speed, ok
}

func (p *Plot) motionAfterDistance(distance float64) (Motion, bool) {
	if len(p.samples) == 0 {
		return Motion{}, false
	}
	i := sort.Search(len(p.samples), func(i int) bool { return p.samples[i].Distance >= distance })
	if i == len(p.samples) {
		return Motion{}, false
	}
	if i == 0 {
		return p.samples[0], true
	}
	a, b := p.samples[i-1], p.samples[i]
	span := b.Distance - a.Distance
	if span <= 0 {
		return b, true
	}
	return lerpMotion(a, b, (distance-a.Distance)/span), true
}

func lerpMotion(a, b Motion, f float64) Motion {
	return Motion{
		Time:     a.Time + (b.Time-a.Time)*f,
		Distance: a.Distance + (b.Distance-a.Distance)*f,
		Speed:    a.Speed + (b.Speed-a.Speed)*f,
	}
}
