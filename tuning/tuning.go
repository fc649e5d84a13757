// Package tuning holds the numbers the decision core is tuned by.
package tuning

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	TickRateHz       int     `yaml:"tick_rate_hz"`
	LookaheadSeconds float64 `yaml:"lookahead_seconds"`

	Tactics    Tactics    `yaml:"tactics"`
	Steps      Steps      `yaml:"steps"`
	Strategist Strategist `yaml:"strategist"`
}

// Tactics thresholds feed the urgency rules of the advisor.
type Tactics struct {
	ThreatThreshold         float64 `yaml:"threat_threshold"`
	ThreatMaxAdvantage      float64 `yaml:"threat_max_advantage"`
	ClearChallengeAdvantage float64 `yaml:"clear_challenge_advantage"`
	ShotWindowSeconds       float64 `yaml:"shot_window_seconds"`
	DribbleWindowSeconds    float64 `yaml:"dribble_window_seconds"`
	ChallengeRace           float64 `yaml:"challenge_race"`
	WaitToClearMaxAdvantage float64 `yaml:"wait_to_clear_max_advantage"`
	LowBoost                float64 `yaml:"low_boost"`
	ComfortableBoost        float64 `yaml:"comfortable_boost"`
}

type Steps struct {
	DivergenceTolerance float64 `yaml:"divergence_tolerance"`
	CatchWaitSeconds    float64 `yaml:"catch_wait_seconds"`
	FullBoost           float64 `yaml:"full_boost"`
}

// Strategist controls how often the doctrine is revisited.
type Strategist struct {
	EveryTicks int `yaml:"every_ticks"`
}

// Default returns the values the core was built around.
func Default() Tuning {
	return Tuning{
		TickRateHz:       60,
		LookaheadSeconds: 7,
		Tactics: Tactics{
			ThreatThreshold:         3,
			ThreatMaxAdvantage:      0.5,
			ClearChallengeAdvantage: 0.3,
			ShotWindowSeconds:       2,
			DribbleWindowSeconds:    1,
			ChallengeRace:           -0.3,
			WaitToClearMaxAdvantage: 0.8,
			LowBoost:                10,
			ComfortableBoost:        50,
		},
		Steps: Steps{
			DivergenceTolerance: 10,
			CatchWaitSeconds:    2,
			FullBoost:           99,
		},
		Strategist: Strategist{EveryTicks: 120},
	}
}

// Load reads path and overlays it on Default. Keys absent from the file keep
// their default values.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Validate rejects values that would make the core misbehave.
func (t Tuning) Validate() error {
	var errs []error
	if t.TickRateHz <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate_hz must be positive, got %d", t.TickRateHz))
	}
	if t.LookaheadSeconds < 0 {
		errs = append(errs, fmt.Errorf("lookahead_seconds must not be negative, got %v", t.LookaheadSeconds))
	}
	if t.Steps.DivergenceTolerance <= 0 {
		errs = append(errs, fmt.Errorf("steps.divergence_tolerance must be positive, got %v", t.Steps.DivergenceTolerance))
	}
	if t.Steps.CatchWaitSeconds < 0 {
		errs = append(errs, fmt.Errorf("steps.catch_wait_seconds must not be negative, got %v", t.Steps.CatchWaitSeconds))
	}
	if t.Strategist.EveryTicks <= 0 {
		errs = append(errs, fmt.Errorf("strategist.every_ticks must be positive, got %d", t.Strategist.EveryTicks))
	}
	return errors.Join(errs...)
}
