package tactics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Doctrine is the match-level stance. Weights are 0.0–1.0; the compiler
// scales the tuned thresholds by them, and 0.5 leaves them unchanged.
type Doctrine struct {
	Name       string  `yaml:"name" json:"name"`
	Rationale  string  `yaml:"rationale" json:"rationale"`
	Aggression float64 `yaml:"aggression" json:"aggression"`
	Caution    float64 `yaml:"caution" json:"caution"`
}

// DefaultDoctrine returns a balanced baseline doctrine.
func DefaultDoctrine() Doctrine {
	return Doctrine{
		Name:       "Balanced",
		Rationale:  "Default balanced stance",
		Aggression: 0.5,
		Caution:    0.5,
	}
}

// Validate clamps all weights to their valid ranges.
func (d *Doctrine) Validate() {
	d.Aggression = clamp(d.Aggression, 0, 1)
	d.Caution = clamp(d.Caution, 0, 1)
}

// LoadDoctrine reads a doctrine from a YAML file. Missing weights keep
// their default values.
func LoadDoctrine(path string) (Doctrine, error) {
	d := DefaultDoctrine()
	raw, err := os.ReadFile(path)
	if err != nil {
		return d, err
	}
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("doctrine %s: %w", path, err)
	}
	d.Validate()
	return d, nil
}

// weighted scales base by a factor in [2/3, 4/3] driven by w.
func weighted(base, w float64) float64 {
	return base * lerpf(2.0/3, 4.0/3, clamp(w, 0, 1))
}

// lerpf linearly interpolates between min and max by t (0–1).
func lerpf(min, max, t float64) float64 {
	return min + (max-min)*t
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
