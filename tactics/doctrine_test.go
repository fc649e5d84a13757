package tactics

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDoctrineValidateClamps(t *testing.T) {
	d := Doctrine{Aggression: 1.7, Caution: -0.2}
	d.Validate()
	if d.Aggression != 1 || d.Caution != 0 {
		t.Errorf("Validate() = %+v, want weights clamped to [0,1]", d)
	}
}

func TestWeightedNeutralAtHalf(t *testing.T) {
	for _, base := range []float64{0.3, 2, 3} {
		if got := weighted(base, 0.5); math.Abs(got-base) > 1e-9 {
			t.Errorf("weighted(%v, 0.5) = %v, want %v", base, got, base)
		}
	}
	if lo, hi := weighted(3, 0), weighted(3, 1); !(lo < 3 && hi > 3) {
		t.Errorf("weighted range [%v, %v] does not straddle 3", lo, hi)
	}
}

func TestLoadDoctrine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doctrine.yaml")
	if err := os.WriteFile(path, []byte("name: Press\naggression: 0.9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := LoadDoctrine(path)
	if err != nil {
		t.Fatalf("LoadDoctrine: %v", err)
	}
	if d.Name != "Press" || d.Aggression != 0.9 {
		t.Errorf("got %+v", d)
	}
	if d.Caution != 0.5 {
		t.Errorf("caution = %v, want default 0.5", d.Caution)
	}
}

func TestLoadDoctrineMissingFile(t *testing.T) {
	if _, err := LoadDoctrine(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
