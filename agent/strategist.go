package agent

import (
	"log/slog"

	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/tactics"
)

// DoctrineHolder is the part of the advisor the strategist drives.
type DoctrineHolder interface {
	Doctrine() tactics.Doctrine
	SetDoctrine(d tactics.Doctrine) error
}

// Strategist re-picks the doctrine from the scoreline every interval
// ticks, and immediately after a goal. It runs on the tick goroutine.
type Strategist struct {
	holder   DoctrineHolder
	base     tactics.Doctrine
	interval int
	lastTick int
	started  bool
	log      *slog.Logger
}

// NewStrategist uses base as the stance for a level match.
func NewStrategist(holder DoctrineHolder, base tactics.Doctrine, interval int, log *slog.Logger) *Strategist {
	if interval <= 0 {
		interval = 120
	}
	if log == nil {
		log = slog.Default()
	}
	return &Strategist{holder: holder, base: base, interval: interval, log: log}
}

// Protect sits back on a comfortable lead.
func Protect() tactics.Doctrine {
	return tactics.Doctrine{Name: "Protect", Rationale: "Ahead by two or more; keep it tidy", Aggression: 0.3, Caution: 0.8}
}

// Press pushes when behind.
func Press() tactics.Doctrine {
	return tactics.Doctrine{Name: "Press", Rationale: "Behind; take more shots", Aggression: 0.8, Caution: 0.3}
}

// Choose maps a score differential to a doctrine.
func (s *Strategist) Choose(scoreAdvantage int) tactics.Doctrine {
	switch {
	case scoreAdvantage >= 2:
		return Protect()
	case scoreAdvantage < 0:
		return Press()
	}
	return s.base
}

// Observe is called once per tick with that tick's events.
func (s *Strategist) Observe(w model.World, team model.Team, events []Event) {
	due := !s.started || w.Tick-s.lastTick >= s.interval
	for _, e := range events {
		if e.Kind == EventGoalScored {
			due = true
		}
	}
	if !due {
		return
	}
	s.started = true
	s.lastTick = w.Tick

	next := s.Choose(w.ScoreAdvantage(team))
	if next.Name == s.holder.Doctrine().Name {
		return
	}
	if err := s.holder.SetDoctrine(next); err != nil {
		s.log.Error("strategist doctrine swap failed", "doctrine", next.Name, "error", err)
		return
	}
	s.log.Info("doctrine changed",
		"tick", w.Tick,
		"name", next.Name,
		"rationale", next.Rationale,
		"aggression", next.Aggression,
		"caution", next.Caution,
	)
}
