package agent

import (
	"fmt"
	"strings"

	"github.com/nstehr/volley/volley-core/model"
)

// EventKind identifies a match event found by diffing consecutive
// snapshots.
type EventKind string

const (
	EventGoalScored     EventKind = "goal_scored"
	EventKickoffReset   EventKind = "kickoff_reset"
	EventTouchedByOther EventKind = "touched_by_other"
	EventDemolished     EventKind = "demolished"
	EventRespawned      EventKind = "respawned"
)

// Event is one detected match event.
type Event struct {
	Kind   EventKind
	Tick   int
	Detail string
}

// ResetsPlan reports whether the event invalidates whatever the advisor
// was doing.
func (e Event) ResetsPlan() bool {
	switch e.Kind {
	case EventGoalScored, EventKickoffReset, EventTouchedByOther, EventRespawned:
		return true
	}
	return false
}

// stateSnapshot is the diffable part of a snapshot.
type stateSnapshot struct {
	blueScore   int
	orangeScore int
	touch       *model.Touch
	kickoff     bool
	demolished  bool
}

func onKickoffSpot(target model.TargetState) bool {
	return target.Position.Flatten().Magnitude() < 1 && target.Velocity.Magnitude() < 1
}

func takeSnapshot(w model.World) stateSnapshot {
	snap := stateSnapshot{
		blueScore:   w.BlueScore,
		orangeScore: w.OrangeScore,
		touch:       w.Ball.LatestTouch,
		kickoff:     onKickoffSpot(w.Ball),
	}
	if me, ok := w.Me(); ok {
		snap.demolished = me.Demolished
	}
	return snap
}

// detectEvents compares w against the previous snapshot. Returns nil if
// prev is nil (first tick).
func detectEvents(w model.World, prev *stateSnapshot) []Event {
	if prev == nil {
		return nil
	}
	var events []Event
	cur := takeSnapshot(w)
	me, _ := w.Me()

	if cur.blueScore != prev.blueScore || cur.orangeScore != prev.orangeScore {
		scorer := model.Blue
		if cur.orangeScore > prev.orangeScore {
			scorer = model.Orange
		}
		events = append(events, Event{
			Kind:   EventGoalScored,
			Tick:   w.Tick,
			Detail: fmt.Sprintf("%s scored: %d-%d", scorer, cur.blueScore, cur.orangeScore),
		})
	}

	if cur.kickoff && !prev.kickoff {
		events = append(events, Event{Kind: EventKickoffReset, Tick: w.Tick, Detail: "target back on the center spot"})
	}

	if cur.touch != nil && !model.SameTouch(cur.touch, prev.touch) && cur.touch.PlayerIndex != me.Index {
		events = append(events, Event{
			Kind:   EventTouchedByOther,
			Tick:   w.Tick,
			Detail: fmt.Sprintf("touched by agent %d", cur.touch.PlayerIndex),
		})
	}

	switch {
	case cur.demolished && !prev.demolished:
		events = append(events, Event{Kind: EventDemolished, Tick: w.Tick, Detail: "we were demolished"})
	case !cur.demolished && prev.demolished:
		events = append(events, Event{Kind: EventRespawned, Tick: w.Tick, Detail: "back in play"})
	}

	return events
}

// formatEvents renders events as one log-friendly line.
func formatEvents(events []Event) string {
	parts := make([]string, 0, len(events))
	for _, e := range events {
		parts = append(parts, fmt.Sprintf("[tick %d] %s: %s", e.Tick, e.Kind, e.Detail))
	}
	return strings.Join(parts, "; ")
}
