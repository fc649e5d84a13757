package agent

import (
	"testing"

	"github.com/nstehr/volley/volley-core/model"
)

// baseWorld returns a mid-play snapshot for testing.
func baseWorld(tick int) model.World {
	return model.World{
		Tick: tick,
		Time: float64(tick) / 60,
		Agents: []model.AgentState{
			{Index: 0, Team: model.Blue, Position: model.Vec3{Y: -30, Z: model.BaseAgentZ}, HasWheelContact: true,
				Orientation: model.FacingOrientation(model.Vec2{Y: 1}), Boost: 40},
			{Index: 1, Team: model.Orange, Position: model.Vec3{Y: 30, Z: model.BaseAgentZ}, HasWheelContact: true,
				Orientation: model.FacingOrientation(model.Vec2{Y: -1}), Boost: 40},
		},
		Ball: model.TargetState{
			Position: model.Vec3{X: 10, Y: 5, Z: model.BallRadius},
			Velocity: model.Vec3{X: 3},
			LatestTouch: &model.Touch{
				Time:        1,
				Position:    model.Vec3{X: 8, Y: 5, Z: model.BallRadius},
				PlayerIndex: 0,
			},
		},
	}
}

func TestDetectEvents_NoEvents(t *testing.T) {
	w := baseWorld(100)
	prev := takeSnapshot(w)

	w.Tick = 101
	events := detectEvents(w, &prev)
	if len(events) != 0 {
		t.Errorf("expected 0 events, got %d: %+v", len(events), events)
	}
}

func TestDetectEvents_NilPrev(t *testing.T) {
	if events := detectEvents(baseWorld(100), nil); events != nil {
		t.Errorf("expected nil events for nil prev, got %+v", events)
	}
}

func TestDetectEvents_GoalScored(t *testing.T) {
	w := baseWorld(100)
	prev := takeSnapshot(w)

	w.OrangeScore = 1
	events := detectEvents(w, &prev)
	if len(events) != 1 || events[0].Kind != EventGoalScored {
		t.Fatalf("expected one goal_scored event, got %+v", events)
	}
	if events[0].Detail != "orange scored: 0-1" {
		t.Errorf("unexpected detail %q", events[0].Detail)
	}
	if !events[0].ResetsPlan() {
		t.Error("goal should reset the plan")
	}
}

func TestDetectEvents_KickoffReset(t *testing.T) {
	w := baseWorld(100)
	prev := takeSnapshot(w)

	w.Ball.Position = model.Vec3{Z: model.BallRadius}
	w.Ball.Velocity = model.Vec3{}
	events := detectEvents(w, &prev)
	if len(events) != 1 || events[0].Kind != EventKickoffReset {
		t.Fatalf("expected kickoff_reset, got %+v", events)
	}

	// Still sitting on the spot next tick is not a new reset.
	again := takeSnapshot(w)
	w.Tick++
	if events := detectEvents(w, &again); len(events) != 0 {
		t.Errorf("expected no repeat event, got %+v", events)
	}
}

func TestDetectEvents_TouchedByOther(t *testing.T) {
	w := baseWorld(100)
	prev := takeSnapshot(w)

	w.Ball.LatestTouch = &model.Touch{Time: 2, Position: model.Vec3{X: 12, Y: 6, Z: model.BallRadius}, PlayerIndex: 1}
	events := detectEvents(w, &prev)
	if len(events) != 1 || events[0].Kind != EventTouchedByOther {
		t.Fatalf("expected touched_by_other, got %+v", events)
	}
}

func TestDetectEvents_OwnTouchIgnored(t *testing.T) {
	w := baseWorld(100)
	prev := takeSnapshot(w)

	w.Ball.LatestTouch = &model.Touch{Time: 2, Position: model.Vec3{X: 12, Y: 6, Z: model.BallRadius}, PlayerIndex: 0}
	if events := detectEvents(w, &prev); len(events) != 0 {
		t.Errorf("expected own touch to be ignored, got %+v", events)
	}
}

func TestDetectEvents_DemolishedAndRespawned(t *testing.T) {
	w := baseWorld(100)
	prev := takeSnapshot(w)

	w.Agents[0].Demolished = true
	events := detectEvents(w, &prev)
	if len(events) != 1 || events[0].Kind != EventDemolished {
		t.Fatalf("expected demolished, got %+v", events)
	}
	if events[0].ResetsPlan() {
		t.Error("demolition alone should not reset the plan")
	}

	dead := takeSnapshot(w)
	w.Agents[0].Demolished = false
	events = detectEvents(w, &dead)
	if len(events) != 1 || events[0].Kind != EventRespawned {
		t.Fatalf("expected respawned, got %+v", events)
	}
}

func TestFormatEvents(t *testing.T) {
	got := formatEvents([]Event{
		{Kind: EventGoalScored, Tick: 5, Detail: "blue scored: 1-0"},
		{Kind: EventKickoffReset, Tick: 5, Detail: "target back on the center spot"},
	})
	want := "[tick 5] goal_scored: blue scored: 1-0; [tick 5] kickoff_reset: target back on the center spot"
	if got != want {
		t.Errorf("formatEvents = %q, want %q", got, want)
	}
}
