package tactics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"testing"

	"github.com/nstehr/volley/volley-core/assess"
	"github.com/nstehr/volley/volley-core/model"
	"github.com/nstehr/volley/volley-core/plan"
	"github.com/nstehr/volley/volley-core/steps"
	"github.com/nstehr/volley/volley-core/telemetry"
	"github.com/nstehr/volley/volley-core/tuning"
)

type fakeStep struct{}

func (fakeStep) Output(plan.Bundle) (plan.Output, bool) { return plan.Output{Throttle: 1}, true }
func (fakeStep) ShouldAbort(plan.Bundle) bool           { return false }
func (fakeStep) CanInterrupt() bool                     { return true }
func (fakeStep) Situation() string                      { return "fake" }

type captureSink struct{ records []telemetry.Record }

func (c *captureSink) Publish(_ context.Context, r telemetry.Record) {
	c.records = append(c.records, r)
}

func testBuilder() *Builder {
	return &Builder{Tuning: tuning.Default(), Log: slog.New(slog.DiscardHandler)}
}

func newTestAdvisor(t *testing.T, opts ...Option) *Advisor {
	t.Helper()
	a, err := NewAdvisor(tuning.Default(), DefaultDoctrine(), opts...)
	if err != nil {
		t.Fatalf("NewAdvisor: %v", err)
	}
	return a
}

func agent(index int, team model.Team, pos model.Vec3, facing model.Vec2) model.AgentState {
	return model.AgentState{
		Index:           index,
		Team:            team,
		Time:            10,
		Position:        pos,
		Orientation:     model.FacingOrientation(facing),
		Boost:           50,
		HasWheelContact: true,
	}
}

func kickoffWorld() model.World {
	return model.World{
		Tick:   1,
		Time:   10,
		Agents: []model.AgentState{agent(0, model.Blue, model.Vec3{Y: -40, Z: model.BaseAgentZ}, model.Vec2{Y: 1})},
		Ball:   model.TargetState{Position: model.Vec3{Z: model.BallRadius}},
	}
}

func TestTickGoesForKickoff(t *testing.T) {
	sink := &captureSink{}
	a := newTestAdvisor(t, WithSink(sink))

	if _, err := a.Tick(context.Background(), kickoffWorld()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	p := a.Plan()
	if p == nil || p.Posture != plan.Kickoff {
		t.Fatalf("plan = %+v, want kickoff posture", p)
	}
	if _, ok := p.Steps()[0].(*steps.GoForKickoffStep); !ok {
		t.Errorf("first step = %T, want *steps.GoForKickoffStep", p.Steps()[0])
	}
	if len(sink.records) != 1 {
		t.Fatalf("published %d records, want 1", len(sink.records))
	}
	if r := sink.records[0]; r.Reason != "kickoff" || r.PlanID != p.ID {
		t.Errorf("record reason %q plan %q, want kickoff %q", r.Reason, r.PlanID, p.ID)
	}
}

func TestTickKeepsPlanWithoutReason(t *testing.T) {
	sink := &captureSink{}
	a := newTestAdvisor(t, WithSink(sink))
	w := kickoffWorld()
	if _, err := a.Tick(context.Background(), w); err != nil {
		t.Fatal(err)
	}
	first := a.Plan().ID
	w.Tick, w.Time = 2, w.Time+1.0/60
	if _, err := a.Tick(context.Background(), w); err != nil {
		t.Fatal(err)
	}
	if a.Plan().ID != first {
		t.Errorf("plan replaced on second tick")
	}
	if got := sink.records[1]; got.Transition() {
		t.Errorf("second record is a transition: %q", got.Reason)
	}
}

func TestTickSavesWhenRivalAbsent(t *testing.T) {
	a := newTestAdvisor(t)
	w := model.World{
		Tick:   1,
		Time:   10,
		Agents: []model.AgentState{agent(0, model.Blue, model.Vec3{X: 40, Y: -20, Z: model.BaseAgentZ}, model.Vec2{Y: -1})},
		Ball: model.TargetState{
			Position: model.Vec3{Y: -70, Z: model.BallRadius},
			Velocity: model.Vec3{Y: -40},
		},
	}
	if _, err := a.Tick(context.Background(), w); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	p := a.Plan()
	if p.Posture != plan.Save {
		t.Fatalf("posture = %v, want save", p.Posture)
	}
	if p.IsFirstViable() || len(p.Steps()) != 1 {
		t.Errorf("expected a single sequential save step, got %d steps (firstViable=%v)", len(p.Steps()), p.IsFirstViable())
	}
	if _, ok := p.Steps()[0].(*steps.WhatASaveStep); !ok {
		t.Errorf("step = %T, want *steps.WhatASaveStep", p.Steps()[0])
	}
}

func TestTickWithoutSelfFails(t *testing.T) {
	a := newTestAdvisor(t)
	w := kickoffWorld()
	w.Self = 3
	out, err := a.Tick(context.Background(), w)
	if err == nil {
		t.Fatal("expected error for missing self")
	}
	if out != plan.Idle() {
		t.Errorf("output on error = %+v, want idle", out)
	}
}

func TestResetDropsPlan(t *testing.T) {
	a := newTestAdvisor(t)
	if _, err := a.Tick(context.Background(), kickoffWorld()); err != nil {
		t.Fatal(err)
	}
	p := a.Plan()
	a.Reset("goal scored")
	if a.Plan() != nil {
		t.Error("plan survived reset")
	}
	if p.State() != plan.Aborted {
		t.Errorf("old plan state = %v, want aborted", p.State())
	}
}

func TestSetDoctrine(t *testing.T) {
	a := newTestAdvisor(t)
	d := Doctrine{Name: "Press", Aggression: 0.8, Caution: 0.3}
	if err := a.SetDoctrine(d); err != nil {
		t.Fatalf("SetDoctrine: %v", err)
	}
	if a.Doctrine().Name != "Press" {
		t.Errorf("doctrine = %q, want Press", a.Doctrine().Name)
	}
}

func TestMakeFreshPlan(t *testing.T) {
	a := newTestAdvisor(t)
	me := agent(0, model.Blue, model.Vec3{Y: -30}, model.Vec2{Y: 1})

	tests := []struct {
		name      string
		s         assess.Situation
		posture   plan.Posture
		firstStep any
	}{
		{
			name:      "supporting role",
			s:         assess.Situation{Me: me},
			posture:   plan.Neutral,
			firstStep: &steps.GetBoostStep{},
		},
		{
			name:      "low boost",
			s:         assess.Situation{Me: withBoost(me, 5), HasInitiative: true},
			posture:   plan.Neutral,
			firstStep: &steps.GetBoostStep{},
		},
		{
			name:      "generous shot",
			s:         assess.Situation{Me: me, HasInitiative: true, GenerousShotAngle: true},
			posture:   plan.Offensive,
			firstStep: &steps.FlexibleKickStep{},
		},
		{
			name:      "winning race",
			s:         assess.Situation{Me: me, HasInitiative: true, ThreatExists: true, Advantage: 1},
			posture:   plan.Defensive,
			firstStep: &steps.ChallengeStep{},
		},
		{
			name: "rival lined up",
			s: assess.Situation{Me: me, HasInitiative: true, ThreatExists: true,
				Advantage: -1, RivalApproachError: 0.2, DistanceTargetIsBehindUs: -10},
			posture:   plan.Defensive,
			firstStep: &steps.GetOnDefenseStep{},
		},
		{
			name: "rival astray",
			s: assess.Situation{Me: me, HasInitiative: true, ThreatExists: true,
				Advantage: -1, RivalApproachError: math.Pi},
			posture:   plan.Neutral,
			firstStep: &steps.GetOnOffenseStep{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := a.MakeFreshPlan(&tt.s)
			if p.Posture != tt.posture {
				t.Errorf("posture = %v, want %v", p.Posture, tt.posture)
			}
			if got, want := typeName(p.Steps()[0]), typeName(tt.firstStep); got != want {
				t.Errorf("first step = %s, want %s", got, want)
			}
		})
	}
}

func withBoost(a model.AgentState, boost float64) model.AgentState {
	a.Boost = boost
	return a
}

func typeName(v any) string { return fmt.Sprintf("%T", v) }
