package tactics

import (
	"strings"
	"testing"

	"github.com/nstehr/volley/volley-core/assess"
	"github.com/nstehr/volley/volley-core/plan"
	"github.com/nstehr/volley/volley-core/tuning"
)

func TestDefaultRulesCompile(t *testing.T) {
	engine, err := NewEngine(DefaultRules(), nil)
	if err != nil {
		t.Fatalf("NewEngine(DefaultRules()) failed: %v", err)
	}
	rules := engine.Rules()
	if len(rules) != 8 {
		t.Errorf("expected 8 rules, got %d", len(rules))
	}
	for i := 1; i < len(rules); i++ {
		if rules[i].Priority > rules[i-1].Priority {
			t.Errorf("rules not sorted by priority: %s (%d) > %s (%d)",
				rules[i].Name, rules[i].Priority,
				rules[i-1].Name, rules[i-1].Priority)
		}
	}
	if rules[0].Name != "kickoff" {
		t.Errorf("first rule = %q, want kickoff", rules[0].Name)
	}
}

func TestSwapKeepsOldRulesOnCompileError(t *testing.T) {
	engine, err := NewEngine(DefaultRules(), nil)
	if err != nil {
		t.Fatal(err)
	}
	bad := []*Rule{{Name: "broken", ConditionSrc: `NoSuchHelper()`}}
	if err := engine.Swap(bad); err == nil {
		t.Fatal("expected compile error")
	}
	if got := len(engine.Rules()); got != 8 {
		t.Errorf("rules after failed swap = %d, want 8", got)
	}
}

func TestNewEngineLeavesCallerOrderAlone(t *testing.T) {
	build := func(Env, *Builder) *plan.Plan { return nil }
	rules := []*Rule{
		{Name: "low", Priority: 1, ConditionSrc: `true`, Build: build},
		{Name: "high", Priority: 9, ConditionSrc: `true`, Build: build},
	}
	engine, err := NewEngine(rules, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rules[0].Name != "low" || rules[1].Name != "high" {
		t.Errorf("caller slice reordered to %s, %s", rules[0].Name, rules[1].Name)
	}
	if got := engine.Rules()[0].Name; got != "high" {
		t.Errorf("first engine rule = %q, want high", got)
	}
	if err := engine.Swap(rules); err != nil {
		t.Fatal(err)
	}
	if rules[0].Name != "low" {
		t.Errorf("Swap reordered the caller slice")
	}
}

func TestThreatConditionFollowsDoctrine(t *testing.T) {
	find := func(rules []*Rule) string {
		for _, r := range rules {
			if r.Name == "threat" {
				return r.ConditionSrc
			}
		}
		t.Fatal("no threat rule")
		return ""
	}
	calm := Doctrine{Name: "calm", Aggression: 0, Caution: 0.5}
	def := find(DefaultRules())
	low := find(CompileDoctrine(calm, tuning.Default().Tactics))
	if def == low {
		t.Errorf("aggression had no effect on threat condition %q", def)
	}
	if !strings.Contains(def, "HasInitiative()") {
		t.Errorf("threat condition %q does not require initiative", def)
	}
}

func TestUrgentSkipsLowerPosture(t *testing.T) {
	engine, err := NewEngine(DefaultRules(), nil)
	if err != nil {
		t.Fatal(err)
	}
	s := &assess.Situation{OffWheels: true, ScoredOnThreat: nil}
	active := plan.New(plan.Kickoff, fakeStep{})

	if _, _, ok := engine.Urgent(Env{S: s, Active: active}, testBuilder()); ok {
		t.Error("landing must not preempt a kickoff plan")
	}
	p, rule, ok := engine.Urgent(Env{S: s}, testBuilder())
	if !ok {
		t.Fatal("expected landing rule to fire with nothing active")
	}
	if rule.Name != "landing" || p.Posture != plan.Landing {
		t.Errorf("fired %s with posture %v, want landing", rule.Name, p.Posture)
	}
}

func TestEnvCanInterrupt(t *testing.T) {
	env := Env{S: &assess.Situation{}, Active: plan.New(plan.Defensive, fakeStep{})}
	tests := []struct {
		posture string
		want    bool
	}{
		{"save", true},
		{"defensive", false},
		{"neutral", false},
		{"bogus", false},
	}
	for _, tt := range tests {
		if got := env.CanInterrupt(tt.posture); got != tt.want {
			t.Errorf("CanInterrupt(%q) = %v, want %v", tt.posture, got, tt.want)
		}
	}
}
