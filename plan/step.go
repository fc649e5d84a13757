package plan

import "github.com/nstehr/volley/volley-core/assess"

// Bundle is everything a Step may read on one tick.
type Bundle struct {
	Situation *assess.Situation
}

// Step is one unit of per-tick behavior. Each Step owns its progress state;
// it is created with its Plan and discarded with it.
type Step interface {
	// Output returns this tick's control action. false means the step has
	// nothing more to do.
	Output(b Bundle) (Output, bool)
	// ShouldAbort is checked every tick before Output.
	ShouldAbort(b Bundle) bool
	// CanInterrupt reports whether a more urgent Plan may preempt this step.
	CanInterrupt() bool
	// Situation is a short description for logs and telemetry.
	Situation() string
}

// NestedPlanStep delegates to a child Plan instead of steering directly.
// It stays active while the child is active, and Abort is still checked on
// every tick so the child can be dropped early.
type NestedPlanStep struct {
	Label string
	// Abort cancels the parent and the child. Nil never aborts.
	Abort func(b Bundle) bool
	// Direct, when it yields, takes precedence over the child for the tick
	// and discards it.
	Direct func(b Bundle) (Output, bool)
	// Spawn builds the child plan. A nil plan means there is nothing to do.
	Spawn func(b Bundle) *Plan

	child *Plan
}

func (s *NestedPlanStep) Output(b Bundle) (Output, bool) {
	if s.Direct != nil {
		if out, ok := s.Direct(b); ok {
			s.child = nil
			return out, true
		}
	}
	if s.child == nil {
		if s.Spawn == nil {
			return Output{}, false
		}
		s.child = s.Spawn(b)
		if s.child == nil {
			return Output{}, false
		}
	}
	return s.child.Output(b)
}

func (s *NestedPlanStep) ShouldAbort(b Bundle) bool {
	return s.Abort != nil && s.Abort(b)
}

func (s *NestedPlanStep) CanInterrupt() bool {
	return s.child == nil || s.child.CanInterrupt()
}

func (s *NestedPlanStep) Situation() string {
	if s.child != nil {
		return s.Label + " > " + s.child.Situation()
	}
	return s.Label
}

// Child is the delegated plan, if one has been spawned.
func (s *NestedPlanStep) Child() *Plan { return s.child }
