package tactics

import (
	"github.com/expr-lang/expr/vm"

	"github.com/nstehr/volley/volley-core/plan"
)

// BuildFunc assembles the replacement Plan when a rule fires.
type BuildFunc func(env Env, b *Builder) *plan.Plan

// Rule is one urgency predicate: a condition, the posture it preempts with,
// and how to build the new plan.
type Rule struct {
	Name         string       // human-readable identifier
	Priority     int          // higher = evaluated first
	Posture      plan.Posture // must be able to interrupt the active plan
	ConditionSrc string       // expr source
	program      *vm.Program  // compiled bytecode
	Build        BuildFunc
}
