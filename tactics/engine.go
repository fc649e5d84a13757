package tactics

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/nstehr/volley/volley-core/plan"
)

// Engine evaluates urgency rules in priority order. The first rule whose
// condition holds and whose posture may interrupt the active plan wins.
type Engine struct {
	mu    sync.RWMutex
	rules []*Rule
	log   *slog.Logger
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule, log *slog.Logger) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{rules: compiled, log: log}, nil
}

// Urgent returns the plan of the first firing rule, or false when nothing
// is more urgent than the active plan.
func (e *Engine) Urgent(env Env, b *Builder) (*plan.Plan, *Rule, bool) {
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	for _, r := range rules {
		result, err := vm.Run(r.program, env)
		if err != nil {
			e.log.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}
		match, ok := result.(bool)
		if !ok || !match {
			continue
		}
		if !r.Posture.CanInterrupt(env.Active) {
			continue
		}
		p := r.Build(env, b)
		if p == nil {
			continue
		}
		e.log.Debug("rule fired", "rule", r.Name, "priority", r.Priority, "posture", p.Posture)
		return p, r, true
	}
	return nil, nil, false
}

// Swap replaces the rule set. Compiles first; if compilation fails the old
// rules remain active.
func (e *Engine) Swap(newRules []*Rule) error {
	compiled, err := compileRules(newRules)
	if err != nil {
		return err
	}
	names := make([]string, len(compiled))
	for i, r := range compiled {
		names[i] = r.Name
	}
	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()
	e.log.Info("rule set swapped", "count", len(compiled), "rules", names)
	return nil
}

// Rules returns the active rules in evaluation order.
func (e *Engine) Rules() []*Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]*Rule(nil), e.rules...)
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		if r.Build == nil {
			return nil, fmt.Errorf("rule %q has no build func", r.Name)
		}
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sorted := append([]*Rule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return sorted, nil
}
