package simplify

import (
	"github.com/thomaskeller79/rddlc/internal/eval"
	"github.com/thomaskeller79/rddlc/internal/task"
)

// ComputeInapplicableActionFluents is computeInapplicableActionFluents:
// classify every state-action constraint, dropping action fluents that a
// constraint trivially forbids outright, moving state-independent
// constraints to the static set, dropping state-dependent constraints that
// read no action fluent, and keeping the rest as per-action preconditions
// with freshly assigned indices.
type ComputeInapplicableActionFluents struct{}

func (*ComputeInapplicableActionFluents) Name() string { return "compute-inapplicable-action-fluents" }
func (*ComputeInapplicableActionFluents) Description() string {
	return "classifies state-action constraints and removes action fluents a constraint trivially forbids"
}

func (c *ComputeInapplicableActionFluents) Apply(t *task.Task) (bool, error) {
	changed := false

	inapplicable := map[int]bool{}
	var staticSACs []*eval.ActionPrecondition
	var preconditions []*eval.ActionPrecondition

	for _, p := range t.Preconditions {
		stateIndependent := len(p.DependentStateFluents) == 0

		if stateIndependent {
			if forbidden, ok := eval.ForbidsSingleActionFluent(p.Formula); ok {
				inapplicable[forbidden] = true
				changed = true
				continue
			}
			staticSACs = append(staticSACs, p)
			continue
		}

		if p.IsActionIndependent() {
			// a pure state constraint: no action fluent to check, so it
			// plays no role in legal-action enumeration.
			changed = true
			continue
		}

		preconditions = append(preconditions, p)
	}

	if len(inapplicable) > 0 {
		var kept []task.Fluent
		for _, f := range t.ActionFluents {
			if !inapplicable[f.Index] {
				kept = append(kept, f)
			}
		}
		t.ActionFluents = kept
	}

	for i, p := range preconditions {
		if p.Index != i {
			changed = true
		}
		p.Index = i
	}

	t.StaticSACs = append(t.StaticSACs, staticSACs...)
	t.Preconditions = preconditions

	return changed, nil
}
