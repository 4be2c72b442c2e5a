package simplify

import (
	"context"

	"github.com/thomaskeller79/rddlc/internal/diag"
	"github.com/thomaskeller79/rddlc/internal/solver"
	"github.com/thomaskeller79/rddlc/internal/state"
	"github.com/thomaskeller79/rddlc/internal/task"
)

// ComputeActions is computeActions: enumerates every action-fluent
// assignment consistent with the static (state-independent) constraints
// via the CSP solver bridge, recording which per-action preconditions are
// relevant to each (to be checked at runtime against the current state,
// rather than baked into a state-specific enumeration here).
type ComputeActions struct{}

func (*ComputeActions) Name() string { return "compute-actions" }
func (*ComputeActions) Description() string {
	return "enumerates legal action-fluent assignments via the constraint solver"
}

func (c *ComputeActions) Apply(t *task.Task) (bool, error) {
	indices := make([]int, len(t.ActionFluents))
	domainSizes := make(map[int]int, len(t.ActionFluents))
	noop := map[int]int{}
	for i, f := range t.ActionFluents {
		indices[i] = f.Index
		domainSizes[f.Index] = f.DomainSize
		noop[f.Index] = f.NOOPValue
	}

	bridge, err := solver.NewBridge(indices, domainSizes)
	if err != nil {
		return false, diag.New(diag.ErrSolverRejected, "building action solver: %v", err)
	}

	for _, sac := range t.StaticSACs {
		bridge.AddConstraint(solver.Translate(sac.Formula, nil, indices, totalActionFluents(t)))
	}

	ctx := context.Background()
	var found []state.ActionState
	for {
		model, ok, err := bridge.GetActionModel(ctx)
		if err != nil {
			return false, diag.New(diag.ErrSolverTimeout, "enumerating legal actions: %v", err)
		}
		if !ok {
			break
		}
		relevant := relevantPreconditions(t, indices, model, noop)
		as := state.NewActionState(model, relevant)
		noopValues := make([]int, len(indices))
		for i, idx := range indices {
			noopValues[i] = noop[idx]
		}
		found = append(found, as.WithNOOPValues(noopValues))
		bridge.InvalidateActionModel(model)
	}

	if len(found) == 0 {
		return false, diag.New(diag.ErrNoLegalAction, "no action-fluent assignment satisfies the static constraints")
	}

	changed := len(found) != len(t.ActionStates)
	t.ActionStates = found
	t.SortActionStates()
	return changed, nil
}

func totalActionFluents(t *task.Task) int {
	max := -1
	for _, f := range t.ActionFluents {
		if f.Index > max {
			max = f.Index
		}
	}
	return max + 1
}

// relevantPreconditions returns the indices of preconditions that read at
// least one action fluent this assignment sets away from its no-op value —
// the ones worth re-checking at runtime for this particular action.
func relevantPreconditions(t *task.Task, indices []int, model []int, noop map[int]int) []int {
	active := map[int]bool{}
	for i, idx := range indices {
		if model[i] != noop[idx] {
			active[idx] = true
		}
	}
	var relevant []int
	for _, p := range t.Preconditions {
		for _, idx := range p.ActionDependencies() {
			if active[idx] {
				relevant = append(relevant, p.Index)
				break
			}
		}
	}
	return relevant
}
