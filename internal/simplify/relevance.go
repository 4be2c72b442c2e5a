package simplify

import "github.com/thomaskeller79/rddlc/internal/task"

// ComputeRelevantActionFluents is computeRelevantActionFluents: an action
// fluent that is never read by any precondition, static SAC, CPF, or the
// reward has no effect on legality or dynamics and is dropped.
type ComputeRelevantActionFluents struct{}

func (*ComputeRelevantActionFluents) Name() string { return "compute-relevant-action-fluents" }
func (*ComputeRelevantActionFluents) Description() string {
	return "drops action fluents that no precondition, CPF or the reward ever reads"
}

func (c *ComputeRelevantActionFluents) Apply(t *task.Task) (bool, error) {
	used := map[int]bool{}
	recordDeps := func(pos, neg []int) {
		for _, idx := range pos {
			used[idx] = true
		}
		for _, idx := range neg {
			used[idx] = true
		}
	}

	for _, p := range t.Preconditions {
		recordDeps(p.PositiveActionDeps, p.NegativeActionDeps)
	}
	for _, p := range t.StaticSACs {
		recordDeps(p.PositiveActionDeps, p.NegativeActionDeps)
	}
	for _, cpf := range t.CPFs {
		recordDeps(cpf.PositiveActionDeps, cpf.NegativeActionDeps)
	}
	recordDeps(t.Reward.PositiveActionDeps, t.Reward.NegativeActionDeps)

	var kept []task.Fluent
	changed := false
	for _, f := range t.ActionFluents {
		if used[f.Index] {
			kept = append(kept, f)
		} else {
			changed = true
		}
	}
	t.ActionFluents = kept
	return changed, nil
}
