package simplify

import (
	"github.com/thomaskeller79/rddlc/internal/ast"
	"github.com/thomaskeller79/rddlc/internal/diag"
	"github.com/thomaskeller79/rddlc/internal/state"
	"github.com/thomaskeller79/rddlc/internal/task"
)

// ApproximateDomains is approximateDomains: a Kleene (bound-set) forward
// reachability fixpoint from the initial state over every enumerated
// legal action, over-approximating the set of values each state fluent
// can ever take. The resulting set sizes become the fluents' recorded
// domain sizes, letting later passes (and the hash-key scheme) size their
// caches to the smallest sound bound instead of an unbounded real domain.
type ApproximateDomains struct{}

func (*ApproximateDomains) Name() string { return "approximate-domains" }
func (*ApproximateDomains) Description() string {
	return "computes a Kleene-state reachability fixpoint to bound each state fluent's domain"
}

const maxDomainApproximationIterations = 10000

func (a *ApproximateDomains) Apply(t *task.Task) (bool, error) {
	if len(t.ActionStates) == 0 {
		return false, nil
	}

	current := state.FromState(t.InitialState)
	actionVectors := buildActionVectors(t)

	for iter := 0; ; iter++ {
		if iter > maxDomainApproximationIterations {
			return false, diag.New(diag.ErrStateSpaceExceeded,
				"domain approximation did not converge within %d iterations", maxDomainApproximationIterations)
		}

		grown := false
		next := make([]ast.KleeneValue, len(current.Fluents))
		copy(next, current.Fluents)

		for _, actionVector := range actionVectors {
			for _, cpf := range t.CPFs {
				outcome, err := cpf.Formula.EvaluateKleene(current.Fluents, actionVector)
				if err != nil {
					return false, diag.New(diag.ErrInvariantViolated,
						"evaluating CPF %q under Kleene semantics: %v", cpf.Name, err)
				}
				before := len(next[cpf.HeadFluentIndex])
				next[cpf.HeadFluentIndex] = next[cpf.HeadFluentIndex].Merge(outcome)
				if len(next[cpf.HeadFluentIndex]) != before {
					grown = true
				}
			}
		}

		current.Fluents = next
		if !grown {
			break
		}
	}

	changed := false
	for i := range t.StateFluents {
		size := len(current.Fluents[i])
		if size > 0 && size != t.StateFluents[i].DomainSize {
			t.StateFluents[i].DomainSize = size
			changed = true
		}
	}
	return changed, nil
}

func buildActionVectors(t *task.Task) [][]int {
	total := totalActionFluents(t)
	vectors := make([][]int, len(t.ActionStates))
	for i, as := range t.ActionStates {
		vec := make([]int, total)
		for j, f := range t.ActionFluents {
			vec[f.Index] = as.Values[j]
		}
		vectors[i] = vec
	}
	return vectors
}
