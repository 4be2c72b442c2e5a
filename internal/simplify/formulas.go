package simplify

import (
	"reflect"

	"github.com/thomaskeller79/rddlc/internal/ast"
	"github.com/thomaskeller79/rddlc/internal/diag"
	"github.com/thomaskeller79/rddlc/internal/eval"
	"github.com/thomaskeller79/rddlc/internal/task"
)

// SimplifyFormulas is simplifyFormulas: simplifyCPFs (looped to a local
// fixpoint), then the reward CPF, then simplifyPreconditions.
type SimplifyFormulas struct{}

func (*SimplifyFormulas) Name() string { return "simplify-formulas" }
func (*SimplifyFormulas) Description() string {
	return "folds constants through every CPF, the reward, and the state-action constraints"
}

func (s *SimplifyFormulas) Apply(t *task.Task) (bool, error) {
	changed := false

	cpfChanged, err := simplifyCPFs(t)
	if err != nil {
		return false, err
	}
	changed = changed || cpfChanged

	rewardSimplified := t.Reward.Formula.Simplify(ast.Replacements{})
	if !reflect.DeepEqual(rewardSimplified, t.Reward.Formula) {
		t.Reward.Formula = rewardSimplified
		changed = true
	}

	precChanged, err := simplifyPreconditions(t)
	if err != nil {
		return false, err
	}
	changed = changed || precChanged

	if changed {
		if err := t.SortCPFs(); err != nil {
			return false, err
		}
	}
	return changed, nil
}

// simplifyCPFs loops to a local fixed point: on each scan, any CPF whose
// formula simplifies to the constant equal to its head fluent's current
// initial value is dropped (the fluent is thereafter held at that
// constant and substituted into every remaining formula), and the scan
// restarts. This mirrors the original's inner while loop in
// Simplifier::simplifyCPFs, which is distinct from (nested inside) the
// pipeline's own outer fixpoint.
func simplifyCPFs(t *task.Task) (bool, error) {
	changed := false
	for {
		replacements := ast.Replacements{}
		restart := false
		for i, cpf := range t.CPFs {
			simplified := cpf.Formula.Simplify(ast.Replacements{})
			if !reflect.DeepEqual(simplified, cpf.Formula) {
				changed = true
			}
			cpf.Formula = simplified
			constant, ok := simplified.(*ast.Constant)
			if !ok {
				continue
			}
			initialValue := t.InitialState.Values[cpf.HeadFluentIndex]
			if constant.Value != initialValue {
				continue
			}
			t.CPFs = append(t.CPFs[:i:i], t.CPFs[i+1:]...)
			replacements[headRef(t, cpf.HeadFluentIndex)] = constant
			changed = true
			restart = true
			break
		}
		if len(replacements) > 0 {
			applyReplacements(t, replacements)
		}
		if !restart {
			break
		}
	}
	return changed, nil
}

// headRef returns the canonical StateFluentRef node used to reference the
// given fluent index across the whole task, so Simplify's identity-keyed
// Replacements map can find every occurrence.
func headRef(t *task.Task, index int) ast.Expr {
	for _, fluent := range t.StateFluents {
		if fluent.Index == index {
			return &ast.StateFluentRef{Index: index, Name: fluent.Name}
		}
	}
	return &ast.StateFluentRef{Index: index}
}

func applyReplacements(t *task.Task, replacements ast.Replacements) {
	for _, cpf := range t.CPFs {
		cpf.Formula = cpf.Formula.Simplify(replacements)
	}
	t.Reward.Formula = t.Reward.Formula.Simplify(replacements)
	for _, p := range t.Preconditions {
		p.Formula = p.Formula.Simplify(replacements)
	}
}

// simplifyPreconditions simplifies every state-action constraint, splits a
// simplified top-level Conjunction into separate constraints (so later
// passes can classify and drop each independently), aborts with an
// E-INFEASIBLE-002 fatal error if one simplifies to the constant false,
// and drops any that simplify to a nonzero constant (trivially satisfied).
func simplifyPreconditions(t *task.Task) (bool, error) {
	changed := false
	var kept []*eval.ActionPrecondition
	for _, p := range t.Preconditions {
		simplified := p.Formula.Simplify(ast.Replacements{})
		if !reflect.DeepEqual(simplified, p.Formula) {
			changed = true
		}
		if constant, ok := simplified.(*ast.Constant); ok {
			if constant.Value == 0 {
				return false, diag.New(diag.ErrPreconditionConst0,
					"state-action constraint %d simplified to the constant false", p.Index)
			}
			changed = true
			continue // trivially satisfied, drop it
		}
		if conj, ok := simplified.(*ast.Conjunction); ok {
			changed = true
			for _, operand := range conj.Operands {
				kept = append(kept, eval.NewActionPrecondition(len(kept), operand))
			}
			continue
		}
		p.Formula = simplified
		kept = append(kept, p)
	}
	t.Preconditions = kept
	return changed, nil
}
