package simplify

import (
	"strconv"

	"github.com/katalvlaran/lvlath/core"
	"github.com/thomaskeller79/rddlc/internal/ast"
	"github.com/thomaskeller79/rddlc/internal/diag"
	"github.com/thomaskeller79/rddlc/internal/eval"
	"github.com/thomaskeller79/rddlc/internal/task"
)

// DetermineFiniteDomainActionFluents is the optional FDR (finite-domain
// representation) generation step: boolean action fluents proven mutually
// exclusive by a static or per-action constraint are merged into a single
// finite-domain action fluent whose values enumerate "fluent i is the one
// set" plus the all-false assignment, after the original's
// GreedyFDRGenerator mutex-clique approach. Candidate groups are the
// connected components of the detected-mutex graph; a component is merged
// only when every pair inside it is itself a detected mutex pair (so it is
// a clique), and any other component is left unmerged.
type DetermineFiniteDomainActionFluents struct{}

func (*DetermineFiniteDomainActionFluents) Name() string { return "determine-fdr-action-fluents" }
func (*DetermineFiniteDomainActionFluents) Description() string {
	return "merges pairwise-mutex boolean action fluents into finite-domain action fluents"
}

func (d *DetermineFiniteDomainActionFluents) Apply(t *task.Task) (bool, error) {
	boolFluents := booleanActionFluents(t)
	if len(boolFluents) < 2 {
		return false, nil
	}

	mutex := detectMutexPairs(t, boolFluents)
	if len(mutex) == 0 {
		return false, nil
	}

	components, err := connectedComponents(boolFluents, mutex)
	if err != nil {
		return false, err
	}

	changed := false
	for _, component := range components {
		if len(component) < 2 || !allPairwiseMutex(component, mutex) {
			continue
		}
		mergeIntoFDRFluent(t, component)
		changed = true
	}
	return changed, nil
}

func booleanActionFluents(t *task.Task) []int {
	var out []int
	for _, f := range t.ActionFluents {
		if f.DomainSize == 2 {
			out = append(out, f.Index)
		}
	}
	return out
}

type mutexPair struct{ a, b int }

// detectMutexPairs scans static SACs and preconditions for the shape
// ~(a & b) or (~a | ~b), the ground form of "at most one of a, b".
func detectMutexPairs(t *task.Task, candidates []int) map[mutexPair]bool {
	isCandidate := map[int]bool{}
	for _, c := range candidates {
		isCandidate[c] = true
	}

	pairs := map[mutexPair]bool{}
	record := func(formula ast.Expr) {
		a, b, ok := matchMutexShape(formula)
		if !ok || !isCandidate[a] || !isCandidate[b] {
			return
		}
		if a > b {
			a, b = b, a
		}
		pairs[mutexPair{a, b}] = true
	}

	for _, p := range t.StaticSACs {
		record(p.Formula)
	}
	for _, p := range t.Preconditions {
		record(p.Formula)
	}
	return pairs
}

func matchMutexShape(formula ast.Expr) (int, int, bool) {
	switch f := formula.(type) {
	case *ast.Negation:
		if conj, ok := f.Operand.(*ast.Conjunction); ok && len(conj.Operands) == 2 {
			a, aOK := conj.Operands[0].(*ast.ActionFluentRef)
			b, bOK := conj.Operands[1].(*ast.ActionFluentRef)
			if aOK && bOK {
				return a.Index, b.Index, true
			}
		}
	case *ast.Disjunction:
		if len(f.Operands) == 2 {
			a, aOK := asNegatedActionFluent(f.Operands[0])
			b, bOK := asNegatedActionFluent(f.Operands[1])
			if aOK && bOK {
				return a, b, true
			}
		}
	}
	return 0, 0, false
}

func asNegatedActionFluent(e ast.Expr) (int, bool) {
	neg, ok := e.(*ast.Negation)
	if !ok {
		return 0, false
	}
	ref, ok := neg.Operand.(*ast.ActionFluentRef)
	if !ok {
		return 0, false
	}
	return ref.Index, true
}

func connectedComponents(fluents []int, mutex map[mutexPair]bool) ([][]int, error) {
	g := core.NewGraph()
	vid := func(idx int) string { return strconv.Itoa(idx) }
	for _, idx := range fluents {
		if err := g.AddVertex(vid(idx)); err != nil {
			return nil, diag.New(diag.ErrInvariantViolated, "adding mutex-graph vertex: %v", err)
		}
	}
	for pair := range mutex {
		if _, err := g.AddEdge(vid(pair.a), vid(pair.b), 0); err != nil {
			return nil, diag.New(diag.ErrInvariantViolated, "adding mutex-graph edge: %v", err)
		}
	}

	visited := map[string]bool{}
	var components [][]int
	for _, idx := range fluents {
		start := vid(idx)
		if visited[start] {
			continue
		}
		var component []int
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			n, _ := strconv.Atoi(id)
			component = append(component, n)
			neighbors, err := g.NeighborIDs(id)
			if err != nil {
				return nil, diag.New(diag.ErrInvariantViolated, "walking mutex graph: %v", err)
			}
			for _, nb := range neighbors {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		components = append(components, component)
	}
	return components, nil
}

func allPairwiseMutex(component []int, mutex map[mutexPair]bool) bool {
	for i := 0; i < len(component); i++ {
		for j := i + 1; j < len(component); j++ {
			a, b := component[i], component[j]
			if a > b {
				a, b = b, a
			}
			if !mutex[mutexPair{a, b}] {
				return false
			}
		}
	}
	return true
}

// mergeIntoFDRFluent replaces a set of pairwise-mutex boolean action
// fluents with a single finite-domain action fluent whose domain
// enumerates "fluent i of the group is set" for each member, plus one
// extra value for "none of them" (the group's collective no-op), then
// rewrites every surviving CPF, precondition, static SAC and the reward
// formula so no ActionFluentRef is left pointing at a now-deleted index.
func mergeIntoFDRFluent(t *task.Task, component []int) {
	merged := map[int]bool{}
	for _, idx := range component {
		merged[idx] = true
	}
	var kept []task.Fluent
	for _, f := range t.ActionFluents {
		if !merged[f.Index] {
			kept = append(kept, f)
		}
	}
	newIndex := nextFluentIndex(t.ActionFluents)
	kept = append(kept, task.Fluent{
		Index:      newIndex,
		Name:       "fdr-group",
		DomainSize: len(component) + 1,
		NOOPValue:  len(component), // the "none set" value
	})
	t.ActionFluents = kept

	rewriteActionReferences(t, component, newIndex)
}

func nextFluentIndex(fluents []task.Fluent) int {
	max := -1
	for _, f := range fluents {
		if f.Index > max {
			max = f.Index
		}
	}
	return max + 1
}

// rewriteActionReferences substitutes every ActionFluentRef to a merged
// fluent with a comparison against the new finite-domain fluent's value
// ("fluent i of the group is set" becomes "fdr fluent == position of i"),
// across every formula the task owns. Without this, a surviving reference
// to a deleted fluent's index leaves a stale PositiveActionDeps/
// NegativeActionDeps entry that later fails hashkey.Build with "no domain
// size registered for fluent %d" once the merged fluent's old index has no
// entry in the post-merge action-domain-size table.
func rewriteActionReferences(t *task.Task, component []int, newIndex int) {
	positions := make(map[int]int, len(component))
	for i, idx := range component {
		positions[idx] = i
	}
	newRef := &ast.ActionFluentRef{Index: newIndex, Name: "fdr-group"}
	rewrite := func(idx int) ast.Expr {
		return &ast.Comparison{Op: "==", Left: newRef, Right: &ast.Constant{Value: float64(positions[idx])}}
	}
	merged := map[int]bool{}
	for _, idx := range component {
		merged[idx] = true
	}

	for i, cpf := range t.CPFs {
		if rewritten, changed := rewriteFormula(cpf.Formula, merged, rewrite); changed {
			t.CPFs[i] = eval.NewCPF(cpf.HeadFluentIndex, cpf.Name, rewritten)
		}
	}
	for i, p := range t.Preconditions {
		if rewritten, changed := rewriteFormula(p.Formula, merged, rewrite); changed {
			t.Preconditions[i] = eval.NewActionPrecondition(p.Index, rewritten)
		}
	}
	for i, p := range t.StaticSACs {
		if rewritten, changed := rewriteFormula(p.Formula, merged, rewrite); changed {
			t.StaticSACs[i] = eval.NewActionPrecondition(p.Index, rewritten)
		}
	}
	if rewritten, changed := rewriteFormula(t.Reward.Formula, merged, rewrite); changed {
		t.Reward = eval.NewRewardCPF(rewritten)
	}
}

// rewriteFormula collects every ActionFluentRef node in formula whose index
// is in merged (by the node's own identity, not a freshly built stand-in),
// builds the Replacements map Simplify needs, and returns the substituted
// formula. The returned bool is false when no matching reference was found,
// so callers can skip reconstructing an Evaluable that did not change.
func rewriteFormula(formula ast.Expr, merged map[int]bool, rewrite func(int) ast.Expr) (ast.Expr, bool) {
	refs := ast.Replacements{}
	collectMergedActionRefs(formula, merged, refs, rewrite)
	if len(refs) == 0 {
		return formula, false
	}
	return formula.Simplify(refs), true
}

func collectMergedActionRefs(e ast.Expr, merged map[int]bool, refs ast.Replacements, rewrite func(int) ast.Expr) {
	switch n := e.(type) {
	case *ast.ActionFluentRef:
		if merged[n.Index] {
			refs[n] = rewrite(n.Index)
		}
	case *ast.Negation:
		collectMergedActionRefs(n.Operand, merged, refs, rewrite)
	case *ast.Conjunction:
		for _, op := range n.Operands {
			collectMergedActionRefs(op, merged, refs, rewrite)
		}
	case *ast.Disjunction:
		for _, op := range n.Operands {
			collectMergedActionRefs(op, merged, refs, rewrite)
		}
	case *ast.Comparison:
		collectMergedActionRefs(n.Left, merged, refs, rewrite)
		collectMergedActionRefs(n.Right, merged, refs, rewrite)
	case *ast.Arithmetic:
		collectMergedActionRefs(n.Left, merged, refs, rewrite)
		collectMergedActionRefs(n.Right, merged, refs, rewrite)
	case *ast.IfThenElse:
		collectMergedActionRefs(n.Cond, merged, refs, rewrite)
		collectMergedActionRefs(n.Then, merged, refs, rewrite)
		collectMergedActionRefs(n.Else, merged, refs, rewrite)
	case *ast.Discrete:
		for _, o := range n.Outcomes {
			collectMergedActionRefs(o.Value, merged, refs, rewrite)
			collectMergedActionRefs(o.Prob, merged, refs, rewrite)
		}
	}
}
