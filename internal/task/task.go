// Package task implements the mutable task container the simplification
// pipeline operates on: the collections of fluents, CPFs, preconditions,
// actions and the reward, re-sorted and re-indexed after every
// simplification pass.
package task

import (
	"sort"
	"strconv"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"
	"github.com/thomaskeller79/rddlc/internal/diag"
	"github.com/thomaskeller79/rddlc/internal/eval"
	"github.com/thomaskeller79/rddlc/internal/state"
)

// Fluent describes one state or action fluent's static metadata.
type Fluent struct {
	Index      int
	Name       string
	DomainSize int
	NOOPValue  int // only meaningful for action fluents
}

// Task is the mutable container the simplifier rewrites in place across
// fixpoint iterations.
type Task struct {
	Horizon int

	StateFluents  []Fluent
	ActionFluents []Fluent

	CPFs          []*eval.CPF
	Reward        *eval.RewardCPF
	Preconditions []*eval.ActionPrecondition
	StaticSACs    []*eval.ActionPrecondition

	InitialState state.State
	ActionStates []state.ActionState
}

// SortCPFs orders CPFs topologically by their dependency DAG (a CPF for
// fluent i depends on fluent j if its formula reads fluent j), ties broken
// by head fluent index. This mirrors the original's RDDLTask::sortCPFs.
func (t *Task) SortCPFs() error {
	g := core.NewGraph(core.WithDirected(true))

	vertexID := func(fluentIndex int) string {
		return fluentIndexVertexID(fluentIndex)
	}

	byHead := make(map[int]*eval.CPF, len(t.CPFs))
	headIndices := make([]int, 0, len(t.CPFs))
	for _, cpf := range t.CPFs {
		byHead[cpf.HeadFluentIndex] = cpf
		headIndices = append(headIndices, cpf.HeadFluentIndex)
	}
	// vertices are added in increasing head-fluent-index order so that
	// ties in the topological order (fluents with no ordering edge
	// between them) fall back to index order, deterministically.
	sort.Ints(headIndices)
	for _, idx := range headIndices {
		if err := g.AddVertex(vertexID(idx)); err != nil {
			return diag.New(diag.ErrInvariantViolated, "adding CPF vertex: %v", err)
		}
	}
	for _, cpf := range t.CPFs {
		for _, dep := range cpf.DependentStateFluents {
			if _, ok := byHead[dep]; !ok {
				continue // depends on a fluent with no successor CPF (e.g. itself held fixed)
			}
			if dep == cpf.HeadFluentIndex {
				continue // self-dependency is not an ordering edge
			}
			if _, err := g.AddEdge(vertexID(dep), vertexID(cpf.HeadFluentIndex), 0); err != nil {
				return diag.New(diag.ErrInvariantViolated, "adding CPF dependency edge: %v", err)
			}
		}
	}

	order, err := dfs.TopologicalSort(g)
	if err != nil {
		return diag.New(diag.ErrCyclicDependency, "CPF dependency graph is cyclic: %v", err)
	}

	sorted := make([]*eval.CPF, 0, len(t.CPFs))
	seen := make(map[int]bool, len(t.CPFs))
	for _, id := range order {
		idx := vertexFluentIndex(id)
		if cpf, ok := byHead[idx]; ok && !seen[idx] {
			sorted = append(sorted, cpf)
			seen[idx] = true
		}
	}
	t.CPFs = sorted
	return nil
}

// SortActionFluents orders action fluents by index, the stable order the
// rest of the pipeline assumes once legal-action enumeration is done.
func (t *Task) SortActionFluents() {
	sort.Slice(t.ActionFluents, func(i, j int) bool {
		return t.ActionFluents[i].Index < t.ActionFluents[j].Index
	})
}

// SortActionStates orders the enumerated legal action states
// lexicographically over their Values, matching ActionState.Less, and
// reassigns each one's Index to its position in the sorted order.
func (t *Task) SortActionStates() {
	sort.Slice(t.ActionStates, func(i, j int) bool {
		return t.ActionStates[i].Less(t.ActionStates[j])
	})
	for i := range t.ActionStates {
		t.ActionStates[i].Index = i
	}
}

// Evaluables returns every Evaluable this task owns, in the fixed order
// (CPFs, then preconditions, then the reward) that both HashIndex
// assignment and state-fluent hash-key computation rely on to stay in
// sync with each other.
func (t *Task) Evaluables() []*eval.Evaluable {
	evaluables := make([]*eval.Evaluable, 0, len(t.CPFs)+len(t.Preconditions)+1)
	for _, cpf := range t.CPFs {
		evaluables = append(evaluables, cpf.Evaluable)
	}
	for _, p := range t.Preconditions {
		evaluables = append(evaluables, p.Evaluable)
	}
	evaluables = append(evaluables, t.Reward.Evaluable)
	return evaluables
}

// ComputeStateHashKeys returns the state-fluent hash-key vector for the
// given concrete state values, indexed by each evaluable's HashIndex — the
// vector state.State.HashKeys carries, computed once per discovered state
// rather than recomposed on every Evaluate/EvaluateKleene call.
func (t *Task) ComputeStateHashKeys(stateValues []float64) ([]int64, error) {
	evaluables := t.Evaluables()
	keys := make([]int64, len(evaluables))
	for _, e := range evaluables {
		k, err := e.StateFluentHashKey(stateValues)
		if err != nil {
			return nil, diag.New(diag.ErrInvariantViolated, "computing state-fluent hash key for evaluable %q: %v", e.Name, err)
		}
		if e.HashIndex < 0 || e.HashIndex >= len(keys) {
			return nil, diag.New(diag.ErrInvariantViolated, "evaluable %q has out-of-range hash index %d", e.Name, e.HashIndex)
		}
		keys[e.HashIndex] = k
	}
	return keys, nil
}

func fluentIndexVertexID(index int) string {
	return "f" + strconv.Itoa(index)
}

func vertexFluentIndex(id string) int {
	n, _ := strconv.Atoi(id[1:])
	return n
}
