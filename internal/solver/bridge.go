// Package solver bridges the simplifier's legal-action search to a finite-
// domain constraint solver, translating between the pipeline's 0-indexed
// action-fluent values and the solver library's 1-indexed domains.
package solver

import (
	"context"
	"fmt"

	"github.com/gitrdm/gokanlogic/pkg/minikanren"
)

// RowPredicate reports whether a 0-indexed action-fluent assignment
// satisfies one posted constraint. assignment is parallel to the Bridge's
// ActionFluentIndices.
type RowPredicate func(assignment []int) bool

// Bridge wraps a stack of posted constraints over a fixed set of action
// fluents, offering the push/pop/addConstraint/hasSolution/getActionModel/
// invalidateActionModel operations the simplifier's legal-action
// enumeration needs.
//
// gokanlogic's FD domains are 1-indexed ("Values are 1-indexed integers in
// the range [1, MaxValue]", minikanren/domain.go). Every value that
// crosses into or out of the solver goes through toSolverRow/fromSolverRow
// below; nothing
// else in this package, or its callers, needs to know about the offset.
type Bridge struct {
	ActionFluentIndices []int
	domainSizes         []int // parallel to ActionFluentIndices, 0-indexed sizes

	layers [][]RowPredicate
}

// NewBridge builds a Bridge over the given action fluents. domainSizes
// maps an action fluent's index to its (0-indexed) domain size.
func NewBridge(actionFluentIndices []int, domainSizes map[int]int) (*Bridge, error) {
	sizes := make([]int, len(actionFluentIndices))
	for i, idx := range actionFluentIndices {
		d, ok := domainSizes[idx]
		if !ok || d <= 0 {
			return nil, fmt.Errorf("solver: missing or non-positive domain size for action fluent %d", idx)
		}
		sizes[i] = d
	}
	return &Bridge{
		ActionFluentIndices: append([]int(nil), actionFluentIndices...),
		domainSizes:         sizes,
		layers:              [][]RowPredicate{nil}, // base layer, never popped
	}, nil
}

// Push opens a new constraint layer (a decision level in DPLL terms).
func (b *Bridge) Push() {
	b.layers = append(b.layers, nil)
}

// Pop discards the most recently pushed layer and every constraint added
// to it.
func (b *Bridge) Pop() error {
	if len(b.layers) <= 1 {
		return fmt.Errorf("solver: cannot pop the base constraint layer")
	}
	b.layers = b.layers[:len(b.layers)-1]
	return nil
}

// AddConstraint posts a predicate-shaped constraint to the current (top)
// layer.
func (b *Bridge) AddConstraint(p RowPredicate) {
	top := len(b.layers) - 1
	b.layers[top] = append(b.layers[top], p)
}

// AddPreconditions posts one constraint per precondition, each built by
// translate.go from an expression evaluated against the current state.
func (b *Bridge) AddPreconditions(preconditions []RowPredicate) {
	for _, p := range preconditions {
		b.AddConstraint(p)
	}
}

// allowedRows enumerates the full cartesian product of action-fluent
// domains (0-indexed values) and keeps exactly the assignments that
// satisfy every predicate across every layer.
func (b *Bridge) allowedRows() [][]int {
	n := len(b.domainSizes)
	var rows [][]int
	assignment := make([]int, n)
	var recurse func(pos int)
	recurse = func(pos int) {
		if pos == n {
			candidate := append([]int(nil), assignment...)
			for _, layer := range b.layers {
				for _, p := range layer {
					if !p(candidate) {
						return
					}
				}
			}
			rows = append(rows, candidate)
			return
		}
		for v := 0; v < b.domainSizes[pos]; v++ {
			assignment[pos] = v
			recurse(pos + 1)
		}
	}
	recurse(0)
	return rows
}

// HasSolution reports whether at least one action assignment satisfies
// every posted constraint, by building a Table constraint from the
// currently allowed rows and asking the solver for one solution.
func (b *Bridge) HasSolution(ctx context.Context) (bool, error) {
	_, ok, err := b.solve(ctx)
	return ok, err
}

// GetActionModel returns one 0-indexed action assignment satisfying every
// posted constraint, or ok=false if none exists.
func (b *Bridge) GetActionModel(ctx context.Context) (assignment []int, ok bool, err error) {
	return b.solve(ctx)
}

// InvalidateActionModel posts a blocking clause excluding exactly the
// given assignment from the current (top) layer, the DPLL-style no-good
// used to force the next GetActionModel call to find a different model.
func (b *Bridge) InvalidateActionModel(assignment []int) {
	excluded := append([]int(nil), assignment...)
	b.AddConstraint(func(candidate []int) bool {
		for i, v := range candidate {
			if v != excluded[i] {
				return true
			}
		}
		return false
	})
}

func (b *Bridge) solve(ctx context.Context) ([]int, bool, error) {
	rows := b.allowedRows()
	if len(rows) == 0 {
		return nil, false, nil
	}

	n := len(b.domainSizes)
	if n == 0 {
		return nil, true, nil
	}

	model := minikanren.NewModel()
	vars := make([]*minikanren.FDVariable, n)
	for i, size := range b.domainSizes {
		vars[i] = model.IntVar(1, size, fmt.Sprintf("a%d", b.ActionFluentIndices[i]))
	}

	solverRows := make([][]int, len(rows))
	for i, row := range rows {
		solverRows[i] = toSolverRow(row)
	}
	tbl, err := minikanren.NewTable(vars, solverRows)
	if err != nil {
		return nil, false, fmt.Errorf("solver: building table constraint: %w", err)
	}
	model.AddConstraint(tbl)

	solutions, err := minikanren.Solve(model, 1)
	if err != nil {
		return nil, false, fmt.Errorf("solver: solve failed: %w", err)
	}
	if len(solutions) == 0 {
		return nil, false, nil
	}
	return fromSolverRow(solutions[0]), true, nil
}

func toSolverRow(row []int) []int {
	out := make([]int, len(row))
	for i, v := range row {
		out[i] = v + 1 // 0-indexed -> gokanlogic's 1-indexed domains
	}
	return out
}

func fromSolverRow(row []int) []int {
	out := make([]int, len(row))
	for i, v := range row {
		out[i] = v - 1 // gokanlogic's 1-indexed domains -> 0-indexed
	}
	return out
}
