// Package enumerate implements the optional downstream exhaustive-MDP
// tool: full forward expansion of every reachable state under every legal
// action, grounded on the original exhaustive_mdp.{h,cc}.
package enumerate

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/thomaskeller79/rddlc/internal/ast"
	"github.com/thomaskeller79/rddlc/internal/diag"
	"github.com/thomaskeller79/rddlc/internal/eval"
	"github.com/thomaskeller79/rddlc/internal/state"
	"github.com/thomaskeller79/rddlc/internal/task"
)

// Transition is one (state, action) -> outcome-distribution edge.
type Transition struct {
	FromID   int
	ActionID int
	ToIDs    []int
	Probs    []float64
	Reward   float64
}

// Result is the full output of Generate.
type Result struct {
	States              []state.State
	Transitions         []Transition
	NeverApplicable     []int // action IDs that never produced a transition
}

// Generate performs the exhaustive forward expansion from the task's
// initial state, assigning state IDs on first discovery via a worklist
// (the original's `open`), and recursively expanding each CPF's
// probability distribution to enumerate the full successor-state
// distribution per action (expandPDState). It aborts with an
// E-RESOURCE-001 fatal error if the number of discovered states exceeds
// maxStates, matching the original's hard cap.
func Generate(t *task.Task, maxStates int) (*Result, error) {
	ids := map[string]int{}
	var discovered []state.State
	var open []int

	key := stateKey(t.InitialState)
	ids[key] = 0
	initial := t.InitialState
	hashKeys, err := t.ComputeStateHashKeys(initial.Values)
	if err != nil {
		return nil, err
	}
	initial.HashKeys = hashKeys
	discovered = append(discovered, initial)
	open = append(open, 0)

	preconditionsByIndex := make(map[int]*eval.ActionPrecondition, len(t.Preconditions))
	for _, p := range t.Preconditions {
		preconditionsByIndex[p.Index] = p
	}

	var transitions []Transition
	applicableCount := make(map[int]int, len(t.ActionStates))

	for len(open) > 0 {
		id := open[0]
		open = open[1:]
		s := discovered[id]

		for _, action := range t.ActionStates {
			actionVector := fullActionVector(t, action)
			applicable, err := isApplicable(action, preconditionsByIndex, s.Values, s.HashKeys, actionVector)
			if err != nil {
				return nil, err
			}
			if !applicable {
				continue
			}

			successors, reward, err := expandState(t, s.Values, s.HashKeys, actionVector)
			if err != nil {
				return nil, err
			}

			toIDs := make([]int, 0, len(successors))
			probs := make([]float64, 0, len(successors))
			for _, ws := range successors {
				succKey := stateKey(ws.state)
				succID, ok := ids[succKey]
				if !ok {
					if len(discovered) >= maxStates {
						return nil, diag.New(diag.ErrStateSpaceExceeded,
							"reachable state count exceeded the configured limit of %d", maxStates)
					}
					succHashKeys, err := t.ComputeStateHashKeys(ws.state.Values)
					if err != nil {
						return nil, err
					}
					ws.state.HashKeys = succHashKeys
					succID = len(discovered)
					ids[succKey] = succID
					discovered = append(discovered, ws.state)
					open = append(open, succID)
				}
				toIDs = append(toIDs, succID)
				probs = append(probs, ws.prob)
			}

			transitions = append(transitions, Transition{
				FromID:   id,
				ActionID: action.Index,
				ToIDs:    toIDs,
				Probs:    probs,
				Reward:   reward,
			})
			applicableCount[action.Index]++
		}
	}

	var neverApplicable []int
	for _, action := range t.ActionStates {
		if applicableCount[action.Index] == 0 {
			neverApplicable = append(neverApplicable, action.Index)
		}
	}
	sort.Ints(neverApplicable)

	return &Result{States: discovered, Transitions: transitions, NeverApplicable: neverApplicable}, nil
}

// isApplicable checks the subset of preconditions an action's RelevantSACs
// marks as worth re-checking at runtime (those reading a fluent this action
// sets away from its no-op value) against the current state, mirroring the
// original's per-step precondition check ahead of expanding transitions.
func isApplicable(action state.ActionState, preconditionsByIndex map[int]*eval.ActionPrecondition, stateValues []float64, hashKeys []int64, actionVector []int) (bool, error) {
	for _, idx := range action.RelevantSACs {
		precondition, ok := preconditionsByIndex[idx]
		if !ok {
			continue
		}
		v, err := precondition.Evaluate(stateValues, actionVector, hashKeys[precondition.HashIndex])
		if err != nil {
			return false, diag.New(diag.ErrInvariantViolated, "evaluating precondition %d: %v", idx, err)
		}
		if v == 0 {
			return false, nil
		}
	}
	return true, nil
}

type weightedState struct {
	state state.State
	prob  float64
}

// expandState evaluates every CPF's outcome distribution under the given
// state and action, then recursively expands the resulting PDState into
// every concrete successor state and its joint probability — the same
// recursion structure as the original's expandState/expandPDState pair.
func expandState(t *task.Task, stateValues []float64, hashKeys []int64, actionVector []int) ([]weightedState, float64, error) {
	pd := state.PDState{Fluents: make([]state.DiscretePD, len(stateValues))}
	for _, cpf := range t.CPFs {
		var outcomes state.DiscretePD
		var err error
		if cpf.IsProbabilistic {
			// Discrete.Evaluate always errors by design: a probability
			// distribution has no single deterministic value, so its
			// outcomes are read straight off the formula rather than
			// through the cached scalar Evaluate path.
			outcomes, err = evaluateOutcomes(cpf.Formula, stateValues, actionVector)
		} else {
			var v float64
			v, err = cpf.Evaluate(stateValues, actionVector, hashKeys[cpf.HashIndex])
			outcomes = state.DiscretePD{Values: []float64{v}, Probabilities: []float64{1}}
		}
		if err != nil {
			return nil, 0, diag.New(diag.ErrInvariantViolated, "evaluating CPF %q: %v", cpf.Name, err)
		}
		pd.Fluents[cpf.HeadFluentIndex] = outcomes
	}
	for i := range pd.Fluents {
		if pd.Fluents[i].Values == nil {
			// fluents with no CPF (held fixed) keep their current value
			pd.Fluents[i] = state.DiscretePD{Values: []float64{stateValues[i]}, Probabilities: []float64{1}}
		}
	}

	reward, err := t.Reward.Evaluate(stateValues, actionVector, hashKeys[t.Reward.HashIndex])
	if err != nil {
		return nil, 0, diag.New(diag.ErrInvariantViolated, "evaluating reward: %v", err)
	}

	successors := expandPDState(pd, 0, state.NewState(len(stateValues)), 1.0)
	return successors, reward, nil
}

// expandPDState recurses over the fluents in index order, branching over
// every outcome of a non-deterministic fluent and collapsing deterministic
// ones inline, accumulating the joint probability.
func expandPDState(pd state.PDState, index int, partial state.State, prob float64) []weightedState {
	if index == len(pd.Fluents) {
		return []weightedState{{state: state.State{Values: append([]float64(nil), partial.Values...)}, prob: prob}}
	}
	fluent := pd.Fluents[index]
	var out []weightedState
	for i, v := range fluent.Values {
		partial.Values[index] = v
		out = append(out, expandPDState(pd, index+1, partial, prob*fluent.Probabilities[i])...)
	}
	return out
}

func evaluateOutcomes(formula ast.Expr, stateValues []float64, actionVector []int) (state.DiscretePD, error) {
	if discrete, ok := formula.(*ast.Discrete); ok {
		var values []float64
		var probs []float64
		for _, o := range discrete.Outcomes {
			v, err := o.Value.Evaluate(stateValues, actionVector)
			if err != nil {
				return state.DiscretePD{}, err
			}
			p, err := o.Prob.Evaluate(stateValues, actionVector)
			if err != nil {
				return state.DiscretePD{}, err
			}
			values = append(values, v)
			probs = append(probs, p)
		}
		return state.DiscretePD{Values: values, Probabilities: probs}, nil
	}
	v, err := formula.Evaluate(stateValues, actionVector)
	if err != nil {
		return state.DiscretePD{}, err
	}
	return state.DiscretePD{Values: []float64{v}, Probabilities: []float64{1}}, nil
}

func fullActionVector(t *task.Task, action state.ActionState) []int {
	total := 0
	for _, f := range t.ActionFluents {
		if f.Index+1 > total {
			total = f.Index + 1
		}
	}
	vec := make([]int, total)
	for i, f := range t.ActionFluents {
		vec[f.Index] = action.Values[i]
	}
	return vec
}

func stateKey(s state.State) string {
	parts := make([]string, len(s.Values))
	for i, v := range s.Values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// WriteText renders a Result in the original's output format:
// "<numStates>\n<numActions>\n" followed by one line per transition,
// "fromID actionID ( toID prob ) ... reward".
func WriteText(w io.Writer, r *Result, numActions int) error {
	if _, err := fmt.Fprintf(w, "%d\n%d\n", len(r.States), numActions); err != nil {
		return err
	}
	for _, tr := range r.Transitions {
		var b strings.Builder
		fmt.Fprintf(&b, "%d %d", tr.FromID, tr.ActionID)
		for i, to := range tr.ToIDs {
			fmt.Fprintf(&b, " ( %d %g )", to, tr.Probs[i])
		}
		fmt.Fprintf(&b, " %g\n", tr.Reward)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}
