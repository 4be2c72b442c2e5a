// Package state implements the state representations the pipeline and the
// downstream enumerator operate over: concrete states, probability-
// distribution states awaiting outcome expansion, Kleene (bound-set)
// states used during domain approximation, and action states.
package state

import "sort"

// State is a fully ground assignment of every state fluent to a real value.
// HashKeys, when populated, is a vector indexed by each evaluable's
// HashIndex holding that evaluable's precomposed state-fluent hash key for
// this state — computed once per discovered state so repeated Evaluate/
// EvaluateKleene calls against different actions do not recompose it.
type State struct {
	Values   []float64
	HashKeys []int64
}

// NewState returns a State of the given size with every slot zeroed.
func NewState(size int) State {
	return State{Values: make([]float64, size)}
}

// Less implements the original's StateSort: lexicographic comparison from
// the *last* index backward, not the first. This is preserved exactly as
// the original does it even though it reads unusually; nothing requires it
// to match PDState's forward comparator.
func (s State) Less(other State) bool {
	for i := len(s.Values) - 1; i >= 0; i-- {
		if s.Values[i] != other.Values[i] {
			return s.Values[i] < other.Values[i]
		}
	}
	return false
}

// Equal reports whether s and other hold identical values.
func (s State) Equal(other State) bool {
	if len(s.Values) != len(other.Values) {
		return false
	}
	for i := range s.Values {
		if s.Values[i] != other.Values[i] {
			return false
		}
	}
	return true
}

// SortStates sorts a slice of State in place using State.Less.
func SortStates(states []State) {
	sort.Slice(states, func(i, j int) bool { return states[i].Less(states[j]) })
}
