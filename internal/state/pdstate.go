package state

import "sort"

// DiscretePD is one fluent's probability distribution over its possible
// successor values: parallel Values/Probabilities slices, index-aligned.
type DiscretePD struct {
	Values        []float64
	Probabilities []float64
}

// IsDeterministic reports whether this distribution has a single outcome,
// i.e. whether the fluent's successor value is already known.
func (d DiscretePD) IsDeterministic() bool { return len(d.Values) == 1 }

// DeterministicValue returns the single outcome's value. Callers must
// check IsDeterministic first.
func (d DiscretePD) DeterministicValue() float64 { return d.Values[0] }

// PDState is a state where each slot may still be an undetermined discrete
// distribution, awaiting expansion into concrete successor states.
type PDState struct {
	Fluents []DiscretePD
}

// NewPDState builds a PDState of deterministic fluents from a concrete
// State, the constructor used when seeding expansion from a known state.
func NewPDState(s State) PDState {
	fluents := make([]DiscretePD, len(s.Values))
	for i, v := range s.Values {
		fluents[i] = DiscretePD{Values: []float64{v}, Probabilities: []float64{1}}
	}
	return PDState{Fluents: fluents}
}

// NumberOfProbabilisticStateFluents counts the fluents whose distribution
// is not yet deterministic.
func (p PDState) NumberOfProbabilisticStateFluents() int {
	n := 0
	for _, f := range p.Fluents {
		if !f.IsDeterministic() {
			n++
		}
	}
	return n
}

// Less implements PDStateSort: forward lexicographic comparison, low index
// to high. This is the opposite direction of State.Less and is kept that
// way deliberately, matching the asymmetry between the two comparators.
func (p PDState) Less(other PDState) bool {
	for i := 0; i < len(p.Fluents); i++ {
		a, b := p.Fluents[i], other.Fluents[i]
		if !a.IsDeterministic() || !b.IsDeterministic() {
			continue
		}
		if a.DeterministicValue() != b.DeterministicValue() {
			return a.DeterministicValue() < b.DeterministicValue()
		}
	}
	return false
}

// SortPDStates sorts a slice of PDState in place using PDState.Less.
func SortPDStates(states []PDState) {
	sort.Slice(states, func(i, j int) bool { return states[i].Less(states[j]) })
}
