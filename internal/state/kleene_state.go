package state

import "github.com/thomaskeller79/rddlc/internal/ast"

// KleeneState is a state where every slot holds a set of possible values
// (a ast.KleeneValue) instead of a single concrete value; it represents
// the current over-approximation of reachable values during domain
// approximation.
type KleeneState struct {
	Fluents []ast.KleeneValue
}

// NewKleeneState returns a KleeneState of the given size with every slot
// empty.
func NewKleeneState(size int) KleeneState {
	return KleeneState{Fluents: make([]ast.KleeneValue, size)}
}

// FromState lifts a concrete State into a KleeneState where every slot is
// a singleton set.
func FromState(s State) KleeneState {
	fluents := make([]ast.KleeneValue, len(s.Values))
	for i, v := range s.Values {
		fluents[i] = ast.NewKleeneValue(v)
	}
	return KleeneState{Fluents: fluents}
}

// Equal reports whether k and other hold the same value sets in every slot.
func (k KleeneState) Equal(other KleeneState) bool {
	if len(k.Fluents) != len(other.Fluents) {
		return false
	}
	for i := range k.Fluents {
		if !k.Fluents[i].Equal(other.Fluents[i]) {
			return false
		}
	}
	return true
}

// MergeInto merges other into k in place (the original's
// KleeneState::operator|=), returning whether any slot's set grew.
func (k KleeneState) MergeInto(other KleeneState) bool {
	changed := false
	for i := range k.Fluents {
		before := len(k.Fluents[i])
		k.Fluents[i] = k.Fluents[i].Merge(other.Fluents[i])
		if len(k.Fluents[i]) != before {
			changed = true
		}
	}
	return changed
}
