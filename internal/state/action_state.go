package state

// ActionState is one ground assignment of every action fluent together
// with the indices of state-action constraints that actually constrain it
// (the original's relevantSACs), and a stable index assigned once legal
// action enumeration completes.
type ActionState struct {
	Values       []int
	Index        int
	RelevantSACs []int
	noopValues   []int
}

// NewActionState builds an ActionState from the given values and records
// which SAC indices are relevant to it.
func NewActionState(values []int, relevantSACs []int) ActionState {
	return ActionState{Values: append([]int(nil), values...), RelevantSACs: append([]int(nil), relevantSACs...)}
}

// WithNOOPValues attaches the "does nothing" value for each action fluent
// (e.g. 0 for a boolean, or a fluent-specific sentinel for a finite-domain
// action fluent), the reference IsNOOP compares against.
func (a ActionState) WithNOOPValues(noopValues []int) ActionState {
	a.noopValues = append([]int(nil), noopValues...)
	return a
}

// IsNOOP reports whether every action fluent in this action state equals
// its own "does nothing" value.
func (a ActionState) IsNOOP() bool {
	if len(a.noopValues) != len(a.Values) {
		return false
	}
	for i, v := range a.Values {
		if v != a.noopValues[i] {
			return false
		}
	}
	return true
}

// Less implements the original ActionState::operator<, a plain
// lexicographic comparison over the Values slice.
func (a ActionState) Less(other ActionState) bool {
	for i := 0; i < len(a.Values) && i < len(other.Values); i++ {
		if a.Values[i] != other.Values[i] {
			return a.Values[i] < other.Values[i]
		}
	}
	return len(a.Values) < len(other.Values)
}
