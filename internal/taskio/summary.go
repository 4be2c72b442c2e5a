package taskio

import (
	"encoding/json"
	"io"

	"github.com/thomaskeller79/rddlc/internal/task"
)

// Summary is the compiled-task report encoded back out after Compile:
// enough to sanity-check the result without re-deriving it from the full
// expression trees.
type Summary struct {
	Horizon           int `json:"horizon"`
	StateFluentCount  int `json:"stateFluentCount"`
	ActionFluentCount int `json:"actionFluentCount"`
	CPFCount          int `json:"cpfCount"`
	PreconditionCount int `json:"preconditionCount"`
	StaticSACCount    int `json:"staticSacCount"`
	LegalActionCount  int `json:"legalActionCount"`
}

// Summarize builds a Summary from a compiled Task.
func Summarize(t *task.Task) Summary {
	return Summary{
		Horizon:           t.Horizon,
		StateFluentCount:  len(t.StateFluents),
		ActionFluentCount: len(t.ActionFluents),
		CPFCount:          len(t.CPFs),
		PreconditionCount: len(t.Preconditions),
		StaticSACCount:    len(t.StaticSACs),
		LegalActionCount:  len(t.ActionStates),
	}
}

// EncodeSummary writes a Task's Summary as JSON to w.
func EncodeSummary(w io.Writer, t *task.Task) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Summarize(t))
}
