package diag

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

// Reporter formats pipeline progress and fatal errors. Progress lines track
// the per-phase trace the simplifier fixpoint prints (phase name, iteration,
// elapsed time); fatal errors print a coded, colored line and carry the
// process to its exit code.
type Reporter struct {
	out io.Writer

	progress *color.Color
	warning  *color.Color
	fatal    *color.Color
}

// NewReporter builds a Reporter writing to out.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{
		out:      out,
		progress: color.New(color.FgGreen),
		warning:  color.New(color.FgYellow),
		fatal:    color.New(color.FgRed, color.Bold),
	}
}

// Phase reports the start of a simplification phase.
func (r *Reporter) Phase(name string, iteration int) {
	r.progress.Fprintf(r.out, "[phase] %s (iteration %d)\n", name, iteration)
}

// PhaseDone reports the completion of a simplification phase along with how
// long it took and whether it produced a change.
func (r *Reporter) PhaseDone(name string, elapsed time.Duration, changed bool) {
	r.progress.Fprintf(r.out, "[phase] %s done in %s (changed=%t)\n", name, elapsed, changed)
}

// Warning reports a non-fatal condition.
func (r *Reporter) Warning(format string, args ...any) {
	r.warning.Fprintf(r.out, "warning: %s\n", fmt.Sprintf(format, args...))
}

// Fatal formats and prints a FatalError. Callers are responsible for
// terminating the process afterward with the exit code appropriate to err's
// category (see ExitCode).
func (r *Reporter) Fatal(err *FatalError) {
	r.fatal.Fprintf(r.out, "error[%s]: %s\n", err.Code, err.Message)
	if desc := Describe(err.Code); desc != "" {
		fmt.Fprintf(r.out, "  %s\n", desc)
	}
	for _, note := range err.Notes {
		fmt.Fprintf(r.out, "  note: %s\n", note)
	}
}

// ExitCode maps a fatal error's category to the process exit status.
func ExitCode(err *FatalError) int {
	switch CategoryOf(err.Code) {
	case CategoryStructural:
		return 2
	case CategoryInfeasible:
		return 3
	case CategorySolver:
		return 4
	case CategoryResource:
		return 5
	case CategoryAssertion:
		return 6
	default:
		return 1
	}
}
