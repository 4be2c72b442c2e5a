package diag

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, CategoryStructural, CategoryOf(ErrUndefinedFluent))
	assert.Equal(t, CategoryInfeasible, CategoryOf(ErrNoLegalAction))
	assert.Equal(t, CategorySolver, CategoryOf(ErrSolverTimeout))
	assert.Equal(t, CategoryResource, CategoryOf(ErrStateSpaceExceeded))
	assert.Equal(t, CategoryAssertion, CategoryOf(ErrInvariantViolated))
	assert.Equal(t, Category(""), CategoryOf("bogus"))
}

func TestDescribeKnownAndUnknown(t *testing.T) {
	require.NotEmpty(t, Describe(ErrCyclicDependency))
	assert.Empty(t, Describe("does-not-exist"))
}

func TestFatalErrorFormatting(t *testing.T) {
	err := New(ErrPreconditionConst0, "precondition %d simplified to false", 3)
	require.EqualError(t, err, "E-INFEASIBLE-002: precondition 3 simplified to false")

	err.WithNote("check SAC source index 3")
	require.Len(t, err.Notes, 1)
}

func TestReporterFatalWritesCodeAndNotes(t *testing.T) {
	var buf bytes.Buffer
	color.NoColor = true
	r := NewReporter(&buf)
	err := New(ErrSolverNoModel, "solver reported unsat").WithNote("check static SACs")
	r.Fatal(err)

	out := buf.String()
	assert.Contains(t, out, "E-SOLVER-003")
	assert.Contains(t, out, "solver reported unsat")
	assert.Contains(t, out, "check static SACs")
}

func TestExitCodePerCategory(t *testing.T) {
	assert.Equal(t, 2, ExitCode(New(ErrUndefinedFluent, "x")))
	assert.Equal(t, 3, ExitCode(New(ErrNoLegalAction, "x")))
	assert.Equal(t, 4, ExitCode(New(ErrSolverTimeout, "x")))
	assert.Equal(t, 5, ExitCode(New(ErrStateSpaceExceeded, "x")))
	assert.Equal(t, 6, ExitCode(New(ErrInvariantViolated, "x")))
}
