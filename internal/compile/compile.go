// Package compile wires the simplifier, the solver bridge and the task
// container into the single entry point the CLI and the exhaustive-MDP
// enumerator both call.
package compile

import (
	"io"

	"github.com/thomaskeller79/rddlc/internal/diag"
	"github.com/thomaskeller79/rddlc/internal/eval"
	"github.com/thomaskeller79/rddlc/internal/hashkey"
	"github.com/thomaskeller79/rddlc/internal/simplify"
	"github.com/thomaskeller79/rddlc/internal/task"
)

// Options configures one compilation run.
type Options struct {
	GenerateFDR     bool
	CacheThresholds eval.Thresholds
	Progress        io.Writer
}

// Compile runs the simplification fixpoint to completion on t, mutating it
// in place, then initializes every Evaluable's hash keys and caches from
// the final dependency footprints. It is the sole entry point the CLI and
// the exhaustive-MDP enumerator use to turn a freshly loaded Task into one
// ready for forward simulation.
func Compile(t *task.Task, opts Options) error {
	if err := t.SortCPFs(); err != nil {
		return err
	}

	pipeline := simplify.NewPipeline(opts.GenerateFDR)
	if opts.Progress != nil {
		pipeline.Reporter = diag.NewReporter(opts.Progress)
	}
	if err := pipeline.Run(t); err != nil {
		return err
	}

	t.SortActionFluents()

	thresholds := opts.CacheThresholds
	if thresholds == (eval.Thresholds{}) {
		thresholds = eval.DefaultThresholds
	}
	if err := initializeHashKeys(t, thresholds); err != nil {
		return err
	}
	return nil
}

func initializeHashKeys(t *task.Task, thresholds eval.Thresholds) error {
	stateDomainSizes := make(map[int]int, len(t.StateFluents))
	for _, f := range t.StateFluents {
		stateDomainSizes[f.Index] = f.DomainSize
	}
	actionDomainSizes := make(map[int]int, len(t.ActionFluents))
	for _, f := range t.ActionFluents {
		actionDomainSizes[f.Index] = f.DomainSize
	}

	evaluables := t.Evaluables()
	for i, e := range evaluables {
		e.HashIndex = i
		scheme, err := hashkey.Build(e.DependentStateFluents, stateDomainSizes, e.ActionDependencies(), actionDomainSizes)
		if err != nil {
			return diag.New(diag.ErrCacheOverflow, "building hash-key scheme for evaluable %d (%s): %v", i, e.Name, err)
		}
		e.InitializeHashKeys(scheme, thresholds)
	}
	return nil
}
