// Package simplify implements the simplification fixpoint: formula
// simplification, inapplicable/relevant action-fluent pruning, optional
// finite-domain action-fluent (FDR) generation, legal-action enumeration,
// and domain approximation, run in the order and with the restart
// semantics of the original RDDL parser's Simplifier::simplify.
package simplify

import (
	"time"

	"github.com/thomaskeller79/rddlc/internal/diag"
	"github.com/thomaskeller79/rddlc/internal/task"
)

// Pass is one phase of the simplification pipeline. Apply reports whether
// it changed the task, the signal the outer fixpoint uses to decide
// whether to restart from the first pass.
type Pass interface {
	Name() string
	Description() string
	Apply(t *task.Task) (bool, error)
}

// Pipeline runs its passes in order, restarting from the first pass
// whenever any pass reports a change, until a full pass over every phase
// produces no change anywhere — the same "continueSimplification" restart
// behavior as the original's outer loop, rather than a simple single pass
// per phase.
type Pipeline struct {
	passes   []Pass
	Reporter *diag.Reporter
}

// NewPipeline builds the standard phase order. generateFDR selects whether
// the optional finite-domain action-fluent generation phase runs, mirroring
// the original's generateFDRActionFluents flag.
func NewPipeline(generateFDR bool) *Pipeline {
	passes := []Pass{
		&SimplifyFormulas{},
		&ComputeInapplicableActionFluents{},
		&ComputeRelevantActionFluents{},
	}
	if generateFDR {
		passes = append(passes, &DetermineFiniteDomainActionFluents{})
	}
	passes = append(passes,
		&ComputeActions{},
		&ApproximateDomains{},
	)
	return &Pipeline{passes: passes}
}

// Run executes the fixpoint to completion.
func (p *Pipeline) Run(t *task.Task) error {
	for iteration := 0; ; iteration++ {
		anyChanged := false
		for _, pass := range p.passes {
			start := time.Now()
			if p.Reporter != nil {
				p.Reporter.Phase(pass.Name(), iteration)
			}
			changed, err := pass.Apply(t)
			if err != nil {
				return err
			}
			if p.Reporter != nil {
				p.Reporter.PhaseDone(pass.Name(), time.Since(start), changed)
			}
			if changed {
				anyChanged = true
				break // restart from the first pass, as the original does
			}
		}
		if !anyChanged {
			break
		}
	}
	return nil
}
