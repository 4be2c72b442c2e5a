// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/thomaskeller79/rddlc/internal/compile"
	"github.com/thomaskeller79/rddlc/internal/diag"
	"github.com/thomaskeller79/rddlc/internal/enumerate"
	"github.com/thomaskeller79/rddlc/internal/eval"
	"github.com/thomaskeller79/rddlc/internal/taskio"
)

func main() {
	fdr := flag.Bool("fdr", false, "merge mutually exclusive boolean action fluents into finite-domain ones")
	vectorThreshold := flag.Int64("vector-threshold", eval.DefaultThresholds.VectorMax, "max hash-key space eligible for vector caching")
	mapThreshold := flag.Int64("map-threshold", eval.DefaultThresholds.MapMax, "max hash-key space eligible for map caching")
	enumeratePath := flag.String("enumerate", "", "write a full state-transition enumeration to this file")
	maxStates := flag.Int("max-states", 1<<20, "abort enumeration once this many reachable states are discovered")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: rddlc [flags] <task.json>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		color.Red("failed to open %s: %s", path, err)
		os.Exit(1)
	}
	defer f.Close()

	t, err := taskio.Decode(f)
	if err != nil {
		color.Red("failed to decode %s: %s", path, err)
		os.Exit(1)
	}

	reporter := diag.NewReporter(color.Output)

	opts := compile.Options{
		GenerateFDR:     *fdr,
		CacheThresholds: eval.Thresholds{VectorMax: *vectorThreshold, MapMax: *mapThreshold},
		Progress:        color.Output,
	}
	if err := compile.Compile(t, opts); err != nil {
		reportFatal(reporter, err)
		os.Exit(exitCodeFor(err))
	}

	if err := taskio.EncodeSummary(os.Stdout, t); err != nil {
		color.Red("failed to encode summary: %s", err)
		os.Exit(1)
	}
	color.Green("compiled %s successfully", path)

	if *enumeratePath != "" {
		out, err := os.Create(*enumeratePath)
		if err != nil {
			color.Red("failed to create %s: %s", *enumeratePath, err)
			os.Exit(1)
		}
		defer out.Close()

		result, err := enumerate.Generate(t, *maxStates)
		if err != nil {
			reportFatal(reporter, err)
			os.Exit(exitCodeFor(err))
		}
		if err := enumerate.WriteText(out, result, len(t.ActionStates)); err != nil {
			color.Red("failed to write %s: %s", *enumeratePath, err)
			os.Exit(1)
		}
		if len(result.NeverApplicable) > 0 {
			color.Yellow("actions never applicable: %v", result.NeverApplicable)
		}
		color.Green("wrote %d states to %s", len(result.States), *enumeratePath)
	}
}

func reportFatal(r *diag.Reporter, err error) {
	if fe, ok := err.(*diag.FatalError); ok {
		r.Fatal(fe)
		return
	}
	color.Red("%s", err)
}

func exitCodeFor(err error) int {
	if fe, ok := err.(*diag.FatalError); ok {
		return diag.ExitCode(fe)
	}
	return 1
}
