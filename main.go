// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// callpath-ensemble merges independently recorded pprof profiles into one
// unified call graph with per-run metrics and prints a per-node summary.
package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"runtime"
	"slices"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/callpath/ensemble/callgraph"
	"github.com/callpath/ensemble/ensemble"
	liblog "github.com/callpath/ensemble/log"
	"github.com/callpath/ensemble/metrics"
	"github.com/callpath/ensemble/pprofreader"
	"github.com/callpath/ensemble/vc"
)

type exitCode int

const (
	exitSuccess exitCode = 0
	exitFailure exitCode = 1

	// Go 'flag' package calls os.Exit(2) on flag parse errors, if ExitOnError is set
	exitParseError exitCode = 2
)

func main() {
	os.Exit(int(mainWithExitCode()))
}

func mainWithExitCode() exitCode {
	args, err := parseArgs()
	if err != nil {
		return parseError("Failure to parse arguments: %v", err)
	}

	if args.version {
		fmt.Printf("%s\n", vc.Version())
		return exitSuccess
	}

	if args.verboseMode {
		log.SetLevel(log.DebugLevel)
		liblog.SetLevel(slog.LevelDebug)
		// Dump the arguments in debug mode.
		args.dump()
	}

	if len(args.inputs) == 0 {
		return parseError("No profile files given")
	}
	if args.top <= 0 {
		return parseError("Invalid -top value %d", args.top)
	}

	// Profiles are independent until the fold starts, so read them in
	// parallel. Ids are assigned by argument position to keep reruns stable.
	profiles := make([]*ensemble.Profile, len(args.inputs))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range args.inputs {
		g.Go(func() error {
			p, err := pprofreader.ReadFile(path, metrics.ProfileID(i))
			if err != nil {
				return err
			}
			profiles[i] = p
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		log.Errorf("Failed to read profiles: %v", err)
		return exitFailure
	}

	ens, err := ensemble.Unify(profiles)
	if err != nil {
		log.Errorf("Failed to unify profiles: %v", err)
		return exitFailure
	}
	log.Debugf("Ensemble %s: %d nodes, %d rows, %d union steps, %d reindex passes",
		ens.ID, ens.Graph.NumNodes(), ens.Metrics.NumRows(),
		ens.Stats.UnionSteps, ens.Stats.ReindexPasses)

	if args.validate {
		violations := ensemble.Validate(ens)
		for _, v := range violations {
			log.Warnf("Validator: %s", v)
		}
		if len(violations) == 0 {
			log.Debug("Validator: ensemble is consistent")
		}
	}

	printSummary(ens, args.metric, args.top)
	return exitSuccess
}

func parseError(msg string, args ...any) exitCode {
	log.Errorf(msg, args...)
	return exitParseError
}

// metricColumn picks the column to rank by: the named one if given,
// otherwise the first metric column of the table.
func metricColumn(t *metrics.Table, name string) *metrics.Column {
	if name != "" {
		if c, ok := t.ColumnByName(name); ok && c.Kind() == metrics.FloatKind {
			return c
		}
		return nil
	}
	for _, c := range t.Columns() {
		if c.Kind() == metrics.FloatKind {
			return c
		}
	}
	return nil
}

func printSummary(ens *ensemble.Ensemble, metricName string, top int) {
	col := metricColumn(ens.Metrics, metricName)
	if col == nil {
		log.Warnf("No metric column %q in the merged table", metricName)
		return
	}

	// Sum the metric per node across all profiles.
	totals := make([]float64, ens.Graph.NumNodes())
	for i, k := range ens.Metrics.Keys() {
		if v := col.FloatAt(i); !math.IsNaN(v) {
			totals[k.Node] += v
		}
	}
	order := make([]callgraph.NodeID, ens.Graph.NumNodes())
	for i := range order {
		order[i] = callgraph.NodeID(i)
	}
	slices.SortStableFunc(order, func(x, y callgraph.NodeID) int {
		switch {
		case totals[x] > totals[y]:
			return -1
		case totals[x] < totals[y]:
			return 1
		default:
			return int(x) - int(y)
		}
	})

	fmt.Printf("%16s  %-9s %5s  %s\n", col.Name, "type", "depth", "name")
	for i, id := range order {
		if i == top {
			break
		}
		frame := ens.Graph.Frame(id)
		fmt.Printf("%16.0f  %-9s %5d  %s\n",
			totals[id], frame.Type(), ens.Graph.Depth(id), frame.Name())
	}
}
