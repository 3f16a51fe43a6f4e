// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/peterbourgon/ff/v3"
	log "github.com/sirupsen/logrus"
)

const (
	// Default values for CLI flags
	defaultArgTop      = 20
	defaultArgMetric   = ""
	defaultArgValidate = true
)

// Help strings for command line arguments
var (
	configFileHelp = "Path to a file holding additional flags, one per line."
	metricHelp     = "Metric column to rank nodes by. " +
		"Defaults to the first metric column of the merged table."
	topHelp         = "Number of top nodes to print."
	validateHelp    = "Run the ensemble validator after merging and report every violation."
	verboseModeHelp = "Enable verbose logging and debugging capabilities."
	versionHelp     = "Show version."
)

type arguments struct {
	metric      string
	top         int
	validate    bool
	verboseMode bool
	version     bool

	// inputs are the profile files to merge, in fold order.
	inputs []string

	fs *flag.FlagSet
}

func parseArgs() (*arguments, error) {
	var args arguments

	fs := flag.NewFlagSet("callpath-ensemble", flag.ExitOnError)

	// Please keep the parameters ordered alphabetically in the source-code.
	fs.String("config", "", configFileHelp)

	fs.StringVar(&args.metric, "metric", defaultArgMetric, metricHelp)

	fs.IntVar(&args.top, "top", defaultArgTop, topHelp)

	fs.BoolVar(&args.validate, "validate", defaultArgValidate, validateHelp)

	fs.BoolVar(&args.verboseMode, "v", false, "Shorthand for -verbose.")
	fs.BoolVar(&args.verboseMode, "verbose", false, verboseModeHelp)
	fs.BoolVar(&args.version, "version", false, versionHelp)

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] profile.pprof profile.pprof...\n", fs.Name())
		fs.PrintDefaults()
	}

	err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("CALLPATH_ENSEMBLE"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		// This will ignore configuration file (only) options that the
		// current version does not recognize.
		ff.WithIgnoreUndefined(true),
		ff.WithAllowMissingConfigFile(true),
	)

	args.inputs = fs.Args()
	args.fs = fs

	return &args, err
}

func (args *arguments) dump() {
	log.Debug("Config:")
	args.fs.VisitAll(func(f *flag.Flag) {
		log.Debug(fmt.Sprintf("%s: %v", f.Name, f.Value))
	})
}
