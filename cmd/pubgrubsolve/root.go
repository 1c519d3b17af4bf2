// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	pubgrub "github.com/contriboss-labs/pubgrub-solver"
)

// settings holds the persistent flags shared by every subcommand, in the
// same shape pubgrub.SolverOptions itself takes: a small struct of knobs
// translated into pubgrub.SolverOption values at solve time.
type settings struct {
	manifestPath string
	maxSteps     int
	verbose      bool
	noColor      bool
}

func (s *settings) addFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&s.manifestPath, "manifest", "f", "", "path to a solve manifest (YAML)")
	flags.IntVar(&s.maxSteps, "max-steps", 0, "solver iteration limit (0 = default)")
	flags.BoolVarP(&s.verbose, "verbose", "v", false, "print solver debug tracing to stderr")
	flags.BoolVar(&s.noColor, "no-color", false, "disable colorized output")
}

var globalUsage = `Usage: pubgrubsolve --manifest <file>

Resolves a manifest of version-constrained package requirements against an
inline registry using the PubGrub conflict-driven solver, printing either
the resolved versions or a human-readable explanation of why no solution
exists.
`

func newRootCmd(out io.Writer, args []string) (*cobra.Command, error) {
	s := &settings{}

	cmd := &cobra.Command{
		Use:          "pubgrubsolve",
		Short:        "Resolve package versions with the PubGrub algorithm",
		Long:         globalUsage,
		SilenceUsage: false,
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			return runSolve(out, s)
		},
	}

	flags := cmd.PersistentFlags()
	s.addFlags(flags)
	flags.ParseErrorsWhitelist.UnknownFlags = false

	if err := flags.Parse(args); err != nil && !errors.Is(err, pflag.ErrHelp) {
		return nil, errors.Wrap(err, "parsing flags")
	}

	if s.noColor {
		color.NoColor = true
	}

	return cmd, nil
}

func runSolve(out io.Writer, s *settings) error {
	if s.manifestPath == "" {
		return errors.New("--manifest is required")
	}

	m, err := loadManifest(s.manifestPath)
	if err != nil {
		return err
	}

	root, source, err := buildSource(m)
	if err != nil {
		return errors.Wrap(err, "building sources from manifest")
	}

	opts := []pubgrub.SolverOption{
		pubgrub.WithIncompatibilityTracking(true),
	}
	if s.maxSteps > 0 {
		opts = append(opts, pubgrub.WithMaxSteps(s.maxSteps))
	}
	if len(m.AllowMissing) > 0 {
		opts = append(opts, pubgrub.WithAllowMissing(allowMissingSet(m.AllowMissing)))
	}

	solver := pubgrub.NewSolverWithOptions([]pubgrub.Source{root, source}, opts...)

	solution, err := solver.Solve(root.Term())
	if err != nil {
		var noSolution *pubgrub.NoSolutionError
		if errors.As(err, &noSolution) {
			printFailure(out, noSolution)
			return errors.New("no solution found")
		}
		return errors.Wrap(err, "solving")
	}

	printSolution(out, solution, solver.AttemptedSolutions)
	return nil
}

func printSolution(out io.Writer, solution pubgrub.Solution, attempts int) {
	success := color.New(color.FgGreen, color.Bold)
	success.Fprintln(out, "Version solving succeeded")

	table := uitable.New()
	table.AddRow("PACKAGE", "VERSION")
	for nv := range solution.All() {
		table.AddRow(nv.Name.Value(), nv.Version.String())
	}
	fmt.Fprintln(out, table)
	fmt.Fprintf(out, "attempted solutions: %d\n", attempts)
}

func printFailure(out io.Writer, err *pubgrub.NoSolutionError) {
	failure := color.New(color.FgRed, color.Bold)
	failure.Fprintln(out, "Version solving failed")
	fmt.Fprintln(out, err.Error())
}
