// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pta implements the pta sub-command: it runs the pointer analysis on a program and reports the contents of
// the fact store.
package pta

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/awslabs/ar-go-pta/analysis"
	"github.com/awslabs/ar-go-pta/analysis/config"
	"github.com/awslabs/ar-go-pta/analysis/pta/cs"
	"github.com/awslabs/ar-go-pta/analysis/pta/result"
	"github.com/awslabs/ar-go-pta/analysis/pta/solver"
	"github.com/awslabs/ar-go-pta/cmd/argot-pta/tools"
	"github.com/awslabs/ar-go-pta/internal/formatutil"
	"github.com/awslabs/ar-go-pta/internal/graphutil"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/ssa"
)

// Usage is the usage of the pta sub-command
const Usage = `Run the context-sensitive pointer analysis on your Go program and print statistics of the results.

Usage:
  argot-pta pta [options] package...
  argot-pta pta [options] source.go

Use the -help flag to display the options.

Examples:
% argot-pta pta -k 2 hello.go
% argot-pta pta -config config.yaml -verbose ./cmd/server
`

// Flags represents the parsed flags of the pta sub-command.
type Flags struct {
	tools.CommonFlags
	outputJSON  bool
	depth       int
	insensitive bool
	setKind     string
}

// NewFlags creates parsed pta sub-command flags for args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("pta")
	outputJSON := flags.FlagSet.Bool("json", false, "output the report as JSON")
	depth := flags.FlagSet.Int("k", -1, "call-site sensitivity depth (overrides the config when non-negative)")
	insensitive := flags.FlagSet.Bool("ci", false, "run the context-insensitive analysis")
	setKind := flags.FlagSet.String("sets", "", "kind of points-to sets, sparse or hash (overrides the config)")
	common, err := flags.Parse(args, Usage)
	if err != nil {
		return Flags{}, err
	}
	return Flags{
		CommonFlags: common,
		outputJSON:  *outputJSON,
		depth:       *depth,
		insensitive: *insensitive,
		setKind:     *setKind,
	}, nil
}

// Report summarizes a run of the pointer analysis
type Report struct {
	Elements         cs.Stats       `json:"elements"`
	Iterations       int            `json:"iterations"`
	ReachableMethods int            `json:"reachable-methods"`
	CallEdges        int            `json:"call-edges"`
	Packages         int            `json:"packages"`
	RecursiveGroups  int            `json:"recursive-groups"`
	FlowGraph        FlowGraphStats `json:"flow-graph"`

	// Program counts the instructions of the reachable functions
	Program analysis.SSAStats `json:"program"`
}

// FlowGraphStats are statistics of the pointer flow graph
type FlowGraphStats struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
	// Cycles is the number of strongly connected components with a cycle
	Cycles int `json:"cycles"`
	// LargestCycle is the number of pointers in the largest cycle
	LargestCycle int `json:"largest-cycle"`
}

// Run runs the pointer analysis with flags.
func Run(flags Flags) error {
	cfg, err := tools.LoadConfig(flags.ConfigPath)
	if err != nil {
		return err
	}
	if flags.Verbose && cfg.LogLevel < int(config.DebugLevel) {
		cfg.LogLevel = int(config.DebugLevel)
	}
	if flags.depth >= 0 {
		cfg.Pointer.ContextDepth = flags.depth
	}
	if flags.insensitive {
		cfg.Pointer.ContextSensitivity = config.InsensitiveSensitivity
	}
	if flags.setKind != "" {
		cfg.Pointer.PointsToSet = flags.setKind
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	formatutil.SetColors(!flags.outputJSON)
	logger := config.NewLogGroup(cfg)

	logger.Infof("%s\n", formatutil.Faint("Reading sources"))
	program, err := analysis.LoadProgram(nil, "", ssa.InstantiateGenerics, flags.WithTest, flags.FlagSet.Args())
	if err != nil {
		return err
	}

	solverConfig, err := solver.NewConfig(program.Program, cfg, logger)
	if err != nil {
		return err
	}
	res, err := solver.Analyze(program.Program, solverConfig)
	if err != nil {
		return err
	}

	report := Summarize(res)
	if flags.outputJSON {
		return writeJSON(os.Stdout, report)
	}
	writeReport(os.Stdout, report)
	if flags.Verbose {
		WritePointsTo(os.Stdout, res.ContextInsensitive())
	}
	return nil
}

// Summarize computes the report of a result of the solver
func Summarize(res *solver.Result) Report {
	edges := 0
	for _, node := range res.CallGraph().Nodes {
		edges += len(node.Out)
	}
	functions := res.ReachableFunctions()
	return Report{
		Elements:         res.Store().Stats(),
		Iterations:       res.Iterations,
		ReachableMethods: res.ReachableMethods(),
		CallEdges:        edges,
		Packages:         len(analysis.AllPackages(functions)),
		RecursiveGroups:  len(res.RecursiveMethods()),
		FlowGraph:        flowGraphStats(res.FlowGraph()),
		Program:          analysis.SSAStatistics(functions),
	}
}

func flowGraphStats(g *graphutil.Digraph[cs.Pointer]) FlowGraphStats {
	stats := FlowGraphStats{Nodes: g.Len(), Edges: g.NumEdges()}
	for _, scc := range graphutil.StrongComponents(g) {
		stats.Cycles++
		if len(scc) > stats.LargestCycle {
			stats.LargestCycle = len(scc)
		}
	}
	return stats
}

func writeJSON(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("could not write report: %w", err)
	}
	return nil
}

func writeReport(w io.Writer, r Report) {
	e := r.Elements
	fmt.Fprintf(w, "%s\n", formatutil.Bold("Pointer analysis"))
	fmt.Fprintf(w, "  %-20s %d\n", "iterations", r.Iterations)
	fmt.Fprintf(w, "  %-20s %d in %d packages\n", "reachable methods", r.ReachableMethods, r.Packages)
	fmt.Fprintf(w, "  %-20s %d (%d recursive groups)\n", "call edges", r.CallEdges, r.RecursiveGroups)
	fmt.Fprintf(w, "  %-20s %d instructions, %d allocations, %d call sites\n", "reachable code",
		r.Program.NumberOfInstructions, r.Program.NumberOfAllocations, r.Program.NumberOfCallSites)
	fmt.Fprintf(w, "%s\n", formatutil.Bold("Elements"))
	for _, row := range []struct {
		name  string
		count int
	}{
		{"variables", e.Variables},
		{"instance fields", e.InstanceFields},
		{"array indexes", e.ArrayIndexes},
		{"static fields", e.StaticFields},
		{"objects", e.Objects},
		{"call sites", e.CallSites},
		{"methods", e.Methods},
		{"promoted maps", e.Promoted},
	} {
		fmt.Fprintf(w, "  %-20s %d\n", row.name, row.count)
	}
	fmt.Fprintf(w, "%s\n", formatutil.Bold("Pointer flow graph"))
	fmt.Fprintf(w, "  %-20s %d\n", "nodes", r.FlowGraph.Nodes)
	fmt.Fprintf(w, "  %-20s %d\n", "edges", r.FlowGraph.Edges)
	cycles := fmt.Sprintf("%d", r.FlowGraph.Cycles)
	if r.FlowGraph.Cycles > 0 {
		cycles = formatutil.Yellow(cycles) + fmt.Sprintf(" (largest has %d pointers)", r.FlowGraph.LargestCycle)
	}
	fmt.Fprintf(w, "  %-20s %s\n", "cycles", cycles)
}

// WritePointsTo writes the points-to set of each variable of r that points to some object, ordered by name
func WritePointsTo(w io.Writer, r result.Result) {
	type entry struct {
		name    string
		objects []string
	}
	var entries []entry
	for _, v := range r.Vars() {
		pts := r.PointsTo(v)
		if len(pts) == 0 {
			continue
		}
		e := entry{name: qualifiedName(v)}
		for _, o := range pts {
			e.objects = append(e.objects, objectName(o))
		}
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b entry) bool { return a.name < b.name })
	for _, e := range entries {
		fmt.Fprintf(w, "%s\n", formatutil.Cyan(formatutil.Sanitize(e.name)))
		for _, o := range e.objects {
			fmt.Fprintf(w, "  -> %s\n", formatutil.Sanitize(o))
		}
	}
}

func qualifiedName(v cs.Variable) string {
	if value, ok := v.(ssa.Value); ok && value.Parent() != nil {
		return value.Parent().String() + "." + v.Name()
	}
	return v.Name()
}

func objectName(o cs.Object) string {
	if value, ok := o.(ssa.Value); ok {
		if fn, isFunc := value.(*ssa.Function); isFunc {
			return "func " + fn.String()
		}
		if value.Parent() != nil {
			return fmt.Sprintf("%s in %s", value.String(), value.Parent())
		}
		return value.String()
	}
	return fmt.Sprintf("%v", o)
}
