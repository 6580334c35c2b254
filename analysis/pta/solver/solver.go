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

// Package solver computes the points-to sets of a program in SSA form.
//
// The solver is a worklist algorithm over a pointer flow graph (PFG) whose nodes are the context-sensitive pointers
// of a [cs.Manager]. A work item is a pointer and a set of objects that must be added to its points-to set; only the
// objects that are new to the set (the delta) are propagated along the PFG edges and to the rules attached to
// variables. Methods become reachable, and their instructions are processed, as call edges are discovered.
package solver

import (
	"errors"
	"fmt"
	"go/types"
	"time"

	"github.com/awslabs/ar-go-pta/analysis/config"
	"github.com/awslabs/ar-go-pta/analysis/pta/contexts"
	"github.com/awslabs/ar-go-pta/analysis/pta/cs"
	"github.com/awslabs/ar-go-pta/analysis/pta/result"
	"github.com/awslabs/ar-go-pta/internal/graphutil"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// ErrNoEntryPoint is returned when the program has no function to start the analysis from
var ErrNoEntryPoint = errors.New("no entry point")

// Config configures a run of the solver
type Config struct {
	// Selector selects the contexts of methods and objects. If nil, the solver uses the default call-site
	// sensitivity.
	Selector contexts.Selector

	// PointsToSet is the kind of points-to set, config.SparsePointsToSet or config.HashPointsToSet
	PointsToSet string

	// EntryPoints are the functions the analysis starts from. If empty, the analysis starts from the init and main
	// functions of the main packages of the program.
	EntryPoints []*ssa.Function

	// Logger receives the messages of the solver. If nil, a default log group at Info level is used.
	Logger *config.LogGroup
}

// NewConfig returns the solver configuration for prog described by the pointer options of c
func NewConfig(prog *ssa.Program, c *config.Config, logger *config.LogGroup) (Config, error) {
	p := c.Pointer
	selector, err := contexts.NewSelector(p.ContextSensitivity, p.ContextDepth, p.HeapContextDepth)
	if err != nil {
		return Config{}, fmt.Errorf("invalid pointer configuration: %w", err)
	}
	cfg := Config{
		Selector:    selector,
		PointsToSet: p.PointsToSet,
		Logger:      logger,
	}
	if len(p.EntryPoints) == 0 {
		return cfg, nil
	}
	for fn := range ssautil.AllFunctions(prog) {
		if fn.Blocks != nil && c.IsEntryPoint(codeIdentifier(fn)) {
			cfg.EntryPoints = append(cfg.EntryPoints, fn)
		}
	}
	if len(cfg.EntryPoints) == 0 {
		return Config{}, fmt.Errorf("no function matches the entry points of the config: %w", ErrNoEntryPoint)
	}
	slices.SortFunc(cfg.EntryPoints, func(a, b *ssa.Function) bool { return a.String() < b.String() })
	return cfg, nil
}

func codeIdentifier(fn *ssa.Function) config.CodeIdentifier {
	cid := config.CodeIdentifier{Method: fn.Name()}
	if fn.Pkg != nil {
		cid.Package = fn.Pkg.Pkg.Path()
	}
	if recv := fn.Signature.Recv(); recv != nil {
		cid.Receiver = types.TypeString(recv.Type(), types.RelativeTo(recv.Pkg()))
	}
	return cid
}

// workItem is a set of objects to add to the points-to set of a pointer
type workItem struct {
	pointer cs.Pointer
	objects cs.PointsToSet
}

// rule is applied to the objects newly added to the points-to set of a variable
type rule func(delta cs.PointsToSet)

type solver struct {
	prog     *ssa.Program
	store    *cs.Manager
	selector contexts.Selector
	empty    contexts.Context
	logger   *config.LogGroup

	pfg       *graphutil.Digraph[cs.Pointer]
	worklist  []workItem
	rules     map[*cs.CSVariable][]rule
	reachable map[*cs.CSMethod]bool
	// functions and globals whose object has been created
	seeded    map[ssa.Value]bool
	callEdges map[result.CallEdge]bool
	edges     []result.CallEdge

	iterations int
}

// Analyze runs the pointer analysis on prog. Violations of the contracts of the element manager, which indicate a
// bug in the solver, are returned as errors.
func Analyze(prog *ssa.Program, cfg Config) (res *Result, err error) {
	logger := cfg.Logger
	if logger == nil {
		logger = config.NewLogGroup(config.NewDefault())
	}
	selector := cfg.Selector
	if selector == nil {
		selector = contexts.NewKCallSite(config.DefaultContextDepth, config.DefaultHeapContextDepth)
	}
	entries := cfg.EntryPoints
	if len(entries) == 0 {
		entries = mainFunctions(prog)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("program has no main package: %w", ErrNoEntryPoint)
	}

	store := cs.NewManager(nil).WithLogger(logger)
	switch cfg.PointsToSet {
	case config.HashPointsToSet:
	case "", config.SparsePointsToSet:
		store.SetPointsToSetFactory(store.SparseSetFactory())
	default:
		return nil, fmt.Errorf("unknown points-to set %q", cfg.PointsToSet)
	}

	s := &solver{
		prog:      prog,
		store:     store,
		selector:  selector,
		empty:     selector.EmptyContext(),
		logger:    logger,
		pfg:       graphutil.NewDigraph[cs.Pointer](),
		rules:     map[*cs.CSVariable][]rule{},
		reachable: map[*cs.CSMethod]bool{},
		seeded:    map[ssa.Value]bool{},
		callEdges: map[result.CallEdge]bool{},
	}

	defer func() {
		if r := recover(); r != nil {
			res = nil
			if e, ok := r.(error); ok {
				err = fmt.Errorf("pointer analysis failed: %w", e)
			} else {
				err = fmt.Errorf("pointer analysis failed: %v", r)
			}
		}
	}()

	start := time.Now()
	logger.Infof("Starting pointer analysis from %d entry points\n", len(entries))
	for _, fn := range entries {
		if fn.Blocks == nil {
			logger.Warnf("Entry point %s has no body\n", fn)
		}
		logger.Debugf("Entry point %s\n", fn)
		s.addReachable(s.store.GetOrCreateMethod(s.empty, fn))
	}
	s.solve()
	logger.Infof("Pointer analysis done in %.2f s (%d iterations, %d reachable methods)\n",
		time.Since(start).Seconds(), s.iterations, len(s.reachable))
	logger.Debugf("Elements: %s\n", s.store.Stats())

	functions := map[*ssa.Function]bool{}
	for m := range s.reachable {
		functions[m.Method().(*ssa.Function)] = true
	}
	return &Result{
		store:      store,
		pfg:        s.pfg,
		edges:      s.edges,
		reachable:  len(s.reachable),
		functions:  functions,
		Iterations: s.iterations,
	}, nil
}

func mainFunctions(prog *ssa.Program) []*ssa.Function {
	var res []*ssa.Function
	mains := ssautil.MainPackages(prog.AllPackages())
	slices.SortFunc(mains, func(a, b *ssa.Package) bool { return a.Pkg.Path() < b.Pkg.Path() })
	for _, pkg := range mains {
		for _, name := range []string{"init", "main"} {
			if fn := pkg.Func(name); fn != nil {
				res = append(res, fn)
			}
		}
	}
	return res
}

// solve processes the worklist until it is empty
func (s *solver) solve() {
	for len(s.worklist) > 0 {
		item := s.worklist[0]
		s.worklist[0] = workItem{}
		s.worklist = s.worklist[1:]
		s.iterations++

		delta := item.pointer.PointsToSet().AddAllDiff(item.objects)
		if delta.IsEmpty() {
			continue
		}
		if s.logger.LogsTrace() {
			s.logger.Tracef("pts(%s) += %v\n", item.pointer, delta)
		}
		for _, succ := range s.pfg.Successors(item.pointer) {
			s.push(succ, delta)
		}
		if v, ok := item.pointer.(*cs.CSVariable); ok {
			for _, r := range s.rules[v] {
				r(delta)
			}
		}
	}
}

func (s *solver) push(p cs.Pointer, objects cs.PointsToSet) {
	s.worklist = append(s.worklist, workItem{pointer: p, objects: objects})
}

// addObject schedules the addition of o to the points-to set of p
func (s *solver) addObject(p cs.Pointer, o *cs.CSObject) {
	objects := p.PointsToSet().NewSet()
	objects.Add(o)
	s.push(p, objects)
}

// addEdge adds the edge src -> dst to the PFG. The objects src already points to are scheduled for dst.
func (s *solver) addEdge(src, dst cs.Pointer) {
	if !s.pfg.AddEdge(src, dst) {
		return
	}
	if pts := src.PointsToSet(); !pts.IsEmpty() {
		s.push(dst, pts.Copy())
	}
}

// addRule attaches r to v, and applies it to the objects v already points to
func (s *solver) addRule(v *cs.CSVariable, r rule) {
	s.rules[v] = append(s.rules[v], r)
	if pts := v.PointsToSet(); !pts.IsEmpty() {
		r(pts.Copy())
	}
}

// forEachObject attaches a rule to v that calls f on each object v points to
func (s *solver) forEachObject(v *cs.CSVariable, f func(o *cs.CSObject)) {
	s.addRule(v, func(delta cs.PointsToSet) {
		delta.ForEach(func(o *cs.CSObject) bool {
			f(o)
			return true
		})
	})
}

// addReachable processes the instructions of m the first time it is reached
func (s *solver) addReachable(m *cs.CSMethod) {
	if s.reachable[m] {
		return
	}
	s.reachable[m] = true
	fn := m.Method().(*ssa.Function)
	if fn.Blocks == nil {
		s.logger.Debugf("No body for %s\n", fn)
		return
	}
	s.logger.Tracef("Reachable: %s\n", m)
	for _, block := range fn.Blocks {
		for _, instr := range block.Instrs {
			s.processInstruction(m.Context(), instr)
		}
	}
}

// valueNode returns the node of v in ctx, or nil if v cannot point to objects. Functions, globals and free variables
// are not local to a call, and their nodes are in the empty context.
func (s *solver) valueNode(ctx contexts.Context, v ssa.Value) *cs.CSVariable {
	switch v := v.(type) {
	case *ssa.Const, *ssa.Builtin, nil:
		return nil
	case *ssa.Function:
		return s.seed(v)
	case *ssa.Global:
		if isAggregate(pointee(v.Type())) {
			return s.seed(v)
		}
		ctx = s.empty
	case *ssa.FreeVar:
		ctx = s.empty
	}
	if _, isTuple := v.Type().(*types.Tuple); isTuple || !mayHavePointers(v.Type()) {
		return nil
	}
	return s.store.GetOrCreateVariable(ctx, v)
}

// seed returns the node of a function or global value, pointing to the object of the function or to the storage of
// the global
func (s *solver) seed(v ssa.Value) *cs.CSVariable {
	n := s.store.GetOrCreateVariable(s.empty, v)
	if !s.seeded[v] {
		s.seeded[v] = true
		s.addObject(n, s.store.GetOrCreateObject(s.empty, v))
	}
	return n
}

// tupleNode returns the node of the component index of the tuple value
func (s *solver) tupleNode(ctx contexts.Context, tuple ssa.Value, index int) *cs.CSVariable {
	tv := tupleVar{tuple: tuple, index: index}
	if !mayHavePointers(tv.Type()) {
		return nil
	}
	return s.store.GetOrCreateVariable(ctx, tv)
}

// resultNode returns the node receiving the value of a commaok instruction: the first component of its tuple, or the
// value itself
func (s *solver) resultNode(ctx contexts.Context, v ssa.Value, commaOk bool) *cs.CSVariable {
	if commaOk {
		return s.tupleNode(ctx, v, 0)
	}
	return s.valueNode(ctx, v)
}

// returnNode returns the node of the result index of fn in ctx
func (s *solver) returnNode(ctx contexts.Context, fn *ssa.Function, index int) *cs.CSVariable {
	rv := returnVar{fn: fn, index: index}
	if !mayHavePointers(rv.Type()) {
		return nil
	}
	return s.store.GetOrCreateVariable(ctx, rv)
}

// copyValue adds the edge src -> dst between the nodes of the values in ctx
func (s *solver) copyValue(ctx contexts.Context, src ssa.Value, dst ssa.Value) {
	s.flow(s.valueNode(ctx, src), s.valueNode(ctx, dst))
}

// flow adds an edge between two variables when both can point to objects
func (s *solver) flow(src, dst *cs.CSVariable) {
	if src != nil && dst != nil {
		s.addEdge(src, dst)
	}
}
