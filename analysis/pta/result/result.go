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

// Package result exposes the facts computed by the pointer analysis.
//
// There are two kinds of results. A [ContextSensitive] result answers queries about the context-sensitive nodes
// of the analysis; a result built by [NewContextInsensitive] only implements [Result], whose queries merge the
// facts over all contexts. Use [AsContextSensitive] to recover the context-sensitive queries of a result.
package result

import (
	"fmt"
	"sync"

	"github.com/awslabs/ar-go-pta/analysis/pta/cs"
	"github.com/awslabs/ar-go-pta/analysis/pta/ptset"
	"github.com/awslabs/ar-go-pta/internal/funcutil"
	"golang.org/x/exp/slices"
)

// ErrUnsupportedOperation is returned when a result is queried for facts its kind of analysis does not record.
var ErrUnsupportedOperation = ptset.ErrUnsupportedOperation

// Result is the context-insensitive view of a pointer analysis result.
type Result interface {
	// Vars returns the variables of the program that have been analyzed
	Vars() []cs.Variable

	// Objects returns the abstract objects some pointer points to. The slice is computed on the first call; later
	// calls return the same elements even if the analysis has created more facts since.
	Objects() []cs.Object

	// PointsTo returns the objects variable v may point to, in any context
	PointsTo(v cs.Variable) []cs.Object

	// PointsToField returns the objects the field of the objects pointed by base may point to
	PointsToField(base cs.Variable, field cs.Field) []cs.Object

	// PointsToStatic returns the objects the global field may point to
	PointsToStatic(field cs.Field) []cs.Object

	// CallEdges returns the edges of the call graph, merged over all contexts
	CallEdges() []MethodEdge
}

// ContextSensitive is a result whose queries distinguish the contexts of the elements.
type ContextSensitive interface {
	Result

	// CSVariables returns the variables in their contexts
	CSVariables() funcutil.Seq[*cs.CSVariable]

	// InstanceFields returns the fields of the context-sensitive objects
	InstanceFields() funcutil.Seq[*cs.InstanceField]

	// ArrayIndexes returns the nodes of the elements of the context-sensitive objects
	ArrayIndexes() funcutil.Seq[*cs.ArrayIndex]

	// StaticFields returns the nodes of the global fields
	StaticFields() funcutil.Seq[*cs.StaticField]

	// CSObjects returns the objects in their heap contexts
	CSObjects() funcutil.Seq[*cs.CSObject]

	// CSPointsTo returns the objects v may point to, ordered by ID
	CSPointsTo(v *cs.CSVariable) []*cs.CSObject

	// CSCallGraph returns the edges of the context-sensitive call graph
	CSCallGraph() []CallEdge
}

// CallEdge is an edge of the context-sensitive call graph
type CallEdge struct {
	Site   *cs.CSCallSite
	Callee *cs.CSMethod
}

func (e CallEdge) String() string {
	return fmt.Sprintf("%s -> %s", e.Site, e.Callee)
}

// MethodEdge is an edge of the context-insensitive call graph
type MethodEdge struct {
	Site   cs.CallSite
	Callee cs.Method
}

func (e MethodEdge) String() string {
	return fmt.Sprintf("%s -> %s", e.Site, e.Callee.String())
}

// AsContextSensitive returns r as a context-sensitive result, or an error wrapping ErrUnsupportedOperation if the
// analysis that produced r did not record per-context facts.
func AsContextSensitive(r Result) (ContextSensitive, error) {
	if csr, ok := r.(ContextSensitive); ok {
		return csr, nil
	}
	return nil, fmt.Errorf("context-sensitive queries on %T: %w", r, ErrUnsupportedOperation)
}

// base implements the context-insensitive queries on top of the store of the analysis
type base struct {
	store cs.Store
	edges []CallEdge

	objectsOnce sync.Once
	objects     []cs.Object
}

func (r *base) Vars() []cs.Variable {
	var vars []cs.Variable
	seen := map[cs.Variable]bool{}
	r.store.CSVariables()(func(v *cs.CSVariable) bool {
		if !seen[v.Variable()] {
			seen[v.Variable()] = true
			vars = append(vars, v.Variable())
		}
		return true
	})
	return vars
}

func (r *base) Objects() []cs.Object {
	r.objectsOnce.Do(func() {
		collected := map[*cs.CSObject]bool{}
		collect := func(p cs.Pointer) bool {
			addAll(collected, p.PointsToSet())
			return true
		}
		r.store.CSVariables()(func(v *cs.CSVariable) bool { return collect(v) })
		r.store.InstanceFields()(func(f *cs.InstanceField) bool { return collect(f) })
		r.store.ArrayIndexes()(func(a *cs.ArrayIndex) bool { return collect(a) })
		r.store.StaticFields()(func(f *cs.StaticField) bool { return collect(f) })
		r.objects = project(collected)
	})
	return slices.Clone(r.objects)
}

func (r *base) PointsTo(v cs.Variable) []cs.Object {
	return project(r.pointsTo(v))
}

func (r *base) pointsTo(v cs.Variable) map[*cs.CSObject]bool {
	objs := map[*cs.CSObject]bool{}
	r.store.VariableInstances(v)(func(csv *cs.CSVariable) bool {
		addAll(objs, csv.PointsToSet())
		return true
	})
	return objs
}

func (r *base) PointsToField(base cs.Variable, field cs.Field) []cs.Object {
	objs := map[*cs.CSObject]bool{}
	for o := range r.pointsTo(base) {
		if f := r.store.LookupInstanceField(o, field); f.IsSome() {
			addAll(objs, f.Value().PointsToSet())
		}
	}
	return project(objs)
}

func (r *base) PointsToStatic(field cs.Field) []cs.Object {
	objs := map[*cs.CSObject]bool{}
	if f := r.store.LookupStaticField(field); f.IsSome() {
		addAll(objs, f.Value().PointsToSet())
	}
	return project(objs)
}

func (r *base) CallEdges() []MethodEdge {
	var edges []MethodEdge
	seen := map[MethodEdge]bool{}
	for _, e := range r.edges {
		me := MethodEdge{Site: e.Site.CallSite(), Callee: e.Callee.Method()}
		if !seen[me] {
			seen[me] = true
			edges = append(edges, me)
		}
	}
	return edges
}

// contextSensitive adds the per-context queries to base
type contextSensitive struct {
	base
}

// NewContextSensitive returns the context-sensitive result of the facts in store and the call graph edges.
func NewContextSensitive(store cs.Store, edges []CallEdge) ContextSensitive {
	return &contextSensitive{base{store: store, edges: edges}}
}

// NewContextInsensitive returns a result that only answers queries merged over the contexts of the facts in store.
func NewContextInsensitive(store cs.Store, edges []CallEdge) Result {
	return &base{store: store, edges: edges}
}

func (r *contextSensitive) CSVariables() funcutil.Seq[*cs.CSVariable] { return r.store.CSVariables() }

func (r *contextSensitive) InstanceFields() funcutil.Seq[*cs.InstanceField] {
	return r.store.InstanceFields()
}

func (r *contextSensitive) ArrayIndexes() funcutil.Seq[*cs.ArrayIndex] { return r.store.ArrayIndexes() }

func (r *contextSensitive) StaticFields() funcutil.Seq[*cs.StaticField] {
	return r.store.StaticFields()
}

func (r *contextSensitive) CSObjects() funcutil.Seq[*cs.CSObject] { return r.store.CSObjects() }

func (r *contextSensitive) CSPointsTo(v *cs.CSVariable) []*cs.CSObject {
	return ptset.ToSlice[*cs.CSObject](v.PointsToSet(), byID)
}

func (r *contextSensitive) CSCallGraph() []CallEdge {
	return slices.Clone(r.edges)
}

func byID(a, b *cs.CSObject) bool { return a.ID() < b.ID() }

func addAll(objs map[*cs.CSObject]bool, pts cs.PointsToSet) {
	pts.ForEach(func(o *cs.CSObject) bool {
		objs[o] = true
		return true
	})
}

// project returns the abstract objects of the context-sensitive objects, in the order of their first occurrence by
// ID
func project(objs map[*cs.CSObject]bool) []cs.Object {
	sorted := make([]*cs.CSObject, 0, len(objs))
	for o := range objs {
		sorted = append(sorted, o)
	}
	slices.SortFunc(sorted, byID)
	var res []cs.Object
	seen := map[cs.Object]bool{}
	for _, o := range sorted {
		if !seen[o.Object()] {
			seen[o.Object()] = true
			res = append(res, o.Object())
		}
	}
	return res
}
