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

package result

import (
	"errors"
	"go/token"
	"go/types"
	"testing"

	"github.com/awslabs/ar-go-pta/analysis/pta/contexts"
	"github.com/awslabs/ar-go-pta/analysis/pta/cs"
	"github.com/awslabs/ar-go-pta/analysis/pta/ptset"
	"github.com/awslabs/ar-go-pta/internal/funcutil"
)

type named struct{ name string }

func (n *named) Name() string     { return n.name }
func (n *named) Type() types.Type { return types.Typ[types.UnsafePointer] }
func (n *named) String() string   { return n.name }
func (n *named) Pos() token.Pos   { return token.NoPos }

// fixture is a small store in which x points to o1 in context a and to o2 in context b, o1.f points to o3, and the
// global g points to o1.
type fixture struct {
	store         *cs.Manager
	x, y          *named
	f, g          *named
	o1, o2, o3    *named
	xa, xb        *cs.CSVariable
	co1, co2, co3 *cs.CSObject
	site, callee  *named
	callA, callB  *cs.CSCallSite
	methA         *cs.CSMethod
	edges         []CallEdge
}

func newFixture() *fixture {
	table := contexts.NewTable()
	a, b := table.Intern("a"), table.Intern("b")
	fx := &fixture{
		store: cs.NewManager(nil),
		x:     &named{"x"}, y: &named{"y"},
		f: &named{"f"}, g: &named{"g"},
		o1: &named{"o1"}, o2: &named{"o2"}, o3: &named{"o3"},
		site: &named{"call"}, callee: &named{"callee"},
	}
	m := fx.store
	m.SetPointsToSetFactory(m.SparseSetFactory())
	fx.co1 = m.GetOrCreateObject(table.Empty(), fx.o1)
	fx.co2 = m.GetOrCreateObject(table.Empty(), fx.o2)
	fx.co3 = m.GetOrCreateObject(table.Empty(), fx.o3)
	fx.xa = m.GetOrCreateVariable(a, fx.x)
	fx.xb = m.GetOrCreateVariable(b, fx.x)
	m.GetOrCreateVariable(a, fx.y)
	fx.xa.PointsToSet().AddAllDiff(ptset.Of(fx.co1))
	fx.xb.PointsToSet().AddAllDiff(ptset.Of(fx.co2))
	m.GetOrCreateInstanceField(fx.co1, fx.f).PointsToSet().Add(fx.co3)
	m.GetOrCreateStaticField(fx.g).PointsToSet().Add(fx.co1)

	fx.callA = m.GetOrCreateCallSite(a, fx.site)
	fx.callB = m.GetOrCreateCallSite(b, fx.site)
	fx.methA = m.GetOrCreateMethod(a, fx.callee)
	fx.edges = []CallEdge{
		{Site: fx.callA, Callee: fx.methA},
		{Site: fx.callB, Callee: m.GetOrCreateMethod(b, fx.callee)},
	}
	return fx
}

func sameObjects(got []cs.Object, want ...cs.Object) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestContextInsensitiveQueries(t *testing.T) {
	fx := newFixture()
	results := map[string]Result{
		"cs": NewContextSensitive(fx.store, fx.edges),
		"ci": NewContextInsensitive(fx.store, fx.edges),
	}
	for name, r := range results {
		t.Run(name, func(t *testing.T) {
			if vars := r.Vars(); len(vars) != 2 || vars[0] != fx.x || vars[1] != fx.y {
				t.Errorf("expected vars [x y], got %v", vars)
			}
			if got := r.PointsTo(fx.x); !sameObjects(got, fx.o1, fx.o2) {
				t.Errorf("x should point to o1 and o2, got %v", got)
			}
			if got := r.PointsTo(fx.y); len(got) != 0 {
				t.Errorf("y should point to nothing, got %v", got)
			}
			if got := r.PointsTo(&named{"unknown"}); len(got) != 0 {
				t.Errorf("unknown variable should point to nothing, got %v", got)
			}
			if got := r.PointsToField(fx.x, fx.f); !sameObjects(got, fx.o3) {
				t.Errorf("x.f should point to o3, got %v", got)
			}
			if got := r.PointsToField(fx.x, fx.g); len(got) != 0 {
				t.Errorf("x.g should point to nothing, got %v", got)
			}
			if got := r.PointsToStatic(fx.g); !sameObjects(got, fx.o1) {
				t.Errorf("g should point to o1, got %v", got)
			}
			if got := r.Objects(); !sameObjects(got, fx.o1, fx.o2, fx.o3) {
				t.Errorf("expected objects o1, o2, o3, got %v", got)
			}
			edges := r.CallEdges()
			if len(edges) != 1 || edges[0].Site != fx.site || edges[0].Callee != fx.callee {
				t.Errorf("expected one call edge, got %v", edges)
			}
		})
	}
}

func TestObjectsIsComputedOnce(t *testing.T) {
	fx := newFixture()
	r := NewContextInsensitive(fx.store, nil)
	first := r.Objects()
	o4 := fx.store.GetOrCreateObject(contexts.NewTable().Empty(), &named{"o4"})
	fx.xa.PointsToSet().Add(o4)
	if got := r.Objects(); !sameObjects(got, first...) {
		t.Errorf("objects should not change after the first call, got %v", got)
	}
	first[0] = nil
	if r.Objects()[0] == nil {
		t.Errorf("modifying the returned slice should not modify the result")
	}
	// the other queries are not cached
	if got := r.PointsTo(fx.x); len(got) != 3 {
		t.Errorf("x should point to o1, o2 and o4, got %v", got)
	}
}

func TestContextSensitiveQueries(t *testing.T) {
	fx := newFixture()
	r, err := AsContextSensitive(NewContextSensitive(fx.store, fx.edges))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := funcutil.Count(r.CSVariables()); n != 3 {
		t.Errorf("expected 3 variables, got %d", n)
	}
	if n := funcutil.Count(r.CSObjects()); n != 3 {
		t.Errorf("expected 3 objects, got %d", n)
	}
	if n := funcutil.Count(r.InstanceFields()); n != 1 {
		t.Errorf("expected 1 instance field, got %d", n)
	}
	if n := funcutil.Count(r.StaticFields()); n != 1 {
		t.Errorf("expected 1 static field, got %d", n)
	}
	if n := funcutil.Count(r.ArrayIndexes()); n != 0 {
		t.Errorf("expected no array index, got %d", n)
	}
	if got := r.CSPointsTo(fx.xa); len(got) != 1 || got[0] != fx.co1 {
		t.Errorf("x in context a should point to o1, got %v", got)
	}
	if got := r.CSPointsTo(fx.xb); len(got) != 1 || got[0] != fx.co2 {
		t.Errorf("x in context b should point to o2, got %v", got)
	}
	if edges := r.CSCallGraph(); len(edges) != 2 || edges[0].Site != fx.callA || edges[0].Callee != fx.methA {
		t.Errorf("expected two context-sensitive call edges, got %v", edges)
	}
}

func TestContextInsensitiveRejectsContextQueries(t *testing.T) {
	fx := newFixture()
	r := NewContextInsensitive(fx.store, fx.edges)
	csr, err := AsContextSensitive(r)
	if !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("expected ErrUnsupportedOperation, got %v", err)
	}
	if csr != nil {
		t.Errorf("expected no context-sensitive result")
	}
	if _, ok := r.(ContextSensitive); ok {
		t.Errorf("context-insensitive result should not implement the context-sensitive queries")
	}
}
