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

package cs

import (
	"errors"
	"go/token"
	"go/types"
	"testing"

	"github.com/awslabs/ar-go-pta/analysis/pta/contexts"
	"github.com/awslabs/ar-go-pta/analysis/pta/ptset"
	"github.com/awslabs/ar-go-pta/internal/funcutil"
)

type elem struct{ name string }

func (e *elem) Name() string     { return e.name }
func (e *elem) Type() types.Type { return types.Typ[types.UnsafePointer] }
func (e *elem) String() string   { return e.name }
func (e *elem) Pos() token.Pos   { return token.NoPos }

func newElems(names ...string) []*elem {
	var es []*elem
	for _, n := range names {
		es = append(es, &elem{n})
	}
	return es
}

func TestGetOrCreateIsCanonical(t *testing.T) {
	table := contexts.NewTable()
	c1 := table.Intern("site1")
	c2 := table.Intern("site2")
	e := newElems("x", "f", "o", "call", "m")
	x, f, o, call, meth := e[0], e[1], e[2], e[3], e[4]

	m := NewManager(nil)
	obj := m.GetOrCreateObject(c1, o)

	tests := []struct {
		name      string
		same      func() (any, any)
		different func() (any, any)
	}{
		{
			"variable",
			func() (any, any) { return m.GetOrCreateVariable(c1, x), m.GetOrCreateVariable(c1, x) },
			func() (any, any) { return m.GetOrCreateVariable(c1, x), m.GetOrCreateVariable(c2, x) },
		},
		{
			"instance field",
			func() (any, any) { return m.GetOrCreateInstanceField(obj, f), m.GetOrCreateInstanceField(obj, f) },
			func() (any, any) {
				return m.GetOrCreateInstanceField(obj, f), m.GetOrCreateInstanceField(obj, x)
			},
		},
		{
			"array index",
			func() (any, any) { return m.GetOrCreateArrayIndex(obj), m.GetOrCreateArrayIndex(obj) },
			func() (any, any) {
				return m.GetOrCreateArrayIndex(obj), m.GetOrCreateArrayIndex(m.GetOrCreateObject(c2, o))
			},
		},
		{
			"static field",
			func() (any, any) { return m.GetOrCreateStaticField(f), m.GetOrCreateStaticField(f) },
			func() (any, any) { return m.GetOrCreateStaticField(f), m.GetOrCreateStaticField(x) },
		},
		{
			"object",
			func() (any, any) { return m.GetOrCreateObject(c1, o), m.GetOrCreateObject(c1, o) },
			func() (any, any) { return m.GetOrCreateObject(c1, o), m.GetOrCreateObject(c2, o) },
		},
		{
			"call site",
			func() (any, any) { return m.GetOrCreateCallSite(c2, call), m.GetOrCreateCallSite(c2, call) },
			func() (any, any) { return m.GetOrCreateCallSite(c1, call), m.GetOrCreateCallSite(c2, call) },
		},
		{
			"method",
			func() (any, any) { return m.GetOrCreateMethod(c1, meth), m.GetOrCreateMethod(c1, meth) },
			func() (any, any) { return m.GetOrCreateMethod(c1, meth), m.GetOrCreateMethod(c2, meth) },
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if a, b := test.same(); a != b {
				t.Errorf("expected the same node twice, got %v and %v", a, b)
			}
			if a, b := test.different(); a == b {
				t.Errorf("expected different nodes, got %v twice", a)
			}
		})
	}
}

func TestPointsToSetIsBoundOnCreation(t *testing.T) {
	m := NewManager(nil)
	ctx := contexts.NewTable().Empty()
	e := newElems("x", "f", "o")
	obj := m.GetOrCreateObject(ctx, e[2])
	pointers := []Pointer{
		m.GetOrCreateVariable(ctx, e[0]),
		m.GetOrCreateInstanceField(obj, e[1]),
		m.GetOrCreateArrayIndex(obj),
		m.GetOrCreateStaticField(e[1]),
	}
	for _, p := range pointers {
		pts := p.PointsToSet()
		if pts == nil {
			t.Fatalf("%s has no points-to set", p)
		}
		if !pts.IsEmpty() {
			t.Errorf("%s: new points-to set should be empty, got %v", p, pts)
		}
		pts.Add(obj)
		if p.PointsToSet() != pts || !p.PointsToSet().Contains(obj) {
			t.Errorf("%s: points-to set should be the same set on every access", p)
		}
	}
}

func TestTwoContextsOfOneVariable(t *testing.T) {
	table := contexts.NewTable()
	c1, c2 := table.Intern("a"), table.Intern("b")
	x := &elem{"x"}
	m := NewManager(nil)
	v1 := m.GetOrCreateVariable(c1, x)
	v2 := m.GetOrCreateVariable(c2, x)
	if v1 == v2 {
		t.Fatalf("expected two nodes")
	}
	if v1.PointsToSet() == v2.PointsToSet() {
		t.Errorf("expected two points-to sets")
	}
	if got := funcutil.Count(m.CSVariables()); got != 2 {
		t.Errorf("expected 2 variables, got %d", got)
	}
	if got := funcutil.Count(m.VariableInstances(x)); got != 2 {
		t.Errorf("expected 2 instances of x, got %d", got)
	}
	if v := m.LookupVariable(c1, x); !v.IsSome() || v.Value() != v1 {
		t.Errorf("lookup of x in %s should return %s", c1, v1)
	}
	if v := m.LookupVariable(table.Intern("c"), x); v.IsSome() {
		t.Errorf("lookup of x in a new context should be none")
	}
	if got := funcutil.Count(m.CSVariables()); got != 2 {
		t.Errorf("lookups should not create variables, got %d", got)
	}
}

func TestInstanceFieldDiffAdd(t *testing.T) {
	for _, kind := range []string{"hash", "sparse"} {
		t.Run(kind, func(t *testing.T) {
			m := NewManager(nil)
			if kind == "sparse" {
				m.SetPointsToSetFactory(m.SparseSetFactory())
			}
			ctx := contexts.NewTable().Empty()
			e := newElems("o1", "o2", "o3", "f")
			o1 := m.GetOrCreateObject(ctx, e[0])
			o2 := m.GetOrCreateObject(ctx, e[1])
			o3 := m.GetOrCreateObject(ctx, e[2])
			f := m.GetOrCreateInstanceField(o1, e[3])

			d1 := f.PointsToSet().AddAllDiff(ptset.Of(o2))
			if d1.Len() != 1 || !d1.Contains(o2) {
				t.Errorf("first diff should be {o2}, got %v", d1)
			}
			d2 := f.PointsToSet().AddAllDiff(ptset.Of(o2, o3))
			if d2.Len() != 1 || !d2.Contains(o3) {
				t.Errorf("second diff should be {o3}, got %v", d2)
			}
			if f.PointsToSet().Len() != 2 {
				t.Errorf("field should point to {o2, o3}, got %v", f.PointsToSet())
			}
			if m.GetOrCreateInstanceField(o1, e[3]).PointsToSet() != f.PointsToSet() {
				t.Errorf("the field node should keep its set")
			}
		})
	}
}

func TestEnumerationSnapshot(t *testing.T) {
	m := NewManager(nil)
	table := contexts.NewTable()
	xs := newElems("a", "b", "c")
	for _, x := range xs {
		m.GetOrCreateVariable(table.Empty(), x)
	}
	vars := m.CSVariables()
	m.GetOrCreateVariable(table.Empty(), &elem{"d"})

	n := 0
	vars(func(v *CSVariable) bool {
		if v.Variable() != xs[n] {
			t.Errorf("expected variables in creation order, got %s at %d", v, n)
		}
		n++
		return true
	})
	if n != 3 {
		t.Errorf("snapshot should have 3 variables, got %d", n)
	}
	// restartable
	if funcutil.Count(vars) != 3 {
		t.Errorf("second iteration of the snapshot should have 3 variables")
	}
	if funcutil.Count(m.CSVariables()) != 4 {
		t.Errorf("new enumeration should have 4 variables")
	}

	// creating nodes while iterating does not disturb the iteration
	seen := 0
	m.CSVariables()(func(v *CSVariable) bool {
		seen++
		m.GetOrCreateVariable(table.Intern(seen), v.Variable())
		return true
	})
	if seen != 4 {
		t.Errorf("expected to visit 4 variables, visited %d", seen)
	}
}

func TestEnumerationsAreComplete(t *testing.T) {
	m := NewManager(nil)
	table := contexts.NewTable()
	ctxs := []contexts.Context{table.Empty(), table.Intern(1), table.Intern(1, 2)}
	e := newElems("v", "f", "o", "site", "m", "g")
	for _, c := range ctxs {
		m.GetOrCreateVariable(c, e[0])
		o := m.GetOrCreateObject(c, e[2])
		m.GetOrCreateInstanceField(o, e[1])
		m.GetOrCreateArrayIndex(o)
		m.GetOrCreateCallSite(c, e[3])
		m.GetOrCreateMethod(c, e[4])
	}
	m.GetOrCreateStaticField(e[5])

	want := Stats{
		Variables: 3, InstanceFields: 3, ArrayIndexes: 3, StaticFields: 1,
		Objects: 3, CallSites: 3, Methods: 3,
		// v, o, site and m see three contexts each
		Promoted: 4,
	}
	if got := m.Stats(); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	counts := map[string]int{
		"variables":       funcutil.Count(m.CSVariables()),
		"instance fields": funcutil.Count(m.InstanceFields()),
		"array indexes":   funcutil.Count(m.ArrayIndexes()),
		"static fields":   funcutil.Count(m.StaticFields()),
		"objects":         funcutil.Count(m.CSObjects()),
		"call sites":      funcutil.Count(m.CSCallSites()),
		"methods":         funcutil.Count(m.CSMethods()),
	}
	for kind, n := range counts {
		expected := 3
		if kind == "static fields" {
			expected = 1
		}
		if n != expected {
			t.Errorf("expected %d %s, got %d", expected, kind, n)
		}
	}
	for i, o := range funcutil.Collect(m.CSObjects()) {
		if o.ID() != i || m.At(i) != o || m.Index(o) != i {
			t.Errorf("object %s should have ID %d", o, i)
		}
	}
	if want.Pointers() != 10 {
		t.Errorf("expected 10 pointers, got %d", want.Pointers())
	}
}

func TestNilKeysPanic(t *testing.T) {
	m := NewManager(nil)
	ctx := contexts.NewTable().Empty()
	f := &elem{"f"}
	tests := []struct {
		op   string
		call func()
	}{
		{"GetOrCreateVariable", func() { m.GetOrCreateVariable(ctx, nil) }},
		{"GetOrCreateInstanceField", func() { m.GetOrCreateInstanceField(nil, f) }},
		{"GetOrCreateArrayIndex", func() { m.GetOrCreateArrayIndex(nil) }},
		{"GetOrCreateStaticField", func() { m.GetOrCreateStaticField(nil) }},
		{"GetOrCreateObject", func() { m.GetOrCreateObject(ctx, nil) }},
		{"GetOrCreateCallSite", func() { m.GetOrCreateCallSite(ctx, nil) }},
		{"GetOrCreateMethod", func() { m.GetOrCreateMethod(ctx, nil) }},
		{"GetOrCreateVariable", func() { m.GetOrCreateVariable(ctx, (*elem)(nil)) }},
		{"GetOrCreateInstanceField", func() { m.GetOrCreateInstanceField((*CSObject)(nil), f) }},
		{"GetOrCreateArrayIndex", func() { m.GetOrCreateArrayIndex((*CSObject)(nil)) }},
		{"GetOrCreateStaticField", func() { m.GetOrCreateStaticField((*elem)(nil)) }},
		{"GetOrCreateObject", func() { m.GetOrCreateObject(ctx, (*elem)(nil)) }},
		{"GetOrCreateCallSite", func() { m.GetOrCreateCallSite(ctx, (*elem)(nil)) }},
		{"GetOrCreateMethod", func() { m.GetOrCreateMethod(ctx, (*elem)(nil)) }},
	}
	for _, test := range tests {
		t.Run(test.op, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, ErrInvalidKey) {
					t.Fatalf("expected a panic with ErrInvalidKey, got %v", r)
				}
				var keyErr *InvalidKeyError
				if !errors.As(err, &keyErr) || keyErr.Op != test.op {
					t.Errorf("expected the error to name %s, got %v", test.op, err)
				}
			}()
			test.call()
		})
	}
	if stats := m.Stats(); stats.Pointers() != 0 || stats.Objects != 0 {
		t.Errorf("failed calls should not create nodes, got %v", stats)
	}
}

// countingVar counts the calls to Name
type countingVar struct {
	elem
	names int
}

func (v *countingVar) Name() string {
	v.names++
	return v.elem.Name()
}

func TestGetOrCreateVariableDoesNotFormatNames(t *testing.T) {
	table := contexts.NewTable()
	m := NewManager(nil)
	v := &countingVar{elem: elem{"x"}}
	for i := 0; i < 100; i++ {
		m.GetOrCreateVariable(table.Empty(), v)
	}
	if v.names != 0 {
		t.Errorf("expected no call to Name without a promotion, got %d", v.names)
	}
	m.GetOrCreateVariable(table.Intern("site"), v)
	if m.Stats().Promoted != 1 {
		t.Errorf("expected one promotion, got %d", m.Stats().Promoted)
	}
}

func TestSparseSetRejectsForeignObjects(t *testing.T) {
	ctx := contexts.NewTable().Empty()
	m1, m2 := NewManager(nil), NewManager(nil)
	m1.GetOrCreateObject(ctx, &elem{"a"})
	foreign := m2.GetOrCreateObject(ctx, &elem{"b"})
	set := m1.SparseSetFactory()()

	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("expected a panic with ErrInvalidKey, got %v", err)
		}
		if set.Len() != 0 {
			t.Errorf("the foreign object should not be in the set")
		}
	}()
	set.Add(foreign)
}

func TestFactorySwapOnlyAffectsNewPointers(t *testing.T) {
	m := NewManager(nil)
	ctx := contexts.NewTable().Empty()
	before := m.GetOrCreateVariable(ctx, &elem{"before"})
	m.SetPointsToSetFactory(m.SparseSetFactory())
	after := m.GetOrCreateVariable(ctx, &elem{"after"})

	if _, ok := before.PointsToSet().(*ptset.HashSet[*CSObject]); !ok {
		t.Errorf("pointer created before the swap should keep its hash set, got %T", before.PointsToSet())
	}
	if _, ok := after.PointsToSet().(*ptset.SparseSet[*CSObject]); !ok {
		t.Errorf("pointer created after the swap should have a sparse set, got %T", after.PointsToSet())
	}
	m.SetPointsToSetFactory(nil)
	if _, ok := m.GetOrCreateStaticField(&elem{"g"}).PointsToSet().(*ptset.HashSet[*CSObject]); !ok {
		t.Errorf("nil factory should fall back to hash sets")
	}
}
