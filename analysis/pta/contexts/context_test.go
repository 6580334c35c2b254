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

package contexts

import (
	"testing"
)

type site string

func TestInternReturnsSameContext(t *testing.T) {
	table := NewTable()
	c1 := table.Intern(site("a"), site("b"))
	c2 := table.Intern(site("a"), site("b"))
	if c1 != c2 {
		t.Errorf("interning the same elements twice returned different contexts")
	}
	if c3 := table.Intern(site("b"), site("a")); c3 == c1 {
		t.Errorf("interning elements in a different order returned the same context")
	}
	if table.Intern() != table.Empty() {
		t.Errorf("interning no elements should return the empty context")
	}
	// root, [a], [a b], [b], [b a]
	if table.Size() != 5 {
		t.Errorf("expected 5 contexts in the table, got %d", table.Size())
	}
}

func TestContextElements(t *testing.T) {
	table := NewTable()
	c := table.Intern(site("x"), site("y"), site("z"))
	if c.Len() != 3 {
		t.Fatalf("expected length 3, got %d", c.Len())
	}
	for i, e := range []site{"x", "y", "z"} {
		if c.At(i) != e {
			t.Errorf("element %d: expected %s, got %v", i, e, c.At(i))
		}
	}
	if s := c.String(); s != "[x, y, z]" {
		t.Errorf("unexpected string %q", s)
	}
	if s := table.Empty().String(); s != "[]" {
		t.Errorf("unexpected string for the empty context %q", s)
	}
}

func TestAppendIsKLimited(t *testing.T) {
	table := NewTable()
	tests := []struct {
		parent   []any
		elem     site
		k        int
		expected []any
	}{
		{nil, "a", 1, []any{site("a")}},
		{[]any{site("a")}, "b", 1, []any{site("b")}},
		{[]any{site("a")}, "b", 2, []any{site("a"), site("b")}},
		{[]any{site("a"), site("b")}, "c", 2, []any{site("b"), site("c")}},
		{[]any{site("a"), site("b")}, "c", 0, nil},
	}
	for _, test := range tests {
		got := table.Append(table.Intern(test.parent...), test.elem, test.k)
		if got != table.Intern(test.expected...) {
			t.Errorf("Append(%v, %v, %d) = %v, expected %v", test.parent, test.elem, test.k, got, test.expected)
		}
	}
}

func TestTruncate(t *testing.T) {
	table := NewTable()
	c := table.Intern(site("a"), site("b"), site("c"))
	if got := table.Truncate(c, 1); got != table.Intern(site("c")) {
		t.Errorf("expected [c], got %v", got)
	}
	if got := table.Truncate(c, 5); got != c {
		t.Errorf("truncating to a larger depth should not change the context, got %v", got)
	}
	if got := table.Truncate(c, 0); got != table.Empty() {
		t.Errorf("expected the empty context, got %v", got)
	}
}

func TestKCallSiteSelector(t *testing.T) {
	s := NewKCallSite(1, 1)
	empty := s.EmptyContext()
	c1 := s.SelectContext(empty, site("call1"), "f")
	c2 := s.SelectContext(empty, site("call2"), "f")
	if c1 == c2 {
		t.Errorf("different call sites should give different contexts")
	}
	if c1 != s.SelectContext(empty, site("call1"), "g") {
		t.Errorf("the same call site should give the same context")
	}
	if h := s.SelectHeapContext(c1, "alloc"); h != c1 {
		t.Errorf("expected heap context %v, got %v", c1, h)
	}
	if h := NewKCallSite(1, 0).SelectHeapContext(c1, "alloc"); h.Len() != 0 {
		t.Errorf("expected an empty heap context, got %v", h)
	}
}

func TestInsensitiveSelector(t *testing.T) {
	s := NewInsensitive()
	c := s.SelectContext(s.EmptyContext(), site("call"), "f")
	if c != s.EmptyContext() || s.SelectHeapContext(c, "alloc") != s.EmptyContext() {
		t.Errorf("insensitive selector should only return the empty context")
	}
}

func TestNewSelector(t *testing.T) {
	if s, err := NewSelector(KindInsensitive, 3, 3); err != nil {
		t.Errorf("unexpected error %v", err)
	} else if _, ok := s.(*Insensitive); !ok {
		t.Errorf("expected an insensitive selector, got %T", s)
	}
	if s, err := NewSelector(KindCallSite, 2, 1); err != nil {
		t.Errorf("unexpected error %v", err)
	} else if k, ok := s.(*KCallSite); !ok || k.K != 2 || k.HeapK != 1 {
		t.Errorf("expected a 2-call-site selector with heap depth 1, got %v", s)
	}
	if _, err := NewSelector("object", 1, 1); err == nil {
		t.Errorf("expected an error for an unknown selector")
	}
	if _, err := NewSelector(KindCallSite, -1, 1); err == nil {
		t.Errorf("expected an error for a negative depth")
	}
}
