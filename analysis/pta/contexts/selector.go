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
	"fmt"
)

const (
	// KindInsensitive is the name of the context-insensitive selector
	KindInsensitive = "insensitive"
	// KindCallSite is the name of the k-limited call-site sensitive selector
	KindCallSite = "k-call-site"
)

// A Selector is the context-sensitivity policy of the analysis.
type Selector interface {
	// EmptyContext returns the context of the entry points
	EmptyContext() Context

	// SelectContext returns the context in which callee is analyzed when called from site in context caller
	SelectContext(caller Context, site any, callee any) Context

	// SelectHeapContext returns the heap context of an object allocated at alloc in context ctx
	SelectHeapContext(ctx Context, alloc any) Context
}

// Insensitive analyzes every function and allocation in the empty context
type Insensitive struct {
	table *Table
}

// NewInsensitive returns a context-insensitive selector
func NewInsensitive() *Insensitive {
	return &Insensitive{table: NewTable()}
}

func (s *Insensitive) EmptyContext() Context                         { return s.table.Empty() }
func (s *Insensitive) SelectContext(_ Context, _ any, _ any) Context { return s.table.Empty() }
func (s *Insensitive) SelectHeapContext(_ Context, _ any) Context    { return s.table.Empty() }

// KCallSite is k-CFA: a callee's context is the k most recent call sites, and an object's heap context is the
// HeapK most recent call sites of the context it is allocated in.
type KCallSite struct {
	K     int
	HeapK int
	table *Table
}

// NewKCallSite returns a k-call-site sensitive selector with a heap context depth of heapK
func NewKCallSite(k, heapK int) *KCallSite {
	return &KCallSite{K: k, HeapK: heapK, table: NewTable()}
}

func (s *KCallSite) EmptyContext() Context { return s.table.Empty() }

func (s *KCallSite) SelectContext(caller Context, site any, _ any) Context {
	return s.table.Append(caller, site, s.K)
}

func (s *KCallSite) SelectHeapContext(ctx Context, _ any) Context {
	return s.table.Truncate(ctx, s.HeapK)
}

// Table returns the table interning the contexts built by the selector
func (s *KCallSite) Table() *Table { return s.table }

// NewSelector returns the selector with the given name. The depths are ignored by the insensitive selector.
func NewSelector(kind string, k int, heapK int) (Selector, error) {
	switch kind {
	case KindInsensitive:
		return NewInsensitive(), nil
	case KindCallSite, "":
		if k < 0 || heapK < 0 {
			return nil, fmt.Errorf("invalid context depths k=%d, heap k=%d", k, heapK)
		}
		return NewKCallSite(k, heapK), nil
	default:
		return nil, fmt.Errorf("unknown context sensitivity %q (expected %q or %q)", kind, KindInsensitive,
			KindCallSite)
	}
}
