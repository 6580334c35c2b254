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

package ptset

import (
	"golang.org/x/tools/container/intsets"
)

// An Indexer maps elements to dense non-negative indices and back. Implementations must be comparable (typically
// pointers): two sparse sets only use the word-level fast paths when they share the same indexer.
type Indexer[E any] interface {
	Index(e E) int
	At(i int) E
}

// SparseSet is a set of indexed elements stored in an intsets.Sparse bit set. It is the most compact
// representation when the elements are numbered densely, which is the case of context-sensitive objects.
type SparseSet[E comparable] struct {
	bits    intsets.Sparse
	indexer Indexer[E]
}

// NewSparseSet returns an empty sparse set whose elements are numbered by indexer
func NewSparseSet[E comparable](indexer Indexer[E]) *SparseSet[E] {
	return &SparseSet[E]{indexer: indexer}
}

// SparseSetFactory returns a factory of empty sparse sets sharing indexer
func SparseSetFactory[E comparable](indexer Indexer[E]) Factory[E] {
	return func() Set[E] { return NewSparseSet[E](indexer) }
}

func (s *SparseSet[E]) Add(e E) bool { return s.bits.Insert(s.indexer.Index(e)) }

func (s *SparseSet[E]) Contains(e E) bool { return s.bits.Has(s.indexer.Index(e)) }

func (s *SparseSet[E]) Len() int { return s.bits.Len() }

func (s *SparseSet[E]) IsEmpty() bool { return s.bits.IsEmpty() }

// ForEach iterates in increasing index order. The indices are read before the first call to f, so f may add
// elements to s.
func (s *SparseSet[E]) ForEach(f func(E) bool) {
	for _, i := range s.bits.AppendTo(nil) {
		if !f(s.indexer.At(i)) {
			return
		}
	}
}

func (s *SparseSet[E]) Copy() Set[E] {
	c := NewSparseSet[E](s.indexer)
	c.bits.Copy(&s.bits)
	return c
}

// AddAllDiff computes the difference with word-level operations when elems is a sparse set with the same
// indexer, and falls back to element-wise insertion otherwise.
func (s *SparseSet[E]) AddAllDiff(elems Iterable[E]) Set[E] {
	other, ok := elems.(*SparseSet[E])
	if !ok || other.indexer != s.indexer {
		return AddAllDiff[E](s, elems)
	}
	diff := NewSparseSet[E](s.indexer)
	diff.bits.Difference(&other.bits, &s.bits)
	s.bits.UnionWith(&diff.bits)
	return diff
}

func (s *SparseSet[E]) NewSet() Set[E] { return NewSparseSet[E](s.indexer) }

func (s *SparseSet[E]) String() string { return String[E](s) }
