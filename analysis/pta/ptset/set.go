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

// Package ptset implements the sets of abstract objects used as points-to sets by the pointer analysis.
//
// The sets only grow: there is no removal operation. The solver relies on [Set.AddAllDiff] to propagate only the
// elements that are new to a set, which is what makes the fixpoint computation terminate in practice.
package ptset

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Iterable is any collection of elements that can be traversed.
type Iterable[E any] interface {
	// ForEach calls f on each element until f returns false
	ForEach(f func(E) bool)
}

// Set is a mutable, monotone set of elements.
type Set[E comparable] interface {
	Iterable[E]

	// Add adds e to the set and returns true if e was not already in the set
	Add(e E) bool

	// Contains returns true if e is in the set
	Contains(e E) bool

	// Len returns the number of elements in the set
	Len() int

	// IsEmpty returns true if the set has no elements
	IsEmpty() bool

	// Copy returns a new set with the same elements as the receiver. Later changes to either set are not reflected
	// in the other.
	Copy() Set[E]

	// AddAllDiff adds all the elements of elems to the receiver and returns a new set containing exactly the
	// elements that were not in the receiver before the call.
	AddAllDiff(elems Iterable[E]) Set[E]

	// NewSet returns a new empty set of the same kind as the receiver.
	NewSet() Set[E]
}

// Factory returns a fresh, empty set each time it is called.
type Factory[E comparable] func() Set[E]

// Elems is a slice of elements that can be passed where an Iterable is expected.
type Elems[E any] []E

// ForEach calls f on each element of the slice until f returns false
func (es Elems[E]) ForEach(f func(E) bool) {
	for _, e := range es {
		if !f(e) {
			return
		}
	}
}

// Of returns the Iterable of its arguments
func Of[E any](es ...E) Elems[E] {
	return es
}

// CopyOf implements Set.Copy for any set s in terms of s.NewSet and s.Add.
func CopyOf[E comparable](s Set[E]) Set[E] {
	c := s.NewSet()
	s.ForEach(func(e E) bool {
		c.Add(e)
		return true
	})
	return c
}

// AddAllDiff implements Set.AddAllDiff for any set s in terms of s.NewSet and s.Add.
// Duplicates in elems are reported at most once in the difference.
func AddAllDiff[E comparable](s Set[E], elems Iterable[E]) Set[E] {
	diff := s.NewSet()
	elems.ForEach(func(e E) bool {
		if s.Add(e) {
			diff.Add(e)
		}
		return true
	})
	return diff
}

// ToSlice returns the elements of s in a slice sorted by less
func ToSlice[E comparable](s Iterable[E], less func(a, b E) bool) []E {
	var res []E
	s.ForEach(func(e E) bool {
		res = append(res, e)
		return true
	})
	slices.SortFunc(res, less)
	return res
}

// String formats s as {e1, e2, ...} with the elements sorted by their string representation.
func String[E comparable](s Iterable[E]) string {
	var elts []string
	s.ForEach(func(e E) bool {
		elts = append(elts, fmt.Sprintf("%v", e))
		return true
	})
	slices.Sort(elts)
	return "{" + strings.Join(elts, ", ") + "}"
}
