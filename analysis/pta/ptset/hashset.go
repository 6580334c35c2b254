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

// HashSet is a set backed by a Go map.
type HashSet[E comparable] struct {
	elems map[E]struct{}
}

// NewHashSet returns an empty HashSet
func NewHashSet[E comparable]() *HashSet[E] {
	return &HashSet[E]{elems: make(map[E]struct{})}
}

// HashSetFactory returns a factory of empty HashSets
func HashSetFactory[E comparable]() Factory[E] {
	return func() Set[E] { return NewHashSet[E]() }
}

func (s *HashSet[E]) Add(e E) bool {
	if _, ok := s.elems[e]; ok {
		return false
	}
	s.elems[e] = struct{}{}
	return true
}

func (s *HashSet[E]) Contains(e E) bool {
	_, ok := s.elems[e]
	return ok
}

func (s *HashSet[E]) Len() int { return len(s.elems) }

func (s *HashSet[E]) IsEmpty() bool { return len(s.elems) == 0 }

func (s *HashSet[E]) ForEach(f func(E) bool) {
	for e := range s.elems {
		if !f(e) {
			return
		}
	}
}

func (s *HashSet[E]) Copy() Set[E] { return CopyOf[E](s) }

func (s *HashSet[E]) AddAllDiff(elems Iterable[E]) Set[E] { return AddAllDiff[E](s, elems) }

func (s *HashSet[E]) NewSet() Set[E] { return NewHashSet[E]() }

func (s *HashSet[E]) String() string { return String[E](s) }
