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

package funcutil

// Seq is a lazy sequence of values. Calling it runs yield on each element in turn until yield returns false.
// A Seq can be called any number of times; each call restarts the iteration.
type Seq[T any] func(yield func(T) bool)

// SeqOf returns the sequence of the elements of a. The slice header is captured when SeqOf is called, so
// elements appended to the underlying slice afterwards are not part of the sequence.
func SeqOf[T any](a []T) Seq[T] {
	return func(yield func(T) bool) {
		for _, x := range a {
			if !yield(x) {
				return
			}
		}
	}
}

// Collect returns all the elements of s in a slice
func Collect[T any](s Seq[T]) []T {
	var res []T
	s(func(x T) bool {
		res = append(res, x)
		return true
	})
	return res
}

// Count returns the number of elements in s
func Count[T any](s Seq[T]) int {
	n := 0
	s(func(T) bool {
		n++
		return true
	})
	return n
}

// Filter returns the sequence of elements x in s such that f(x)
func Filter[T any](s Seq[T], f func(T) bool) Seq[T] {
	return func(yield func(T) bool) {
		s(func(x T) bool {
			if f(x) {
				return yield(x)
			}
			return true
		})
	}
}

// Map returns a new slice b such for any i <= len(a), b[i] = f(a[i])
func Map[T any, S any](a []T, f func(T) S) []S {
	b := make([]S, 0, len(a))
	for _, x := range a {
		b = append(b, f(x))
	}
	return b
}
