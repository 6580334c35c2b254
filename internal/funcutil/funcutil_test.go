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

import (
	"testing"

	"golang.org/x/exp/slices"
)

func TestSeq(t *testing.T) {
	a := []int{1, 2, 3, 4}
	s := SeqOf(a)
	a = append(a, 5)

	if got := Collect(s); !slices.Equal(got, []int{1, 2, 3, 4}) {
		t.Errorf("Collect(SeqOf) = %v", got)
	}
	if n := Count(s); n != 4 {
		t.Errorf("Count = %d, expected 4", n)
	}
	even := Filter(s, func(x int) bool { return x%2 == 0 })
	if got := Collect(even); !slices.Equal(got, []int{2, 4}) {
		t.Errorf("Filter = %v", got)
	}
	// restartable
	if n := Count(even); n != 2 {
		t.Errorf("second iteration of Filter yields %d elements", n)
	}

	first := 0
	s(func(x int) bool {
		first = x
		return false
	})
	if first != 1 {
		t.Errorf("early stop yielded %d", first)
	}
}

func TestMap(t *testing.T) {
	letters := Map([]int{1, 2}, func(x int) string { return string(rune('a' + x)) })
	if !slices.Equal(letters, []string{"b", "c"}) {
		t.Errorf("Map = %v", letters)
	}
	if got := Map[int, int](nil, func(x int) int { return x }); got == nil || len(got) != 0 {
		t.Errorf("Map(nil) = %#v, expected an empty slice", got)
	}
}

func TestOptional(t *testing.T) {
	m := map[string]int{"a": 1}
	lookup := func(key string) Optional[int] {
		v, ok := m[key]
		return Lookup(v, ok)
	}
	tests := []struct {
		name string
		opt  Optional[int]
		some bool
		or   int
	}{
		{"some", Some(2), true, 2},
		{"none", None[int](), false, 7},
		{"lookup present", lookup("a"), true, 1},
		{"lookup absent", lookup("b"), false, 7},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.opt.IsSome() != test.some || test.opt.IsNone() == test.some {
				t.Errorf("IsSome = %v, expected %v", test.opt.IsSome(), test.some)
			}
			if got := test.opt.ValueOr(7); got != test.or {
				t.Errorf("ValueOr(7) = %d, expected %d", got, test.or)
			}
		})
	}
}
