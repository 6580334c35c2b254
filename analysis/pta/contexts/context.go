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

// Package contexts defines the analysis contexts that distinguish the instances of a program element, and the
// selectors deciding which context a callee or an allocation is analyzed in.
//
// A context is compared with ==. The call strings built by a [Table] are interned, so two call strings with the
// same elements are the same pointer and can be used directly as map keys.
package contexts

import (
	"fmt"
	"strings"
)

// A Context is an immutable sequence of context elements (call sites, allocation sites, ...), oldest first.
// Implementations must be comparable.
type Context interface {
	// Len returns the number of elements in the context
	Len() int

	// At returns the i-th element of the context, 0 being the oldest
	At(i int) any

	String() string
}

// callString is a node in the trie of interned contexts. The context it represents is the sequence of elements on
// the path from the root.
type callString struct {
	parent   *callString
	elem     any
	depth    int
	children map[any]*callString
}

func (c *callString) Len() int { return c.depth }

func (c *callString) At(i int) any {
	if i < 0 || i >= c.depth {
		panic(fmt.Sprintf("context index %d out of range [0,%d)", i, c.depth))
	}
	n := c
	for j := c.depth - 1; j > i; j-- {
		n = n.parent
	}
	return n.elem
}

func (c *callString) String() string {
	elems := make([]string, c.depth)
	for n, i := c, c.depth-1; i >= 0; n, i = n.parent, i-1 {
		elems[i] = fmt.Sprintf("%v", n.elem)
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

// Elements returns the elements of ctx, oldest first
func Elements(ctx Context) []any {
	if ctx == nil {
		return nil
	}
	elems := make([]any, ctx.Len())
	for i := range elems {
		elems[i] = ctx.At(i)
	}
	return elems
}

// Table interns call strings. Elements must be comparable.
type Table struct {
	root *callString
	size int
}

// NewTable returns a table containing only the empty context
func NewTable() *Table {
	return &Table{root: &callString{}, size: 1}
}

// Empty returns the empty context
func (t *Table) Empty() Context {
	return t.root
}

// Size returns the number of distinct contexts interned in the table
func (t *Table) Size() int {
	return t.size
}

// Intern returns the unique context with the given elements, oldest first
func (t *Table) Intern(elems ...any) Context {
	n := t.root
	for _, e := range elems {
		child, ok := n.children[e]
		if !ok {
			if n.children == nil {
				n.children = make(map[any]*callString, 1)
			}
			child = &callString{parent: n, elem: e, depth: n.depth + 1}
			n.children[e] = child
			t.size++
		}
		n = child
	}
	return n
}

// Append returns the context made of the last k elements of parent followed by elem.
// If k <= 0, Append returns the empty context.
func (t *Table) Append(parent Context, elem any, k int) Context {
	if k <= 0 {
		return t.root
	}
	elems := append(Elements(parent), elem)
	if len(elems) > k {
		elems = elems[len(elems)-k:]
	}
	return t.Intern(elems...)
}

// Truncate returns the context made of the last k elements of ctx
func (t *Table) Truncate(ctx Context, k int) Context {
	if k <= 0 || ctx == nil {
		return t.root
	}
	elems := Elements(ctx)
	if len(elems) > k {
		elems = elems[len(elems)-k:]
	}
	return t.Intern(elems...)
}
