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

package graphutil

import (
	yb "github.com/yourbasic/graph"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/traverse"
)

// Digraph is a directed graph over values of type T, such as the pointer flow graph of the pointer analysis. Each
// value is numbered in the order it is added to the graph, and the numbers are the vertices used by the graph
// libraries: a Digraph implements the yourbasic graph.Iterator and Gonum's graph.Directed.
type Digraph[T comparable] struct {
	ids    map[T]int
	values []T
	succs  [][]int
	preds  [][]int
	edges  map[[2]int]bool
}

// NewDigraph returns an empty graph
func NewDigraph[T comparable]() *Digraph[T] {
	return &Digraph[T]{
		ids:   map[T]int{},
		edges: map[[2]int]bool{},
	}
}

// AddNode adds v to the graph if it is not already a node, and returns its number
func (g *Digraph[T]) AddNode(v T) int {
	if id, ok := g.ids[v]; ok {
		return id
	}
	id := len(g.values)
	g.ids[v] = id
	g.values = append(g.values, v)
	g.succs = append(g.succs, nil)
	g.preds = append(g.preds, nil)
	return id
}

// AddEdge adds an edge from -> to, adding the nodes as needed. It returns false if the edge was already in the graph.
func (g *Digraph[T]) AddEdge(from, to T) bool {
	x, y := g.AddNode(from), g.AddNode(to)
	if g.edges[[2]int{x, y}] {
		return false
	}
	g.edges[[2]int{x, y}] = true
	g.succs[x] = append(g.succs[x], y)
	g.preds[y] = append(g.preds[y], x)
	return true
}

// HasEdge returns true if there is an edge from -> to
func (g *Digraph[T]) HasEdge(from, to T) bool {
	x, ok1 := g.ids[from]
	y, ok2 := g.ids[to]
	return ok1 && ok2 && g.edges[[2]int{x, y}]
}

// Successors returns the targets of the edges out of v, in the order the edges were added
func (g *Digraph[T]) Successors(v T) []T {
	id, ok := g.ids[v]
	if !ok {
		return nil
	}
	res := make([]T, len(g.succs[id]))
	for i, w := range g.succs[id] {
		res[i] = g.values[w]
	}
	return res
}

// ID returns the number of v in the graph
func (g *Digraph[T]) ID(v T) (int, bool) {
	id, ok := g.ids[v]
	return id, ok
}

// Value returns the value numbered id
func (g *Digraph[T]) Value(id int) T {
	return g.values[id]
}

// Len returns the number of nodes
func (g *Digraph[T]) Len() int {
	return len(g.values)
}

// NumEdges returns the number of edges
func (g *Digraph[T]) NumEdges() int {
	return len(g.edges)
}

// Order implements the order of the graph.Iterator interface for the Digraph
func (g *Digraph[T]) Order() int {
	return len(g.values)
}

// Visit implements the graph.Iterator interface for the Digraph
func (g *Digraph[T]) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if v < 0 || v >= len(g.succs) {
		return false
	}
	for _, w := range g.succs[v] {
		if do(w, 1) {
			return true
		}
	}
	return false
}

// StrongComponents returns the strongly connected components of g with more than one node, or with a self loop.
// The components are computed by the yourbasic graph library.
func StrongComponents[T comparable](g *Digraph[T]) [][]T {
	var res [][]T
	for _, component := range yb.StrongComponents(g) {
		if len(component) == 1 && !g.edges[[2]int{component[0], component[0]}] {
			continue
		}
		values := make([]T, len(component))
		for i, id := range component {
			values[i] = g.values[id]
		}
		res = append(res, values)
	}
	return res
}

// Reachable returns the values reachable from v in breadth-first order, starting with v. It returns nil if v is not
// in the graph.
func Reachable[T comparable](g *Digraph[T], v T) []T {
	id, ok := g.ids[v]
	if !ok {
		return nil
	}
	var res []T
	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) {
			res = append(res, g.values[n.ID()])
		},
	}
	bf.Walk(g, g.Node(int64(id)), nil)
	return res
}

// *************** Graph interface implementation **********************

// Node implements the Graph interface
func (g *Digraph[T]) Node(id int64) graph.Node {
	if id < 0 || id >= int64(len(g.values)) {
		return nil
	}
	return Node[T]{id: id, Value: g.values[id]}
}

// Nodes returns the set of nodes in the graph
func (g *Digraph[T]) Nodes() graph.Nodes {
	nodes := make([]graph.Node, len(g.values))
	for i, v := range g.values {
		nodes[i] = Node[T]{id: int64(i), Value: v}
	}
	return iterator.NewOrderedNodes(nodes)
}

// From returns the set of nodes that are targets of the edges out of id
func (g *Digraph[T]) From(id int64) graph.Nodes {
	if g.Node(id) == nil {
		return graph.Empty
	}
	return g.nodesOf(g.succs[id])
}

// To returns the set of nodes that are origins of edges into id
func (g *Digraph[T]) To(id int64) graph.Nodes {
	if g.Node(id) == nil {
		return graph.Empty
	}
	return g.nodesOf(g.preds[id])
}

func (g *Digraph[T]) nodesOf(ids []int) graph.Nodes {
	nodes := make([]graph.Node, len(ids))
	for i, w := range ids {
		nodes[i] = Node[T]{id: int64(w), Value: g.values[w]}
	}
	return iterator.NewOrderedNodes(nodes)
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (g *Digraph[T]) HasEdgeBetween(xid, yid int64) bool {
	return g.HasEdgeFromTo(xid, yid) || g.HasEdgeFromTo(yid, xid)
}

// HasEdgeFromTo returns whether an edge exists from uid to vid
func (g *Digraph[T]) HasEdgeFromTo(uid, vid int64) bool {
	return g.edges[[2]int{int(uid), int(vid)}]
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (g *Digraph[T]) Edge(uid, vid int64) graph.Edge {
	if !g.HasEdgeFromTo(uid, vid) {
		return nil
	}
	return Edge[T]{from: g.Node(uid).(Node[T]), to: g.Node(vid).(Node[T])}
}

// *************** Nodes implementation **********************

// Node is a value of a Digraph that implements the graph.Node interface
type Node[T any] struct {
	id    int64
	Value T
}

// ID returns the id of the node
func (n Node[T]) ID() int64 {
	return n.id
}

// *************** Edge implementation **********************

// Edge implements the graph.Edge interface
type Edge[T any] struct {
	from Node[T]
	to   Node[T]
}

// From returns the origin of the edge
func (e Edge[T]) From() graph.Node {
	return e.from
}

// To returns the destination of the edge
func (e Edge[T]) To() graph.Node {
	return e.to
}

// ReversedEdge returns a new value representing the reversed edge
func (e Edge[T]) ReversedEdge() graph.Edge {
	return Edge[T]{from: e.to, to: e.from}
}

var _ graph.Directed = (*Digraph[int])(nil)
var _ yb.Iterator = (*Digraph[int])(nil)
