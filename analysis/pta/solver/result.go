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

package solver

import (
	"github.com/awslabs/ar-go-pta/analysis/pta/cs"
	"github.com/awslabs/ar-go-pta/analysis/pta/result"
	"github.com/awslabs/ar-go-pta/internal/graphutil"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/ssa"
)

// Result is the state of the solver at the fixpoint
type Result struct {
	store     *cs.Manager
	pfg       *graphutil.Digraph[cs.Pointer]
	edges     []result.CallEdge
	reachable int
	functions map[*ssa.Function]bool

	// Iterations is the number of worklist entries processed
	Iterations int
}

// Store returns the element manager holding the points-to sets
func (r *Result) Store() cs.Store { return r.store }

// ContextSensitive returns the context-sensitive view of the result
func (r *Result) ContextSensitive() result.ContextSensitive {
	return result.NewContextSensitive(r.store, r.edges)
}

// ContextInsensitive returns the view of the result where points-to sets are merged over contexts
func (r *Result) ContextInsensitive() result.Result {
	return result.NewContextInsensitive(r.store, r.edges)
}

// ReachableMethods is the number of methods in context reached by the analysis
func (r *Result) ReachableMethods() int { return r.reachable }

// ReachableFunctions returns the functions reachable in some context
func (r *Result) ReachableFunctions() map[*ssa.Function]bool { return r.functions }

// FlowGraph returns the pointer flow graph: an edge p -> q means the objects pointed to by p flow to q.
func (r *Result) FlowGraph() *graphutil.Digraph[cs.Pointer] { return r.pfg }

// CallGraph returns the call graph where call edges are merged over contexts. Its root has no function.
func (r *Result) CallGraph() *callgraph.Graph {
	cg := callgraph.New(nil)
	type key struct {
		site   ssa.CallInstruction
		callee *ssa.Function
	}
	seen := map[key]bool{}
	for _, e := range r.edges {
		site := e.Site.CallSite().(ssa.CallInstruction)
		callee := e.Callee.Method().(*ssa.Function)
		k := key{site, callee}
		if seen[k] {
			continue
		}
		seen[k] = true
		callgraph.AddEdge(cg.CreateNode(site.Parent()), site, cg.CreateNode(callee))
	}
	return cg
}

// RecursiveMethods returns the groups of mutually recursive methods in context
func (r *Result) RecursiveMethods() [][]*cs.CSMethod {
	g := graphutil.NewDigraph[*cs.CSMethod]()
	for _, e := range r.edges {
		caller := e.Site.CallSite().(ssa.CallInstruction).Parent()
		g.AddEdge(r.store.GetOrCreateMethod(e.Site.Context(), caller), e.Callee)
	}
	return graphutil.StrongComponents(g)
}
