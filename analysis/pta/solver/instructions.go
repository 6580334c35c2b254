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
	"go/token"
	"go/types"

	"github.com/awslabs/ar-go-pta/analysis/pta/contexts"
	"github.com/awslabs/ar-go-pta/analysis/pta/cs"
	"github.com/awslabs/ar-go-pta/analysis/pta/result"
	"golang.org/x/tools/go/ssa"
)

// processInstruction adds the nodes, edges and rules of an instruction of a method reachable in ctx
//
//gocyclo:ignore
func (s *solver) processInstruction(ctx contexts.Context, instr ssa.Instruction) {
	switch instr := instr.(type) {
	case *ssa.Alloc:
		s.allocate(ctx, instr)
	case *ssa.MakeSlice:
		s.allocate(ctx, instr)
	case *ssa.MakeMap:
		s.allocate(ctx, instr)
	case *ssa.MakeChan:
		s.allocate(ctx, instr)
	case *ssa.MakeInterface:
		box := s.allocate(ctx, instr)
		if x := s.valueNode(ctx, instr.X); x != nil {
			s.addEdge(x, s.store.GetOrCreateInstanceField(box, derefField))
		}
	case *ssa.MakeClosure:
		s.allocate(ctx, instr)
		fn := instr.Fn.(*ssa.Function)
		for i, binding := range instr.Bindings {
			s.flow(s.valueNode(ctx, binding), s.valueNode(s.empty, fn.FreeVars[i]))
		}

	case *ssa.Phi:
		for _, edge := range instr.Edges {
			s.copyValue(ctx, edge, instr)
		}
	case *ssa.ChangeType:
		s.copyValue(ctx, instr.X, instr)
	case *ssa.ChangeInterface:
		s.copyValue(ctx, instr.X, instr)
	case *ssa.Convert:
		s.copyValue(ctx, instr.X, instr)
	case *ssa.MultiConvert:
		s.copyValue(ctx, instr.X, instr)
	case *ssa.SliceToArrayPointer:
		s.copyValue(ctx, instr.X, instr)
	case *ssa.Slice:
		s.copyValue(ctx, instr.X, instr)
	case *ssa.Field:
		s.fieldValue(ctx, instr)
	case *ssa.Index:
		s.indexValue(ctx, instr)
	case *ssa.FieldAddr:
		if isAggregate(pointee(instr.Type())) {
			s.copyValue(ctx, instr.X, instr)
		}
	case *ssa.IndexAddr:
		if isAggregate(pointee(instr.Type())) {
			s.copyValue(ctx, instr.X, instr)
		}
	case *ssa.Extract:
		s.flow(s.tupleNode(ctx, instr.Tuple, instr.Index), s.valueNode(ctx, instr))
	case *ssa.TypeAssert:
		s.typeAssert(ctx, instr)

	case *ssa.UnOp:
		switch instr.Op {
		case token.MUL:
			if isAggregate(instr.Type()) {
				s.copyValue(ctx, instr.X, instr)
			} else {
				s.load(ctx, instr.X, s.valueNode(ctx, instr))
			}
		case token.ARROW:
			s.elements(ctx, instr.X, s.resultNode(ctx, instr, instr.CommaOk), nil)
		}
	case *ssa.Store:
		if isAggregate(instr.Val.Type()) {
			s.storeAggregate(ctx, instr.Addr, s.valueNode(ctx, instr.Val))
		} else {
			s.storeTo(ctx, instr.Addr, s.valueNode(ctx, instr.Val))
		}
	case *ssa.Send:
		s.elements(ctx, instr.Chan, nil, s.valueNode(ctx, instr.X))
	case *ssa.Lookup:
		if _, isMap := instr.X.Type().Underlying().(*types.Map); isMap {
			s.elements(ctx, instr.X, s.resultNode(ctx, instr, instr.CommaOk), nil)
		}
	case *ssa.MapUpdate:
		s.elements(ctx, instr.Map, nil, s.valueNode(ctx, instr.Value))
		if key := s.valueNode(ctx, instr.Key); key != nil {
			s.forEachObject(s.valueNode(ctx, instr.Map), func(o *cs.CSObject) {
				s.addEdge(key, s.store.GetOrCreateInstanceField(o, mapKeyField))
			})
		}
	case *ssa.Next:
		if rng, ok := instr.Iter.(*ssa.Range); ok && !instr.IsString {
			s.elements(ctx, rng.X, s.tupleNode(ctx, instr, 2), nil)
			if key := s.tupleNode(ctx, instr, 1); key != nil {
				if m := s.valueNode(ctx, rng.X); m != nil {
					s.forEachObject(m, func(o *cs.CSObject) {
						s.addEdge(s.store.GetOrCreateInstanceField(o, mapKeyField), key)
					})
				}
			}
		}

	case *ssa.Return:
		fn := instr.Parent()
		for i, res := range instr.Results {
			s.flow(s.valueNode(ctx, res), s.returnNode(ctx, fn, i))
		}
	case ssa.CallInstruction:
		s.processCall(ctx, instr)
	}
}

// allocate creates the object allocated by v in a heap context selected from ctx, and adds it to the points-to set
// of v
func (s *solver) allocate(ctx contexts.Context, v ssa.Value) *cs.CSObject {
	obj := s.store.GetOrCreateObject(s.selector.SelectHeapContext(ctx, v), v)
	s.addObject(s.store.GetOrCreateVariable(ctx, v), obj)
	return obj
}

// load adds the edges from the pointers at address addr to dst
func (s *solver) load(ctx contexts.Context, addr ssa.Value, dst *cs.CSVariable) {
	if dst == nil {
		return
	}
	s.access(ctx, addr, func(p cs.Pointer) { s.addEdge(p, dst) })
}

// storeTo adds the edges from src to the pointers at address addr
func (s *solver) storeTo(ctx contexts.Context, addr ssa.Value, src *cs.CSVariable) {
	if src == nil {
		return
	}
	s.access(ctx, addr, func(p cs.Pointer) { s.addEdge(src, p) })
}

// access calls f on each pointer the address addr may denote. Addresses of fields and elements computed in the same
// function select the field of the objects pointed to by their base; other addresses denote the contents of the
// objects they point to.
func (s *solver) access(ctx contexts.Context, addr ssa.Value, f func(p cs.Pointer)) {
	switch a := addr.(type) {
	case *ssa.Global:
		f(s.store.GetOrCreateStaticField(a))
	case *ssa.FieldAddr:
		field := structField(a.X.Type(), a.Field)
		base := s.valueNode(ctx, a.X)
		if field == nil || base == nil {
			return
		}
		s.forEachObject(base, func(o *cs.CSObject) {
			f(s.store.GetOrCreateInstanceField(o, field))
		})
	case *ssa.IndexAddr:
		base := s.valueNode(ctx, a.X)
		if base == nil {
			return
		}
		s.forEachObject(base, func(o *cs.CSObject) {
			f(s.store.GetOrCreateArrayIndex(o))
		})
	default:
		p := s.valueNode(ctx, addr)
		if p == nil {
			return
		}
		s.forEachObject(p, func(o *cs.CSObject) {
			f(s.store.GetOrCreateInstanceField(o, derefField))
		})
	}
}

// storeAggregate copies the fields and elements of the objects of the struct or array value src into the objects
// stored at addr
func (s *solver) storeAggregate(ctx contexts.Context, addr ssa.Value, src *cs.CSVariable) {
	dst := s.valueNode(ctx, addr)
	if src == nil || dst == nil {
		return
	}
	fields, hasArray := aggregateFields(pointee(addr.Type()))
	s.forEachObject(src, func(from *cs.CSObject) {
		s.forEachObject(dst, func(to *cs.CSObject) {
			if from == to {
				return
			}
			for _, f := range fields {
				s.addEdge(s.store.GetOrCreateInstanceField(from, f), s.store.GetOrCreateInstanceField(to, f))
			}
			if hasArray {
				s.addEdge(s.store.GetOrCreateArrayIndex(from), s.store.GetOrCreateArrayIndex(to))
			}
		})
	})
}

// fieldValue handles the selection of a field of a struct value. Struct values point to the objects that hold them.
func (s *solver) fieldValue(ctx contexts.Context, instr *ssa.Field) {
	if isAggregate(instr.Type()) {
		s.copyValue(ctx, instr.X, instr)
		return
	}
	dst := s.valueNode(ctx, instr)
	x := s.valueNode(ctx, instr.X)
	field := structField(instr.X.Type(), instr.Field)
	if dst == nil || x == nil || field == nil {
		return
	}
	s.forEachObject(x, func(o *cs.CSObject) {
		s.addEdge(s.store.GetOrCreateInstanceField(o, field), dst)
	})
}

// indexValue handles the indexing of an array value
func (s *solver) indexValue(ctx contexts.Context, instr *ssa.Index) {
	if isAggregate(instr.Type()) {
		s.copyValue(ctx, instr.X, instr)
		return
	}
	s.elements(ctx, instr.X, s.valueNode(ctx, instr), nil)
}

// elements connects the elements of the container objects (slices, maps, channels) that v points to: they flow to
// dst, and src flows to them. Either can be nil.
func (s *solver) elements(ctx contexts.Context, v ssa.Value, dst *cs.CSVariable, src *cs.CSVariable) {
	container := s.valueNode(ctx, v)
	if container == nil || (dst == nil && src == nil) {
		return
	}
	s.forEachObject(container, func(o *cs.CSObject) {
		elems := s.store.GetOrCreateArrayIndex(o)
		if dst != nil {
			s.addEdge(elems, dst)
		}
		if src != nil {
			s.addEdge(src, elems)
		}
	})
}

// typeAssert handles x.(T). Asserting an interface type copies the boxes; asserting a concrete type extracts the
// values of the boxes of that type.
func (s *solver) typeAssert(ctx contexts.Context, instr *ssa.TypeAssert) {
	x := s.valueNode(ctx, instr.X)
	dst := s.resultNode(ctx, instr, instr.CommaOk)
	if x == nil || dst == nil {
		return
	}
	if types.IsInterface(instr.AssertedType) {
		s.addEdge(x, dst)
		return
	}
	s.forEachObject(x, func(o *cs.CSObject) {
		if box, ok := o.Object().(*ssa.MakeInterface); ok && types.Identical(box.X.Type(), instr.AssertedType) {
			s.addEdge(s.store.GetOrCreateInstanceField(o, derefField), dst)
		}
	})
}

// processCall resolves the callees of a call instruction. Static callees are resolved immediately, dynamic calls and
// interface invocations as the objects of the function value or receiver are discovered.
func (s *solver) processCall(ctx contexts.Context, site ssa.CallInstruction) {
	common := site.Common()
	switch {
	case common.IsInvoke():
		recv := s.valueNode(ctx, common.Value)
		if recv == nil {
			return
		}
		s.forEachObject(recv, func(o *cs.CSObject) {
			box, ok := o.Object().(*ssa.MakeInterface)
			if !ok {
				return
			}
			callee := s.lookupMethod(box.X.Type(), common.Method)
			if callee == nil || len(callee.Params) == 0 {
				return
			}
			calleeCtx := s.callEdge(ctx, site, callee, 1)
			if param := s.valueNode(calleeCtx, callee.Params[0]); param != nil {
				s.addEdge(s.store.GetOrCreateInstanceField(o, derefField), param)
			}
		})
	case isBuiltin(common.Value):
		s.builtin(ctx, site)
	case common.StaticCallee() != nil:
		s.callEdge(ctx, site, common.StaticCallee(), 0)
	default:
		fnValue := s.valueNode(ctx, common.Value)
		if fnValue == nil {
			return
		}
		s.forEachObject(fnValue, func(o *cs.CSObject) {
			if callee := calleeOf(o.Object()); callee != nil {
				s.callEdge(ctx, site, callee, 0)
			}
		})
	}
}

func isBuiltin(v ssa.Value) bool {
	_, ok := v.(*ssa.Builtin)
	return ok
}

// lookupMethod returns the implementation of method for the dynamic type t
func (s *solver) lookupMethod(t types.Type, method *types.Func) *ssa.Function {
	sel := s.prog.MethodSets.MethodSet(t).Lookup(method.Pkg(), method.Name())
	if sel == nil {
		return nil
	}
	return s.prog.MethodValue(sel)
}

// callEdge adds the edge from site in ctx to callee in the context selected for the call, and connects the arguments
// and results. The first argOffset parameters of callee are not arguments of the call (the receiver of an interface
// invocation). It returns the context of the callee.
func (s *solver) callEdge(ctx contexts.Context, site ssa.CallInstruction, callee *ssa.Function,
	argOffset int) contexts.Context {
	calleeCtx := s.selector.SelectContext(ctx, site, callee)
	edge := result.CallEdge{
		Site:   s.store.GetOrCreateCallSite(ctx, site),
		Callee: s.store.GetOrCreateMethod(calleeCtx, callee),
	}
	if s.callEdges[edge] {
		return calleeCtx
	}
	s.callEdges[edge] = true
	s.edges = append(s.edges, edge)
	s.logger.Tracef("Call edge %s -> %s\n", edge.Site, edge.Callee)
	s.addReachable(edge.Callee)

	for i, arg := range site.Common().Args {
		if i+argOffset >= len(callee.Params) {
			break
		}
		s.flow(s.valueNode(ctx, arg), s.valueNode(calleeCtx, callee.Params[i+argOffset]))
	}
	if call := site.Value(); call != nil {
		results := callee.Signature.Results()
		if results.Len() == 1 {
			s.flow(s.returnNode(calleeCtx, callee, 0), s.valueNode(ctx, call))
		} else {
			for i := 0; i < results.Len(); i++ {
				s.flow(s.returnNode(calleeCtx, callee, i), s.tupleNode(ctx, call, i))
			}
		}
	}
	return calleeCtx
}

// builtin handles the builtins that return one of their arguments
func (s *solver) builtin(ctx contexts.Context, site ssa.CallInstruction) {
	call := site.Value()
	if call == nil {
		return
	}
	common := site.Common()
	switch common.Value.(*ssa.Builtin).Name() {
	case "append":
		// the elements of the appended slice are not copied into the array of the result
		for _, arg := range common.Args {
			s.copyValue(ctx, arg, call)
		}
	case "ssa:wrapnilchk":
		s.copyValue(ctx, common.Args[0], call)
	}
}
