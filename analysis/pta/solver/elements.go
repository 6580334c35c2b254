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
	"fmt"
	"go/types"

	"golang.org/x/tools/go/ssa"
)

// tupleVar is the component index of a value of tuple type, such as the result of a call returning several values.
type tupleVar struct {
	tuple ssa.Value
	index int
}

func (t tupleVar) Name() string { return fmt.Sprintf("%s#%d", t.tuple.Name(), t.index) }

func (t tupleVar) Type() types.Type { return t.tuple.Type().(*types.Tuple).At(t.index).Type() }

// returnVar is the result index of a function. Return instructions flow into it, and it flows into the values of
// the calls to the function.
type returnVar struct {
	fn    *ssa.Function
	index int
}

func (r returnVar) Name() string { return fmt.Sprintf("%s$ret%d", r.fn.String(), r.index) }

func (r returnVar) Type() types.Type { return r.fn.Signature.Results().At(r.index).Type() }

// syntheticField is a field of objects that does not exist in the source
type syntheticField struct {
	name string
}

func (f *syntheticField) Name() string { return f.name }

func (f *syntheticField) Type() types.Type { return types.Typ[types.UnsafePointer] }

var (
	// derefField holds the contents of an object accessed through a plain pointer, and the value boxed in an
	// interface
	derefField = &syntheticField{name: "*"}
	// mapKeyField holds the keys of a map object; the values are in its array index
	mapKeyField = &syntheticField{name: "key"}
)

// mayHavePointers returns false for the types whose values never point to objects
func mayHavePointers(t types.Type) bool {
	switch t := t.Underlying().(type) {
	case *types.Basic:
		return t.Kind() == types.UnsafePointer
	case *types.Tuple:
		for i := 0; i < t.Len(); i++ {
			if mayHavePointers(t.At(i).Type()) {
				return true
			}
		}
		return false
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			if mayHavePointers(t.Field(i).Type()) {
				return true
			}
		}
		return false
	case *types.Array:
		return mayHavePointers(t.Elem())
	default:
		return true
	}
}

// structField returns the field index of the struct type t, or the struct type pointed to by t
func structField(t types.Type, index int) *types.Var {
	if s, ok := pointee(t).Underlying().(*types.Struct); ok && index < s.NumFields() {
		return s.Field(index)
	}
	return nil
}

// isAggregate returns true for the struct and array types. Values of those types point to the objects that hold
// them, and their fields and elements are fields and elements of those objects.
func isAggregate(t types.Type) bool {
	switch t.Underlying().(type) {
	case *types.Struct, *types.Array:
		return true
	}
	return false
}

// pointee returns the type pointed to by t, or t if it is not a pointer
func pointee(t types.Type) types.Type {
	if ptr, ok := t.Underlying().(*types.Pointer); ok {
		return ptr.Elem()
	}
	return t
}

// aggregateFields returns the fields of the objects holding values of type t: the fields that may have pointers of
// t and of the structs and arrays nested in t. hasArray is true when t contains an array.
func aggregateFields(t types.Type) (fields []*types.Var, hasArray bool) {
	switch t := t.Underlying().(type) {
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			f := t.Field(i)
			if isAggregate(f.Type()) {
				nested, arr := aggregateFields(f.Type())
				fields = append(fields, nested...)
				hasArray = hasArray || arr
			} else if mayHavePointers(f.Type()) {
				fields = append(fields, f)
			}
		}
	case *types.Array:
		hasArray = mayHavePointers(t.Elem())
		if isAggregate(t.Elem()) {
			nested, _ := aggregateFields(t.Elem())
			fields = append(fields, nested...)
		}
	}
	return fields, hasArray
}

// calleeOf returns the function a function value object stands for
func calleeOf(obj any) *ssa.Function {
	switch o := obj.(type) {
	case *ssa.Function:
		return o
	case *ssa.MakeClosure:
		fn, _ := o.Fn.(*ssa.Function)
		return fn
	}
	return nil
}
