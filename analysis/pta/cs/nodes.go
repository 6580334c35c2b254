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

package cs

import (
	"fmt"

	"github.com/awslabs/ar-go-pta/analysis/pta/contexts"
	"github.com/awslabs/ar-go-pta/analysis/pta/ptset"
)

// PointsToSet is the set of context-sensitive objects a pointer may point to
type PointsToSet = ptset.Set[*CSObject]

// A Pointer is a node that owns a points-to set: *CSVariable, *InstanceField, *ArrayIndex or *StaticField.
type Pointer interface {
	// PointsToSet returns the points-to set of the pointer. It is never nil and always the same set.
	PointsToSet() PointsToSet

	String() string

	setPointsToSet(PointsToSet)
}

type pointer struct {
	pts PointsToSet
}

func (p *pointer) PointsToSet() PointsToSet { return p.pts }

func (p *pointer) setPointsToSet(s PointsToSet) { p.pts = s }

// CSVariable is a variable in a context
type CSVariable struct {
	pointer
	context  contexts.Context
	variable Variable
}

// Context returns the context of the variable
func (v *CSVariable) Context() contexts.Context { return v.context }

// Variable returns the program variable
func (v *CSVariable) Variable() Variable { return v.variable }

func (v *CSVariable) String() string {
	return fmt.Sprintf("%v:%s", v.context, v.variable.Name())
}

// InstanceField is the field of a context-sensitive object
type InstanceField struct {
	pointer
	base  *CSObject
	field Field
}

// Base returns the object the field belongs to
func (f *InstanceField) Base() *CSObject { return f.base }

// Field returns the field
func (f *InstanceField) Field() Field { return f.field }

func (f *InstanceField) String() string {
	return fmt.Sprintf("%s.%s", f.base, f.field.Name())
}

// ArrayIndex stands for all the elements of an array, slice, map or channel object
type ArrayIndex struct {
	pointer
	array *CSObject
}

// Array returns the object whose elements the node represents
func (a *ArrayIndex) Array() *CSObject { return a.array }

func (a *ArrayIndex) String() string {
	return fmt.Sprintf("%s[*]", a.array)
}

// StaticField is a global variable
type StaticField struct {
	pointer
	field Field
}

// Field returns the global
func (f *StaticField) Field() Field { return f.field }

func (f *StaticField) String() string {
	return f.field.Name()
}

// CSObject is an abstract object in a heap context. Objects are numbered densely in creation order.
type CSObject struct {
	id          int
	heapContext contexts.Context
	object      Object
}

// ID returns the creation index of the object in its manager
func (o *CSObject) ID() int { return o.id }

// Context returns the heap context of the object
func (o *CSObject) Context() contexts.Context { return o.heapContext }

// Object returns the abstract object
func (o *CSObject) Object() Object { return o.object }

func (o *CSObject) String() string {
	return fmt.Sprintf("%v:%s", o.heapContext, o.object)
}

// CSCallSite is a call site in a context
type CSCallSite struct {
	context  contexts.Context
	callSite CallSite
}

// Context returns the context of the call site
func (c *CSCallSite) Context() contexts.Context { return c.context }

// CallSite returns the call instruction
func (c *CSCallSite) CallSite() CallSite { return c.callSite }

func (c *CSCallSite) String() string {
	return fmt.Sprintf("%v:%s", c.context, c.callSite)
}

// CSMethod is a method in a context
type CSMethod struct {
	context contexts.Context
	method  Method
}

// Context returns the context of the method
func (m *CSMethod) Context() contexts.Context { return m.context }

// Method returns the function
func (m *CSMethod) Method() Method { return m.method }

func (m *CSMethod) String() string {
	return fmt.Sprintf("%v:%s", m.context, m.method)
}
