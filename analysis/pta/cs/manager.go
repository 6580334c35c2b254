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
	"sync/atomic"

	"github.com/awslabs/ar-go-pta/analysis/config"
	"github.com/awslabs/ar-go-pta/analysis/pta/contexts"
	"github.com/awslabs/ar-go-pta/analysis/pta/ptset"
	"github.com/awslabs/ar-go-pta/internal/funcutil"
)

// Store is the interface of the context-sensitive element managers: the [Manager] and its [Synchronized] wrapper.
type Store interface {
	// GetOrCreateVariable returns the unique node of variable in context
	GetOrCreateVariable(context contexts.Context, variable Variable) *CSVariable
	// GetOrCreateInstanceField returns the unique node of field of base
	GetOrCreateInstanceField(base *CSObject, field Field) *InstanceField
	// GetOrCreateArrayIndex returns the unique node of the elements of array
	GetOrCreateArrayIndex(array *CSObject) *ArrayIndex
	// GetOrCreateStaticField returns the unique node of the global field
	GetOrCreateStaticField(field Field) *StaticField
	// GetOrCreateObject returns the unique node of object in heapContext
	GetOrCreateObject(heapContext contexts.Context, object Object) *CSObject
	// GetOrCreateCallSite returns the unique node of callSite in context
	GetOrCreateCallSite(context contexts.Context, callSite CallSite) *CSCallSite
	// GetOrCreateMethod returns the unique node of method in context
	GetOrCreateMethod(context contexts.Context, method Method) *CSMethod

	// LookupVariable returns the node of variable in context, if it has been created
	LookupVariable(context contexts.Context, variable Variable) funcutil.Optional[*CSVariable]
	// LookupInstanceField returns the node of field of base, if it has been created
	LookupInstanceField(base *CSObject, field Field) funcutil.Optional[*InstanceField]
	// LookupArrayIndex returns the node of the elements of array, if it has been created
	LookupArrayIndex(array *CSObject) funcutil.Optional[*ArrayIndex]
	// LookupStaticField returns the node of field, if it has been created
	LookupStaticField(field Field) funcutil.Optional[*StaticField]
	// VariableInstances returns the nodes of variable in all the contexts it has been created in
	VariableInstances(variable Variable) funcutil.Seq[*CSVariable]

	// CSVariables returns the variable nodes created so far
	CSVariables() funcutil.Seq[*CSVariable]
	// InstanceFields returns the instance field nodes created so far
	InstanceFields() funcutil.Seq[*InstanceField]
	// ArrayIndexes returns the array index nodes created so far
	ArrayIndexes() funcutil.Seq[*ArrayIndex]
	// StaticFields returns the static field nodes created so far
	StaticFields() funcutil.Seq[*StaticField]
	// CSObjects returns the object nodes created so far, in ID order
	CSObjects() funcutil.Seq[*CSObject]
	// CSCallSites returns the call site nodes created so far
	CSCallSites() funcutil.Seq[*CSCallSite]
	// CSMethods returns the method nodes created so far
	CSMethods() funcutil.Seq[*CSMethod]

	// SetPointsToSetFactory sets the factory of the sets of the pointers created from now on
	SetPointsToSetFactory(factory ptset.Factory[*CSObject])
	// Stats returns the number of nodes of each kind
	Stats() Stats
}

// Stats counts the nodes of a manager
type Stats struct {
	Variables      int
	InstanceFields int
	ArrayIndexes   int
	StaticFields   int
	Objects        int
	CallSites      int
	Methods        int
	// Promoted is the number of secondary-key maps that outgrew their inline entry
	Promoted int
}

// Pointers returns the number of nodes that have a points-to set
func (s Stats) Pointers() int {
	return s.Variables + s.InstanceFields + s.ArrayIndexes + s.StaticFields
}

func (s Stats) String() string {
	return fmt.Sprintf("variables: %d, instance fields: %d, array indexes: %d, static fields: %d, "+
		"objects: %d, call sites: %d, methods: %d (promoted maps: %d)",
		s.Variables, s.InstanceFields, s.ArrayIndexes, s.StaticFields, s.Objects, s.CallSites, s.Methods,
		s.Promoted)
}

// Manager maps program elements and their contexts to canonical context-sensitive nodes. It keeps every node it
// creates until it is discarded.
type Manager struct {
	vars           map[Variable]*hybridMap[contexts.Context, *CSVariable]
	instanceFields map[*CSObject]*hybridMap[Field, *InstanceField]
	arrayIndexes   map[*CSObject]*ArrayIndex
	staticFields   map[Field]*StaticField
	objs           map[Object]*hybridMap[contexts.Context, *CSObject]
	callSites      map[CallSite]*hybridMap[contexts.Context, *CSCallSite]
	methods        map[Method]*hybridMap[contexts.Context, *CSMethod]

	// nodes of each kind in creation order; objList[i].id == i
	varList           []*CSVariable
	instanceFieldList []*InstanceField
	arrayIndexList    []*ArrayIndex
	staticFieldList   []*StaticField
	objList           []*CSObject
	callSiteList      []*CSCallSite
	methodList        []*CSMethod

	promoted   atomic.Int64
	setFactory ptset.Factory[*CSObject]
	logger     *config.LogGroup
}

var _ Store = (*Manager)(nil)

// NewManager returns an empty manager whose pointers get their points-to sets from factory. If factory is nil, the
// pointers get hash sets.
func NewManager(factory ptset.Factory[*CSObject]) *Manager {
	m := &Manager{
		vars:           make(map[Variable]*hybridMap[contexts.Context, *CSVariable]),
		instanceFields: make(map[*CSObject]*hybridMap[Field, *InstanceField]),
		arrayIndexes:   make(map[*CSObject]*ArrayIndex),
		staticFields:   make(map[Field]*StaticField),
		objs:           make(map[Object]*hybridMap[contexts.Context, *CSObject]),
		callSites:      make(map[CallSite]*hybridMap[contexts.Context, *CSCallSite]),
		methods:        make(map[Method]*hybridMap[contexts.Context, *CSMethod]),
	}
	m.SetPointsToSetFactory(factory)
	return m
}

// WithLogger sets the log group the manager reports to and returns the manager
func (m *Manager) WithLogger(logger *config.LogGroup) *Manager {
	m.logger = logger
	return m
}

// SetPointsToSetFactory sets the factory of the points-to sets. The pointers that already exist keep their sets.
func (m *Manager) SetPointsToSetFactory(factory ptset.Factory[*CSObject]) {
	if factory == nil {
		factory = ptset.HashSetFactory[*CSObject]()
	}
	m.setFactory = factory
}

// SparseSetFactory returns a factory of sparse points-to sets indexed by the object IDs of m. The sets only hold
// objects created by m; adding an object of another manager panics with ErrInvalidKey.
func (m *Manager) SparseSetFactory() ptset.Factory[*CSObject] {
	return ptset.SparseSetFactory[*CSObject](m)
}

// Index implements ptset.Indexer
func (m *Manager) Index(o *CSObject) int {
	if o.id >= len(m.objList) || m.objList[o.id] != o {
		panic(&InvalidKeyError{Op: "Index", Key: o.String(), Problem: "foreign object"})
	}
	return o.id
}

// At implements ptset.Indexer
func (m *Manager) At(i int) *CSObject { return m.objList[i] }

func (m *Manager) initPointsToSet(p Pointer) {
	p.setPointsToSet(m.setFactory())
}

func (m *Manager) notePromotion(format string, key any) {
	m.promoted.Add(1)
	if m.logger != nil {
		m.logger.Tracef(format+"\n", key)
	}
}

func (m *Manager) GetOrCreateVariable(context contexts.Context, variable Variable) *CSVariable {
	requireKey(variable, "GetOrCreateVariable", "variable")
	v, promoted := getOrCreateCS(m.vars, variable, context, func() *CSVariable {
		v := &CSVariable{context: context, variable: variable}
		m.initPointsToSet(v)
		m.varList = append(m.varList, v)
		return v
	})
	if promoted {
		m.notePromotion("variable %s is in more than one context", variable.Name())
	}
	return v
}

func (m *Manager) GetOrCreateInstanceField(base *CSObject, field Field) *InstanceField {
	requireKey(base, "GetOrCreateInstanceField", "base object")
	f, promoted := getOrCreateCS(m.instanceFields, base, field, func() *InstanceField {
		f := &InstanceField{base: base, field: field}
		m.initPointsToSet(f)
		m.instanceFieldList = append(m.instanceFieldList, f)
		return f
	})
	if promoted {
		m.notePromotion("object %s has more than one field", base)
	}
	return f
}

func (m *Manager) GetOrCreateArrayIndex(array *CSObject) *ArrayIndex {
	requireKey(array, "GetOrCreateArrayIndex", "array object")
	if a, ok := m.arrayIndexes[array]; ok {
		return a
	}
	a := &ArrayIndex{array: array}
	m.initPointsToSet(a)
	m.arrayIndexes[array] = a
	m.arrayIndexList = append(m.arrayIndexList, a)
	return a
}

func (m *Manager) GetOrCreateStaticField(field Field) *StaticField {
	requireKey(field, "GetOrCreateStaticField", "field")
	if f, ok := m.staticFields[field]; ok {
		return f
	}
	f := &StaticField{field: field}
	m.initPointsToSet(f)
	m.staticFields[field] = f
	m.staticFieldList = append(m.staticFieldList, f)
	return f
}

func (m *Manager) GetOrCreateObject(heapContext contexts.Context, object Object) *CSObject {
	requireKey(object, "GetOrCreateObject", "object")
	o, promoted := getOrCreateCS(m.objs, object, heapContext, func() *CSObject {
		o := &CSObject{id: len(m.objList), heapContext: heapContext, object: object}
		m.objList = append(m.objList, o)
		return o
	})
	if promoted {
		m.notePromotion("object %v is in more than one heap context", object)
	}
	return o
}

func (m *Manager) GetOrCreateCallSite(context contexts.Context, callSite CallSite) *CSCallSite {
	requireKey(callSite, "GetOrCreateCallSite", "call site")
	c, promoted := getOrCreateCS(m.callSites, callSite, context, func() *CSCallSite {
		c := &CSCallSite{context: context, callSite: callSite}
		m.callSiteList = append(m.callSiteList, c)
		return c
	})
	if promoted {
		m.notePromotion("call site %v is in more than one context", callSite)
	}
	return c
}

func (m *Manager) GetOrCreateMethod(context contexts.Context, method Method) *CSMethod {
	requireKey(method, "GetOrCreateMethod", "method")
	c, promoted := getOrCreateCS(m.methods, method, context, func() *CSMethod {
		c := &CSMethod{context: context, method: method}
		m.methodList = append(m.methodList, c)
		return c
	})
	if promoted {
		m.notePromotion("method %v is in more than one context", method)
	}
	return c
}

func (m *Manager) LookupVariable(context contexts.Context, variable Variable) funcutil.Optional[*CSVariable] {
	return funcutil.Lookup(lookupCS(m.vars, variable, context))
}

func (m *Manager) LookupInstanceField(base *CSObject, field Field) funcutil.Optional[*InstanceField] {
	return funcutil.Lookup(lookupCS(m.instanceFields, base, field))
}

func (m *Manager) LookupArrayIndex(array *CSObject) funcutil.Optional[*ArrayIndex] {
	a, ok := m.arrayIndexes[array]
	return funcutil.Lookup(a, ok)
}

func (m *Manager) LookupStaticField(field Field) funcutil.Optional[*StaticField] {
	f, ok := m.staticFields[field]
	return funcutil.Lookup(f, ok)
}

// VariableInstances returns the nodes of variable. The instances are read when the sequence is iterated.
func (m *Manager) VariableInstances(variable Variable) funcutil.Seq[*CSVariable] {
	return func(yield func(*CSVariable) bool) {
		h, ok := m.vars[variable]
		if !ok {
			return
		}
		h.forEach(func(_ contexts.Context, v *CSVariable) bool { return yield(v) })
	}
}

// The enumerations capture the nodes created before the call; nodes created while iterating are not visited.

func (m *Manager) CSVariables() funcutil.Seq[*CSVariable] { return funcutil.SeqOf(m.varList) }

func (m *Manager) InstanceFields() funcutil.Seq[*InstanceField] {
	return funcutil.SeqOf(m.instanceFieldList)
}

func (m *Manager) ArrayIndexes() funcutil.Seq[*ArrayIndex] { return funcutil.SeqOf(m.arrayIndexList) }

func (m *Manager) StaticFields() funcutil.Seq[*StaticField] { return funcutil.SeqOf(m.staticFieldList) }

func (m *Manager) CSObjects() funcutil.Seq[*CSObject] { return funcutil.SeqOf(m.objList) }

func (m *Manager) CSCallSites() funcutil.Seq[*CSCallSite] { return funcutil.SeqOf(m.callSiteList) }

func (m *Manager) CSMethods() funcutil.Seq[*CSMethod] { return funcutil.SeqOf(m.methodList) }

func (m *Manager) Stats() Stats {
	return Stats{
		Variables:      len(m.varList),
		InstanceFields: len(m.instanceFieldList),
		ArrayIndexes:   len(m.arrayIndexList),
		StaticFields:   len(m.staticFieldList),
		Objects:        len(m.objList),
		CallSites:      len(m.callSiteList),
		Methods:        len(m.methodList),
		Promoted:       int(m.promoted.Load()),
	}
}
