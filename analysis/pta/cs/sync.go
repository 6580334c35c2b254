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
	"sync"

	"github.com/awslabs/ar-go-pta/analysis/pta/contexts"
	"github.com/awslabs/ar-go-pta/analysis/pta/ptset"
	"github.com/awslabs/ar-go-pta/internal/funcutil"
)

// Synchronized is a [Store] that can be shared by goroutines. Each kind of node has its own lock, so creating
// variables does not wait on the creation of objects.
//
// The object lock is also taken by the sparse sets built by [Synchronized.SparseSetFactory] when they map indices
// back to objects.
type Synchronized struct {
	m *Manager

	varMu           sync.Mutex
	instanceFieldMu sync.Mutex
	arrayIndexMu    sync.Mutex
	staticFieldMu   sync.Mutex
	objMu           sync.RWMutex
	callSiteMu      sync.Mutex
	methodMu        sync.Mutex
	// factoryMu guards the set factory of m, read by every pointer creation
	factoryMu sync.RWMutex
}

var _ Store = (*Synchronized)(nil)

// NewSynchronized wraps m. The manager must not be used directly afterwards.
func NewSynchronized(m *Manager) *Synchronized {
	return &Synchronized{m: m}
}

// Manager returns the wrapped manager
func (s *Synchronized) Manager() *Manager { return s.m }

func (s *Synchronized) GetOrCreateVariable(context contexts.Context, variable Variable) *CSVariable {
	s.factoryMu.RLock()
	defer s.factoryMu.RUnlock()
	s.varMu.Lock()
	defer s.varMu.Unlock()
	return s.m.GetOrCreateVariable(context, variable)
}

func (s *Synchronized) GetOrCreateInstanceField(base *CSObject, field Field) *InstanceField {
	s.factoryMu.RLock()
	defer s.factoryMu.RUnlock()
	s.instanceFieldMu.Lock()
	defer s.instanceFieldMu.Unlock()
	return s.m.GetOrCreateInstanceField(base, field)
}

func (s *Synchronized) GetOrCreateArrayIndex(array *CSObject) *ArrayIndex {
	s.factoryMu.RLock()
	defer s.factoryMu.RUnlock()
	s.arrayIndexMu.Lock()
	defer s.arrayIndexMu.Unlock()
	return s.m.GetOrCreateArrayIndex(array)
}

func (s *Synchronized) GetOrCreateStaticField(field Field) *StaticField {
	s.factoryMu.RLock()
	defer s.factoryMu.RUnlock()
	s.staticFieldMu.Lock()
	defer s.staticFieldMu.Unlock()
	return s.m.GetOrCreateStaticField(field)
}

func (s *Synchronized) GetOrCreateObject(heapContext contexts.Context, object Object) *CSObject {
	s.objMu.Lock()
	defer s.objMu.Unlock()
	return s.m.GetOrCreateObject(heapContext, object)
}

func (s *Synchronized) GetOrCreateCallSite(context contexts.Context, callSite CallSite) *CSCallSite {
	s.callSiteMu.Lock()
	defer s.callSiteMu.Unlock()
	return s.m.GetOrCreateCallSite(context, callSite)
}

func (s *Synchronized) GetOrCreateMethod(context contexts.Context, method Method) *CSMethod {
	s.methodMu.Lock()
	defer s.methodMu.Unlock()
	return s.m.GetOrCreateMethod(context, method)
}

func (s *Synchronized) LookupVariable(context contexts.Context, variable Variable) funcutil.Optional[*CSVariable] {
	s.varMu.Lock()
	defer s.varMu.Unlock()
	return s.m.LookupVariable(context, variable)
}

func (s *Synchronized) LookupInstanceField(base *CSObject, field Field) funcutil.Optional[*InstanceField] {
	s.instanceFieldMu.Lock()
	defer s.instanceFieldMu.Unlock()
	return s.m.LookupInstanceField(base, field)
}

func (s *Synchronized) LookupArrayIndex(array *CSObject) funcutil.Optional[*ArrayIndex] {
	s.arrayIndexMu.Lock()
	defer s.arrayIndexMu.Unlock()
	return s.m.LookupArrayIndex(array)
}

func (s *Synchronized) LookupStaticField(field Field) funcutil.Optional[*StaticField] {
	s.staticFieldMu.Lock()
	defer s.staticFieldMu.Unlock()
	return s.m.LookupStaticField(field)
}

// VariableInstances returns a snapshot of the nodes of variable
func (s *Synchronized) VariableInstances(variable Variable) funcutil.Seq[*CSVariable] {
	s.varMu.Lock()
	defer s.varMu.Unlock()
	return funcutil.SeqOf(funcutil.Collect(s.m.VariableInstances(variable)))
}

func (s *Synchronized) CSVariables() funcutil.Seq[*CSVariable] {
	s.varMu.Lock()
	defer s.varMu.Unlock()
	return s.m.CSVariables()
}

func (s *Synchronized) InstanceFields() funcutil.Seq[*InstanceField] {
	s.instanceFieldMu.Lock()
	defer s.instanceFieldMu.Unlock()
	return s.m.InstanceFields()
}

func (s *Synchronized) ArrayIndexes() funcutil.Seq[*ArrayIndex] {
	s.arrayIndexMu.Lock()
	defer s.arrayIndexMu.Unlock()
	return s.m.ArrayIndexes()
}

func (s *Synchronized) StaticFields() funcutil.Seq[*StaticField] {
	s.staticFieldMu.Lock()
	defer s.staticFieldMu.Unlock()
	return s.m.StaticFields()
}

func (s *Synchronized) CSObjects() funcutil.Seq[*CSObject] {
	s.objMu.RLock()
	defer s.objMu.RUnlock()
	return s.m.CSObjects()
}

func (s *Synchronized) CSCallSites() funcutil.Seq[*CSCallSite] {
	s.callSiteMu.Lock()
	defer s.callSiteMu.Unlock()
	return s.m.CSCallSites()
}

func (s *Synchronized) CSMethods() funcutil.Seq[*CSMethod] {
	s.methodMu.Lock()
	defer s.methodMu.Unlock()
	return s.m.CSMethods()
}

func (s *Synchronized) SetPointsToSetFactory(factory ptset.Factory[*CSObject]) {
	s.factoryMu.Lock()
	defer s.factoryMu.Unlock()
	s.m.SetPointsToSetFactory(factory)
}

// SparseSetFactory returns a factory of sparse sets indexed by the object IDs of the wrapped manager.
func (s *Synchronized) SparseSetFactory() ptset.Factory[*CSObject] {
	return ptset.SparseSetFactory[*CSObject](syncIndexer{s})
}

type syncIndexer struct{ s *Synchronized }

func (x syncIndexer) Index(o *CSObject) int {
	x.s.objMu.RLock()
	defer x.s.objMu.RUnlock()
	return x.s.m.Index(o)
}

func (x syncIndexer) At(i int) *CSObject {
	x.s.objMu.RLock()
	defer x.s.objMu.RUnlock()
	return x.s.m.objList[i]
}

func (s *Synchronized) Stats() Stats {
	s.factoryMu.Lock()
	defer s.factoryMu.Unlock()
	s.varMu.Lock()
	defer s.varMu.Unlock()
	s.instanceFieldMu.Lock()
	defer s.instanceFieldMu.Unlock()
	s.arrayIndexMu.Lock()
	defer s.arrayIndexMu.Unlock()
	s.staticFieldMu.Lock()
	defer s.staticFieldMu.Unlock()
	s.objMu.RLock()
	defer s.objMu.RUnlock()
	s.callSiteMu.Lock()
	defer s.callSiteMu.Unlock()
	s.methodMu.Lock()
	defer s.methodMu.Unlock()
	return s.m.Stats()
}
