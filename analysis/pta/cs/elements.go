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

// Package cs manages the context-sensitive elements of the pointer analysis.
//
// The [Manager] canonicalizes pairs of program elements and contexts: asking twice for the node of the same pair
// returns the same pointer, which is what the rest of the analysis uses as the identity of facts. The four kinds of
// [Pointer] nodes (variables, instance fields, array indexes and static fields) are bound to a points-to set when
// they are created, and keep it for the whole analysis.
//
// A Manager is not safe for concurrent use; wrap it with [NewSynchronized] when several goroutines create nodes.
package cs

import (
	"go/token"
	"go/types"
)

// A Variable is a local variable or SSA register. ssa.Value implements Variable.
type Variable interface {
	Name() string
	Type() types.Type
}

// A Field is a struct field (*types.Var) or a global variable (*ssa.Global).
type Field interface {
	Name() string
	Type() types.Type
}

// A Method is a function or method. *ssa.Function implements Method.
type Method interface {
	Name() string
	String() string
}

// A CallSite is a call instruction. ssa.CallInstruction implements CallSite.
type CallSite interface {
	Pos() token.Pos
	String() string
}

// An Object is an abstract heap object, usually identified by its allocation site. ssa.Value implements Object.
type Object interface {
	Type() types.Type
	String() string
}
