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

package config

const (
	// KCallSiteSensitivity selects contexts made of the last call sites
	KCallSiteSensitivity = "k-call-site"
	// InsensitiveSensitivity analyzes every method and object in a single context
	InsensitiveSensitivity = "insensitive"
	// DefaultContextSensitivity is the context sensitivity used when the config does not set one
	DefaultContextSensitivity = KCallSiteSensitivity
	// DefaultContextDepth is the default k of the call-site sensitivity
	DefaultContextDepth = 1
	// DefaultHeapContextDepth is the default length of the heap contexts
	DefaultHeapContextDepth = 1
	// SparsePointsToSet represents points-to sets as bit sets over the object numbers
	SparsePointsToSet = "sparse"
	// HashPointsToSet represents points-to sets as hash sets
	HashPointsToSet = "hash"
)
