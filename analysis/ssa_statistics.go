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

package analysis

import (
	"golang.org/x/tools/go/ssa"
)

// SSAStats counts the parts of a set of SSA functions that the pointer analysis creates elements for
type SSAStats struct {
	NumberOfFunctions         uint `json:"functions"`
	NumberOfNonemptyFunctions uint `json:"nonempty-functions"`
	NumberOfBlocks            uint `json:"blocks"`
	NumberOfInstructions      uint `json:"instructions"`
	// NumberOfAllocations counts the instructions that allocate objects
	NumberOfAllocations uint `json:"allocations"`
	NumberOfCallSites   uint `json:"call-sites"`
}

// SSAStatistics computes the statistics of the functions
func SSAStatistics(functions map[*ssa.Function]bool) SSAStats {
	var result SSAStats

	for f := range functions {
		result.NumberOfFunctions++

		if len(f.Blocks) != 0 {
			result.NumberOfNonemptyFunctions++
			for _, b := range f.Blocks {
				result.NumberOfBlocks++
				result.NumberOfInstructions += uint(len(b.Instrs))
				for _, instr := range b.Instrs {
					switch instr.(type) {
					case *ssa.Alloc, *ssa.MakeSlice, *ssa.MakeMap, *ssa.MakeChan, *ssa.MakeInterface,
						*ssa.MakeClosure:
						result.NumberOfAllocations++
					case ssa.CallInstruction:
						result.NumberOfCallSites++
					}
				}
			}
		}
	}

	return result
}
