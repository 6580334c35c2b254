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

package ptset

import (
	"errors"
	"fmt"
)

// ErrUnsupportedOperation is returned (or carried by a panic) when an operation is not available on a value.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// UnsupportedOperationError records which operation was not supported, and by what.
type UnsupportedOperationError struct {
	Op       string
	Receiver string
}

func (e *UnsupportedOperationError) Error() string {
	if e.Receiver == "" {
		return fmt.Sprintf("%s: %v", e.Op, ErrUnsupportedOperation)
	}
	return fmt.Sprintf("%s on %s: %v", e.Op, e.Receiver, ErrUnsupportedOperation)
}

func (e *UnsupportedOperationError) Unwrap() error { return ErrUnsupportedOperation }

// UnimplementedSet can be embedded in set implementations that define their own Copy and AddAllDiff.
// Its NewSet panics with an *UnsupportedOperationError, so that an implementation that relies on CopyOf or
// AddAllDiff without providing NewSet fails immediately instead of building sets of the wrong kind.
type UnimplementedSet[E comparable] struct{}

// NewSet panics.
func (UnimplementedSet[E]) NewSet() Set[E] {
	panic(&UnsupportedOperationError{Op: "NewSet", Receiver: fmt.Sprintf("%T", UnimplementedSet[E]{})})
}
