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
	"errors"
	"fmt"
	"reflect"
)

// ErrInvalidKey is carried by the panics of the manager when a required key is nil, or when an object of another
// manager is given to its indexer. Both are programming errors of the caller.
var ErrInvalidKey = errors.New("invalid key")

// InvalidKeyError records the operation that received an invalid key. Problem is "nil" for nil keys, including
// nil pointers stored in a non-nil interface.
type InvalidKeyError struct {
	Op      string
	Key     string
	Problem string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Problem, e.Key, ErrInvalidKey)
}

func (e *InvalidKeyError) Unwrap() error { return ErrInvalidKey }

func requireKey(k any, op string, key string) {
	if isNil(k) {
		panic(&InvalidKeyError{Op: op, Key: key, Problem: "nil"})
	}
}

func isNil(k any) bool {
	if k == nil {
		return true
	}
	switch v := reflect.ValueOf(k); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
