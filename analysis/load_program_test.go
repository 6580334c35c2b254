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
	"path/filepath"
	"runtime"
	"testing"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

func TestLoadProgram(t *testing.T) {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(filename), "testdata", "src", "pointers")
	cfg := &packages.Config{Mode: PkgLoadMode, Dir: dir}
	program, err := LoadProgram(cfg, "", ssa.InstantiateGenerics, false, []string{"."})
	if err != nil {
		t.Fatalf("error loading program: %v", err)
	}
	if len(program.Packages) != 1 || program.Packages[0].PkgPath != "pointers" {
		t.Fatalf("expected package pointers, got %v", program.Packages)
	}

	pkgs := AllPackages(ssautil.AllFunctions(program.Program))
	paths := map[string]bool{}
	for i, pkg := range pkgs {
		if i > 0 && pkgs[i-1].Pkg.Path() >= pkg.Pkg.Path() {
			t.Errorf("packages are not sorted: %s before %s", pkgs[i-1], pkg)
		}
		paths[pkg.Pkg.Path()] = true
	}
	for _, path := range []string{"pointers", "fmt"} {
		if !paths[path] {
			t.Errorf("package %s is missing", path)
		}
	}
}

func TestLoadProgramErrors(t *testing.T) {
	_, err := LoadProgram(nil, "", ssa.BuilderMode(0), false, []string{"./testdata/src/does-not-exist.go"})
	if err == nil {
		t.Errorf("expected an error when loading a missing file")
	}
}
