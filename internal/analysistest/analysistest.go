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

// Package analysistest loads annotated test programs. Test programs mark allocations with comments
// "@Alloc(id)" and the calls whose first argument should point to those allocations with "@PointsTo(id1, id2)".
package analysistest

import (
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-pta/analysis"
	"github.com/awslabs/ar-go-pta/analysis/config"
	"golang.org/x/tools/go/ssa"
)

// LoadTest loads the program in the directory dir, looking for a main.go and an optional config.yaml. If additional
// files are specified as extraFiles, the program will be loaded using those files too.
func LoadTest(t *testing.T, dir string, extraFiles []string) (*ssa.Program, *config.Config) {
	t.Helper()
	cfg := config.NewDefault()
	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); err == nil {
		cfg, err = config.Load(configFile)
		if err != nil {
			t.Fatalf("error loading config %s: %v", configFile, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error reading config %s: %v", configFile, err)
	}

	files := []string{filepath.Join(dir, "main.go")}
	for _, extraFile := range extraFiles {
		files = append(files, filepath.Join(dir, extraFile))
	}
	program, err := analysis.LoadProgram(nil, "", ssa.BuilderMode(0), false, files)
	if err != nil {
		t.Fatalf("error loading packages: %v", err)
	}
	return program.Program, cfg
}

// Match annotations of the form "@Alloc(id1, id2)"
var AllocRegex = regexp.MustCompile(`//.*@Alloc\(((?:\s*\w\s*,?)+)\)`)

// Match annotations of the form "@PointsTo(id1, id2)" and "@PointsTo()"
var PointsToRegex = regexp.MustCompile(`//.*@PointsTo\(((?:\s*\w\s*,?)*)\)`)

// LPos is a position without column
type LPos struct {
	Filename string
	Line     int
}

func (p LPos) String() string {
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// RemoveColumn returns the position pos without its column
func RemoveColumn(pos token.Position) LPos {
	return LPos{Line: pos.Line, Filename: pos.Filename}
}

// GetExpectedPointsTo parses the Go files in dir and returns, for each line annotated with @PointsTo, the lines of
// the allocations whose identifier is listed in the annotation.
func GetExpectedPointsTo(dir string) (map[LPos]map[LPos]bool, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, dir, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", dir, err)
	}

	allocs := map[string]LPos{}
	expected := map[LPos][]string{}
	for _, pkg := range pkgs {
		for _, f := range pkg.Files {
			for _, group := range f.Comments {
				for _, c := range group.List {
					pos := RemoveColumn(fset.Position(c.Pos()))
					if a := AllocRegex.FindStringSubmatch(c.Text); len(a) > 1 {
						for _, id := range splitIdents(a[1]) {
							allocs[id] = pos
						}
					}
					if a := PointsToRegex.FindStringSubmatch(c.Text); len(a) > 1 {
						expected[pos] = splitIdents(a[1])
					}
				}
			}
		}
	}

	res := map[LPos]map[LPos]bool{}
	for pos, ids := range expected {
		res[pos] = map[LPos]bool{}
		for _, id := range ids {
			alloc, ok := allocs[id]
			if !ok {
				return nil, fmt.Errorf("%s: no allocation annotated with %q", pos, id)
			}
			res[pos][alloc] = true
		}
	}
	return res, nil
}

func splitIdents(s string) []string {
	var res []string
	for _, ident := range strings.Split(s, ",") {
		if ident = strings.TrimSpace(ident); ident != "" {
			res = append(res, ident)
		}
	}
	return res
}
