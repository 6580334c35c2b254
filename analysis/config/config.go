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

import (
	"fmt"
	"os"
	"path"

	"github.com/awslabs/ar-go-pta/internal/funcutil"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config contains the options of the tool and of the pointer analysis.
// If some field is not defined in the config file, it will have its default value in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:"options"`

	// Pointer contains the options of the pointer analysis
	Pointer PointerOptions `yaml:"pointer"`

	sourceFile string
}

// Options are the options of the tool that are not specific to an analysis
type Options struct {
	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// PointerOptions configures the context-sensitive pointer analysis
type PointerOptions struct {
	// ContextSensitivity is the name of the context selection policy: "k-call-site" or "insensitive"
	ContextSensitivity string `yaml:"context-sensitivity"`

	// ContextDepth is the maximum number of call sites in the context of a method
	ContextDepth int `yaml:"context-depth"`

	// HeapContextDepth is the maximum number of call sites in the context of an object
	HeapContextDepth int `yaml:"heap-context-depth"`

	// PointsToSet is the representation of the points-to sets: "sparse" or "hash"
	PointsToSet string `yaml:"points-to-set"`

	// EntryPoints are the functions the analysis starts from. When empty, the analysis starts from the init and
	// main functions of the main packages.
	EntryPoints []CodeIdentifier `yaml:"entry-points"`
}

// NewDefault returns a default config.
func NewDefault() *Config {
	return &Config{
		sourceFile: "",
		Options: Options{
			LogLevel:    int(InfoLevel),
			SilenceWarn: false,
		},
		Pointer: PointerOptions{
			ContextSensitivity: DefaultContextSensitivity,
			ContextDepth:       DefaultContextDepth,
			HeapContextDepth:   DefaultHeapContextDepth,
			PointsToSet:        SparsePointsToSet,
			EntryPoints:        nil,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return Parse(filename, b)
}

// Parse reads a configuration from the contents b of the file filename
func Parse(filename string, b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %s: %w", filename, err)
	}

	cfg.sourceFile = filename

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filename, err)
	}

	if len(cfg.Pointer.EntryPoints) > 0 {
		cfg.Pointer.EntryPoints = funcutil.Map(cfg.Pointer.EntryPoints, CompileRegexes)
	}
	return cfg, nil
}

// Validate returns an error if some option of the config does not have a meaningful value
func (c Config) Validate() error {
	p := c.Pointer
	switch p.ContextSensitivity {
	case "", KCallSiteSensitivity, InsensitiveSensitivity:
	default:
		return fmt.Errorf("unknown context-sensitivity %q", p.ContextSensitivity)
	}
	if p.ContextDepth < 0 {
		return fmt.Errorf("context-depth must be non-negative, got %d", p.ContextDepth)
	}
	if p.HeapContextDepth < 0 {
		return fmt.Errorf("heap-context-depth must be non-negative, got %d", p.HeapContextDepth)
	}
	switch p.PointsToSet {
	case "", SparsePointsToSet, HashPointsToSet:
	default:
		return fmt.Errorf("unknown points-to-set %q", p.PointsToSet)
	}
	if c.LogLevel < 0 || c.LogLevel > int(TraceLevel) {
		return fmt.Errorf("log-level must be between %d and %d, got %d", ErrLevel, TraceLevel, c.LogLevel)
	}
	return nil
}

// SourceFile returns the file the config has been loaded from, or "" if it is a default config
func (c Config) SourceFile() string {
	return c.sourceFile
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// IsEntryPoint returns true if the code identifier matches any entry point of the pointer analysis
func (c Config) IsEntryPoint(cid CodeIdentifier) bool {
	return ExistsCid(c.Pointer.EntryPoints, cid.equalOnNonEmptyFields)
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}
