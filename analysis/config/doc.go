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

/*
Package config provides a simple way to manage configuration files.

Use [Load](filename) to load a configuration from a specific filename.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml format. The top-level fields are `options` and `pointer`, defined by the types of
the fields of [Config].
For example, a valid config file is as follows:

	options:
	  log-level: 4
	pointer:
	  context-sensitivity: k-call-site
	  context-depth: 2
	  heap-context-depth: 1
	  points-to-set: sparse
	  entry-points:
	    - package: main
	      method: run

# Identifying code elements

The config uses [CodeIdentifier] to identify specific code entities. For example, entry points are CodeIdentifiers
which identify specific functions in specific packages.
An important feature of the code identifiers is that the string specifications are seen as regexes if they can be
compiled to regexes, otherwise they are strings.
*/
package config
