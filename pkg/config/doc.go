// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package config loads massedit job files.

	+-----------+   bytes   +--------+   Config   +----------+
	| job file  | --------> | Parser | ---------> | Validate |
	+-----------+           +--------+            +----------+
	                                                   |
	                                      flags        v
	                                   ---------->  Overlay

🎯 Purpose:
- Describe a run (patterns, expressions, functions, executables, mode) in a file
- Support YAML, JSON, HCL and TOML chosen by extension
- Let command line flags extend or override the file

⚡ Key Responsibilities:
- Strict parsing (unknown fields are errors)
- Default encoding and newline validation
- Resolving relative paths against the file's directory

🤝 Interfaces:
- Parser: Format-specific parsing, registered at init
- Config: The run description consumed by the cmd package

🔍 Example:

	# .massedit.yaml
	patterns: ["*.py"]
	start_dir: src
	expressions:
	  - s/failIf/assertFalse/g
	functions:
	  - text:strip_trailing_space
	write: true
*/
package config
