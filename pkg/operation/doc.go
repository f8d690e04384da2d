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
Package operation drives the editing pipeline over a batch of files.

	+----------+  paths  +-----------+  path  +--------+
	| discover | ------> | operation | -----> |  edit  |
	+----------+         +-----------+        +--------+
	                       |      |               |
	              diffs    |      | entries       | Result / error
	                       v      v               |
	                  +--------+ +--------+       |
	                  | output | | status | <-----+
	                  +--------+ +--------+

🎯 Purpose:
- Build an editor from string specifications
- Run it over the discovered files one at a time
- Isolate per-file decode failures, abort on anything else

🔄 Flow:
1. Compile expressions, resolve functions, parse executables
2. Discover the target files
3. Edit each file, printing its diff in dry-run mode
4. Record each outcome on the reporter
5. Return the absolute paths of the processed files

🔍 Example:

	paths, err := operation.EditFiles(ctx, operation.Options{
		Patterns:    []string{"*.py"},
		Expressions: []string{"s/failIf/assertFalse/g"},
		DryRun:      true,
		Output:      os.Stdout,
	})
*/
package operation
