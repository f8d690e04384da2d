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
Package status records and reports what happened to each file of a batch.

	+-----------+  FileEntry  +----------+  prefix line  +----------+
	| operation | ----------> | Reporter | ------------> | terminal |
	+-----------+             +----------+               +----------+
	                               |
	                               | Summary / Render
	                               v
	                          +----------+
	                          |  table   |
	                          +----------+

🎯 Purpose:
- Classify every processed file (unchanged, modified, written, skipped, failed)
- Print one line per file as it is processed
- Log the same event through the context logger
- Render a closing summary table

🤝 Interfaces:
- Reporter: records entries, prints and logs them
- FormatEntry: fixed width one line rendering of an entry

🔍 Example:

	reporter := status.NewReporter(os.Stderr)
	reporter.Record(ctx, status.FileEntry{Path: "a.txt", Status: status.StatusWritten, Added: 1, Removed: 1})
	table, err := reporter.Render()
*/
package status
