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

package status

import (
	"context"
	"io"
	"sync"
)

// 📊 FileStatus is the outcome of processing one file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusUnchanged            // Pipeline produced the original content
	StatusModified             // Content would change, dry run left it alone
	StatusWritten              // New content was committed
	StatusSkipped              // File could not be decoded
	StatusFailed               // Processing failed and aborted the batch
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusModified:
		return "modified"
	case StatusWritten:
		return "written"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 FileEntry is the recorded outcome of one file
type FileEntry struct {
	Path    string     // Path as discovered
	Status  FileStatus // Outcome
	Added   int        // Lines added by the diff
	Removed int        // Lines removed by the diff
	Err     error      // Cause of a skip or failure
}

// 📈 Summary counts entries per status
type Summary struct {
	Total     int
	Unchanged int
	Modified  int
	Written   int
	Skipped   int
	Failed    int
	Added     int
	Removed   int
}

// 📢 Reporter collects file entries and reports them as they arrive
type Reporter struct {
	out io.Writer

	mu      sync.RWMutex
	entries []FileEntry
}

// 🏭 NewReporter creates a reporter printing to out. A nil out only logs.
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = io.Discard
	}
	return &Reporter{out: out}
}

// Record stores entry, prints it and logs it through the context logger
func (r *Reporter) Record(ctx context.Context, entry FileEntry) {
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()

	r.print(entry)
	r.log(ctx, entry)
}

// Entries returns the recorded entries in order
func (r *Reporter) Entries() []FileEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]FileEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Summary counts the recorded entries
func (r *Reporter) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var s Summary
	for _, e := range r.entries {
		s.Total++
		s.Added += e.Added
		s.Removed += e.Removed
		switch e.Status {
		case StatusUnchanged:
			s.Unchanged++
		case StatusModified:
			s.Modified++
		case StatusWritten:
			s.Written++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
