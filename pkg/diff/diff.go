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

// Package diff renders the difference between the original and the edited
// lines of a file as a unified diff.
package diff

import (
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"gitlab.com/tozd/go/errors"
)

// NewFileLabel is the "to" label of every diff
const NewFileLabel = "<new>"

// DefaultContext is the number of context lines around each hunk
const DefaultContext = 3

const noNewline = "\\ No newline at end of file\n"

// 📄 Result is a unified diff between two line sequences
type Result struct {
	FromFile string
	ToFile   string
	Lines    []string // each chunk ends with a newline
}

// 🔍 Unified computes the unified diff of from and to. Lines are expected to
// carry their own terminators; only the last line of each side may lack one.
// Elements holding several lines are split apart first.
func Unified(from, to []string, path string) (*Result, error) {
	res := &Result{FromFile: path, ToFile: NewFileLabel, Lines: []string{}}
	from, to = resplit(from), resplit(to)
	if equal(from, to) {
		return res, nil
	}

	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        markMissingNewline(from),
		B:        markMissingNewline(to),
		FromFile: path,
		ToFile:   NewFileLabel,
		Context:  DefaultContext,
	})
	if err != nil {
		return nil, errors.Errorf("computing diff for %s: %w", path, err)
	}

	if out != "" {
		res.Lines = strings.SplitAfter(out, "\n")
		if res.Lines[len(res.Lines)-1] == "" {
			res.Lines = res.Lines[:len(res.Lines)-1]
		}
	}
	return res, nil
}

func resplit(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		for line != "" {
			i := strings.IndexByte(line, '\n')
			if i < 0 {
				out = append(out, line)
				break
			}
			out = append(out, line[:i+1])
			line = line[i+1:]
		}
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// markMissingNewline terminates an unterminated last line and appends the
// marker used by diff(1), so the line compares unequal to its terminated form.
func markMissingNewline(lines []string) []string {
	n := len(lines)
	if n == 0 || strings.HasSuffix(lines[n-1], "\n") {
		return lines
	}
	out := make([]string, n)
	copy(out, lines)
	out[n-1] = out[n-1] + "\n" + noNewline
	return out
}

// Empty reports whether the diff has no hunks
func (r *Result) Empty() bool {
	return r == nil || len(r.Lines) == 0
}

// String joins the diff into a single text
func (r *Result) String() string {
	if r == nil {
		return ""
	}
	return strings.Join(r.Lines, "")
}

// 📊 Stats counts added and removed lines, excluding the two header lines
func (r *Result) Stats() (added, removed int) {
	if r == nil {
		return 0, 0
	}
	for i, line := range r.Lines {
		switch {
		case i < 2:
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}

// 🎨 Colorize renders the diff with terminal colours
func (r *Result) Colorize() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	header := color.New(color.Bold)
	hunk := color.New(color.FgCyan)
	add := color.New(color.FgGreen)
	del := color.New(color.FgRed)
	for i, line := range r.Lines {
		body := strings.TrimSuffix(line, "\n")
		suffix := line[len(body):]
		switch {
		case i < 2:
			b.WriteString(header.Sprint(body))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(hunk.Sprint(body))
		case strings.HasPrefix(line, "+"):
			b.WriteString(add.Sprint(body))
		case strings.HasPrefix(line, "-"):
			b.WriteString(del.Sprint(body))
		default:
			b.WriteString(body)
		}
		b.WriteString(suffix)
	}
	return b.String()
}
