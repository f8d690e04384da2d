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
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	statusWidth = 10 // Width for status text
)

// 🎯 FormatEntry renders an entry as a single aligned line
func FormatEntry(e FileEntry) string {
	var prefix string
	switch e.Status {
	case StatusWritten:
		prefix = color.GreenString("✓")
	case StatusModified:
		prefix = color.YellowString("⟳")
	case StatusFailed:
		prefix = color.RedString("✗")
	case StatusSkipped:
		prefix = color.MagentaString("↷")
	default:
		prefix = color.HiBlackString("-")
	}

	namePart := fmt.Sprintf("%-*s", nameWidth, e.Path)
	statusPart := fmt.Sprintf("%-*s", statusWidth, e.Status)

	line := fmt.Sprintf("%s%s %s %s", strings.Repeat(" ", fileIndent), prefix, namePart, statusPart)
	if e.Added > 0 || e.Removed > 0 {
		line += " " + color.GreenString("+%d", e.Added) + " " + color.RedString("-%d", e.Removed)
	}
	if e.Err != nil {
		line += " " + color.RedString("(%v)", e.Err)
	}
	return strings.TrimRight(line, " ")
}

// 📋 Render returns the recorded entries as a table followed by a totals row
func (r *Reporter) Render() (string, error) {
	entries := r.Entries()
	sum := r.Summary()

	data := pterm.TableData{{"File", "Status", "Added", "Removed"}}
	for _, e := range entries {
		data = append(data, []string{e.Path, e.Status.String(), strconv.Itoa(e.Added), strconv.Itoa(e.Removed)})
	}
	data = append(data, []string{
		fmt.Sprintf("%d files", sum.Total),
		summaryCounts(sum),
		strconv.Itoa(sum.Added),
		strconv.Itoa(sum.Removed),
	})

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Errorf("rendering summary table: %w", err)
	}
	return out, nil
}

func summaryCounts(s Summary) string {
	var parts []string
	for _, c := range []struct {
		n    int
		name FileStatus
	}{
		{s.Written, StatusWritten},
		{s.Modified, StatusModified},
		{s.Unchanged, StatusUnchanged},
		{s.Skipped, StatusSkipped},
		{s.Failed, StatusFailed},
	} {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.n, c.name))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
