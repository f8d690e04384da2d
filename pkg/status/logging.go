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
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📝 print writes a prefixed line for entry
func (r *Reporter) print(e FileEntry) {
	var printer *pterm.PrefixPrinter
	var action string
	switch e.Status {
	case StatusWritten:
		printer = pterm.Success.WithPrefix(pterm.Prefix{Text: "✨", Style: pterm.Success.Prefix.Style})
		action = "Wrote"
	case StatusModified:
		printer = pterm.Info.WithPrefix(pterm.Prefix{Text: "🔄", Style: pterm.Info.Prefix.Style})
		action = "Would modify"
	case StatusSkipped:
		printer = pterm.Warning.WithPrefix(pterm.Prefix{Text: "⏭️", Style: pterm.Warning.Prefix.Style})
		action = "Skipped"
	case StatusFailed:
		printer = pterm.Error.WithPrefix(pterm.Prefix{Text: "❌", Style: pterm.Error.Prefix.Style})
		action = "Failed"
	default:
		printer = pterm.Description.WithPrefix(pterm.Prefix{Text: "👍", Style: pterm.Description.Prefix.Style})
		action = "Unchanged"
	}

	msg := fmt.Sprintf("%s %s", action, e.Path)
	if e.Added > 0 || e.Removed > 0 {
		msg += fmt.Sprintf(" (+%d -%d)", e.Added, e.Removed)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	fmt.Fprint(r.out, printer.Sprintln(msg))
}

// log mirrors entry on the context logger
func (r *Reporter) log(ctx context.Context, e FileEntry) {
	logger := zerolog.Ctx(ctx)

	var event *zerolog.Event
	switch e.Status {
	case StatusFailed:
		event = logger.Error().Err(e.Err)
	case StatusSkipped:
		event = logger.Warn().Err(e.Err)
	case StatusUnchanged:
		event = logger.Debug()
	default:
		event = logger.Info()
	}
	event.
		Str("file", e.Path).
		Str("status", e.Status.String()).
		Int("added", e.Added).
		Int("removed", e.Removed).
		Msg("file processed")
}
