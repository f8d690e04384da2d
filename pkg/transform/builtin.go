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

package transform

import (
	"strings"
)

// BuiltinModule is the module name of the transforms shipped with massedit
const BuiltinModule = "text"

// 🧰 Builtins returns a new registry holding the built-in transforms
func Builtins() *Registry {
	r := NewRegistry()
	r.MustRegister(BuiltinModule+":strip_trailing_space", StripTrailingSpace)
	r.MustRegister(BuiltinModule+":squeeze_blank", SqueezeBlank)
	r.MustRegister(BuiltinModule+":drop_blank", DropBlank)
	r.MustRegister(BuiltinModule+":uniq", Uniq)
	r.MustRegister(BuiltinModule+":ensure_final_newline", EnsureFinalNewline)
	return r
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// StripTrailingSpace removes spaces and tabs before each line terminator
func StripTrailingSpace(lines []string, _ string) ([]string, error) {
	out := make([]string, len(lines))
	for i, line := range lines {
		body, term := line, ""
		if strings.HasSuffix(line, "\n") {
			body, term = line[:len(line)-1], "\n"
		}
		out[i] = strings.TrimRight(body, " \t") + term
	}
	return out, nil
}

// SqueezeBlank collapses runs of blank lines into one
func SqueezeBlank(lines []string, _ string) ([]string, error) {
	out := make([]string, 0, len(lines))
	prevBlank := false
	for _, line := range lines {
		blank := isBlank(line)
		if blank && prevBlank {
			continue
		}
		out = append(out, line)
		prevBlank = blank
	}
	return out, nil
}

// DropBlank removes blank lines
func DropBlank(lines []string, _ string) ([]string, error) {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if !isBlank(line) {
			out = append(out, line)
		}
	}
	return out, nil
}

// Uniq removes adjacent duplicate lines
func Uniq(lines []string, _ string) ([]string, error) {
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if i > 0 && strings.TrimSuffix(line, "\n") == strings.TrimSuffix(lines[i-1], "\n") {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}

// EnsureFinalNewline terminates the last line if it is not terminated
func EnsureFinalNewline(lines []string, _ string) ([]string, error) {
	out := make([]string, len(lines))
	copy(out, lines)
	if n := len(out); n > 0 && !strings.HasSuffix(out[n-1], "\n") {
		out[n-1] += "\n"
	}
	return out, nil
}
