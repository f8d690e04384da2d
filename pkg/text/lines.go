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

package text

import (
	"runtime"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Auto selects the terminator found in the original file
const Auto = "auto"

// PlatformNewline returns the line terminator of the running platform
func PlatformNewline() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// 🔧 ParseNewline validates a newline option. It accepts the literal
// terminators, their escaped spellings, the names lf, crlf and cr, auto and
// the empty string (platform default).
func ParseNewline(s string) (string, error) {
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case Auto:
		return Auto, nil
	case "\n", `\n`, "lf", "unix":
		return "\n", nil
	case "\r\n", `\r\n`, "crlf", "dos", "windows":
		return "\r\n", nil
	case "\r", `\r`, "cr", "mac":
		return "\r", nil
	}
	return "", errors.Errorf("invalid newline %q: expected lf, crlf, cr or auto", s)
}

// 🔍 Detect returns the first line terminator in s, or "" if there is none
func Detect(s string) string {
	i := strings.IndexAny(s, "\r\n")
	if i < 0 {
		return ""
	}
	if s[i] == '\n' {
		return "\n"
	}
	if i+1 < len(s) && s[i+1] == '\n' {
		return "\r\n"
	}
	return "\r"
}

// ResolveNewline returns the terminator to write for content read as original
func ResolveNewline(configured, original string) string {
	switch configured {
	case "":
		return PlatformNewline()
	case Auto:
		if nl := Detect(original); nl != "" {
			return nl
		}
		return PlatformNewline()
	default:
		return configured
	}
}

// Normalize converts \r\n and lone \r terminators to \n
func Normalize(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Translate converts \n terminators to newline
func Translate(s, newline string) string {
	if newline == "" || newline == "\n" {
		return s
	}
	return strings.ReplaceAll(s, "\n", newline)
}

// ✂️ SplitLines splits normalized content into lines that keep their \n
// terminator. Only the last line may lack one. Empty content has no lines.
func SplitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// JoinLines concatenates lines produced by SplitLines
func JoinLines(lines []string) string {
	return strings.Join(lines, "")
}

// Chomp splits a line into its body and its \n terminator
func Chomp(line string) (body, terminator string) {
	if strings.HasSuffix(line, "\n") {
		return line[:len(line)-1], "\n"
	}
	return line, ""
}
