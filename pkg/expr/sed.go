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

package expr

import (
	"regexp"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/massedit/pkg/editerr"
)

// isSedCommand reports whether src looks like a sed command named cmd:
// the command letter followed by a punctuation delimiter.
func isSedCommand(src string, cmd byte) bool {
	if len(src) < 2 || src[0] != cmd {
		return false
	}
	switch d := src[1]; {
	case d >= 'a' && d <= 'z', d >= 'A' && d <= 'Z', d >= '0' && d <= '9':
		return false
	case d == ' ', d == '\t', d == '\\', d == '"', d == '(', d == '[', d == '{', d == '.', d == '_':
		return false
	case d >= 0x80:
		return false
	}
	return true
}

// splitSed splits "<d>a<d>b<d>rest" into a, b and rest. An escaped delimiter
// stands for itself; other escapes are kept for the regexp engine.
func splitSed(body string) (parts [2]string, rest string, err error) {
	delim := body[0]
	pos := 1
	for i := 0; i < 2; i++ {
		var buf strings.Builder
		closed := false
		for pos < len(body) {
			c := body[pos]
			if c == '\\' && pos+1 < len(body) {
				if body[pos+1] == delim {
					buf.WriteByte(delim)
				} else {
					buf.WriteByte(c)
					buf.WriteByte(body[pos+1])
				}
				pos += 2
				continue
			}
			if c == delim {
				pos++
				closed = true
				break
			}
			buf.WriteByte(c)
			pos++
		}
		if !closed {
			return parts, "", errors.Errorf("unterminated command: missing delimiter %q", delim)
		}
		parts[i] = buf.String()
	}
	return parts, body[pos:], nil
}

// ✂️ substitute implements s/regex/replacement/flags
type substitute struct {
	source  string
	re      *regexp.Regexp
	replace string // in Go regexp expansion syntax
	global  bool
	nth     int
}

func compileSubstitute(src string) (LineTransform, error) {
	parts, flags, err := splitSed(src[1:])
	if err != nil {
		return nil, editerr.Compile(src, err)
	}

	sub := &substitute{source: src, replace: sedGoReplace(parts[1])}
	pattern := parts[0]
	icase := false
	for i := 0; i < len(flags); i++ {
		switch c := flags[i]; {
		case c == 'g':
			sub.global = true
		case c == 'i' || c == 'I':
			icase = true
		case c >= '1' && c <= '9':
			j := i + 1
			for j < len(flags) && flags[j] >= '0' && flags[j] <= '9' {
				j++
			}
			n, err := strconv.Atoi(flags[i:j])
			if err != nil {
				return nil, editerr.Compile(src, errors.Errorf("invalid occurrence %q: %w", flags[i:j], err))
			}
			sub.nth = n
			i = j - 1
		default:
			return nil, editerr.Compile(src, errors.Errorf("unknown flag %q", c))
		}
	}
	if pattern == "" {
		return nil, editerr.Compile(src, errors.New("empty regular expression"))
	}
	if icase {
		pattern = "(?i)" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, editerr.Compile(src, errors.Errorf("invalid regular expression: %w", err))
	}
	sub.re = re
	return sub, nil
}

// Source implements LineTransform.Source
func (s *substitute) Source() string {
	return s.source
}

// Apply implements LineTransform.Apply. With both g and N every match from
// the Nth on is replaced, as in GNU sed.
func (s *substitute) Apply(line string) (string, error) {
	nth := max(s.nth, 1)
	if s.global && nth == 1 {
		return s.re.ReplaceAllString(line, s.replace), nil
	}

	limit := nth
	if s.global {
		limit = -1
	}
	matches := s.re.FindAllStringSubmatchIndex(line, limit)
	if len(matches) < nth {
		return line, nil
	}
	targets := matches[nth-1:]
	if !s.global {
		targets = targets[:1]
	}

	var out []byte
	last := 0
	for _, m := range targets {
		out = append(out, line[last:m[0]]...)
		out = s.re.ExpandString(out, s.replace, line, m)
		last = m[1]
	}
	out = append(out, line[last:]...)
	return string(out), nil
}

// sedGoReplace converts sed replacement syntax to Go regexp replacement syntax.
// Sed uses \1..\9 for backreferences and & for the whole match.
func sedGoReplace(sedRepl string) string {
	var b strings.Builder
	b.Grow(len(sedRepl))
	for i := 0; i < len(sedRepl); i++ {
		ch := sedRepl[i]
		switch ch {
		case '\\':
			if i+1 >= len(sedRepl) {
				b.WriteByte('\\')
				continue
			}
			next := sedRepl[i+1]
			i++
			switch {
			case next >= '0' && next <= '9':
				b.WriteString("${")
				b.WriteByte(next)
				b.WriteByte('}')
			case next == 'n':
				b.WriteByte('\n')
			case next == 't':
				b.WriteByte('\t')
			case next == '$':
				b.WriteString("$$")
			default:
				b.WriteByte(next)
			}
		case '&':
			b.WriteString("${0}")
		case '$':
			b.WriteString("$$")
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// 🔡 transliterate implements y/src/dst/
type transliterate struct {
	source  string
	mapping map[rune]rune
}

func compileTransliterate(src string) (LineTransform, error) {
	parts, rest, err := splitSed(src[1:])
	if err != nil {
		return nil, editerr.Compile(src, err)
	}
	if rest != "" {
		return nil, editerr.Compile(src, errors.Errorf("unexpected %q after transliteration", rest))
	}

	from, to := []rune(unescape(parts[0])), []rune(unescape(parts[1]))
	if len(from) != len(to) {
		return nil, editerr.Compile(src, errors.Errorf("strings for transliteration differ in length (%d != %d)", len(from), len(to)))
	}

	mapping := make(map[rune]rune, len(from))
	for i, r := range from {
		mapping[r] = to[i]
	}
	return &transliterate{source: src, mapping: mapping}, nil
}

// unescape resolves \n, \t and \\ in transliteration strings
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, `\`).Replace(s)
}

// Source implements LineTransform.Source
func (t *transliterate) Source() string {
	return t.source
}

// Apply implements LineTransform.Apply
func (t *transliterate) Apply(line string) (string, error) {
	return strings.Map(func(r rune) rune {
		if rep, ok := t.mapping[r]; ok {
			return rep
		}
		return r
	}, line), nil
}
