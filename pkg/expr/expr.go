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
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/walteh/massedit/pkg/editerr"
)

// LineVariable is the name an expression uses to reference the current line
const LineVariable = "line"

// TemplatePrefix marks a source as an HCL template rather than an expression
const TemplatePrefix = "tmpl:"

// 🔄 LineTransform rewrites a single line. The line is passed without its
// terminator.
type LineTransform interface {
	// Source returns the text the transform was compiled from
	Source() string
	// Apply returns the rewritten line
	Apply(line string) (string, error)
}

// 🏗️ Compiler turns expression sources into LineTransforms
type Compiler struct {
	functions map[string]function.Function
}

// DefaultFunctions returns the function table available to expressions
func DefaultFunctions() map[string]function.Function {
	return map[string]function.Function{
		"upper":         stdlib.UpperFunc,
		"lower":         stdlib.LowerFunc,
		"title":         stdlib.TitleFunc,
		"trimspace":     stdlib.TrimSpaceFunc,
		"trim":          stdlib.TrimFunc,
		"trimprefix":    stdlib.TrimPrefixFunc,
		"trimsuffix":    stdlib.TrimSuffixFunc,
		"replace":       stdlib.ReplaceFunc,
		"regex_replace": stdlib.RegexReplaceFunc,
		"regex":         stdlib.RegexFunc,
		"regexall":      stdlib.RegexAllFunc,
		"split":         stdlib.SplitFunc,
		"join":          stdlib.JoinFunc,
		"format":        stdlib.FormatFunc,
		"substr":        stdlib.SubstrFunc,
		"strlen":        stdlib.StrlenFunc,
		"reverse":       stdlib.ReverseFunc,
		"chomp":         stdlib.ChompFunc,
		"indent":        stdlib.IndentFunc,
		"concat":        stdlib.ConcatFunc,
		"length":        stdlib.LengthFunc,
		"sort":          stdlib.SortFunc,
	}
}

// 🏭 NewCompiler creates a compiler with the default function table plus
// the given helper functions. Helpers override defaults of the same name.
func NewCompiler(helpers map[string]function.Function) *Compiler {
	fns := DefaultFunctions()
	for name, fn := range helpers {
		fns[name] = fn
	}
	return &Compiler{functions: fns}
}

// Functions returns the sorted names of the functions expressions may call
func (c *Compiler) Functions() []string {
	names := make([]string, 0, len(c.functions))
	for name := range c.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ⚙️ Compile parses src into a LineTransform. The shape of src selects the
// strategy: sed substitution (s/re/repl/flags), sed transliteration
// (y/src/dst/), HCL template (tmpl:...) or HCL expression.
func (c *Compiler) Compile(src string) (LineTransform, error) {
	if isSedCommand(src, 's') {
		return compileSubstitute(src)
	}
	if isSedCommand(src, 'y') {
		return compileTransliterate(src)
	}
	if strings.HasPrefix(src, TemplatePrefix) {
		return c.compileTemplate(src)
	}
	if strings.TrimSpace(src) == "" {
		return nil, editerr.Compile(src, errEmptyExpression)
	}
	return c.compileExpression(src)
}

// 🔁 Apply runs transforms over line in order, feeding each result into the next
func Apply(line string, transforms []LineTransform, logger *zerolog.Logger) (string, error) {
	for _, t := range transforms {
		next, err := t.Apply(line)
		if err != nil {
			if logger != nil {
				logger.Error().Err(err).Str("expression", t.Source()).Str("line", line).Msg("cannot process line")
			}
			return "", err
		}
		line = next
	}
	return line, nil
}
