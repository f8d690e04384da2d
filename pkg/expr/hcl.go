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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/massedit/pkg/editerr"
)

var (
	errEmptyExpression = errors.New("empty expression")
	errEmptyResult     = errors.New("expression produced no value")
)

// 🧮 hclTransform evaluates a compiled HCL expression or template
type hclTransform struct {
	source    string
	expr      hcl.Expression
	functions map[string]function.Function
}

func (c *Compiler) compileExpression(src string) (LineTransform, error) {
	parsed, diags := hclsyntax.ParseExpression([]byte(src), "<expression>", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, editerr.Compile(src, diags)
	}
	return &hclTransform{source: src, expr: parsed, functions: c.functions}, nil
}

func (c *Compiler) compileTemplate(src string) (LineTransform, error) {
	body := strings.TrimPrefix(src, TemplatePrefix)
	parsed, diags := hclsyntax.ParseTemplate([]byte(body), "<template>", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, editerr.Compile(src, diags)
	}
	return &hclTransform{source: src, expr: parsed, functions: c.functions}, nil
}

// Source implements LineTransform.Source
func (h *hclTransform) Source() string {
	return h.source
}

// Apply implements LineTransform.Apply
func (h *hclTransform) Apply(line string) (string, error) {
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			LineVariable: cty.StringVal(line),
		},
		Functions: h.functions,
	}

	val, diags := h.expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", editerr.Evaluation(line, h.source, diags)
	}

	out, err := stringify(val)
	if err != nil {
		return "", editerr.Evaluation(line, h.source, err)
	}
	return out, nil
}

// stringify converts an expression result into line text. Sequences are
// joined with a single space; null values and empty sequences are rejected.
func stringify(val cty.Value) (string, error) {
	if val.IsNull() {
		return "", errEmptyResult
	}
	if !val.IsWhollyKnown() {
		return "", errors.New("expression result is unknown")
	}

	ty := val.Type()
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		if val.LengthInt() == 0 {
			return "", errEmptyResult
		}
		parts := make([]string, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			s, err := scalarString(elem)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, " "), nil
	}

	return scalarString(val)
}

func scalarString(val cty.Value) (string, error) {
	if val.IsNull() {
		return "", errors.New("null element in result")
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", errors.Errorf("cannot convert %s to text: %w", val.Type().FriendlyName(), err)
	}
	return str.AsString(), nil
}
