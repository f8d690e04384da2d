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

// 🔌 Func adapts a plain Go function to a LineTransform
type Func func(line string) (string, error)

type namedFunc struct {
	source string
	fn     Func
}

// Named wraps fn as a LineTransform identified by source in error messages
func Named(source string, fn Func) LineTransform {
	return &namedFunc{source: source, fn: fn}
}

// Source implements LineTransform.Source
func (n *namedFunc) Source() string {
	return n.source
}

// Apply implements LineTransform.Apply
func (n *namedFunc) Apply(line string) (string, error) {
	return n.fn(line)
}
