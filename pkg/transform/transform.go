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

// Package transform holds whole-content transforms: functions that receive
// every line of a file plus the file's path and return the new lines.
package transform

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// ErrSignature is returned when a value cannot be used as a transform
var ErrSignature = errors.New("invalid transform signature")

// 🔄 Func rewrites the lines of the file at path. It may return a different
// number of lines than it received.
type Func func(lines []string, path string) ([]string, error)

// 📦 Transform is a named content transform
type Transform struct {
	Name string
	Func Func
}

// Apply runs the transform
func (t Transform) Apply(lines []string, path string) ([]string, error) {
	return t.Func(lines, path)
}

var funcType = reflect.TypeOf(Func(nil))

// 🔍 FromValue validates that fn is a function of two arguments (lines,
// path) returning (lines, error) and wraps it as a Transform.
func FromValue(name string, fn any) (Transform, error) {
	switch f := fn.(type) {
	case Func:
		if f == nil {
			return Transform{}, errors.Errorf("%w: transform %s is nil", ErrSignature, name)
		}
		return Transform{Name: name, Func: f}, nil
	case func([]string, string) ([]string, error):
		if f == nil {
			return Transform{}, errors.Errorf("%w: transform %s is nil", ErrSignature, name)
		}
		return Transform{Name: name, Func: f}, nil
	}

	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return Transform{}, errors.Errorf("%w: transform %s is not a function (got %T)", ErrSignature, name, fn)
	}
	if v.IsNil() {
		return Transform{}, errors.Errorf("%w: transform %s is nil", ErrSignature, name)
	}

	t := v.Type()
	if t.IsVariadic() || t.NumIn() != 2 {
		return Transform{}, errors.Errorf("%w: transform %s must accept exactly 2 arguments (lines, path), got %d",
			ErrSignature, name, t.NumIn())
	}
	if !t.ConvertibleTo(funcType) {
		return Transform{}, errors.Errorf("%w: transform %s has signature %s, want %s",
			ErrSignature, name, t, funcType)
	}
	return Transform{Name: name, Func: v.Convert(funcType).Interface().(Func)}, nil
}

// ParseRef splits a "module:name" reference
func ParseRef(ref string) (module, name string, err error) {
	module, name, ok := strings.Cut(ref, ":")
	if !ok || module == "" || name == "" || strings.Contains(name, ":") {
		return "", "", errors.Errorf("invalid function reference %q: expected module:name", ref)
	}
	return module, name, nil
}

// 🗂️ Registry resolves "module:name" references to transforms
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Transform
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Transform)}
}

// 📝 Register validates fn and stores it under ref
func (r *Registry) Register(ref string, fn any) error {
	if _, _, err := ParseRef(ref); err != nil {
		return err
	}
	t, err := FromValue(ref, fn)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[ref]; exists {
		return errors.Errorf("function %s is already registered", ref)
	}
	r.funcs[ref] = t
	return nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(ref string, fn any) {
	if err := r.Register(ref, fn); err != nil {
		panic(err)
	}
}

// 🎯 Resolve looks up ref
func (r *Registry) Resolve(ref string) (Transform, error) {
	module, _, err := ParseRef(ref)
	if err != nil {
		return Transform{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.funcs[ref]
	if ok {
		return t, nil
	}
	for known := range r.funcs {
		if strings.HasPrefix(known, module+":") {
			return Transform{}, errors.Errorf("cannot find %s in module %s", ref, module)
		}
	}
	return Transform{}, errors.Errorf("unknown module %s in %s", module, ref)
}

// Names returns the registered references, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
