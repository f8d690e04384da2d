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

// Package discover finds the files a batch operates on
package discover

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// 🔍 Paths walks startDir and returns the regular files matching any of
// patterns, in lexical walk order without duplicates.
//
// Patterns without a slash match the file's base name, others match the
// path relative to startDir. A single pattern with a directory component
// and no startDir searches only that directory. maxDepth 1 is startDir
// itself, 2 includes its children and so on; maxDepth <= 0 is unlimited.
func Paths(fsys afero.Fs, patterns []string, startDir string, maxDepth int) ([]string, error) {
	if len(patterns) == 0 {
		return nil, errors.New("no patterns given")
	}

	if len(patterns) == 1 && startDir == "" {
		if dir, base := filepath.Split(patterns[0]); dir != "" && !hasMeta(dir) {
			patterns = []string{base}
			startDir = filepath.Clean(dir)
			maxDepth = 1
		}
	}
	if startDir == "" {
		startDir = "."
	}

	for _, p := range patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return nil, errors.Errorf("invalid pattern %q", p)
		}
	}

	info, err := fsys.Stat(startDir)
	if err != nil {
		return nil, errors.Errorf("reading start directory: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("start directory %s is not a directory", startDir)
	}

	seen := make(map[string]struct{})
	var out []string
	err = afero.Walk(fsys, startDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(startDir, path)
		if err != nil {
			return errors.Errorf("relativizing %s: %w", path, err)
		}

		if info.IsDir() {
			if maxDepth > 0 && rel != "." && depth(rel) > maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		if !matchAny(patterns, rel) {
			return nil
		}
		if _, ok := seen[path]; ok {
			return nil
		}
		seen[path] = struct{}{}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", startDir, err)
	}
	return out, nil
}

// depth of the directory rel below the start directory, which is depth 1
func depth(rel string) int {
	return len(strings.Split(filepath.ToSlash(rel), "/")) + 1
}

func matchAny(patterns []string, rel string) bool {
	rel = filepath.ToSlash(rel)
	base := filepath.Base(rel)
	for _, p := range patterns {
		p = filepath.ToSlash(p)
		target := base
		if strings.Contains(p, "/") {
			target = rel
		}
		// patterns are validated up front
		if ok, _ := doublestar.Match(p, target); ok {
			return true
		}
	}
	return false
}

func hasMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}
