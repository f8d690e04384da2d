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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "job.yaml",
			content: `
patterns: ["*.py", "*.txt"]
start_dir: src
max_depth: 2
expressions:
  - s/Dutch/Guido/
functions:
  - text:strip_trailing_space
executables:
  - sort -r
write: true
encoding: latin1
newline: crlf
`,
		},
		{
			name: "json",
			file: "job.json",
			content: `{
	"patterns": ["*.py", "*.txt"],
	"start_dir": "src",
	"max_depth": 2,
	"expressions": ["s/Dutch/Guido/"],
	"functions": ["text:strip_trailing_space"],
	"executables": ["sort -r"],
	"write": true,
	"encoding": "latin1",
	"newline": "crlf"
}`,
		},
		{
			name: "hcl",
			file: "job.hcl",
			content: `
patterns    = ["*.py", "*.txt"]
start_dir   = "src"
max_depth   = 2
expressions = ["s/Dutch/Guido/"]
functions   = ["text:strip_trailing_space"]
executables = ["sort -r"]
write       = true
encoding    = "latin1"
newline     = "crlf"
`,
		},
		{
			name: "toml",
			file: "job.toml",
			content: `
patterns = ["*.py", "*.txt"]
start_dir = "src"
max_depth = 2
expressions = ["s/Dutch/Guido/"]
functions = ["text:strip_trailing_space"]
executables = ["sort -r"]
write = true
encoding = "latin1"
newline = "crlf"
`,
		},
		{
			name: "dotfile_yaml",
			file: ".massedit",
			content: `
patterns: ["*.py", "*.txt"]
start_dir: src
max_depth: 2
expressions: ["s/Dutch/Guido/"]
functions: ["text:strip_trailing_space"]
executables: ["sort -r"]
write: true
encoding: latin1
newline: crlf
`,
		},
		{
			name: "dotfile_hcl",
			file: ".massedit",
			content: `
patterns    = ["*.py", "*.txt"]
start_dir   = "src"
max_depth   = 2
expressions = ["s/Dutch/Guido/"]
functions   = ["text:strip_trailing_space"]
executables = ["sort -r"]
write       = true
encoding    = "latin1"
newline     = "crlf"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			cfg, err := LoadConfig(testContext(t), path)
			require.NoError(t, err)

			assert.Equal(t, []string{"*.py", "*.txt"}, cfg.Patterns)
			assert.Equal(t, filepath.Join(filepath.Dir(path), "src"), cfg.StartDir, "start dir should be relative to the file")
			assert.Equal(t, 2, cfg.MaxDepth)
			assert.Equal(t, []string{"s/Dutch/Guido/"}, cfg.Expressions)
			assert.Equal(t, []string{"text:strip_trailing_space"}, cfg.Functions)
			assert.Equal(t, []string{"sort -r"}, cfg.Executables)
			assert.True(t, cfg.Write)
			assert.Equal(t, "latin1", cfg.Encoding)
			assert.Equal(t, "crlf", cfg.Newline)
			assert.Equal(t, path, cfg.Location())
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		content     string
		errContains string
	}{
		{name: "unsupported_extension", file: "job.ini", content: "x=1", errContains: "unsupported file extension"},
		{name: "yaml_unknown_field", file: "job.yaml", content: "patern: [a]\n", errContains: "parsing YAML"},
		{name: "json_unknown_field", file: "job.json", content: `{"patern": ["a"]}`, errContains: "parsing JSON"},
		{name: "toml_unknown_field", file: "job.toml", content: "patern = [\"a\"]\n", errContains: "parsing TOML"},
		{name: "hcl_unknown_field", file: "job.hcl", content: "patern = [\"a\"]\n", errContains: "decoding HCL"},
		{name: "hcl_syntax", file: "job.hcl", content: "patterns = [\n", errContains: "parsing HCL"},
		{name: "dotfile_garbage", file: ".massedit", content: "{{{", errContains: "failed to parse .massedit"},
		{name: "negative_depth", file: "job.yaml", content: "max_depth: -1\n", errContains: "max_depth must not be negative"},
		{name: "bad_encoding", file: "job.yaml", content: "encoding: klingon\n", errContains: "invalid encoding"},
		{name: "bad_newline", file: "job.yaml", content: "newline: tab\n", errContains: "invalid newline"},
		{name: "empty_pattern", file: "job.yaml", content: "patterns: [\"\"]\n", errContains: "patterns[0] is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			_, err := LoadConfig(testContext(t), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(testContext(t), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoadConfigEmptyYAML(t *testing.T) {
	cfg, err := LoadConfig(testContext(t), writeConfig(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, "utf-8", cfg.Encoding, "encoding should default")
	assert.False(t, cfg.Write)
}

func TestValidate(t *testing.T) {
	cfg := &Config{StartDir: "a/../b/", Output: "-"}
	require.NoError(t, Validate(testContext(t), cfg))
	assert.Equal(t, "b", cfg.StartDir)
	assert.Equal(t, "-", cfg.Output, "stdout marker should be kept")
	assert.Equal(t, "utf-8", cfg.Encoding)
}

func TestOverlay(t *testing.T) {
	file := &Config{
		Patterns:    []string{"*.py"},
		StartDir:    "src",
		MaxDepth:    2,
		Expressions: []string{"s/a/b/"},
		Functions:   []string{"text:uniq"},
		Encoding:    "latin1",
		Write:       true,
	}
	flags := &Config{
		Patterns:    []string{"*.txt"},
		StartDir:    "other",
		MaxDepth:    5,
		Expressions: []string{"upper(line)"},
		Executables: []string{"cat"},
		Encoding:    "utf-8",
		Write:       false,
		Newline:     "lf",
	}

	set := map[string]bool{KeyMaxDepth: true, KeyNewline: true}
	file.Overlay(flags, func(key string) bool { return set[key] })

	assert.Equal(t, []string{"*.py", "*.txt"}, file.Patterns, "lists should append in file order first")
	assert.Equal(t, []string{"s/a/b/", "upper(line)"}, file.Expressions)
	assert.Equal(t, []string{"text:uniq"}, file.Functions)
	assert.Equal(t, []string{"cat"}, file.Executables)
	assert.Equal(t, "src", file.StartDir, "unset flag should not override")
	assert.Equal(t, 5, file.MaxDepth)
	assert.Equal(t, "latin1", file.Encoding)
	assert.Equal(t, "lf", file.Newline)
	assert.True(t, file.Write, "unset write flag should not override")
}

func TestString(t *testing.T) {
	cfg := &Config{Patterns: []string{"*.go"}, Expressions: []string{"a", "b"}, Write: true}
	assert.Equal(t, "write [*.go] (2 expressions, 0 functions, 0 executables)", cfg.String())
}
