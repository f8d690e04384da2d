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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/massedit/pkg/text"
)

// 📚 Config describes a massedit run
type Config struct {
	Patterns    []string `json:"patterns,omitempty" yaml:"patterns,omitempty" hcl:"patterns,optional" toml:"patterns,omitempty"`
	StartDir    string   `json:"start_dir,omitempty" yaml:"start_dir,omitempty" hcl:"start_dir,optional" toml:"start_dir,omitempty"`
	MaxDepth    int      `json:"max_depth,omitempty" yaml:"max_depth,omitempty" hcl:"max_depth,optional" toml:"max_depth,omitempty"`
	Expressions []string `json:"expressions,omitempty" yaml:"expressions,omitempty" hcl:"expressions,optional" toml:"expressions,omitempty"`
	Functions   []string `json:"functions,omitempty" yaml:"functions,omitempty" hcl:"functions,optional" toml:"functions,omitempty"`
	Executables []string `json:"executables,omitempty" yaml:"executables,omitempty" hcl:"executables,optional" toml:"executables,omitempty"`
	Write       bool     `json:"write,omitempty" yaml:"write,omitempty" hcl:"write,optional" toml:"write,omitempty"`
	Encoding    string   `json:"encoding,omitempty" yaml:"encoding,omitempty" hcl:"encoding,optional" toml:"encoding,omitempty"`
	Newline     string   `json:"newline,omitempty" yaml:"newline,omitempty" hcl:"newline,optional" toml:"newline,omitempty"`
	Output      string   `json:"output,omitempty" yaml:"output,omitempty" hcl:"output,optional" toml:"output,omitempty"`

	location string // path of the file this config was loaded from
}

// Keys accepted by Overlay's set callback
const (
	KeyStartDir = "start_dir"
	KeyMaxDepth = "max_depth"
	KeyWrite    = "write"
	KeyEncoding = "encoding"
	KeyNewline  = "newline"
	KeyOutput   = "output"
)

// Location returns the path the config was loaded from, if any
func (c *Config) Location() string {
	return c.location
}

// 🔍 Validate normalizes paths and fills defaults. Relative paths in a loaded
// file are resolved against the file's directory.
func Validate(ctx context.Context, c *Config) error {
	logger := zerolog.Ctx(ctx)

	if c.MaxDepth < 0 {
		return errors.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}

	if c.Encoding == "" {
		c.Encoding = text.DefaultEncoding
	}
	if _, err := text.LookupCodec(c.Encoding); err != nil {
		return errors.Errorf("invalid encoding: %w", err)
	}

	if _, err := text.ParseNewline(c.Newline); err != nil {
		return errors.Errorf("invalid newline: %w", err)
	}

	for i, p := range c.Patterns {
		if strings.TrimSpace(p) == "" {
			return errors.Errorf("patterns[%d] is empty", i)
		}
	}

	base := ""
	if c.location != "" {
		base = filepath.Dir(c.location)
	}
	c.StartDir = resolve(base, c.StartDir)
	c.Output = resolve(base, c.Output)

	logger.Debug().
		Strs("patterns", c.Patterns).
		Str("start_dir", c.StartDir).
		Int("max_depth", c.MaxDepth).
		Str("encoding", c.Encoding).
		Msg("validated configuration")
	return nil
}

func resolve(base, path string) string {
	if path == "" || path == "-" {
		return path
	}
	if base != "" && !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	return filepath.Clean(path)
}

// 🔀 Overlay applies flags over c. List values are appended after c's own;
// scalar values replace c's when set reports their key as explicitly given.
func (c *Config) Overlay(flags *Config, set func(key string) bool) {
	c.Patterns = append(c.Patterns, flags.Patterns...)
	c.Expressions = append(c.Expressions, flags.Expressions...)
	c.Functions = append(c.Functions, flags.Functions...)
	c.Executables = append(c.Executables, flags.Executables...)

	if set(KeyStartDir) {
		c.StartDir = flags.StartDir
	}
	if set(KeyMaxDepth) {
		c.MaxDepth = flags.MaxDepth
	}
	if set(KeyWrite) {
		c.Write = flags.Write
	}
	if set(KeyEncoding) {
		c.Encoding = flags.Encoding
	}
	if set(KeyNewline) {
		c.Newline = flags.Newline
	}
	if set(KeyOutput) {
		c.Output = flags.Output
	}
}

// 📝 String returns a short description of the config
func (c *Config) String() string {
	mode := "dry-run"
	if c.Write {
		mode = "write"
	}
	return fmt.Sprintf("%s %v (%d expressions, %d functions, %d executables)",
		mode, c.Patterns, len(c.Expressions), len(c.Functions), len(c.Executables))
}
