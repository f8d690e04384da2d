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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/massedit/pkg/config"
	"github.com/walteh/massedit/pkg/expr"
	mlog "github.com/walteh/massedit/pkg/log"
	"github.com/walteh/massedit/pkg/operation"
	"github.com/walteh/massedit/pkg/status"
	"github.com/walteh/massedit/pkg/transform"
)

// flagKeys maps config keys to the flags that set them
var flagKeys = map[string]string{
	config.KeyStartDir: "start",
	config.KeyMaxDepth: "max-depth",
	config.KeyWrite:    "write",
	config.KeyEncoding: "encoding",
	config.KeyNewline:  "newline",
	config.KeyOutput:   "output",
}

// Handler holds the flag values of a massedit invocation
type Handler struct {
	write         bool
	verbose       int
	expressions   []string
	functions     []string
	executables   []string
	startDir      string
	maxDepth      int
	output        string
	configFile    string
	encoding      string
	newline       string
	listFunctions bool
}

// NewRootCommand builds the massedit command
func NewRootCommand() *cobra.Command {
	h := &Handler{}

	cmd := &cobra.Command{
		Use:   "massedit [flags] pattern...",
		Short: "Edit many files at once with line expressions, functions and commands",
		Long: `massedit rewrites every file matching the given glob patterns.

Each line is passed through the expressions in order. An expression is a sed
substitution (s/from/to/flags), a transliteration (y/abc/xyz/), an HCL
template (tmpl:...) or an HCL expression over the variable "line".
Functions transform the whole file and an executable may preprocess it first.

Without --write the changes are shown as a unified diff.`,
		Example: `  massedit -e 'regex_replace(line, "[Ff]oo", "bar")' '*.txt'
  massedit -w -e 's/colour/color/g' -s docs '*.md'
  massedit -f text:strip_trailing_space -f text:ensure_final_newline '*.go'`,
		Args:          cobra.ArbitraryArgs,
		Version:       GetVersionInfo().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.Run(cmd, args)
		},
	}
	cmd.SetVersionTemplate(FormatVersion())

	flags := cmd.Flags()
	flags.BoolVarP(&h.write, "write", "w", false, "write the changes back to the files")
	flags.CountVarP(&h.verbose, "verbose", "V", "increase verbosity (repeatable)")
	flags.StringArrayVarP(&h.expressions, "expression", "e", nil, "line expression (repeatable)")
	flags.StringArrayVarP(&h.functions, "function", "f", nil, "content function as module:name (repeatable)")
	flags.StringArrayVarP(&h.executables, "executable", "x", nil, "command to preprocess each file, only the first is run")
	flags.StringVarP(&h.startDir, "start", "s", "", "directory to search from (default current directory)")
	flags.IntVarP(&h.maxDepth, "max-depth", "m", 0, "maximum directory depth, 0 for unlimited")
	flags.StringVarP(&h.output, "output", "o", "-", "file receiving the diffs, - for stdout")
	flags.StringVarP(&h.configFile, "config", "c", "", "job file (.yaml, .json, .hcl, .toml or .massedit)")
	flags.StringVar(&h.encoding, "encoding", "", "text encoding of the files (default utf-8)")
	flags.StringVar(&h.newline, "newline", "", "newline written back: lf, crlf, cr or auto (default platform newline)")
	flags.BoolVar(&h.listFunctions, "list-functions", false, "list the available functions and exit")

	return cmd
}

// Run executes the command with the parsed flags
func (h *Handler) Run(cmd *cobra.Command, args []string) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	logger := mlog.Setup(stderr, h.verbose)
	console := mlog.NewConsole(stderr, logger)
	ctx := logger.WithContext(cmd.Context())
	ctx = mlog.NewContext(ctx, console)

	if h.listFunctions {
		return listFunctions(stdout)
	}

	cfg, err := h.config(ctx, cmd, args)
	if err != nil {
		console.Error(err.Error())
		return err
	}

	if len(cfg.Patterns) == 0 {
		err := errors.New("at least one pattern is required")
		console.Error(err.Error())
		return err
	}

	out, closeOut, err := openOutput(cfg.Output, stdout)
	if err != nil {
		console.Error(err.Error())
		return err
	}
	defer closeOut()

	var reportOut io.Writer
	if h.verbose > 0 {
		reportOut = stderr
		console.Header(cfg.String())
		if loc := cfg.Location(); loc != "" {
			console.Infof("using config %s", loc)
		}
	}
	reporter := status.NewReporter(reportOut)

	processed, err := operation.EditFiles(ctx, operation.Options{
		Patterns:    cfg.Patterns,
		StartDir:    cfg.StartDir,
		MaxDepth:    cfg.MaxDepth,
		Expressions: cfg.Expressions,
		Functions:   cfg.Functions,
		Executables: cfg.Executables,
		DryRun:      !cfg.Write,
		Encoding:    cfg.Encoding,
		Newline:     cfg.Newline,
		RunOptions: operation.RunOptions{
			Output:   out,
			Color:    mlog.IsTerminal(out),
			Reporter: reporter,
		},
	})

	if len(reporter.Entries()) > 0 {
		table, rerr := reporter.Render()
		if rerr != nil {
			zerolog.Ctx(ctx).Warn().Err(rerr).Msg("rendering summary")
		} else {
			fmt.Fprint(stderr, table)
		}
	}

	if err != nil {
		console.Error(err.Error())
		return err
	}

	mode := "checked"
	if cfg.Write {
		mode = "edited"
	}
	console.Successf("%d files %s", len(processed), mode)
	return nil
}

// config loads the job file, if any, and merges the flags over it
func (h *Handler) config(ctx context.Context, cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := &config.Config{}
	if h.configFile != "" {
		loaded, err := config.LoadConfig(ctx, h.configFile)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	set := func(key string) bool {
		return cmd.Flags().Changed(flagKeys[key])
	}

	// flag paths are relative to the working directory, not the job file
	startDir, err := absPath(h.startDir)
	if err != nil {
		return nil, err
	}
	output, err := absPath(h.output)
	if err != nil {
		return nil, err
	}

	flags := &config.Config{
		Patterns:    args,
		StartDir:    startDir,
		MaxDepth:    h.maxDepth,
		Expressions: h.expressions,
		Functions:   h.functions,
		Executables: h.executables,
		Write:       h.write,
		Encoding:    h.encoding,
		Newline:     h.newline,
		Output:      output,
	}

	if h.configFile == "" {
		// without a job file every flag applies, defaults included
		set = func(string) bool { return true }
	}
	cfg.Overlay(flags, set)

	if err := config.Validate(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func absPath(path string) (string, error) {
	if path == "" || path == "-" {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", path, err)
	}
	return abs, nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Errorf("opening output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func listFunctions(w io.Writer) error {
	var b strings.Builder
	b.WriteString("expression helpers:\n")
	for _, name := range expr.NewCompiler(nil).Functions() {
		fmt.Fprintf(&b, "  %s\n", name)
	}
	b.WriteString("content functions:\n")
	for _, name := range transform.Builtins().Names() {
		fmt.Fprintf(&b, "  %s\n", name)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Errorf("writing function list: %w", err)
	}
	return nil
}
