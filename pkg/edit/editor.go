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

// Package edit implements the per-file rewriting pipeline: read, optional
// external preprocessing, line expressions, content transforms, diff and
// commit.
package edit

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/massedit/pkg/commit"
	"github.com/walteh/massedit/pkg/diff"
	"github.com/walteh/massedit/pkg/editerr"
	"github.com/walteh/massedit/pkg/expr"
	"github.com/walteh/massedit/pkg/text"
	"github.com/walteh/massedit/pkg/transform"
)

// 🔧 Options configures an Editor
type Options struct {
	// DryRun only computes diffs, files are never touched
	DryRun bool
	// Encoding names the text encoding of the files (default utf-8)
	Encoding string
	// Newline is the terminator written on commit: "" for the platform
	// default, "auto" to keep the file's own, or lf, crlf, cr
	Newline string
	// Fs is the filesystem files are read from and committed to (default OS)
	Fs afero.Fs
	// Compiler compiles line expressions (default expr.NewCompiler(nil))
	Compiler *expr.Compiler
	// Registry resolves module:name function references (default transform.Builtins())
	Registry *transform.Registry
}

// ✏️ Editor holds an ordered pipeline of line expressions, content transforms
// and external commands. It is reusable across files but must not be
// mutated while a file is being processed.
type Editor struct {
	dryRun    bool
	codec     *text.Codec
	newline   string
	fs        afero.Fs
	compiler  *expr.Compiler
	registry  *transform.Registry
	committer *commit.Committer

	expressions []expr.LineTransform
	sources     map[string]struct{}
	transforms  []transform.Transform
	executables []*command
}

// 🏭 New creates an editor with an empty pipeline
func New(opts Options) (*Editor, error) {
	codec, err := text.LookupCodec(opts.Encoding)
	if err != nil {
		return nil, errors.Errorf("configuring encoding: %w", err)
	}
	newline, err := text.ParseNewline(opts.Newline)
	if err != nil {
		return nil, errors.Errorf("configuring newline: %w", err)
	}

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	compiler := opts.Compiler
	if compiler == nil {
		compiler = expr.NewCompiler(nil)
	}
	registry := opts.Registry
	if registry == nil {
		registry = transform.Builtins()
	}

	return &Editor{
		dryRun:    opts.DryRun,
		codec:     codec,
		newline:   newline,
		fs:        fsys,
		compiler:  compiler,
		registry:  registry,
		committer: commit.New(fsys),
		sources:   make(map[string]struct{}),
	}, nil
}

// DryRun reports whether the editor only computes diffs
func (e *Editor) DryRun() bool {
	return e.dryRun
}

// Encoding returns the canonical name of the configured encoding
func (e *Editor) Encoding() string {
	return e.codec.Name()
}

// Expressions returns the registered expression sources in order
func (e *Editor) Expressions() []string {
	out := make([]string, 0, len(e.expressions))
	for _, lt := range e.expressions {
		out = append(out, lt.Source())
	}
	return out
}

// Functions returns the registered transform names in order
func (e *Editor) Functions() []string {
	out := make([]string, 0, len(e.transforms))
	for _, t := range e.transforms {
		out = append(out, t.Name)
	}
	return out
}

// Executables returns the registered command specifications in order
func (e *Editor) Executables() []string {
	out := make([]string, 0, len(e.executables))
	for _, c := range e.executables {
		out = append(out, c.spec)
	}
	return out
}

// ➕ AppendExpression compiles src and appends it to the line expressions.
// Registering the same text twice is a no-op.
func (e *Editor) AppendExpression(src string) error {
	if _, ok := e.sources[src]; ok {
		return nil
	}
	lt, err := e.compiler.Compile(src)
	if err != nil {
		return err
	}
	e.appendLineTransform(lt)
	return nil
}

// SetExpressions replaces the line expressions. Nothing changes if any
// source fails to compile.
func (e *Editor) SetExpressions(srcs []string) error {
	compiled := make([]expr.LineTransform, 0, len(srcs))
	for _, src := range srcs {
		lt, err := e.compiler.Compile(src)
		if err != nil {
			return err
		}
		compiled = append(compiled, lt)
	}

	e.expressions = nil
	e.sources = make(map[string]struct{})
	for _, lt := range compiled {
		e.appendLineTransform(lt)
	}
	return nil
}

// AppendLineTransform appends a caller supplied line strategy, keyed by its
// source like a compiled expression
func (e *Editor) AppendLineTransform(lt expr.LineTransform) error {
	if lt == nil {
		return errors.New("line transform is nil")
	}
	e.appendLineTransform(lt)
	return nil
}

func (e *Editor) appendLineTransform(lt expr.LineTransform) {
	if _, ok := e.sources[lt.Source()]; ok {
		return
	}
	e.sources[lt.Source()] = struct{}{}
	e.expressions = append(e.expressions, lt)
}

// ➕ AppendTransform appends a content transform
func (e *Editor) AppendTransform(t transform.Transform) error {
	if t.Func == nil {
		return errors.Errorf("%w: transform %s is nil", transform.ErrSignature, t.Name)
	}
	e.transforms = append(e.transforms, t)
	return nil
}

// AppendFunc validates fn as a content transform and appends it
func (e *Editor) AppendFunc(name string, fn any) error {
	t, err := transform.FromValue(name, fn)
	if err != nil {
		return err
	}
	return e.AppendTransform(t)
}

// AppendFunction resolves a module:name reference through the registry and
// appends it
func (e *Editor) AppendFunction(ref string) error {
	t, err := e.registry.Resolve(ref)
	if err != nil {
		return err
	}
	return e.AppendTransform(t)
}

// SetFunctions replaces the content transforms. Nothing changes if any
// reference fails to resolve.
func (e *Editor) SetFunctions(refs []string) error {
	resolved := make([]transform.Transform, 0, len(refs))
	for _, ref := range refs {
		t, err := e.registry.Resolve(ref)
		if err != nil {
			return err
		}
		resolved = append(resolved, t)
	}
	e.transforms = resolved
	return nil
}

// ➕ AppendExecutable parses a shell-style command line and appends it. Only
// the first registered command is run.
func (e *Editor) AppendExecutable(spec string) error {
	c, err := parseCommand(spec)
	if err != nil {
		return err
	}
	e.executables = append(e.executables, c)
	return nil
}

// SetExecutables replaces the external commands. Nothing changes if any
// specification fails to parse.
func (e *Editor) SetExecutables(specs []string) error {
	parsed := make([]*command, 0, len(specs))
	for _, spec := range specs {
		c, err := parseCommand(spec)
		if err != nil {
			return err
		}
		parsed = append(parsed, c)
	}
	e.executables = parsed
	return nil
}

// 📝 EditLine runs the line expressions over a single line. A trailing \n is
// detached before evaluation and re-attached afterwards.
func (e *Editor) EditLine(line string) (string, error) {
	nop := zerolog.Nop()
	return e.editLine(line, &nop)
}

func (e *Editor) editLine(line string, logger *zerolog.Logger) (string, error) {
	if len(e.expressions) == 0 {
		return line, nil
	}
	body, terminator := text.Chomp(line)
	out, err := expr.Apply(body, e.expressions, logger)
	if err != nil {
		return "", err
	}
	return out + terminator, nil
}

// 📄 EditContent rewrites every line, then runs the content transforms in
// order. lines is never modified. A line expression or transform producing
// text with embedded newlines yields separate lines.
func (e *Editor) EditContent(lines []string, path string) ([]string, error) {
	nop := zerolog.Nop()
	return e.editContent(lines, path, &nop)
}

func (e *Editor) editContent(lines []string, path string, logger *zerolog.Logger) ([]string, error) {
	out := make([]string, len(lines))
	for i, line := range lines {
		edited, err := e.editLine(line, logger)
		if err != nil {
			return nil, err
		}
		out[i] = edited
	}
	out = text.SplitLines(text.JoinLines(out))

	for _, t := range e.transforms {
		next, err := t.Apply(out, path)
		if err != nil {
			logger.Error().Err(err).Str("transform", t.Name).Msg("failed to execute transform")
			if errors.Is(err, editerr.ErrDecode) {
				return nil, err
			}
			return nil, editerr.Transform(t.Name, path, err)
		}
		out = text.SplitLines(text.JoinLines(next))
	}
	return out, nil
}

// ✅ Result is the outcome of editing one file
type Result struct {
	Path    string
	Diff    *diff.Result
	Changed bool           // new content differs from the original
	Written bool           // new content was committed
	Commit  *commit.Result // set when Written
}

// 🚀 EditFile runs the pipeline on path. In dry-run mode, or when the content
// does not change, the file is left untouched.
func (e *Editor) EditFile(ctx context.Context, path string) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("file", path).Logger()

	raw, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}
	content, err := e.codec.Decode(raw)
	if err != nil {
		return nil, editerr.Decode(path, e.codec.Name(), err)
	}
	original := text.SplitLines(text.Normalize(content))

	input := original
	if len(e.executables) > 0 {
		if len(e.executables) > 1 {
			logger.Warn().Int("count", len(e.executables)).Msg("found several executables; only the first one is used")
		}
		input, err = e.preprocess(ctx, e.executables[0], path)
		if err != nil {
			logger.Error().Err(err).Msg("external command failed")
			return nil, err
		}
	}

	final, err := e.editContent(input, path, &logger)
	if err != nil {
		return nil, err
	}

	d, err := diff.Unified(original, final, path)
	if err != nil {
		return nil, errors.Errorf("computing diff of %s: %w", path, err)
	}

	res := &Result{
		Path:    path,
		Diff:    d,
		Changed: text.JoinLines(final) != text.JoinLines(original),
	}
	if e.dryRun || !res.Changed {
		logger.Debug().Bool("changed", res.Changed).Bool("dry_run", e.dryRun).Msg("file not written")
		return res, nil
	}

	logger.Debug().Str("diff", d.String()).Msg("committing changes")

	newline := text.ResolveNewline(e.newline, content)
	encoded, err := e.codec.Encode(text.Translate(text.JoinLines(final), newline))
	if err != nil {
		return nil, editerr.Write(path, err)
	}

	cres, err := e.committer.Commit(ctx, path, encoded)
	if err != nil {
		return nil, err
	}
	res.Written = true
	res.Commit = cres
	logger.Info().Int("bytes", cres.Bytes).Msg("file written")
	return res, nil
}

func (e *Editor) preprocess(ctx context.Context, c *command, path string) ([]string, error) {
	out, err := c.run(ctx, path)
	if err != nil {
		return nil, err
	}
	decoded, err := e.codec.Decode(out)
	if err != nil {
		return nil, editerr.Decode(path, e.codec.Name(), errors.Errorf("output of %s: %w", c.spec, err))
	}
	return text.SplitLines(text.Normalize(decoded)), nil
}
