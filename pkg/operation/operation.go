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

package operation

import (
	"context"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/massedit/pkg/discover"
	"github.com/walteh/massedit/pkg/edit"
	"github.com/walteh/massedit/pkg/editerr"
	"github.com/walteh/massedit/pkg/expr"
	mlog "github.com/walteh/massedit/pkg/log"
	"github.com/walteh/massedit/pkg/status"
	"github.com/walteh/massedit/pkg/transform"
)

// ✏️ FileEditor runs the pipeline on one file
type FileEditor interface {
	// EditFile edits path, committing unless the editor is in dry-run mode
	EditFile(ctx context.Context, path string) (*edit.Result, error)
	// DryRun reports whether files are left untouched
	DryRun() bool
}

var _ FileEditor = (*edit.Editor)(nil)

// 🔧 RunOptions controls where a batch reports
type RunOptions struct {
	// Output receives the diffs of a dry run (nil discards them)
	Output io.Writer
	// Color renders diffs with terminal colors
	Color bool
	// Reporter records each file's outcome (optional)
	Reporter *status.Reporter
}

// 🚀 Run edits paths in order and returns the absolute paths of the files
// processed. A decode failure skips the file; any other failure aborts the
// batch and is returned along with the paths processed before it.
func Run(ctx context.Context, editor FileEditor, paths []string, opts RunOptions) ([]string, error) {
	out := opts.Output
	if out == nil {
		out = io.Discard
	}

	processed := make([]string, 0, len(paths))
	for _, path := range paths {
		res, err := editor.EditFile(ctx, path)
		if err != nil {
			if errors.Is(err, editerr.ErrDecode) {
				mlog.FromContext(ctx).Warningf("skipping %s: %v", path, err)
				record(ctx, opts.Reporter, status.FileEntry{Path: path, Status: status.StatusSkipped, Err: err})
				continue
			}
			record(ctx, opts.Reporter, status.FileEntry{Path: path, Status: status.StatusFailed, Err: err})
			return processed, errors.Errorf("editing %s: %w", path, err)
		}

		if editor.DryRun() && !res.Diff.Empty() {
			text := res.Diff.String()
			if opts.Color {
				text = res.Diff.Colorize()
			}
			if _, err := io.WriteString(out, text); err != nil {
				return processed, errors.Errorf("writing diff of %s: %w", path, err)
			}
		}

		record(ctx, opts.Reporter, entryFor(res))

		abs, err := filepath.Abs(path)
		if err != nil {
			return processed, errors.Errorf("resolving %s: %w", path, err)
		}
		processed = append(processed, abs)
	}
	return processed, nil
}

func entryFor(res *edit.Result) status.FileEntry {
	entry := status.FileEntry{Path: res.Path, Status: status.StatusUnchanged}
	if res.Diff != nil {
		entry.Added, entry.Removed = res.Diff.Stats()
	}
	switch {
	case res.Written:
		entry.Status = status.StatusWritten
	case res.Changed:
		entry.Status = status.StatusModified
	}
	return entry
}

func record(ctx context.Context, r *status.Reporter, entry status.FileEntry) {
	if r != nil {
		r.Record(ctx, entry)
	}
}

// 🔧 Options describes a whole batch in string form
type Options struct {
	Patterns    []string
	StartDir    string
	MaxDepth    int // 0 is unlimited
	Expressions []string
	Functions   []string // module:name references
	Executables []string // only the first is run
	DryRun      bool
	Encoding    string
	Newline     string

	RunOptions

	Fs       afero.Fs            // default OS filesystem
	Compiler *expr.Compiler      // default expr.NewCompiler(nil)
	Registry *transform.Registry // default transform.Builtins()
}

// 📋 EditFiles builds an editor from opts, discovers the files and runs the
// batch. Registration errors are returned before any file is touched.
func EditFiles(ctx context.Context, opts Options) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	editor, err := NewEditor(opts)
	if err != nil {
		return nil, err
	}

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	paths, err := discover.Paths(fsys, opts.Patterns, opts.StartDir, opts.MaxDepth)
	if err != nil {
		return nil, errors.Errorf("discovering files: %w", err)
	}
	logger.Debug().Int("count", len(paths)).Msg("discovered files")

	return Run(ctx, editor, paths, opts.RunOptions)
}

// 🏭 NewEditor builds an editor with every stage of opts registered
func NewEditor(opts Options) (*edit.Editor, error) {
	editor, err := edit.New(edit.Options{
		DryRun:   opts.DryRun,
		Encoding: opts.Encoding,
		Newline:  opts.Newline,
		Fs:       opts.Fs,
		Compiler: opts.Compiler,
		Registry: opts.Registry,
	})
	if err != nil {
		return nil, errors.Errorf("creating editor: %w", err)
	}
	if err := editor.SetExpressions(opts.Expressions); err != nil {
		return nil, errors.Errorf("registering expressions: %w", err)
	}
	if err := editor.SetFunctions(opts.Functions); err != nil {
		return nil, errors.Errorf("registering functions: %w", err)
	}
	if err := editor.SetExecutables(opts.Executables); err != nil {
		return nil, errors.Errorf("registering executables: %w", err)
	}
	return editor, nil
}
