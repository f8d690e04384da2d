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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/massedit/pkg/diff"
	"github.com/walteh/massedit/pkg/edit"
	"github.com/walteh/massedit/pkg/editerr"
	mlog "github.com/walteh/massedit/pkg/log"
	"github.com/walteh/massedit/pkg/status"
	"github.com/walteh/massedit/pkg/transform"
)

// 🔧 MockEditor is a mock implementation of the FileEditor interface
type MockEditor struct {
	mock.Mock
}

func (m *MockEditor) EditFile(ctx context.Context, path string) (*edit.Result, error) {
	result := m.Called(ctx, path)
	res, _ := result.Get(0).(*edit.Result)
	return res, result.Error(1)
}

func (m *MockEditor) DryRun() bool {
	return m.Called().Bool(0)
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func changedResult(t *testing.T, path string) *edit.Result {
	t.Helper()
	d, err := diff.Unified([]string{"a\n"}, []string{"b\n"}, path)
	require.NoError(t, err)
	return &edit.Result{Path: path, Diff: d, Changed: true}
}

func unchangedResult(t *testing.T, path string) *edit.Result {
	t.Helper()
	d, err := diff.Unified([]string{"a\n"}, []string{"a\n"}, path)
	require.NoError(t, err)
	return &edit.Result{Path: path, Diff: d}
}

func TestRun(t *testing.T) {
	ctx := testContext(t)
	m := &MockEditor{}
	m.On("DryRun").Return(true)
	m.On("EditFile", mock.Anything, "/w/a.txt").Return(changedResult(t, "/w/a.txt"), nil)
	m.On("EditFile", mock.Anything, "/w/b.bin").Return(nil, editerr.Decode("/w/b.bin", "utf-8", errors.New("invalid")))
	m.On("EditFile", mock.Anything, "/w/c.txt").Return(unchangedResult(t, "/w/c.txt"), nil)

	var out bytes.Buffer
	reporter := status.NewReporter(nil)
	processed, err := Run(ctx, m, []string{"/w/a.txt", "/w/b.bin", "/w/c.txt"}, RunOptions{Output: &out, Reporter: reporter})
	require.NoError(t, err)

	assert.Equal(t, []string{"/w/a.txt", "/w/c.txt"}, processed, "decode failures should be excluded")
	assert.Equal(t, "--- /w/a.txt\n+++ <new>\n@@ -1 +1 @@\n-a\n+b\n", out.String(), "only non-empty diffs are printed")

	sum := reporter.Summary()
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 1, sum.Modified)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Unchanged)
	m.AssertExpectations(t)
}

func TestRunAbortsOnFailure(t *testing.T) {
	failures := []struct {
		name string
		err  error
	}{
		{name: "transform", err: editerr.Transform("boom", "/w/b.txt", errors.New("kaboom"))},
		{name: "evaluation", err: editerr.Evaluation("x", "null", errors.New("no value"))},
		{name: "backup_conflict", err: editerr.BackupConflict("/w/b.txt", "/w/b.txt.bak")},
		{name: "external_command", err: editerr.ExternalCommand("false /w/b.txt", errors.New("exit status 1"))},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			m := &MockEditor{}
			m.On("DryRun").Return(false)
			m.On("EditFile", mock.Anything, "/w/a.txt").Return(unchangedResult(t, "/w/a.txt"), nil)
			m.On("EditFile", mock.Anything, "/w/b.txt").Return(nil, tt.err)

			reporter := status.NewReporter(nil)
			processed, err := Run(ctx, m, []string{"/w/a.txt", "/w/b.txt", "/w/c.txt"}, RunOptions{Reporter: reporter})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.err), "original failure should be wrapped")
			assert.Equal(t, []string{"/w/a.txt"}, processed)
			assert.Equal(t, 1, reporter.Summary().Failed)

			m.AssertNotCalled(t, "EditFile", mock.Anything, "/w/c.txt")
		})
	}
}

func TestRunWriteModeDoesNotPrintDiffs(t *testing.T) {
	ctx := testContext(t)
	res := changedResult(t, "/w/a.txt")
	res.Written = true

	m := &MockEditor{}
	m.On("DryRun").Return(false)
	m.On("EditFile", mock.Anything, "/w/a.txt").Return(res, nil)

	var out bytes.Buffer
	reporter := status.NewReporter(nil)
	_, err := Run(ctx, m, []string{"/w/a.txt"}, RunOptions{Output: &out, Reporter: reporter})
	require.NoError(t, err)
	assert.Empty(t, out.String())

	entries := reporter.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, status.StatusWritten, entries[0].Status)
	assert.Equal(t, 1, entries[0].Added)
	assert.Equal(t, 1, entries[0].Removed)
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestEditFilesDryRun(t *testing.T) {
	ctx := testContext(t)
	dir := writeFiles(t, map[string]string{
		"a.txt":     "What a nice cat!\n",
		"b.txt":     "no match here\n",
		"c.md":      "a cat in markdown\n",
		"sub/d.txt": "another cat\n",
	})

	var out bytes.Buffer
	processed, err := EditFiles(ctx, Options{
		Patterns:    []string{"*.txt"},
		StartDir:    dir,
		Expressions: []string{`regex_replace(line, "cat", "horse")`},
		DryRun:      true,
		RunOptions:  RunOptions{Output: &out},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "sub", "d.txt"),
	}, processed)
	assert.Contains(t, out.String(), "-What a nice cat!\n+What a nice horse!\n")
	assert.Contains(t, out.String(), "-another cat\n+another horse\n")
	assert.NotContains(t, out.String(), "markdown")

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "What a nice cat!\n", string(data), "dry run should not write")
}

func TestEditFilesWrite(t *testing.T) {
	ctx := testContext(t)
	dir := writeFiles(t, map[string]string{
		"a.txt": "cat  \n\n\ncat\n",
	})

	var out bytes.Buffer
	_, err := EditFiles(ctx, Options{
		Patterns:    []string{filepath.Join(dir, "*.txt")},
		Expressions: []string{`s/cat/dog/`},
		Functions:   []string{"text:strip_trailing_space", "text:squeeze_blank"},
		Newline:     "lf",
		RunOptions:  RunOptions{Output: &out},
	})
	require.NoError(t, err)
	assert.Empty(t, out.String(), "write mode prints no diff")

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "dog\n\ndog\n", string(data))

	_, err = os.Stat(filepath.Join(dir, "a.txt.bak"))
	assert.True(t, os.IsNotExist(err))
}

func TestEditFilesSkipsUndecodable(t *testing.T) {
	ctx := testContext(t)
	dir := writeFiles(t, map[string]string{
		"a.txt": "cat\n",
		"b.txt": "caf\xe9\n",
		"c.txt": "cat\n",
	})

	var console bytes.Buffer
	ctx = mlog.NewContext(ctx, mlog.NewConsole(&console, *zerolog.Ctx(ctx)))

	reporter := status.NewReporter(nil)
	processed, err := EditFiles(ctx, Options{
		Patterns:    []string{"*.txt"},
		StartDir:    dir,
		Expressions: []string{`s/cat/dog/`},
		Newline:     "lf",
		RunOptions:  RunOptions{Reporter: reporter},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "c.txt")}, processed)
	assert.Equal(t, 1, reporter.Summary().Skipped)
	assert.Equal(t, 2, reporter.Summary().Written)

	data, err := os.ReadFile(filepath.Join(dir, "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, "dog\n", string(data), "files after the skipped one are still processed")
	assert.Contains(t, console.String(), "skipping "+filepath.Join(dir, "b.txt"), "skip is reported on the console")
}

func TestEditFilesTransformAbortsBatch(t *testing.T) {
	ctx := testContext(t)
	dir := writeFiles(t, map[string]string{
		"a.txt": "1\n",
		"b.txt": "2\n",
		"c.txt": "3\n",
	})

	calls := 0
	reg := transform.NewRegistry()
	reg.MustRegister("test:boom", func(lines []string, path string) ([]string, error) {
		calls++
		return nil, errors.New("always fails")
	})

	processed, err := EditFiles(ctx, Options{
		Patterns:  []string{"*.txt"},
		StartDir:  dir,
		Functions: []string{"test:boom"},
		Registry:  reg,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, editerr.ErrTransform))
	assert.Contains(t, err.Error(), "always fails")
	assert.Empty(t, processed)
	assert.Equal(t, 1, calls, "no file after the failing one should be processed")
}

func TestEditFilesRegistrationErrors(t *testing.T) {
	tests := []struct {
		name        string
		opts        Options
		errContains string
	}{
		{
			name:        "bad_expression",
			opts:        Options{Expressions: []string{`upper(line`}},
			errContains: "registering expressions",
		},
		{
			name:        "unknown_function",
			opts:        Options{Functions: []string{"text:nope"}},
			errContains: "cannot find text:nope",
		},
		{
			name:        "empty_executable",
			opts:        Options{Executables: []string{""}},
			errContains: "registering executables",
		},
		{
			name:        "bad_encoding",
			opts:        Options{Encoding: "klingon"},
			errContains: "creating editor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			dir := writeFiles(t, map[string]string{"a.txt": "x\n"})
			tt.opts.Patterns = []string{"*.txt"}
			tt.opts.StartDir = dir

			_, err := EditFiles(ctx, tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)

			data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
			require.NoError(t, err)
			assert.Equal(t, "x\n", string(data))
		})
	}
}

func TestRegistryRejectsWrongArity(t *testing.T) {
	reg := transform.NewRegistry()
	err := reg.Register("test:short", func(lines []string) []string { return lines })
	require.Error(t, err)
	assert.True(t, errors.Is(err, transform.ErrSignature))
	assert.Contains(t, err.Error(), "exactly 2 arguments")
}
