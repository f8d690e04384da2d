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

package commit

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/massedit/pkg/editerr"
)

var errInjected = errors.New("injected failure")

// faultyFs fails selected operations of the wrapped filesystem
type faultyFs struct {
	afero.Fs
	failOpen          bool
	failChmod         bool
	failRemoveBackup  bool
	failRestoreRename bool
}

func (f *faultyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if f.failOpen && flag&os.O_CREATE != 0 {
		return nil, errInjected
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func (f *faultyFs) Chmod(name string, mode os.FileMode) error {
	if f.failChmod {
		return errInjected
	}
	return f.Fs.Chmod(name, mode)
}

func (f *faultyFs) Remove(name string) error {
	if f.failRemoveBackup && strings.HasSuffix(name, BackupSuffix) {
		return errInjected
	}
	return f.Fs.Remove(name)
}

func (f *faultyFs) Rename(oldname, newname string) error {
	if f.failRestoreRename && strings.HasSuffix(oldname, BackupSuffix) {
		return errInjected
	}
	return f.Fs.Rename(oldname, newname)
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func seed(t *testing.T, fsys afero.Fs, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), mode))
	require.NoError(t, fsys.Chmod(path, mode))
}

func readFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	return string(data)
}

func exists(t *testing.T, fsys afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fsys, path)
	require.NoError(t, err)
	return ok
}

func TestCommit(t *testing.T) {
	ctx := testContext(t)
	fsys := afero.NewMemMapFs()
	seed(t, fsys, "/work/a.txt", "old\n", 0o640)

	res, err := New(fsys).Commit(ctx, "/work/a.txt", []byte("new\n"))
	require.NoError(t, err)

	assert.Equal(t, "/work/a.txt", res.Path)
	assert.Equal(t, "/work/a.txt.bak", res.BackupPath)
	assert.Equal(t, os.FileMode(0o640), res.Mode)
	assert.Equal(t, 4, res.Bytes)
	assert.True(t, res.BackupRemoved)

	assert.Equal(t, "new\n", readFile(t, fsys, "/work/a.txt"))
	assert.False(t, exists(t, fsys, "/work/a.txt.bak"), "backup should be removed")

	info, err := fsys.Stat("/work/a.txt")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm(), "permissions should be preserved")
}

func TestCommitBackupConflict(t *testing.T) {
	ctx := testContext(t)
	fsys := afero.NewMemMapFs()
	seed(t, fsys, "/work/a.txt", "old\n", 0o644)
	seed(t, fsys, "/work/a.txt.bak", "precious\n", 0o644)

	_, err := New(fsys).Commit(ctx, "/work/a.txt", []byte("new\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, editerr.ErrBackupConflict))
	assert.Contains(t, err.Error(), "/work/a.txt.bak already exists")

	assert.Equal(t, "old\n", readFile(t, fsys, "/work/a.txt"), "original should be untouched")
	assert.Equal(t, "precious\n", readFile(t, fsys, "/work/a.txt.bak"), "existing backup should be untouched")
}

func TestCommitWriteFailure(t *testing.T) {
	tests := []struct {
		name            string
		fs              *faultyFs
		expectedRestore RestoreOutcome
		expectedContent string
		expectBackup    bool
	}{
		{
			name:            "open_fails_restored",
			fs:              &faultyFs{failOpen: true},
			expectedRestore: Restored,
			expectedContent: "old\n",
		},
		{
			name:            "chmod_fails_restored",
			fs:              &faultyFs{failChmod: true},
			expectedRestore: Restored,
			expectedContent: "old\n",
		},
		{
			name:            "restore_fails",
			fs:              &faultyFs{failOpen: true, failRestoreRename: true},
			expectedRestore: RestoreFailed,
			expectBackup:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			base := afero.NewMemMapFs()
			seed(t, base, "/work/a.txt", "old\n", 0o600)
			tt.fs.Fs = base

			_, err := New(tt.fs).Commit(ctx, "/work/a.txt", []byte("new\n"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, editerr.ErrWrite), "should match ErrWrite")
			assert.Equal(t, editerr.KindWrite, editerr.KindOf(err))
			assert.True(t, errors.Is(err, errInjected), "original failure should be preserved")

			var werr *WriteError
			require.True(t, errors.As(err, &werr))
			assert.Equal(t, tt.expectedRestore, werr.Restore)

			if tt.expectBackup {
				assert.Equal(t, "old\n", readFile(t, base, "/work/a.txt.bak"), "backup should hold the original")
				assert.Contains(t, err.Error(), "failed to restore")
				return
			}
			assert.Equal(t, tt.expectedContent, readFile(t, base, "/work/a.txt"))
			assert.False(t, exists(t, base, "/work/a.txt.bak"))
		})
	}
}

func TestCommitBackupRemovalFailure(t *testing.T) {
	ctx := testContext(t)
	base := afero.NewMemMapFs()
	seed(t, base, "/work/a.txt", "old\n", 0o644)

	res, err := New(&faultyFs{Fs: base, failRemoveBackup: true}).Commit(ctx, "/work/a.txt", []byte("new\n"))
	require.NoError(t, err, "a stale backup is not a failed commit")
	assert.False(t, res.BackupRemoved)
	assert.Equal(t, "new\n", readFile(t, base, "/work/a.txt"))
	assert.True(t, exists(t, base, "/work/a.txt.bak"))
}

func TestCommitMissingFile(t *testing.T) {
	ctx := testContext(t)
	_, err := New(afero.NewMemMapFs()).Commit(ctx, "/nope.txt", []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, editerr.ErrWrite))

	var werr *WriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, RestoreNotAttempted, werr.Restore)
}

func TestRestoreOutcomeString(t *testing.T) {
	assert.Equal(t, "not_attempted", RestoreNotAttempted.String())
	assert.Equal(t, "restored", Restored.String())
	assert.Equal(t, "restore_failed", RestoreFailed.String())
}
