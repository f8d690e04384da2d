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
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/massedit/pkg/editerr"
)

// BackupSuffix is appended to a file's path to name its backup
const BackupSuffix = ".bak"

// BackupPath returns the sibling backup path of path
func BackupPath(path string) string {
	return path + BackupSuffix
}

// 🔁 RestoreOutcome records what happened to the original after a failed write
type RestoreOutcome int

const (
	RestoreNotAttempted RestoreOutcome = iota // failure happened before the original was moved
	Restored                                  // backup renamed back over path
	RestoreFailed                             // backup left in place, see RestoreErr
)

// String returns a string representation of RestoreOutcome
func (o RestoreOutcome) String() string {
	switch o {
	case Restored:
		return "restored"
	case RestoreFailed:
		return "restore_failed"
	default:
		return "not_attempted"
	}
}

// ❌ WriteError is a failed commit. Err is the original failure and is never
// masked by a restore failure.
type WriteError struct {
	Path       string
	BackupPath string
	Err        error
	Restore    RestoreOutcome
	RestoreErr error
}

// Error implements the error interface
func (e *WriteError) Error() string {
	msg := fmt.Sprintf("failed to write output to %s: %v", e.Path, e.Err)
	switch e.Restore {
	case Restored:
		msg += " (original restored)"
	case RestoreFailed:
		msg += fmt.Sprintf(" (failed to restore %s from %s: %v)", e.Path, e.BackupPath, e.RestoreErr)
	}
	return msg
}

// Unwrap returns the original failure
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is matches editerr.ErrWrite
func (e *WriteError) Is(target error) bool {
	return target == editerr.ErrWrite
}

// ✅ Result describes a successful commit
type Result struct {
	Path          string
	BackupPath    string
	Mode          fs.FileMode
	Bytes         int
	BackupRemoved bool
}

// 💾 Committer replaces files through a rename-out, write, restore-on-failure
// sequence
type Committer struct {
	fs afero.Fs
}

// New creates a committer on fsys. A nil fsys means the OS filesystem.
func New(fsys afero.Fs) *Committer {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Committer{fs: fsys}
}

// Commit replaces the content of path. The previous content lives in
// BackupPath(path) until the new content and permissions are in place.
func (c *Committer) Commit(ctx context.Context, path string, content []byte) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("file", path).Logger()
	backup := BackupPath(path)

	// never overwrite an existing backup
	if _, err := c.fs.Stat(backup); err == nil {
		return nil, editerr.BackupConflict(path, backup)
	} else if !os.IsNotExist(err) {
		return nil, errors.Errorf("checking backup %s: %w", backup, err)
	}

	info, err := c.fs.Stat(path)
	if err != nil {
		return nil, &WriteError{Path: path, BackupPath: backup, Err: errors.Errorf("reading permissions: %w", err)}
	}
	mode := info.Mode().Perm()

	if err := c.fs.Rename(path, backup); err != nil {
		return nil, &WriteError{Path: path, BackupPath: backup, Err: errors.Errorf("creating backup: %w", err)}
	}
	logger.Debug().Str("backup", backup).Msg("moved original to backup")

	if err := c.write(path, content, mode); err != nil {
		logger.Error().Err(err).Msg("failed to write output")
		werr := &WriteError{Path: path, BackupPath: backup, Err: err, Restore: Restored}
		// drop partial output before restoring
		if rmErr := c.fs.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Debug().Err(rmErr).Msg("failed to remove partial output")
		}
		if rerr := c.fs.Rename(backup, path); rerr != nil {
			logger.Error().Err(rerr).Str("backup", backup).Msg("failed to restore original from backup")
			werr.Restore = RestoreFailed
			werr.RestoreErr = rerr
		}
		return nil, werr
	}

	res := &Result{Path: path, BackupPath: backup, Mode: mode, Bytes: len(content), BackupRemoved: true}
	if err := c.fs.Remove(backup); err != nil {
		logger.Warn().Err(err).Str("backup", backup).Msg("failed to remove backup")
		res.BackupRemoved = false
	}
	return res, nil
}

func (c *Committer) write(path string, content []byte, mode fs.FileMode) error {
	f, err := c.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return errors.Errorf("creating file: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return errors.Errorf("writing content: %w", err)
	}
	if err := f.Close(); err != nil {
		return errors.Errorf("closing file: %w", err)
	}
	// the umask may have narrowed the create mode
	if err := c.fs.Chmod(path, mode); err != nil {
		return errors.Errorf("copying permissions: %w", err)
	}
	return nil
}
