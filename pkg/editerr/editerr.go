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

// Package editerr defines the failure taxonomy shared by every stage of the
// editing pipeline. Callers classify failures with errors.Is against the
// sentinel values or with KindOf.
package editerr

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ Kind identifies a failure category
type Kind int

const (
	KindUnknown         Kind = iota
	KindCompile                // malformed expression, raised at registration
	KindEvaluation             // expression failed on a line, aborts the file
	KindTransform              // content transform failed, aborts the batch
	KindDecode                 // content not decodable, file is skipped
	KindExternalCommand        // external preprocessor failed, aborts the file
	KindBackupConflict         // stale backup present, nothing touched
	KindWrite                  // write or permission step of a commit failed
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindCompile:
		return "compile"
	case KindEvaluation:
		return "evaluation"
	case KindTransform:
		return "transform"
	case KindDecode:
		return "decode"
	case KindExternalCommand:
		return "external_command"
	case KindBackupConflict:
		return "backup_conflict"
	case KindWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Only the Kind of a sentinel is compared.
var (
	ErrCompile         = &Error{Kind: KindCompile}
	ErrEvaluation      = &Error{Kind: KindEvaluation}
	ErrTransform       = &Error{Kind: KindTransform}
	ErrDecode          = &Error{Kind: KindDecode}
	ErrExternalCommand = &Error{Kind: KindExternalCommand}
	ErrBackupConflict  = &Error{Kind: KindBackupConflict}
	ErrWrite           = &Error{Kind: KindWrite}
)

var sentinels = []*Error{
	ErrCompile,
	ErrEvaluation,
	ErrTransform,
	ErrDecode,
	ErrExternalCommand,
	ErrBackupConflict,
	ErrWrite,
}

// ❌ Error is a classified pipeline failure
type Error struct {
	Kind    Kind   // Failure category
	Path    string // File being processed, if any
	Source  string // Expression, transform name or command line involved
	Message string // Human readable description
	Err     error  // Underlying cause
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String() + " failure"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// 🔍 KindOf returns the Kind of the first classified failure in err's chain
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Kind
		}
	}
	return KindUnknown
}

// Compile reports an expression that cannot be compiled
func Compile(source string, err error) *Error {
	return &Error{
		Kind:    KindCompile,
		Source:  source,
		Message: fmt.Sprintf("cannot compile %q", source),
		Err:     err,
	}
}

// Evaluation reports an expression that failed on a line
func Evaluation(line, source string, err error) *Error {
	return &Error{
		Kind:    KindEvaluation,
		Source:  source,
		Message: fmt.Sprintf("cannot process line %q with %s", line, source),
		Err:     err,
	}
}

// Transform reports a content transform failure
func Transform(name, path string, err error) *Error {
	return &Error{
		Kind:    KindTransform,
		Path:    path,
		Source:  name,
		Message: fmt.Sprintf("transform %s failed on %s", name, path),
		Err:     err,
	}
}

// Decode reports content that cannot be decoded with the configured encoding
func Decode(path, encoding string, err error) *Error {
	return &Error{
		Kind:    KindDecode,
		Path:    path,
		Source:  encoding,
		Message: fmt.Sprintf("cannot decode %s as %s", path, encoding),
		Err:     err,
	}
}

// ExternalCommand reports a failed or unstartable external command
func ExternalCommand(commandLine string, err error) *Error {
	return &Error{
		Kind:    KindExternalCommand,
		Source:  commandLine,
		Message: fmt.Sprintf("failed to execute %s", commandLine),
		Err:     err,
	}
}

// BackupConflict reports a backup file that already exists
func BackupConflict(path, backupPath string) *Error {
	return &Error{
		Kind:    KindBackupConflict,
		Path:    path,
		Source:  backupPath,
		Message: fmt.Sprintf("%s already exists", backupPath),
	}
}

// Write reports a failure to write the new content of path
func Write(path string, err error) *Error {
	return &Error{
		Kind:    KindWrite,
		Path:    path,
		Message: fmt.Sprintf("failed to write output to %s", path),
		Err:     err,
	}
}
