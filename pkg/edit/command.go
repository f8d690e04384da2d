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

package edit

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/google/shlex"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/massedit/pkg/editerr"
)

// 🖥️ command is an external preprocessor, run with the target path appended
type command struct {
	spec string
	argv []string
}

func parseCommand(spec string) (*command, error) {
	argv, err := shlex.Split(spec)
	if err != nil {
		return nil, errors.Errorf("parsing executable %q: %w", spec, err)
	}
	if len(argv) == 0 {
		return nil, errors.Errorf("executable %q is empty", spec)
	}
	return &command{spec: spec, argv: argv}, nil
}

// run executes the command against path and returns its standard output
func (c *command) run(ctx context.Context, path string) ([]byte, error) {
	args := make([]string, 0, len(c.argv))
	args = append(args, c.argv[1:]...)
	args = append(args, path)
	commandLine := c.argv[0] + " " + strings.Join(args, " ")

	logger := zerolog.Ctx(ctx).With().Str("command", commandLine).Logger()
	logger.Info().Msg("running external command")

	cmd := exec.CommandContext(ctx, c.argv[0], args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, editerr.ExternalCommand(commandLine, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, editerr.ExternalCommand(commandLine, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, editerr.ExternalCommand(commandLine, err)
	}

	// both pipes must be drained before Wait
	var out, errOut bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(&out, stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&errOut, stderr)
		return err
	})
	copyErr := g.Wait()

	if err := cmd.Wait(); err != nil {
		if msg := strings.TrimSpace(errOut.String()); msg != "" {
			err = errors.Errorf("%w: %s", err, msg)
		}
		return nil, editerr.ExternalCommand(commandLine, err)
	}
	if copyErr != nil {
		return nil, editerr.ExternalCommand(commandLine, errors.Errorf("reading output: %w", copyErr))
	}

	if errOut.Len() > 0 {
		logger.Debug().Str("stderr", errOut.String()).Msg("external command wrote to stderr")
	}
	return out.Bytes(), nil
}
