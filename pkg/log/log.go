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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// 🎚️ Level maps a -V count to a log level: 0 warn, 1 info, 2 debug, 3+ trace
func Level(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// 🏭 Setup builds the process logger writing human readable lines to w.
// Colors are only used when w is a terminal; debug and trace add callers.
func Setup(w io.Writer, verbosity int) zerolog.Logger {
	writer := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
		NoColor:    !IsTerminal(w),
	}

	ctx := zerolog.New(writer).Level(Level(verbosity)).With().Timestamp()
	if verbosity >= 2 {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// 🎯 Console prints user facing messages and mirrors them on a zerolog logger
type Console struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// NewConsole creates a console writing to w
func NewConsole(w io.Writer, zlog zerolog.Logger) *Console {
	if w == nil {
		w = io.Discard
	}
	return &Console{zlog: zlog, console: w}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext returns the console stored in ctx, or one that only writes
// to the context logger
func FromContext(ctx context.Context) *Console {
	if c, ok := ctx.Value(contextKey{}).(*Console); ok {
		return c
	}
	return NewConsole(io.Discard, *zerolog.Ctx(ctx))
}

// 🎯 NewContext adds the console to ctx
func NewContext(ctx context.Context, c *Console) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// 📝 Header prints a run header
func (c *Console) Header(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("massedit")
	fmt.Fprintf(c.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	c.zlog.Info().Msg(msg)
}

// 📝 Success prints a success message
func (c *Console) Success(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	c.zlog.Info().Msg(msg)
}

// 📝 Warning prints a warning message
func (c *Console) Warning(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	c.zlog.Warn().Msg(msg)
}

// 📝 Error prints an error message
func (c *Console) Error(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	c.zlog.Error().Msg(msg)
}

// 📝 Info prints an informational message
func (c *Console) Info(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	c.zlog.Info().Msg(msg)
}

// Infof prints a formatted informational message
func (c *Console) Infof(format string, args ...interface{}) {
	c.Info(fmt.Sprintf(format, args...))
}

// Warningf prints a formatted warning message
func (c *Console) Warningf(format string, args ...interface{}) {
	c.Warning(fmt.Sprintf(format, args...))
}

// Successf prints a formatted success message
func (c *Console) Successf(format string, args ...interface{}) {
	c.Success(fmt.Sprintf(format, args...))
}
