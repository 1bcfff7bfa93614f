// Package logging builds the zap-backed logr.Logger used by the tcstack CLI.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap/zapcore"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// Options configure the logger.
type Options struct {
	// Debug enables V(1) messages.
	Debug bool
	// Console selects the human-readable encoder instead of JSON.
	Console bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultOptions picks the console encoder when stderr is a terminal.
func DefaultOptions(debug bool) Options {
	return Options{
		Debug:   debug,
		Console: IsTerminal(os.Stderr),
		Output:  os.Stderr,
	}
}

// New creates a logger from opts.
func New(opts Options) logr.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	zopts := zap.Options{
		Development:     opts.Console,
		DestWriter:      out,
		Level:           level,
		StacktraceLevel: zapcore.PanicLevel,
	}
	return zap.New(zap.UseFlagOptions(&zopts)).WithName("tcstack")
}

// Setup installs a logger as the controller-runtime global and returns a
// context carrying it.
func Setup(ctx context.Context, opts Options) (context.Context, logr.Logger) {
	log := New(opts)
	logf.SetLogger(log)
	return logf.IntoContext(ctx, log), log
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
