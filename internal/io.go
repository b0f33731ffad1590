package internal

import (
	"context"
	"io"
	"os"
)

type (
	stdoutKey struct{}
	stderrKey struct{}
)

// WithStdout scopes the writer commands print user-facing output to. Tests use
// it to capture output without touching the process streams.
func WithStdout(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey{}, w)
}

func Stdout(ctx context.Context) io.Writer {
	w, ok := ctx.Value(stdoutKey{}).(io.Writer)
	if !ok {
		return os.Stdout
	}
	return w
}

func WithStderr(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stderrKey{}, w)
}

func Stderr(ctx context.Context) io.Writer {
	w, ok := ctx.Value(stderrKey{}).(io.Writer)
	if !ok {
		return os.Stderr
	}
	return w
}
