package internal

import (
	"context"
	"io"
	"time"

	"github.com/davidmdm/ansi"
)

type debugKey struct{}

// WithDebugFlag stores a pointer so the flag can be registered before parsing
// and read after.
func WithDebugFlag(ctx context.Context, debug *bool) context.Context {
	return context.WithValue(ctx, debugKey{}, debug)
}

// Debug returns a terminal writing to the context's stderr when debugging is
// on, and a discarding one otherwise.
func Debug(ctx context.Context) ansi.Terminal {
	debug, _ := ctx.Value(debugKey{}).(*bool)
	if debug == nil || !*debug {
		return ansi.Terminal{Writer: io.Discard}
	}
	return ansi.Terminal{Writer: Stderr(ctx)}
}

// DebugTimer reports the elapsed time of the enclosing operation.
func DebugTimer(ctx context.Context, op string) func() {
	start := time.Now()
	return func() {
		Debug(ctx).Printf("%s took %s\n", op, time.Since(start).Round(time.Millisecond))
	}
}
