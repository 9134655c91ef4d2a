package dcpipc

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

// Logger returns the package's logger. It is a no-op logger unless
// [SetLogger] was called.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// SetLogger sets the logger used for call traces and tracing
// diagnostics. A nil logger restores the no-op default.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}

type loggerKey struct{}

// WithLogger returns a context that makes [Method.Call] trace to l
// instead of [Logger].
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func loggerFrom(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return Logger()
}
