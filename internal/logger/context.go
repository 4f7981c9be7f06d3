package logger

import (
	"context"

	"go.uber.org/zap"
)

// ctxKey keeps the context value private to this package.
type ctxKey struct{}

// ContextWithLogger returns a context carrying the given logger, typically a
// request-scoped logger enriched with the request ID.
func ContextWithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger carried by the context. Handlers can call
// it unconditionally: a context without a logger yields a no-op one.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}
