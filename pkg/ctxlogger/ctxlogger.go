package ctxlogger

import (
	"context"
	"log/slog"
)

type ctxKey int

const slogAttrsKey ctxKey = 0

// ContextHandler wraps a slog.Handler and emits the attrs accumulated
// in the context via AppendCtx with every record.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogAttrsKey).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}

	return h.Handler.Handle(ctx, r)
}

func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	if attrs, ok := parent.Value(slogAttrsKey).([]slog.Attr); ok {
		copied := make([]slog.Attr, len(attrs), len(attrs)+1)
		copy(copied, attrs)
		return context.WithValue(parent, slogAttrsKey, append(copied, attr))
	}

	return context.WithValue(parent, slogAttrsKey, []slog.Attr{attr})
}
