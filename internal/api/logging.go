package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

var correlationID = contextKey("correlation_id")

// ContextHandler adds the request correlation ID to records logged with a
// request context.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(correlationID).(uuid.UUID); ok {
		r.AddAttrs(slog.String(string(correlationID), id.String()))
	}
	return h.Handler.Handle(ctx, r)
}

func (h ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return ContextHandler{h.Handler.WithAttrs(attrs)}
}

func (h ContextHandler) WithGroup(name string) slog.Handler {
	return ContextHandler{h.Handler.WithGroup(name)}
}

// CorrelationID returns the ID attached to ctx by the API middleware.
func CorrelationID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(correlationID).(uuid.UUID)
	return id, ok
}

func injectCorrelationID(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New()
		w.Header().Set("X-Correlation-ID", id.String())
		ctx := context.WithValue(r.Context(), correlationID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
