// Package requestid tags each command dispatch with an ID for log correlation.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// WithDispatchID returns a context carrying the given dispatch ID.
func WithDispatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the dispatch ID from ctx, or generates a new one.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}

// New generates a dispatch ID and returns the enriched context and the ID.
func New(ctx context.Context) (context.Context, string) {
	id := uuid.New().String()
	return WithDispatchID(ctx, id), id
}
