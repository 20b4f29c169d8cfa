package requestid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	ctx, id := New(context.Background())
	assert.NotEmpty(t, id)
	assert.Equal(t, id, FromContext(ctx))
}

func TestFromContext_Missing(t *testing.T) {
	id := FromContext(context.Background())
	assert.NotEmpty(t, id) // generates a fresh UUID
}

func TestWithDispatchID(t *testing.T) {
	ctx := WithDispatchID(context.Background(), "dispatch-123")
	assert.Equal(t, "dispatch-123", FromContext(ctx))
}
