package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ListSortedByName(t *testing.T) {
	r := NewRegistry()
	r.Register(Definition{Name: "zebra", Summary: "last"})
	r.Register(Definition{Name: "alpha", Summary: "first"})

	defs := r.List()
	require.Len(t, defs, 2)
	assert.Equal(t, "alpha", defs[0].Name)
	assert.Equal(t, "zebra", defs[1].Name)
}

func TestRegistry_GetUnregistered(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := NewRegistry()
	r.Register(Definition{Name: "ping", Summary: "old"})
	r.Register(Definition{Name: "ping", Summary: "new"})

	def, ok := r.Get("ping")
	require.True(t, ok)
	assert.Equal(t, "new", def.Summary)
	assert.Len(t, r.List(), 1)
}
