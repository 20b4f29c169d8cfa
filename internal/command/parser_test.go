package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_IgnoresNonCommands(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"plain chatter", "hello there"},
		{"prefix mid-string", "say !ping"},
		{"wrong prefix", "?ping"},
		{"empty body", ""},
		{"prefix only", "!"},
		{"prefix and whitespace", "!   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Parse(tt.body, "!")
			assert.False(t, ok)
		})
	}
}

func TestParse_LowercasesName(t *testing.T) {
	inv, ok := Parse("!PING", "!")
	require.True(t, ok)
	assert.Equal(t, "ping", inv.Name)
	assert.Empty(t, inv.Args)
	assert.Empty(t, inv.RawArgs)
}

func TestParse_PreservesRawArgSpacing(t *testing.T) {
	inv, ok := Parse("!echo   hello   world  ", "!")
	require.True(t, ok)
	assert.Equal(t, "echo", inv.Name)
	assert.Equal(t, []string{"hello", "world"}, inv.Args)
	assert.Equal(t, "hello   world", inv.RawArgs)
}

func TestParse_MultiCharPrefix(t *testing.T) {
	inv, ok := Parse("bot! roll 2d6", "bot!")
	require.True(t, ok)
	assert.Equal(t, "roll", inv.Name)
	assert.Equal(t, []string{"2d6"}, inv.Args)
}

func TestParse_KeepsArgCasing(t *testing.T) {
	inv, ok := Parse("!echo Hello World", "!")
	require.True(t, ok)
	assert.Equal(t, "Hello World", inv.RawArgs)
	assert.Equal(t, []string{"Hello", "World"}, inv.Args)
}
