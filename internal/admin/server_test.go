package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grvsrs/matrixbot/internal/bot"
	"github.com/grvsrs/matrixbot/internal/command"
	"github.com/grvsrs/matrixbot/internal/storage"
	"github.com/grvsrs/matrixbot/internal/suggest"
)

type noopClient struct{}

func (noopClient) SendText(context.Context, string, string) (string, error) { return "$ev", nil }
func (noopClient) RoomStateEvent(context.Context, string, string, string) (map[string]any, error) {
	return nil, fmt.Errorf("no state")
}
func (noopClient) RoomState(context.Context, string) ([]command.StateEvent, error) {
	return nil, nil
}

func newTestServer(t *testing.T) (*Server, storage.Storage) {
	t.Helper()
	store := storage.NewMemory()
	registry := command.NewRegistry()
	command.RegisterBuiltins(registry)
	logger := zerolog.New(os.Stderr)
	b := bot.New(bot.Config{UserID: "@bot:matrix.test", Prefix: "!"}, noopClient{}, store, registry, nil, logger)
	return NewServer(ServerConfig{ListenAddr: ":0", APIKey: "secret"}, b, store, nil, logger), store
}

func TestHealthz_NoAuthRequired(t *testing.T) {
	s, _ := newTestServer(t)
	resp, err := s.App().Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestAPI_RejectsMissingKey(t *testing.T) {
	s, _ := newTestServer(t)
	resp, err := s.App().Test(httptest.NewRequest("GET", "/api/v1/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestAPI_Stats(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	req.Header.Set("X-API-Key", "secret")
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var snap struct {
		TotalCommands int `json:"totalCommands"`
	}
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Equal(t, 0, snap.TotalCommands)
}

func TestAPI_Suggestions(t *testing.T) {
	s, store := newTestServer(t)
	_, err := suggest.Add(store, "Dark mode", "@alice:matrix.test", "!room:matrix.test", time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/suggestions", nil)
	req.Header.Set("X-API-Key", "secret")
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Dark mode")
	assert.Contains(t, string(body), "@alice:matrix.test")
}

func TestAPI_Commands(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest("GET", "/api/v1/commands", nil)
	req.Header.Set("X-API-Key", "secret")
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"name":"ping"`)
	assert.Contains(t, string(body), `"name":"help"`)
}
