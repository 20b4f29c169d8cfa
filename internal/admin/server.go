// Package admin serves a read-only operations API over the bot's state.
package admin

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/grvsrs/matrixbot/internal/bot"
	"github.com/grvsrs/matrixbot/internal/format"
	"github.com/grvsrs/matrixbot/internal/health"
	"github.com/grvsrs/matrixbot/internal/requestid"
	"github.com/grvsrs/matrixbot/internal/stats"
	"github.com/grvsrs/matrixbot/internal/storage"
	"github.com/grvsrs/matrixbot/internal/suggest"
	"github.com/grvsrs/matrixbot/internal/version"
)

// ServerConfig holds configuration for the admin API server.
type ServerConfig struct {
	ListenAddr string
	APIKey     string
}

// Server is the admin API Fiber application.
type Server struct {
	app    *fiber.App
	config ServerConfig
	logger zerolog.Logger
}

// NewServer creates and configures the admin API server.
func NewServer(cfg ServerConfig, b *bot.Bot, store storage.Storage, checker *health.Checker, logger zerolog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	s := &Server{
		app:    app,
		config: cfg,
		logger: logger.With().Str("component", "admin").Logger(),
	}

	app.Use(recover.New())

	app.Use(func(c *fiber.Ctx) error {
		_, reqID := requestid.New(c.Context())
		c.Set("X-Request-ID", reqID)
		return c.Next()
	})

	// API-key auth for everything except the probes.
	app.Use(func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/healthz" || path == "/readyz" {
			return c.Next()
		}
		if cfg.APIKey == "" || c.Get("X-API-Key") != cfg.APIKey {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or missing API key",
			})
		}
		return c.Next()
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/readyz", func(c *fiber.Ctx) error {
		if checker != nil && !checker.IsReady(c.Context()) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not_ready"})
		}
		return c.JSON(fiber.Map{"status": "ready"})
	})

	app.Get("/api/v1/status", func(c *fiber.Ctx) error {
		now := time.Now()
		return c.JSON(fiber.Map{
			"version":    version.Version,
			"start_time": b.StartTime().UTC().Format(time.RFC3339),
			"uptime":     format.Duration(now.Sub(b.StartTime())),
		})
	})

	app.Get("/api/v1/commands", func(c *fiber.Ctx) error {
		defs := b.Registry().List()
		out := make([]fiber.Map, len(defs))
		for i, def := range defs {
			out[i] = fiber.Map{
				"name":    def.Name,
				"summary": def.Summary,
				"usage":   def.Usage,
			}
		}
		return c.JSON(fiber.Map{"commands": out})
	})

	app.Get("/api/v1/stats", func(c *fiber.Ctx) error {
		snap, err := stats.Get(store)
		if err != nil {
			s.logger.Error().Err(err).Msg("reading stats")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats unavailable"})
		}
		return c.JSON(snap)
	})

	app.Get("/api/v1/suggestions", func(c *fiber.Ctx) error {
		items, err := suggest.List(store)
		if err != nil {
			s.logger.Error().Err(err).Msg("reading suggestions")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "suggestions unavailable"})
		}
		if items == nil {
			items = []suggest.Suggestion{}
		}
		return c.JSON(fiber.Map{"suggestions": items})
	})

	return s
}

// Start serves the admin API. Blocks until Shutdown.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.config.ListenAddr).Msg("admin API listening")
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
