package api

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/carelink-ai/carelink/internal/assessment"
	"github.com/carelink-ai/carelink/internal/config"
	"github.com/carelink-ai/carelink/internal/conversation"
	"github.com/carelink-ai/carelink/internal/metrics"
	"github.com/carelink-ai/carelink/internal/records"
	"github.com/carelink-ai/carelink/internal/report"
)

// Server exposes the assessment pipeline and the two stores over HTTP
type Server struct {
	app       *fiber.App
	cfg       *config.Config
	assistant *assessment.Assistant
	records   *records.Store
	chat      *conversation.Store
	reports   *report.Service
	validate  *validator.Validate
	logger    *zap.Logger

	// Submission-order sequence for concurrent assessment requests: the
	// response carrying the highest seq wins display focus downstream.
	seq atomic.Uint64
}

// New creates the API server
func New(cfg *config.Config, assistant *assessment.Assistant, recordStore *records.Store, chatStore *conversation.Store, reportSvc *report.Service, zlogger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	})

	validate := validator.New()
	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	s := &Server{
		app:       app,
		cfg:       cfg,
		assistant: assistant,
		records:   recordStore,
		chat:      chatStore,
		reports:   reportSvc,
		validate:  validate,
		logger:    zlogger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(s.cfg.Server.AllowOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	s.app.Get("/api/health", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(metrics.Default().Handler()))

	api := s.app.Group("/api", s.identityMiddleware())

	api.Post("/context", s.handleSetContext)

	api.Post("/assess/concern", s.handleAssessConcern)
	api.Post("/assess/sketch", s.handleAssessSketch)
	api.Post("/assess/visual", s.handleAssessVisual)
	api.Post("/assess/vitals", s.handleAssessVitals)

	api.Get("/records", s.handleListRecords)
	api.Get("/records/latest", s.handleLatestRecord)

	api.Get("/chat", s.handleGetChat)
	api.Post("/chat", s.handleChat)
	api.Delete("/chat", s.handleClearChat)

	api.Get("/report", s.handleReport)

	s.app.Use("/ws", s.identityMiddleware(), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws/chat", websocket.New(s.handleChatSocket))
}

// Start begins serving and blocks
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Address, s.cfg.Server.Port)
	s.logger.Info("Starting API server", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests
func (s *Server) App() *fiber.App {
	return s.app
}
