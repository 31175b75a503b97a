// Package server exposes the screening workflow over HTTP for the browser
// frontend. One route per user action; all per-user state lives in the
// session store, so handlers stay thin.
package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"scholarscout/internal/ai"
	"scholarscout/internal/session"
	"scholarscout/internal/workflow"
)

const (
	appName = "scholarscout"

	// defaultMaxUpload bounds resume files. Real resumes are a few hundred
	// kilobytes; anything near this limit is not a resume.
	defaultMaxUpload = 15 << 20
)

// Options carry the serving defaults resolved from configuration. The model
// settings act as per-request fallbacks; requests may override them.
type Options struct {
	Address   string
	MaxUpload int64
	UseLLM    bool
	Model     ai.ModelConfig
}

// Server wires the workflow and session store onto a fiber app.
type Server struct {
	app      *fiber.App
	flow     *workflow.Workflow
	sessions *session.Manager
	opts     Options
	logger   *zap.Logger
}

// New builds the HTTP server and registers all routes.
func New(flow *workflow.Workflow, sessions *session.Manager, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	if opts.MaxUpload <= 0 {
		opts.MaxUpload = defaultMaxUpload
	}

	app := fiber.New(fiber.Config{
		AppName: appName,
		// Leave headroom for multipart framing around the file itself.
		BodyLimit:             int(opts.MaxUpload) + 1<<20,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	s := &Server{
		app:      app,
		flow:     flow,
		sessions: sessions,
		opts:     opts,
		logger:   log,
	}

	app.Use(recover.New())
	app.Use(s.logRequests)

	app.Get("/healthz", s.health)

	api := app.Group("/api/v1")
	api.Post("/sessions", s.createSession)
	api.Post("/sessions/:id/resumes", s.uploadResume)
	api.Post("/sessions/:id/parse", s.parseCandidate)
	api.Post("/sessions/:id/match", s.matchCandidate)
	api.Post("/sessions/:id/outreach", s.draftOutreach)
	api.Get("/sessions/:id/candidates", s.listCandidates)

	return s
}

// Listen serves HTTP until Shutdown is called or the listener fails.
func (s *Server) Listen() error {
	s.logger.Info("http server listening", zap.String("address", s.opts.Address))

	return s.app.Listen(s.opts.Address)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// logRequests writes one line per request through the shared zap sink
// instead of fiber's own text logger.
func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	s.logger.Info("http request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)

	return err
}

// errorHandler renders errors that escape a handler in the same JSON shape
// the handlers use themselves.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	return errorJSON(c, code, err.Error())
}
