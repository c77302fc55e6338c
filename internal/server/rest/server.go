// Package rest exposes the services over HTTP with fiber. All routes live
// under /api/v1 and answer with the {success, data, msg, token} envelope.
package rest

import (
	"context"
	"time"

	"github.com/dmitrijs2005/qaboard/internal/logging"
	"github.com/dmitrijs2005/qaboard/internal/server/config"
	"github.com/dmitrijs2005/qaboard/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

const shutdownTimeout = 10 * time.Second

type HTTPServer struct {
	address   string
	app       *fiber.App
	config    *config.Config
	users     *services.UserService
	questions *services.QuestionService
	comments  *services.CommentService
	logger    logging.Logger
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, us *services.UserService, qs *services.QuestionService, cs *services.CommentService) *HTTPServer {
	s := &HTTPServer{
		address:   cfg.EndpointAddrHTTP,
		config:    cfg,
		users:     us,
		questions: qs,
		comments:  cs,
		logger:    l.With("module", "http_server"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "qaboard",
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit(cfg.MaxUploadSize),
		ErrorHandler:          s.errorHandler,
	})
	s.registerRoutes()

	return s
}

// App returns the underlying fiber application.
func (s *HTTPServer) App() *fiber.App {
	return s.app
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.app.Listen(s.address); err != nil {
		return err
	}

	<-done
	return nil
}

// bodyLimit leaves room above the upload limit so an oversized picture
// reaches the handler and gets a proper validation error.
func bodyLimit(maxUpload int64) int {
	const base = 4 * 1024 * 1024
	limit := int(2*maxUpload) + 1024*1024
	if limit < base {
		return base
	}
	return limit
}
