package rest

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dmitrijs2005/qaboard/internal/common"
	"github.com/dmitrijs2005/qaboard/internal/server/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// requestIDMiddleware reuses a client supplied X-Request-ID or generates one.
func requestIDMiddleware(c *fiber.Ctx) error {
	id := c.Get(common.RequestIDHeaderName)
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals(requestIDKey, id)
	c.Set(common.RequestIDHeaderName, id)
	return c.Next()
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

func (s *HTTPServer) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		// render the envelope now so the logged status is the final one
		if herr := s.errorHandler(c, err); herr != nil {
			return herr
		}
	}

	s.logger.Info(c.UserContext(), "request",
		"request_id", requestID(c),
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"latency", time.Since(start).String())
	return nil
}

// logPanic records a recovered panic. The recover middleware then hands the
// request to errorHandler, which answers with a generic 500.
func (s *HTTPServer) logPanic(c *fiber.Ctx, e any) {
	s.logger.Error(c.UserContext(), "panic recovered",
		"request_id", requestID(c),
		"method", c.Method(),
		"path", c.Path(),
		"panic", fmt.Sprint(e),
		"stack", string(debug.Stack()))
}

func (s *HTTPServer) corsMiddleware() fiber.Handler {
	origins := strings.TrimSpace(s.config.CORSOrigins)
	if origins == "" {
		origins = "*"
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + common.RequestIDHeaderName,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders:    common.RequestIDHeaderName,
		AllowCredentials: origins != "*",
	})
}

// rateLimitAuth limits the credential endpoints per client IP. A limit of
// zero disables it.
func (s *HTTPServer) rateLimitAuth() fiber.Handler {
	if s.config.AuthRateLimit <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return limiter.New(limiter.Config{
		Max:        s.config.AuthRateLimit,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fail(c, fiber.StatusTooManyRequests, "Too many requests, please try again later")
		},
	})
}

// protect resolves the session token from the Authorization header or the
// token cookie and stores the Identity in the request context.
func (s *HTTPServer) protect(c *fiber.Ctx) error {
	var token string
	if h := c.Get(common.AuthorizationHeaderName); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	} else {
		token = c.Cookies(common.TokenCookieName)
	}

	id, err := s.users.ResolveIdentity(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.SetUserContext(auth.WithIdentity(c.UserContext(), id))
	return c.Next()
}

func identity(c *fiber.Ctx) (auth.Identity, error) {
	id, ok := auth.IdentityFromContext(c.UserContext())
	if !ok {
		return auth.Identity{}, common.NewError(common.ErrorUnauthorized, "Not authorized to access this route")
	}
	return id, nil
}
