package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func (s *HTTPServer) registerRoutes() {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace:  true,
		StackTraceHandler: s.logPanic,
	}))
	s.app.Use(requestIDMiddleware, s.requestLogger, s.corsMiddleware())

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return ok(c, fiber.Map{"status": "ok"}, "")
	})

	v1 := s.app.Group("/api/v1")

	authGroup := v1.Group("/auth")
	limit := s.rateLimitAuth()
	authGroup.Post("/register", limit, s.register)
	authGroup.Post("/login", limit, s.login)
	authGroup.Get("/me", s.protect, s.me)
	authGroup.Put("/:userId/profilepic", s.protect, s.uploadProfilePicture)
	authGroup.Get("/forgotpassword", limit, s.forgotPassword)
	authGroup.Post("/forgotpassword", limit, s.forgotPassword)
	authGroup.Put("/resetpassword/:resettoken", limit, s.resetPassword)
	authGroup.Put("/updatepassword", s.protect, s.updatePassword)
	authGroup.Get("/logout", s.logout)

	v1.Get("/questions", s.listQuestions)
	v1.Post("/questions", s.protect, s.createQuestion)
	v1.Get("/questions/:id", s.getQuestion)
	v1.Put("/questions/:id", s.protect, s.updateQuestion)
	v1.Delete("/questions/:id", s.protect, s.deleteQuestion)

	v1.Get("/questions/:questionId/comments", s.listComments)
	v1.Post("/questions/:questionId/comments", s.protect, s.createComment)
	v1.Get("/comments/:id", s.getComment)
	v1.Put("/comments/:id", s.protect, s.updateComment)
	v1.Delete("/comments/:id", s.protect, s.deleteComment)

	s.app.Use(func(c *fiber.Ctx) error {
		return fail(c, fiber.StatusNotFound, "Route not found")
	})
}
