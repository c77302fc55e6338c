package rest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/qaboard/internal/common"
	"github.com/gofiber/fiber/v2"
)

const msgServerError = "Server Error"

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Msg     string `json:"msg,omitempty"`
	Token   string `json:"token,omitempty"`
}

func ok(c *fiber.Ctx, data any, msg string) error {
	return c.Status(fiber.StatusOK).JSON(envelope{Success: true, Data: data, Msg: msg})
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(envelope{Success: false, Msg: msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorForbidden):
		return fiber.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// errorHandler renders every error returned by a handler as an envelope.
// Errors without a client-facing message are logged and reported as a
// generic server error.
func (s *HTTPServer) errorHandler(c *fiber.Ctx, err error) error {
	if errors.Is(err, fiber.ErrRequestEntityTooLarge) {
		return s.bodyTooLarge(c)
	}

	status := statusFor(err)

	var fe *fiber.Error
	msg := common.Message(err, "")
	if msg == "" && errors.As(err, &fe) {
		msg = fe.Message
	}

	if status >= fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request failed",
			"request_id", requestID(c),
			"method", c.Method(),
			"path", c.Path(),
			"error", err.Error())
	}
	if msg == "" {
		msg = msgServerError
	}

	return fail(c, status, msg)
}

// bodyTooLarge answers requests rejected by the server body limit. Picture
// uploads get the same message as an upload over MaxUploadSize.
func (s *HTTPServer) bodyTooLarge(c *fiber.Ctx) error {
	if strings.HasSuffix(c.Path(), "/profilepic") {
		return fail(c, fiber.StatusBadRequest, fmt.Sprintf("Please upload an image less than %d", s.config.MaxUploadSize))
	}
	return fail(c, fiber.StatusRequestEntityTooLarge, "Request body too large")
}

func parseID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseBody decodes a request body into out. An empty body leaves out
// untouched so the services report which fields are missing.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return common.NewError(common.ErrorValidation, "Invalid request body")
	}
	return nil
}
