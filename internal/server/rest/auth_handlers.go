package rest

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/qaboard/internal/common"
	"github.com/dmitrijs2005/qaboard/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// sendToken sets the session cookie and returns the token in the body.
func (s *HTTPServer) sendToken(c *fiber.Ctx, token string) error {
	c.Cookie(&fiber.Cookie{
		Name:     common.TokenCookieName,
		Value:    token,
		Expires:  time.Now().Add(s.config.CookieValidityDuration),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Status(fiber.StatusOK).JSON(envelope{Success: true, Token: token})
}

func (s *HTTPServer) register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	u, token, err := s.users.Register(c.UserContext(), in)
	if err != nil {
		return err
	}

	s.logger.Info(c.UserContext(), "Registered", "user_id", u.ID)
	return s.sendToken(c, token)
}

func (s *HTTPServer) login(c *fiber.Ctx) error {
	var in loginRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}

	token, err := s.users.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return err
	}
	return s.sendToken(c, token)
}

func (s *HTTPServer) me(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	u, err := s.users.CurrentUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, u, "")
}

func (s *HTTPServer) uploadProfilePicture(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	userID, valid := parseID(c, "userId")
	if !valid {
		return common.NewError(common.ErrorNotFound, "User not found!")
	}

	// a request without a "file" part is passed on as a nil upload
	var pic *services.PictureUpload
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return err
		}
		defer f.Close()

		pic = &services.PictureUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Content:     f,
		}
	}

	name, err := s.users.UploadProfilePicture(c.UserContext(), id, userID, pic)
	if err != nil {
		return err
	}
	return ok(c, name, "")
}

func (s *HTTPServer) forgotPassword(c *fiber.Ctx) error {
	var in forgotPasswordRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if in.Email == "" {
		in.Email = c.Query("email")
	}

	resetURL := strings.TrimRight(s.config.PublicBaseURL, "/") + "/api/v1/auth/resetpassword/"
	if err := s.users.ForgotPassword(c.UserContext(), in.Email, resetURL); err != nil {
		return err
	}
	return ok(c, "Email Sent!", "")
}

func (s *HTTPServer) resetPassword(c *fiber.Ctx) error {
	var in resetPasswordRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}

	token, err := s.users.ResetPassword(c.UserContext(), c.Params("resettoken"), in.Password)
	if err != nil {
		return err
	}
	return s.sendToken(c, token)
}

func (s *HTTPServer) updatePassword(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	var in updatePasswordRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}

	token, err := s.users.UpdatePassword(c.UserContext(), id, in.CurrentPassword, in.NewPassword)
	if err != nil {
		return err
	}
	return s.sendToken(c, token)
}

// logout overwrites the session cookie with a short-lived placeholder.
func (s *HTTPServer) logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     common.TokenCookieName,
		Value:    "none",
		Expires:  time.Now().Add(10 * time.Second),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ok(c, fiber.Map{}, "")
}
