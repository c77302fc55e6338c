package rest

import (
	"fmt"

	"github.com/dmitrijs2005/qaboard/internal/common"
	"github.com/dmitrijs2005/qaboard/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

func (s *HTTPServer) listQuestions(c *fiber.Ctx) error {
	items, err := s.questions.List(c.UserContext(), c.Query("search"))
	if err != nil {
		return err
	}
	return ok(c, items, "Show all questions")
}

func (s *HTTPServer) getQuestion(c *fiber.Ctx) error {
	id, err := questionID(c, "id")
	if err != nil {
		return err
	}

	q, err := s.questions.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, q, fmt.Sprintf("Show question %d", id))
}

func (s *HTTPServer) createQuestion(c *fiber.Ctx) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}

	var in services.QuestionInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	q, err := s.questions.Create(c.UserContext(), ident, in)
	if err != nil {
		return err
	}
	return ok(c, q, "Question successfully created!")
}

func (s *HTTPServer) updateQuestion(c *fiber.Ctx) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}
	id, err := questionID(c, "id")
	if err != nil {
		return err
	}

	var in services.QuestionPatch
	if err := parseBody(c, &in); err != nil {
		return err
	}

	q, err := s.questions.Update(c.UserContext(), id, ident, in)
	if err != nil {
		return err
	}
	return ok(c, q, "Question successfully updated!")
}

func (s *HTTPServer) deleteQuestion(c *fiber.Ctx) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}
	id, err := questionID(c, "id")
	if err != nil {
		return err
	}

	if err := s.questions.Delete(c.UserContext(), id, ident); err != nil {
		return err
	}
	return ok(c, fiber.Map{}, "Question successfully deleted")
}

// questionID reads a question id route parameter; malformed ids are
// reported the same way as unknown ones.
func questionID(c *fiber.Ctx, param string) (int64, error) {
	id, valid := parseID(c, param)
	if !valid {
		return 0, common.NewError(common.ErrorNotFound, "Question not found with id of %s", c.Params(param))
	}
	return id, nil
}
