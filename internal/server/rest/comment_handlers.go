package rest

import (
	"fmt"

	"github.com/dmitrijs2005/qaboard/internal/common"
	"github.com/dmitrijs2005/qaboard/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

func (s *HTTPServer) listComments(c *fiber.Ctx) error {
	qid, err := questionID(c, "questionId")
	if err != nil {
		return err
	}

	items, err := s.comments.ListByQuestion(c.UserContext(), qid, c.Query("search"))
	if err != nil {
		return err
	}
	return ok(c, items, fmt.Sprintf("Show all comments of the question with the id of %d", qid))
}

func (s *HTTPServer) getComment(c *fiber.Ctx) error {
	id, err := commentID(c)
	if err != nil {
		return err
	}

	item, err := s.comments.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, item, fmt.Sprintf("Show single comment detail with the id of %d", id))
}

func (s *HTTPServer) createComment(c *fiber.Ctx) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}
	qid, err := questionID(c, "questionId")
	if err != nil {
		return err
	}

	var in services.CommentInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	item, err := s.comments.Create(c.UserContext(), ident, qid, in)
	if err != nil {
		return err
	}
	return ok(c, item, "New comment successfully created!")
}

func (s *HTTPServer) updateComment(c *fiber.Ctx) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}
	id, err := commentID(c)
	if err != nil {
		return err
	}

	var in services.CommentInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	item, err := s.comments.Update(c.UserContext(), id, ident, in)
	if err != nil {
		return err
	}
	return ok(c, item, fmt.Sprintf("Comment with the id of %d successfully updated!", id))
}

func (s *HTTPServer) deleteComment(c *fiber.Ctx) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}
	id, err := commentID(c)
	if err != nil {
		return err
	}

	if err := s.comments.Delete(c.UserContext(), id, ident); err != nil {
		return err
	}
	return ok(c, fiber.Map{}, fmt.Sprintf("Comment with the id of %d successfully deleted!", id))
}

func commentID(c *fiber.Ctx) (int64, error) {
	id, valid := parseID(c, "id")
	if !valid {
		return 0, common.NewError(common.ErrorNotFound, "Comment not found with id of %s", c.Params("id"))
	}
	return id, nil
}
