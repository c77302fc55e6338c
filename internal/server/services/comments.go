package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/qaboard/internal/common"
	"github.com/dmitrijs2005/qaboard/internal/server/auth"
	"github.com/dmitrijs2005/qaboard/internal/server/models"
	"github.com/dmitrijs2005/qaboard/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

type CommentInput struct {
	Body string `json:"body" validate:"required,max=2000"`
}

type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validate    *validator.Validate
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager) *CommentService {
	return &CommentService{db: db, repomanager: m, validate: newValidator()}
}

// ListByQuestion returns the comments of an existing question.
func (s *CommentService) ListByQuestion(ctx context.Context, questionID int64, search string) ([]*models.Comment, error) {
	if err := s.requireQuestion(ctx, questionID); err != nil {
		return nil, err
	}

	items, err := s.repomanager.Comments(s.db).ListByQuestion(ctx, questionID, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	return items, nil
}

func (s *CommentService) Get(ctx context.Context, id int64) (*models.Comment, error) {
	c, err := s.repomanager.Comments(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, commentNotFound(id)
		}
		return nil, fmt.Errorf("error searching comment: %w", err)
	}
	return c, nil
}

func (s *CommentService) Create(ctx context.Context, id auth.Identity, questionID int64, in CommentInput) (*models.Comment, error) {
	in.Body = strings.TrimSpace(in.Body)
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	if err := s.requireQuestion(ctx, questionID); err != nil {
		return nil, err
	}

	created, err := s.repomanager.Comments(s.db).Create(ctx, &models.Comment{
		QuestionID: questionID,
		Body:       in.Body,
		PostedBy:   models.Author{UserID: id.UserID},
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, questionNotFound(questionID)
		}
		return nil, fmt.Errorf("error creating comment: %w", err)
	}

	return s.Get(ctx, created.ID)
}

func (s *CommentService) Update(ctx context.Context, commentID int64, id auth.Identity, in CommentInput) (*models.Comment, error) {
	in.Body = strings.TrimSpace(in.Body)
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	c, err := s.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !auth.CanModify(id, c.PostedBy.UserID) {
		return nil, common.NewError(common.ErrorForbidden, "Could not update a comment!")
	}

	c.Body = in.Body
	if err := s.repomanager.Comments(s.db).Update(ctx, c); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, commentNotFound(commentID)
		}
		return nil, fmt.Errorf("error updating comment: %w", err)
	}

	return s.Get(ctx, commentID)
}

func (s *CommentService) Delete(ctx context.Context, commentID int64, id auth.Identity) error {
	c, err := s.Get(ctx, commentID)
	if err != nil {
		return err
	}
	if !auth.CanModify(id, c.PostedBy.UserID) {
		return common.NewError(common.ErrorForbidden, "Could not delete a comment!")
	}

	if err := s.repomanager.Comments(s.db).Delete(ctx, commentID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return commentNotFound(commentID)
		}
		return fmt.Errorf("error deleting comment: %w", err)
	}
	return nil
}

func (s *CommentService) requireQuestion(ctx context.Context, questionID int64) error {
	_, err := s.repomanager.Questions(s.db).GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return questionNotFound(questionID)
		}
		return fmt.Errorf("error searching question: %w", err)
	}
	return nil
}

func commentNotFound(id int64) error {
	return common.NewError(common.ErrorNotFound, "Comment not found with id of %d", id)
}
