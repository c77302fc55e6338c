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

type QuestionInput struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"max=10000"`
}

// QuestionPatch holds the fields of an update; nil fields are left unchanged.
type QuestionPatch struct {
	Title *string `json:"title" validate:"omitempty,max=200"`
	Body  *string `json:"body" validate:"omitempty,max=10000"`
}

type QuestionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validate    *validator.Validate
}

func NewQuestionService(db *sql.DB, m repomanager.RepositoryManager) *QuestionService {
	return &QuestionService{db: db, repomanager: m, validate: newValidator()}
}

func (s *QuestionService) List(ctx context.Context, search string) ([]*models.Question, error) {
	items, err := s.repomanager.Questions(s.db).List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("error listing questions: %w", err)
	}
	return items, nil
}

func (s *QuestionService) Get(ctx context.Context, id int64) (*models.Question, error) {
	q, err := s.repomanager.Questions(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, questionNotFound(id)
		}
		return nil, fmt.Errorf("error searching question: %w", err)
	}
	return q, nil
}

// Create stores a question authored by the requester.
func (s *QuestionService) Create(ctx context.Context, id auth.Identity, in QuestionInput) (*models.Question, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	created, err := s.repomanager.Questions(s.db).Create(ctx, &models.Question{
		Title:    in.Title,
		Body:     in.Body,
		PostedBy: models.Author{UserID: id.UserID},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating question: %w", err)
	}

	return s.Get(ctx, created.ID)
}

// Update applies the non-nil fields of p. Only the author or an admin may
// change a question.
func (s *QuestionService) Update(ctx context.Context, questionID int64, id auth.Identity, p QuestionPatch) (*models.Question, error) {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return nil, common.NewError(common.ErrorValidation, "Please add a title")
		}
		p.Title = &t
	}
	if err := validateStruct(s.validate, p); err != nil {
		return nil, err
	}

	q, err := s.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if !auth.CanModify(id, q.PostedBy.UserID) {
		return nil, common.NewError(common.ErrorForbidden, "Could not update a question!")
	}

	if p.Title != nil {
		q.Title = *p.Title
	}
	if p.Body != nil {
		q.Body = *p.Body
	}

	if err := s.repomanager.Questions(s.db).Update(ctx, q); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, questionNotFound(questionID)
		}
		return nil, fmt.Errorf("error updating question: %w", err)
	}

	return s.Get(ctx, questionID)
}

// Delete removes a question together with its comments.
func (s *QuestionService) Delete(ctx context.Context, questionID int64, id auth.Identity) error {
	q, err := s.Get(ctx, questionID)
	if err != nil {
		return err
	}
	if !auth.CanModify(id, q.PostedBy.UserID) {
		return common.NewError(common.ErrorForbidden, "Could not delete a question!")
	}

	if err := s.repomanager.Questions(s.db).Delete(ctx, questionID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return questionNotFound(questionID)
		}
		return fmt.Errorf("error deleting question: %w", err)
	}
	return nil
}

func questionNotFound(id int64) error {
	return common.NewError(common.ErrorNotFound, "Question not found with id of %d", id)
}
