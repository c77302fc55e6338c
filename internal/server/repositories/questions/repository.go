package questions

import (
	"context"

	"github.com/dmitrijs2005/qaboard/internal/server/models"
)

type Repository interface {
	// List returns all questions, newest first. A non-empty search keeps
	// only questions whose title or body contains it, case-insensitively.
	List(ctx context.Context, search string) ([]*models.Question, error)
	GetByID(ctx context.Context, id int64) (*models.Question, error)
	Create(ctx context.Context, q *models.Question) (*models.Question, error)
	Update(ctx context.Context, q *models.Question) error
	Delete(ctx context.Context, id int64) error
}
