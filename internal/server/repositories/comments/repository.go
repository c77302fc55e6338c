package comments

import (
	"context"

	"github.com/dmitrijs2005/qaboard/internal/server/models"
)

type Repository interface {
	// ListByQuestion returns the comments of a question, oldest first,
	// optionally filtered by a case-insensitive body search.
	ListByQuestion(ctx context.Context, questionID int64, search string) ([]*models.Comment, error)
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	Update(ctx context.Context, c *models.Comment) error
	Delete(ctx context.Context, id int64) error
}
