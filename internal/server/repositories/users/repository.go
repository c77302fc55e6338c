package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/qaboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByResetToken locks the matching row (FOR UPDATE) when called inside
	// a transaction, so a reset token can be consumed only once.
	GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (*models.User, error)
	SetResetToken(ctx context.Context, id int64, hashedToken string, expire time.Time) error
	ClearResetToken(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdatePhoto(ctx context.Context, id int64, photo string) error
	UpdateRole(ctx context.Context, id int64, role string) error
}
