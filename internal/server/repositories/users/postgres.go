package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/qaboard/internal/common"
	"github.com/dmitrijs2005/qaboard/internal/dbx"
	"github.com/dmitrijs2005/qaboard/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const selectUser = `SELECT id, email, password_hash, role, photo, created_at FROM users`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, password_hash, role)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.Role).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE email = $1`, email)
}

func (r *PostgresRepository) GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (*models.User, error) {
	return r.getOne(ctx,
		selectUser+` WHERE reset_password_token = $1 AND reset_password_expire > $2 FOR UPDATE`,
		hashedToken, now)
}

func (r *PostgresRepository) SetResetToken(ctx context.Context, id int64, hashedToken string, expire time.Time) error {
	return r.updateOne(ctx,
		`UPDATE users SET reset_password_token = $2, reset_password_expire = $3 WHERE id = $1`,
		id, hashedToken, expire)
}

func (r *PostgresRepository) ClearResetToken(ctx context.Context, id int64) error {
	return r.updateOne(ctx,
		`UPDATE users SET reset_password_token = NULL, reset_password_expire = NULL WHERE id = $1`,
		id)
}

// UpdatePassword also drops any pending reset token.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.updateOne(ctx,
		`UPDATE users SET password_hash = $2, reset_password_token = NULL, reset_password_expire = NULL WHERE id = $1`,
		id, passwordHash)
}

func (r *PostgresRepository) UpdatePhoto(ctx context.Context, id int64, photo string) error {
	return r.updateOne(ctx, `UPDATE users SET photo = $2 WHERE id = $1`, id, photo)
}

func (r *PostgresRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	return r.updateOne(ctx, `UPDATE users SET role = $2 WHERE id = $1`, id, role)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	user := &models.User{}
	var photo sql.NullString

	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &photo, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Photo = photo.String
	return user, nil
}

// updateOne runs an UPDATE that must touch exactly one row.
func (r *PostgresRepository) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
