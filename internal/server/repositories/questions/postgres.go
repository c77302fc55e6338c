package questions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/qaboard/internal/common"
	"github.com/dmitrijs2005/qaboard/internal/dbx"
	"github.com/dmitrijs2005/qaboard/internal/server/models"
)

const selectQuestion = `SELECT q.id, q.title, q.body, q.user_id, u.email, q.created_at
	FROM questions q
	JOIN users u ON u.id = q.user_id`

// PostgresRepository implements question storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, search string) ([]*models.Question, error) {
	query := selectQuestion + `
		WHERE $1 = '' OR q.title ILIKE '%' || $1 || '%' OR q.body ILIKE '%' || $1 || '%'
		ORDER BY q.created_at DESC, q.id DESC`

	rows, err := r.db.QueryContext(ctx, query, search)
	if err != nil {
		return nil, fmt.Errorf("failed to select questions: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Question, 0)
	for rows.Next() {
		item, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	item, err := scanQuestion(r.db.QueryRowContext(ctx, selectQuestion+` WHERE q.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// Create inserts q and fills in its ID and CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, q *models.Question) (*models.Question, error) {
	query :=
		`INSERT INTO questions (user_id, title, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, q.PostedBy.UserID, q.Title, q.Body).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return q, nil
}

func (r *PostgresRepository) Update(ctx context.Context, q *models.Question) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE questions SET title = $2, body = $3 WHERE id = $1`, q.ID, q.Title, q.Body)
	return exactlyOne(res, err)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return exactlyOne(res, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (*models.Question, error) {
	var item models.Question
	if err := row.Scan(&item.ID, &item.Title, &item.Body, &item.PostedBy.UserID, &item.PostedBy.Email, &item.CreatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}

func exactlyOne(res sql.Result, err error) error {
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
