package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/qaboard/internal/common"
	"github.com/dmitrijs2005/qaboard/internal/server/models"
)

type commentRepo struct{ *Store }

func (r commentRepo) ListByQuestion(ctx context.Context, questionID int64, search string) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*models.Comment, 0)
	for _, c := range r.comments {
		if c.QuestionID == questionID && contains(c.Body, search) {
			out = append(out, r.view(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r commentRepo) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.comments[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.view(c), nil
}

// Create fails with common.ErrorNotFound when the question does not exist,
// like the foreign key in PostgreSQL.
func (r commentRepo) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if _, ok := r.questions[c.QuestionID]; !ok {
		return nil, common.ErrorNotFound
	}
	row := *c
	row.ID = r.id()
	row.CreatedAt = time.Now().UTC()
	row.PostedBy.Email = ""
	r.comments[row.ID] = &row
	c.ID, c.CreatedAt = row.ID, row.CreatedAt
	return c, nil
}

func (r commentRepo) Update(ctx context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	row, ok := r.comments[c.ID]
	if !ok {
		return common.ErrorNotFound
	}
	row.Body = c.Body
	return nil
}

func (r commentRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.comments[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r commentRepo) view(c *models.Comment) *models.Comment {
	out := *c
	out.PostedBy.Email = r.email(c.PostedBy.UserID)
	return &out
}
