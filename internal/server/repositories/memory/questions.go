package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/qaboard/internal/common"
	"github.com/dmitrijs2005/qaboard/internal/server/models"
)

type questionRepo struct{ *Store }

func (r questionRepo) List(ctx context.Context, search string) ([]*models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*models.Question, 0)
	for _, q := range r.questions {
		if contains(q.Title, search) || contains(q.Body, search) {
			out = append(out, r.view(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r questionRepo) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	q, ok := r.questions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.view(q), nil
}

func (r questionRepo) Create(ctx context.Context, q *models.Question) (*models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	row := *q
	row.ID = r.id()
	row.CreatedAt = time.Now().UTC()
	row.PostedBy.Email = ""
	r.questions[row.ID] = &row
	q.ID, q.CreatedAt = row.ID, row.CreatedAt
	return q, nil
}

func (r questionRepo) Update(ctx context.Context, q *models.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	row, ok := r.questions[q.ID]
	if !ok {
		return common.ErrorNotFound
	}
	row.Title, row.Body = q.Title, q.Body
	return nil
}

// Delete removes the question and its comments.
func (r questionRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.questions[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.questions, id)
	for cid, c := range r.comments {
		if c.QuestionID == id {
			delete(r.comments, cid)
		}
	}
	return nil
}

func (r questionRepo) view(q *models.Question) *models.Question {
	out := *q
	out.PostedBy.Email = r.email(q.PostedBy.UserID)
	return &out
}

func contains(s, substr string) bool {
	return substr == "" || strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
