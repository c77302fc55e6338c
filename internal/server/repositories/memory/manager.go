// Package memory is an in-memory RepositoryManager. It keeps the same
// contracts as the PostgreSQL repositories (not-found and duplicate errors,
// author emails joined in, cascade on question delete) and is used to run
// the services and the HTTP layer without a database.
package memory

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/qaboard/internal/dbx"
	"github.com/dmitrijs2005/qaboard/internal/server/models"
	"github.com/dmitrijs2005/qaboard/internal/server/repositories/comments"
	"github.com/dmitrijs2005/qaboard/internal/server/repositories/questions"
	"github.com/dmitrijs2005/qaboard/internal/server/repositories/users"
)

// Store holds all rows. The DBTX handed to the repository constructors is
// ignored, so a transaction sees the same data as the pool.
type Store struct {
	mu        sync.Mutex
	users     map[int64]*models.User
	questions map[int64]*models.Question
	comments  map[int64]*models.Comment
	nextID    int64
	err       error
}

type RepositoryManager struct {
	store *Store
}

func NewRepositoryManager() *RepositoryManager {
	return &RepositoryManager{store: &Store{
		users:     map[int64]*models.User{},
		questions: map[int64]*models.Question{},
		comments:  map[int64]*models.Comment{},
	}}
}

func (m *RepositoryManager) Store() *Store {
	return m.store
}

func (m *RepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *RepositoryManager) Users(dbx.DBTX) users.Repository {
	return userRepo{m.store}
}

func (m *RepositoryManager) Questions(dbx.DBTX) questions.Repository {
	return questionRepo{m.store}
}

func (m *RepositoryManager) Comments(dbx.DBTX) comments.Repository {
	return commentRepo{m.store}
}

// FailWith makes every subsequent repository call return err; nil restores
// normal operation.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Store) User(id int64) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}
	return *u, true
}

func (s *Store) Question(id int64) (models.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return models.Question{}, false
	}
	return *q, true
}

func (s *Store) Comment(id int64) (models.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return models.Comment{}, false
	}
	return *c, true
}

// PutUser inserts or replaces a user as is. IDs given here are reserved.
func (s *Store) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reserve(u.ID)
	s.users[u.ID] = &u
}

func (s *Store) PutQuestion(q models.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reserve(q.ID)
	s.questions[q.ID] = &q
}

func (s *Store) reserve(id int64) {
	if id > s.nextID {
		s.nextID = id
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) email(userID int64) string {
	if u, ok := s.users[userID]; ok {
		return u.Email
	}
	return ""
}
