package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/qaboard/internal/common"
	"github.com/dmitrijs2005/qaboard/internal/server/models"
)

type userRepo struct{ *Store }

func (r userRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	row := *u
	row.ID = r.id()
	row.CreatedAt = time.Now().UTC()
	r.users[row.ID] = &row
	out := row
	return &out, nil
}

func (r userRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r userRepo) GetByResetToken(ctx context.Context, hashed string, now time.Time) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		return hashed != "" && u.ResetPasswordToken == hashed &&
			u.ResetPasswordExpire != nil && u.ResetPasswordExpire.After(now)
	})
}

func (r userRepo) update(id int64, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(u)
	return nil
}

func (r userRepo) SetResetToken(ctx context.Context, id int64, hashed string, expire time.Time) error {
	return r.update(id, func(u *models.User) {
		u.ResetPasswordToken = hashed
		u.ResetPasswordExpire = &expire
	})
}

func (r userRepo) ClearResetToken(ctx context.Context, id int64) error {
	return r.update(id, func(u *models.User) {
		u.ResetPasswordToken = ""
		u.ResetPasswordExpire = nil
	})
}

func (r userRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.update(id, func(u *models.User) {
		u.PasswordHash = hash
		u.ResetPasswordToken = ""
		u.ResetPasswordExpire = nil
	})
}

func (r userRepo) UpdatePhoto(ctx context.Context, id int64, photo string) error {
	return r.update(id, func(u *models.User) { u.Photo = photo })
}

func (r userRepo) UpdateRole(ctx context.Context, id int64, role string) error {
	return r.update(id, func(u *models.User) { u.Role = role })
}
