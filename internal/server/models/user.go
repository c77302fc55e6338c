// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/dmitrijs2005/qaboard/internal/common"
)

// User is an account. PasswordHash and the reset token never leave the server.
type User struct {
	ID                  int64      `json:"userId"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	Role                string     `json:"role"`
	Photo               string     `json:"photo,omitempty"`
	ResetPasswordToken  string     `json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == common.RoleAdmin
}

// Author is the public view of the user who posted a question or comment.
type Author struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email,omitempty"`
}
