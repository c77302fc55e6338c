package models

import "time"

type Comment struct {
	ID         int64     `json:"commentId"`
	QuestionID int64     `json:"questionId"`
	Body       string    `json:"body"`
	PostedBy   Author    `json:"postedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}
