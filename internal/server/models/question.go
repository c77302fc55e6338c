package models

import "time"

type Question struct {
	ID        int64     `json:"questionId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	PostedBy  Author    `json:"postedBy"`
	CreatedAt time.Time `json:"createdAt"`
}
