package model

import "time"

type Topic struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateTopicRequest struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
}
