package db

import (
	"context"

	"github.com/whatsoo/backend/internal/model"
)

func (db *Postgres) InsertTopic(ctx context.Context, userID int64, title, content string) (*model.Topic, error) {
	query := `
		INSERT INTO topics (user_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, user_id, title, content, created_at, updated_at
	`
	var topic model.Topic
	err := db.Pool.QueryRow(ctx, query, userID, title, content).Scan(
		&topic.ID,
		&topic.UserID,
		&topic.Title,
		&topic.Content,
		&topic.CreatedAt,
		&topic.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (db *Postgres) ListTopics(ctx context.Context, limit, offset int) ([]model.Topic, error) {
	query := `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM topics
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	topics := []model.Topic{}
	for rows.Next() {
		var topic model.Topic
		if err := rows.Scan(
			&topic.ID,
			&topic.UserID,
			&topic.Title,
			&topic.Content,
			&topic.CreatedAt,
			&topic.UpdatedAt,
		); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}
