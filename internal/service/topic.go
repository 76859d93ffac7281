package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/whatsoo/backend/internal/model"
)

const (
	maxTopicTitleLength   = 120
	maxTopicContentLength = 65535
	defaultTopicPageSize  = 20
	maxTopicPageSize      = 100
)

// TopicStore is the relational surface the topic flows consume.
type TopicStore interface {
	InsertTopic(ctx context.Context, userID int64, title, content string) (*model.Topic, error)
	ListTopics(ctx context.Context, limit, offset int) ([]model.Topic, error)
}

type TopicService struct {
	topics TopicStore
}

func NewTopicService(topics TopicStore) *TopicService {
	return &TopicService{topics: topics}
}

// Create stores a new topic on behalf of the authenticated author.
func (s *TopicService) Create(ctx context.Context, author *model.AuthUser, req model.CreateTopicRequest) (*model.Topic, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || len(title) > maxTopicTitleLength {
		return nil, ErrInvalidInput
	}
	if content == "" || len(content) > maxTopicContentLength {
		return nil, ErrInvalidInput
	}

	topic, err := s.topics.InsertTopic(ctx, author.ID, title, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return topic, nil
}

func (s *TopicService) List(ctx context.Context, page, pageSize int) ([]model.Topic, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultTopicPageSize
	}
	if pageSize > maxTopicPageSize {
		pageSize = maxTopicPageSize
	}

	topics, err := s.topics.ListTopics(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return topics, nil
}
