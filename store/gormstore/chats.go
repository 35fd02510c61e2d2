package gormstore

import (
	"context"

	"github.com/edulink-ug/edulink/models"
)

func (s *Store) AppendChat(ctx context.Context, msgs ...*models.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	return translate(s.db.WithContext(ctx).Create(msgs).Error)
}

func (s *Store) RecentChat(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	var items []models.ChatMessage
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

func (s *Store) GetChatMessage(ctx context.Context, id string) (*models.ChatMessage, error) {
	var m models.ChatMessage
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *Store) ClearChat(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.ChatMessage{}).Error
}
