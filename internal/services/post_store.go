package services

import (
	"context"
	"fmt"

	"distilled/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostStore 内容持久化
type PostStore struct {
	db *gorm.DB
}

func NewPostStore(conn *gorm.DB) *PostStore {
	return &PostStore{db: conn}
}

// StorePosts 批量写入，id 已存在的保持原样
// 空列表直接返回
func (s *PostStore) StorePosts(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(posts, 100).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorePosts, err)
	}
	return nil
}

// Exists 内容是否已入库
func (s *PostStore) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
