package services

import (
	"context"

	"distilled/internal/config"
	"distilled/internal/models"
	"distilled/internal/utils"

	"gorm.io/gorm"
)

// SourcePreference 某用户对某来源的反馈汇总
type SourcePreference struct {
	Source   models.Source `json:"source"`
	Likes    int           `json:"likes"`
	Dislikes int           `json:"dislikes"`
	Score    float64       `json:"score"`
}

// PreferenceService 根据历史 👍/👎 过滤候选内容
type PreferenceService struct {
	db  *gorm.DB
	cfg config.Digest
}

func NewPreferenceService(conn *gorm.DB, cfg config.Digest) *PreferenceService {
	return &PreferenceService{db: conn, cfg: cfg}
}

type sourceCount struct {
	Source   models.Source
	Likes    int
	Dislikes int
}

// CalculateSourcePreferences 按来源统计用户的喜欢/不喜欢
// 没有任何反馈的来源不会出现在结果里
func (s *PreferenceService) CalculateSourcePreferences(ctx context.Context, userID string) (map[models.Source]SourcePreference, error) {
	var rows []sourceCount
	err := s.db.WithContext(ctx).
		Table("interactions").
		Select(`posts.source AS source,
			SUM(CASE WHEN interactions.liked THEN 1 ELSE 0 END) AS likes,
			SUM(CASE WHEN interactions.liked THEN 0 ELSE 1 END) AS dislikes`).
		Joins("JOIN posts ON posts.id = interactions.post_id").
		Where("interactions.user_id = ?", userID).
		Group("posts.source").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	prefs := make(map[models.Source]SourcePreference, len(rows))
	for _, r := range rows {
		prefs[r.Source] = SourcePreference{
			Source:   r.Source,
			Likes:    r.Likes,
			Dislikes: r.Dislikes,
			Score:    utils.SourceScore(r.Likes, r.Dislikes),
		}
	}
	return prefs, nil
}

// CountInteractions 用户的反馈总数
func (s *PreferenceService) CountInteractions(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Interaction{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// FilterPostsForUser 过滤掉用户明显不喜欢的来源，保持原有顺序
// 反馈不足 LearningThreshold 条时处于学习期，全部放行
func (s *PreferenceService) FilterPostsForUser(ctx context.Context, userID string, posts []models.Post) ([]models.Post, error) {
	total, err := s.CountInteractions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if total < int64(s.cfg.LearningThreshold) {
		return posts, nil
	}

	prefs, err := s.CalculateSourcePreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if s.allowed(prefs, p.Source) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *PreferenceService) allowed(prefs map[models.Source]SourcePreference, source models.Source) bool {
	pref, ok := prefs[source]
	if !ok || pref.Likes+pref.Dislikes == 0 {
		return true
	}
	return pref.Score >= s.cfg.BlockScore
}
