package services

import (
	"context"
	"fmt"

	"distilled/internal/logger"
	"distilled/internal/models"

	"go.uber.org/zap"
)

const noPostsMessage = "No posts to send"

// UserError 单个用户处理失败的原因
type UserError struct {
	UserID string `json:"userId"`
	Error  string `json:"error"`
}

// DigestResult 一次日报任务的汇总
type DigestResult struct {
	Message string           `json:"message"`
	Posts   int              `json:"posts"`
	Users   int              `json:"users"`
	Sent    int              `json:"sent"`
	Failed  int              `json:"failed"`
	Sources []FetchReport    `json:"sources"`
	Reports []DeliveryReport `json:"-"`
	Errors  []UserError      `json:"errors"`
}

// DigestService 抓取 → 入库 → 按用户推送
type DigestService struct {
	fetcher  *PostFetcher
	store    *PostStore
	users    *UserDirectory
	delivery *DeliveryService
}

func NewDigestService(fetcher *PostFetcher, store *PostStore, users *UserDirectory, delivery *DeliveryService) *DigestService {
	return &DigestService{fetcher: fetcher, store: store, users: users, delivery: delivery}
}

// Run 执行一次日报任务
// 只有入库或读取用户失败会返回错误，单个用户的问题记录在结果里
func (s *DigestService) Run(ctx context.Context) (*DigestResult, error) {
	posts, sources := s.fetcher.FetchAll(ctx)
	result := &DigestResult{Posts: len(posts), Sources: sources, Errors: []UserError{}}

	if len(posts) == 0 {
		result.Message = noPostsMessage
		logger.Log.Warn("所有来源均无内容，跳过推送")
		return result, nil
	}

	if err := s.store.StorePosts(ctx, posts); err != nil {
		return nil, err
	}

	users, err := s.users.ListOptedInUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list opted-in users: %w", err)
	}
	result.Users = len(users)

	for _, u := range users {
		report, err := s.deliverSafely(ctx, u, posts)
		if report != nil {
			result.Sent += report.Sent
			result.Failed += report.Failed
			result.Reports = append(result.Reports, *report)
		}
		if err != nil {
			logger.Log.Error("用户推送失败", logger.WithUserID(u.ID), zap.Error(err))
			result.Errors = append(result.Errors, UserError{UserID: u.ID, Error: err.Error()})
		}
	}

	result.Message = fmt.Sprintf("Sent %d posts to %d users", result.Sent, result.Users)
	logger.Log.Info("日报任务完成",
		zap.Int("posts", result.Posts),
		zap.Int("users", result.Users),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Int("user_errors", len(result.Errors)),
	)
	return result, nil
}

func (s *DigestService) deliverSafely(ctx context.Context, u models.User, posts []models.Post) (report *DeliveryReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	phone := ""
	if u.Phone != nil {
		phone = *u.Phone
	}
	return s.delivery.ProcessUserDelivery(ctx, u.ID, phone, posts)
}
