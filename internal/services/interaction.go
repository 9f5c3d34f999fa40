package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"distilled/internal/logger"
	"distilled/internal/metrics"
	"distilled/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 按钮动作
const (
	ActionLike    = "like"
	ActionDislike = "dislike"
)

// InteractionOutcome 一次按钮回复的处理结果
type InteractionOutcome string

const (
	OutcomeRecorded    InteractionOutcome = "recorded"
	OutcomeMalformed   InteractionOutcome = "malformed"
	OutcomeUnknownUser InteractionOutcome = "unknown_user"
	OutcomeUnknownPost InteractionOutcome = "unknown_post"
	OutcomeFailed      InteractionOutcome = "failed"
)

// ButtonID 生成 "<action>:<postId>" 形式的按钮 ID
func ButtonID(action, postID string) string {
	return action + ":" + postID
}

// ParseButtonID 解析按钮 ID，按第一个 ":" 切分
func ParseButtonID(buttonID string) (liked bool, postID string, err error) {
	action, postID, ok := strings.Cut(buttonID, ":")
	if !ok || postID == "" {
		return false, "", fmt.Errorf("%w: %q", ErrInvalidButtonID, buttonID)
	}
	switch action {
	case ActionLike:
		return true, postID, nil
	case ActionDislike:
		return false, postID, nil
	}
	return false, "", fmt.Errorf("%w: unknown action %q", ErrInvalidButtonID, action)
}

// InteractionRecorder 把按钮点击写成用户对内容的反馈
type InteractionRecorder struct {
	db    *gorm.DB
	users *UserDirectory
	posts *PostStore
	now   func() time.Time
}

func NewInteractionRecorder(conn *gorm.DB, users *UserDirectory, posts *PostStore) *InteractionRecorder {
	return &InteractionRecorder{db: conn, users: users, posts: posts, now: time.Now}
}

// HandleInteractiveResponse 处理一次按钮回复，从不返回错误
// 同一用户对同一内容重复点击时以最后一次为准
func (r *InteractionRecorder) HandleInteractiveResponse(ctx context.Context, phone, buttonID string) InteractionOutcome {
	outcome, err := r.record(ctx, phone, buttonID)
	metrics.InteractionsTotal.WithLabelValues(string(outcome)).Inc()

	log := logger.Log.With(logger.WithPhone(phone), zap.String("button_id", buttonID))
	switch outcome {
	case OutcomeRecorded:
		log.Info("交互已记录")
	case OutcomeFailed:
		log.Error("记录交互失败", zap.Error(err))
	default:
		log.Warn("忽略交互", zap.String("outcome", string(outcome)), zap.Error(err))
	}
	return outcome
}

func (r *InteractionRecorder) record(ctx context.Context, phone, buttonID string) (InteractionOutcome, error) {
	liked, postID, err := ParseButtonID(buttonID)
	if err != nil {
		return OutcomeMalformed, err
	}

	userID, err := r.users.FindUserIDByPhone(ctx, phone)
	if errors.Is(err, ErrUserNotFound) {
		return OutcomeUnknownUser, err
	}
	if err != nil {
		return OutcomeFailed, err
	}

	exists, err := r.posts.Exists(ctx, postID)
	if err != nil {
		return OutcomeFailed, err
	}
	if !exists {
		return OutcomeUnknownPost, fmt.Errorf("%w: %s", ErrPostNotFound, postID)
	}

	if err := r.upsert(ctx, userID, postID, liked); err != nil {
		return r.retryWithFreshUser(ctx, phone, userID, postID, liked, err)
	}
	return OutcomeRecorded, nil
}

// retryWithFreshUser 缓存的用户可能已被删除或换绑，重新查一次手机号
func (r *InteractionRecorder) retryWithFreshUser(ctx context.Context, phone, staleID, postID string, liked bool, cause error) (InteractionOutcome, error) {
	if !r.users.Forget(phone) {
		return OutcomeFailed, cause
	}

	userID, err := r.users.FindUserIDByPhone(ctx, phone)
	if errors.Is(err, ErrUserNotFound) {
		return OutcomeUnknownUser, err
	}
	if err != nil || userID == staleID {
		return OutcomeFailed, cause
	}

	if err := r.upsert(ctx, userID, postID, liked); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeRecorded, nil
}

func (r *InteractionRecorder) upsert(ctx context.Context, userID, postID string, liked bool) error {
	interaction := models.Interaction{
		UserID:    userID,
		PostID:    postID,
		Liked:     liked,
		CreatedAt: r.now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"liked", "created_at"}),
		}).
		Create(&interaction).Error
}
