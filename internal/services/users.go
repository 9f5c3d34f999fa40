package services

import (
	"context"
	"errors"
	"time"

	"distilled/internal/models"
	"distilled/internal/utils"

	"gorm.io/gorm"
)

const (
	phoneCacheSize = 1024
	phoneCacheTTL  = time.Minute
)

// UserDirectory 只读访问用户的手机号与订阅状态
type UserDirectory struct {
	db    *gorm.DB
	phone *utils.TTLCache[string, string] // phone -> user id
}

func NewUserDirectory(conn *gorm.DB) *UserDirectory {
	cache, err := utils.NewTTLCache[string, string](phoneCacheSize, phoneCacheTTL)
	if err != nil {
		panic(err)
	}
	return &UserDirectory{db: conn, phone: cache}
}

// ListOptedInUsers 已绑定手机号且开启 WhatsApp 推送的用户
func (d *UserDirectory) ListOptedInUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := d.db.WithContext(ctx).
		Where("whatsapp_opt_in = ? AND phone IS NOT NULL AND phone <> ''", true).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

// FindUserIDByPhone 根据手机号查用户，结果缓存一段时间
func (d *UserDirectory) FindUserIDByPhone(ctx context.Context, phone string) (string, error) {
	if id, ok := d.phone.Get(phone); ok {
		return id, nil
	}

	var user models.User
	err := d.db.WithContext(ctx).Select("id").Where("phone = ?", phone).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}

	d.phone.Set(phone, user.ID)
	return user.ID, nil
}

// Forget 清除手机号缓存，返回此前是否命中
func (d *UserDirectory) Forget(phone string) bool {
	_, ok := d.phone.Get(phone)
	d.phone.Delete(phone)
	return ok
}
