// Package app 组装配置、数据库、WhatsApp 客户端与推送服务，供 server 和 CLI 共用
package app

import (
	"fmt"

	"distilled/internal/config"
	"distilled/internal/db"
	"distilled/internal/handlers"
	"distilled/internal/middleware"
	"distilled/internal/router"
	"distilled/internal/services"
	"distilled/internal/whatsapp"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	DB       *gorm.DB
	WhatsApp whatsapp.Client

	Fetcher  *services.PostFetcher
	Posts    *services.PostStore
	Users    *services.UserDirectory
	Prefs    *services.PreferenceService
	Delivery *services.DeliveryService
	Digest   *services.DigestService
	Recorder *services.InteractionRecorder
	Poller   *services.Poller
}

// New 连接数据库并按配置创建 Kapso 客户端
func New(cfg *config.Config) (*App, error) {
	if err := db.Init(cfg.DatabaseURL, cfg.IsDevelopment()); err != nil {
		return nil, err
	}
	if cfg.Kapso.APIKey == "" || cfg.Kapso.PhoneNumberID == "" {
		return nil, fmt.Errorf("KAPSO_API_KEY and KAPSO_PHONE_NUMBER_ID must be set")
	}

	client := whatsapp.NewKapsoClient(whatsapp.Options{
		BaseURL:       cfg.Kapso.BaseURL,
		APIKey:        cfg.Kapso.APIKey,
		PhoneNumberID: cfg.Kapso.PhoneNumberID,
		APIVersion:    cfg.Kapso.APIVersion,
		Timeout:       cfg.Kapso.Timeout,
	})
	return Build(cfg, db.DB, client, services.NewDefaultPostFetcher(cfg.Sources, cfg.Digest)), nil
}

// Build 在已有的连接和客户端上组装服务
func Build(cfg *config.Config, conn *gorm.DB, client whatsapp.Client, fetcher *services.PostFetcher) *App {
	posts := services.NewPostStore(conn)
	users := services.NewUserDirectory(conn)
	prefs := services.NewPreferenceService(conn, cfg.Digest)
	delivery := services.NewDeliveryService(conn, client, prefs, cfg.Digest)
	recorder := services.NewInteractionRecorder(conn, users, posts)

	return &App{
		Config:   cfg,
		DB:       conn,
		WhatsApp: client,
		Fetcher:  fetcher,
		Posts:    posts,
		Users:    users,
		Prefs:    prefs,
		Delivery: delivery,
		Digest:   services.NewDigestService(fetcher, posts, users, delivery),
		Recorder: recorder,
		Poller:   services.NewPoller(conn, client, recorder, cfg.Digest),
	}
}

// Router 注册全部路由的 gin 引擎
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	router.RegisterRoutes(r, handlers.NewCronHandler(a.Digest, a.Poller), a.Config.CronSecret)
	return r
}

func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
