package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-api-service/cmd/api/infrastructure"
	"user-api-service/internal/adapter/cache"
	"user-api-service/internal/adapter/db/gormstore"
	ginhandler "user-api-service/internal/adapter/gin/handler"
	"user-api-service/internal/adapter/gin/router"
	"user-api-service/internal/adapter/password"
	"user-api-service/internal/adapter/repository/cached"
	"user-api-service/internal/adapter/token"
	"user-api-service/internal/config"
	"user-api-service/internal/usecase/user"
	redisclient "user-api-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	Hasher      *password.Hasher
	Tokens      *token.Service
	UserUC      user.UserUsecase
	GinHandler  *ginhandler.UserHandler
	Router      *gin.Engine
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	hasher, err := password.New(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}

	tokens, err := token.New(cfg.Auth.SecretKey, cfg.TokenTTL())
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	c := &Container{
		Config: cfg,
		Logger: l,
		DB:     db,
		Hasher: hasher,
		Tokens: tokens,
	}

	var repo user.Repository = gormstore.NewUserRepo(db, l)

	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	if rdb != nil {
		c.RedisClient = rdb
		repo = cached.NewUserRepository(repo, cache.NewRedisUserCache(rdb.Client, cfg.CacheTTL(), l), l)
	}

	c.UserUC = user.New(repo, hasher, l)
	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l)
	c.Router = router.SetupRouter(c.GinHandler, tokens, router.Options{
		ServiceName:   cfg.Logger.ServiceName,
		AllowedOrigin: cfg.App.CORSAllowedOrigin,
		ProtectUsers:  cfg.Auth.ProtectUsers,
	}, l)

	if cfg.Auth.ProtectUsers {
		l.Info("bearer token required on /api/usuarios routes")
	}

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
