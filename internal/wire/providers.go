package wire

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gotube/internal/cascade"
	"gotube/internal/comment"
	"gotube/internal/common"
	"gotube/internal/config"
	"gotube/internal/dashboard"
	"gotube/internal/dbmongo"
	"gotube/internal/dbmysql"
	"gotube/internal/health"
	"gotube/internal/like"
	"gotube/internal/media"
	"gotube/internal/model"
	"gotube/internal/pipeline"
	"gotube/internal/playlist"
	"gotube/internal/store"
	"gotube/internal/subscription"
	"gotube/internal/tweet"
	"gotube/internal/user"
	"gotube/internal/video"
)

// Application is everything cmd/api needs to serve.
type Application struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      store.Store
	Tokens     *common.TokenManager
	Reconciler *cascade.Reconciler
	Health     *health.Server
	Handlers   Handlers
}

type Handlers struct {
	User         *user.Handler
	Video        *video.Handler
	Comment      *comment.Handler
	Tweet        *tweet.Handler
	Like         *like.Handler
	Subscription *subscription.Handler
	Playlist     *playlist.Handler
	Dashboard    *dashboard.Handler
}

func ProvideConfig() (*config.Config, error) {
	return config.LoadConfig()
}

func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	logger, err := common.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func ProvideMongo(cfg *config.Config, logger *zap.Logger) (*dbmongo.MongoClient, func(), error) {
	mc, err := dbmongo.NewMongoConnection(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mc.Close(ctx); err != nil {
			logger.Warn("failed to close MongoDB connection", zap.Error(err))
		}
	}
	return mc, cleanup, nil
}

// ProvideStore creates the entity store and makes sure every index exists.
func ProvideStore(mc *dbmongo.MongoClient, logger *zap.Logger) (store.Store, error) {
	s := dbmongo.NewEntityStore(mc, logger)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := model.EnsureIndexes(ctx, s); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return s, nil
}

// ProvideObjectStorage picks the media backend from Storage.Driver.
func ProvideObjectStorage(cfg *config.Config, mc *dbmongo.MongoClient, logger *zap.Logger) (common.ObjectStorage, error) {
	switch cfg.Storage.Driver {
	case "minio":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		ms, err := media.NewMinioStorage(ctx, cfg.Storage.Minio, logger)
		if err != nil {
			return nil, err
		}
		return ms, nil
	case "gridfs", "":
		return dbmongo.NewMediaStorage(mc, cfg.Server.MediaBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// ProvideLedger returns the MySQL cascade-failure ledger, or a no-op one when MySQL is disabled.
func ProvideLedger(cfg *config.Config, logger *zap.Logger) (cascade.Ledger, func(), error) {
	if !cfg.Database.Enabled {
		logger.Info("cascade ledger disabled")
		return cascade.NopLedger{}, func() {}, nil
	}
	db, err := dbmysql.NewMySQL(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return dbmysql.NewCascadeFailureRepository(db), cleanup, nil
}

func ProvideTokenManager(cfg *config.Config) *common.TokenManager {
	return common.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
}

func ProvideExecutor(s store.Store, cfg *config.Config, logger *zap.Logger) *pipeline.Executor {
	return pipeline.NewExecutor(s, model.Collections(), cfg.View, logger)
}

func ProvideReconciler(coord *cascade.Coordinator, ledger cascade.Ledger, cfg *config.Config, logger *zap.Logger) *cascade.Reconciler {
	return cascade.NewReconciler(coord, ledger, cfg.Cascade, logger)
}

func ProvideHealth(s store.Store, logger *zap.Logger) *health.Server {
	return health.NewServer(s, logger)
}

// ProvideUserHandler marks auth cookies Secure outside development.
func ProvideUserHandler(svc user.UserService, cfg *config.Config, logger *zap.Logger) *user.Handler {
	secure := cfg.Server.Environment != "" && cfg.Server.Environment != "development"
	return user.NewHandler(svc, logger, secure, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
}
