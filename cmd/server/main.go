package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/podcastify/podcastify-api/internal/auth"
	"github.com/podcastify/podcastify-api/internal/community"
	"github.com/podcastify/podcastify-api/internal/config"
	"github.com/podcastify/podcastify-api/internal/logging"
	"github.com/podcastify/podcastify-api/internal/media"
	"github.com/podcastify/podcastify-api/internal/models"
	"github.com/podcastify/podcastify-api/internal/podcast"
	"github.com/podcastify/podcastify-api/internal/server"
	"github.com/podcastify/podcastify-api/internal/store"
	"github.com/podcastify/podcastify-api/internal/users"
)

func main() {
	os.Exit(run())
}

// run wires the service and blocks until shutdown. Returning instead of
// exiting lets the deferred disconnects run.
func run() int {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return 1
	}
	ctx := context.Background()

	// ── PostgreSQL (identity provider) ───────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Error("postgres connect", zap.Error(err))
		return 1
	}
	defer pgPool.Close()
	accounts := store.NewPostgresStore(pgPool)
	if err := accounts.Migrate(ctx); err != nil {
		logger.Error("postgres migrate", zap.Error(err))
		return 1
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Error("mongo connect", zap.Error(err))
		return 1
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			logger.Warn("mongo disconnect", zap.Error(err))
		}
	}()
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = mongoClient.Ping(pingCtx, readpref.Primary())
	cancel()
	if err != nil {
		logger.Error("mongo ping", zap.Error(err))
		return 1
	}
	db := mongoClient.Database(cfg.MongoDB)

	videos, err := store.NewVideoBucket(db, "videos")
	if err != nil {
		logger.Error("gridfs", zap.Error(err))
		return 1
	}

	// ── Redis (token revocation) ─────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Error("redis connect", zap.Error(err))
		return 1
	}
	defer rdb.Close()
	revocations := auth.NewRevocationList(rdb)

	// ── MinIO (cover images, audio files) ────────────────────
	objects, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Error("minio connect", zap.Error(err))
		return 1
	}

	// ── Handlers ─────────────────────────────────────────────
	tokens := auth.NewTokens(cfg.TokenSecret, cfg.TokenTTL)
	userStore := store.NewCollection[models.User](db, "users")

	router := server.NewRouter(server.Deps{
		Tokens:      tokens,
		Revocations: revocations,
		Auth:        auth.NewHandler(tokens, accounts, revocations, logger),
		Podcasts: podcast.NewHandler(
			store.NewCollection[models.Podcast](db, "podcast"),
			objects, cfg.MaxUploadBytes, logger,
		),
		Users: users.NewHandler(userStore, accounts, logger),
		Community: community.NewHandler(community.Stores{
			Playlist:      store.NewCollection[models.PlaylistEntry](db, "playlist"),
			Reviews:       store.NewCollection[models.Review](db, "reviews"),
			Announcements: store.NewCollection[models.Announcement](db, "announcement"),
			Reactions:     store.NewCollection[models.Reaction](db, "reactions"),
			Subscriptions: store.NewCollection[models.Subscription](db, "subscriber"),
			Users:         userStore,
		}, logger),
		Media:       media.NewHandler(objects, videos, cfg.MaxUploadBytes, logger),
		CORSOrigins: cfg.CORSOrigins,
		Log:         logger,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	if err := serve(srv, quit, 10*time.Second, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		return 1
	}
	return 0
}
