package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"idcards/internal/config"
	"idcards/internal/handlers"
	"idcards/internal/metrics"
	"idcards/internal/middleware"
	"idcards/internal/repo"
	mongorepo "idcards/internal/repo/mongo"
	"idcards/internal/service"
	"idcards/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cardRepo, userRepo, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}
	defer closeDB()

	files, err := openFileStore(ctx, cfg)
	if err != nil {
		sugar.Fatalw("failed to initialize photo storage", "error", err)
	}

	m := metrics.New()
	cardService := service.NewIDCardService(cardRepo, files, m, sugar)
	userService := service.NewUserService(userRepo)

	h := handlers.NewHandler(cardService, userService, files, m, sugar, cfg)

	sugar.Infow("Config",
		"Addr", cfg.Addr(),
		"PhotoStorage", cfg.PhotoStorage,
		"UploadDir", cfg.UploadDir,
		"MaxUploadMB", cfg.MaxUploadMB,
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Server shutdown failed", "error", err)
		}
	}()

	sugar.Infow("Starting server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
}

// openStore выбирает хранилище записей по DATABASE_URI: mongodb, postgres или sqlite.
func openStore(ctx context.Context, cfg *config.Config) (repo.IDCardRepository, repo.UserRepository, func(), error) {
	if mongorepo.IsMongoDSN(cfg.DatabaseDSN) {
		db, disconnect, err := mongorepo.Connect(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			c, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = disconnect(c)
		}
		return mongorepo.NewIDCardRepository(db), mongorepo.NewUserRepository(db), closeFn, nil
	}

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	pingCtx, done := context.WithTimeout(ctx, 10*time.Second)
	defer done()
	if err := repo.Ping(pingCtx, gormDB); err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return repo.NewIDCardRepository(gormDB), repo.NewUserRepository(gormDB), closeFn, nil
}

func openFileStore(ctx context.Context, cfg *config.Config) (storage.FileStore, error) {
	if cfg.PhotoStorage == "s3" {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return s3Store, nil
	}
	disk, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	return disk, nil
}
