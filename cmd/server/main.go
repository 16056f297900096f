package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/neurascan/neurascan-api/internal/auth"
	"github.com/neurascan/neurascan-api/internal/config"
	"github.com/neurascan/neurascan-api/internal/handlers"
	"github.com/neurascan/neurascan-api/internal/model"
	"github.com/neurascan/neurascan-api/internal/pipeline"
	"github.com/neurascan/neurascan-api/internal/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// If running from cmd/server, resolve relative model paths against the
	// project root.
	if wd, wdErr := os.Getwd(); wdErr == nil && filepath.Base(wd) == "server" {
		root := filepath.Join(wd, "../..")
		if !filepath.IsAbs(cfg.ModelPath) {
			cfg.ModelPath = filepath.Join(root, cfg.ModelPath)
		}
		if !filepath.IsAbs(cfg.ModelMetadataPath) {
			cfg.ModelMetadataPath = filepath.Join(root, cfg.ModelMetadataPath)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *store.Store
	if cfg.DatabaseURL != "" {
		db, err = store.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		logger.Info("database connected")
	} else {
		logger.Warn("DATABASE_URL not set, running without accounts or history")
	}

	labels := pipeline.DefaultLabels
	models := model.NewManager(model.Config{
		ModelPath:      cfg.ModelPath,
		MetadataPath:   cfg.ModelMetadataPath,
		Labels:         labels,
		UsePlaceholder: cfg.UsePlaceholder,
	}, logger)
	defer models.Close()

	// A missing model is not fatal: requests get a structured 503 until an
	// explicit reload succeeds.
	if err := models.Load(); err != nil {
		logger.Warn("model not loaded at startup, predictions will fail until reload",
			zap.String("model_path", cfg.ModelPath),
			zap.Error(err))
	}

	pipe := pipeline.New(models, labels, cfg.MaxUploadBytes, logger)
	authMgr := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiry)

	router := gin.New()
	router.Use(gin.Recovery())

	handler := handlers.New(handlers.Options{
		Pipeline:       pipe,
		Models:         models,
		Store:          db,
		Auth:           authMgr,
		Labels:         labels,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	handler.Routes(router)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Addr()),
			zap.String("model_path", cfg.ModelPath),
			zap.Bool("placeholder_model", cfg.UsePlaceholder))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
