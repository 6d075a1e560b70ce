package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/it-hub-api/api/swagger"
	"github.com/noah-isme/it-hub-api/internal/handler"
	"github.com/noah-isme/it-hub-api/internal/middleware"
	"github.com/noah-isme/it-hub-api/internal/repository"
	"github.com/noah-isme/it-hub-api/internal/service"
	"github.com/noah-isme/it-hub-api/internal/store"
	"github.com/noah-isme/it-hub-api/pkg/config"
	"github.com/noah-isme/it-hub-api/pkg/idgen"
	"github.com/noah-isme/it-hub-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/it-hub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/it-hub-api/pkg/middleware/requestid"
	"github.com/noah-isme/it-hub-api/pkg/storage"
)

// @title IT Hub API
// @version 1.0.0
// @description Study material portal: subjects, files, summary requests and staff administration. Session routes take the login access token as "Authorization: Bearer <token>".
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := store.Open(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open storage backend", zap.Error(err))
	}
	defer backend.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	catalog := repository.NewCatalogStore(backend, repository.DefaultKeys(cfg.Storage.KeyPrefix), logr)
	catalog.SetObserver(metricsSvc)
	if err := catalog.EnsureInitialized(ctx); err != nil {
		logr.Fatal("failed to seed catalog", zap.Error(err))
	}

	blobs, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Fatal("failed to prepare uploads directory", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	cleaner := service.NewBlobCleaner(blobs, service.BlobCleanerConfig{
		Workers:    cfg.Cleanup.Workers,
		MaxRetries: cfg.Cleanup.MaxRetries,
		RetryDelay: cfg.Cleanup.RetryDelay,
	}, metricsSvc, logr)
	cleaner.Start(ctx)
	defer cleaner.Stop()

	validate := validator.New()
	ids := idgen.New(cfg.IDs.Strategy)

	subjectSvc := service.NewSubjectService(catalog, ids, cleaner, validate, logr)
	fileSvc := service.NewFileService(catalog, blobs, signer, cleaner, ids, metricsSvc, validate, logr, service.FileServiceConfig{
		APIPrefix:      cfg.APIPrefix,
		MaxUploadBytes: cfg.Uploads.MaxFileSizeBytes,
	})
	userSvc := service.NewUserService(catalog, ids, validate, logr)
	authSvc := service.NewAuthService(catalog, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	requestSvc := service.NewRequestService(catalog, ids, validate, logr)
	dashboardSvc := service.NewDashboardService(catalog, nil, nil, logr)
	assistantSvc := service.NewAssistantService(service.AssistantConfig{
		APIKey:       cfg.Assistant.APIKey,
		BaseURL:      cfg.Assistant.BaseURL,
		Model:        cfg.Assistant.Model,
		SystemPrompt: cfg.Assistant.SystemPrompt,
		Timeout:      cfg.Assistant.Timeout,
	}, nil, metricsSvc, logr)
	assistantSvc.Initialize(ctx, "")

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc, "/metrics"))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Subjects:  handler.NewSubjectHandler(subjectSvc),
		Files:     handler.NewFileHandler(fileSvc),
		Users:     handler.NewUserHandler(userSvc),
		Auth:      handler.NewAuthHandler(authSvc),
		Requests:  handler.NewRequestHandler(requestSvc),
		Dashboard: handler.NewDashboardHandler(dashboardSvc),
		Assistant: handler.NewAssistantHandler(assistantSvc),
		Metrics: handler.NewMetricsHandler(metricsSvc, func(ctx context.Context) error {
			_, err := catalog.ListSubjects(ctx)
			return err
		}),
	}, authSvc)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
