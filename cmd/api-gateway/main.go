package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/api/swagger"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/dal"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/handler"
	internalmw "github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/middleware"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/service"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/store"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/cache"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/config"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/database"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/logger"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/mailer"
	corsmiddleware "github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/middleware/cors"
	reqidmiddleware "github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/middleware/requestid"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/storage"
)

// @title Colegio Ildefonso Vázquez API
// @version 1.0.0
// @description Backend for the school informational site: subjects, study resources, publications, and the admin back office.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	// redis is optional: without it change events stay in-process
	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, change events stay in-process", zap.Error(err))
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	st := store.NewPostgresStore(db, redisClient, logr)
	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := st.Migrate(migrateCtx); err != nil {
		logr.Fatal("failed to run migrations", zap.Error(err))
	}

	validate := validator.New()
	d := dal.New(st, validate, logr, cfg.School.Name)

	metricsService := service.NewMetricsService()
	d.SetCacheObserver(metricsService)

	mail := mailer.New(cfg.Mail, logr)
	authService := service.NewAuthService(st, validate, logr, mail, cfg.JWT, cfg.Auth)
	backupService := service.NewBackupService(d, st, logr)

	localStorage, err := storage.NewLocalStorage(cfg.Uploads.Dir, cfg.Uploads.URLPrefix, cfg.PublicURL)
	if err != nil {
		logr.Fatal("failed to init upload storage", zap.Error(err))
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmw.Metrics(metricsService))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Subjects:     handler.NewSubjectHandler(d),
		Resources:    handler.NewResourceHandler(d, metricsService),
		Publications: handler.NewPublicationHandler(d),
		School:       handler.NewSchoolHandler(d),
		Auth:         handler.NewAuthHandler(authService),
		Backup:       handler.NewBackupHandler(backupService),
		Uploads:      handler.NewUploadHandler(localStorage, cfg.Uploads.MaxSizeBytes),
		Events:       handler.NewEventsHandler(d, metricsService),
	}, authService)

	r.Static(cfg.Uploads.URLPrefix, localStorage.Dir())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
