package main

import (
	"context"
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

	_ "github.com/hrms-io/hrms-api/api/swagger"
	"github.com/hrms-io/hrms-api/internal/handler"
	"github.com/hrms-io/hrms-api/internal/middleware"
	"github.com/hrms-io/hrms-api/internal/models"
	"github.com/hrms-io/hrms-api/internal/repository"
	"github.com/hrms-io/hrms-api/internal/service"
	"github.com/hrms-io/hrms-api/pkg/cache"
	"github.com/hrms-io/hrms-api/pkg/config"
	"github.com/hrms-io/hrms-api/pkg/database"
	"github.com/hrms-io/hrms-api/pkg/logger"
	corsmiddleware "github.com/hrms-io/hrms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hrms-io/hrms-api/pkg/middleware/requestid"
)

// @title HRMS Certificate API
// @version 1.0.0
// @description Certificate tracking, HR profiles, and admin approval workflow
// @BasePath /api/v1
// @schemes http
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, dashboard caching disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	certRepo := repository.NewCertificateRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
	}

	var sender service.MailSender
	if cfg.Mail.Enabled {
		sender = service.NewSMTPSender(cfg.Mail)
	}
	mailerSvc := service.NewMailerService(sender, metricsSvc, logr, cfg.Mail)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mailerSvc.Start(ctx)
	defer mailerSvc.Stop()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "hrms-api",
	})
	adminSvc := service.NewAdminService(userRepo, mailerSvc, validate, logr, cfg.Admin)
	certSvc := service.NewCertificateService(certRepo, cacheSvc, validate, logr, cfg.Dashboard.ExpiringWindowDays, cfg.Dashboard.CacheTTL)
	profileSvc := service.NewProfileService(profileRepo, certRepo, validate, logr)
	userSvc := service.NewUserService(userRepo, profileRepo, logr)
	exportSvc := service.NewExportService(certSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc, adminSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)
	certHandler := handler.NewCertificateHandler(certSvc, exportSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	userHandler := handler.NewUserHandler(userSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/admin-signup", authHandler.AdminSignup)
		auth.GET("/verify-email", authHandler.VerifyEmail)
		auth.POST("/refresh", authHandler.Refresh)

		authed := auth.Group("")
		authed.Use(middleware.JWT(authSvc))
		authed.POST("/logout", authHandler.Logout)
		authed.POST("/change-password", authHandler.ChangePassword)
		authed.GET("/me", authHandler.Me)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), middleware.SuperAdmin(adminSvc))
	{
		admin.GET("/approvals", adminHandler.ListApprovals)
		admin.POST("/approvals/:userId", adminHandler.Decide)
		admin.GET("/users/:id/login-diagnostics", adminHandler.LoginDiagnostics)
	}

	certs := api.Group("/certificates")
	certs.Use(middleware.JWT(authSvc))
	{
		certs.GET("", certHandler.List)
		certs.GET("/dashboard-stats", certHandler.DashboardStats)
		certs.GET("/export", certHandler.Export)
		certs.GET("/:id", certHandler.Get)

		mutate := certs.Group("")
		mutate.Use(middleware.RequireRoles(models.RoleAdmin))
		mutate.POST("", certHandler.Create)
		mutate.PUT("/:id", certHandler.Update)
		mutate.DELETE("/:id", certHandler.Delete)
	}

	profiles := api.Group("/profiles")
	profiles.Use(middleware.JWT(authSvc))
	{
		profiles.GET("", profileHandler.List)
		profiles.GET("/:id", profileHandler.Get)

		mutate := profiles.Group("")
		mutate.Use(middleware.RequireRoles(models.RoleAdmin))
		mutate.POST("", profileHandler.Create)
		mutate.PUT("/:id", profileHandler.Update)
		mutate.DELETE("/:id", profileHandler.Delete)
	}

	users := api.Group("/users")
	users.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), middleware.SuperAdmin(adminSvc))
	{
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.PUT("/:id/profile", userHandler.LinkProfile)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
