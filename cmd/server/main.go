package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	broadcastapp "github.com/dasbor/backend/internal/application/broadcast"
	businessapp "github.com/dasbor/backend/internal/application/business"
	identityapp "github.com/dasbor/backend/internal/application/identity"
	sheetapp "github.com/dasbor/backend/internal/application/sheet"
	"github.com/dasbor/backend/internal/domain/sheet"
	"github.com/dasbor/backend/internal/infrastructure/auth"
	"github.com/dasbor/backend/internal/infrastructure/config"
	"github.com/dasbor/backend/internal/infrastructure/logger"
	"github.com/dasbor/backend/internal/infrastructure/persistence"
	"github.com/dasbor/backend/internal/infrastructure/sheets"
	"github.com/dasbor/backend/internal/infrastructure/storage"
	"github.com/dasbor/backend/internal/infrastructure/webhook"
	"github.com/dasbor/backend/internal/interfaces/http/handler"
	"github.com/dasbor/backend/internal/interfaces/http/middleware"
	"github.com/dasbor/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "ISO8601",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	businessRepo := persistence.NewGormBusinessRepository(db.DB)
	campaignRepo := persistence.NewGormCampaignRepository(db.DB)

	// Token infrastructure. Redis backs the blacklist so logout survives
	// restarts; the in-memory fallback keeps development working without it.
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	if redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis); err != nil {
		log.Warn("redis unavailable, using in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
	}

	// Spreadsheet access
	fetcher := sheets.NewCSVFetcher(cfg.Sheets)
	var writer sheet.Writer = sheets.NoopWriter{}
	if cfg.Sheets.WriteCapable() {
		apiWriter, err := sheets.NewAPIWriter(cfg.Sheets.WriteKeyFile, cfg.Sheets.FetchTimeout)
		if err != nil {
			log.Fatal("failed to initialize sheet writer", zap.Error(err))
		}
		writer = apiWriter
		log.Info("FAQ sheet writes enabled")
	} else {
		log.Info("no sheet write credentials configured, FAQ endpoints are read-only")
	}

	// Logo storage
	logoStorage, err := storage.NewFromConfig(&cfg.Storage, log)
	if err != nil {
		log.Fatal("failed to initialize logo storage", zap.Error(err))
	}

	// Broadcast dispatch
	dispatcher := webhook.NewHTTPDispatcher(cfg.Broadcast.DispatchTimeout)
	costPerMessage, err := decimal.NewFromString(cfg.Broadcast.CostPerMessage)
	if err != nil {
		log.Fatal("invalid broadcast.cost_per_message", zap.Error(err))
	}

	// Application services
	sheetService := sheetapp.NewService(businessRepo, fetcher, writer, log)
	broadcastService := broadcastapp.NewService(campaignRepo, businessRepo, sheetService, dispatcher, costPerMessage, log)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, identityapp.DefaultAuthServiceConfig(), log)
	userService := identityapp.NewUserService(userRepo, businessRepo, blacklist, jwtService, log)
	businessService := businessapp.NewService(businessRepo, userRepo, logoStorage, log)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig(cfg)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("failed to set trusted proxies", zap.Error(err))
	}

	// Local logo files are served directly; registered before the JWT
	// middleware so logo URLs stay publicly reachable.
	if cfg.Storage.Provider == "local" {
		engine.Static("/uploads", cfg.Storage.LocalPath)
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	router.NewRouter(engine, router.WithHealthCheck(healthHandler(db, log))).
		Register(handler.NewSystemHandler()).
		Register(handler.NewAuthHandler(authService)).
		Register(handler.NewUserHandler(userService)).
		Register(handler.NewBusinessHandler(businessService, sheetService)).
		Register(handler.NewSheetHandler(sheetService)).
		Register(handler.NewBroadcastHandler(broadcastService)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server exited")
}

// healthHandler reports healthy only when the database answers a ping
func healthHandler(db *persistence.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			log.Error("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	cc := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cc.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cc.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cc.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	return cc
}
