package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"loanflow/internal/agent"
	"loanflow/internal/auth"
	"loanflow/internal/cache"
	"loanflow/internal/config"
	cronrunner "loanflow/internal/cron"
	"loanflow/internal/db"
	"loanflow/internal/handler"
	"loanflow/internal/llm"
	"loanflow/internal/logger"
	"loanflow/internal/mailer"
	gormrepository "loanflow/internal/repository/gorm"
	"loanflow/internal/service"
)

func main() {
	cfgPath := os.Getenv("LF_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("LF_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)

	var redisStore *cache.RedisStore
	if cfg.Redis.Addr != "" {
		redisStore = cache.NewRedisStore(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisStore.Close()
	}
	limiter := cache.NewRateLimiter(redisStore, cfg.Server.RateLimit, cfg.Server.RateLimitWindow)

	registrySvc := &service.RegistryService{Repo: store, Logger: logger}
	if err := registrySvc.SeedFromFile(context.Background(), cfg.Registry.SeedPath); err != nil {
		logger.Warn("registry seed failed", zap.Error(err))
	}

	jwt := auth.JWT{Secret: []byte(cfg.Auth.Secret), TokenTTL: cfg.Auth.TokenTTL}
	mailSvc := mailer.New(cfg.SMTP, logger)
	model := llm.New(cfg.LLM, logger)
	if !model.Configured() {
		logger.Warn("llm not configured, replies fall back to pipeline messages")
	}

	chatSvc := &service.ChatService{
		Repo:        store,
		Pipeline:    &agent.Pipeline{Registry: registrySvc, Logger: logger},
		Model:       model,
		Mailer:      mailSvc,
		Logger:      logger,
		UploadsRoot: cfg.Uploads.Root,
	}
	sessionSvc := &service.SessionService{Repo: store, Logger: logger}
	authSvc := &service.AuthService{Repo: store, JWT: jwt, Logger: logger}
	dashboardSvc := &service.DashboardService{Repo: store, CacheTTL: cfg.Redis.CacheTTL}
	if redisStore != nil {
		dashboardSvc.Cache = redisStore
	}
	maintenanceSvc := &service.MaintenanceService{
		Repo:           store,
		Logger:         logger,
		SalaryWaitMax:  cfg.Cron.SalaryWaitMax,
		AgentLogMaxAge: cfg.Cron.AgentLogMaxAge,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	(&handler.HealthHandler{DB: dbConn.Gorm, Cache: redisStore}).Register(engine)
	(&handler.AuthHandler{Service: authSvc, JWT: jwt}).Register(engine)
	(&handler.SessionHandler{Sessions: sessionSvc, Chat: chatSvc, Limiter: limiter}).Register(engine)
	(&handler.CustomerHandler{Registry: registrySvc}).Register(engine)
	(&handler.DashboardHandler{Service: dashboardSvc}).Register(engine)
	(&handler.EmailHandler{Mailer: mailSvc}).Register(engine)
	(&handler.AdminHandler{Repo: store, Chat: chatSvc, Mailer: mailSvc}).Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		if _, err := cronRunner.Add(cfg.Cron.SessionExpiry, func(ctx context.Context) {
			if err := maintenanceSvc.ExpireStaleSalarySessions(ctx); err != nil {
				logger.Warn("cron session expiry failed", zap.Error(err))
			}
		}); err != nil {
			logger.Fatal("cron session expiry schedule invalid", zap.Error(err))
		}
		if _, err := cronRunner.Add(cfg.Cron.AgentLogCleanup, func(ctx context.Context) {
			if err := maintenanceSvc.PruneAgentLogs(ctx); err != nil {
				logger.Warn("cron agent log cleanup failed", zap.Error(err))
			}
		}); err != nil {
			logger.Fatal("cron agent log cleanup schedule invalid", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown failed", zap.Error(err))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
