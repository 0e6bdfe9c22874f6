package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hera/backend/internal/application/core"
	"github.com/hera/backend/internal/application/fiscal"
	"github.com/hera/backend/internal/application/ledger"
	"github.com/hera/backend/internal/domain/smartcode"
	"github.com/hera/backend/internal/infrastructure/auth"
	"github.com/hera/backend/internal/infrastructure/cache"
	"github.com/hera/backend/internal/infrastructure/config"
	"github.com/hera/backend/internal/infrastructure/logger"
	"github.com/hera/backend/internal/infrastructure/persistence"
	"github.com/hera/backend/internal/infrastructure/telemetry"
	"github.com/hera/backend/internal/interfaces/http/handler"
	"github.com/hera/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	db, err := persistence.NewDatabaseWithOptions(&cfg.Database, persistence.Options{
		Logger:       logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level)),
		TraceEnabled: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	organizationRepo := persistence.NewGormOrganizationRepository(db.DB)
	entityRepo := persistence.NewGormEntityRepository(db.DB)
	relationshipRepo := persistence.NewGormRelationshipRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	policyRepo := persistence.NewGormSmartCodePolicyRepository(db.DB)

	// Smart-code policies are read on every write; cache them when
	// configured, through Redis if one is reachable
	var policies smartcode.PolicyProvider = policyRepo
	if cfg.SmartCode.CacheEnabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, using in-process policy cache", zap.Error(err))
			policies = cache.NewInMemoryPolicyCache(policyRepo, cfg.SmartCode.CacheTTL)
		} else {
			policies = cache.NewRedisPolicyCache(redisClient, policyRepo,
				cache.WithPolicyTTL(cfg.SmartCode.CacheTTL),
				cache.WithPolicyLogger(log))
			defer redisClient.Close()
		}
	}
	checker := smartcode.NewChecker(policies)

	// Application services
	organizationSvc := core.NewOrganizationService(organizationRepo, log)
	entitySvc := core.NewEntityService(entityRepo, relationshipRepo, transactionRepo, checker, log)
	relationshipSvc := core.NewRelationshipService(relationshipRepo, entityRepo, checker, log)
	transactionSvc := ledger.NewTransactionService(transactionRepo, entityRepo, checker, log)
	closeSvc := fiscal.NewCloseService(entityRepo, transactionRepo, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	engine := router.New(router.Handlers{
		System:       handler.NewSystemHandler(db.DB),
		Organization: handler.NewOrganizationHandler(organizationSvc),
		Entity:       handler.NewEntityHandler(entitySvc),
		Relationship: handler.NewRelationshipHandler(relationshipSvc),
		Transaction:  handler.NewTransactionHandler(transactionSvc),
		Fiscal:       handler.NewFiscalHandler(closeSvc),
	}, router.Options{
		Config:       cfg,
		Logger:       log,
		JWTService:   jwtService,
		AuthDisabled: cfg.JWT.Secret == "" && cfg.App.Env != "production",
	})

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("invalid trusted proxies", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", zap.Error(err))
	}
}
