package router

import (
	"github.com/gin-gonic/gin"
	"github.com/hera/backend/internal/infrastructure/auth"
	"github.com/hera/backend/internal/infrastructure/config"
	"github.com/hera/backend/internal/infrastructure/logger"
	"github.com/hera/backend/internal/interfaces/http/handler"
	"github.com/hera/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Handlers bundles every handler the router mounts
type Handlers struct {
	System       *handler.SystemHandler
	Organization *handler.OrganizationHandler
	Entity       *handler.EntityHandler
	Relationship *handler.RelationshipHandler
	Transaction  *handler.TransactionHandler
	Fiscal       *handler.FiscalHandler
}

// Options controls the middleware stack
type Options struct {
	Config     *config.Config
	Logger     *zap.Logger
	JWTService *auth.JWTService
	// AuthDisabled mounts the API without bearer-token checks; requests
	// are then scoped by the X-Organization-ID header alone
	AuthDisabled bool
}

// New builds the gin engine with the full middleware stack and all
// routes mounted
func New(h Handlers, opts Options) *gin.Engine {
	if opts.Config != nil && opts.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(middleware.RequestID())
	if opts.Logger != nil {
		engine.Use(logger.GinMiddleware(opts.Logger))
		engine.Use(logger.Recovery(opts.Logger))
	} else {
		engine.Use(gin.Recovery())
	}
	engine.Use(middleware.Secure())

	corsCfg := middleware.DefaultCORSConfig()
	if opts.Config != nil {
		if len(opts.Config.HTTP.CORSAllowOrigins) > 0 {
			corsCfg.AllowOrigins = opts.Config.HTTP.CORSAllowOrigins
		}
		if len(opts.Config.HTTP.CORSAllowMethods) > 0 {
			corsCfg.AllowMethods = opts.Config.HTTP.CORSAllowMethods
		}
		if len(opts.Config.HTTP.CORSAllowHeaders) > 0 {
			corsCfg.AllowHeaders = opts.Config.HTTP.CORSAllowHeaders
		}
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))

	if opts.Config != nil && opts.Config.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(opts.Config.Telemetry.ServiceName))
	}

	if !opts.AuthDisabled && opts.JWTService != nil {
		engine.Use(middleware.JWTAuthMiddleware(opts.JWTService))
	}

	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	v1 := engine.Group("/api/v1")
	{
		v1.GET("/health", h.System.Health)

		orgs := v1.Group("/organizations")
		{
			orgs.POST("", h.Organization.Create)
			orgs.GET("/:id", h.Organization.Get)
		}

		entities := v1.Group("/entities")
		{
			entities.POST("", h.Entity.Create)
			entities.GET("", h.Entity.List)
			entities.GET("/by-code", h.Entity.GetByCode)
			entities.GET("/:id", h.Entity.Get)
			entities.PATCH("/:id", h.Entity.Update)
			entities.DELETE("/:id", h.Entity.Delete)
			entities.PUT("/:id/dynamic-data", h.Entity.SetDynamicField)
			entities.GET("/:id/dynamic-data", h.Entity.GetDynamicFields)
			entities.GET("/:id/traverse", h.Relationship.Traverse)
			entities.GET("/:id/balance", h.Transaction.Balance)
		}

		relationships := v1.Group("/relationships")
		{
			relationships.POST("", h.Relationship.Create)
			relationships.DELETE("/:id", h.Relationship.Deactivate)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.POST("", h.Transaction.Post)
			transactions.GET("/:id", h.Transaction.Get)
			transactions.POST("/:id/reverse", h.Transaction.Reverse)
		}

		fiscal := v1.Group("/fiscal")
		{
			fiscal.POST("/periods", h.Fiscal.GeneratePeriods)
			fiscal.POST("/close/preview", h.Fiscal.Preview)
			fiscal.POST("/close", h.Fiscal.Close)
		}
	}

	return engine
}
