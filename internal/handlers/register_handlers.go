package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/karobooks/ledger_engine/cmd/docs"
	"github.com/karobooks/ledger_engine/internal/core/domain"
	portssvc "github.com/karobooks/ledger_engine/internal/core/ports/services"
	"github.com/karobooks/ledger_engine/internal/middleware"
	"github.com/karobooks/ledger_engine/internal/platform/config"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	registerCustomValidators()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Setup API v1 routes, passing service interfaces
	setupAPIV1Routes(r, cfg, services)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		// Fall back to a sane default rather than refusing to boot.
		rate, _ = limiter.NewRateFromFormatted("300-M")
	}
	ipLimiter := limiter.New(memory.NewStore(), rate)

	v1 := r.Group("/api/v1", middleware.CallerIdentityMiddleware(), middleware.RateLimit(ipLimiter))

	// Routes for managing tenants themselves
	registerTenantRoutes(v1, services.Tenant)

	// Routes scoped to a single tenant (identified by tenant_id)
	tenantSpecific := v1.Group("/tenants/:tenant_id")
	{
		registerAccountRoutes(tenantSpecific, services.Account, services.Balance, services.Posting)
		registerRuleRoutes(tenantSpecific, services.Rule)
		registerEventRoutes(tenantSpecific, services.Posting)
		registerEntryRoutes(tenantSpecific, services.Posting, services.Correction)
		registerBalanceRoutes(tenantSpecific, services.Balance)
		registerReportingRoutes(tenantSpecific, services.Reporting)
	}
}

// registerCustomValidators adds the binding-tag validators the DTOs use.
func registerCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("entryside", func(fl validator.FieldLevel) bool {
		switch domain.EntrySide(fl.Field().String()) {
		case domain.Debit, domain.Credit:
			return true
		}
		return false
	})
	_ = v.RegisterValidation("accounttype", func(fl validator.FieldLevel) bool {
		switch domain.AccountType(fl.Field().String()) {
		case domain.Asset, domain.Liability, domain.Equity, domain.Income, domain.Expense:
			return true
		}
		return false
	})
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
