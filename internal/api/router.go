package api

import (
	"context"
	"net/http"
	"time"

	drinkHandler "cocktail-recommender/internal/api/handlers/drink"
	"cocktail-recommender/internal/api/handlers/health"
	"cocktail-recommender/internal/api/middleware"
	"cocktail-recommender/internal/infrastructure/config"
	"cocktail-recommender/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	// 一般請求超時，首次請求可能需要等待目錄建立
	timeoutDuration = 5 * time.Minute
	// 重新建立目錄的重複請求時間窗
	refreshDedupWindow = 10 * time.Second
)

// Dependencies 路由所需的服務
type Dependencies struct {
	Drinks  drinkHandler.Service
	Catalog interface {
		drinkHandler.Refresher
		health.CatalogPeeker
	}
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
				Code:    common.ErrCodeRequestTimeout,
				Message: common.ErrRequestTimeout.Message,
			})
		}
	})

	healthHandler := health.NewHandler(cfg.App.Version, deps.Catalog)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	{
		h := drinkHandler.NewHandler(deps.Drinks, deps.Catalog, cfg.App.Debug)

		api.POST("/tipsiness", h.HandleTipsiness)
		api.GET("/ingredients", h.HandleIngredients)
		api.POST("/drinks", h.HandleDrinks)

		dedup := middleware.NewDeduplicator(refreshDedupWindow)
		api.POST("/catalog/refresh", dedup.Handler(), h.HandleRefresh)
	}

	common.LogInfo("Router setup completed",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
		zap.Strings("allowed_origins", cfg.Server.AllowedOrigins),
	)

	return router
}
