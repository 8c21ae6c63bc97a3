package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cocktail-recommender/internal/api"
	"cocktail-recommender/internal/core/catalog"
	"cocktail-recommender/internal/core/drink"
	"cocktail-recommender/internal/core/image"
	"cocktail-recommender/internal/core/openfoodfacts"
	"cocktail-recommender/internal/core/persist"
	"cocktail-recommender/internal/core/selector"
	"cocktail-recommender/internal/core/wikidata"
	"cocktail-recommender/internal/infrastructure/config"
	"cocktail-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(common.LoggerOptions{
		Level:   cfg.LogLevel,
		Dir:     cfg.App.LogDir,
		Service: cfg.App.Name,
	}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("wikidata_endpoint", cfg.Wikidata.Endpoint),
		zap.String("openfoodfacts_url", cfg.OpenFoodFacts.BaseURL),
		zap.String("persist_driver", cfg.Persist.Driver),
		zap.Bool("image_enabled", cfg.Image.Enabled),
	)

	// 初始化持久化儲存
	store, err := persist.New(cfg.Persist)
	if err != nil {
		common.LogFatal("Failed to initialize persist store", zap.Error(err))
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	cache := buildCatalogCache(cfg, store)

	drinkService := drink.NewService(cache, drink.WithTarget(selector.Target{
		BodyWaterFraction: cfg.Tipsiness.BodyWaterFraction,
		AlcoholGramToMl:   cfg.Tipsiness.AlcoholGramToMl,
	}))

	router := api.SetupRouter(cfg, api.Dependencies{
		Drinks:  drinkService,
		Catalog: cache,
	})

	// 背景預先建立目錄
	if cfg.Catalog.WarmOnStart {
		go func() {
			if _, err := cache.Get(context.Background()); err != nil {
				common.LogError("目錄預先建立失敗", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}

// buildCatalogCache 組裝 查詢 → 補齊 → 圖片 的目錄建立流程
func buildCatalogCache(cfg *config.Config, store persist.Store) *catalog.Cache {
	records := wikidata.NewClient(cfg.Wikidata)

	offClient := openfoodfacts.NewClient(cfg.OpenFoodFacts, cfg.Wikidata.UserAgent)
	resolver := openfoodfacts.NewResolver(offClient,
		openfoodfacts.WithStore(store),
		openfoodfacts.WithBroadCategoryMax(cfg.OpenFoodFacts.BroadCategoryMax),
	)

	enricher := catalog.NewEnricher(resolver,
		catalog.WithConcurrency(cfg.Catalog.EnrichmentConcurrency),
		catalog.WithStrict(cfg.Catalog.StrictEnrichment),
	)

	var images catalog.ImageResolver
	if cfg.Image.Enabled {
		images = image.NewService(cfg.Image, cfg.Wikidata.UserAgent)
	}

	pipeline := catalog.NewPipeline(records, enricher, images)
	return catalog.NewCache(pipeline,
		catalog.WithStore(store),
		catalog.WithResetHook(resolver.Forget),
	)
}
