package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 查詢結果標籤
const (
	OutcomeResolved = "resolved"
	OutcomeFailed   = "failed"
	OutcomeRedirect = "redirect"
	OutcomeMemo     = "memo"
	OutcomePersist  = "persisted"
)

var (
	// DiscardedRows 解析時被捨棄的資料列
	DiscardedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cocktail",
		Subsystem: "catalog",
		Name:      "discarded_rows_total",
		Help:      "Number of knowledge graph rows discarded while parsing, by reason.",
	}, []string{"reason"})

	// CategoryLookups 營養分類查詢次數
	CategoryLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cocktail",
		Subsystem: "openfoodfacts",
		Name:      "category_lookups_total",
		Help:      "Category alcohol lookups, by outcome.",
	}, []string{"outcome"})

	// CatalogBuildDuration 目錄建立耗時
	CatalogBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cocktail",
		Subsystem: "catalog",
		Name:      "build_duration_seconds",
		Help:      "Duration of full catalog builds.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"status"})

	// CatalogDrinks 目錄中的飲品數
	CatalogDrinks = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cocktail",
		Subsystem: "catalog",
		Name:      "drinks",
		Help:      "Number of drinks in the current catalog.",
	})

	// CatalogIngredients 目錄中的食材數
	CatalogIngredients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cocktail",
		Subsystem: "catalog",
		Name:      "ingredients",
		Help:      "Number of ingredients in the current catalog.",
	})

	// CircuitBreakerState 斷路器狀態 (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cocktail",
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state by breaker name.",
	}, []string{"name"})

	// HTTPRequests HTTP 請求次數
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cocktail",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "status"})
)
