package openfoodfacts

import (
	"context"
	"sync"

	"cocktail-recommender/internal/core/persist"
	"cocktail-recommender/internal/pkg/common"
	"cocktail-recommender/internal/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Resolver 依分類查詢平均酒精濃度
// 同一分類同時只會有一次查詢，成功結果保留到行程結束；失敗不保留
type Resolver struct {
	fetcher  CategoryFetcher
	store    persist.Store
	broadMax int

	mu    sync.RWMutex
	memo  map[string]categoryRecord
	group singleflight.Group
}

// categoryRecord 已確定的分類結果，RedirectedTo 非空表示此分類本身是重新導向
type categoryRecord struct {
	Alcohol      float64 `json:"alcohol"`
	RedirectedTo string  `json:"redirectedTo,omitempty"`
}

// ResolverOption 設定選項
type ResolverOption func(*Resolver)

// WithStore 查詢結果寫入持久化儲存
func WithStore(store persist.Store) ResolverOption {
	return func(r *Resolver) {
		r.store = store
	}
}

// WithBroadCategoryMax 設定廣泛分類的產品數門檻
func WithBroadCategoryMax(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.broadMax = n
		}
	}
}

// NewResolver 創建分類查詢器
func NewResolver(fetcher CategoryFetcher, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		fetcher:  fetcher,
		broadMax: DefaultBroadCategoryMax,
		memo:     make(map[string]categoryRecord),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PersistDomain 分類在持久化儲存中的網域名稱
func PersistDomain(category string) string {
	return "off-ingredient-" + category
}

// LookupCategoryAlcohol 實現 catalog.CategoryLookup
func (r *Resolver) LookupCategoryAlcohol(ctx context.Context, category string) (float64, error) {
	if rec, ok := r.cached(category); ok {
		metrics.CategoryLookups.WithLabelValues(metrics.OutcomeMemo).Inc()
		return rec.Alcohol, nil
	}

	v, err, _ := r.group.Do("category:"+category, func() (interface{}, error) {
		return r.resolve(context.WithoutCancel(ctx), category)
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

// Forget 清除所有已保留的結果
func (r *Resolver) Forget() {
	r.mu.Lock()
	r.memo = make(map[string]categoryRecord)
	r.mu.Unlock()
}

func (r *Resolver) resolve(ctx context.Context, category string) (float64, error) {
	if rec, ok := r.recall(ctx, category); ok {
		return rec.Alcohol, nil
	}

	result, err := r.fetcher.FetchCategory(ctx, category)
	if err != nil {
		metrics.CategoryLookups.WithLabelValues(metrics.OutcomeFailed).Inc()
		return 0, err
	}

	if result.Redirect == "" {
		v := Aggregate(result.Page, r.broadMax)
		metrics.CategoryLookups.WithLabelValues(metrics.OutcomeResolved).Inc()
		common.LogDebug("分類平均酒精濃度",
			zap.String("category", category),
			zap.Float64("alcohol", v),
		)
		return r.remember(ctx, category, categoryRecord{Alcohol: v}), nil
	}

	target := result.Redirect
	metrics.CategoryLookups.WithLabelValues(metrics.OutcomeRedirect).Inc()
	if target == category {
		common.LogWarn("分類重新導向到自身，視為無酒精", zap.String("category", category))
		return r.remember(ctx, category, categoryRecord{RedirectedTo: target}), nil
	}

	common.LogInfo("分類已重新導向",
		zap.String("from", category),
		zap.String("to", target),
	)

	v, err := r.hop(ctx, target)
	if err != nil {
		return 0, err
	}
	return r.remember(ctx, category, categoryRecord{Alcohol: v, RedirectedTo: target}), nil
}

// hop 只跟隨一次重新導向，使用獨立的 flight key 避免互相等待
// 目標本身也重新導向時只對原查詢回傳 0，不記住目標的結果
func (r *Resolver) hop(ctx context.Context, category string) (float64, error) {
	v, err, _ := r.group.Do("hop:"+category, func() (interface{}, error) {
		if rec, ok := r.recall(ctx, category); ok {
			if rec.RedirectedTo != "" {
				return r.secondRedirect(category, rec.RedirectedTo), nil
			}
			return rec.Alcohol, nil
		}

		result, err := r.fetcher.FetchCategory(ctx, category)
		if err != nil {
			metrics.CategoryLookups.WithLabelValues(metrics.OutcomeFailed).Inc()
			return 0.0, err
		}
		if result.Redirect != "" {
			return r.secondRedirect(category, result.Redirect), nil
		}

		metrics.CategoryLookups.WithLabelValues(metrics.OutcomeResolved).Inc()
		return r.remember(ctx, category, categoryRecord{Alcohol: Aggregate(result.Page, r.broadMax)}), nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

func (r *Resolver) secondRedirect(category, to string) float64 {
	common.LogWarn("分類連續重新導向，視為無酒精",
		zap.String("category", category),
		zap.String("to", to),
	)
	return 0
}

func (r *Resolver) cached(category string) (categoryRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.memo[category]
	return rec, ok
}

// recall 先查記憶體再查持久化儲存
func (r *Resolver) recall(ctx context.Context, category string) (categoryRecord, bool) {
	if rec, ok := r.cached(category); ok {
		return rec, true
	}

	var rec categoryRecord
	if persist.LoadOrWarn(ctx, r.store, PersistDomain(category), &rec) {
		metrics.CategoryLookups.WithLabelValues(metrics.OutcomePersist).Inc()
		r.mu.Lock()
		r.memo[category] = rec
		r.mu.Unlock()
		return rec, true
	}
	return categoryRecord{}, false
}

func (r *Resolver) remember(ctx context.Context, category string, rec categoryRecord) float64 {
	r.mu.Lock()
	r.memo[category] = rec
	r.mu.Unlock()

	if err := persist.SaveOrWarn(ctx, r.store, PersistDomain(category), rec); err != nil {
		common.LogWarn("分類結果無法保存", zap.String("category", category), zap.Error(err))
	}
	return rec.Alcohol
}
