package catalog

import (
	"context"
	"sync"

	"cocktail-recommender/internal/core/persist"
	"cocktail-recommender/internal/pkg/common"
	"cocktail-recommender/internal/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PersistDomain 目錄在持久化儲存中的網域名稱
const PersistDomain = "catalog"

const flightKey = "catalog"

// Source 建立完整目錄
type Source interface {
	Build(ctx context.Context) (*Catalog, error)
}

// SourceFunc 函式形式的 Source
type SourceFunc func(ctx context.Context) (*Catalog, error)

// Build 實現 Source
func (f SourceFunc) Build(ctx context.Context) (*Catalog, error) {
	return f(ctx)
}

// Cache 目錄快取，首次取用時建立，之後重複使用直到失效
type Cache struct {
	source  Source
	store   persist.Store
	onReset []func()

	mu         sync.RWMutex
	current    *Catalog
	generation uint64
	group      singleflight.Group
}

// CacheOption 設定選項
type CacheOption func(*Cache)

// WithStore 建立前先讀取持久化的目錄，建立後寫回
func WithStore(store persist.Store) CacheOption {
	return func(c *Cache) {
		c.store = store
	}
}

// WithResetHook 重新建立目錄前執行，用於清除上游查詢的記憶結果
func WithResetHook(fn func()) CacheOption {
	return func(c *Cache) {
		c.onReset = append(c.onReset, fn)
	}
}

// NewCache 創建目錄快取
func NewCache(source Source, opts ...CacheOption) *Cache {
	c := &Cache{source: source}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Peek 取得已建立的目錄，不觸發建立
func (c *Cache) Peek() (*Catalog, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, c.current != nil
}

// Get 取得目錄，尚未建立時建立；同時呼叫者共用同一次建立與其結果
func (c *Cache) Get(ctx context.Context) (*Catalog, error) {
	if cat, ok := c.Peek(); ok {
		return cat, nil
	}

	c.mu.RLock()
	gen := c.generation
	c.mu.RUnlock()

	ch := c.group.DoChan(flightKey, func() (interface{}, error) {
		if cat, ok := c.Peek(); ok {
			return cat, nil
		}
		// 建立不因單一呼叫者取消而中斷
		return c.load(context.WithoutCancel(ctx), gen)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Catalog), nil
	}
}

// Invalidate 清除目前的目錄，進行中的建立結果不會被保留
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.generation++
	c.mu.Unlock()
	c.group.Forget(flightKey)
}

// Refresh 清除目錄與持久化資料後重新建立
func (c *Cache) Refresh(ctx context.Context) (*Catalog, error) {
	c.Invalidate()
	for _, fn := range c.onReset {
		fn()
	}
	if c.store != nil {
		if err := c.store.Delete(ctx, PersistDomain); err != nil {
			common.LogWarn("刪除持久化目錄失敗", zap.Error(err))
		}
	}
	return c.Get(ctx)
}

func (c *Cache) load(ctx context.Context, gen uint64) (*Catalog, error) {
	var cat *Catalog

	var persisted Catalog
	if persist.LoadOrWarn(ctx, c.store, PersistDomain, &persisted) {
		persisted.Relink()
		cat = &persisted
		common.LogInfo("使用持久化目錄", zap.Int("drinks", len(cat.Drinks)))
	} else {
		built, err := c.source.Build(ctx)
		if err != nil {
			common.LogError("目錄建立失敗", zap.Error(err))
			return nil, common.ErrCatalogUnavailable.Wrap(err)
		}
		cat = built
		if err := persist.SaveOrWarn(ctx, c.store, PersistDomain, cat); err != nil {
			return nil, common.ErrCatalogUnavailable.Wrap(err)
		}
	}

	c.mu.Lock()
	if c.generation == gen {
		c.current = cat
	}
	c.mu.Unlock()

	metrics.CatalogDrinks.Set(float64(len(cat.Drinks)))
	metrics.CatalogIngredients.Set(float64(len(cat.Ingredients)))

	return cat, nil
}
