package catalog

import (
	"context"
	"fmt"
	"sync"

	"cocktail-recommender/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CategoryLookup 依營養分類查詢平均酒精濃度（百分點）
type CategoryLookup interface {
	LookupCategoryAlcohol(ctx context.Context, category string) (float64, error)
}

// Enricher 補齊食材的酒精濃度
type Enricher struct {
	lookup      CategoryLookup
	concurrency int
	strict      bool
}

// EnricherOption 設定選項
type EnricherOption func(*Enricher)

// WithConcurrency 同時查詢的分類數上限
func WithConcurrency(n int) EnricherOption {
	return func(e *Enricher) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithStrict 任一分類查詢失敗即讓整個建立失敗
func WithStrict(strict bool) EnricherOption {
	return func(e *Enricher) {
		e.strict = strict
	}
}

// NewEnricher 創建補齊器
func NewEnricher(lookup CategoryLookup, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		lookup:      lookup,
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich 為尚未確定濃度的食材查詢分類平均值，所有查詢完成後才回傳
func (e *Enricher) Enrich(ctx context.Context, ingredients []*Ingredient) error {
	pending := make(map[string][]*Ingredient)
	var order []string
	for _, ing := range ingredients {
		if ing.resolved {
			continue
		}
		if ing.Category == "" {
			// 沒有分類也沒有濃度，視為無酒精
			ing.resolved = true
			continue
		}
		if _, ok := pending[ing.Category]; !ok {
			order = append(order, ing.Category)
		}
		pending[ing.Category] = append(pending[ing.Category], ing)
	}

	if len(order) == 0 {
		return nil
	}

	var (
		mu      sync.Mutex
		results = make(map[string]float64, len(order))
		failed  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, category := range order {
		g.Go(func() error {
			alcohol, err := e.lookup.LookupCategoryAlcohol(gctx, category)
			if err != nil {
				if e.strict {
					return fmt.Errorf("enrich category %q: %w", category, err)
				}
				common.LogWarn("分類酒精濃度查詢失敗，食材維持 0",
					zap.String("category", category),
					zap.Error(err),
				)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			results[category] = alcohol
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for category, alcohol := range results {
		for _, ing := range pending[category] {
			ing.Alcohol = alcohol
			ing.resolved = true
			common.LogDebug("補齊食材酒精濃度",
				zap.String("ingredient", ing.Name),
				zap.String("category", category),
				zap.Float64("alcohol", alcohol),
			)
		}
	}

	common.LogInfo("食材酒精濃度補齊完成",
		zap.Int("categories", len(order)),
		zap.Int("failed", failed),
	)
	return nil
}
