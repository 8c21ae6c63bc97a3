package catalog

import (
	"context"
	"fmt"
	"time"

	"cocktail-recommender/internal/pkg/common"
	"cocktail-recommender/internal/pkg/metrics"

	"go.uber.org/zap"
)

// RecordSource 知識圖譜資料來源
type RecordSource interface {
	FetchRecords(ctx context.Context) ([]RawRecord, error)
}

// ImageResolver 附加飲品圖片資訊，失敗只記錄警告
type ImageResolver interface {
	AttachImages(ctx context.Context, drinks []*Drink)
}

// Pipeline 依序執行 查詢 → 分組 → 補齊 → 圖片 → 累計
type Pipeline struct {
	records  RecordSource
	enricher *Enricher
	images   ImageResolver
}

// NewPipeline 創建目錄建立流程，images 可為 nil
func NewPipeline(records RecordSource, enricher *Enricher, images ImageResolver) *Pipeline {
	return &Pipeline{
		records:  records,
		enricher: enricher,
		images:   images,
	}
}

// Build 實現 Source，任何必要階段失敗都不回傳部分目錄
func (p *Pipeline) Build(ctx context.Context) (*Catalog, error) {
	start := time.Now()
	cat, err := p.build(ctx)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.CatalogBuildDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	return cat, err
}

func (p *Pipeline) build(ctx context.Context) (*Catalog, error) {
	start := time.Now()

	records, err := p.records.FetchRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}

	cat, _ := Build(records)

	if p.enricher != nil {
		if err := p.enricher.Enrich(ctx, cat.Ingredients); err != nil {
			return nil, fmt.Errorf("enrich ingredients: %w", err)
		}
	}

	if p.images != nil {
		p.images.AttachImages(ctx, cat.Drinks)
	}

	Accumulate(cat.Drinks)

	common.LogInfo("目錄建立完成",
		zap.Int("drinks", len(cat.Drinks)),
		zap.Int("ingredients", len(cat.Ingredients)),
		zap.Duration("耗時", time.Since(start)),
	)
	return cat, nil
}
