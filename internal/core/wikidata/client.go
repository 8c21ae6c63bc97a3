// Package wikidata 透過 SPARQL 取得雞尾酒資料
package wikidata

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	"cocktail-recommender/internal/core/catalog"
	"cocktail-recommender/internal/infrastructure/config"
	"cocktail-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Value SPARQL 結果中的單一值
type Value struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Binding 一列查詢結果
type Binding struct {
	Cocktail            *Value `json:"cocktail"`
	CocktailLabel       *Value `json:"cocktailLabel"`
	ImageURL            *Value `json:"imageUrl"`
	IngredientLabel     *Value `json:"ingredientLabel"`
	IngredientAmount    *Value `json:"ingredientAmount"`
	IngredientUnitLabel *Value `json:"ingredientUnitLabel"`
	Alcohol             *Value `json:"alcohol"`
	OffCategory         *Value `json:"offCategory"`
}

// Response SPARQL JSON 結果
type Response struct {
	Results struct {
		Bindings []Binding `json:"bindings"`
	} `json:"results"`
}

// Client Wikidata 查詢客戶端
type Client struct {
	client   *resty.Client
	endpoint string
	query    string
}

// NewClient 創建新的 Wikidata 客戶端
func NewClient(cfg config.WikidataConfig) *Client {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/sparql-results+json").
		SetHeader("User-Agent", cfg.UserAgent)

	return &Client{
		client:   client,
		endpoint: cfg.Endpoint,
		query:    DrinkQuery(),
	}
}

// FetchRecords 實現 catalog.RecordSource
func (c *Client) FetchRecords(ctx context.Context) ([]catalog.RawRecord, error) {
	start := time.Now()

	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"query": c.query}).
		Post(c.endpoint)
	if err != nil {
		common.LogUpstreamCall("wikidata", c.endpoint, time.Since(start), err)
		return nil, fmt.Errorf("failed to send request to Wikidata: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		err := common.ErrUpstreamFailure.Wrap(fmt.Errorf("Wikidata returned status %d", resp.StatusCode()))
		common.LogUpstreamCall("wikidata", c.endpoint, time.Since(start), err)
		return nil, err
	}

	var result Response
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		err = common.ErrUpstreamFailure.Wrap(fmt.Errorf("failed to parse Wikidata response: %w", err))
		common.LogUpstreamCall("wikidata", c.endpoint, time.Since(start), err)
		return nil, err
	}

	common.LogUpstreamCall("wikidata", c.endpoint, time.Since(start), nil)
	return ToRecords(result.Results.Bindings), nil
}

// ToRecords 將查詢結果轉為目錄資料列，缺少雞尾酒識別或名稱的列會被略過
func ToRecords(bindings []Binding) []catalog.RawRecord {
	records := make([]catalog.RawRecord, 0, len(bindings))
	skipped := 0
	for _, b := range bindings {
		if b.Cocktail == nil || b.CocktailLabel == nil || b.Cocktail.Value == "" {
			skipped++
			continue
		}
		records = append(records, catalog.RawRecord{
			CocktailID:          entityID(b.Cocktail.Value),
			CocktailLabel:       b.CocktailLabel.Value,
			ImageURL:            b.ImageURL.ptr(),
			IngredientLabel:     b.IngredientLabel.ptr(),
			IngredientAmountRaw: b.IngredientAmount.ptr(),
			IngredientUnitLabel: b.IngredientUnitLabel.ptr(),
			AlcoholRaw:          b.Alcohol.ptr(),
			OffCategory:         b.OffCategory.ptr(),
		})
	}
	if skipped > 0 {
		common.LogWarn("略過缺少雞尾酒識別的查詢結果", zap.Int("count", skipped))
	}
	return records
}

func (v *Value) ptr() *string {
	if v == nil {
		return nil
	}
	s := v.Value
	return &s
}

// entityID 取出 http://www.wikidata.org/entity/Q134768 的 Q134768
func entityID(uri string) string {
	return path.Base(uri)
}
