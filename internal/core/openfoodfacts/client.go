// Package openfoodfacts 查詢 Open Food Facts 的分類平均酒精濃度
package openfoodfacts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cocktail-recommender/internal/infrastructure/config"
	"cocktail-recommender/internal/pkg/common"
	"cocktail-recommender/internal/pkg/metrics"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const breakerName = "openfoodfacts"

// Flag 可接受 "on"/"" 或布林值的旗標
type Flag bool

// UnmarshalJSON 實現 json.Unmarshaler
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch strings.Trim(strings.TrimSpace(string(data)), `"`) {
	case "on", "true", "1":
		*f = true
	default:
		*f = false
	}
	return nil
}

// Product 分類中的單一產品
type Product struct {
	NoNutritionData Flag `json:"no_nutrition_data"`
	Nutriments      struct {
		Alcohol common.FlexFloat `json:"alcohol"`
	} `json:"nutriments"`
}

// CategoryPage 分類查詢結果
type CategoryPage struct {
	Count    common.FlexFloat `json:"count"`
	Products []Product        `json:"products"`
}

// CategoryResult 查詢結果：成功頁面或重新導向，兩者擇一
type CategoryResult struct {
	Page     *CategoryPage
	Redirect string
}

// CategoryFetcher 取得分類頁面
type CategoryFetcher interface {
	FetchCategory(ctx context.Context, category string) (*CategoryResult, error)
}

// Client Open Food Facts API 客戶端
type Client struct {
	client   *resty.Client
	pageSize int
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[*CategoryResult]
}

// NewClient 創建新的 Open Food Facts 客戶端
func NewClient(cfg config.OpenFoodFactsConfig, userAgent string) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			// 重新導向由呼叫端處理
			return http.ErrUseLastResponse
		}))

	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	threshold := cfg.Breaker.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[*CategoryResult](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			common.LogWarn("斷路器狀態變更",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &Client{
		client:   client,
		pageSize: cfg.PageSize,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		breaker:  breaker,
	}
}

// FetchCategory 取得分類的第一頁產品
func (c *Client) FetchCategory(ctx context.Context, category string) (*CategoryResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (*CategoryResult, error) {
		return c.fetch(ctx, category)
	})
	common.LogUpstreamCall("openfoodfacts", category, time.Since(start), err)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, common.ErrCircuitOpen.Wrap(err)
	}
	return result, err
}

func (c *Client) fetch(ctx context.Context, category string) (*CategoryResult, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("category", category).
		SetQueryParam("page_size", strconv.Itoa(c.pageSize)).
		Get("/category/{category}.json")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Open Food Facts: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		location := resp.Header().Get("Location")
		target := categoryFromLocation(location)
		if target == "" {
			return nil, common.ErrUpstreamFailure.Wrap(fmt.Errorf("unmappable redirect location %q", location))
		}
		return &CategoryResult{Redirect: target}, nil
	case http.StatusOK:
	default:
		return nil, common.ErrUpstreamFailure.Wrap(fmt.Errorf("Open Food Facts returned status %d", resp.StatusCode()))
	}

	var page CategoryPage
	if err := common.ParseJSONBytes(resp.Body(), &page); err != nil {
		return nil, common.ErrUpstreamFailure.Wrap(fmt.Errorf("failed to parse Open Food Facts response: %w", err))
	}
	return &CategoryResult{Page: &page}, nil
}

// categoryFromLocation 從 /category/<name>.json 取出分類名稱
func categoryFromLocation(location string) string {
	if location == "" {
		return ""
	}
	path := location
	if u, err := url.Parse(location); err == nil {
		path = u.Path
	}
	if i := strings.Index(path, "/category/"); i >= 0 {
		path = path[i+len("/category/"):]
	}
	path = strings.TrimSuffix(path, ".json")
	path = strings.Trim(path, "/")
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	return path
}
