// Package image 查詢 Wikimedia 圖片資訊並附加到飲品
package image

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"cocktail-recommender/internal/core/catalog"
	"cocktail-recommender/internal/infrastructure/config"
	"cocktail-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// 單次查詢的標題上限
const maxBatchSize = 50

var (
	filePagePattern = regexp.MustCompile(`/wiki/(File:.+\.\w{1,4})$`)
	filePathPattern = regexp.MustCompile(`/wiki/Special:FilePath/(.+\.\w{1,4})$`)
)

// Service 圖片資訊服務
type Service struct {
	client    *resty.Client
	apiURL    string
	width     int
	height    int
	batchSize int
}

type imageInfo struct {
	Size           int64  `json:"size"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	ThumbURL       string `json:"thumburl"`
	ThumbWidth     int    `json:"thumbwidth"`
	ThumbHeight    int    `json:"thumbheight"`
	URL            string `json:"url"`
	Mime           string `json:"mime"`
	DescriptionURL string `json:"descriptionurl"`
}

type apiResponse struct {
	Query *struct {
		Pages map[string]struct {
			Title     string      `json:"title"`
			ImageInfo []imageInfo `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

// NewService 創建新的圖片資訊服務
func NewService(cfg config.ImageConfig, userAgent string) *Service {
	batch := cfg.BatchSize
	if batch <= 0 || batch > maxBatchSize {
		batch = maxBatchSize
	}
	return &Service{
		client: resty.New().
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", userAgent),
		apiURL:    cfg.APIURL,
		width:     cfg.Width,
		height:    cfg.Height,
		batchSize: batch,
	}
}

// AttachImages 實現 catalog.ImageResolver，失敗只記錄警告
func (s *Service) AttachImages(ctx context.Context, drinks []*catalog.Drink) {
	byTitle := make(map[string][]*catalog.Drink)
	var titles []string
	for _, d := range drinks {
		if d.Image == "" {
			continue
		}
		title, ok := FileTitle(d.Image)
		if !ok {
			common.LogWarn("圖片網址格式不符", zap.String("drink", d.Name), zap.String("image", d.Image))
			continue
		}
		key := canonicalTitle(title)
		if _, seen := byTitle[key]; !seen {
			titles = append(titles, title)
		}
		byTitle[key] = append(byTitle[key], d)
	}

	if len(titles) == 0 {
		return
	}

	var (
		mu    sync.Mutex
		infos = make(map[string]catalog.ImageInfo, len(titles))
	)

	// 各批次獨立，失敗的批次不影響其他批次
	var wg sync.WaitGroup
	for start := 0; start < len(titles); start += s.batchSize {
		end := min(start+s.batchSize, len(titles))
		batch := titles[start:end]
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.fetchBatch(ctx, batch)
			if err != nil {
				common.LogWarn("圖片資訊查詢失敗", zap.Int("titles", len(batch)), zap.Error(err))
				return
			}
			mu.Lock()
			for k, v := range result {
				infos[k] = v
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	attached := 0
	for key, info := range infos {
		targets, ok := byTitle[key]
		if !ok {
			common.LogWarn("無法對應圖片到飲品", zap.String("title", key))
			continue
		}
		for _, d := range targets {
			info := info
			d.ImageInfo = &info
			attached++
		}
	}

	common.LogInfo("圖片資訊附加完成",
		zap.Int("titles", len(titles)),
		zap.Int("attached", attached),
	)
}

func (s *Service) fetchBatch(ctx context.Context, titles []string) (map[string]catalog.ImageInfo, error) {
	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action":      "query",
			"format":      "json",
			"prop":        "imageinfo",
			"iiprop":      "url|mime|size",
			"iiurlwidth":  strconv.Itoa(s.width),
			"iiurlheight": strconv.Itoa(s.height),
			"titles":      strings.Join(titles, "|"),
		}).
		Get(s.apiURL)
	common.LogUpstreamCall("wikimedia", s.apiURL, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Wikimedia: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, common.ErrUpstreamFailure.Wrap(fmt.Errorf("Wikimedia returned status %d", resp.StatusCode()))
	}

	var parsed apiResponse
	if err := common.ParseJSONBytes(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse Wikimedia response: %w", err)
	}
	if parsed.Query == nil || parsed.Query.Pages == nil {
		return nil, fmt.Errorf("unexpected Wikimedia response")
	}

	if len(parsed.Query.Pages) != len(titles) {
		common.LogWarn("圖片資訊數量不符", zap.Int("pages", len(parsed.Query.Pages)), zap.Int("titles", len(titles)))
	}

	result := make(map[string]catalog.ImageInfo, len(parsed.Query.Pages))
	for _, page := range parsed.Query.Pages {
		if len(page.ImageInfo) == 0 {
			common.LogWarn("缺少圖片資訊", zap.String("title", page.Title))
			continue
		}
		ii := page.ImageInfo[0]

		title, ok := FileTitle(ii.DescriptionURL)
		if !ok {
			title = page.Title
		}

		info := catalog.ImageInfo{
			MimeType: ii.Mime,
			Original: catalog.ImageMetadata{URL: ii.URL, Width: ii.Width, Height: ii.Height, SizeInBytes: ii.Size},
			Scaled:   catalog.ImageMetadata{URL: ii.ThumbURL, Width: ii.ThumbWidth, Height: ii.ThumbHeight},
		}
		if !complete(info) {
			common.LogWarn("圖片資訊不完整", zap.String("title", title))
			continue
		}
		result[canonicalTitle(title)] = info
	}
	return result, nil
}

// FileTitle 從 Commons 網址取出 File: 標題
func FileTitle(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	p := u.EscapedPath()
	if m := filePagePattern.FindStringSubmatch(p); m != nil {
		return unescape(m[1]), true
	}
	if m := filePathPattern.FindStringSubmatch(p); m != nil {
		return "File:" + unescape(m[1]), true
	}
	return "", false
}

func unescape(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	return s
}

// canonicalTitle API 會將底線正規化為空白
func canonicalTitle(title string) string {
	return strings.ReplaceAll(title, " ", "_")
}

func complete(info catalog.ImageInfo) bool {
	return info.MimeType != "" &&
		info.Original.URL != "" && info.Original.Width > 0 && info.Original.Height > 0 &&
		info.Scaled.URL != "" && info.Scaled.Width > 0 && info.Scaled.Height > 0
}
