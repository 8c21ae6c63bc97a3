package health

import (
	"net/http"
	"runtime"
	"time"

	"cocktail-recommender/internal/core/catalog"

	"github.com/gin-gonic/gin"
)

// CatalogPeeker 不觸發建立地檢查目錄
type CatalogPeeker interface {
	Peek() (*catalog.Catalog, bool)
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Catalog   *CatalogStatus         `json:"catalog"`
}

// CatalogStatus 目錄狀態
type CatalogStatus struct {
	Built       bool `json:"built"`
	Drinks      int  `json:"drinks"`
	Ingredients int  `json:"ingredients"`
}

// Handler 健康檢查處理器
type Handler struct {
	version string
	catalog CatalogPeeker
}

// NewHandler 創建健康檢查處理器
func NewHandler(version string, catalog CatalogPeeker) *Handler {
	return &Handler{version: version, catalog: catalog}
}

func (h *Handler) catalogStatus() *CatalogStatus {
	cat, ok := h.catalog.Peek()
	if !ok {
		return &CatalogStatus{}
	}
	return &CatalogStatus{Built: true, Drinks: len(cat.Drinks), Ingredients: len(cat.Ingredients)}
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":  m.Alloc,
				"sys":    m.Sys,
				"num_gc": m.NumGC,
			},
		},
		Catalog: h.catalogStatus(),
	})
}

// ReadinessCheck 目錄建立完成才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	status := h.catalogStatus()
	if !status.Built {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not_ready",
			"catalog": status,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"catalog": status,
	})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
