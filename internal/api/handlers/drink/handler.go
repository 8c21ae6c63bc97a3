// Package drink 飲品相關 HTTP 處理程序
package drink

import (
	"context"
	"net/http"

	"cocktail-recommender/internal/core/catalog"
	"cocktail-recommender/internal/core/drink"
	"cocktail-recommender/internal/core/selector"
	"cocktail-recommender/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service 處理程序所需的飲品服務
type Service interface {
	GetAllIngredients(ctx context.Context) ([]*catalog.Ingredient, error)
	GetOptimalDrinkAmounts(ctx context.Context, available []string, promille, weightKg float64) ([]selector.DrinkAmount, error)
	SearchDrinks(ctx context.Context, filter drink.SearchFilter) ([]*catalog.Drink, error)
}

// Refresher 重新建立目錄
type Refresher interface {
	Refresh(ctx context.Context) (*catalog.Catalog, error)
}

// TipsinessRequest 飲酒量推薦請求
type TipsinessRequest struct {
	Ingredients []string `json:"ingredients"`
	Promille    *float64 `json:"promille" binding:"required,gte=0,lte=5"`
	Weight      *float64 `json:"weight" binding:"required,gt=0,lte=500"`
}

// TipsinessResponse 飲酒量推薦結果
type TipsinessResponse struct {
	Drinks []selector.DrinkAmount `json:"drinks"`
}

// IngredientsResponse 所有食材
type IngredientsResponse struct {
	Ingredients []*catalog.Ingredient `json:"ingredients"`
}

// DrinksRequest 飲品瀏覽請求
type DrinksRequest struct {
	DrinkName               string   `json:"drinkName"`
	MaxAlcoholConcentration *float64 `json:"maxAlcoholConcentration"`
	Ingredients             []string `json:"ingredients"`
}

// DrinksResponse 飲品清單
type DrinksResponse struct {
	Drinks []*catalog.Drink `json:"drinks"`
}

// RefreshResponse 目錄重新建立結果
type RefreshResponse struct {
	Drinks      int `json:"drinks"`
	Ingredients int `json:"ingredients"`
}

// Handler 飲品處理程序
type Handler struct {
	service   Service
	refresher Refresher
	debug     bool
}

// NewHandler 創建新的飲品處理程序
func NewHandler(service Service, refresher Refresher, debug bool) *Handler {
	return &Handler{
		service:   service,
		refresher: refresher,
		debug:     debug,
	}
}

// HandleTipsiness 依可用食材與目標千分比推薦飲品組合
func (h *Handler) HandleTipsiness(c *gin.Context) {
	var req TipsinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, h.debug)
		return
	}

	amounts, err := h.service.GetOptimalDrinkAmounts(c.Request.Context(), req.Ingredients, *req.Promille, *req.Weight)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	common.LogInfo("飲酒量推薦完成",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("ingredients", len(req.Ingredients)),
		zap.Int("drinks", len(amounts)),
	)
	c.JSON(http.StatusOK, TipsinessResponse{Drinks: amounts})
}

// HandleIngredients 列出所有食材
func (h *Handler) HandleIngredients(c *gin.Context) {
	ingredients, err := h.service.GetAllIngredients(c.Request.Context())
	if err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, IngredientsResponse{Ingredients: ingredients})
}

// HandleDrinks 瀏覽飲品
func (h *Handler) HandleDrinks(c *gin.Context) {
	var req DrinksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, h.debug)
		return
	}

	drinks, err := h.service.SearchDrinks(c.Request.Context(), drink.SearchFilter{
		DrinkName:               req.DrinkName,
		MaxAlcoholConcentration: req.MaxAlcoholConcentration,
		Ingredients:             req.Ingredients,
	})
	if err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, DrinksResponse{Drinks: drinks})
}

// HandleRefresh 清除目錄並重新建立
func (h *Handler) HandleRefresh(c *gin.Context) {
	common.LogInfo("重新建立目錄", zap.String("request_id", requestid.Get(c)))

	cat, err := h.refresher.Refresh(c.Request.Context())
	if err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, RefreshResponse{
		Drinks:      len(cat.Drinks),
		Ingredients: len(cat.Ingredients),
	})
}
