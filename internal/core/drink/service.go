// Package drink 提供目錄瀏覽與飲酒量推薦
package drink

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"cocktail-recommender/internal/core/catalog"
	"cocktail-recommender/internal/core/selector"
	"cocktail-recommender/internal/pkg/common"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// CatalogProvider 取得建立完成的目錄
type CatalogProvider interface {
	Get(ctx context.Context) (*catalog.Catalog, error)
}

// SearchFilter 瀏覽條件，零值代表不限制
type SearchFilter struct {
	DrinkName               string   `json:"drinkName"`
	MaxAlcoholConcentration *float64 `json:"maxAlcoholConcentration" validate:"omitempty,gte=0,lte=1"`
	Ingredients             []string `json:"ingredients"`
}

// Service 飲品服務
type Service struct {
	catalogs CatalogProvider
	target   selector.Target

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option 設定選項
type Option func(*Service)

// WithTarget 自訂目標酒精量換算參數
func WithTarget(target selector.Target) Option {
	return func(s *Service) {
		s.target = target
	}
}

// WithRand 指定亂數來源
func WithRand(rnd *rand.Rand) Option {
	return func(s *Service) {
		s.rnd = rnd
	}
}

// NewService 創建新的飲品服務
func NewService(catalogs CatalogProvider, opts ...Option) *Service {
	s := &Service{
		catalogs: catalogs,
		target:   selector.DefaultTarget,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCatalog 取得目錄，首次呼叫時建立
func (s *Service) GetCatalog(ctx context.Context) (*catalog.Catalog, error) {
	return s.catalogs.Get(ctx)
}

// GetAllIngredients 取得所有食材
func (s *Service) GetAllIngredients(ctx context.Context) ([]*catalog.Ingredient, error) {
	cat, err := s.catalogs.Get(ctx)
	if err != nil {
		return nil, err
	}
	return cat.Ingredients, nil
}

// GetOptimalDrinkAmounts 以可用食材、目標千分比與體重推薦飲品組合
func (s *Service) GetOptimalDrinkAmounts(ctx context.Context, available []string, promille, weightKg float64) ([]selector.DrinkAmount, error) {
	if promille < 0 {
		return nil, common.NewFieldValidationError("promille", "promille must not be negative")
	}
	if weightKg <= 0 {
		return nil, common.NewFieldValidationError("weight", "weight must be positive")
	}

	cat, err := s.catalogs.Get(ctx)
	if err != nil {
		return nil, err
	}

	eligible := selector.Eligible(cat.Drinks, available)
	sorted := make([]*catalog.Drink, len(eligible))
	copy(sorted, eligible)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AlcoholVolume > sorted[j].AlcoholVolume
	})

	target := s.target.AlcoholMl(promille, weightKg)

	s.mu.Lock()
	result := selector.Select(target, sorted, s.rnd)
	s.mu.Unlock()

	common.LogInfo("飲品推薦完成",
		zap.Int("drinks", len(cat.Drinks)),
		zap.Int("eligible", len(eligible)),
		zap.Float64("target_ml", common.RoundTo(target, 2)),
		zap.Float64("selected_ml", common.RoundTo(selector.TotalAlcohol(result), 2)),
	)
	return result, nil
}

// SearchDrinks 依名稱、濃度上限與可用食材瀏覽飲品
func (s *Service) SearchDrinks(ctx context.Context, filter SearchFilter) ([]*catalog.Drink, error) {
	if err := getValidator().Struct(filter); err != nil {
		return nil, translateValidation(err)
	}

	cat, err := s.catalogs.Get(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.ToLower(strings.TrimSpace(filter.DrinkName))
	allowed := common.StringSet(filter.Ingredients)

	result := make([]*catalog.Drink, 0)
	for _, d := range cat.Drinks {
		if name != "" && !strings.Contains(strings.ToLower(d.Name), name) {
			continue
		}
		if filter.MaxAlcoholConcentration != nil && d.Concentration() > *filter.MaxAlcoholConcentration {
			continue
		}
		if len(allowed) > 0 && !allIngredientsIn(d, allowed) {
			continue
		}
		result = append(result, d)
	}
	return result, nil
}

func allIngredientsIn(d *catalog.Drink, allowed map[string]struct{}) bool {
	for _, ia := range d.Ingredients {
		if _, ok := allowed[ia.Ingredient.Name]; !ok {
			return false
		}
	}
	return true
}

// translateValidation 轉為 common.ValidationError
func translateValidation(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return common.NewValidationError(err.Error())
	}
	fe := fieldErrs[0]
	return common.NewFieldValidationError(fe.Field(),
		fmt.Sprintf("%s failed on %s=%s", fe.Field(), fe.Tag(), fe.Param()))
}
