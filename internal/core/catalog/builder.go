package catalog

import (
	"cocktail-recommender/internal/pkg/common"
	"cocktail-recommender/internal/pkg/metrics"

	"go.uber.org/zap"
)

// BuildStats 建立過程的統計，不影響目錄內容
type BuildStats struct {
	Rows              int
	Discarded         int
	DiscardedByReason map[DiscardReason]int
	AffectedDrinks    int
	Duplicates        int
}

// Build 將資料列依飲品與食材分組
func Build(records []RawRecord) (*Catalog, BuildStats) {
	stats := BuildStats{
		Rows:              len(records),
		DiscardedByReason: make(map[DiscardReason]int),
	}

	drinks := make(map[string]*Drink)
	ingredients := make(map[string]*Ingredient)
	cat := &Catalog{Drinks: []*Drink{}, Ingredients: []*Ingredient{}}
	affected := make(map[string]struct{})

	for _, raw := range records {
		rec, reason := ParseRecord(raw)
		if rec == nil {
			stats.Discarded++
			stats.DiscardedByReason[reason]++
			affected[raw.CocktailID] = struct{}{}
			common.LogDebug("捨棄資料列",
				zap.String("cocktail", raw.CocktailLabel),
				zap.String("reason", string(reason)),
			)
			continue
		}

		drink, ok := drinks[rec.CocktailID]
		if !ok {
			drink = &Drink{
				ID:          rec.CocktailID,
				Name:        rec.CocktailLabel,
				Image:       rec.ImageURL,
				Ingredients: []IngredientAmount{},
			}
			drinks[rec.CocktailID] = drink
			cat.Drinks = append(cat.Drinks, drink)
		}

		ingredient, ok := ingredients[rec.IngredientLabel]
		if !ok {
			ingredient = &Ingredient{
				Name:     rec.IngredientLabel,
				Category: rec.Category,
			}
			if rec.HasAlcohol {
				ingredient.Alcohol = rec.Alcohol
				ingredient.resolved = true
			}
			ingredients[rec.IngredientLabel] = ingredient
			cat.Ingredients = append(cat.Ingredients, ingredient)
		}

		// 同一食材可能經由不同關係重複出現
		if drink.HasIngredient(ingredient.Name) {
			stats.Duplicates++
			continue
		}

		drink.Ingredients = append(drink.Ingredients, IngredientAmount{
			Ingredient: ingredient,
			Amount:     rec.Amount,
			Unit:       rec.Unit,
		})
	}

	stats.AffectedDrinks = len(affected)
	stats.report(len(cat.Drinks), len(cat.Ingredients))

	return cat, stats
}

func (s BuildStats) report(drinks, ingredients int) {
	for reason, n := range s.DiscardedByReason {
		metrics.DiscardedRows.WithLabelValues(string(reason)).Add(float64(n))
	}

	common.LogInfo("目錄資料分組完成",
		zap.Int("rows", s.Rows),
		zap.Int("drinks", drinks),
		zap.Int("ingredients", ingredients),
		zap.Int("discarded", s.Discarded),
		zap.Int("affected_drinks", s.AffectedDrinks),
		zap.Int("duplicates", s.Duplicates),
	)
}
