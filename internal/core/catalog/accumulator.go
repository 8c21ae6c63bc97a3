package catalog

import "cocktail-recommender/internal/core/unit"

// AlcoholVolume 純酒精毫升數，濃度在此除以 100
func AlcoholVolume(ingredients []IngredientAmount) float64 {
	sum := 0.0
	for _, ia := range ingredients {
		if ia.Ingredient == nil {
			continue
		}
		sum += unit.Normalize(ia.Amount, ia.Unit) * ia.Ingredient.Alcohol / 100
	}
	return sum
}

// TotalVolume 可換算為毫升的總體積
func TotalVolume(ingredients []IngredientAmount) float64 {
	sum := 0.0
	for _, ia := range ingredients {
		sum += unit.Normalize(ia.Amount, ia.Unit)
	}
	return sum
}

// Accumulate 計算每杯飲品的酒精與總體積
func Accumulate(drinks []*Drink) {
	for _, d := range drinks {
		d.AlcoholVolume = AlcoholVolume(d.Ingredients)
		d.TotalVolume = TotalVolume(d.Ingredients)
	}
}
