package openfoodfacts

import "cocktail-recommender/internal/pkg/common"

// DefaultBroadCategoryMax 產品數超過此值的分類不計算平均
const DefaultBroadCategoryMax = 1000

// Aggregate 計算分類的平均酒精濃度（百分點，取一位小數）
func Aggregate(page *CategoryPage, broadMax int) float64 {
	if page == nil {
		return 0
	}
	if broadMax <= 0 {
		broadMax = DefaultBroadCategoryMax
	}
	// 太廣泛的分類平均值沒有意義
	if page.Count.Valid && page.Count.Value > float64(broadMax) {
		return 0
	}

	sum := 0.0
	n := 0
	for _, p := range page.Products {
		if p.NoNutritionData {
			continue
		}
		if !p.Nutriments.Alcohol.Valid {
			continue
		}
		sum += p.Nutriments.Alcohol.Value
		n++
	}
	if n == 0 {
		return 0
	}
	return common.RoundTo(sum/float64(n), 1)
}
