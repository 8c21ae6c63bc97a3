// Package selector 依目標酒精量挑選飲品組合
package selector

import (
	"math"

	"cocktail-recommender/internal/core/catalog"
	"cocktail-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	// MaxRepetition 單一飲品的重複上限，第一輪最多嘗試 MaxRepetition-2 次
	MaxRepetition = 4
	// SkipProbability 第一輪隨機略過的機率
	SkipProbability = 0.9

	// BodyWaterFraction 體內水分比例
	BodyWaterFraction = 0.6
	// AlcoholGramToMl 酒精克數與毫升換算常數
	AlcoholGramToMl = 1.6
)

// RandomSource 均勻分佈亂數來源，*rand.Rand 即可滿足
type RandomSource interface {
	Float64() float64
}

// DrinkAmount 飲品與杯數
type DrinkAmount struct {
	Drink  *catalog.Drink `json:"drink"`
	Amount int            `json:"amount"`
}

// Target 目標酒精量換算參數
type Target struct {
	BodyWaterFraction float64
	AlcoholGramToMl   float64
}

// DefaultTarget 預設換算參數
var DefaultTarget = Target{BodyWaterFraction: BodyWaterFraction, AlcoholGramToMl: AlcoholGramToMl}

// AlcoholMl 以千分比與體重估算目標純酒精毫升數，僅為粗略估計
func (t Target) AlcoholMl(promille, weightKg float64) float64 {
	return promille * (weightKg * t.BodyWaterFraction) * t.AlcoholGramToMl
}

// TargetAlcoholMl 使用預設參數估算目標酒精量
func TargetAlcoholMl(promille, weightKg float64) float64 {
	return DefaultTarget.AlcoholMl(promille, weightKg)
}

// Eligible 篩選所有食材都可取得的飲品，空集合代表不限制
func Eligible(drinks []*catalog.Drink, available []string) []*catalog.Drink {
	if len(available) == 0 {
		return drinks
	}
	set := common.StringSet(available)
	result := make([]*catalog.Drink, 0, len(drinks))
	for _, d := range drinks {
		ok := true
		for _, ia := range d.Ingredients {
			if _, has := set[ia.Ingredient.Name]; !has {
				ok = false
				break
			}
		}
		if ok {
			result = append(result, d)
		}
	}
	return result
}

// Select 三輪挑選：隨機重複、確定性補足、最後一杯越界修正
func Select(target float64, drinks []*catalog.Drink, rnd RandomSource) []DrinkAmount {
	if target <= 0 {
		return []DrinkAmount{}
	}

	var (
		sum     float64
		emitted []*catalog.Drink
	)
	emit := func(d *catalog.Drink) {
		emitted = append(emitted, d)
		sum += d.AlcoholVolume
	}

	for _, d := range drinks {
		for attempt := 0; attempt < MaxRepetition-2; attempt++ {
			if rnd.Float64() < SkipProbability {
				continue
			}
			if sum+d.AlcoholVolume > target {
				break
			}
			emit(d)
		}
	}

	for _, d := range drinks {
		if sum+d.AlcoholVolume > target {
			continue
		}
		emit(d)
	}

	if len(drinks) > 0 {
		last := drinks[len(drinks)-1]
		if math.Abs(target-sum-last.AlcoholVolume) < target-sum {
			emit(last)
		}
	}

	result := group(emitted)
	common.LogDebug("飲品挑選完成",
		zap.Float64("target_ml", target),
		zap.Float64("selected_ml", sum),
		zap.Int("candidates", len(drinks)),
		zap.Int("distinct", len(result)),
	)
	return result
}

// group 依首次出現順序合併為杯數
func group(emitted []*catalog.Drink) []DrinkAmount {
	index := make(map[*catalog.Drink]int)
	result := make([]DrinkAmount, 0)
	for _, d := range emitted {
		if i, ok := index[d]; ok {
			result[i].Amount++
			continue
		}
		index[d] = len(result)
		result = append(result, DrinkAmount{Drink: d, Amount: 1})
	}
	return result
}

// TotalAlcohol 組合的總酒精量
func TotalAlcohol(amounts []DrinkAmount) float64 {
	var total float64
	for _, a := range amounts {
		total += float64(a.Amount) * a.Drink.AlcoholVolume
	}
	return total
}
