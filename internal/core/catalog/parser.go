package catalog

import (
	"math"
	"strconv"
	"strings"

	"cocktail-recommender/internal/core/unit"
)

// RawRecord 知識圖譜查詢回傳的一列資料
type RawRecord struct {
	CocktailID          string
	CocktailLabel       string
	ImageURL            *string
	IngredientLabel     *string
	IngredientAmountRaw *string
	IngredientUnitLabel *string
	AlcoholRaw          *string
	OffCategory         *string
}

// DiscardReason 資料列被捨棄的原因
type DiscardReason string

// 捨棄原因
const (
	ReasonIncomplete     DiscardReason = "incomplete ingredient row"
	ReasonAmountNaN      DiscardReason = "non-numeric amount"
	ReasonAlcoholNaN     DiscardReason = "non-numeric alcohol"
	ReasonUnknownUnit    DiscardReason = "unknown unit"
	ReasonNegativeAmount DiscardReason = "illegal negative amount"
	ReasonZeroAmount     DiscardReason = "illegal zero amount"
)

// ParsedRecord 驗證後的資料列
type ParsedRecord struct {
	CocktailID      string
	CocktailLabel   string
	ImageURL        string
	IngredientLabel string
	Amount          float64
	Unit            string
	Alcohol         float64
	HasAlcohol      bool
	Category        string
}

// ParseRecord 驗證並轉換一列資料，捨棄時回傳 nil 與原因
func ParseRecord(raw RawRecord) (*ParsedRecord, DiscardReason) {
	if raw.IngredientLabel == nil || raw.IngredientAmountRaw == nil || raw.IngredientUnitLabel == nil {
		return nil, ReasonIncomplete
	}

	amount, ok := parseNumber(*raw.IngredientAmountRaw)
	if !ok {
		return nil, ReasonAmountNaN
	}

	var alcohol float64
	hasAlcohol := false
	if raw.AlcoholRaw != nil {
		alcohol, ok = parseNumber(*raw.AlcoholRaw)
		if !ok {
			return nil, ReasonAlcoholNaN
		}
		hasAlcohol = true
	}

	label := *raw.IngredientUnitLabel
	def, known := unit.Lookup(label)
	if !known {
		return nil, ReasonUnknownUnit
	}

	if amount < 0 {
		return nil, ReasonNegativeAmount
	}
	if amount == 0 && def.Volumetric {
		return nil, ReasonZeroAmount
	}

	rec := &ParsedRecord{
		CocktailID:      raw.CocktailID,
		CocktailLabel:   raw.CocktailLabel,
		IngredientLabel: *raw.IngredientLabel,
		Amount:          amount,
		Unit:            label,
		Alcohol:         alcohol,
		HasAlcohol:      hasAlcohol,
	}
	if raw.ImageURL != nil {
		rec.ImageURL = *raw.ImageURL
	}
	// 含冒號的是區域化分類，只查詢全球資料庫
	if raw.OffCategory != nil && !strings.Contains(*raw.OffCategory, ":") {
		rec.Category = *raw.OffCategory
	}

	// 非直觀的體積單位直接換算為毫升
	if def.Volumetric && !def.Trivial {
		rec.Amount = unit.Normalize(amount, label)
		rec.Unit = unit.ML
	}

	return rec, ""
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
