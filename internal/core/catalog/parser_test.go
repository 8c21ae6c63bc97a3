package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func row(id, label, ingredient, amount, unitLabel string) RawRecord {
	return RawRecord{
		CocktailID:          id,
		CocktailLabel:       label,
		IngredientLabel:     strp(ingredient),
		IngredientAmountRaw: strp(amount),
		IngredientUnitLabel: strp(unitLabel),
	}
}

func TestParseRecordDiscards(t *testing.T) {
	tests := []struct {
		name   string
		raw    RawRecord
		reason DiscardReason
	}{
		{
			name:   "missing ingredient",
			raw:    RawRecord{CocktailID: "Q1", CocktailLabel: "Martini"},
			reason: ReasonIncomplete,
		},
		{
			name: "missing unit",
			raw: RawRecord{
				CocktailID: "Q1", CocktailLabel: "Martini",
				IngredientLabel: strp("gin"), IngredientAmountRaw: strp("4"),
			},
			reason: ReasonIncomplete,
		},
		{
			name:   "non-numeric amount wins over unknown unit",
			raw:    row("Q1", "Martini", "gin", "abc", "bucket"),
			reason: ReasonAmountNaN,
		},
		{
			name:   "NaN literal amount",
			raw:    row("Q1", "Martini", "gin", "NaN", "ml"),
			reason: ReasonAmountNaN,
		},
		{
			name: "non-numeric alcohol",
			raw: func() RawRecord {
				r := row("Q1", "Martini", "gin", "4", "centilitre")
				r.AlcoholRaw = strp("strong")
				return r
			}(),
			reason: ReasonAlcoholNaN,
		},
		{
			name:   "unknown unit",
			raw:    row("Q1", "Martini", "gin", "4", "bucket"),
			reason: ReasonUnknownUnit,
		},
		{
			name:   "negative volumetric amount",
			raw:    row("Q1", "Martini", "gin", "-1", "ml"),
			reason: ReasonNegativeAmount,
		},
		{
			name:   "negative count amount",
			raw:    row("Q1", "Martini", "olive", "-1", "1"),
			reason: ReasonNegativeAmount,
		},
		{
			name:   "zero volumetric amount",
			raw:    row("Q1", "Martini", "gin", "0", "centilitre"),
			reason: ReasonZeroAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, reason := ParseRecord(tt.raw)
			assert.Nil(t, rec)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestParseRecordZeroOnNonVolumetricUnit(t *testing.T) {
	for _, label := range []string{"1", "drop", "pinch"} {
		rec, reason := ParseRecord(row("Q1", "Martini", "olive", "0", label))
		require.NotNil(t, rec, label)
		assert.Empty(t, reason)
		assert.Zero(t, rec.Amount)
		assert.Equal(t, label, rec.Unit)
	}
}

func TestParseRecordUnitDisplay(t *testing.T) {
	rec, _ := ParseRecord(row("Q1", "Martini", "gin", "2", "ounce"))
	require.NotNil(t, rec)
	assert.Equal(t, "ml", rec.Unit)
	assert.InDelta(t, 59.147, rec.Amount, 1e-9)

	rec, _ = ParseRecord(row("Q1", "Martini", "wine", "1", "Stemware"))
	require.NotNil(t, rec)
	assert.Equal(t, "ml", rec.Unit)
	assert.Equal(t, 150.0, rec.Amount)

	rec, _ = ParseRecord(row("Q1", "Martini", "bitters", "2", "dash"))
	require.NotNil(t, rec)
	assert.Equal(t, "dash", rec.Unit)
	assert.Equal(t, 2.0, rec.Amount)
}

func TestParseRecordOptionalFields(t *testing.T) {
	r := row("Q1", "Martini", "gin", " 4.5 ", "centilitre")
	r.AlcoholRaw = strp("40")
	r.OffCategory = strp("gins")
	r.ImageURL = strp("http://commons.wikimedia.org/wiki/Special:FilePath/Martini.jpg")

	rec, reason := ParseRecord(r)
	require.NotNil(t, rec)
	assert.Empty(t, reason)
	assert.Equal(t, 4.5, rec.Amount)
	assert.True(t, rec.HasAlcohol)
	assert.Equal(t, 40.0, rec.Alcohol)
	assert.Equal(t, "gins", rec.Category)
	assert.NotEmpty(t, rec.ImageURL)

	rec, _ = ParseRecord(row("Q1", "Martini", "gin", "4", "centilitre"))
	require.NotNil(t, rec)
	assert.False(t, rec.HasAlcohol)
	assert.Zero(t, rec.Alcohol)
}

func TestParseRecordDropsRegionalCategory(t *testing.T) {
	r := row("Q1", "Martini", "gin", "4", "centilitre")
	r.OffCategory = strp("fr:gins")

	rec, _ := ParseRecord(r)
	require.NotNil(t, rec)
	assert.Empty(t, rec.Category)
}
