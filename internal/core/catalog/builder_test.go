package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGroupsByCocktailID(t *testing.T) {
	gin := row("Q1", "Martini", "gin", "6", "centilitre")
	gin.AlcoholRaw = strp("40")
	gin.ImageURL = strp("first.jpg")

	vermouth := row("Q1", "Martini", "vermouth", "1", "centilitre")
	vermouth.OffCategory = strp("vermouths")
	vermouth.ImageURL = strp("second.jpg")

	// 同名但不同實體
	other := row("Q2", "Martini", "vodka", "5", "centilitre")

	cat, stats := Build([]RawRecord{gin, vermouth, other})

	require.Len(t, cat.Drinks, 2)
	assert.Equal(t, "Q1", cat.Drinks[0].ID)
	assert.Equal(t, "Q2", cat.Drinks[1].ID)
	assert.Equal(t, "Martini", cat.Drinks[1].Name)
	assert.Equal(t, "first.jpg", cat.Drinks[0].Image)
	require.Len(t, cat.Drinks[0].Ingredients, 2)
	assert.Equal(t, "gin", cat.Drinks[0].Ingredients[0].Ingredient.Name)
	assert.Equal(t, "vermouth", cat.Drinks[0].Ingredients[1].Ingredient.Name)
	assert.Zero(t, cat.Drinks[0].AlcoholVolume)

	require.Len(t, cat.Ingredients, 3)
	ginIng, ok := cat.Ingredient("gin")
	require.True(t, ok)
	assert.Equal(t, 40.0, ginIng.Alcohol)
	assert.True(t, ginIng.Resolved())

	vermouthIng, ok := cat.Ingredient("vermouth")
	require.True(t, ok)
	assert.Equal(t, "vermouths", vermouthIng.Category)
	assert.False(t, vermouthIng.Resolved())

	assert.Equal(t, 3, stats.Rows)
	assert.Zero(t, stats.Discarded)
}

func TestBuildSharesIngredientAcrossDrinks(t *testing.T) {
	first := row("Q1", "Gimlet", "gin", "6", "centilitre")
	first.OffCategory = strp("gins")
	second := row("Q2", "Negroni", "gin", "3", "centilitre")
	second.OffCategory = strp("london-dry-gins")

	cat, _ := Build([]RawRecord{first, second})

	require.Len(t, cat.Ingredients, 1)
	assert.Same(t, cat.Drinks[0].Ingredients[0].Ingredient, cat.Drinks[1].Ingredients[0].Ingredient)
	assert.Equal(t, "gins", cat.Ingredients[0].Category, "first-seen category wins")
}

func TestBuildSkipsDuplicateIngredient(t *testing.T) {
	madeFrom := row("Q1", "Martini", "gin", "6", "centilitre")
	contains := row("Q1", "Martini", "gin", "5", "centilitre")

	cat, stats := Build([]RawRecord{madeFrom, contains})

	require.Len(t, cat.Drinks, 1)
	require.Len(t, cat.Drinks[0].Ingredients, 1)
	assert.Equal(t, 6.0, cat.Drinks[0].Ingredients[0].Amount)
	assert.Equal(t, 1, stats.Duplicates)
}

func TestBuildCountsDiscards(t *testing.T) {
	records := []RawRecord{
		{CocktailID: "Q1", CocktailLabel: "Garnish Only"},
		row("Q2", "Broken", "gin", "-2", "ml"),
		row("Q2", "Broken", "tonic", "0", "ml"),
		row("Q3", "Fine", "gin", "4", "centilitre"),
	}

	cat, stats := Build(records)

	require.Len(t, cat.Drinks, 1)
	assert.Equal(t, "Fine", cat.Drinks[0].Name)
	assert.Equal(t, 4, stats.Rows)
	assert.Equal(t, 3, stats.Discarded)
	assert.Equal(t, 2, stats.AffectedDrinks)
	assert.Equal(t, 1, stats.DiscardedByReason[ReasonIncomplete])
	assert.Equal(t, 1, stats.DiscardedByReason[ReasonNegativeAmount])
	assert.Equal(t, 1, stats.DiscardedByReason[ReasonZeroAmount])
}

func TestBuildEmpty(t *testing.T) {
	cat, stats := Build(nil)
	assert.Empty(t, cat.Drinks)
	assert.Empty(t, cat.Ingredients)
	assert.Zero(t, stats.Rows)
}
