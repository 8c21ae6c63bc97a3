package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func martini() *Drink {
	gin := &Ingredient{Name: "Gin", Alcohol: 40, resolved: true}
	bitters := &Ingredient{Name: "Orange bitters", Alcohol: 44.7, resolved: true}
	olive := &Ingredient{Name: "Olive", resolved: true}
	return &Drink{
		Name: "Martini",
		Ingredients: []IngredientAmount{
			{Ingredient: gin, Amount: 4, Unit: "centilitre"},
			{Ingredient: bitters, Amount: 2, Unit: "dash"},
			{Ingredient: olive, Amount: 1, Unit: "1"},
		},
	}
}

func TestAccumulate(t *testing.T) {
	d := martini()
	Accumulate([]*Drink{d})

	// 40 ml * 0.40 + 1.8 ml * 0.447
	assert.InDelta(t, 16.8046, d.AlcoholVolume, 1e-9)
	assert.InDelta(t, 41.8, d.TotalVolume, 1e-9)
	assert.InDelta(t, 16.8046/41.8, d.Concentration(), 1e-9)
}

func TestAccumulateIsIdempotent(t *testing.T) {
	d := martini()
	Accumulate([]*Drink{d})
	first := d.AlcoholVolume

	Accumulate([]*Drink{d})
	assert.Equal(t, first, d.AlcoholVolume)
	assert.Equal(t, first, AlcoholVolume(d.Ingredients))
}

func TestAccumulateNonAlcoholic(t *testing.T) {
	d := &Drink{
		Name: "Virgin",
		Ingredients: []IngredientAmount{
			{Ingredient: &Ingredient{Name: "Tonic"}, Amount: 200, Unit: "ml"},
			{Ingredient: &Ingredient{Name: "Salt", Alcohol: 0}, Amount: 3, Unit: "pinch"},
		},
	}
	Accumulate([]*Drink{d})
	assert.Zero(t, d.AlcoholVolume)
	assert.Equal(t, 200.0, d.TotalVolume)

	assert.Zero(t, (&Drink{}).Concentration())
}
