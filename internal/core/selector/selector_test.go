package selector

import (
	"math/rand"
	"testing"

	"cocktail-recommender/internal/core/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRandom 依序回傳預設值，用完後重複最後一個
type fixedRandom struct {
	values []float64
	i      int
}

func (f *fixedRandom) Float64() float64 {
	if len(f.values) == 0 {
		return 0
	}
	v := f.values[min(f.i, len(f.values)-1)]
	f.i++
	return v
}

func always(v float64) *fixedRandom { return &fixedRandom{values: []float64{v}} }

func drink(name string, alcohol float64, ingredients ...string) *catalog.Drink {
	d := &catalog.Drink{Name: name, AlcoholVolume: alcohol}
	for _, ing := range ingredients {
		d.Ingredients = append(d.Ingredients, catalog.IngredientAmount{Ingredient: &catalog.Ingredient{Name: ing}})
	}
	return d
}

func TestSelectEmptyPool(t *testing.T) {
	assert.Empty(t, Select(30, nil, always(0)))
}

func TestSelectNonPositiveTarget(t *testing.T) {
	drinks := []*catalog.Drink{drink("A", 10), drink("B", 25), drink("Virgin Mojito", 0)}
	for _, rnd := range []RandomSource{always(0), always(0.95)} {
		assert.Empty(t, Select(0, drinks, rnd))
		assert.Empty(t, Select(-5, drinks, rnd))
	}
}

func TestSelectScenarioA(t *testing.T) {
	a := drink("A", 10)
	b := drink("B", 25)
	pool := []*catalog.Drink{b, a}

	for seed := int64(0); seed < 50; seed++ {
		result := Select(30, pool, rand.New(rand.NewSource(seed)))
		require.NotEmpty(t, result)

		total := TotalAlcohol(result)
		assert.Greater(t, total, 0.0)
		assert.LessOrEqual(t, total, 30.0+25.0)
		for _, r := range result {
			assert.True(t, r.Drink == a || r.Drink == b)
			assert.Positive(t, r.Amount)
		}
	}
}

func TestSelectAllSkippedFallsBackToDeterministicFill(t *testing.T) {
	a := drink("A", 10)
	b := drink("B", 25)

	// 第一輪全部略過；第二輪 B(25) 後 A 會超過 30；第三輪 |30-25-10| = 5 不小於 5
	result := Select(30, []*catalog.Drink{b, a}, always(0))
	require.Len(t, result, 1)
	assert.Same(t, b, result[0].Drink)
	assert.Equal(t, 1, result[0].Amount)
}

func TestSelectNeverSkippingRepeats(t *testing.T) {
	a := drink("A", 10)
	b := drink("B", 5)

	// 第一輪 A 兩次(20)，B 兩次(30)；第二輪 A 超過，B 加入(35)；第三輪不修正
	result := Select(35, []*catalog.Drink{a, b}, always(0.95))
	require.Len(t, result, 2)
	assert.Same(t, a, result[0].Drink)
	assert.Equal(t, 2, result[0].Amount)
	assert.Same(t, b, result[1].Drink)
	assert.Equal(t, 3, result[1].Amount)
	assert.Equal(t, 35.0, TotalAlcohol(result))
}

func TestSelectOvershootCorrection(t *testing.T) {
	a := drink("A", 20)
	b := drink("B", 8)

	// 第二輪 A(20) 後 B 超過 26；剩 6，|26-20-8| = 2 < 6，補上最後一杯
	result := Select(26, []*catalog.Drink{a, b}, always(0))
	require.Len(t, result, 2)
	assert.Same(t, b, result[1].Drink)
	assert.Equal(t, 28.0, TotalAlcohol(result))
}

func TestSelectFirstPassBreaksOnlyCurrentDrink(t *testing.T) {
	big := drink("Big", 50)
	small := drink("Small", 4)

	result := Select(10, []*catalog.Drink{big, small}, always(0.95))
	require.Len(t, result, 1)
	assert.Same(t, small, result[0].Drink)
	// 第一輪 2 杯，第二輪超過，第三輪 |10-8-4| = 2 不小於 2
	assert.Equal(t, 2, result[0].Amount)
}

func TestSelectTotalStaysBounded(t *testing.T) {
	pool := []*catalog.Drink{drink("A", 42), drink("B", 30), drink("C", 12), drink("D", 6)}
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		target := float64(i)
		total := TotalAlcohol(Select(target, pool, rnd))
		assert.LessOrEqual(t, total, target+6, "target %v", target)
	}
}

func TestEligible(t *testing.T) {
	martini := drink("Martini", 10, "gin", "vermouth")
	screwdriver := drink("Screwdriver", 12, "vodka", "orange juice")
	water := drink("Water", 0)
	all := []*catalog.Drink{martini, screwdriver, water}

	assert.Equal(t, all, Eligible(all, nil))

	got := Eligible(all, []string{"gin", "vermouth", "orange juice"})
	assert.Equal(t, []*catalog.Drink{martini, water}, got)

	assert.Equal(t, []*catalog.Drink{water}, Eligible(all, []string{"tonic"}))
}

func TestTargetAlcoholMl(t *testing.T) {
	assert.InDelta(t, 0.5*70*0.6*1.6, TargetAlcoholMl(0.5, 70), 1e-9)
	assert.Zero(t, TargetAlcoholMl(0, 80))

	custom := Target{BodyWaterFraction: 0.7, AlcoholGramToMl: 1}
	assert.InDelta(t, 1*80*0.7, custom.AlcoholMl(1, 80), 1e-9)
}
