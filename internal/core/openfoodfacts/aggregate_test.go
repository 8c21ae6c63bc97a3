package openfoodfacts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePage(t *testing.T, body string) *CategoryPage {
	t.Helper()
	var page CategoryPage
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	return &page
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{"only qualifying product", spiritsBody, 40},
		{"broad category", `{"count": 1001, "products": [{"nutriments": {"alcohol": 40}}]}`, 0},
		{"threshold is inclusive", `{"count": 1000, "products": [{"nutriments": {"alcohol": 40}}]}`, 40},
		{"no products", `{"count": 0, "products": []}`, 0},
		{"all without data", `{"count": 2, "products": [{"no_nutrition_data": "on", "nutriments": {"alcohol": 12}}, {"nutriments": {}}]}`, 0},
		{"rounded to one decimal", `{"count": 3, "products": [{"nutriments": {"alcohol": 40}}, {"nutriments": {"alcohol": 37.5}}, {"nutriments": {"alcohol": 41.3}}]}`, 39.6},
		{"zero counts as data", `{"count": 2, "products": [{"nutriments": {"alcohol": 0}}, {"nutriments": {"alcohol": 15}}]}`, 7.5},
		{"non-finite strings are missing", `{"count": 3, "products": [{"nutriments": {"alcohol": 40}}, {"nutriments": {"alcohol": "NaN"}}, {"nutriments": {"alcohol": "Inf"}}]}`, 40},
		{"string values", `{"count": "2", "products": [{"no_nutrition_data": false, "nutriments": {"alcohol": "12"}}, {"nutriments": {"alcohol": "14"}}]}`, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(decodePage(t, tt.body), 1000))
		})
	}
}

func TestAggregateNilPage(t *testing.T) {
	assert.Zero(t, Aggregate(nil, 1000))
}

func TestCategoryFromLocation(t *testing.T) {
	assert.Equal(t, "spirits", categoryFromLocation("/category/spirits.json"))
	assert.Equal(t, "spirits", categoryFromLocation("https://world.openfoodfacts.org/category/spirits.json?page_size=50"))
	assert.Equal(t, "gins", categoryFromLocation("/category/gins"))
	assert.Empty(t, categoryFromLocation(""))
}
