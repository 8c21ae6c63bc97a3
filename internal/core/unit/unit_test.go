package unit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOneUnit(t *testing.T) {
	expected := map[string]float64{
		"ml":                1,
		"millilitre":        1,
		"centilitre":        10,
		"ounce":             29.5735,
		"fluid ounce":       29.5735,
		"splash":            3.7,
		"dash":              0.9,
		"teaspoon":          3.7,
		"teaspoon (metric)": 3.7,
		"bar spoon":         2.5,
		"tablespoon":        11.1,
		"Stemware":          150,
	}

	for label, ml := range expected {
		t.Run(label, func(t *testing.T) {
			require.True(t, IsVolumetric(label))
			assert.Equal(t, ml, Normalize(1, label))
		})
	}
}

func TestNormalizeIsLinear(t *testing.T) {
	for _, label := range Labels() {
		if !IsVolumetric(label) {
			continue
		}
		one := Normalize(1, label)
		assert.InDelta(t, 2.5*one, Normalize(2.5, label), 1e-9, label)
		assert.InDelta(t, 7*one, Normalize(7, label), 1e-9, label)
	}
}

func TestNonVolumetricNormalizesToZero(t *testing.T) {
	for _, label := range []string{"drop", "pinch", "1"} {
		require.True(t, IsUnit(label))
		assert.False(t, IsVolumetric(label))
		assert.True(t, IsTrivial(label))
		for _, amount := range []float64{0, 1, 3, 250} {
			assert.Zero(t, Normalize(amount, label))
		}
	}

	def, ok := Lookup("drop")
	require.True(t, ok)
	assert.Equal(t, 0.05, def.MlPerUnit)
}

func TestUnknownUnit(t *testing.T) {
	assert.False(t, IsUnit("gallon"))
	assert.False(t, IsVolumetric("gallon"))
	assert.False(t, IsTrivial("gallon"))
	assert.Zero(t, Normalize(3, "gallon"))

	_, ok := Lookup("stemware")
	assert.False(t, ok, "labels are case-sensitive")
}

func TestTrivialFlags(t *testing.T) {
	assert.True(t, IsTrivial("dash"))
	assert.False(t, IsTrivial("ounce"))
	assert.False(t, IsTrivial("Stemware"))
	assert.False(t, IsTrivial("teaspoon (metric)"))
	assert.Len(t, Labels(), 15)
}
