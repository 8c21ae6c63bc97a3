// Package unit 定義知識圖譜回報的計量單位與毫升換算
package unit

import "sort"

// ML 毫升的單位標籤
const ML = "ml"

// Definition 單位定義
type Definition struct {
	Label      string
	MlPerUnit  float64
	Volumetric bool
	Trivial    bool
}

// 單位表為封閉集合，執行期間不可擴充
var table = map[string]Definition{
	"ml":                {Label: "ml", MlPerUnit: 1, Volumetric: true, Trivial: true},
	"millilitre":        {Label: "millilitre", MlPerUnit: 1, Volumetric: true, Trivial: true},
	"centilitre":        {Label: "centilitre", MlPerUnit: 10, Volumetric: true, Trivial: true},
	"ounce":             {Label: "ounce", MlPerUnit: 29.5735, Volumetric: true},
	"fluid ounce":       {Label: "fluid ounce", MlPerUnit: 29.5735, Volumetric: true},
	"splash":            {Label: "splash", MlPerUnit: 3.7, Volumetric: true, Trivial: true},
	"dash":              {Label: "dash", MlPerUnit: 0.9, Volumetric: true, Trivial: true},
	"teaspoon":          {Label: "teaspoon", MlPerUnit: 3.7, Volumetric: true, Trivial: true},
	"teaspoon (metric)": {Label: "teaspoon (metric)", MlPerUnit: 3.7, Volumetric: true},
	"bar spoon":         {Label: "bar spoon", MlPerUnit: 2.5, Volumetric: true, Trivial: true},
	"tablespoon":        {Label: "tablespoon", MlPerUnit: 11.1, Volumetric: true, Trivial: true},
	"Stemware":          {Label: "Stemware", MlPerUnit: 150, Volumetric: true},
	// drop 與 pinch 保留名目換算值，但不計入體積
	"drop":  {Label: "drop", MlPerUnit: 0.05, Trivial: true},
	"pinch": {Label: "pinch", MlPerUnit: 0.31, Trivial: true},
	"1":     {Label: "1", Trivial: true},
}

// Lookup 查詢單位定義
func Lookup(label string) (Definition, bool) {
	def, ok := table[label]
	return def, ok
}

// IsUnit 是否為已知單位
func IsUnit(label string) bool {
	_, ok := table[label]
	return ok
}

// IsVolumetric 是否具有實際體積
func IsVolumetric(label string) bool {
	return table[label].Volumetric
}

// IsTrivial 是否可直接顯示給使用者
func IsTrivial(label string) bool {
	return table[label].Trivial
}

// Normalize 將數量換算為毫升，非體積單位與未知單位回傳 0
func Normalize(amount float64, label string) float64 {
	def, ok := table[label]
	if !ok || !def.Volumetric {
		return 0
	}
	return amount * def.MlPerUnit
}

// Labels 所有單位標籤（排序後）
func Labels() []string {
	labels := make([]string, 0, len(table))
	for label := range table {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
