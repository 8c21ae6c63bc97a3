// Package catalog 將知識圖譜資料整理為飲品與食材目錄
package catalog

// Ingredient 食材，以名稱識別
type Ingredient struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	// Alcohol 酒精濃度，單位為百分點 (0..100)
	Alcohol float64 `json:"alcohol"`

	resolved bool
}

// Resolved 酒精濃度是否已確定
func (i *Ingredient) Resolved() bool {
	return i.resolved
}

// IngredientAmount 飲品中的一項食材用量
type IngredientAmount struct {
	Ingredient *Ingredient `json:"ingredient"`
	Amount     float64     `json:"amount"`
	Unit       string      `json:"unit"`
}

// ImageMetadata 圖片尺寸與位址
type ImageMetadata struct {
	URL         string `json:"url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	SizeInBytes int64  `json:"sizeInBytes,omitempty"`
}

// ImageInfo 原圖與縮圖資訊
type ImageInfo struct {
	MimeType string        `json:"mimeType"`
	Original ImageMetadata `json:"originalImage"`
	Scaled   ImageMetadata `json:"scaledImage"`
}

// Drink 飲品
type Drink struct {
	ID          string             `json:"id,omitempty"`
	Name        string             `json:"name"`
	Image       string             `json:"image,omitempty"`
	ImageInfo   *ImageInfo         `json:"imageInfo,omitempty"`
	Ingredients []IngredientAmount `json:"ingredients"`
	// AlcoholVolume 純酒精毫升數
	AlcoholVolume float64 `json:"alcoholVolume"`
	// TotalVolume 可換算為毫升的總體積
	TotalVolume float64 `json:"totalVolume"`
}

// HasIngredient 是否已含有指定食材
func (d *Drink) HasIngredient(name string) bool {
	for _, ia := range d.Ingredients {
		if ia.Ingredient != nil && ia.Ingredient.Name == name {
			return true
		}
	}
	return false
}

// Concentration 飲品整體酒精濃度 (0..1)，無法換算體積時為 0
func (d *Drink) Concentration() float64 {
	if d.TotalVolume <= 0 {
		return 0
	}
	return d.AlcoholVolume / d.TotalVolume
}

// Catalog 建立完成的目錄，對外唯讀
type Catalog struct {
	Drinks      []*Drink      `json:"drinks"`
	Ingredients []*Ingredient `json:"ingredients"`
}

// Ingredient 依名稱查詢食材
func (c *Catalog) Ingredient(name string) (*Ingredient, bool) {
	for _, ing := range c.Ingredients {
		if ing.Name == name {
			return ing, true
		}
	}
	return nil, false
}

// Relink 反序列化後將飲品中的食材指回目錄中的同名食材
func (c *Catalog) Relink() {
	byName := make(map[string]*Ingredient, len(c.Ingredients))
	for _, ing := range c.Ingredients {
		ing.resolved = true
		byName[ing.Name] = ing
	}

	for _, drink := range c.Drinks {
		for i := range drink.Ingredients {
			ia := &drink.Ingredients[i]
			if ia.Ingredient == nil {
				continue
			}
			if ing, ok := byName[ia.Ingredient.Name]; ok {
				ia.Ingredient = ing
				continue
			}
			ia.Ingredient.resolved = true
			byName[ia.Ingredient.Name] = ia.Ingredient
			c.Ingredients = append(c.Ingredients, ia.Ingredient)
		}
	}
}
