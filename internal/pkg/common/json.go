package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ParseJSONBytes 解析 JSON 位元組切片到結構體
func ParseJSONBytes(data []byte, v interface{}) error {
	return decodeJSON(bytes.NewReader(data), v, false)
}

// ParseJSONBytesStrict 解析 JSON 位元組切片到結構體（禁止未知欄位）
func ParseJSONBytesStrict(data []byte, v interface{}) error {
	return decodeJSON(bytes.NewReader(data), v, true)
}

func decodeJSON(r io.Reader, v interface{}, disallowUnknown bool) error {
	dec := json.NewDecoder(r)
	if disallowUnknown {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}

// FlexFloat 可接受 JSON 數字或數字字串的浮點數
// 外部資料來源偶爾以字串回傳數值
type FlexFloat struct {
	Value float64
	Valid bool
}

// UnmarshalJSON 實現 json.Unmarshaler
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = FlexFloat{}
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		// 無法解析或非有限值視為缺值
		*f = FlexFloat{}
		return nil
	}
	*f = FlexFloat{Value: v, Valid: true}
	return nil
}

// MarshalJSON 實現 json.Marshaler
func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
