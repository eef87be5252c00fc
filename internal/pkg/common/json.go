package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// ErrExtraJSONData 輸入在第一份 JSON 文件之後還有其他資料
var ErrExtraJSONData = errors.New("unexpected extra JSON data")

// ParseJSONBytes 解析 JSON 位元組切片到結構體。
// 統一設定：數字保留為 json.Number，第一份文件之後不得有多餘資料。
func ParseJSONBytes(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return err
		}
		return ErrExtraJSONData
	}
	return nil
}
