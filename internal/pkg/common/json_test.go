package common

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseJSONBytes(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	if err := ParseJSONBytes([]byte(`{"a":1}`), &v); err != nil {
		t.Fatalf("ParseJSONBytes: %v", err)
	}
	if v.A != 1 {
		t.Errorf("a = %d, want 1", v.A)
	}
}

func TestParseJSONBytesRejectsTrailingData(t *testing.T) {
	var v map[string]interface{}

	// 第一份文件之後還有第二份：必須報錯，不能靜默吞掉
	err := ParseJSONBytes([]byte(`{"a":1} {"b":2}`), &v)
	if !errors.Is(err, ErrExtraJSONData) {
		t.Errorf("trailing document err = %v, want ErrExtraJSONData", err)
	}

	if err := ParseJSONBytes([]byte(`{"a":1} garbage`), &v); err == nil {
		t.Error("trailing garbage must not decode silently")
	}
}

func TestParseJSONBytesUsesNumber(t *testing.T) {
	var v map[string]interface{}
	if err := ParseJSONBytes([]byte(`{"n":12345678901234567890}`), &v); err != nil {
		t.Fatalf("ParseJSONBytes: %v", err)
	}
	if _, ok := v["n"].(json.Number); !ok {
		t.Errorf("numbers must decode as json.Number, got %T", v["n"])
	}
}
