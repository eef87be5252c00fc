package recommend

import (
	"fmt"
	"os"
	"strings"
	"time"

	"recipe-chat/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
)

// RecipeRecord 語料中的一列；欄位缺漏在載入時補預設值，之後唯讀
type RecipeRecord struct {
	Title       string `csv:"title"`
	Ingredients string `csv:"ingredients"`
	Steps       string `csv:"steps"`
	Time        string `csv:"time"`
	Cuisine     string `csv:"cuisine"`
	Diet        string `csv:"diet"`
}

// LoadCorpus 讀取食譜語料。path 可以是本機 CSV 檔或 http(s) URL，
// fetchTimeout 只作用於遠端抓取。缺漏的欄位以空字串補齊（time 補 "0"），
// 缺陷只在此處修復，不會在查詢路徑上再浮現。
func LoadCorpus(path string, fetchTimeout time.Duration) ([]RecipeRecord, error) {
	data, err := readCorpusBytes(path, fetchTimeout)
	if err != nil {
		return nil, err
	}

	var records []RecipeRecord
	if err := gocsv.UnmarshalBytes(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse corpus csv: %w", err)
	}

	// 欄位修復
	for i := range records {
		if strings.TrimSpace(records[i].Time) == "" {
			records[i].Time = "0"
		}
	}

	common.LogInfo("語料載入完成",
		zap.String("path", path),
		zap.Int("筆數", len(records)),
	)
	return records, nil
}

// readCorpusBytes 取得語料原始內容；URL 以 resty 抓取
func readCorpusBytes(path string, fetchTimeout time.Duration) ([]byte, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		client := resty.New().
			SetRetryCount(2).
			SetHeader("Accept", "text/csv")
		if fetchTimeout > 0 {
			client.SetTimeout(fetchTimeout)
		}

		resp, err := client.R().Get(path)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch corpus: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("failed to fetch corpus: status %d", resp.StatusCode())
		}
		return resp.Body(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}
	return data, nil
}

// normalizeDiet 把原始飲食標籤折疊成分類；空字串表示 unknown
func normalizeDiet(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
	switch s {
	case "veg", "vegetarian", "veggie":
		return "veg"
	case "nonveg", "nonvegetarian", "egg", "eggetarian", "chicken", "fish", "mutton", "prawn":
		return "non-veg"
	case "vegan":
		return "vegan"
	}
	return ""
}
