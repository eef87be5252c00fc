package dialogue

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// bestFuzzyMatch 在 names 中找與 query 最相似的一筆。
// 相似度用正規化的編輯距離（0~1），大小寫不敏感，
// 低於 cutoff 一律視為沒有命中。
func bestFuzzyMatch(names []string, query string, cutoff float64) (int, bool) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return 0, false
	}

	lev := metrics.NewLevenshtein()

	bestIdx := -1
	bestScore := 0.0
	for i, name := range names {
		score := strutil.Similarity(query, strings.ToLower(name), lev)
		if score >= cutoff && score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}

	if bestIdx < 0 {
		return 0, false
	}
	return bestIdx, true
}
