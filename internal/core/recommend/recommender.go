// Package recommend 對固定食譜語料做排序檢索。
// 索引在建構時算好一次，之後唯讀。
package recommend

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"recipe-chat/internal/core/nlp"
	"recipe-chat/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	// fallbackQuery 查詢完全沒有條件時的替代語句，讓空查詢仍有結果
	fallbackQuery = "easy quick dinner"

	// 相似度與食材重疊加分的混合權重
	similarityWeight = 0.85
	overlapWeight    = 0.15

	// maskedScore 被硬過濾排除的食譜拿到的分數，低於任何有效相似度
	maskedScore = -1.0
)

// recipeRow 單筆食譜的查詢期衍生欄位
type recipeRow struct {
	title            string
	ingredientsLower string
	cuisineLower     string
	dietRaw          string
	dietNorm         string
	timeRaw          string
	timeMinutes      int
	timeValid        bool
}

// Recommender 排序引擎；建構後唯讀，可被多個 session 並行查詢
type Recommender struct {
	records []RecipeRecord
	rows    []recipeRow
	index   *tfidfIndex
	details map[string]common.RecipeDetails
}

// NewRecommender 以靜態語料建構排序引擎
func NewRecommender(records []RecipeRecord) *Recommender {
	r := &Recommender{
		records: records,
		rows:    make([]recipeRow, len(records)),
		details: make(map[string]common.RecipeDetails, len(records)),
	}

	combined := make([]string, len(records))
	for i, rec := range records {
		r.rows[i] = recipeRow{
			title:            rec.Title,
			ingredientsLower: strings.ToLower(rec.Ingredients),
			cuisineLower:     strings.ToLower(rec.Cuisine),
			dietRaw:          rec.Diet,
			dietNorm:         normalizeDiet(rec.Diet),
			timeRaw:          strings.TrimSpace(rec.Time),
		}
		if n, err := strconv.Atoi(r.rows[i].timeRaw); err == nil {
			r.rows[i].timeMinutes = n
			r.rows[i].timeValid = true
		}

		// 標題大小寫不敏感；重複標題保留第一筆
		key := strings.ToLower(strings.TrimSpace(rec.Title))
		if _, ok := r.details[key]; !ok {
			r.details[key] = common.RecipeDetails{
				Ingredients: rec.Ingredients,
				Steps:       rec.Steps,
			}
		}

		combined[i] = strings.ToLower(strings.Join([]string{
			rec.Title, rec.Ingredients, rec.Steps, rec.Cuisine, rec.Diet,
		}, " "))
	}

	r.index = fitTFIDF(combined)

	common.LogInfo("排序引擎已建構",
		zap.Int("食譜數", len(records)),
		zap.Int("詞彙量", len(r.index.vocab)),
	)
	return r
}

// Size 語料筆數
func (r *Recommender) Size() int {
	return len(r.records)
}

// Search 對結構化查詢排序食譜。回傳候選清單與條件摘要文字。
// 同一份語料、同一個查詢，結果必然相同。
func (r *Recommender) Search(q *nlp.ParsedMessage, topK int) ([]common.Candidate, string) {
	// 組查詢語句：食材 + 飲食 + 菜系；全空時用固定替代語句
	parts := append([]string{}, q.Ingredients...)
	if q.Diet != "" {
		parts = append(parts, q.Diet)
	}
	if q.Cuisine != "" {
		parts = append(parts, q.Cuisine)
	}
	queryText := fallbackQuery
	if len(parts) > 0 {
		queryText = strings.Join(parts, " ")
	}

	sims := r.index.similarities(queryText)

	// 軟性加分：查詢食材出現在食譜食材文字中的數量，除以全語料最大值
	if len(q.Ingredients) > 0 {
		boost := make([]float64, len(r.rows))
		var maxBoost float64
		for i, row := range r.rows {
			var count float64
			for _, ing := range q.Ingredients {
				if strings.Contains(row.ingredientsLower, ing) {
					count++
				}
			}
			boost[i] = count
			if count > maxBoost {
				maxBoost = count
			}
		}
		if maxBoost > 0 {
			for i := range sims {
				sims[i] = similarityWeight*sims[i] + overlapWeight*boost[i]/maxBoost
			}
		}
	}

	// 硬過濾：布林遮罩，不是扣分；被排除的食譜無論分數多高都不得出現
	scores := make([]float64, len(r.rows))
	for i, row := range r.rows {
		if r.masked(row, q) {
			scores[i] = maskedScore
			continue
		}
		scores[i] = sims[i]
	}

	// 穩定排序，平分時維持語料原始順序
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	var out []common.Candidate
	for _, i := range order {
		if len(out) >= topK {
			break
		}
		// 過濾後語料可能為空：分數不為正的結果一律丟棄
		if scores[i] <= 0 {
			break
		}
		out = append(out, r.candidate(i))
	}

	return out, r.rationale(q)
}

// masked 判斷食譜是否被硬過濾排除
func (r *Recommender) masked(row recipeRow, q *nlp.ParsedMessage) bool {
	// 飲食：必須與正規化分類完全相等，不做部分比對或預設放行
	if q.Diet != "" && row.dietNorm != q.Diet {
		return true
	}

	// 時間：非數字的時間欄位視為不符
	if q.TimeLimit > 0 {
		if !row.timeValid || row.timeMinutes > q.TimeLimit {
			return true
		}
	}

	// 排除食材：任何排除詞出現在食材文字即淘汰
	for _, ex := range q.Excluded {
		if strings.Contains(row.ingredientsLower, ex) {
			return true
		}
	}

	// 菜系：整詞比對，不是子字串
	if q.Cuisine != "" && !wholeWordMatch(row.cuisineLower, q.Cuisine) {
		return true
	}

	return false
}

func wholeWordMatch(text, word string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	return re.MatchString(text)
}

// candidate 組出給使用者看的摘要；diet 用原始標籤
func (r *Recommender) candidate(i int) common.Candidate {
	row := r.rows[i]
	c := common.Candidate{
		Title:   row.title,
		Cuisine: r.records[i].Cuisine,
		Diet:    row.dietRaw,
	}
	if isCleanInt(row.timeRaw) {
		n, _ := strconv.Atoi(row.timeRaw)
		c.Time = common.IntPtr(n)
	}
	return c
}

// isCleanInt 欄位必須整串都是數字才算乾淨整數
func isCleanInt(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// rationale 實際用到的查詢條件摘要，順序固定
func (r *Recommender) rationale(q *nlp.ParsedMessage) string {
	var parts []string
	if len(q.Ingredients) > 0 {
		parts = append(parts, strings.Join(q.Ingredients, ", "))
	}
	if q.Diet != "" {
		parts = append(parts, q.Diet)
	}
	if q.TimeLimit > 0 {
		parts = append(parts, fmt.Sprintf("≤ %d min", q.TimeLimit))
	}
	if q.Cuisine != "" {
		parts = append(parts, q.Cuisine)
	}
	return strings.Join(parts, ", ")
}

// Details 依標題查食譜細節；查無資料回傳佔位內容，永不失敗
func (r *Recommender) Details(title string) common.RecipeDetails {
	key := strings.ToLower(strings.TrimSpace(title))
	if d, ok := r.details[key]; ok {
		return d
	}
	return common.RecipeDetails{
		Ingredients: common.DetailNotAvailable,
		Steps:       common.DetailNotAvailable,
	}
}
