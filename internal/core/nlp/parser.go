// Package nlp 將使用者的自由文字轉成結構化查詢。
// ParseMessage 是純函數：無副作用、相同輸入必得相同輸出。
package nlp

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ParsedMessage 單則使用者訊息的意圖與實體
type ParsedMessage struct {
	Raw            string   `json:"raw"`
	IsGreeting     bool     `json:"is_greeting"`
	IsAffirmative  bool     `json:"is_affirmative"`
	IsNegative     bool     `json:"is_negative"`
	SelectionIndex int      `json:"selection_index"` // 1-based；0 表示沒有
	SelectionName  string   `json:"selection_name"`
	Diet           string   `json:"diet"`       // veg | non-veg | vegan | ""
	Cuisine        string   `json:"cuisine"`    // 固定詞彙表之一，或 ""
	TimeLimit      int      `json:"time_limit"` // 分鐘；0 表示沒有
	Ingredients    []string `json:"ingredients"`
	Excluded       []string `json:"excluded"`
}

// ---- 詞彙表 ----

var greetings = wordSet("hi", "hello", "hey", "hola", "namaste", "yo", "hii", "helo")

var yesWords = wordSet(
	"yes", "y", "yeah", "yep", "sure", "ok", "okay", "ya", "proceed", "confirm",
	"go", "goahead", "looks", "good", "helpful",
)

var noWords = wordSet(
	"no", "n", "nope", "nah", "cancel", "back", "another", "different", "unhelpful", "not",
)

// commonFixes 常見錯字，整段替換
var commonFixes = [][2]string{
	{"tomatos", "tomato"},
	{"spinch", "spinach"},
	{"chilli", "chili"},
	{"chillies", "chili"},
	{"pototo", "potato"},
	{"paneeer", "paneer"},
	{"tamoto", "tomato"},
}

// cuisines 固定菜系詞彙表；依序取第一個整詞命中，保持解析決定性
var cuisines = []string{
	"indian", "italian", "chinese", "thai", "mexican",
	"american", "mediterranean", "japanese", "korean",
}

// stopwords 永遠不當作食材的詞
var stopwords = wordSet(
	"the", "a", "an", "and", "or", "to", "of", "for", "in", "on", "with", "is", "are", "be", "it", "this", "that",
	"i", "you", "me", "my", "your", "please", "some", "make", "do", "like", "want", "show", "give", "need",
	"have", "got", "something", "dish", "recipe", "recipes", "find", "cook", "prepare",
	"under", "within", "less", "more", "than", "time", "minutes", "minute", "mins", "min",
	"without", "no", "not", "can", "quick", "easy", "fast", "hi", "hello", "hey",
)

// controlWords 時間/排除語法用詞，不得流入食材
var controlWords = wordSet("under", "within", "time", "minutes", "minute", "mins", "min", "without", "no")

// ---- 正規表達式 ----

var (
	nonvegRe = regexp.MustCompile(`\b(?:non[-\s]?veg(?:etarian)?|nonvegetarian|n\s*veg|nv)\b`)
	vegRe    = regexp.MustCompile(`\b(?:veg(?:etarian)?)\b`)
	veganRe  = regexp.MustCompile(`\bvegan\b`)

	nonTextRe    = regexp.MustCompile(`[^a-z0-9\s\-]`)
	selectionRe  = regexp.MustCompile(`^\s*(\d{1,2})\s*$`)
	timeBoundRe  = regexp.MustCompile(`(?:under|within|less\s+than)\s*(\d{1,3})\s*(?:min|mins|minutes?)\b`)
	timeBareRe   = regexp.MustCompile(`\b(\d{1,3})\s*(?:min|mins|minutes?)\b`)
	withoutRe    = regexp.MustCompile(`\bwithout\s+([a-z\s,]+)`)
	noSingleRe   = regexp.MustCompile(`\bno\s+([a-z]+)\b`)
	excludeSplit = regexp.MustCompile(`[,\s]+`)

	cuisineRes = buildCuisineRes()
)

func buildCuisineRes() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(cuisines))
	for _, c := range cuisines {
		m[c] = regexp.MustCompile(`\b` + c + `\b`)
	}
	return m
}

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// ---- 前處理 ----

// cleanText 小寫、修錯字、去掉 [a-z0-9 空白 連字號] 以外的字元、合併空白
func cleanText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, fix := range commonFixes {
		s = strings.ReplaceAll(s, fix[0], fix[1])
	}
	s = nonTextRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// detectDiet 回傳 vegan、non-veg、veg 或空字串；優先序固定
func detectDiet(s string) string {
	if veganRe.MatchString(s) {
		return "vegan"
	}
	if nonvegRe.MatchString(s) {
		return "non-veg"
	}
	if vegRe.MatchString(s) {
		return "veg"
	}
	return ""
}

// stripDietTerms 移除飲食描述，避免被切成食材 token
func stripDietTerms(s string) string {
	s = veganRe.ReplaceAllString(s, " ")
	s = nonvegRe.ReplaceAllString(s, " ")
	s = vegRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// extractTime 解析時間上限（分鐘）；0 表示沒有
func extractTime(s string) int {
	if m := timeBoundRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := timeBareRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if strings.Contains(s, "half an hour") || strings.Contains(s, "half hour") {
		return 30
	}
	return 0
}

func isDigits(s string) bool {
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

// usableTokens 濾掉停用詞、純數字與單字元 token
func usableTokens(s string) []string {
	var out []string
	for _, t := range strings.Fields(s) {
		if _, stop := stopwords[t]; stop {
			continue
		}
		if isDigits(t) || len(t) <= 1 {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ---- 主解析 ----

// ParseMessage 解析一則訊息；任何輸入都不會失敗，
// 無法辨識的部分以零值欄位呈現。
func ParseMessage(raw string) *ParsedMessage {
	s := cleanText(raw)

	// 先抓飲食類型，再把它從文字中拿掉，
	// 否則 "non veg" 會被切成 "non" 和 "veg" 兩個食材
	diet := detectDiet(s)
	woDiet := stripDietTerms(s)

	// 意圖旗標
	words := strings.Fields(woDiet)
	wordsSet := make(map[string]struct{}, len(words))
	for _, w := range words {
		wordsSet[w] = struct{}{}
	}
	isGreet := intersects(wordsSet, greetings) && len(wordsSet) <= 3
	isYes := intersects(wordsSet, yesWords) ||
		strings.Contains(s, "go ahead") || strings.Contains(s, "looks good")
	isNo := intersects(wordsSet, noWords) ||
		strings.Contains(s, "not helpful") || strings.Contains(s, "other options") ||
		strings.Contains(s, "see other")

	// 以數字選擇（如 "2"）
	selectionIndex := 0
	if m := selectionRe.FindStringSubmatch(woDiet); m != nil {
		selectionIndex, _ = strconv.Atoi(m[1])
	}

	// 以名稱選擇：非問候/是/否，且 1~6 個 token 的短句
	selectionName := ""
	if !isGreet && !isYes && !isNo {
		if n := len(words); n >= 1 && n <= 6 {
			selectionName = strings.TrimSpace(raw)
		}
	}

	// 菜系
	cuisine := ""
	for _, c := range cuisines {
		if cuisineRes[c].MatchString(s) {
			cuisine = c
			break
		}
	}

	// 時間上限
	timeLimit := extractTime(s)

	// 排除食材："without onion, garlic"、"no garlic"
	excludedSet := make(map[string]struct{})
	for _, m := range withoutRe.FindAllStringSubmatch(woDiet, -1) {
		for _, w := range excludeSplit.Split(m[1], -1) {
			if w = strings.TrimSpace(w); w != "" {
				excludedSet[w] = struct{}{}
			}
		}
	}
	for _, m := range noSingleRe.FindAllStringSubmatch(woDiet, -1) {
		excludedSet[strings.TrimSpace(m[1])] = struct{}{}
	}

	// 剩下的 token 當作食材（去掉控制詞與已排除者，保留首見順序）
	var ingredients []string
	seen := make(map[string]struct{})
	for _, t := range usableTokens(woDiet) {
		if _, ctrl := controlWords[t]; ctrl {
			continue
		}
		if _, ex := excludedSet[t]; ex {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		ingredients = append(ingredients, t)
	}

	return &ParsedMessage{
		Raw:            raw,
		IsGreeting:     isGreet,
		IsAffirmative:  isYes,
		IsNegative:     isNo,
		SelectionIndex: selectionIndex,
		SelectionName:  selectionName,
		Diet:           diet,
		Cuisine:        cuisine,
		TimeLimit:      timeLimit,
		Ingredients:    ingredients,
		Excluded:       sortedKeys(excludedSet),
	}
}

func intersects(a map[string]struct{}, b map[string]struct{}) bool {
	for w := range a {
		if _, ok := b[w]; ok {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
