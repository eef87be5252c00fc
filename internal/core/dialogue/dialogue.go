// Package dialogue 擁有逐輪對話的狀態機。
// NextTurn 是純轉移函數：狀態與記憶由呼叫端傳入、新值傳回，
// 對排序引擎的存取只透過注入的能力函數。
package dialogue

import (
	"recipe-chat/internal/core/nlp"
	"recipe-chat/internal/pkg/common"
)

// State 對話狀態
type State string

const (
	// StateIdle 預設狀態，等待查詢
	StateIdle State = "idle"
	// StateAwaitSelection 候選清單已顯示，等待使用者挑選
	StateAwaitSelection State = "await_selection"
	// StateConfirm 食譜細節已顯示，等待 yes/no
	StateConfirm State = "confirm"
	// StateClosed 推薦成功後的終態；任何輸入都停留在此
	StateClosed State = "closed"
)

// DefaultFuzzyCutoff 名稱模糊比對的相似度門檻
const DefaultFuzzyCutoff = 0.6

// QuerySnapshot 上一次查詢的可比較子集
type QuerySnapshot struct {
	Ingredients []string `json:"ingredients"`
	Diet        string   `json:"diet"`
	Cuisine     string   `json:"cuisine"`
	TimeLimit   int      `json:"time_limit"`
	Excluded    []string `json:"excluded"`
}

// Memory 單一對話的跨輪記憶。成功確認後整份清空，
// 拒絕確認只清掉 ChosenTitle。
type Memory struct {
	LastQuery      *QuerySnapshot     `json:"last_query,omitempty"`
	LastCandidates []common.Candidate `json:"last_candidates,omitempty"`
	ChosenTitle    string             `json:"chosen_title,omitempty"`
}

// SearchFunc 注入的搜尋能力；對對話引擎而言必須無副作用
type SearchFunc func(q *nlp.ParsedMessage) ([]common.Candidate, string)

// DetailFunc 注入的細節查詢能力；永不失敗，查無資料回傳佔位內容
type DetailFunc func(title string) common.RecipeDetails

// Engine 對話引擎；本身不帶可變狀態，可被多個 session 共用
type Engine struct {
	fuzzyCutoff float64
}

// New 建立對話引擎。cutoff 不在 (0,1] 內時使用預設值。
func New(cutoff float64) *Engine {
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultFuzzyCutoff
	}
	return &Engine{fuzzyCutoff: cutoff}
}

// NextTurn 處理一輪對話。所有路徑都回傳合法的 (state, memory, reply)，
// 不會對畸形輸入拋出錯誤。
func (e *Engine) NextTurn(state State, mem Memory, q *nlp.ParsedMessage, search SearchFunc, detail DetailFunc) (State, Memory, string) {
	// 終態吸收：關閉後不再有任何轉移
	if state == StateClosed {
		return StateClosed, mem, replyClosed
	}

	// 問候只在 IDLE 回應，記憶不動
	if q.IsGreeting && state == StateIdle {
		return StateIdle, mem, replyWelcome
	}

	if state == StateIdle || state == StateAwaitSelection {
		if state == StateAwaitSelection {
			// 先嘗試把輸入當成清單選擇；數字優先於名稱
			if c, ok := pickCandidate(mem.LastCandidates, q.SelectionIndex, q.SelectionName, e.fuzzyCutoff); ok {
				mem.ChosenTitle = c.Title
				return StateConfirm, mem, recipeCard(c.Title, detail(c.Title))
			}

			// 查詢沒有實質改變且清單還在，就不重搜，請使用者挑選
			if !queryChanged(mem.LastQuery, q) && len(mem.LastCandidates) > 0 {
				return StateAwaitSelection, mem, replyPickFromList
			}
		}
		return e.runSearch(mem, q, search)
	}

	if state == StateConfirm {
		if q.IsAffirmative {
			title := mem.ChosenTitle
			if title == "" {
				title = "the recipe"
			}
			// 成功收尾：記憶全清、對話關閉
			return StateClosed, Memory{}, closingReply(title)
		}
		if q.IsNegative {
			mem.ChosenTitle = ""
			return StateIdle, mem, replyTryOthers
		}

		// 同一份清單裡換一個選擇
		if c, ok := pickCandidate(mem.LastCandidates, q.SelectionIndex, q.SelectionName, e.fuzzyCutoff); ok {
			mem.ChosenTitle = c.Title
			return StateConfirm, mem, recipeCard(c.Title, detail(c.Title))
		}
		return StateIdle, mem, replyUpdateConstraints
	}

	return StateIdle, mem, replyPrompt
}

// runSearch 搜尋子流程：空結果不覆蓋既有清單
func (e *Engine) runSearch(mem Memory, q *nlp.ParsedMessage, search SearchFunc) (State, Memory, string) {
	cands, _ := search(q)
	if len(cands) == 0 {
		return StateIdle, mem, replyNoMatch
	}

	mem.LastQuery = snapshot(q)
	mem.LastCandidates = cands
	return StateAwaitSelection, mem, listReply(q, cands)
}

// snapshot 擷取查詢的可比較子集
func snapshot(q *nlp.ParsedMessage) *QuerySnapshot {
	return &QuerySnapshot{
		Ingredients: append([]string{}, q.Ingredients...),
		Diet:        q.Diet,
		Cuisine:     q.Cuisine,
		TimeLimit:   q.TimeLimit,
		Excluded:    append([]string{}, q.Excluded...),
	}
}

// queryChanged 判斷查詢是否實質改變：
// 食材與排除比集合，其餘比值；沒有前一次查詢視為已改變
func queryChanged(prev *QuerySnapshot, q *nlp.ParsedMessage) bool {
	if prev == nil {
		return true
	}
	if !sameSet(prev.Ingredients, q.Ingredients) {
		return true
	}
	if !sameSet(prev.Excluded, q.Excluded) {
		return true
	}
	return prev.Diet != q.Diet || prev.Cuisine != q.Cuisine || prev.TimeLimit != q.TimeLimit
}

func sameSet(a, b []string) bool {
	as := make(map[string]struct{}, len(a))
	for _, v := range a {
		as[v] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, v := range b {
		bs[v] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for v := range as {
		if _, ok := bs[v]; !ok {
			return false
		}
	}
	return true
}

// pickCandidate 從候選清單挑選：先用 1-based 數字（含邊界檢查），
// 再用標題的模糊比對，最多回傳一個最佳結果
func pickCandidate(cands []common.Candidate, index int, name string, cutoff float64) (common.Candidate, bool) {
	if len(cands) == 0 {
		return common.Candidate{}, false
	}

	if index > 0 && index <= len(cands) {
		return cands[index-1], true
	}

	if name != "" {
		titles := make([]string, len(cands))
		for i, c := range cands {
			titles[i] = c.Title
		}
		if i, ok := bestFuzzyMatch(titles, name, cutoff); ok {
			return cands[i], true
		}
	}

	return common.Candidate{}, false
}
