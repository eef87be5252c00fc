package common

// Candidate 搜尋結果中展示給使用者的食譜摘要
// Time 為 nil 表示來源的 time 欄位不是乾淨的整數
type Candidate struct {
	Title   string `json:"title"`
	Time    *int   `json:"time"`
	Cuisine string `json:"cuisine"`
	Diet    string `json:"diet"` // 原始飲食標籤，不是正規化分類
}

// RecipeDetails 單一食譜的細節欄位
type RecipeDetails struct {
	Ingredients string `json:"ingredients"`
	Steps       string `json:"steps"`
}

// DetailNotAvailable 查無食譜時的佔位內容；Details 永不失敗
const DetailNotAvailable = "N/A"

// IntPtr 回傳整數指標，方便建構 Candidate
func IntPtr(v int) *int {
	return &v
}
