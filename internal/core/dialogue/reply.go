package dialogue

import (
	"fmt"
	"strings"

	"recipe-chat/internal/core/nlp"
	"recipe-chat/internal/pkg/common"
)

// 固定回覆文案；Markdown 粗體交給前端渲染
const (
	replyClosed = "This chat is closed. Click **New chat** to start again."

	replyWelcome = "Hi there! I'm **Mika** 👋\n" +
		"What recipe you need? Just tell me the ingredients (and any limits like *veg / non-veg / vegan*, cuisine, or time)."

	replyPickFromList = "Please reply with the **number** or **dish name** from the list. " +
		"If you want to change ingredients, just type them."

	replyNoMatch = "I couldn't find a good match. Add more details (e.g., cuisine or time), or remove exclusions."

	replyTryOthers = "No problem. Share new ingredients or constraints, and I'll suggest more dishes."

	replyUpdateConstraints = "Tell me your updated ingredients or constraints, and I'll fetch a new list."

	replyPrompt = "Tell me your ingredients (e.g., *paneer and tomato, veg/non-veg, under 20 minutes*)."
)

// closingReply 成功收尾訊息
func closingReply(title string) string {
	return fmt.Sprintf("Great! Enjoy **%s** 🎉\nThis chat is now closed. Click **New chat** to start over.", title)
}

// confirmPrompt 確認提示
func confirmPrompt(title string) string {
	return fmt.Sprintf("Was this recipe for **%s** helpful? Choose an option below.", title)
}

// recipeCard 食譜卡片：標題、食材、步驟，加上確認提示。
// 查無細節時欄位就是 "N/A"，不會讓這一輪失敗。
func recipeCard(title string, d common.RecipeDetails) string {
	return fmt.Sprintf("**%s**\n\n**Ingredients:** %s\n\n**Steps:** %s\n\n%s",
		title, d.Ingredients, d.Steps, confirmPrompt(title))
}

// listReply 候選清單回覆：可選的條件標頭加上編號清單
func listReply(q *nlp.ParsedMessage, cands []common.Candidate) string {
	var sb strings.Builder

	if header := headerBits(q); header != "" {
		sb.WriteString("Got it — ")
		sb.WriteString(header)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Here are some dishes you might like (reply with the **number** or **name**):")
	for i, c := range cands {
		sb.WriteString(fmt.Sprintf("\n%d. **%s**", i+1, c.Title))
		if meta := candidateMeta(c); meta != "" {
			sb.WriteString(" (" + meta + ")")
		}
	}
	return sb.String()
}

// headerBits 有使用到的查詢條件，順序固定：食材、飲食、時間、菜系
func headerBits(q *nlp.ParsedMessage) string {
	var bits []string
	if len(q.Ingredients) > 0 {
		bits = append(bits, strings.Join(q.Ingredients, ", "))
	}
	if q.Diet != "" {
		bits = append(bits, q.Diet)
	}
	if q.TimeLimit > 0 {
		bits = append(bits, fmt.Sprintf("≤ %d min", q.TimeLimit))
	}
	if q.Cuisine != "" {
		bits = append(bits, q.Cuisine)
	}
	return strings.Join(bits, ", ")
}

// candidateMeta 候選的標註欄位，存在才列出，用 " · " 連接
func candidateMeta(c common.Candidate) string {
	var meta []string
	if c.Time != nil && *c.Time > 0 {
		meta = append(meta, fmt.Sprintf("%d min", *c.Time))
	}
	if c.Cuisine != "" {
		meta = append(meta, c.Cuisine)
	}
	if c.Diet != "" {
		meta = append(meta, c.Diet)
	}
	return strings.Join(meta, " · ")
}
