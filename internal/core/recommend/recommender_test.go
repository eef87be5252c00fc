package recommend

import (
	"reflect"
	"strings"
	"testing"

	"recipe-chat/internal/core/nlp"
	"recipe-chat/internal/pkg/common"
)

func testRecords() []RecipeRecord {
	return []RecipeRecord{
		{
			Title:       "Paneer Tomato Masala",
			Ingredients: "paneer, tomato, onion, spices",
			Steps:       "Saute onion, add tomato and paneer, simmer with spices.",
			Time:        "20",
			Cuisine:     "Indian",
			Diet:        "Veg",
		},
		{
			Title:       "Chicken Curry",
			Ingredients: "chicken, onion, garlic, spices",
			Steps:       "Brown the chicken, add onion and garlic, simmer.",
			Time:        "40",
			Cuisine:     "Indian",
			Diet:        "Chicken",
		},
		{
			Title:       "Paneer Butter Masala",
			Ingredients: "paneer, butter, cream, tomato",
			Steps:       "Cook tomato gravy, add butter and cream, then paneer.",
			Time:        "35",
			Cuisine:     "Indian",
			Diet:        "Vegetarian",
		},
		{
			Title:       "Vegan Buddha Bowl",
			Ingredients: "quinoa, chickpeas, avocado",
			Steps:       "Cook quinoa, roast chickpeas, assemble the bowl.",
			Time:        "25",
			Cuisine:     "American",
			Diet:        "Vegan",
		},
		{
			Title:       "Slow Lamb Stew",
			Ingredients: "mutton, potato, carrot",
			Steps:       "Brown the mutton, add vegetables, stew slowly.",
			Time:        "unknown",
			Cuisine:     "Mediterranean",
			Diet:        "Mutton",
		},
		{
			Title:       "Quick Veggie Stir Fry",
			Ingredients: "broccoli, carrot, soy sauce",
			Steps:       "A quick and easy dinner. Stir fry everything on high heat.",
			Time:        "15",
			Cuisine:     "Chinese",
			Diet:        "Veg",
		},
	}
}

func TestSearchDietFilterNeverLeaks(t *testing.T) {
	r := NewRecommender(testRecords())
	q := &nlp.ParsedMessage{Ingredients: []string{"paneer"}, Diet: "veg"}

	got, _ := r.Search(q, 5)
	if len(got) == 0 {
		t.Fatal("expected veg paneer candidates, got none")
	}
	for _, c := range got {
		if normalizeDiet(c.Diet) != "veg" {
			t.Errorf("diet filter leaked: candidate %q has diet %q", c.Title, c.Diet)
		}
	}
}

func TestSearchTimeFilter(t *testing.T) {
	r := NewRecommender(testRecords())
	q := &nlp.ParsedMessage{Ingredients: []string{"paneer"}, TimeLimit: 20}

	got, _ := r.Search(q, 5)
	if len(got) != 1 || got[0].Title != "Paneer Tomato Masala" {
		t.Fatalf("expected only Paneer Tomato Masala within 20 min, got %v", titles(got))
	}
}

func TestSearchTimeFilterExcludesUnparsableTime(t *testing.T) {
	r := NewRecommender(testRecords())
	q := &nlp.ParsedMessage{Ingredients: []string{"mutton"}, TimeLimit: 60}

	// Slow Lamb Stew 的時間欄位不是數字，有時間限制時必須被排除
	got, _ := r.Search(q, 5)
	for _, c := range got {
		if c.Title == "Slow Lamb Stew" {
			t.Error("recipe with unparsable time must not pass a time filter")
		}
	}
}

func TestSearchExclusionFilter(t *testing.T) {
	r := NewRecommender(testRecords())
	q := &nlp.ParsedMessage{Ingredients: []string{"tomato"}, Excluded: []string{"paneer"}}

	got, _ := r.Search(q, 5)
	for _, c := range got {
		d := r.Details(c.Title)
		if containsFold(d.Ingredients, "paneer") {
			t.Errorf("excluded ingredient leaked into %q", c.Title)
		}
	}
}

func TestSearchCuisineWholeWord(t *testing.T) {
	if !wholeWordMatch("south indian", "indian") {
		t.Error("expected whole-word match inside a longer cuisine label")
	}
	if wholeWordMatch("indianish", "indian") {
		t.Error("substring of a longer word must not match")
	}
}

func TestSearchEmptyAfterFilter(t *testing.T) {
	r := NewRecommender(testRecords())
	q := &nlp.ParsedMessage{Diet: "vegan", Cuisine: "indian"}

	got, rationale := r.Search(q, 5)
	if len(got) != 0 {
		t.Errorf("expected no candidates for vegan+indian, got %v", titles(got))
	}
	if rationale == "" {
		t.Error("rationale must still describe the constraints when nothing matched")
	}
}

func TestSearchFallbackQuery(t *testing.T) {
	r := NewRecommender(testRecords())

	// 完全沒有條件時退回固定查詢語句，仍要有結果
	got, rationale := r.Search(&nlp.ParsedMessage{}, 5)
	if len(got) == 0 {
		t.Fatal("fallback query returned no candidates")
	}
	if got[0].Title != "Quick Veggie Stir Fry" {
		t.Errorf("expected the quick easy dinner recipe first, got %q", got[0].Title)
	}
	if rationale != "" {
		t.Errorf("empty query must have empty rationale, got %q", rationale)
	}
}

func TestSearchIngredientBoost(t *testing.T) {
	r := NewRecommender(testRecords())
	q := &nlp.ParsedMessage{Ingredients: []string{"paneer", "tomato"}}

	got, _ := r.Search(q, 5)
	if len(got) < 2 {
		t.Fatalf("expected several paneer candidates, got %v", titles(got))
	}
	if got[0].Title != "Paneer Tomato Masala" {
		t.Errorf("recipe matching both ingredients should rank first, got %q", got[0].Title)
	}
}

func TestSearchDeterministic(t *testing.T) {
	r := NewRecommender(testRecords())
	q := &nlp.ParsedMessage{Ingredients: []string{"paneer"}}

	first, _ := r.Search(q, 5)
	second, _ := r.Search(q, 5)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same query produced different rankings:\n%v\n%v", titles(first), titles(second))
	}
}

func TestSearchTopK(t *testing.T) {
	r := NewRecommender(testRecords())
	q := &nlp.ParsedMessage{Ingredients: []string{"onion"}}

	got, _ := r.Search(q, 1)
	if len(got) > 1 {
		t.Errorf("topK=1 returned %d candidates", len(got))
	}
}

func TestCandidateTimePointer(t *testing.T) {
	r := NewRecommender(testRecords())

	got, _ := r.Search(&nlp.ParsedMessage{Ingredients: []string{"paneer", "tomato"}}, 5)
	if len(got) == 0 {
		t.Fatal("expected candidates")
	}
	if got[0].Time == nil || *got[0].Time != 20 {
		t.Errorf("expected parsed time 20, got %v", got[0].Time)
	}

	// 時間欄位不是純數字時不回傳數值
	got, _ = r.Search(&nlp.ParsedMessage{Ingredients: []string{"mutton"}}, 5)
	for _, c := range got {
		if c.Title == "Slow Lamb Stew" && c.Time != nil {
			t.Errorf("unparsable time must yield nil, got %d", *c.Time)
		}
	}
}

func TestDetails(t *testing.T) {
	r := NewRecommender(testRecords())

	// 標題大小寫與前後空白不影響查詢
	d := r.Details("  paneer tomato masala ")
	if d.Ingredients != "paneer, tomato, onion, spices" {
		t.Errorf("Details ingredients = %q", d.Ingredients)
	}

	d = r.Details("No Such Recipe")
	if d.Ingredients != common.DetailNotAvailable || d.Steps != common.DetailNotAvailable {
		t.Errorf("missing recipe must return the placeholder, got %+v", d)
	}
}

func TestRationaleOrder(t *testing.T) {
	r := NewRecommender(testRecords())
	q := &nlp.ParsedMessage{
		Ingredients: []string{"paneer", "tomato"},
		Diet:        "veg",
		TimeLimit:   20,
		Cuisine:     "indian",
	}

	_, rationale := r.Search(q, 5)
	want := "paneer, tomato, veg, ≤ 20 min, indian"
	if rationale != want {
		t.Errorf("rationale = %q, want %q", rationale, want)
	}
}

func titles(cs []common.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Title
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
