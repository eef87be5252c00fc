package recommend

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipes.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp csv: %v", err)
	}
	return path
}

func TestLoadCorpus(t *testing.T) {
	path := writeTempCSV(t, `title,ingredients,steps,time,cuisine,diet
Paneer Tomato Masala,"paneer, tomato","Cook it.",20,Indian,Veg
Chicken Curry,"chicken, onion","Simmer.",40,Indian,Chicken
`)

	records, err := LoadCorpus(path, 0)
	if err != nil {
		t.Fatalf("LoadCorpus: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Title != "Paneer Tomato Masala" || records[0].Time != "20" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
}

func TestLoadCorpusMissingColumns(t *testing.T) {
	// 缺少 cuisine 與 diet 欄位：補零值，不報錯
	path := writeTempCSV(t, `title,ingredients,steps,time
Plain Rice,rice,Boil the rice.,15
`)

	records, err := LoadCorpus(path, 0)
	if err != nil {
		t.Fatalf("LoadCorpus: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Cuisine != "" || records[0].Diet != "" {
		t.Errorf("missing columns must default to empty, got %+v", records[0])
	}
}

func TestLoadCorpusBlankTimeDefaulted(t *testing.T) {
	path := writeTempCSV(t, `title,ingredients,steps,time,cuisine,diet
Mystery Dish,stuff,Mix it., ,Indian,Veg
`)

	records, err := LoadCorpus(path, 0)
	if err != nil {
		t.Fatalf("LoadCorpus: %v", err)
	}
	if records[0].Time != "0" {
		t.Errorf("blank time should default to %q, got %q", "0", records[0].Time)
	}
}

func TestLoadCorpusMissingFile(t *testing.T) {
	if _, err := LoadCorpus(filepath.Join(t.TempDir(), "nope.csv"), 0); err == nil {
		t.Error("expected error for missing corpus file")
	}
}

func TestNormalizeDiet(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Veg", "veg"},
		{"vegetarian", "veg"},
		{"Veggie", "veg"},
		{"Non-Veg", "non-veg"},
		{"non veg", "non-veg"},
		{"NonVegetarian", "non-veg"},
		{"Egg", "non-veg"},
		{"Eggetarian", "non-veg"},
		{"Chicken", "non-veg"},
		{"Fish", "non-veg"},
		{"Mutton", "non-veg"},
		{"Prawn", "non-veg"},
		{"Vegan", "vegan"},
		{"", ""},
		{"keto", ""},
	}
	for _, tt := range tests {
		if got := normalizeDiet(tt.raw); got != tt.want {
			t.Errorf("normalizeDiet(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
