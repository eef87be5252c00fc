package dialogue

import "testing"

func TestBestFuzzyMatch(t *testing.T) {
	names := []string{"Paneer Tomato Masala", "Paneer Butter Masala", "Chicken Curry"}

	tests := []struct {
		query   string
		wantIdx int
		wantOK  bool
	}{
		{"paneer butter masala", 1, true},
		{"paneer buter masala", 1, true}, // 一字之差
		{"chicken curry", 2, true},
		{"chiken curry", 2, true},
		{"quantum flux soup", -1, false},
	}
	for _, tt := range tests {
		idx, ok := bestFuzzyMatch(names, tt.query, DefaultFuzzyCutoff)
		if ok != tt.wantOK {
			t.Errorf("bestFuzzyMatch(%q) ok = %v, want %v", tt.query, ok, tt.wantOK)
			continue
		}
		if ok && idx != tt.wantIdx {
			t.Errorf("bestFuzzyMatch(%q) idx = %d, want %d", tt.query, idx, tt.wantIdx)
		}
	}
}

func TestBestFuzzyMatchEmptyInput(t *testing.T) {
	if _, ok := bestFuzzyMatch(nil, "anything", DefaultFuzzyCutoff); ok {
		t.Error("empty name list must not match")
	}
	if _, ok := bestFuzzyMatch([]string{"Paneer Tikka"}, "", DefaultFuzzyCutoff); ok {
		t.Error("empty query must not match")
	}
}
