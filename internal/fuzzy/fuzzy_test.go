package fuzzy

import "testing"

func TestRatio(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"abc", "abc", 100},
		{"abc", "", 0},
		{"", "", 100},
		{"test", "tent", 75},
	}
	for _, tc := range cases {
		if got := Ratio(tc.a, tc.b); got != tc.want {
			t.Errorf("Ratio(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestTokenSortRatio_IgnoresOrderAndCase(t *testing.T) {
	if got := TokenSortRatio("Pale Hazy", "hazy PALE"); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
	if got := TokenSortRatio("", "hazy"); got != 0 {
		t.Fatalf("expected 0 for empty input, got %d", got)
	}
	if got := TokenSortRatio("Hazy Pale!", "hazy pale"); got != 100 {
		t.Fatalf("punctuation should be ignored, got %d", got)
	}
}

func TestTokenSetRatio_Subset(t *testing.T) {
	if got := TokenSetRatio("Hazy Pale Ale", "Pale Ale"); got != 100 {
		t.Fatalf("expected 100 for token subset, got %d", got)
	}
}

func TestProcess_FoldsDiacritics(t *testing.T) {
	if got := Process("  Kölsch / Märzen  "); got != "kolsch marzen" {
		t.Fatalf("unexpected processed string %q", got)
	}
}

func TestPartialRatio(t *testing.T) {
	if got := PartialRatio("brew dog", "brew dog ltd"); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

func TestExtractOne(t *testing.T) {
	m, ok := ExtractOne("Brew Dog", []string{"Cloudwater", "BrewDog", "Brew Dog Ltd"})
	if !ok {
		t.Fatalf("expected a match")
	}
	if m.Choice != "BrewDog" || m.Index != 1 || m.Score != 93 {
		t.Fatalf("unexpected match %+v", m)
	}

	if _, ok := ExtractOne("", []string{"a"}); ok {
		t.Fatalf("empty query must not match")
	}
	if _, ok := ExtractOne("x", nil); ok {
		t.Fatalf("no choices must not match")
	}
}
