package extract

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDraft_StripsFences(t *testing.T) {
	cases := []string{
		"```json\n{\"header\":{\"payable_to\":\"Cloudwater\"},\"line_items\":[]}\n```",
		"```\n{\"header\":{\"payable_to\":\"Cloudwater\"},\"line_items\":[]}```",
		"Here you go:\n{\"header\":{\"payable_to\":\"Cloudwater\"},\"line_items\":[]}\nThanks",
		"{\"header\":{\"payable_to\":\"Cloudwater\"},\"line_items\":[]}",
	}
	for _, c := range cases {
		d, err := ParseDraft(c)
		if err != nil {
			t.Errorf("ParseDraft(%q): %v", c, err)
			continue
		}
		if d.Header.PayableTo != "Cloudwater" {
			t.Errorf("payable_to = %q", d.Header.PayableTo)
		}
	}
}

func TestParseDraft_Errors(t *testing.T) {
	if _, err := ParseDraft("  ```json\n```  "); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("empty: err = %v", err)
	}
	if _, err := ParseDraft("{not json}"); err == nil {
		t.Error("invalid json accepted")
	}
}

func TestCleanLines(t *testing.T) {
	d := Draft{Lines: []DraftLine{
		{SupplierName: "cloudwater", ProductName: "Hazy | Pale 24x44cl", ABV: "5.5%", Format: "Can", PackSize: "24", Volume: "440ml", Quantity: 2, ItemPrice: "£48.00"},
		{SupplierName: "Tiny Rebel", ProductName: "Cwtch", Format: "Cask", PackSize: "", Volume: "9 gal", ItemPrice: "n/a"},
	}}
	lines := CleanLines(d, []string{"Cloudwater", "BrewDog"})

	if len(lines) != 2 {
		t.Fatalf("lines = %d", len(lines))
	}
	a := lines[0]
	if a.Supplier != "Cloudwater" || a.Product != "Hazy Pale" || a.ABV != "5.5" {
		t.Errorf("line 0 = %+v", a)
	}
	if !a.UnitCost.Equal(decimal.NewFromInt(48)) || a.Quantity != 2 {
		t.Errorf("cost/qty = %s/%v", a.UnitCost, a.Quantity)
	}
	b := lines[1]
	if b.Supplier != "Tiny Rebel" || b.PackSize != "1" || !b.UnitCost.IsZero() {
		t.Errorf("line 1 = %+v", b)
	}
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt("INVOICE 42", "Cloudwater: cans are 12 per case")
	for _, want := range []string{"GLOBAL RULES", "SUPPLIER RULES", "Cloudwater: cans", "INVOICE 42"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(buildPrompt("x", " "), "SUPPLIER RULES") {
		t.Error("blank rules rendered")
	}
}

func TestDraftSchema(t *testing.T) {
	m, err := draftSchema()
	if err != nil {
		t.Fatal(err)
	}
	props, ok := m["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %v", m)
	}
	if _, ok := props["line_items"]; !ok {
		t.Error("line_items missing from schema")
	}
}

func TestPDFText_NotAPDF(t *testing.T) {
	if _, err := PDFText(bytes.NewReader([]byte("plain text"))); err == nil {
		t.Fatal("expected error for non-pdf input")
	}
}
