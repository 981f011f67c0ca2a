package service

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"invoice-recon/internal/reconcile/model"
)

var (
	locA = model.Location{Prefix: "L-", Name: "London"}
	locB = model.Location{Prefix: "G-", Name: "Gloucester"}
)

func kegLine(format string) model.InvoiceLine {
	return model.InvoiceLine{
		Supplier: "Example Brew Co",
		Product:  "Test Pale",
		Format:   format,
		PackSize: "1",
		Volume:   "30L",
		Quantity: 1,
		UnitCost: decimal.NewFromInt(150),
	}
}

func kegCandidate(kegMeta string) model.CatalogCandidate {
	return model.CatalogCandidate{
		Title:       "L-Test Pale",
		FormatMeta:  "Keg",
		KegTypeMeta: kegMeta,
		ImageURL:    "https://cdn.example/test-pale.png",
		Variants: []model.CatalogVariant{
			{Title: "30L Keg", SKU: "L-EXTP30", InventoryQty: 3},
		},
	}
}

func TestMatch_KeyKegNeverMatchesSteel(t *testing.T) {
	m := NewMatcher(locA, locB)
	res := m.Match(kegLine("KeyKeg"), []model.CatalogCandidate{kegCandidate("Steel")})

	if res.Status != model.StatusUnmatched {
		t.Fatalf("status = %s, want unmatched", res.Status)
	}
	if res.SKUA != "" || res.SKUB != "" || res.IDA != "" || res.IDB != "" {
		t.Fatalf("unmatched result carries identifiers: %+v", res)
	}
}

func TestMatch_LogsCompatRejection(t *testing.T) {
	var buf bytes.Buffer
	m := NewMatcher(locA, locB).WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	res := m.Match(kegLine("KeyKeg"), []model.CatalogCandidate{kegCandidate("Steel")})
	if res.Status != model.StatusUnmatched {
		t.Fatalf("status = %s, want unmatched", res.Status)
	}

	var msgs []string
	var rejected map[string]any
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var ev map[string]any
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("bad log line %q: %v", sc.Text(), err)
		}
		msg, _ := ev["message"].(string)
		msgs = append(msgs, msg)
		if msg == "compat rejected" {
			rejected = ev
		}
	}
	if rejected == nil {
		t.Fatalf("no compat rejection logged, got %v", msgs)
	}
	if rejected["candidate"] != "L-Test Pale" || rejected["keg_meta"] != "Steel" || rejected["invoice_format"] != "KeyKeg" {
		t.Errorf("rejection fields = %v", rejected)
	}
	if rejected["level"] != "debug" {
		t.Errorf("level = %v, want debug", rejected["level"])
	}
	if len(msgs) < 3 || msgs[0] != "checking" || msgs[len(msgs)-1] != "unmatched" {
		t.Errorf("decision log = %v, want checking ... unmatched", msgs)
	}
}

func TestMatch_LogsMatchedVariant(t *testing.T) {
	var buf bytes.Buffer
	m := NewMatcher(locA, locB).WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	if res := m.Match(kegLine("KeyKeg"), []model.CatalogCandidate{kegCandidate("KeyKeg")}); !res.Matched() {
		t.Fatalf("status = %s, want matched", res.Status)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"message":"match"`)) || !bytes.Contains(buf.Bytes(), []byte(`"sku_a":"L-EXTP30"`)) {
		t.Errorf("match not logged: %s", buf.String())
	}
}

func TestMatch_KegFamilies(t *testing.T) {
	families := map[string]string{
		"Poly":   "PolyKeg 30L",
		"KeyKeg": "KeyKeg 30L",
		"Steel":  "Steel Keg 30L",
	}
	m := NewMatcher(locA, locB)
	for candFam := range families {
		for invFam, invFormat := range families {
			res := m.Match(kegLine(invFormat), []model.CatalogCandidate{kegCandidate(candFam)})
			want := model.StatusUnmatched
			if candFam == invFam {
				want = model.StatusMatched
			}
			if res.Status != want {
				t.Errorf("invoice %q vs catalog %q: status %s, want %s", invFormat, candFam, res.Status, want)
			}
		}
	}
}

func TestMatch_MatchedPopulatesLocations(t *testing.T) {
	m := NewMatcher(locA, locB)
	res := m.Match(kegLine("KeyKeg"), []model.CatalogCandidate{kegCandidate("KeyKeg")})

	if !res.Matched() {
		t.Fatalf("status = %s, want matched", res.Status)
	}
	if res.SKUA != "L-EXTP30" || res.SKUB != "G-EXTP30" {
		t.Errorf("skus = %q/%q", res.SKUA, res.SKUB)
	}
	if res.MatchedProduct != "Test Pale" {
		t.Errorf("matched product = %q, location prefix not stripped", res.MatchedProduct)
	}
	if res.MatchedVariant != "30L Keg" || res.ImageURL == "" {
		t.Errorf("variant/image not populated: %+v", res)
	}
}

func TestMatch_VendorNotFound(t *testing.T) {
	m := NewMatcher(locA, locB)
	res := m.Match(kegLine("KeyKeg"), nil)
	if res.Status != model.StatusVendorNotFound {
		t.Fatalf("status = %s, want vendor_not_found", res.Status)
	}
}

func TestMatch_ScoreFloor(t *testing.T) {
	cand := model.CatalogCandidate{
		Title:    "Something Else",
		Variants: []model.CatalogVariant{{Title: "24 x 330ml", SKU: "L-SOEL24"}},
	}
	line := model.InvoiceLine{Product: "Alpha", Format: "Can", PackSize: "24", Volume: "330ml"}

	for _, c := range []struct {
		score int
		want  model.MatchStatus
	}{
		{74, model.StatusUnmatched},
		{75, model.StatusMatched},
	} {
		score := c.score
		m := &Matcher{LocationA: locA, LocationB: locB, Score: func(a, b string) int { return score }}
		if got := m.Match(line, []model.CatalogCandidate{cand}).Status; got != c.want {
			t.Errorf("score %d: status %s, want %s", c.score, got, c.want)
		}
	}
}

func TestMatch_TieKeepsSourceOrder(t *testing.T) {
	first := model.CatalogCandidate{Title: "First", Variants: []model.CatalogVariant{{Title: "24 x 330ml", SKU: "L-FIRS24"}}}
	second := model.CatalogCandidate{Title: "Second", Variants: []model.CatalogVariant{{Title: "24 x 330ml", SKU: "L-SECO24"}}}
	m := &Matcher{LocationA: locA, LocationB: locB, Score: func(a, b string) int { return 90 }}

	line := model.InvoiceLine{Product: "Alpha", Format: "Can", PackSize: "24", Volume: "330ml"}
	res := m.Match(line, []model.CatalogCandidate{first, second})
	if res.SKUA != "L-FIRS24" {
		t.Fatalf("tie resolved to %q, want first candidate", res.SKUA)
	}
}

func TestMatch_PackAndVolume(t *testing.T) {
	cand := model.CatalogCandidate{
		Title: "Hazy Pale",
		Variants: []model.CatalogVariant{
			{Title: "330ml", SKU: "L-HAPA01"},
			{Title: "12 x 330ml", SKU: "L-HAPA12"},
			{Title: "24 x 330ml", SKU: "L-HAPA24"},
		},
	}
	m := NewMatcher(locA, locB)
	cases := []struct {
		pack  string
		split bool
		want  string
	}{
		{"1", false, "L-HAPA01"},
		{"24", false, "L-HAPA24"},
		{"24", true, "L-HAPA12"},
	}
	for _, c := range cases {
		line := model.InvoiceLine{Product: "Hazy Pale", Format: "Can", PackSize: c.pack, Volume: "33cl", SplitCase: c.split}
		res := m.Match(line, []model.CatalogCandidate{cand})
		if res.SKUA != c.want {
			t.Errorf("pack %s split %v: sku %q, want %q", c.pack, c.split, res.SKUA, c.want)
		}
	}
}

func TestMatch_CaskAgainstKegAndAliases(t *testing.T) {
	m := NewMatcher(locA, locB)
	keg := model.CatalogCandidate{Title: "Best Bitter", FormatMeta: "Keg", Variants: []model.CatalogVariant{{Title: "Firkin", SKU: "L-BEBI09"}}}
	cask := model.CatalogCandidate{Title: "Best Bitter", FormatMeta: "Cask", Variants: []model.CatalogVariant{{Title: "Firkin", SKU: "L-BEBI09"}}}
	pin := model.CatalogCandidate{Title: "Best Bitter", FormatMeta: "Cask", Variants: []model.CatalogVariant{{Title: "Pin", SKU: "L-BEBI04"}}}

	line := model.InvoiceLine{Product: "Best Bitter", Format: "Cask", PackSize: "1", Volume: "40L"}

	if res := m.Match(line, []model.CatalogCandidate{keg}); res.Matched() {
		t.Errorf("cask line matched a keg candidate")
	}
	if res := m.Match(line, []model.CatalogCandidate{cask}); !res.Matched() {
		t.Errorf("40L cask should match firkin variant")
	}
	line.Volume = "20L"
	if res := m.Match(line, []model.CatalogCandidate{pin}); !res.Matched() {
		t.Errorf("20L cask should match pin variant")
	}
}

func TestMatch_ShortSKUSkipped(t *testing.T) {
	cand := model.CatalogCandidate{
		Title: "Hazy Pale",
		Variants: []model.CatalogVariant{
			{Title: "330ml", SKU: "L-"},
			{Title: "330ml can", SKU: "L-HAPA01"},
		},
	}
	m := NewMatcher(locA, locB)
	res := m.Match(model.InvoiceLine{Product: "Hazy Pale", Format: "Can", PackSize: "1", Volume: "330ml"}, []model.CatalogCandidate{cand})
	if res.SKUA != "L-HAPA01" {
		t.Fatalf("sku = %q", res.SKUA)
	}
}

func TestMatch_SlashTitleScoredOnProductPart(t *testing.T) {
	if got := cleanCatalogTitle("Cloudwater / DIPA Chinook / Keg"); got != "DIPA Chinook" {
		t.Fatalf("cleanCatalogTitle = %q", got)
	}
	if got := cleanCatalogTitle("Plain"); got != "Plain" {
		t.Fatalf("cleanCatalogTitle = %q", got)
	}
}

func TestMatchAll_UsesSupplierSnapshot(t *testing.T) {
	m := NewMatcher(locA, locB)
	snap := map[string][]model.CatalogCandidate{
		"Example Brew Co": {kegCandidate("KeyKeg")},
	}
	lines := []model.InvoiceLine{kegLine("KeyKeg"), kegLine("KeyKeg")}
	lines[1].Supplier = "Nobody"

	res := m.MatchAll(lines, snap)
	if res[0].Status != model.StatusMatched || res[1].Status != model.StatusVendorNotFound {
		t.Fatalf("statuses = %s, %s", res[0].Status, res[1].Status)
	}
}
