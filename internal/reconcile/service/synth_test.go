package service

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"invoice-recon/internal/lookup"
	"invoice-recon/internal/reconcile/model"
)

var synthDate = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

func testTables() *lookup.Tables {
	t := lookup.New()
	t.Suppliers["Cloudwater"] = "CLOU"
	t.Formats["can"] = "CA"
	t.Formats["polykeg"] = "PK"
	t.Formats["keykeg"] = "KK"
	t.SetSize("Can", "33cl", 0.36, "33")
	t.SetSize("PolyKeg", "30L", 31.5, "30")
	t.SetSize("KeyKeg", "20L", 21, "")
	t.Connectors["sankey coupler"] = "SK"
	t.Connectors["keykeg coupler"] = "KC"
	return t
}

func stagedCan() model.StagedVariant {
	return model.StagedVariant{
		Index:     0,
		Brand:     "Cloudwater",
		Product:   "Hazy Pale Ale",
		ABV:       "5.5",
		Format:    "Can",
		PackSize:  "24",
		Volume:    "33cl",
		UnitCost:  decimal.NewFromInt(48),
		SplitCase: true,
		Range:     model.RangeRotational,
	}
}

func TestSynthesize_SplitCase(t *testing.T) {
	out := Synthesize(stagedCan(), testTables(), synthDate)
	if len(out) != 2 {
		t.Fatalf("rows = %d, want 2", len(out))
	}

	full, half := out[0], out[1]
	if full.Pack != 24 || !full.Cost.Equal(decimal.NewFromInt(48)) {
		t.Errorf("full case: pack %v cost %s", full.Pack, full.Cost)
	}
	if half.Pack != 12 || !half.Cost.Equal(decimal.NewFromInt(24)) {
		t.Errorf("half case: pack %v cost %s", half.Pack, half.Cost)
	}
	if full.FamilySKU != half.FamilySKU || full.FamilyName != half.FamilyName {
		t.Errorf("family differs: %q vs %q", full.FamilySKU, half.FamilySKU)
	}

	wantFamily := "CLOUHAPA-14102026-0-CA"
	if full.FamilySKU != wantFamily {
		t.Errorf("family sku = %q, want %q", full.FamilySKU, wantFamily)
	}
	if full.VariantSKU != wantFamily+"-24X33" || half.VariantSKU != wantFamily+"-12X33" {
		t.Errorf("variant skus = %q, %q", full.VariantSKU, half.VariantSKU)
	}
	if full.VariantName != "24 x 33cl" || half.VariantName != "12 x 33cl" {
		t.Errorf("variant names = %q, %q", full.VariantName, half.VariantName)
	}
	if full.FamilyName != "Cloudwater / Hazy Pale Ale / 5.5% / Can" {
		t.Errorf("family name = %q", full.FamilyName)
	}
	w := full.UnitWeight
	if w != 0.36 || full.TotalWeight != w*24 || half.TotalWeight != w*12 {
		t.Errorf("weights = %v, %v", full.TotalWeight, half.TotalWeight)
	}
	if !full.SellPrice.Equal(decimal.RequireFromString("61.68")) || !half.SellPrice.Equal(decimal.RequireFromString("30.84")) {
		t.Errorf("prices = %s, %s", full.SellPrice, half.SellPrice)
	}
}

func TestSynthesize_NoSplitForSingle(t *testing.T) {
	sv := stagedCan()
	sv.PackSize = "1"
	sv.UnitCost = decimal.NewFromInt(2)
	out := Synthesize(sv, testTables(), synthDate)
	if len(out) != 1 {
		t.Fatalf("rows = %d, want 1", len(out))
	}
	if out[0].VariantName != "33cl" || out[0].VariantSKU != "CLOUHAPA-14102026-0-CA-33" {
		t.Errorf("got %q / %q", out[0].VariantName, out[0].VariantSKU)
	}
}

func TestSynthesize_PolyKegConnectors(t *testing.T) {
	sv := model.StagedVariant{
		Index:    2,
		Brand:    "Cloudwater",
		Product:  "IPA",
		ABV:      "6",
		Format:   "PolyKeg",
		PackSize: "1",
		Volume:   "30L",
		UnitCost: decimal.NewFromInt(120),
		Range:    model.RangeCore,
	}
	out := Synthesize(sv, testTables(), synthDate)
	if len(out) != 2 {
		t.Fatalf("rows = %d, want 2", len(out))
	}
	want := []struct{ sku, name string }{
		{"CLOUIPXX-14102026-2-PK-30-SK", "30L - Sankey Coupler"},
		{"CLOUIPXX-14102026-2-PK-30-KC", "30L - Keykeg Coupler"},
	}
	for i, w := range want {
		if out[i].VariantSKU != w.sku || out[i].VariantName != w.name {
			t.Errorf("row %d = %q / %q, want %q / %q", i, out[i].VariantSKU, out[i].VariantName, w.sku, w.name)
		}
		if out[i].TotalWeight != 31.5 {
			t.Errorf("row %d weight = %v", i, out[i].TotalWeight)
		}
		if !out[i].SellPrice.Equal(decimal.RequireFromString("151.8")) {
			t.Errorf("row %d price = %s", i, out[i].SellPrice)
		}
	}
}

func TestSynthesize_LookupMissesDefault(t *testing.T) {
	sv := model.StagedVariant{
		Index:    1,
		Brand:    "Unknown Brewery",
		Product:  "Mystery",
		Format:   "KeyKeg",
		PackSize: "",
		Volume:   "20L",
		UnitCost: decimal.NewFromInt(90),
	}
	tables := testTables()
	delete(tables.Connectors, "keykeg coupler")

	out := Synthesize(sv, tables, synthDate)
	if len(out) != 1 {
		t.Fatalf("rows = %d", len(out))
	}
	// бренд не найден, код размера пуст, коннектор не найден
	if got, want := out[0].VariantSKU, "XXXXMYXX-14102026-1-KK-00-XX"; got != want {
		t.Errorf("variant sku = %q, want %q", got, want)
	}
	if out[0].UnitWeight != 21 {
		t.Errorf("unit weight = %v", out[0].UnitWeight)
	}

	out = Synthesize(model.StagedVariant{Format: "Bag in Box", Volume: "10L"}, nil, synthDate)
	if out[0].UnitWeight != 0 || out[0].Connector != "" {
		t.Errorf("nil tables: %+v", out[0])
	}
	if got, want := out[0].FamilySKU, "XXXXXXXX-14102026-0-UN"; got != want {
		t.Errorf("family sku = %q, want %q", got, want)
	}
}

func TestSynthesize_Idempotent(t *testing.T) {
	tables := testTables()
	a := Synthesize(stagedCan(), tables, synthDate)
	b := Synthesize(stagedCan(), tables, synthDate)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("outputs differ")
	}
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if string(ja) != string(jb) {
		t.Fatal("serialized outputs differ")
	}
}

// имя варианта, собранное синтезатором, проходит проверки упаковки/объёма матчера
func TestVariantName_RoundTripsThroughMatcher(t *testing.T) {
	for _, pack := range []string{"1", "6", "12", "24"} {
		for _, vol := range []string{"33cl", "330ml", "44cl", "30L", "50L", "20L"} {
			name := VariantName(ParsePack(pack), vol, "")
			title := strings.ToLower(name)
			if !packMatches(NormalizePack(pack, false), title) {
				t.Errorf("pack %s: %q fails pack check", pack, name)
			}
			if !volumeMatches(NormalizeVolume(vol), title) {
				t.Errorf("vol %s: %q fails volume check", vol, name)
			}
		}
	}
}

func TestConnectors(t *testing.T) {
	cases := []struct {
		format string
		want   []string
	}{
		{"Dolium US 20L", []string{ConnectorUSSankey}},
		{"PolyKeg", []string{ConnectorSankey, ConnectorKeyKeg}},
		{"KeyKeg", []string{ConnectorKeyKeg}},
		{"Steel Keg", []string{ConnectorSankey}},
		{"Can", []string{""}},
		{"Cask", []string{""}},
	}
	for _, c := range cases {
		if got := Connectors(c.format); !reflect.DeepEqual(got, c.want) {
			t.Errorf("Connectors(%q) = %v, want %v", c.format, got, c.want)
		}
	}
}

func TestSynthesizeAll_KeepsOrder(t *testing.T) {
	a := stagedCan()
	b := stagedCan()
	b.Index = 1
	b.SplitCase = false

	out := SynthesizeAll([]model.StagedVariant{a, b}, testTables(), synthDate)
	if len(out) != 3 {
		t.Fatalf("rows = %d, want 3", len(out))
	}
	if out[0].Source.Index != 0 || out[2].Source.Index != 1 {
		t.Errorf("order not preserved")
	}
	if out[0].FamilySKU == out[2].FamilySKU {
		t.Errorf("different staged rows share family sku %q", out[0].FamilySKU)
	}
}
