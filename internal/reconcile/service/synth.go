package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"invoice-recon/internal/lookup"
	"invoice-recon/internal/reconcile/model"
)

// Коннекторы разливного оборудования.
const (
	ConnectorUSSankey = "US Sankey D-Type Coupler"
	ConnectorSankey   = "Sankey Coupler"
	ConnectorKeyKeg   = "Keykeg Coupler"
)

const familyDateLayout = "02012006" // DDMMYYYY

var two = decimal.NewFromInt(2)

// Connectors — набор коннекторов по формату; не разливное → один пустой.
// Поликегу подходят оба фитинга, поэтому оба заказываются отдельно.
func Connectors(format string) []string {
	f := strings.ToLower(format)
	switch {
	case strings.Contains(f, "dolium") && strings.Contains(f, "us"):
		return []string{ConnectorUSSankey}
	case strings.Contains(f, "poly"):
		return []string{ConnectorSankey, ConnectorKeyKeg}
	case strings.Contains(f, "key"):
		return []string{ConnectorKeyKeg}
	case strings.Contains(f, "steel"):
		return []string{ConnectorSankey}
	default:
		return []string{""}
	}
}

// FamilySKU — <supplier4><product4>-<DDMMYYYY>-<index>-<format>.
func FamilySKU(sv model.StagedVariant, t *lookup.Tables, date time.Time) string {
	return fmt.Sprintf("%s%s-%s-%d-%s",
		t.SupplierCode(sv.Brand),
		ProductCode(sv.Product),
		date.Format(familyDateLayout),
		sv.Index,
		t.FormatCode(sv.Format),
	)
}

// FamilyName — "<brand> / <product> / <abv>% / <format>".
func FamilyName(sv model.StagedVariant) string {
	return fmt.Sprintf("%s / %s / %s%% / %s",
		sv.Brand, sv.Product, strings.TrimSpace(sv.ABV), strings.TrimSpace(sv.Format))
}

// VariantName — "<pack> x <volume>" (pack>1) или "<volume>", плюс " - <connector>".
func VariantName(pack float64, volume, connector string) string {
	name := strings.TrimSpace(volume)
	if pack > 1 {
		name = fmt.Sprintf("%s x %s", formatNumber(pack), name)
	}
	if connector != "" {
		name += " - " + connector
	}
	return name
}

type packCost struct {
	pack float64
	cost decimal.Decimal
}

// Synthesize — детерминированная генерация вариантов для одной подготовленной строки.
// Разворачивает (упаковка, цена) × коннекторы; дата передаётся явно.
func Synthesize(sv model.StagedVariant, t *lookup.Tables, date time.Time) []model.SynthesizedIdentity {
	format := strings.TrimSpace(sv.Format)
	volume := strings.TrimSpace(sv.Volume)

	// 1) Вес и код размера
	unitWeight, sizeCode := t.Size(format, volume)

	// 2) Семейство
	familySKU := FamilySKU(sv, t, date)
	familyName := FamilyName(sv)

	// 3) Набор (упаковка, цена): исходная + половина при split-case
	pack := ParsePack(sv.PackSize)
	pairs := []packCost{{pack: pack, cost: sv.UnitCost}}
	if sv.SplitCase && pack > 1 {
		pairs = append(pairs, packCost{pack: pack / 2, cost: sv.UnitCost.Div(two)})
	}

	// 4-5) Коннекторы и итоговые записи
	connectors := Connectors(format)
	out := make([]model.SynthesizedIdentity, 0, len(pairs)*len(connectors))
	for _, pc := range pairs {
		price := SellPrice(pc.cost, sv.Range, format)
		for _, conn := range connectors {
			out = append(out, model.SynthesizedIdentity{
				FamilySKU:   familySKU,
				FamilyName:  familyName,
				VariantSKU:  familySKU + variantSuffix(pc.pack, sizeCode, conn, t),
				VariantName: VariantName(pc.pack, volume, conn),
				Pack:        pc.pack,
				UnitWeight:  unitWeight,
				TotalWeight: unitWeight * pc.pack,
				Connector:   conn,
				Cost:        pc.cost,
				SellPrice:   price,
				Source:      sv,
			})
		}
	}
	return out
}

// SynthesizeAll — конкатенация по всем строкам; порядок входа сохраняется.
func SynthesizeAll(staged []model.StagedVariant, t *lookup.Tables, date time.Time) []model.SynthesizedIdentity {
	var out []model.SynthesizedIdentity
	for _, sv := range staged {
		out = append(out, Synthesize(sv, t, date)...)
	}
	return out
}

// -<pack>X<size> либо -<size>, затем -<connector code>
func variantSuffix(pack float64, sizeCode, connector string, t *lookup.Tables) string {
	var s string
	if pack > 1 {
		s = fmt.Sprintf("-%sX%s", formatNumber(pack), sizeCode)
	} else {
		s = "-" + sizeCode
	}
	if connector != "" {
		s += "-" + t.ConnectorCode(connector)
	}
	return s
}
