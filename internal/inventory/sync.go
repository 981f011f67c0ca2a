package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"invoice-recon/internal/reconcile/model"
)

// Действия журнала синхронизации.
const (
	ActionFamilyFoundSKU  = "family_found_sku"
	ActionFamilyFoundName = "family_found_name"
	ActionFamilyCreated   = "family_created"
	ActionFamilyFailed    = "family_failed"
	ActionHalt            = "halt"
	ActionCreatedLinked   = "created_linked"
	ActionLinkedExisting  = "linked_existing"
	ActionVariantFailed   = "variant_failed"
)

const (
	costingMethod = "FIFO - Batch"
	dropShipMode  = "No Drop Ship"
	cogsAccount   = "5101"
	revenueAcct   = "4000"
	inventoryAcct = "1001"
)

// SyncEvent — одна запись журнала двухфазной записи.
type SyncEvent struct {
	Family   string `json:"family"`
	Location string `json:"location"`
	Variant  string `json:"variant,omitempty"`
	Action   string `json:"action"`
	Message  string `json:"message,omitempty"`
}

// Syncer записывает синтезированные варианты в ERP: семья, затем варианты со ссылкой на неё.
type Syncer struct {
	erp       ERP
	locations []model.Location
	logger    zerolog.Logger
}

func NewSyncer(erp ERP, locations []model.Location, logger zerolog.Logger) *Syncer {
	return &Syncer{erp: erp, locations: locations, logger: logger}
}

type familyBatch struct {
	sku  string
	rows []model.SynthesizedIdentity
}

// по Family SKU, в порядке первого появления
func groupByFamily(rows []model.SynthesizedIdentity) []familyBatch {
	idx := map[string]int{}
	var out []familyBatch
	for _, r := range rows {
		i, ok := idx[r.FamilySKU]
		if !ok {
			out = append(out, familyBatch{sku: r.FamilySKU})
			i = len(out) - 1
			idx[r.FamilySKU] = i
		}
		out[i].rows = append(out[i].rows, r)
	}
	return out
}

// Sync — по каждой семье и каждой локации. Без ID семьи варианты этой локации пропускаются.
func (s *Syncer) Sync(ctx context.Context, rows []model.SynthesizedIdentity) []SyncEvent {
	var events []SyncEvent
	emit := func(e SyncEvent) {
		events = append(events, e)
		s.logger.Info().
			Str("family", e.Family).
			Str("location", e.Location).
			Str("variant", e.Variant).
			Str("action", e.Action).
			Msg(e.Message)
	}

	for _, fb := range groupByFamily(rows) {
		first := fb.rows[0]
		for _, loc := range s.locations {
			if ctx.Err() != nil {
				return events
			}
			famID, ev := s.ensureFamily(ctx, first, loc)
			emit(ev)
			if famID == "" {
				emit(SyncEvent{Family: ev.Family, Location: loc.Name, Action: ActionHalt,
					Message: "could not acquire family id, skipping variants"})
				continue
			}
			for _, r := range fb.rows {
				emit(s.ensureVariant(ctx, r, famID, loc))
			}
		}
	}
	return events
}

func (s *Syncer) ensureFamily(ctx context.Context, row model.SynthesizedIdentity, loc model.Location) (string, SyncEvent) {
	sku := loc.Prefix + row.FamilySKU
	name := loc.Prefix + row.FamilyName
	ev := SyncEvent{Family: sku, Location: loc.Name}

	// 1) точный SKU, 2) точное имя
	if items, err := s.erp.FamiliesBySKU(ctx, sku); err == nil {
		if f := findFamily(items, func(f Family) string { return f.SKU }, sku); f != nil {
			ev.Action, ev.Message = ActionFamilyFoundSKU, "family exists (sku match) id "+f.ID
			return f.ID, ev
		}
	} else {
		s.logger.Warn().Err(err).Str("sku", sku).Msg("family lookup by sku failed")
	}
	if items, err := s.erp.FamiliesByName(ctx, name); err == nil {
		if f := findFamily(items, func(f Family) string { return f.Name }, name); f != nil {
			ev.Action, ev.Message = ActionFamilyFoundName, "family exists (name match) id "+f.ID
			return f.ID, ev
		}
	} else {
		s.logger.Warn().Err(err).Str("name", name).Msg("family lookup by name failed")
	}

	// 3) создать
	brand := row.Source.Brand
	id, err := s.erp.CreateFamily(ctx, Family{
		SKU:              sku,
		Name:             name,
		Category:         loc.Name,
		DefaultLocation:  loc.Name,
		Brand:            brand,
		CostingMethod:    costingMethod,
		UOM:              "each",
		Tags:             tags(loc, brand),
		COGSAccount:      cogsAccount,
		RevenueAccount:   revenueAcct,
		InventoryAccount: inventoryAcct,
		DropShipMode:     dropShipMode,
		Option1Name:      "Variant",
		Products:         []FamilyMember{},
	})
	if err != nil {
		ev.Action, ev.Message = ActionFamilyFailed, err.Error()
		return "", ev
	}
	ev.Action, ev.Message = ActionFamilyCreated, "created family id "+id
	return id, ev
}

func (s *Syncer) ensureVariant(ctx context.Context, row model.SynthesizedIdentity, familyID string, loc model.Location) SyncEvent {
	sku := loc.Prefix + row.VariantSKU
	name := loc.Prefix + row.FamilyName + " / " + row.VariantName
	ev := SyncEvent{Family: loc.Prefix + row.FamilySKU, Location: loc.Name, Variant: sku}

	// 1) найти или создать позицию
	var productID string
	created := false
	if items, err := s.erp.ProductsBySKU(ctx, sku); err == nil {
		if p := findProduct(items, sku); p != nil {
			productID = p.ID
		}
	}
	if productID == "" {
		id, err := s.erp.CreateProduct(ctx, variantProduct(row, familyID, loc, sku, name))
		if err != nil {
			ev.Action, ev.Message = ActionVariantFailed, "create failed: "+err.Error()
			return ev
		}
		productID, created = id, true
	}

	// 2) привязать к семье: заменить запись с тем же ID или добавить
	fam, err := s.erp.GetFamily(ctx, familyID)
	if err != nil {
		ev.Action, ev.Message = ActionVariantFailed, "fetch family failed: "+err.Error()
		return ev
	}
	fam.Products = linkMember(fam.Products, productID, row.VariantName)
	if err := s.erp.UpdateFamily(ctx, *fam); err != nil {
		ev.Action, ev.Message = ActionVariantFailed, "link failed: "+err.Error()
		return ev
	}

	if created {
		ev.Action, ev.Message = ActionCreatedLinked, "created & linked"
	} else {
		ev.Action, ev.Message = ActionLinkedExisting, "linked existing"
	}
	return ev
}

func linkMember(members []FamilyMember, productID, option string) []FamilyMember {
	for i := range members {
		if strings.EqualFold(members[i].ID, productID) {
			members[i].Option1 = option
			return members
		}
	}
	return append(members, FamilyMember{ID: productID, Option1: option})
}

func tags(loc model.Location, brand string) string {
	return fmt.Sprintf("%s,Wholesale,%s", loc.Name, brand)
}

func variantProduct(row model.SynthesizedIdentity, familyID string, loc model.Location, sku, name string) Product {
	src := row.Source
	price := row.SellPrice.InexactFloat64()
	return Product{
		SKU:                   sku,
		Name:                  name,
		Category:              loc.Name,
		Brand:                 src.Brand,
		Type:                  "Stock",
		CostingMethod:         costingMethod,
		DropShipMode:          dropShipMode,
		DefaultLocation:       loc.Name,
		Weight:                row.TotalWeight,
		UOM:                   "Each",
		WeightUnits:           "kg",
		PriceTier1:            price,
		PriceTiers:            map[string]float64{"Tier 1": price},
		InternalNote:          fmt.Sprintf("%s *** %s *** %s *** %s", sku, name, row.VariantName, familyID),
		Description:           src.Description,
		AdditionalAttribute1:  src.Format,
		AdditionalAttribute2:  src.Style,
		AdditionalAttribute3:  src.Format,
		AdditionalAttribute4:  src.ProductType,
		AdditionalAttribute5:  src.Range,
		AdditionalAttribute6:  row.VariantSKU,
		AdditionalAttribute7:  row.VariantName,
		AdditionalAttribute8:  row.Connector,
		AdditionalAttribute9:  src.Product,
		AdditionalAttribute10: src.ABV,
		AttributeSet:          "Products",
		Tags:                  tags(loc, src.Brand),
		Status:                "Active",
		COGSAccount:           cogsAccount,
		RevenueAccount:        revenueAcct,
		InventoryAccount:      inventoryAcct,
		Sellable:              true,
	}
}
