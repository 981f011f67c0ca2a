package inventory

import "encoding/json"

// поля, которые ERP не принимает обратно в PUT
var readOnlyFamilyFields = map[string]bool{"CreatedDate": true, "LastModifiedOn": true}

type FamilyMember struct {
	ID      string `json:"ID"`
	Option1 string `json:"Option1"`
}

// Family — товарная семья ERP. Неизвестные поля из GET сохраняются и уходят обратно в PUT.
type Family struct {
	ID                   string         `json:"ID,omitempty"`
	SKU                  string         `json:"SKU"`
	Name                 string         `json:"Name"`
	Category             string         `json:"Category,omitempty"`
	DefaultLocation      string         `json:"DefaultLocation,omitempty"`
	Brand                string         `json:"Brand,omitempty"`
	CostingMethod        string         `json:"CostingMethod,omitempty"`
	UOM                  string         `json:"UOM,omitempty"`
	MinimumBeforeReorder float64        `json:"MinimumBeforeReorder"`
	ReorderQuantity      float64        `json:"ReorderQuantity"`
	PriceTier1           float64        `json:"PriceTier1"`
	Tags                 string         `json:"Tags,omitempty"`
	COGSAccount          string         `json:"COGSAccount,omitempty"`
	RevenueAccount       string         `json:"RevenueAccount,omitempty"`
	InventoryAccount     string         `json:"InventoryAccount,omitempty"`
	DropShipMode         string         `json:"DropShipMode,omitempty"`
	Option1Name          string         `json:"Option1Name,omitempty"`
	Option1Values        string         `json:"Option1Values"`
	Products             []FamilyMember `json:"Products"`

	extra map[string]json.RawMessage
}

func (f *Family) UnmarshalJSON(b []byte) error {
	type alias Family
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*f = Family(a)
	f.extra = raw
	return nil
}

func (f Family) MarshalJSON() ([]byte, error) {
	type alias Family
	known, err := json.Marshal(alias(f))
	if err != nil || len(f.extra) == 0 {
		return known, err
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for k, v := range f.extra {
		if _, ok := merged[k]; ok || readOnlyFamilyFields[k] {
			continue
		}
		merged[k] = v
	}
	return json.Marshal(merged)
}

// Product — складская позиция (вариант) ERP.
type Product struct {
	ID                    string             `json:"ID,omitempty"`
	SKU                   string             `json:"SKU"`
	Name                  string             `json:"Name"`
	Category              string             `json:"Category,omitempty"`
	Brand                 string             `json:"Brand,omitempty"`
	Type                  string             `json:"Type,omitempty"`
	CostingMethod         string             `json:"CostingMethod,omitempty"`
	DropShipMode          string             `json:"DropShipMode,omitempty"`
	DefaultLocation       string             `json:"DefaultLocation,omitempty"`
	Weight                float64            `json:"Weight"`
	UOM                   string             `json:"UOM,omitempty"`
	WeightUnits           string             `json:"WeightUnits,omitempty"`
	PriceTier1            float64            `json:"PriceTier1"`
	PriceTiers            map[string]float64 `json:"PriceTiers,omitempty"`
	InternalNote          string             `json:"InternalNote,omitempty"`
	Description           string             `json:"Description,omitempty"`
	AdditionalAttribute1  string             `json:"AdditionalAttribute1,omitempty"`
	AdditionalAttribute2  string             `json:"AdditionalAttribute2,omitempty"`
	AdditionalAttribute3  string             `json:"AdditionalAttribute3,omitempty"`
	AdditionalAttribute4  string             `json:"AdditionalAttribute4,omitempty"`
	AdditionalAttribute5  string             `json:"AdditionalAttribute5,omitempty"`
	AdditionalAttribute6  string             `json:"AdditionalAttribute6,omitempty"`
	AdditionalAttribute7  string             `json:"AdditionalAttribute7,omitempty"`
	AdditionalAttribute8  string             `json:"AdditionalAttribute8,omitempty"`
	AdditionalAttribute9  string             `json:"AdditionalAttribute9,omitempty"`
	AdditionalAttribute10 string             `json:"AdditionalAttribute10,omitempty"`
	AttributeSet          string             `json:"AttributeSet,omitempty"`
	Tags                  string             `json:"Tags,omitempty"`
	Status                string             `json:"Status,omitempty"`
	COGSAccount           string             `json:"COGSAccount,omitempty"`
	RevenueAccount        string             `json:"RevenueAccount,omitempty"`
	InventoryAccount      string             `json:"InventoryAccount,omitempty"`
	Sellable              bool               `json:"Sellable"`
}

type Supplier struct {
	ID   string `json:"ID"`
	Name string `json:"Name"`
}

// PurchaseHeader — шапка заказа (advanced-purchase).
type PurchaseHeader struct {
	SupplierID            string `json:"SupplierID"`
	Location              string `json:"Location"`
	Date                  string `json:"Date"`
	TaxRule               string `json:"TaxRule"`
	Approach              string `json:"Approach"`
	BlindReceipt          bool   `json:"BlindReceipt"`
	PurchaseType          string `json:"PurchaseType"`
	Status                string `json:"Status"`
	SupplierInvoiceNumber string `json:"SupplierInvoiceNumber"`
}

type PurchaseLine struct {
	ProductID string  `json:"ProductID"`
	Quantity  float64 `json:"Quantity"`
	Price     float64 `json:"Price"`
	Total     float64 `json:"Total"`
	TaxRule   string  `json:"TaxRule"`
	Discount  float64 `json:"Discount"`
	Tax       float64 `json:"Tax"`
}

type PurchaseOrderLines struct {
	TaskID                   string         `json:"TaskID"`
	CombineAdditionalCharges bool           `json:"CombineAdditionalCharges"`
	Memo                     string         `json:"Memo"`
	Status                   string         `json:"Status"`
	Lines                    []PurchaseLine `json:"Lines"`
	AdditionalCharges        []any          `json:"AdditionalCharges"`
}
