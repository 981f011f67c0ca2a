package model

import "github.com/shopspring/decimal"

type MatchStatus string

const (
	StatusPending        MatchStatus = "pending"
	StatusMatched        MatchStatus = "matched"
	StatusUnmatched      MatchStatus = "unmatched" // требует ручного разбора
	StatusVendorNotFound MatchStatus = "vendor_not_found"
)

const (
	DefaultProductType = "Beer"
	RangeRotational    = "Rotational Product"
	RangeCore          = "Core Product"
)

// InvoiceLine — одна строка, извлечённая из счёта поставщика.
type InvoiceLine struct {
	Supplier     string          `json:"supplier"`
	Collaborator string          `json:"collaborator,omitempty"`
	Product      string          `json:"product"`
	ABV          string          `json:"abv"`
	Format       string          `json:"format"`   // Keg, KeyKeg, Cask, Can ...
	PackSize     string          `json:"packSize"` // "1" для одиночной единицы
	Volume       string          `json:"volume"`   // свободный текст с единицей
	Quantity     float64         `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unitCost"`
	SplitCase    bool            `json:"splitCase,omitempty"`
}

type CatalogVariant struct {
	ID           string `json:"id,omitempty"`
	Title        string `json:"title"`
	SKU          string `json:"sku"`
	InventoryQty int    `json:"inventoryQty"`
}

// CatalogCandidate — снимок товара каталога (с вариантами) для одного поставщика.
type CatalogCandidate struct {
	ID          string           `json:"id,omitempty"`
	Title       string           `json:"title"`
	FormatMeta  string           `json:"formatMeta"`
	KegTypeMeta string           `json:"kegTypeMeta"`
	ImageURL    string           `json:"imageUrl,omitempty"`
	Variants    []CatalogVariant `json:"variants"`
}

// MatchResult: либо Matched с артикулами, либо любой другой статус с пустыми SKU/ID.
type MatchResult struct {
	Line           InvoiceLine `json:"line"`
	Status         MatchStatus `json:"status"`
	Score          int         `json:"score,omitempty"`
	MatchedProduct string      `json:"matchedProduct"`
	MatchedVariant string      `json:"matchedVariant"`
	ImageURL       string      `json:"imageUrl"`
	SKUA           string      `json:"skuA"`
	SKUB           string      `json:"skuB"`
	IDA            string      `json:"idA"`
	IDB            string      `json:"idB"`
}

func (r MatchResult) Matched() bool { return r.Status == StatusMatched }

// Location — одна из двух зеркальных складских локаций.
type Location struct {
	Prefix string `json:"prefix"` // "L-"
	Name   string `json:"name"`   // "London"
}

const (
	EnrichFound    = "found"
	EnrichNotFound = "not_found"
)

// Enrichment — данные из внешней базы пива.
type Enrichment struct {
	Status          string `json:"status"`
	ExternalID      string `json:"externalId,omitempty"`
	Brewery         string `json:"brewery" validate:"required"`
	Product         string `json:"product" validate:"required"`
	ABV             string `json:"abv" validate:"required"`
	Style           string `json:"style" validate:"required"`
	Description     string `json:"description" validate:"required"`
	LabelImageURL   string `json:"labelImageUrl,omitempty"`
	BreweryLocation string `json:"breweryLocation,omitempty"`
	QueryUsed       string `json:"queryUsed,omitempty"`
}

type FormatSlot struct {
	Format    string          `json:"format"`
	PackSize  string          `json:"packSize"`
	Volume    string          `json:"volume"`
	UnitCost  decimal.Decimal `json:"unitCost"`
	SplitCase bool            `json:"splitCase,omitempty"`
}

const MaxSlots = 3

// ProductGroup — строка «матрицы»: непрошедшие сверку строки, сгруппированные по продукту.
type ProductGroup struct {
	Supplier     string       `json:"supplier"`
	Collaborator string       `json:"collaborator,omitempty"`
	Product      string       `json:"product"`
	ABV          string       `json:"abv"`
	ProductType  string       `json:"productType"`
	Range        string       `json:"range"`
	Slots        []FormatSlot `json:"slots"`
	Enrichment   Enrichment   `json:"enrichment"`
}

// StagedVariant — пара (группа, слот), готовая к генерации артикулов.
type StagedVariant struct {
	Index         int             `json:"index"`
	Brand         string          `json:"brand"`
	Collaborator  string          `json:"collaborator,omitempty"`
	Product       string          `json:"product"`
	ABV           string          `json:"abv"`
	Style         string          `json:"style"`
	Description   string          `json:"description"`
	LabelImageURL string          `json:"labelImageUrl,omitempty"`
	Format        string          `json:"format"`
	PackSize      string          `json:"packSize"`
	Volume        string          `json:"volume"`
	UnitCost      decimal.Decimal `json:"unitCost"`
	SplitCase     bool            `json:"splitCase,omitempty"`
	ProductType   string          `json:"productType"`
	Range         string          `json:"range"`
}

// SynthesizedIdentity — одна запись варианта для ERP.
type SynthesizedIdentity struct {
	FamilySKU   string          `json:"familySku"`
	FamilyName  string          `json:"familyName"`
	VariantSKU  string          `json:"variantSku"`
	VariantName string          `json:"variantName"`
	Pack        float64         `json:"pack"`
	UnitWeight  float64         `json:"unitWeight"`
	TotalWeight float64         `json:"totalWeight"`
	Connector   string          `json:"connector"`
	Cost        decimal.Decimal `json:"cost"`
	SellPrice   decimal.Decimal `json:"sellPrice"`
	Source      StagedVariant   `json:"source"`
}
