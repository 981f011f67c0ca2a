package extract

import (
	"strings"

	"github.com/shopspring/decimal"

	"invoice-recon/internal/reconcile/model"
	"invoice-recon/internal/reconcile/service"
	"invoice-recon/internal/utils"
)

// Header — шапка счёта. Суммы строками: модель возвращает их как есть.
type Header struct {
	PayableTo      string `json:"payable_to" jsonschema_description:"Supplier the invoice is payable to"`
	InvoiceNumber  string `json:"invoice_number" jsonschema_description:"Supplier invoice number"`
	IssueDate      string `json:"issue_date" jsonschema_description:"Issue date in YYYY-MM-DD format if known"`
	PaymentTerms   string `json:"payment_terms"`
	DueDate        string `json:"due_date"`
	TotalNet       string `json:"total_net" jsonschema_description:"Net total as a plain number string, e.g. \"123.45\""`
	TotalVAT       string `json:"total_vat"`
	TotalGross     string `json:"total_gross"`
	TotalDiscount  string `json:"total_discount"`
	ShippingCharge string `json:"shipping_charge"`
}

type DraftLine struct {
	SupplierName string  `json:"supplier_name" jsonschema_description:"Brewery that produced the item"`
	Collaborator string  `json:"collaborator" jsonschema_description:"Collaborating brewery, empty if none"`
	ProductName  string  `json:"product_name"`
	ABV          string  `json:"abv" jsonschema_description:"ABV number without the percent sign"`
	Format       string  `json:"format" jsonschema_description:"One of Can, Bottle, Keg, KeyKeg, PolyKeg, Steel Keg, Cask, or similar"`
	PackSize     string  `json:"pack_size" jsonschema_description:"Units per case, \"1\" for kegs and casks"`
	Volume       string  `json:"volume" jsonschema_description:"Volume with unit, e.g. 440ml, 30L"`
	Quantity     float64 `json:"quantity"`
	ItemPrice    string  `json:"item_price" jsonschema_description:"Unit cost as a plain number string"`
}

// Draft — сырой результат извлечения, до очистки.
type Draft struct {
	Header Header      `json:"header"`
	Lines  []DraftLine `json:"line_items"`
}

// CleanLines — очистка названий и канонизация поставщика по мастер-списку.
func CleanLines(d Draft, master []string) []model.InvoiceLine {
	out := make([]model.InvoiceLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		cost, ok := utils.ParseMoney(l.ItemPrice)
		if !ok {
			cost = decimal.Zero
		}
		pack := strings.TrimSpace(l.PackSize)
		if pack == "" {
			pack = "1"
		}
		out = append(out, model.InvoiceLine{
			Supplier:     service.CanonicalizeSupplier(strings.TrimSpace(l.SupplierName), master),
			Collaborator: strings.TrimSpace(l.Collaborator),
			Product:      service.CleanProductName(l.ProductName),
			ABV:          strings.TrimSuffix(strings.TrimSpace(l.ABV), "%"),
			Format:       strings.TrimSpace(l.Format),
			PackSize:     pack,
			Volume:       strings.TrimSpace(l.Volume),
			Quantity:     l.Quantity,
			UnitCost:     cost,
		})
	}
	return out
}
