package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"invoice-recon/internal/fuzzy"
	"invoice-recon/internal/reconcile/model"
)

const (
	vatRule            = "20% (VAT on Expenses)"
	supplierSuggestMin = 60
	purchaseDateLayout = "2006-01-02"
)

var (
	ErrUnmatchedLines    = errors.New("inventory: every line must be matched before export")
	ErrNoLines           = errors.New("inventory: no valid lines for the chosen location")
	ErrSupplierNotLinked = errors.New("inventory: supplier not linked")
)

// Side — какая из двух локаций получает заказ.
type Side int

const (
	SideA Side = iota
	SideB
)

type POHeader struct {
	SupplierID    string `json:"supplierId,omitempty"`
	PayableTo     string `json:"payableTo"`
	InvoiceNumber string `json:"invoiceNumber"`
}

// PurchaseOrder — собранный заказ, ещё не отправленный.
type PurchaseOrder struct {
	Header    POHeader       `json:"header"`
	Location  model.Location `json:"location"`
	Date      time.Time      `json:"date"`
	Lines     []PurchaseLine `json:"lines"`
	TotalCost string         `json:"totalCost"`
}

// BuildPurchaseOrder — строки заказа из сопоставленных результатов для выбранной локации.
// Total = round(qty × price, 2).
func BuildPurchaseOrder(h POHeader, results []model.MatchResult, side Side, loc model.Location, date time.Time) (PurchaseOrder, error) {
	po := PurchaseOrder{Header: h, Location: loc, Date: date}
	for _, r := range results {
		if !r.Matched() {
			return po, ErrUnmatchedLines
		}
	}

	sum := decimal.Zero
	for _, r := range results {
		id := r.IDA
		if side == SideB {
			id = r.IDB
		}
		if strings.TrimSpace(id) == "" {
			continue
		}
		qty := decimal.NewFromFloat(r.Line.Quantity)
		total := qty.Mul(r.Line.UnitCost).Round(2)
		sum = sum.Add(total)
		po.Lines = append(po.Lines, PurchaseLine{
			ProductID: id,
			Quantity:  r.Line.Quantity,
			Price:     r.Line.UnitCost.InexactFloat64(),
			Total:     total.InexactFloat64(),
			TaxRule:   vatRule,
		})
	}
	if len(po.Lines) == 0 {
		return po, ErrNoLines
	}
	po.TotalCost = sum.StringFixed(2)
	return po, nil
}

// Purchaser отправляет заказ: шапка (advanced-purchase), затем строки (purchase/order).
type Purchaser struct {
	erp ERP
}

func NewPurchaser(erp ERP) *Purchaser { return &Purchaser{erp: erp} }

// ResolveSupplier — явный ID, иначе поиск по имени (с заменой "&" на "and").
func (p *Purchaser) ResolveSupplier(ctx context.Context, h POHeader) (string, error) {
	if id := strings.TrimSpace(h.SupplierID); id != "" {
		return id, nil
	}
	name := strings.TrimSpace(h.PayableTo)
	if name == "" {
		return "", ErrSupplierNotLinked
	}
	candidates := []string{name}
	if strings.Contains(name, "&") {
		candidates = append(candidates, strings.ReplaceAll(name, "&", "and"))
	}
	for _, n := range candidates {
		list, err := p.erp.SuppliersByName(ctx, n)
		if err == nil && len(list) > 0 && list[0].ID != "" {
			return list[0].ID, nil
		}
	}
	return "", ErrSupplierNotLinked
}

// Submit возвращает ID задачи закупки в ERP.
func (p *Purchaser) Submit(ctx context.Context, po PurchaseOrder) (string, error) {
	supplierID, err := p.ResolveSupplier(ctx, po.Header)
	if err != nil {
		return "", err
	}
	taskID, err := p.erp.CreateAdvancedPurchase(ctx, PurchaseHeader{
		SupplierID:            supplierID,
		Location:              po.Location.Name,
		Date:                  po.Date.Format(purchaseDateLayout),
		TaxRule:               vatRule,
		Approach:              "Stock",
		PurchaseType:          "Advanced",
		Status:                "ORDERING",
		SupplierInvoiceNumber: po.Header.InvoiceNumber,
	})
	if err != nil {
		return "", fmt.Errorf("purchase header: %w", err)
	}
	err = p.erp.AddPurchaseOrderLines(ctx, PurchaseOrderLines{
		TaskID:            taskID,
		Memo:              "invoice-recon import " + uuid.NewString(),
		Status:            "DRAFT",
		Lines:             po.Lines,
		AdditionalCharges: []any{},
	})
	if err != nil {
		return taskID, fmt.Errorf("purchase lines: %w", err)
	}
	return taskID, nil
}

// SuggestSupplier — лучший кандидат из списка поставщиков ERP при оценке > 60.
func SuggestSupplier(payee string, names []string) (string, int, bool) {
	if strings.TrimSpace(payee) == "" {
		return "", 0, false
	}
	m, ok := fuzzy.ExtractOne(payee, names)
	if !ok || m.Score <= supplierSuggestMin {
		return "", 0, false
	}
	return m.Choice, m.Score, true
}
