package inventory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"invoice-recon/internal/reconcile/model"
)

func matched(idA, idB string, qty float64, price string) model.MatchResult {
	return model.MatchResult{
		Status: model.StatusMatched,
		IDA:    idA,
		IDB:    idB,
		Line:   model.InvoiceLine{Quantity: qty, UnitCost: decimal.RequireFromString(price)},
	}
}

var poDate = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

func TestBuildPurchaseOrder(t *testing.T) {
	results := []model.MatchResult{
		matched("a1", "b1", 3, "19.99"),
		matched("", "b2", 1, "120"),
		matched("a3", "", 2, "0.335"),
	}
	po, err := BuildPurchaseOrder(POHeader{PayableTo: "Cloudwater"}, results, SideA, locations[0], poDate)
	if err != nil {
		t.Fatal(err)
	}
	if len(po.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(po.Lines))
	}
	if po.Lines[0].ProductID != "a1" || po.Lines[0].Total != 59.97 || po.Lines[0].TaxRule != vatRule {
		t.Errorf("line 0 = %+v", po.Lines[0])
	}
	if po.Lines[1].Total != 0.67 {
		t.Errorf("line 1 total = %v", po.Lines[1].Total)
	}
	if po.TotalCost != "60.64" {
		t.Errorf("total = %s", po.TotalCost)
	}

	po, err = BuildPurchaseOrder(POHeader{}, results, SideB, locations[1], poDate)
	if err != nil || len(po.Lines) != 2 || po.Lines[1].ProductID != "b2" {
		t.Errorf("side B = %+v, %v", po.Lines, err)
	}
}

func TestBuildPurchaseOrder_Refusals(t *testing.T) {
	results := []model.MatchResult{matched("a1", "b1", 1, "10"), {Status: model.StatusUnmatched}}
	if _, err := BuildPurchaseOrder(POHeader{}, results, SideA, locations[0], poDate); !errors.Is(err, ErrUnmatchedLines) {
		t.Errorf("unmatched: err = %v", err)
	}
	results = []model.MatchResult{matched("", "b1", 1, "10")}
	if _, err := BuildPurchaseOrder(POHeader{}, results, SideA, locations[0], poDate); !errors.Is(err, ErrNoLines) {
		t.Errorf("no ids: err = %v", err)
	}
}

func TestPurchaser_Submit(t *testing.T) {
	erp := newFakeERP()
	erp.suppliers = []Supplier{{ID: "sup-1", Name: "Left and Right"}}

	po, err := BuildPurchaseOrder(POHeader{PayableTo: "Left & Right", InvoiceNumber: "INV-7"},
		[]model.MatchResult{matched("a1", "b1", 2, "10")}, SideA, locations[0], poDate)
	if err != nil {
		t.Fatal(err)
	}
	taskID, err := NewPurchaser(erp).Submit(context.Background(), po)
	if err != nil {
		t.Fatal(err)
	}
	if taskID == "" || len(erp.headers) != 1 || len(erp.orders) != 1 {
		t.Fatalf("task = %q, headers = %d, orders = %d", taskID, len(erp.headers), len(erp.orders))
	}
	h := erp.headers[0]
	if h.SupplierID != "sup-1" || h.Location != "London" || h.Date != "2026-10-14" || h.Status != "ORDERING" || h.SupplierInvoiceNumber != "INV-7" {
		t.Errorf("header = %+v", h)
	}
	o := erp.orders[0]
	if o.TaskID != taskID || o.Status != "DRAFT" || !strings.HasPrefix(o.Memo, "invoice-recon import ") || len(o.Lines) != 1 {
		t.Errorf("order = %+v", o)
	}
}

func TestPurchaser_SupplierNotLinked(t *testing.T) {
	p := NewPurchaser(newFakeERP())
	if _, err := p.ResolveSupplier(context.Background(), POHeader{PayableTo: "Nobody"}); !errors.Is(err, ErrSupplierNotLinked) {
		t.Fatalf("err = %v", err)
	}
	id, err := p.ResolveSupplier(context.Background(), POHeader{SupplierID: "explicit"})
	if err != nil || id != "explicit" {
		t.Fatalf("explicit id = %q, %v", id, err)
	}
}

func TestSuggestSupplier(t *testing.T) {
	names := []string{"BrewDog PLC", "Cloudwater Brew Co", "Thornbridge Brewery"}
	name, score, ok := SuggestSupplier("Cloudwater", names)
	if !ok || name != "Cloudwater Brew Co" || score <= supplierSuggestMin {
		t.Fatalf("got %q %d %v", name, score, ok)
	}
	if _, _, ok := SuggestSupplier("Qqqq", names); ok {
		t.Fatal("low score accepted")
	}
	if _, _, ok := SuggestSupplier("", names); ok {
		t.Fatal("empty payee accepted")
	}
}
