package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// fakeERP — ERP в памяти.
type fakeERP struct {
	families  map[string]*Family
	products  map[string]Product
	suppliers []Supplier
	nextID    int

	failCreateFamily bool
	headers          []PurchaseHeader
	orders           []PurchaseOrderLines
	updates          int
}

func newFakeERP() *fakeERP {
	return &fakeERP{families: map[string]*Family{}, products: map[string]Product{}}
}

func (f *fakeERP) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeERP) FamiliesBySKU(_ context.Context, sku string) ([]Family, error) {
	var out []Family
	for _, fam := range f.families {
		if strings.Contains(strings.ToLower(fam.SKU), strings.ToLower(sku)) {
			out = append(out, *fam)
		}
	}
	return out, nil
}

func (f *fakeERP) FamiliesByName(_ context.Context, name string) ([]Family, error) {
	var out []Family
	for _, fam := range f.families {
		if strings.EqualFold(fam.Name, name) {
			out = append(out, *fam)
		}
	}
	return out, nil
}

func (f *fakeERP) CreateFamily(_ context.Context, fam Family) (string, error) {
	if f.failCreateFamily {
		return "", errors.New("http 500")
	}
	fam.ID = f.id("fam")
	f.families[fam.ID] = &fam
	return fam.ID, nil
}

func (f *fakeERP) GetFamily(_ context.Context, id string) (*Family, error) {
	fam, ok := f.families[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *fam
	cp.Products = append([]FamilyMember(nil), fam.Products...)
	return &cp, nil
}

func (f *fakeERP) UpdateFamily(_ context.Context, fam Family) error {
	if _, ok := f.families[fam.ID]; !ok {
		return ErrNotFound
	}
	f.updates++
	f.families[fam.ID] = &fam
	return nil
}

func (f *fakeERP) ProductsBySKU(_ context.Context, sku string) ([]Product, error) {
	var out []Product
	for _, p := range f.products {
		if strings.EqualFold(p.SKU, sku) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeERP) CreateProduct(_ context.Context, p Product) (string, error) {
	p.ID = f.id("prod")
	f.products[p.ID] = p
	return p.ID, nil
}

func (f *fakeERP) SuppliersByName(_ context.Context, name string) ([]Supplier, error) {
	var out []Supplier
	for _, s := range f.suppliers {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeERP) CreateAdvancedPurchase(_ context.Context, h PurchaseHeader) (string, error) {
	f.headers = append(f.headers, h)
	return f.id("task"), nil
}

func (f *fakeERP) AddPurchaseOrderLines(_ context.Context, o PurchaseOrderLines) error {
	f.orders = append(f.orders, o)
	return nil
}
