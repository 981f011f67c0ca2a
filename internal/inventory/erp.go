package inventory

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const pageLimit = 100

// ERP — операции склада, нужные синхронизации и закупкам.
type ERP interface {
	FamiliesBySKU(ctx context.Context, sku string) ([]Family, error)
	FamiliesByName(ctx context.Context, name string) ([]Family, error)
	CreateFamily(ctx context.Context, f Family) (string, error)
	GetFamily(ctx context.Context, id string) (*Family, error)
	UpdateFamily(ctx context.Context, f Family) error

	ProductsBySKU(ctx context.Context, sku string) ([]Product, error)
	CreateProduct(ctx context.Context, p Product) (string, error)

	SuppliersByName(ctx context.Context, name string) ([]Supplier, error)
	CreateAdvancedPurchase(ctx context.Context, h PurchaseHeader) (string, error)
	AddPurchaseOrderLines(ctx context.Context, o PurchaseOrderLines) error
}

type familiesResponse struct {
	ID              string   `json:"ID"`
	ProductFamilies []Family `json:"ProductFamilies"`
}

type productsResponse struct {
	ID       string    `json:"ID"`
	Products []Product `json:"Products"`
}

type suppliersResponse struct {
	Suppliers    []Supplier `json:"Suppliers"`
	SupplierList []Supplier `json:"SupplierList"`
}

func (r suppliersResponse) list() []Supplier {
	if len(r.SupplierList) > 0 {
		return r.SupplierList
	}
	return r.Suppliers
}

type brandsResponse struct {
	BrandList []struct {
		Name string `json:"Name"`
	} `json:"BrandList"`
}

type idResponse struct {
	ID string `json:"ID"`
}

func (c *Client) FamiliesBySKU(ctx context.Context, sku string) ([]Family, error) {
	var r familiesResponse
	err := c.do(ctx, http.MethodGet, "/productFamily", url.Values{"Sku": {sku}}, nil, &r)
	return r.ProductFamilies, err
}

func (c *Client) FamiliesByName(ctx context.Context, name string) ([]Family, error) {
	var r familiesResponse
	err := c.do(ctx, http.MethodGet, "/productFamily", url.Values{"Name": {name}}, nil, &r)
	return r.ProductFamilies, err
}

// CreateFamily — ID созданной семьи; ERP отдаёт его в корне либо в ProductFamilies[0].
func (c *Client) CreateFamily(ctx context.Context, f Family) (string, error) {
	var r familiesResponse
	if err := c.do(ctx, http.MethodPost, "/productFamily", nil, f, &r); err != nil {
		return "", err
	}
	if r.ID == "" && len(r.ProductFamilies) > 0 {
		r.ID = r.ProductFamilies[0].ID
	}
	if r.ID == "" {
		return "", ErrNotFound
	}
	return r.ID, nil
}

func (c *Client) GetFamily(ctx context.Context, id string) (*Family, error) {
	var r familiesResponse
	if err := c.do(ctx, http.MethodGet, "/productFamily", url.Values{"ID": {id}}, nil, &r); err != nil {
		return nil, err
	}
	if len(r.ProductFamilies) > 0 {
		return &r.ProductFamilies[0], nil
	}
	return nil, ErrNotFound
}

func (c *Client) UpdateFamily(ctx context.Context, f Family) error {
	return c.do(ctx, http.MethodPut, "/productFamily", nil, f, nil)
}

func (c *Client) ProductsBySKU(ctx context.Context, sku string) ([]Product, error) {
	var r productsResponse
	err := c.do(ctx, http.MethodGet, "/product", url.Values{"Sku": {sku}}, nil, &r)
	return r.Products, err
}

func (c *Client) CreateProduct(ctx context.Context, p Product) (string, error) {
	var r productsResponse
	if err := c.do(ctx, http.MethodPost, "/product", nil, p, &r); err != nil {
		return "", err
	}
	if len(r.Products) > 0 && r.Products[0].ID != "" {
		return r.Products[0].ID, nil
	}
	if r.ID == "" {
		return "", ErrNotFound
	}
	return r.ID, nil
}

// FindProductID — ID позиции по точному артикулу (для заполнения ID локаций).
func (c *Client) FindProductID(ctx context.Context, sku string) (string, error) {
	items, err := c.ProductsBySKU(ctx, sku)
	if err != nil {
		return "", err
	}
	if p := findProduct(items, sku); p != nil {
		return p.ID, nil
	}
	return "", ErrNotFound
}

func (c *Client) SuppliersByName(ctx context.Context, name string) ([]Supplier, error) {
	var r suppliersResponse
	err := c.do(ctx, http.MethodGet, "/supplier", url.Values{"Name": {name}}, nil, &r)
	return r.list(), err
}

// Suppliers — полный список поставщиков постранично, по имени без учёта регистра.
func (c *Client) Suppliers(ctx context.Context) ([]Supplier, error) {
	var all []Supplier
	for page := 1; ; page++ {
		var r suppliersResponse
		q := url.Values{"Page": {strconv.Itoa(page)}, "Limit": {strconv.Itoa(pageLimit)}}
		if err := c.do(ctx, http.MethodGet, "/supplier", q, nil, &r); err != nil {
			return all, err
		}
		list := r.list()
		all = append(all, list...)
		if len(list) < pageLimit {
			break
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return strings.ToLower(all[i].Name) < strings.ToLower(all[j].Name) })
	return all, nil
}

// Brands — справочник брендов ERP (мастер-список поставщиков), уникальный и отсортированный.
func (c *Client) Brands(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for page := 1; ; page++ {
		var r brandsResponse
		q := url.Values{"Page": {strconv.Itoa(page)}, "Limit": {strconv.Itoa(pageLimit)}}
		if err := c.do(ctx, http.MethodGet, "/ref/brand", q, nil, &r); err != nil {
			return out, err
		}
		for _, b := range r.BrandList {
			if b.Name == "" {
				continue
			}
			if _, ok := seen[b.Name]; !ok {
				seen[b.Name] = struct{}{}
				out = append(out, b.Name)
			}
		}
		if len(r.BrandList) < pageLimit {
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out, nil
}

func (c *Client) CreateAdvancedPurchase(ctx context.Context, h PurchaseHeader) (string, error) {
	var r idResponse
	if err := c.do(ctx, http.MethodPost, "/advanced-purchase", nil, h, &r); err != nil {
		return "", err
	}
	if r.ID == "" {
		return "", ErrNotFound
	}
	return r.ID, nil
}

func (c *Client) AddPurchaseOrderLines(ctx context.Context, o PurchaseOrderLines) error {
	return c.do(ctx, http.MethodPost, "/purchase/order", nil, o, nil)
}

func findFamily(items []Family, match func(Family) string, want string) *Family {
	for i := range items {
		if strings.EqualFold(match(items[i]), want) {
			return &items[i]
		}
	}
	return nil
}

func findProduct(items []Product, sku string) *Product {
	for i := range items {
		if strings.EqualFold(items[i].SKU, sku) {
			return &items[i]
		}
	}
	return nil
}
