package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"invoice-recon/internal/reconcile/model"
)

const (
	shopifyPageSize  = 50
	shopifyMaxPages  = 40
	shopifyUserAgent = "invoice-recon/1.0"
)

var ErrNotConfigured = errors.New("catalog: shopify is not configured")

const productsQuery = `query ($query: String!, $cursor: String, $first: Int!) {
  products(first: $first, query: $query, after: $cursor) {
    pageInfo { hasNextPage endCursor }
    edges { node {
      id title status
      featuredImage { url }
      format_meta: metafield(namespace: "custom", key: "Format") { value }
      keg_meta: metafield(namespace: "custom", key: "Keg_Type") { value }
      variants(first: 20) { edges { node { id title sku inventoryQuantity } } }
    } }
  }
}`

// Shopify — Admin GraphQL API, поиск товаров по vendor с пагинацией по курсору.
type Shopify struct {
	endpoint string
	token    string
	http     *http.Client
}

func NewShopify(shopURL, token, version string) (*Shopify, error) {
	shopURL = strings.TrimSpace(shopURL)
	if shopURL == "" || strings.TrimSpace(token) == "" {
		return nil, ErrNotConfigured
	}
	if version == "" {
		version = "2024-04"
	}
	base := shopURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &Shopify{
		endpoint: strings.TrimRight(base, "/") + "/admin/api/" + version + "/graphql.json",
		token:    token,
		http:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type metaValue struct {
	Value string `json:"value"`
}

type variantNode struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	SKU               string `json:"sku"`
	InventoryQuantity int    `json:"inventoryQuantity"`
}

type productNode struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Status        string `json:"status"`
	FeaturedImage *struct {
		URL string `json:"url"`
	} `json:"featuredImage"`
	FormatMeta *metaValue `json:"format_meta"`
	KegMeta    *metaValue `json:"keg_meta"`
	Variants   struct {
		Edges []struct {
			Node variantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

type productsResponse struct {
	Data struct {
		Products struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Edges []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (n productNode) candidate() model.CatalogCandidate {
	c := model.CatalogCandidate{ID: n.ID, Title: n.Title}
	if n.FeaturedImage != nil {
		c.ImageURL = n.FeaturedImage.URL
	}
	if n.FormatMeta != nil {
		c.FormatMeta = n.FormatMeta.Value
	}
	if n.KegMeta != nil {
		c.KegTypeMeta = n.KegMeta.Value
	}
	for _, e := range n.Variants.Edges {
		c.Variants = append(c.Variants, model.CatalogVariant{
			ID:           e.Node.ID,
			Title:        e.Node.Title,
			SKU:          e.Node.SKU,
			InventoryQty: e.Node.InventoryQuantity,
		})
	}
	return c
}

// vendorQuery — строка поиска Shopify: vendor:'<имя>' с экранированием апострофа.
func vendorQuery(vendor string) string {
	return "vendor:'" + strings.ReplaceAll(vendor, "'", `\'`) + "'"
}

func (s *Shopify) ProductsByVendor(ctx context.Context, vendor string) ([]model.CatalogCandidate, error) {
	if strings.TrimSpace(vendor) == "" {
		return nil, nil
	}
	var (
		out    []model.CatalogCandidate
		cursor string
	)
	for page := 0; page < shopifyMaxPages; page++ {
		vars := map[string]any{"query": vendorQuery(vendor), "first": shopifyPageSize}
		if cursor != "" {
			vars["cursor"] = cursor
		}
		resp, err := s.do(ctx, gqlRequest{Query: productsQuery, Variables: vars})
		if err != nil {
			return out, err
		}
		for _, e := range resp.Data.Products.Edges {
			out = append(out, e.Node.candidate())
		}
		pi := resp.Data.Products.PageInfo
		if !pi.HasNextPage || pi.EndCursor == "" {
			break
		}
		cursor = pi.EndCursor
	}
	return out, nil
}

func (s *Shopify) do(ctx context.Context, body gqlRequest) (*productsResponse, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Shopify-Access-Token", s.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", shopifyUserAgent)

	res, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopify request: %w", err)
	}
	defer res.Body.Close()

	data, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("shopify api error %d: %s", res.StatusCode, strings.TrimSpace(string(data)))
	}
	var parsed productsResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("shopify decode: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("shopify graphql: %s", parsed.Errors[0].Message)
	}
	return &parsed, nil
}
