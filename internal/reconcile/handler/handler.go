package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"invoice-recon/internal/catalog"
	"invoice-recon/internal/enrich"
	"invoice-recon/internal/extract"
	"invoice-recon/internal/inventory"
	"invoice-recon/internal/lookup"
	"invoice-recon/internal/middleware"
	"invoice-recon/internal/reconcile/model"
	recSvc "invoice-recon/internal/reconcile/service"
)

const dateLayout = "2006-01-02"

// SupplierDirectory — список поставщиков ERP для подсказки при экспорте заказа.
type SupplierDirectory interface {
	Suppliers(ctx context.Context) ([]inventory.Supplier, error)
}

// BrandDirectory — бренды ERP, дополняют мастер-список поставщиков.
type BrandDirectory interface {
	Brands(ctx context.Context) ([]string, error)
}

// Deps — внешние системы и настройки хендлеров. Nil-поле = интеграция не настроена.
type Deps struct {
	Lookups   lookup.Provider
	Catalog   catalog.Source
	Enrich    enrich.Lookup
	Oracle    extract.Oracle
	ERP       inventory.ERP
	Finder    recSvc.ProductFinder
	Directory SupplierDirectory
	Brands    BrandDirectory

	Matcher   *recSvc.Matcher
	Locations []model.Location
	Workers   int
	Now       func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// tables — справочники; при ошибке загрузки работают значения по умолчанию (nil Tables).
func (d *Deps) tables(ctx context.Context, log zerolog.Logger) *lookup.Tables {
	if d.Lookups == nil {
		return nil
	}
	t, err := d.Lookups.Tables(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("lookup tables unavailable, using defaults")
		return nil
	}
	return t
}

// masterSuppliers — поставщики из справочника плюс бренды ERP, без повторов.
func (d *Deps) masterSuppliers(ctx context.Context, log zerolog.Logger) []string {
	master := d.tables(ctx, log).MasterSuppliers()
	if d.Brands == nil {
		return master
	}
	brands, err := d.Brands.Brands(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("erp brands unavailable")
		return master
	}
	seen := make(map[string]struct{}, len(master)+len(brands))
	for _, m := range master {
		seen[m] = struct{}{}
	}
	for _, b := range brands {
		if _, ok := seen[b]; ok || strings.TrimSpace(b) == "" {
			continue
		}
		seen[b] = struct{}{}
		master = append(master, b)
	}
	return master
}

func notConfigured(w http.ResponseWriter, what string) {
	http.Error(w, what+" is not configured", http.StatusServiceUnavailable)
}

// Lookups — текущие справочники (для UI: стили, поставщики, отсутствующие листы).
func Lookups(d *Deps, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := middleware.Logger(r, logger)
		if d.Lookups == nil {
			notConfigured(w, "lookup workbook")
			return
		}
		t, err := d.Lookups.Tables(r.Context())
		if err != nil {
			if errors.Is(err, lookup.ErrNoSource) {
				notConfigured(w, "lookup workbook")
				return
			}
			log.Error().Err(err).Msg("load lookups")
			http.Error(w, "failed to load lookups: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, log, http.StatusOK, t)
	}
}

type priceRequest struct {
	Cost   decimal.Decimal `json:"cost"`
	Range  string          `json:"range"`
	Format string          `json:"format"`
}

type priceResponse struct {
	SellPrice string `json:"sellPrice"`
	Draft     bool   `json:"draft"`
}

func Price(logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		log := middleware.Logger(r, logger)
		var req priceRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, log, http.StatusOK, priceResponse{
			SellPrice: recSvc.SellPrice(req.Cost, req.Range, req.Format).StringFixed(2),
			Draft:     recSvc.IsDraft(req.Format),
		})
	}
}

type reconcileRequest struct {
	Lines      []model.InvoiceLine `json:"lines"`
	ResolveIDs *bool               `json:"resolveIds,omitempty"`
}

type reconcileSummary struct {
	Total          int `json:"total"`
	Matched        int `json:"matched"`
	Unmatched      int `json:"unmatched"`
	VendorNotFound int `json:"vendorNotFound"`
}

type reconcileResponse struct {
	Results []model.MatchResult  `json:"results"`
	Groups  []model.ProductGroup `json:"groups"`
	Summary reconcileSummary     `json:"summary"`
}

// Reconcile — снимок каталога по поставщикам строк, сверка, группировка непрошедших
// и (по умолчанию) поиск ID товаров в ERP для обеих локаций.
func Reconcile(d *Deps, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		start := time.Now()
		log := middleware.Logger(r, logger)
		if d.Catalog == nil {
			notConfigured(w, "catalog")
			return
		}
		var req reconcileRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}

		suppliers := make([]string, 0, len(req.Lines))
		for _, l := range req.Lines {
			suppliers = append(suppliers, l.Supplier)
		}
		snap := catalog.FetchSnapshot(r.Context(), d.Catalog, suppliers, log)

		results, groups := d.Matcher.WithLogger(log).Run(req.Lines, snap, d.Workers)
		if d.Finder != nil && (req.ResolveIDs == nil || *req.ResolveIDs) {
			recSvc.ResolveLocationIDs(r.Context(), results, d.Finder)
		}

		sum := reconcileSummary{Total: len(results)}
		for _, res := range results {
			switch res.Status {
			case model.StatusMatched:
				sum.Matched++
			case model.StatusVendorNotFound:
				sum.VendorNotFound++
			default:
				sum.Unmatched++
			}
		}
		if groups == nil {
			groups = []model.ProductGroup{}
		}
		writeJSON(w, log, http.StatusOK, reconcileResponse{Results: results, Groups: groups, Summary: sum})

		log.Info().
			Int("lines", sum.Total).
			Int("matched", sum.Matched).
			Int("unmatched", sum.Unmatched).
			Int("vendor_not_found", sum.VendorNotFound).
			Int("groups", len(groups)).
			Dur("elapsed", time.Since(start)).
			Msg("reconcile done")
	}
}

type groupsRequest struct {
	Groups []model.ProductGroup `json:"groups"`
}

type enrichResponse struct {
	Groups []model.ProductGroup `json:"groups"`
	Log    []string             `json:"log"`
}

func Enrich(d *Deps, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		log := middleware.Logger(r, logger)
		if d.Enrich == nil {
			notConfigured(w, "beer database")
			return
		}
		var req groupsRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		groups, lines := enrich.EnrichGroups(r.Context(), d.Enrich, req.Groups, log)
		writeJSON(w, log, http.StatusOK, enrichResponse{Groups: groups, Log: lines})
	}
}

// Stage — проверка полноты обогащения и раскладка групп по вариантам.
// Ошибки строк возвращаются в теле, остальные группы обрабатываются.
func Stage(d *Deps, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		log := middleware.Logger(r, logger)
		var req groupsRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		var knownStyle func(string) bool
		if t := d.tables(r.Context(), log); t != nil {
			knownStyle = t.HasStyle
		}
		res := recSvc.Stage(req.Groups, knownStyle)
		log.Info().
			Int("groups", len(req.Groups)).
			Int("staged", len(res.Staged)).
			Int("errors", len(res.Errors)).
			Msg("stage done")
		writeJSON(w, log, http.StatusOK, res)
	}
}

type synthesizeRequest struct {
	Staged []model.StagedVariant `json:"staged"`
	Date   string                `json:"date,omitempty"`
}

type synthesizeResponse struct {
	Identities []model.SynthesizedIdentity `json:"identities"`
	Date       string                      `json:"date"`
}

func Synthesize(d *Deps, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		log := middleware.Logger(r, logger)
		var req synthesizeRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		date := d.now()
		if s := strings.TrimSpace(req.Date); s != "" {
			t, err := time.Parse(dateLayout, s)
			if err != nil {
				http.Error(w, "bad date, want YYYY-MM-DD: "+err.Error(), http.StatusBadRequest)
				return
			}
			date = t
		}
		ids := recSvc.SynthesizeAll(req.Staged, d.tables(r.Context(), log), date)
		if ids == nil {
			ids = []model.SynthesizedIdentity{}
		}
		writeJSON(w, log, http.StatusOK, synthesizeResponse{Identities: ids, Date: date.Format(dateLayout)})
	}
}

type syncRequest struct {
	Identities []model.SynthesizedIdentity `json:"identities"`
}

type syncResponse struct {
	Events []inventory.SyncEvent `json:"events"`
	Failed int                   `json:"failed"`
}

// Sync — двухфазная запись семейств и вариантов в ERP. Ошибки отдельных шагов
// отражаются в журнале событий, статус ответа остаётся 200.
func Sync(d *Deps, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		log := middleware.Logger(r, logger)
		if d.ERP == nil {
			notConfigured(w, "ERP")
			return
		}
		var req syncRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		events := inventory.NewSyncer(d.ERP, d.Locations, log).Sync(r.Context(), req.Identities)
		if events == nil {
			events = []inventory.SyncEvent{}
		}
		resp := syncResponse{Events: events}
		for _, e := range events {
			switch e.Action {
			case inventory.ActionFamilyFailed, inventory.ActionHalt, inventory.ActionVariantFailed:
				resp.Failed++
			}
		}
		writeJSON(w, log, http.StatusOK, resp)
	}
}

type purchaseRequest struct {
	Header   inventory.POHeader  `json:"header"`
	Results  []model.MatchResult `json:"results"`
	Location string              `json:"location"` // "A" | "B"
	Date     string              `json:"date,omitempty"`
	Submit   bool                `json:"submit"`
}

type supplierSuggestion struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type purchaseResponse struct {
	Order      inventory.PurchaseOrder `json:"order"`
	Suggestion *supplierSuggestion     `json:"suggestion,omitempty"`
	TaskID     string                  `json:"taskId,omitempty"`
}

func (d *Deps) location(side inventory.Side) model.Location {
	if int(side) < len(d.Locations) {
		return d.Locations[side]
	}
	return model.Location{}
}

// PurchaseOrders — сборка (и по флагу submit отправка) заказа поставщику для одной локации.
func PurchaseOrders(d *Deps, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		log := middleware.Logger(r, logger)
		var req purchaseRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}

		var side inventory.Side
		switch strings.ToUpper(strings.TrimSpace(req.Location)) {
		case "", "A":
			side = inventory.SideA
		case "B":
			side = inventory.SideB
		default:
			http.Error(w, "location must be A or B", http.StatusBadRequest)
			return
		}
		date := d.now()
		if s := strings.TrimSpace(req.Date); s != "" {
			t, err := time.Parse(dateLayout, s)
			if err != nil {
				http.Error(w, "bad date, want YYYY-MM-DD: "+err.Error(), http.StatusBadRequest)
				return
			}
			date = t
		}

		po, err := inventory.BuildPurchaseOrder(req.Header, req.Results, side, d.location(side), date)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := purchaseResponse{Order: po}

		if strings.TrimSpace(req.Header.SupplierID) == "" && d.Directory != nil {
			resp.Suggestion = suggest(r.Context(), d.Directory, req.Header.PayableTo, log)
		}

		if req.Submit {
			if d.ERP == nil {
				notConfigured(w, "ERP")
				return
			}
			taskID, err := inventory.NewPurchaser(d.ERP).Submit(r.Context(), po)
			if err != nil {
				if errors.Is(err, inventory.ErrSupplierNotLinked) {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				log.Error().Err(err).Str("task", taskID).Msg("purchase order submit failed")
				http.Error(w, "purchase order submit failed: "+err.Error(), http.StatusBadGateway)
				return
			}
			resp.TaskID = taskID
			log.Info().
				Str("task", taskID).
				Str("location", po.Location.Name).
				Int("lines", len(po.Lines)).
				Str("total", po.TotalCost).
				Msg("purchase order submitted")
		}
		writeJSON(w, log, http.StatusOK, resp)
	}
}

func suggest(ctx context.Context, dir SupplierDirectory, payee string, log zerolog.Logger) *supplierSuggestion {
	list, err := dir.Suppliers(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("supplier list unavailable")
		return nil
	}
	names := make([]string, 0, len(list))
	for _, s := range list {
		names = append(names, s.Name)
	}
	name, score, ok := inventory.SuggestSupplier(payee, names)
	if !ok {
		return nil
	}
	out := &supplierSuggestion{Name: name, Score: score}
	for _, s := range list {
		if s.Name == name {
			out.ID = s.ID
			break
		}
	}
	return out
}
