package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"invoice-recon/internal/config"
	"invoice-recon/internal/extract"
	"invoice-recon/internal/fileio"
	"invoice-recon/internal/middleware"
	"invoice-recon/internal/reconcile/model"
	"invoice-recon/internal/utils"
)

// Колонки таблицы строк счёта. Переопределяются полями формы с тем же именем.
const (
	colSupplier     = "supplier"
	colCollaborator = "collaborator"
	colProduct      = "product"
	colABV          = "abv"
	colFormat       = "format"
	colPack         = "pack_size"
	colVolume       = "volume"
	colQuantity     = "quantity"
	colPrice        = "item_price"
)

var defaultColumns = map[string]string{
	colSupplier:     "Supplier_Name|Supplier|Brewery",
	colCollaborator: "Collaborator|Collab",
	colProduct:      "Product_Name|Product|Item",
	colABV:          "ABV",
	colFormat:       "Format",
	colPack:         "Pack_Size|Pack",
	colVolume:       "Volume",
	colQuantity:     "Quantity|Qty",
	colPrice:        "Item_Price|Unit Price|Price|Cost",
}

type lineMapping map[string]string

func mappingFromForm(r *http.Request) lineMapping {
	m := lineMapping{}
	for k, def := range defaultColumns {
		if v := strings.TrimSpace(r.FormValue(k)); v != "" {
			m[k] = v
		} else {
			m[k] = def
		}
	}
	return m
}

// повторённая шапка внутри таблицы: значения совпадают с именами своих колонок
func looksLikeHeaderMap(rec map[string]string) bool {
	cnt := 0
	for k, v := range rec {
		if v != "" && normHeaderKey(k) == normHeaderKey(v) {
			cnt++
		}
	}
	return cnt >= 2
}

// toDraftLines — строки таблицы в черновик; пустые строки и повторные шапки отбрасываются.
func toDraftLines(maps []map[string]string, m lineMapping) ([]extract.DraftLine, int) {
	lines := make([]extract.DraftLine, 0, len(maps))
	skipped := 0
	for _, rec := range maps {
		if looksLikeHeaderMap(rec) {
			skipped++
			continue
		}
		get := func(col string) string {
			return strings.TrimSpace(rec[resolveKey(rec, m[col])])
		}
		product := get(colProduct)
		if product == "" {
			skipped++
			continue
		}
		qty, _ := utils.ParseNumber(get(colQuantity))
		lines = append(lines, extract.DraftLine{
			SupplierName: get(colSupplier),
			Collaborator: get(colCollaborator),
			ProductName:  product,
			ABV:          get(colABV),
			Format:       get(colFormat),
			PackSize:     get(colPack),
			Volume:       get(colVolume),
			Quantity:     qty,
			ItemPrice:    get(colPrice),
		})
	}
	return lines, skipped
}

type linesResponse struct {
	Header  *extract.Header     `json:"header,omitempty"`
	Lines   []model.InvoiceLine `json:"lines"`
	Skipped int                 `json:"skipped,omitempty"`
}

// ImportLines — строки счёта из таблицы (csv/xls/xlsx), уже извлечённой вне сервиса.
func ImportLines(cfg config.Config, d *Deps, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		start := time.Now()
		log := middleware.Logger(r, logger)
		defer r.Body.Close()

		if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
			http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		rows, err := fileio.ReadAnyMaps(file, header.Filename, atoi(r.FormValue("header_row"), 1))
		if err != nil {
			http.Error(w, "failed to read lines: "+err.Error(), http.StatusBadRequest)
			return
		}
		draftLines, skipped := toDraftLines(rows, mappingFromForm(r))
		master := d.masterSuppliers(r.Context(), log)
		lines := extract.CleanLines(extract.Draft{Lines: draftLines}, master)

		if len(rows) > 0 {
			log.Debug().
				Str("product_key", resolveKey(rows[0], defaultColumns[colProduct])).
				Str("qty_key", resolveKey(rows[0], defaultColumns[colQuantity])).
				Msg("line columns resolved")
		}
		log.Info().
			Str("file", header.Filename).
			Int("rows", len(rows)).
			Int("lines", len(lines)).
			Int("skipped", skipped).
			Dur("elapsed", time.Since(start)).
			Msg("lines imported")
		writeJSON(w, log, http.StatusOK, linesResponse{Lines: lines, Skipped: skipped})
	}
}

type extractRequest struct {
	Text string `json:"text"`
}

// Extract — текст цифрового PDF (или переданный текст) → черновик от LLM → очищенные строки.
func Extract(cfg config.Config, d *Deps, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		start := time.Now()
		log := middleware.Logger(r, logger)
		defer r.Body.Close()
		if d.Oracle == nil {
			notConfigured(w, "extraction model")
			return
		}

		var text string
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
				http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
				return
			}
			file, _, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
				return
			}
			defer file.Close()
			text, err = extract.PDFText(file)
			if err != nil {
				if errors.Is(err, extract.ErrNoTextLayer) {
					http.Error(w, err.Error(), http.StatusUnprocessableEntity)
					return
				}
				http.Error(w, "failed to read pdf: "+err.Error(), http.StatusBadRequest)
				return
			}
		} else {
			var req extractRequest
			if err := decodeJSON(r, &req); err != nil {
				http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
				return
			}
			text = req.Text
		}
		if strings.TrimSpace(text) == "" {
			http.Error(w, "empty invoice text", http.StatusBadRequest)
			return
		}

		draft, err := d.Oracle.Extract(r.Context(), text)
		if err != nil {
			log.Error().Err(err).Msg("extraction failed")
			http.Error(w, "extraction failed: "+err.Error(), http.StatusBadGateway)
			return
		}
		master := d.masterSuppliers(r.Context(), log)
		lines := extract.CleanLines(*draft, master)

		log.Info().
			Int("text_len", len(text)).
			Int("lines", len(lines)).
			Str("invoice", draft.Header.InvoiceNumber).
			Dur("elapsed", time.Since(start)).
			Msg("extract done")
		writeJSON(w, log, http.StatusOK, linesResponse{Header: &draft.Header, Lines: lines})
	}
}
