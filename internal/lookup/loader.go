package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"invoice-recon/internal/fileio"
	"invoice-recon/internal/utils"
)

// Имена листов справочной книги.
const (
	SheetSuppliers  = "MasterData" // A: бренд, B: код
	SheetFormats    = "SKU"        // A: формат, B: код
	SheetWeights    = "Weight"     // A: формат, B: объём, D: вес, E: код размера
	SheetConnectors = "Keg"        // A: коннектор, B: код
	SheetStyles     = "Style"      // A: стиль
)

var ErrNoSource = errors.New("lookup: no workbook configured")

// LoadFunc — источник справочников (файл, тестовая заглушка и т.п.).
type LoadFunc func(ctx context.Context) (*Tables, error)

// FileLoader читает книгу с диска при каждом вызове.
func FileLoader(path string) LoadFunc {
	return func(ctx context.Context) (*Tables, error) {
		if strings.TrimSpace(path) == "" {
			return nil, ErrNoSource
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open lookup workbook: %w", err)
		}
		defer f.Close()
		return FromWorkbook(f, path)
	}
}

// FromWorkbook строит справочники из книги. Отсутствующий лист: не ошибка:
// таблица остаётся пустой (работают значения по умолчанию), имя листа попадает в MissingSheets.
func FromWorkbook(r io.Reader, filename string) (*Tables, error) {
	sheets, err := fileio.ReadWorkbook(r, filename)
	if err != nil {
		return nil, fmt.Errorf("read lookup workbook: %w", err)
	}
	t := New()

	get := func(name string) [][]string {
		rows, ok := sheets[name]
		if !ok {
			t.MissingSheets = append(t.MissingSheets, name)
			return nil
		}
		if len(rows) > 0 {
			return rows[1:] // первая строка: заголовки
		}
		return nil
	}

	for _, row := range get(SheetSuppliers) {
		k, v := cell(row, 0), cell(row, 1)
		if k != "" && v != "" {
			t.Suppliers[k] = v
		}
	}
	for _, row := range get(SheetFormats) {
		k, v := cell(row, 0), cell(row, 1)
		if k != "" && v != "" {
			t.Formats[strings.ToLower(k)] = v
		}
	}
	for _, row := range get(SheetWeights) {
		format, volume := cell(row, 0), cell(row, 1)
		if format == "" && volume == "" {
			continue
		}
		w, _ := utils.ParseNumber(cell(row, 3))
		t.SetSize(format, volume, w, cell(row, 4))
	}
	for _, row := range get(SheetConnectors) {
		k, v := cell(row, 0), cell(row, 1)
		if k != "" && v != "" {
			t.Connectors[strings.ToLower(k)] = v
		}
	}

	seen := map[string]struct{}{}
	var styles []string
	for _, row := range get(SheetStyles) {
		s := cell(row, 0)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		styles = append(styles, s)
	}
	if len(styles) > 0 {
		sort.Strings(styles)
		t.Styles = styles
	}
	return t, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
