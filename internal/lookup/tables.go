package lookup

import (
	"sort"
	"strings"
)

// Значения по умолчанию при промахе: видимые заглушки для ручной правки.
const (
	DefaultSupplierCode  = "XXXX"
	DefaultFormatCode    = "UN"
	DefaultSizeCode      = "00"
	DefaultConnectorCode = "XX"
)

var fallbackStyles = []string{"IPA", "Pale Ale"}

type SizeEntry struct {
	Weight float64 `json:"weight"`
	Code   string  `json:"code"`
}

// Tables — справочники для генерации артикулов. Только данные.
type Tables struct {
	Suppliers  map[string]string    `json:"suppliers"`  // бренд (точное имя) → 4-буквенный код
	Formats    map[string]string    `json:"formats"`    // формат (lower) → код
	Sizes      map[string]SizeEntry `json:"sizes"`      // sizeKey(формат, объём) → вес/код размера
	Connectors map[string]string    `json:"connectors"` // коннектор (lower) → код
	Styles     []string             `json:"styles"`

	MissingSheets []string `json:"missingSheets,omitempty"`
}

func New() *Tables {
	return &Tables{
		Suppliers:  map[string]string{},
		Formats:    map[string]string{},
		Sizes:      map[string]SizeEntry{},
		Connectors: map[string]string{},
		Styles:     append([]string(nil), fallbackStyles...),
	}
}

func sizeKey(format, volume string) string {
	return strings.ToLower(strings.TrimSpace(format)) + "|" + strings.ToLower(strings.TrimSpace(volume))
}

func (t *Tables) SupplierCode(brand string) string {
	if t != nil {
		if c, ok := t.Suppliers[brand]; ok && c != "" {
			return c
		}
	}
	return DefaultSupplierCode
}

func (t *Tables) FormatCode(format string) string {
	if t != nil {
		if c, ok := t.Formats[strings.ToLower(strings.TrimSpace(format))]; ok && c != "" {
			return c
		}
	}
	return DefaultFormatCode
}

// Size — вес единицы и код размера по (формат, объём); промах → 0 и "00".
func (t *Tables) Size(format, volume string) (float64, string) {
	if t == nil {
		return 0, DefaultSizeCode
	}
	e, ok := t.Sizes[sizeKey(format, volume)]
	if !ok {
		return 0, DefaultSizeCode
	}
	code := e.Code
	if code == "" {
		code = DefaultSizeCode
	}
	return e.Weight, code
}

func (t *Tables) ConnectorCode(connector string) string {
	if t != nil {
		if c, ok := t.Connectors[strings.ToLower(strings.TrimSpace(connector))]; ok && c != "" {
			return c
		}
	}
	return DefaultConnectorCode
}

func (t *Tables) SetSize(format, volume string, weight float64, code string) {
	t.Sizes[sizeKey(format, volume)] = SizeEntry{Weight: weight, Code: code}
}

// MasterSuppliers — имена брендов из справочника (для канонизации поставщика).
func (t *Tables) MasterSuppliers() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.Suppliers))
	for name := range t.Suppliers {
		out = append(out, name)
	}
	sort.Strings(out) // для детерминированного порядка
	return out
}

func (t *Tables) HasStyle(style string) bool {
	if t == nil {
		return false
	}
	for _, s := range t.Styles {
		if strings.EqualFold(s, strings.TrimSpace(style)) {
			return true
		}
	}
	return false
}
