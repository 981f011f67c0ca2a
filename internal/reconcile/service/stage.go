package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"invoice-recon/internal/reconcile/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// в ошибках: json-имена полей
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// StageError — незаполненные обязательные поля обогащения в строке (1-based).
type StageError struct {
	Row    int      `json:"row"`
	Fields []string `json:"fields"`
}

func (e StageError) Error() string {
	return fmt.Sprintf("row %d: empty fields for %s", e.Row, strings.Join(e.Fields, ", "))
}

type StageResult struct {
	Staged   []model.StagedVariant `json:"staged"`
	Errors   []StageError          `json:"errors"`
	Warnings []string              `json:"warnings"`
}

// ValidateEnrichment — список пустых обязательных полей (после обрезки пробелов).
func ValidateEnrichment(e model.Enrichment) []string {
	trimmed := model.Enrichment{
		Brewery:     strings.TrimSpace(e.Brewery),
		Product:     strings.TrimSpace(e.Product),
		ABV:         strings.TrimSpace(e.ABV),
		Style:       strings.TrimSpace(e.Style),
		Description: strings.TrimSpace(e.Description),
	}
	err := validate.Struct(trimmed)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []string{err.Error()}
	}
	fields := make([]string, 0, len(ves))
	for _, fe := range ves {
		fields = append(fields, fe.Field())
	}
	return fields
}

// Stage раскладывает группы на StagedVariant. Группа с неполным обогащением пропускается
// с ошибкой, остальные обрабатываются. knownStyle == nil: проверка стиля отключена.
func Stage(groups []model.ProductGroup, knownStyle func(string) bool) StageResult {
	res := StageResult{Staged: []model.StagedVariant{}, Errors: []StageError{}, Warnings: []string{}}

	for gi, g := range groups {
		if missing := ValidateEnrichment(g.Enrichment); len(missing) > 0 {
			res.Errors = append(res.Errors, StageError{Row: gi + 1, Fields: missing})
			continue
		}
		e := g.Enrichment
		if knownStyle != nil && !knownStyle(e.Style) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: style %q is not in the style list", gi+1, e.Style))
		}

		productType := g.ProductType
		if productType == "" {
			productType = model.DefaultProductType
		}
		rng := g.Range
		if rng == "" {
			rng = model.RangeRotational
		}

		for _, slot := range g.Slots {
			if blankFormat(slot.Format) {
				continue
			}
			res.Staged = append(res.Staged, model.StagedVariant{
				Index:         len(res.Staged),
				Brand:         strings.TrimSpace(e.Brewery),
				Collaborator:  g.Collaborator,
				Product:       strings.TrimSpace(e.Product),
				ABV:           strings.TrimSpace(e.ABV),
				Style:         strings.TrimSpace(e.Style),
				Description:   strings.TrimSpace(e.Description),
				LabelImageURL: e.LabelImageURL,
				Format:        strings.TrimSpace(slot.Format),
				PackSize:      slot.PackSize,
				Volume:        slot.Volume,
				UnitCost:      slot.UnitCost,
				SplitCase:     slot.SplitCase,
				ProductType:   productType,
				Range:         rng,
			})
		}
	}
	return res
}

func blankFormat(f string) bool {
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "", "nan", "none":
		return true
	}
	return false
}
