package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoTextLayer — в PDF нет текстового слоя (скан); нужен внешний OCR.
var ErrNoTextLayer = errors.New("extract: pdf has no text layer")

// PDFText — текст всех страниц цифрового PDF, построчно.
func PDFText(r io.Reader) (string, error) {
	buf := new(bytes.Buffer)
	size, err := buf.ReadFrom(r)
	if err != nil {
		return "", err
	}
	doc, err := pdf.NewReader(bytes.NewReader(buf.Bytes()), size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
				sb.WriteByte(' ')
			}
			sb.WriteByte('\n')
		}
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrNoTextLayer
	}
	return text, nil
}
