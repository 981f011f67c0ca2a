package fileio

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// readCSV reads CSV with headerRow (1-based), auto-detecting encoding and converting to UTF-8.
func readCSV(r io.Reader, headerRow int) ([]map[string]string, error) {
	rows, err := readCSVRows(r)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	h := pickHeader(rows, headerRow)
	return rowsToMaps(rows, h, headerRow), nil
}

// readCSVRows — UTF-8 как есть; Windows-1252 (Excel UK) и ISO-8859-1 перекодируются.
func readCSVRows(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)

	// Peek a bit to detect encoding
	peek, _ := br.Peek(2048)
	cs := "utf-8"
	if len(peek) > 0 {
		if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
			cs = strings.ToLower(det.Charset)
		}
	}

	var dec io.Reader = br
	switch cs {
	case "windows-1252":
		dec = transform.NewReader(br, charmap.Windows1252.NewDecoder())
	case "iso-8859-1":
		dec = transform.NewReader(br, charmap.ISO8859_1.NewDecoder())
	default:
		// assume UTF-8
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for i := range rec {
			rec[i] = normalizeCell(strings.TrimPrefix(rec[i], "\ufeff"))
		}
		rows = append(rows, rec)
	}
	return rows, nil
}
