package fileio

import (
	"bytes"
	"io"

	excelize "github.com/xuri/excelize/v2"
)

func openXLSX(r io.Reader) (*excelize.File, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return excelize.OpenReader(bytes.NewReader(b))
}

func readXLSX(r io.Reader, headerRow int) ([]map[string]string, error) {
	f, err := openXLSX(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	h := pickHeader(rows, headerRow)
	return rowsToMaps(rows, h, headerRow), nil
}

func readXLSXSheets(r io.Reader) (map[string][][]string, error) {
	f, err := openXLSX(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string][][]string)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			for j := range rows[i] {
				rows[i][j] = normalizeCell(rows[i][j])
			}
		}
		out[name] = rows
	}
	return out, nil
}
