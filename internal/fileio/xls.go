// Надёжный парсер .xls: фиксируем ширину таблицы сами и читаем все ячейки до неё.
package fileio

import (
	"bytes"
	"errors"
	"io"

	xls "github.com/extrame/xls"
)

// вычисляем "реальную" ширину: пробегаем разумное число колонок и ищем непустые
func computeMaxCols(sheet *xls.WorkSheet) int {
	const probeMax = 256
	maxCols := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		r := sheet.Row(i)
		if r == nil {
			continue
		}
		for j := 0; j < probeMax; j++ {
			if v := normalizeCell(r.Col(j)); v != "" && j+1 > maxCols {
				maxCols = j + 1
			}
		}
	}
	if maxCols == 0 {
		maxCols = 1
	}
	return maxCols
}

func openXLS(r io.Reader) (*xls.WorkBook, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	// старые выгрузки бухгалтерии: чаще cp1252, иногда UTF-8
	var lastErr error
	for _, ch := range []string{"utf-8", "windows-1252"} {
		wb, err := xls.OpenReader(bytes.NewReader(b), ch)
		if err == nil && wb != nil {
			return wb, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("xls: failed to open workbook")
	}
	return nil, lastErr
}

// sheetRows — НЕ полагаемся на Row.LastCol(), ширина считается заранее
func sheetRows(sheet *xls.WorkSheet) [][]string {
	maxCols := computeMaxCols(sheet)
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		cols := make([]string, maxCols)
		if row != nil {
			for j := 0; j < maxCols; j++ {
				cols[j] = normalizeCell(row.Col(j)) // безопасно: пустые -> ""
			}
		}
		rows = append(rows, cols)
	}
	return rows
}

func readXLS(r io.Reader, headerRow int) ([]map[string]string, error) {
	if headerRow <= 0 {
		return nil, errors.New("headerRow must be 1-based and >= 1")
	}
	wb, err := openXLS(r)
	if err != nil {
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}
	rows := sheetRows(sheet)
	h := pickHeader(rows, headerRow)
	return rowsToMaps(rows, h, headerRow), nil
}

func readXLSSheets(r io.Reader) (map[string][][]string, error) {
	wb, err := openXLS(r)
	if err != nil {
		return nil, err
	}
	out := make(map[string][][]string)
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		out[sheet.Name] = sheetRows(sheet)
	}
	return out, nil
}
