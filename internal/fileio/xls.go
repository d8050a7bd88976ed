// Старый формат .xls: ширину листа считаем сами, Row.LastCol() врёт на выгрузках.
package fileio

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	xls "github.com/extrame/xls"
)

// кодировки строк в BIFF; французские выгрузки: cp1252
var xlsCharsets = []string{"utf-8", "windows-1252", "windows-1251"}

const xlsProbeCols = 64

func openXLS(b []byte) (*xls.WorkBook, error) {
	var errs []string
	for _, cs := range xlsCharsets {
		wb, err := xls.OpenReader(bytes.NewReader(b), cs)
		if err == nil && wb != nil {
			return wb, nil
		}
		if err != nil {
			errs = append(errs, cs+": "+err.Error())
		}
	}
	return nil, fmt.Errorf("xls: cannot open workbook (%s)", strings.Join(errs, "; "))
}

// sheetWidth: номер последней непустой колонки по всем строкам (минимум 1).
func sheetWidth(sheet *xls.WorkSheet) int {
	w := 1
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		for j := xlsProbeCols - 1; j >= w; j-- {
			if strings.TrimSpace(row.Col(j)) != "" {
				w = j + 1
				break
			}
		}
	}
	return w
}

func readXLS(r io.Reader) ([][]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	wb, err := openXLS(b)
	if err != nil {
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return [][]string{}, nil
	}

	width := sheetWidth(sheet)
	out := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		cells := make([]string, width)
		if row := sheet.Row(i); row != nil {
			for j := range cells {
				cells[j] = row.Col(j)
			}
		}
		out = append(out, cells)
	}
	return trimCells(out), nil
}
