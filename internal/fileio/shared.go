package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ReadAnyRows: выберет парсер по расширению и вернёт строки файла как есть
// (первая вкладка для xls/xlsx). Заголовок и формат определяет parser.
func ReadAnyRows(r io.Reader, filename string) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r)
	case ".xls":
		return readXLS(r)
	case ".csv":
		return readDelimited(r, 0)
	case ".tsv", ".txt":
		return readDelimited(r, '\t')
	default:
		return nil, fmt.Errorf("unsupported file: %s", filename)
	}
}

// trimCells: обрезать пробелы в ячейках; пустые строки оставляем,
// чтобы номера строк в ошибках совпадали с файлом.
func trimCells(rows [][]string) [][]string {
	for _, row := range rows {
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}
	}
	return rows
}
