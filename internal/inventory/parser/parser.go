// Разбор табличной вставки (буфер обмена / файл) в строки-кандидаты.
package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"appliance-recon/internal/inventory/model"
	"appliance-recon/internal/utils"
)

const Delimiter = "\t"

// ErrUnrecognizedFormat: число колонок первой строки не 2, 3 и не ≥4.
var ErrUnrecognizedFormat = errors.New("UnrecognizedFormat")

// FormatError уточняет ErrUnrecognizedFormat наблюдаемым числом колонок.
type FormatError struct {
	Columns int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("UnrecognizedFormat: %d columns", e.Columns)
}

func (e *FormatError) Unwrap() error { return ErrUnrecognizedFormat }

// RowError: строка не соответствует обнаруженному формату и отброшена.
type RowError struct {
	Line     int    `json:"line"`
	Columns  int    `json:"columns"`
	Expected int    `json:"expected"`
	Reason   string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("MalformedRow: line %d: %s", e.Line, e.Reason)
}

// Result: записи и ошибки строк возвращаются вместе (частичный успех).
type Result struct {
	Success bool              `json:"success"`
	Records []model.Appliance `json:"records"`
	Errors  []RowError        `json:"errors"`
	Format  model.Format      `json:"detectedFormat"`
	Columns int               `json:"columns"`
	// HeaderSkipped: первая строка распознана как заголовок и пропущена.
	HeaderSkipped bool `json:"headerSkipped,omitempty"`
}

// TwoColumns: флаг формата «техн. реф + комм. реф» (марку/тип надо определить).
func (r Result) TwoColumns() bool { return r.Format == model.FormatTwoColumns }

type Parser struct {
	now   func() time.Time
	newID func() string
}

func New() *Parser {
	return &Parser{now: time.Now, newID: uuid.NewString}
}

// WithClock подменяет часы (для тестов).
func (p *Parser) WithClock(now func() time.Time) *Parser {
	p.now = now
	return p
}

type line struct {
	no    int
	cells []string
}

// Parse разбирает вставленный текст: строки через \n, колонки через таб.
func (p *Parser) Parse(raw string) (Result, error) {
	var lines []line
	for i, l := range strings.Split(raw, "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, line{no: i + 1, cells: strings.Split(l, Delimiter)})
	}
	return p.parse(lines)
}

// ParseRows: то же для строк, уже прочитанных из файла (xlsx/xls/csv).
// Таблицы теряют или добивают пустой хвост строки, поэтому каждая строка
// приводится к ширине таблицы (самая длинная непустая часть строки).
func (p *Parser) ParseRows(rows [][]string) (Result, error) {
	tableWidth := 0
	for _, r := range rows {
		tableWidth = max(tableWidth, width(r))
	}
	lines := make([]line, 0, len(rows))
	for i, r := range rows {
		if isBlank(r) {
			continue
		}
		cells := make([]string, tableWidth)
		copy(cells, r)
		lines = append(lines, line{no: i + 1, cells: cells})
	}
	return p.parse(lines)
}

func (p *Parser) parse(lines []line) (Result, error) {
	res := Result{Records: []model.Appliance{}, Errors: []RowError{}}

	if len(lines) > 0 && looksLikeHeader(lines[0].cells) {
		lines = lines[1:]
		res.HeaderSkipped = true
	}
	if len(lines) == 0 {
		return res, &FormatError{Columns: 0}
	}

	res.Columns = columns(lines[0].cells)
	res.Format = detect(res.Columns)
	if res.Format == model.FormatUnknown {
		return res, &FormatError{Columns: res.Columns}
	}
	expected := expectedColumns(res.Format)

	today := p.now().Format("2006-01-02")
	for _, l := range lines {
		if !fits(l.cells, res.Format) {
			res.Errors = append(res.Errors, RowError{
				Line:     l.no,
				Columns:  columns(l.cells),
				Expected: expected,
				Reason:   fmt.Sprintf("expected %d columns, got %d", expected, columns(l.cells)),
			})
			continue
		}
		a := mapRow(l.cells, res.Format)
		if a.Reference == "" {
			res.Errors = append(res.Errors, RowError{
				Line:     l.no,
				Columns:  columns(l.cells),
				Expected: expected,
				Reason:   "empty technical reference",
			})
			continue
		}
		a.ID = p.newID()
		a.DateAdded = today
		res.Records = append(res.Records, a)
	}

	res.Success = len(res.Records) > 0
	return res, nil
}

func detect(columns int) model.Format {
	switch {
	case columns == 2:
		return model.FormatTwoColumns
	case columns == 3:
		return model.FormatThreeColumns
	case columns >= 4:
		return model.FormatFourColumns
	default:
		return model.FormatUnknown
	}
}

func expectedColumns(f model.Format) int {
	switch f {
	case model.FormatTwoColumns:
		return 2
	case model.FormatThreeColumns:
		return 3
	default:
		return 4
	}
}

// fits: строка подходит под формат, если у неё ровно столько же колонок,
// для 4-колоночного не меньше 4. Пустые ячейки внутри формата допустимы.
func fits(cells []string, f model.Format) bool {
	k := expectedColumns(f)
	n := columns(cells)
	if f == model.FormatFourColumns {
		return n >= k
	}
	return n == k && width(cells) > 0
}

func mapRow(c []string, f model.Format) model.Appliance {
	cell := func(i int) string {
		if i < len(c) {
			return utils.Clean(c[i])
		}
		return ""
	}
	switch f {
	case model.FormatTwoColumns:
		return model.Appliance{Reference: cell(0), CommercialRef: cell(1)}
	case model.FormatThreeColumns:
		return model.Appliance{Reference: cell(0), Brand: cell(1), Type: cell(2)}
	default:
		// лишние колонки игнорируем
		return model.Appliance{Type: cell(0), Brand: cell(1), Reference: cell(2), CommercialRef: cell(3)}
	}
}

// columns: число ячеек после разбиения по табу. Пустой хвост отбрасывается
// только за четвёртой колонкой: "A\tB\t" это три колонки, а не две.
func columns(cells []string) int {
	n := len(cells)
	for n > 4 && strings.TrimSpace(cells[n-1]) == "" {
		n--
	}
	return n
}

// width: число колонок без пустого хвоста.
func width(cells []string) int {
	n := len(cells)
	for n > 0 && strings.TrimSpace(cells[n-1]) == "" {
		n--
	}
	return n
}

func isBlank(cells []string) bool { return width(cells) == 0 }
