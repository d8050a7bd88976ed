package fileio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// readDelimited читает CSV/TSV с автоопределением кодировки (UTF-8, Windows-1251,
// Windows-1252/ISO-8859-1). comma == 0: разделитель угадывается по первой строке.
func readDelimited(r io.Reader, comma rune) ([][]string, error) {
	br := bufio.NewReader(r)

	// Peek a bit to detect encoding
	peek, _ := br.Peek(4096)
	var dec io.Reader = br
	switch detectCharset(peek) {
	case "windows-1251":
		dec = transform.NewReader(br, charmap.Windows1251.NewDecoder())
	case "koi8-r":
		dec = transform.NewReader(br, charmap.KOI8R.NewDecoder())
	case "windows-1252":
		dec = transform.NewReader(br, charmap.Windows1252.NewDecoder())
	default:
		// assume UTF-8
	}

	if comma == 0 {
		comma = sniffDelimiter(peek)
	}

	cr := csv.NewReader(dec)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows := make([][]string, 0)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff") // BOM
	}
	return trimCells(rows), nil
}

func detectCharset(peek []byte) string {
	if len(peek) == 0 || utf8.Valid(trimPartialRune(peek)) {
		return "utf-8"
	}
	det, err := chardet.NewTextDetector().DetectBest(peek)
	if err != nil || det == nil {
		return "windows-1252"
	}
	switch cs := strings.ToLower(det.Charset); cs {
	case "windows-1251", "koi8-r":
		return cs
	default:
		// не UTF-8 и не кириллица: латинская однобайтовая
		return "windows-1252"
	}
}

// trimPartialRune отрезает недочитанную при Peek многобайтовую руну в конце.
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if r, _ := utf8.DecodeLastRune(b); r != utf8.RuneError {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}

// sniffDelimiter: самый частый из ; , \t в первой строке, по умолчанию запятая.
func sniffDelimiter(peek []byte) rune {
	first := peek
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		first = peek[:i]
	}
	best, bestN := ',', 0
	for _, d := range []rune{'\t', ';', ','} {
		if n := bytes.Count(first, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
