package parser

import (
	"regexp"
	"strings"
)

var headerWords = map[string]struct{}{
	"reference": {}, "ref": {}, "reference technique": {}, "ref technique": {}, "technical reference": {},
	"technical ref": {}, "reference commerciale": {}, "ref commerciale": {}, "commercial reference": {},
	"commercial ref": {}, "marque": {}, "brand": {}, "type": {}, "type d appareil": {}, "appliance type": {},
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

func normHeaderCell(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("é", "e", "è", "e", "ê", "e").Replace(s)
	s = nonWord.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// looksLikeHeader: минимум две ячейки совпадают с известными названиями колонок.
func looksLikeHeader(cells []string) bool {
	cnt := 0
	for _, c := range cells {
		if _, ok := headerWords[normHeaderCell(c)]; ok {
			cnt++
		}
	}
	return cnt >= 2
}
