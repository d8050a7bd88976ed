package search

import (
	"regexp"
	"sort"
	"strings"
)

var punct = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// normalize: нижний регистр, пунктуация → пробел, схлопнуть пробелы.
func normalize(s string) string {
	s = strings.ToLower(s)
	s = punct.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// compact: без пробелов: "xyz 2000" == "xyz2000".
func compact(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

// tokenSort: сортируем токены (устойчиво к порядку слов)
func tokenSort(s string) string {
	t := strings.Fields(s)
	sort.Strings(t)
	return strings.Join(t, " ")
}

func bestSimilarity(a, b string) float64 {
	best := similarity(a, b)
	if s := similarity(tokenSort(a), tokenSort(b)); s > best {
		best = s
	}
	if s := similarity(compact(a), compact(b)); s > best {
		best = s
	}
	return best
}

func trigramSet(s string) map[string]struct{} {
	m := make(map[string]struct{})
	if s == "" {
		return m
	}
	r := []rune(" " + s + " ")
	if len(r) < 3 {
		m[string(r)] = struct{}{}
		return m
	}
	for i := 0; i <= len(r)-3; i++ {
		m[string(r[i:i+3])] = struct{}{}
	}
	return m
}
