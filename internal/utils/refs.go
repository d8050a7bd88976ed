package utils

import (
	"strings"
	"unicode/utf8"
)

// NormalizeRef: ключ сравнения референций (trim + lower).
func NormalizeRef(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SameRef: совпадение референций без учёта регистра и крайних пробелов.
func SameRef(a, b string) bool {
	return NormalizeRef(a) == NormalizeRef(b)
}

// Prefix возвращает первые n символов (рун), либо всю строку, если она короче.
func Prefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// CollapseSpaces схлопывает пробельные последовательности в один пробел.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Clean: NBSP в пробел, повторные пробелы схлопываются.
func Clean(s string) string {
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ").Replace(s)
	return CollapseSpaces(s)
}
