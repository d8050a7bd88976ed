// Подсказка марки/типа по референции на основе текущего инвентаря.
package suggest

import (
	"strings"

	"appliance-recon/internal/inventory/model"
	"appliance-recon/internal/utils"
)

// PrefixLen: длина окна для частичного совпадения референций.
const PrefixLen = 3

// Match: каким способом получена подсказка.
type Match string

const (
	MatchExact          Match = "exact"           // reference совпала
	MatchCommercial     Match = "commercial"      // commercialRef совпала
	MatchPartial        Match = "partial"         // общий префикс, голосование по частоте
	MatchBrandFrequency Match = "brand_frequency" // самый частый тип марки
)

type Suggestion struct {
	Value string `json:"value"`
	Match Match  `json:"match"`
}

// Certain: точное совпадение, можно применять без подтверждения.
// Всё остальное: только подсказка.
func (s Suggestion) Certain() bool {
	return s.Match == MatchExact || s.Match == MatchCommercial
}

// Engine работает по снимку инвентаря; снимок не копируется и не меняется.
type Engine struct {
	items []model.Appliance
}

func New(items []model.Appliance) *Engine {
	return &Engine{items: items}
}

// Brand: точная reference → точная commercialRef → частичное совпадение
// префикса с голосованием по частоте.
func (e *Engine) Brand(reference string) (Suggestion, bool) {
	ref := strings.TrimSpace(reference)
	if ref == "" {
		return Suggestion{}, false
	}
	brand := func(a model.Appliance) string { return strings.TrimSpace(a.Brand) }
	return e.tiered(ref, e.items, brand)
}

// Type ищет только среди приборов данной марки; если частичных совпадений нет,
// возвращает самый частый тип марки. Марка без инвентаря: ничего.
func (e *Engine) Type(reference, brand string) (Suggestion, bool) {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return Suggestion{}, false
	}
	scope := make([]model.Appliance, 0)
	for _, a := range e.items {
		if strings.EqualFold(strings.TrimSpace(a.Brand), brand) {
			scope = append(scope, a)
		}
	}
	if len(scope) == 0 {
		return Suggestion{}, false
	}
	typ := func(a model.Appliance) string { return strings.TrimSpace(a.Type) }

	if ref := strings.TrimSpace(reference); ref != "" {
		if s, ok := e.tiered(ref, scope, typ); ok {
			return s, true
		}
	}
	if v := mostFrequent(scope, typ); v != "" {
		return Suggestion{Value: v, Match: MatchBrandFrequency}, true
	}
	return Suggestion{}, false
}

func (e *Engine) tiered(ref string, scope []model.Appliance, field func(model.Appliance) string) (Suggestion, bool) {
	// 1) точное совпадение reference (с учётом регистра)
	for _, a := range scope {
		if a.Reference == ref && field(a) != "" {
			return Suggestion{Value: field(a), Match: MatchExact}, true
		}
	}
	// 2) точное совпадение commercialRef
	for _, a := range scope {
		if a.CommercialRef != "" && a.CommercialRef == ref && field(a) != "" {
			return Suggestion{Value: field(a), Match: MatchCommercial}, true
		}
	}
	// 3) частичное: окно из первых PrefixLen символов
	p := prefix(ref)
	partial := make([]model.Appliance, 0)
	for _, a := range scope {
		if sharesPrefix(p, a.Reference) || sharesPrefix(p, a.CommercialRef) {
			partial = append(partial, a)
		}
	}
	if v := mostFrequent(partial, field); v != "" {
		return Suggestion{Value: v, Match: MatchPartial}, true
	}
	return Suggestion{}, false
}

func prefix(s string) string {
	return strings.ToUpper(utils.Prefix(strings.TrimSpace(s), PrefixLen))
}

// sharesPrefix: симметричная проверка «начинается с» в обе стороны.
func sharesPrefix(p, other string) bool {
	q := prefix(other)
	if p == "" || q == "" {
		return false
	}
	return strings.HasPrefix(q, p) || strings.HasPrefix(p, q)
}

// mostFrequent: при равенстве побеждает значение, встреченное первым.
func mostFrequent(items []model.Appliance, field func(model.Appliance) string) string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, a := range items {
		v := field(a)
		if v == "" {
			continue
		}
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}
	best, bestN := "", 0
	for _, v := range order {
		if counts[v] > bestN {
			best, bestN = v, counts[v]
		}
	}
	return best
}
