// Поиск по инвентарю: подстрока, затем нечёткий поиск по триграммам.
package search

import (
	"sort"
	"strings"

	"appliance-recon/internal/inventory/model"
)

const (
	MethodSubstring = "substring"
	MethodFuzzy     = "fuzzy"
)

// Doc: прибор вместе с привязанными референциями запчастей.
type Doc struct {
	Appliance model.Appliance
	PartRefs  []string
}

type Hit struct {
	Appliance model.Appliance `json:"appliance"`
	PartRefs  []string        `json:"partReferences"`
	Method    string          `json:"method"`
	Score     *float64        `json:"score,omitempty"` // схожесть для fuzzy
}

// Index строится по снимку и дальше не меняется.
type Index struct {
	docs   []Doc
	fields [][]string                  // нормализованные поля документа
	inv    map[string]map[int]struct{} // trigram -> set(doc)
}

func Build(docs []Doc) *Index {
	idx := &Index{
		docs:   docs,
		fields: make([][]string, len(docs)),
		inv:    make(map[string]map[int]struct{}),
	}
	for i, d := range docs {
		raw := append([]string{d.Appliance.Reference, d.Appliance.CommercialRef, d.Appliance.Brand, d.Appliance.Type}, d.PartRefs...)
		for _, f := range raw {
			n := normalize(f)
			if n == "" {
				continue
			}
			idx.fields[i] = append(idx.fields[i], n)
			for g := range trigramSet(n) {
				bucket, ok := idx.inv[g]
				if !ok {
					bucket = make(map[int]struct{})
					idx.inv[g] = bucket
				}
				bucket[i] = struct{}{}
			}
		}
	}
	return idx
}

// Search: сначала все документы, где запрос входит в поле (в порядке инвентаря),
// затем нечёткие совпадения со схожестью ≥ threshold (по убыванию схожести).
func (idx *Index) Search(q string, threshold float64) []Hit {
	nq := normalize(q)
	hits := make([]Hit, 0)
	if nq == "" {
		return hits
	}

	matched := make(map[int]struct{})
	for i, fs := range idx.fields {
		for _, f := range fs {
			if strings.Contains(f, nq) || strings.Contains(compact(f), compact(nq)) {
				hits = append(hits, idx.hit(i, MethodSubstring, nil))
				matched[i] = struct{}{}
				break
			}
		}
	}

	type scored struct {
		doc   int
		score float64
	}
	var fuzzy []scored
	for _, i := range idx.candidates(nq) {
		if _, ok := matched[i]; ok {
			continue
		}
		best := 0.0
		for _, f := range idx.fields[i] {
			if s := bestSimilarity(nq, f); s > best {
				best = s
			}
		}
		if best >= threshold {
			fuzzy = append(fuzzy, scored{doc: i, score: best})
		}
	}
	sort.SliceStable(fuzzy, func(a, b int) bool { return fuzzy[a].score > fuzzy[b].score })
	for _, f := range fuzzy {
		s := f.score
		hits = append(hits, idx.hit(f.doc, MethodFuzzy, &s))
	}
	return hits
}

// candidates: документы, у которых есть хотя бы одна общая триграмма; по возрастанию.
func (idx *Index) candidates(nq string) []int {
	seen := make(map[int]struct{})
	for g := range trigramSet(nq) {
		for i := range idx.inv[g] {
			seen[i] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out) // для детерминированного порядка
	return out
}

func (idx *Index) hit(i int, method string, score *float64) Hit {
	d := idx.docs[i]
	return Hit{Appliance: d.Appliance, PartRefs: d.PartRefs, Method: method, Score: score}
}
