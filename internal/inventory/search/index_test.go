package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appliance-recon/internal/inventory/model"
)

func TestDamerauLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"abc", "acb", 1},
		{"kitten", "sitting", 3},
		{"wat28400", "wta28400", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, damerauLevenshtein(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("", ""))
	assert.Equal(t, 0.0, similarity("a", ""))
	assert.InDelta(t, 0.875, similarity("wat28400", "wta28400"), 1e-9)
}

func docs() []Doc {
	return []Doc{
		{Appliance: model.Appliance{ID: "1", Reference: "WAT28400FF", Brand: "Bosch", Type: "Lave-linge"}, PartRefs: []string{"00145388"}},
		{Appliance: model.Appliance{ID: "2", Reference: "SMS46", Brand: "Siemens", Type: "Lave-vaisselle"}},
		{Appliance: model.Appliance{ID: "3", Reference: "EWT-1062", Brand: "Electrolux", Type: "Lave-linge"}},
	}
}

func TestSearch_Substring(t *testing.T) {
	hits := Build(docs()).Search("lave-linge", 0.9)
	require.Len(t, hits, 2)
	assert.Equal(t, "1", hits[0].Appliance.ID)
	assert.Equal(t, "3", hits[1].Appliance.ID)
	assert.Equal(t, MethodSubstring, hits[0].Method)
	assert.Nil(t, hits[0].Score)
}

func TestSearch_PartReferenceAndCompactForm(t *testing.T) {
	hits := Build(docs()).Search("00145388", 0.9)
	require.Len(t, hits, 1)
	assert.Equal(t, []string{"00145388"}, hits[0].PartRefs)

	hits = Build(docs()).Search("ewt1062", 0.9)
	require.Len(t, hits, 1)
	assert.Equal(t, "3", hits[0].Appliance.ID)
}

func TestSearch_Fuzzy(t *testing.T) {
	hits := Build(docs()).Search("WTA28400FF", 0.8)
	require.Len(t, hits, 1)
	assert.Equal(t, "1", hits[0].Appliance.ID)
	assert.Equal(t, MethodFuzzy, hits[0].Method)
	require.NotNil(t, hits[0].Score)
	assert.InDelta(t, 0.9, *hits[0].Score, 1e-9)
}

func TestSearch_EmptyQuery(t *testing.T) {
	assert.Empty(t, Build(docs()).Search("  ", 0.5))
}
