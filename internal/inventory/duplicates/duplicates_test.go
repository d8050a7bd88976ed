package duplicates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appliance-recon/internal/inventory/model"
)

var mergeTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func resolver() *Resolver {
	return New().WithClock(func() time.Time { return mergeTime })
}

func TestFindGroups_NormalizesCaseAndSpace(t *testing.T) {
	items := []model.Appliance{
		{ID: "1", Reference: "abc123", Brand: "Bosch"},
		{ID: "2", Reference: "XYZ"},
		{ID: "3", Reference: "ABC123 ", Brand: "Siemens", Type: "Four"},
		{ID: "4", Reference: "xyz2"},
	}
	groups := resolver().FindGroups(items)

	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, "abc123", g.Key)
	require.Len(t, g.Members, 2)
	assert.Equal(t, "1", g.Members[0].ID)
	assert.Equal(t, "3", g.Members[1].ID)
	assert.Equal(t, []string{"Bosch", "Siemens"}, g.Brands)
	assert.Equal(t, []string{"Four"}, g.Types)
}

func TestFindGroups_NoDuplicates(t *testing.T) {
	groups := resolver().FindGroups([]model.Appliance{{ID: "1", Reference: "A"}, {ID: "2", Reference: "B"}})
	assert.Empty(t, groups)
}

func TestMerge(t *testing.T) {
	g := model.DuplicateGroup{Members: []model.Appliance{
		{ID: "1", Reference: "abc123", Brand: "Bosch"},
		{ID: "2", Reference: "ABC123", Brand: "Siemens", CommercialRef: "C9"},
		{ID: "3", Reference: "abc123 ", Type: "Four"},
	}}

	res, err := resolver().Merge(g, "2", "Bosch", "Four")
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "3"}, res.DeleteIDs)
	assert.Len(t, res.DeleteIDs, len(g.Members)-1)
	assert.Equal(t, "2", res.Updated.ID)
	assert.Equal(t, "Bosch", res.Updated.Brand)
	assert.Equal(t, "Four", res.Updated.Type)
	assert.Equal(t, "C9", res.Updated.CommercialRef)
	require.NotNil(t, res.Updated.LastUpdated)
	assert.Equal(t, mergeTime, *res.Updated.LastUpdated)
}

func TestMerge_EmptyChoiceFallsBackToFirstNonEmpty(t *testing.T) {
	g := model.DuplicateGroup{Members: []model.Appliance{
		{ID: "1", Reference: "abc", Brand: "Bosch"},
		{ID: "2", Reference: "ABC", Type: "Four"},
	}}

	res, err := resolver().Merge(g, "2", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Bosch", res.Updated.Brand)
	assert.Equal(t, "Four", res.Updated.Type)
}

func TestMerge_Errors(t *testing.T) {
	g := model.DuplicateGroup{Members: []model.Appliance{{ID: "1"}, {ID: "2"}}}
	_, err := resolver().Merge(g, "9", "B", "T")
	assert.ErrorIs(t, err, ErrKeepNotInGroup)

	_, err = resolver().Merge(model.DuplicateGroup{Members: []model.Appliance{{ID: "1"}}}, "1", "B", "T")
	assert.ErrorIs(t, err, ErrGroupTooSmall)
}
