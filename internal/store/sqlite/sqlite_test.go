package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appliance-recon/internal/inventory/model"
	"appliance-recon/internal/store"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppliances_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	ts := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	items := []model.Appliance{
		{ID: "2", Reference: "XYZ2", Brand: "Bosch", Type: "Four", DateAdded: "2024-05-01", LastUpdated: &ts},
		{ID: "1", Reference: "XYZ1", CommercialRef: "C1", Brand: "Bosch", Type: "Four", DateAdded: "2024-04-01"},
	}
	require.NoError(t, s.SaveAppliances(ctx, items))

	got, err := s.LoadAppliances(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	require.NotNil(t, got[0].LastUpdated)
	assert.True(t, ts.Equal(*got[0].LastUpdated))
	assert.Nil(t, got[1].LastUpdated)
	assert.Equal(t, "C1", got[1].CommercialRef)

	// Save заменяет коллекцию целиком
	require.NoError(t, s.SaveAppliances(ctx, items[1:]))
	got, err = s.LoadAppliances(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, s.DeleteAppliance(ctx, "1"))
	assert.ErrorIs(t, s.DeleteAppliance(ctx, "1"), store.ErrNotFound)
}

func TestAssociationsAndPartReferences(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	ts := time.Date(2024, 5, 1, 8, 30, 0, 123, time.UTC)
	require.NoError(t, s.SaveAssociations(ctx, []model.AppliancePartAssociation{
		{ID: "x", ApplianceID: "1", PartReference: "P1", DateAssociated: ts},
	}))
	require.NoError(t, s.SavePartReferences(ctx, []string{"P1", "P2", "P1"}))

	assocs, err := s.LoadAssociations(ctx)
	require.NoError(t, err)
	require.Len(t, assocs, 1)
	assert.Equal(t, "P1", assocs[0].PartReference)
	assert.True(t, ts.Equal(assocs[0].DateAssociated))

	refs, err := s.LoadPartReferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2"}, refs)

	require.NoError(t, s.ClearAll(ctx))
	assocs, err = s.LoadAssociations(ctx)
	require.NoError(t, err)
	assert.Empty(t, assocs)
}
