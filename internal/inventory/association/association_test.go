package association

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appliance-recon/internal/inventory/model"
)

type fakeStore struct {
	assocs   []model.AppliancePartAssociation
	refs     []string
	saves    int
	assocErr error
	refsErr  error
}

func (f *fakeStore) SaveAssociations(_ context.Context, items []model.AppliancePartAssociation) error {
	if f.assocErr != nil {
		return f.assocErr
	}
	f.saves++
	f.assocs = append([]model.AppliancePartAssociation(nil), items...)
	return nil
}

func (f *fakeStore) SavePartReferences(_ context.Context, refs []string) error {
	if f.refsErr != nil {
		return f.refsErr
	}
	f.refs = append([]string(nil), refs...)
	return nil
}

func lookupOf(items ...model.Appliance) Lookup {
	byID := make(map[string]model.Appliance, len(items))
	for _, a := range items {
		byID[a.ID] = a
	}
	return func(id string) (model.Appliance, bool) {
		a, ok := byID[id]
		return a, ok
	}
}

func newManager(st Store) *Manager {
	lk := lookupOf(
		model.Appliance{ID: "a", Reference: "XYZ1"},
		model.Appliance{ID: "b", Reference: "XYZ2"},
	)
	return New(st, lk, zerolog.Nop()).WithClock(func() time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	})
}

func TestAssociate_Idempotent(t *testing.T) {
	st := &fakeStore{}
	m := newManager(st)
	ctx := context.Background()

	n, err := m.Associate(ctx, []string{"a"}, "P100")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = m.Associate(ctx, []string{"a"}, "P100")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Len(t, m.Associations(), 1)
	assert.Len(t, st.assocs, 1)
	assert.Equal(t, 1, st.saves)
}

func TestAssociate_SoftFailures(t *testing.T) {
	st := &fakeStore{}
	m := newManager(st)
	ctx := context.Background()

	tests := []struct {
		name string
		ids  []string
		ref  string
	}{
		{"no ids", nil, "P100"},
		{"blank part reference", []string{"a"}, "   "},
		{"no valid appliances", []string{"x", "y"}, "P100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := m.Associate(ctx, tt.ids, tt.ref)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
	assert.Empty(t, m.Associations())
	assert.Empty(t, m.KnownPartReferences())
	assert.Zero(t, st.saves)
}

func TestAssociate_PartiallyValid(t *testing.T) {
	m := newManager(&fakeStore{})
	n, err := m.Associate(context.Background(), []string{"a", "ghost", "b", "a"}, " P100 ")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"P100"}, m.KnownPartReferences())
}

func TestAssociate_QuerySymmetry(t *testing.T) {
	m := newManager(&fakeStore{})
	ctx := context.Background()
	_, err := m.Associate(ctx, []string{"a", "b"}, "P100")
	require.NoError(t, err)
	_, err = m.Associate(ctx, []string{"a"}, "P200")
	require.NoError(t, err)

	assert.Equal(t, []string{"P100", "P200"}, m.PartReferencesFor("a"))
	assert.Equal(t, []string{"P100"}, m.PartReferencesFor("b"))

	apps := m.AppliancesFor("P100")
	require.Len(t, apps, 2)
	assert.Equal(t, "a", apps[0].ID)
	assert.Equal(t, "b", apps[1].ID)
	assert.Empty(t, m.AppliancesFor("P999"))
}

func TestRemove(t *testing.T) {
	st := &fakeStore{}
	m := newManager(st)
	ctx := context.Background()
	_, err := m.Associate(ctx, []string{"a", "b"}, "P100")
	require.NoError(t, err)

	require.NoError(t, m.Remove(ctx, "a", "P100"))
	assert.Empty(t, m.PartReferencesFor("a"))
	assert.Len(t, st.assocs, 1)

	// отсутствующая связь: no-op
	saves := st.saves
	require.NoError(t, m.Remove(ctx, "a", "P100"))
	assert.Equal(t, saves, st.saves)

	// известная референция остаётся известной
	assert.Equal(t, []string{"P100"}, m.KnownPartReferences())

	// повторное связывание после удаления создаёт связь заново
	n, err := m.Associate(ctx, []string{"a"}, "P100")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, m.Associations(), 2)
}

func TestRemoveAllFor(t *testing.T) {
	m := newManager(&fakeStore{})
	ctx := context.Background()
	_, _ = m.Associate(ctx, []string{"a", "b"}, "P100")
	_, _ = m.Associate(ctx, []string{"a"}, "P200")

	n, err := m.RemoveAllFor(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, m.PartReferencesFor("a"))
	assert.Equal(t, []string{"P100"}, m.PartReferencesFor("b"))
}

func TestAssociate_StoreErrorKeepsState(t *testing.T) {
	boom := errors.New("unavailable")
	m := newManager(&fakeStore{assocErr: boom})

	_, err := m.Associate(context.Background(), []string{"a"}, "P100")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, m.Associations())
	assert.Empty(t, m.KnownPartReferences())
}

func TestAssociate_PartReferenceSaveErrorKeepsState(t *testing.T) {
	boom := errors.New("refs unavailable")
	st := &fakeStore{refsErr: boom}
	m := newManager(st)

	n, err := m.Associate(context.Background(), []string{"a"}, "P100")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, n)
	assert.Empty(t, m.Associations())
	assert.Empty(t, m.PartReferencesFor("a"))
	assert.Empty(t, m.KnownPartReferences())
	assert.Empty(t, st.assocs)

	// после восстановления хранилища связь создаётся с нуля
	st.refsErr = nil
	n, err = m.Associate(context.Background(), []string{"a"}, "P100")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, m.Associations(), 1)
}

func TestLoad_DropsDuplicatePairsAndRecomputesKnown(t *testing.T) {
	m := newManager(&fakeStore{})
	m.Load([]model.AppliancePartAssociation{
		{ID: "1", ApplianceID: "a", PartReference: "P1"},
		{ID: "2", ApplianceID: "a", PartReference: "P1"},
		{ID: "3", ApplianceID: "b", PartReference: "P2"},
	}, []string{"P0"})

	assert.Len(t, m.Associations(), 2)
	assert.Equal(t, []string{"P0", "P1", "P2"}, m.KnownPartReferences())
}
