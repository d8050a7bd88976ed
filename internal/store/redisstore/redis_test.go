package redisstore

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appliance-recon/internal/inventory/model"
	"appliance-recon/internal/store"
)

// Нужен живой Redis: REDIS_ADDR=127.0.0.1:6379 go test ./...
func openTest(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	s, err := Open(Config{Addr: addr, Prefix: "test:" + uuid.NewString() + ":"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.ClearAll(context.Background())
		s.Close()
	})
	return s
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	got, err := s.LoadAppliances(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.SaveAppliances(ctx, []model.Appliance{{ID: "1", Reference: "A"}, {ID: "2", Reference: "B"}}))
	require.NoError(t, s.DeleteAppliance(ctx, "1"))
	assert.ErrorIs(t, s.DeleteAppliance(ctx, "1"), store.ErrNotFound)

	got, err = s.LoadAppliances(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	require.NoError(t, s.SavePartReferences(ctx, []string{"P1"}))
	refs, err := s.LoadPartReferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, refs)
}
