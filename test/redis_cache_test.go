package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/masjidsuite/minaret/internal/redis"
	"github.com/masjidsuite/minaret/internal/schedule"
)

// TestRedisCacheStore exercises the redis backend against a local broker.
// Note: this test requires a redis server to be running.
func TestRedisCacheStore(t *testing.T) {
	rdb, err := redisclient.NewClient("localhost:6379", "", "")
	if err != nil {
		t.Skipf("redis not available, skipping test: %v", err)
	}

	ctx := context.Background()
	store := schedule.NewRedisCacheStore(rdb, "minaret:test:schedule")
	defer store.Clear(ctx)

	require.NoError(t, store.Clear(ctx))

	t.Run("Absent", func(t *testing.T) {
		_, _, err := store.Read(ctx)
		assert.ErrorIs(t, err, schedule.ErrCacheAbsent)
	})

	t.Run("Round Trip", func(t *testing.T) {
		payload := []byte(integrationScheduleJSON)
		require.NoError(t, store.Write(ctx, payload, schedule.ProvenanceRemote))

		got, meta, err := store.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
		assert.Equal(t, schedule.ProvenanceRemote, meta.Provenance)
		assert.WithinDuration(t, time.Now().UTC(), meta.FetchedAt, 5*time.Second)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx))
		require.NoError(t, store.Clear(ctx))

		_, _, err := store.Read(ctx)
		assert.ErrorIs(t, err, schedule.ErrCacheAbsent)
	})
}
