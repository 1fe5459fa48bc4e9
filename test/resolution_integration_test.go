package test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masjidsuite/minaret/internal/events"
	"github.com/masjidsuite/minaret/internal/model"
	"github.com/masjidsuite/minaret/internal/schedule"
)

const integrationScheduleJSON = `{
  "year": 2025,
  "mosque": "central-masjid",
  "location": {"latitude": 51.5194, "longitude": -0.1663},
  "prayerTimes": [
    {
      "date": "2025-11-12",
      "fajr": {"adhan": "05:18", "jamaah": "05:38"},
      "sunrise": "07:12",
      "dhuhr": {"adhan": "11:46", "jamaah": "12:01"},
      "asr": {"adhan": "14:21", "jamaah": "14:36"},
      "maghrib": {"adhan": "16:20", "jamaah": "16:25"},
      "isha": {"adhan": "17:57", "jamaah": "18:07"},
      "jummah": "12:30"
    }
  ]
}`

// TestResolutionLifecycle walks one resolver through the whole tier ladder:
// healthy remote, remote outage served from cache, corrupted cache healed
// into the bundled payload.
func TestResolutionLifecycle(t *testing.T) {
	ctx := context.Background()

	// healthy == 1 serves the schedule, anything else returns 503
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(integrationScheduleJSON))
	}))
	defer srv.Close()

	store := schedule.NewFileCacheStore(filepath.Join(t.TempDir(), "schedule.json"))
	rec := events.NewRecorder()

	fetcher, err := schedule.NewHTTPFetcher(srv.Client(), srv.URL)
	require.NoError(t, err)

	resolver := schedule.NewResolver(fetcher, store, rec, schedule.Options{
		Endpoint: srv.URL,
		Timeout:  time.Second,
	})

	t.Run("Remote Tier", func(t *testing.T) {
		res, err := resolver.Resolve(ctx, schedule.ResolveOptions{})
		require.NoError(t, err)
		assert.Equal(t, model.SourceRemote, res.Source)
		assert.Equal(t, "central-masjid", res.Dataset.Mosque)

		entry, ok := res.Dataset.EntryFor("2025-11-12")
		require.True(t, ok)
		require.NotNil(t, entry.Jummah)
		assert.Equal(t, "12:30", *entry.Jummah)

		// the fetch must have persisted the payload verbatim
		cached, meta, err := store.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, []byte(integrationScheduleJSON), cached)
		assert.Equal(t, schedule.ProvenanceRemote, meta.Provenance)
	})

	t.Run("Cache Tier", func(t *testing.T) {
		healthy.Store(false)

		res, err := resolver.Resolve(ctx, schedule.ResolveOptions{})
		require.NoError(t, err)
		assert.Equal(t, model.SourceCache, res.Source)
		assert.Equal(t, "serving cached data", res.Warning)

		_, ok := rec.Wait(events.TypeRevalidationStarted, time.Second)
		assert.True(t, ok)
		_, ok = rec.Wait(events.TypeRevalidationFailed, 2*time.Second)
		assert.True(t, ok)
	})

	t.Run("Bundled Tier", func(t *testing.T) {
		// corrupt the cache while the remote is still down
		require.NoError(t, store.Write(ctx, []byte("&&& not a schedule"), schedule.ProvenanceRemote))

		res, err := resolver.Resolve(ctx, schedule.ResolveOptions{})
		require.NoError(t, err)
		assert.Equal(t, model.SourceBundled, res.Source)
		assert.NotEmpty(t, res.Dataset.Entries)

		// self-healing removed the corrupt record
		_, _, err = store.Read(ctx)
		assert.ErrorIs(t, err, schedule.ErrCacheAbsent)
	})

	t.Run("Recovery", func(t *testing.T) {
		healthy.Store(true)

		res, err := resolver.Resolve(ctx, schedule.ResolveOptions{})
		require.NoError(t, err)
		assert.Equal(t, model.SourceRemote, res.Source)

		cached, _, err := store.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, []byte(integrationScheduleJSON), cached)
	})
}
