package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masjidsuite/minaret/internal/http/api/schedule/packets"
	"github.com/masjidsuite/minaret/internal/schedule"
)

const testScheduleJSON = `{
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
      "isha": {"adhan": "17:57", "jamaah": "18:07"}
    }
  ]
}`

func newTestRouter(t *testing.T, remote http.HandlerFunc) (*gin.Engine, *schedule.Resolver, schedule.CacheStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	fetcher, err := schedule.NewHTTPFetcher(srv.Client(), srv.URL)
	require.NoError(t, err)

	store := schedule.NewFileCacheStore(filepath.Join(t.TempDir(), "schedule.json"))
	resolver := schedule.NewResolver(fetcher, store, nil, schedule.Options{
		Endpoint: srv.URL,
		Timeout:  time.Second,
	})

	r := gin.New()
	RegisterScheduleRoutes(r.Group("/api"), resolver)
	return r, resolver, store
}

func TestGetSchedule(t *testing.T) {
	r, _, _ := newTestRouter(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(testScheduleJSON))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/schedule", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp packets.ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "remote", resp.Source)
	assert.Empty(t, resp.Warning)
	require.NotNil(t, resp.Schedule)
	assert.Equal(t, 2025, resp.Schedule.Year)
}

func TestGetScheduleFallsBackToBundled(t *testing.T) {
	r, _, _ := newTestRouter(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/schedule", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp packets.ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "bundled", resp.Source)
	assert.NotEmpty(t, resp.Warning)
}

func TestGetToday(t *testing.T) {
	r, _, _ := newTestRouter(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(testScheduleJSON))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/schedule/today?date=2025-11-12", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp packets.TodayResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2025-11-12", resp.Date)
	assert.Equal(t, "05:18", resp.Entry.Fajr.Adhan)
}

func TestGetTodayOutOfRange(t *testing.T) {
	r, _, _ := newTestRouter(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(testScheduleJSON))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/schedule/today?date=1999-01-01", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefreshSchedule(t *testing.T) {
	r, _, _ := newTestRouter(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(testScheduleJSON))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/schedule/refresh", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp packets.ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "remote", resp.Source)
}

func TestRefreshScheduleSkipRemote(t *testing.T) {
	r, _, store := newTestRouter(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	require.NoError(t, store.Write(context.Background(), []byte(testScheduleJSON), schedule.ProvenanceRemote))

	body := bytes.NewBufferString(`{"skip_remote": true}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/schedule/refresh", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp packets.ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cache", resp.Source)
}

func TestClearCacheEndpoint(t *testing.T) {
	r, _, store := newTestRouter(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(testScheduleJSON))
	})
	require.NoError(t, store.Write(context.Background(), []byte(testScheduleJSON), schedule.ProvenanceRemote))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/schedule/cache", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	_, _, err := store.Read(context.Background())
	assert.ErrorIs(t, err, schedule.ErrCacheAbsent)
}
