package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelboard/api/models"
	"funnelboard/api/store"
)

const eventsCSV = `dt,event_name,user_id,region,platform,experience
2023-01-30 09:00:00,Transfer Created,1,Europe,iOS,new
2023-01-30 09:05:00,Transfer Funded,1,Europe,iOS,new
2023-01-31 10:00:00,Transfer Transferred,1,Europe,iOS,new
2023-02-02 11:00:00,Transfer Created,2,NorthAm,Web,existing
2023-02-08 12:00:00,Transfer Created,3,Other,Android,new
`

type testServer struct {
	router *gin.Engine
	redis  *miniredis.Miniredis
}

func newTestServer(t *testing.T, csv string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logs := store.NewSessionCache(store.NewLoader(time.UTC))
	h := NewAnalyticsHandlers(logs, store.NewSectionCache(client, time.Hour), path)

	r := gin.New()
	RegisterRoutes(r, h)
	return &testServer{router: r, redis: mr}
}

func (s *testServer) do(method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, eventsCSV)
	w := s.do(http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListSections(t *testing.T) {
	s := newTestServer(t, eventsCSV)
	w := s.do(http.MethodGet, "/api/sections")
	require.Equal(t, http.StatusOK, w.Code)

	var list []struct{ Slug, Title string }
	decode(t, w, &list)
	require.Len(t, list, 6)
	assert.Equal(t, "home", list[0].Slug)
	assert.Equal(t, "Detailed Analysis", list[5].Title)
}

func TestGetSection_RendersAndCaches(t *testing.T) {
	s := newTestServer(t, eventsCSV)

	w := s.do(http.MethodGet, "/api/sections/demand")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Slug   string `json:"slug"`
		Charts []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"charts"`
	}
	decode(t, w, &body)
	assert.Equal(t, "demand", body.Slug)
	require.Len(t, body.Charts, 3)
	assert.Equal(t, "monthly_demand", body.Charts[0].ID)
	assert.Len(t, s.redis.Keys(), 1)

	again := s.do(http.MethodGet, "/api/sections/demand")
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, w.Body.String(), again.Body.String())
}

func TestGetSection_UnknownSlug(t *testing.T) {
	s := newTestServer(t, eventsCSV)
	w := s.do(http.MethodGet, "/api/sections/forecast")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSection_LoadFailure(t *testing.T) {
	s := newTestServer(t, "dt,event_name,user_id,region,experience\n2023-01-30,Transfer Created,1,Europe,new\n")

	w := s.do(http.MethodGet, "/api/sections/home")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "missing_column", body["kind"])
	assert.Contains(t, body["error"], "platform")
}

func TestGetCounts(t *testing.T) {
	s := newTestServer(t, eventsCSV)

	w := s.do(http.MethodGet, "/api/aggregate/count?dims=event_name,region")
	require.Equal(t, http.StatusOK, w.Code)

	var res models.AggregationResult
	decode(t, w, &res)
	assert.Equal(t, []models.Dimension{models.DimEventName, models.DimRegion}, res.Dims)
	assert.Len(t, res.Rows, 5)

	w = s.do(http.MethodGet, "/api/aggregate/count?dims=region&measure=unique_users&eventName=Transfer%20Created")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &res)
	assert.Equal(t, models.MeasureUniqueUsers, res.Measure)
	assert.Len(t, res.Rows, 3)
}

func TestGetCounts_BadRequests(t *testing.T) {
	s := newTestServer(t, eventsCSV)

	for _, target := range []string{
		"/api/aggregate/count",
		"/api/aggregate/count?dims=currency",
		"/api/aggregate/count?dims=region&measure=sum",
	} {
		w := s.do(http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestGetTimeSeries(t *testing.T) {
	s := newTestServer(t, eventsCSV)

	w := s.do(http.MethodGet, "/api/aggregate/timeseries?bucket=Week&eventName=Transfer%20Created&splitBy=region")
	require.Equal(t, http.StatusOK, w.Code)

	var res models.AggregationResult
	decode(t, w, &res)
	// weeks of 2023-01-30 and 2023-02-06, each zero-filled across three regions
	require.Len(t, res.Rows, 6)
	assert.Equal(t, []string{"2023-01-30", models.RegionEurope}, res.Rows[0].Key)

	w = s.do(http.MethodGet, "/api/aggregate/timeseries?bucket=Hour")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodGet, "/api/aggregate/timeseries?bucket=Day&splitBy=region,platform")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetFunnel(t *testing.T) {
	s := newTestServer(t, eventsCSV)

	w := s.do(http.MethodGet, "/api/funnel?groupBy=region")
	require.Equal(t, http.StatusOK, w.Code)

	var groups []models.FunnelGroup
	decode(t, w, &groups)
	require.Len(t, groups, 3)
	assert.Equal(t, []string{models.RegionEurope}, groups[0].Key)
	assert.Equal(t, models.EventTransferTransferred, groups[0].Stages[2].Stage)
	assert.InDelta(t, 100.0, groups[0].Stages[2].PercentOfFirst, 1e-9)

	w = s.do(http.MethodGet, "/api/funnel?stages=Transfer%20Created,Transfer%20Funded")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &groups)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Stages, 2)
}

func TestReload(t *testing.T) {
	s := newTestServer(t, eventsCSV)

	var first, second struct {
		LoadID  string `json:"load_id"`
		Records int    `json:"records"`
	}
	w := s.do(http.MethodPost, "/api/reload")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &first)
	assert.Equal(t, 5, first.Records)

	w = s.do(http.MethodPost, "/api/reload")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &second)
	assert.NotEqual(t, first.LoadID, second.LoadID)
}
