package api

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facebook-extractor/internal/database/models"
	"facebook-extractor/internal/monitoring"
)

type fakeStore struct {
	posts    []*models.Post
	count    int
	stats    map[string]interface{}
	err      error
	pingErr  error
	lastArgs []interface{}
}

func (f *fakeStore) GetPostsWithPagination(_ context.Context, page, pageSize, minReactions int) ([]*models.Post, error) {
	f.lastArgs = []interface{}{page, pageSize, minReactions}
	return f.posts, f.err
}

func (f *fakeStore) GetPostsCount(_ context.Context, minReactions int) (int, error) {
	return f.count, f.err
}

func (f *fakeStore) GetPostsByShape(_ context.Context, shape string, limit int) ([]*models.Post, error) {
	f.lastArgs = []interface{}{shape, limit}
	return f.posts, f.err
}

func (f *fakeStore) GetPostsForExport(_ context.Context, minReactions int) ([]*models.Post, error) {
	f.lastArgs = []interface{}{minReactions}
	return f.posts, f.err
}

func (f *fakeStore) GetScrapingStats(context.Context) (map[string]interface{}, error) {
	return f.stats, f.err
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func samplePosts() []*models.Post {
	return []*models.Post{
		{
			PostID:         "10",
			URL:            "https://www.facebook.com/reel/10",
			Shape:          "reel",
			Sieve:          "reel",
			HasVideo:       true,
			Text:           "sunset, again",
			PostedAt:       time.Date(2023, 7, 18, 2, 13, 47, 0, time.UTC),
			NumComments:    sql.NullInt64{Int64: 4, Valid: true},
			NumViews:       sql.NullInt64{Int64: 1200, Valid: true},
			Reactions:      models.Reactions{"num_likes": 40},
			TotalReactions: 40,
			ProfileLink:    "https://www.facebook.com/naturephotos",
		},
	}
}

func newTestServer(store Store, monitor *monitoring.Monitor) http.Handler {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewServer(store, monitor, logger, 0).Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandlePosts(t *testing.T) {
	store := &fakeStore{posts: samplePosts(), count: 31}
	rec := get(t, newTestServer(store, nil), "/api/posts?page=2&page_size=500&min_reactions=10")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	// an out of range page size falls back to the default
	assert.Equal(t, []interface{}{2, 20, 10}, store.lastArgs)

	var body struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
		Data    struct {
			TotalCount int `json:"total_count"`
			Posts      []struct {
				ID          string `json:"id"`
				NumComments *int   `json:"num_comments"`
				NumShares   *int   `json:"num_shares"`
			} `json:"posts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, 31, body.Data.TotalCount)
	require.Len(t, body.Data.Posts, 1)
	assert.Equal(t, "10", body.Data.Posts[0].ID)
	require.NotNil(t, body.Data.Posts[0].NumComments)
	assert.Equal(t, 4, *body.Data.Posts[0].NumComments)
	assert.Nil(t, body.Data.Posts[0].NumShares)
}

func TestHandlePostsStoreError(t *testing.T) {
	rec := get(t, newTestServer(&fakeStore{err: errors.New("connection reset")}, nil), "/api/posts")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "connection reset")
}

func TestHandlePostsByShape(t *testing.T) {
	store := &fakeStore{posts: samplePosts()}
	rec := get(t, newTestServer(store, nil), "/api/posts/shape/reel?limit=5")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"reel", 5}, store.lastArgs)
	assert.Contains(t, rec.Body.String(), `"shape":"reel"`)
}

func TestHandleExportCSV(t *testing.T) {
	store := &fakeStore{posts: samplePosts()}
	rec := get(t, newTestServer(store, nil), "/api/export/csv?min_reactions=5")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, []interface{}{5}, store.lastArgs)

	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Shape", rows[0][1])
	assert.Equal(t, []string{"10", "reel", "sunset, again", "40", "4", "", "1200", "2023-07-18 02:13:47",
		"https://www.facebook.com/naturephotos", "https://www.facebook.com/reel/10"}, rows[1])
}

func TestHandleHealth(t *testing.T) {
	rec := get(t, newTestServer(&fakeStore{}, nil), "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = get(t, newTestServer(&fakeStore{pingErr: errors.New("down")}, nil), "/api/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleStatsIncludesLookupMetrics(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	monitor := monitoring.NewMonitor(logger, filepath.Join(t.TempDir(), "metrics.json"))
	monitor.ObserveLookup("post", "reel", nil, time.Second)

	store := &fakeStore{stats: map[string]interface{}{"total_posts": 3}}
	rec := get(t, newTestServer(store, monitor), "/api/stats")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 3, body.Data["total_posts"])
	assert.EqualValues(t, 1, body.Data["lookups"])
}

func TestMetricsRoute(t *testing.T) {
	rec := get(t, newTestServer(&fakeStore{}, nil), "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	monitor := monitoring.NewMonitor(logger, filepath.Join(t.TempDir(), "metrics.json"))
	monitor.ObserveLookup("post", "reel", nil, time.Second)

	rec = get(t, newTestServer(&fakeStore{}, monitor), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fbextract_lookups_total")
}

func TestPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(&fakeStore{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/posts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}
