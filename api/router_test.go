package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/topchart/config"
	"github.com/use-agent/topchart/models"
)

type fakeRunner struct {
	mu     sync.Mutex
	resp   *models.ScrapeResponse
	err    error
	got    *models.ScrapeRequest
	latest *models.ScrapeResponse
	status string
}

func (f *fakeRunner) Scrape(_ context.Context, req *models.ScrapeRequest) (*models.ScrapeResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = req
	return f.resp, f.err
}

func (f *fakeRunner) ActiveRuns() int                { return 1 }
func (f *fakeRunner) LastStatus() string             { return f.status }
func (f *fakeRunner) Latest() *models.ScrapeResponse { return f.latest }

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Mode: gin.TestMode},
		Auth:      config.AuthConfig{Enabled: true, APIKeys: []string{"k1"}},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
	}
}

func do(t *testing.T, r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var authed = map[string]string{"X-API-Key": "k1"}

func decode(t *testing.T, w *httptest.ResponseRecorder) models.ScrapeResponse {
	t.Helper()
	var resp models.ScrapeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth_NoAuth(t *testing.T) {
	r := NewRouter(&fakeRunner{status: models.StatusFailed}, testConfig(), time.Now())

	w := do(t, r, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var h models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	assert.Equal(t, "degraded", h.Status)
	assert.Equal(t, 1, h.ActiveRuns)
}

func TestScrape_RequiresAPIKey(t *testing.T) {
	r := NewRouter(&fakeRunner{}, testConfig(), time.Now())

	w := do(t, r, http.MethodPost, "/api/v1/scrape", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/scrape", "", map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, models.ErrCodeUnauthorized, decode(t, w).Error.Code)
}

func TestScrape_OK(t *testing.T) {
	runner := &fakeRunner{resp: &models.ScrapeResponse{
		Success: true,
		Status:  models.StatusCompleted,
		Movies:  []models.Movie{{Rank: 1, Title: "The Shawshank Redemption"}},
	}}
	r := NewRouter(runner, testConfig(), time.Now())

	w := do(t, r, http.MethodPost, "/api/v1/scrape", `{"fetch_mode":"http","max_rows":10}`,
		map[string]string{"Authorization": "Bearer k1"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "The Shawshank Redemption", resp.Movies[0].Title)
	assert.Equal(t, models.FetchModeHTTP, runner.got.FetchMode)
	assert.Equal(t, 10, runner.got.MaxRows)
}

func TestScrape_EmptyBodyUsesDefaults(t *testing.T) {
	runner := &fakeRunner{resp: &models.ScrapeResponse{Success: true, Status: models.StatusEmpty}}
	r := NewRouter(runner, testConfig(), time.Now())

	w := do(t, r, http.MethodPost, "/api/v1/scrape", "", authed)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusEmpty, decode(t, w).Status)
	require.NotNil(t, runner.got)
	assert.Empty(t, runner.got.FetchMode, "defaults are applied by the service")
}

func TestScrape_InvalidInput(t *testing.T) {
	r := NewRouter(&fakeRunner{}, testConfig(), time.Now())

	w := do(t, r, http.MethodPost, "/api/v1/scrape", `{"fetch_mode":"telnet"}`, authed)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrCodeInvalidInput, decode(t, w).Error.Code)

	w = do(t, r, http.MethodPost, "/api/v1/scrape", `{"max_rows":900}`, authed)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScrape_FailureMapsStatus(t *testing.T) {
	runner := &fakeRunner{
		resp: &models.ScrapeResponse{Status: models.StatusFailed, Screenshot: "imdb_error.png"},
		err:  models.NewScrapeError(models.ErrCodeTimeout, "failed to load chart page", context.DeadlineExceeded),
	}
	r := NewRouter(runner, testConfig(), time.Now())

	w := do(t, r, http.MethodPost, "/api/v1/scrape", "", authed)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)

	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "imdb_error.png", resp.Screenshot)
	assert.Equal(t, models.ErrCodeTimeout, resp.Error.Code)
}

func TestMovies(t *testing.T) {
	runner := &fakeRunner{}
	r := NewRouter(runner, testConfig(), time.Now())

	w := do(t, r, http.MethodGet, "/api/v1/movies", "", authed)
	assert.Equal(t, http.StatusNotFound, w.Code)

	runner.latest = &models.ScrapeResponse{Success: true, Status: models.StatusCompleted, Movies: []models.Movie{{Rank: 1}}}
	w = do(t, r, http.MethodGet, "/api/v1/movies", "", authed)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w).Movies, 1)
}

func TestScrape_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.01, Burst: 1}
	runner := &fakeRunner{resp: &models.ScrapeResponse{Success: true, Status: models.StatusCompleted}}
	r := NewRouter(runner, cfg, time.Now())

	w := do(t, r, http.MethodPost, "/api/v1/scrape", "", authed)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/scrape", "", authed)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "100", w.Header().Get("Retry-After"))

	// Reads are not rate limited.
	w = do(t, r, http.MethodGet, "/api/v1/movies", "", authed)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
