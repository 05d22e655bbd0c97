package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/config"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/logging"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Sink.Dir = t.TempDir()
	cfg.Sink.Compress = false
	cfg.Crawl.Workers = 2
	cfg.Crawl.QueueCapacity = 16
	cfg.Fetch.HostRPS = 1000
	cfg.Fetch.HostBurst = 1000
	cfg.Fetch.RetryMax = 0
	cfg.RateLimit.Enabled = false
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := New(cfg, logging.NewNop(), nil)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRootBanner(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	w := doJSON(t, srv, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, "structured-data-scraper", body["service"])
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	w := doJSON(t, srv, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "runs")
	assert.Contains(t, body, "breakers")
	assert.Contains(t, body, "stream")
}

func TestMetricsRouteRequiresCollector(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	w := doJSON(t, srv, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExtractHTML(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	content := `<table class="wikitable">
		<tr><th>City</th><th>Population</th></tr>
		<tr><td>Austin</td><td>961855</td></tr>
		<tr><td>Dallas</td><td>1304379</td></tr>
	</table>`
	payload, err := sonic.MarshalString(map[string]interface{}{
		"content": content,
		"mode":    "html",
	})
	require.NoError(t, err)

	w := doJSON(t, srv, http.MethodPost, "/extract", payload)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "html", body["source_type"])
	assert.Equal(t, float64(2), body["row_count"])
	records := body["records"].([]interface{})
	require.Len(t, records, 2)
	first := records[0].(map[string]interface{})
	assert.Equal(t, "Austin", first["City"])
}

func TestExtractSniffsJSON(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	payload, err := sonic.MarshalString(map[string]interface{}{
		"content": `[{"city":"Austin","rank":1},{"city":"Dallas","rank":2}]`,
	})
	require.NoError(t, err)

	w := doJSON(t, srv, http.MethodPost, "/extract", payload)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "api", body["source_type"])
	assert.Equal(t, float64(2), body["row_count"])
}

func TestExtractRejectsMissingContent(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	w := doJSON(t, srv, http.MethodPost, "/extract", `{"mode":"html"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractRejectsUnknownMode(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	w := doJSON(t, srv, http.MethodPost, "/extract", `{"content":"<p>hi</p>","mode":"rss"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body["error"], "unknown mode")
}

func TestJobLifecycle(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<table class="wikitable">
			<tr><th>Rank</th><th>City</th></tr>
			<tr><td>1</td><td>Austin</td></tr>
		</table>`)
	}))
	defer upstream.Close()

	srv := newTestServer(t, testConfig(t))

	payload, err := sonic.MarshalString(map[string]interface{}{
		"name": "cities",
		"sources": []map[string]interface{}{
			{"url": upstream.URL, "mode": "html", "max_pages": 1},
		},
	})
	require.NoError(t, err)

	w := doJSON(t, srv, http.MethodPost, "/jobs", payload)
	require.Equal(t, http.StatusAccepted, w.Code)
	submitted := decodeBody(t, w)
	runID := submitted["id"].(string)
	require.NotEmpty(t, runID)
	assert.Equal(t, "cities", submitted["job"])

	require.Eventually(t, func() bool {
		w := doJSON(t, srv, http.MethodGet, "/jobs/"+runID, "")
		if w.Code != http.StatusOK {
			return false
		}
		return decodeBody(t, w)["status"] == "complete"
	}, 5*time.Second, 20*time.Millisecond)

	w = doJSON(t, srv, http.MethodGet, "/jobs/"+runID, "")
	require.Equal(t, http.StatusOK, w.Code)
	run := decodeBody(t, w)
	assert.Equal(t, float64(1), run["pages"])
	assert.Equal(t, float64(1), run["records"])
	assert.NotEmpty(t, run["dataset"])

	w = doJSON(t, srv, http.MethodGet, "/jobs", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody(t, w)
	runs := list["runs"].([]interface{})
	require.Len(t, runs, 1)
}

func TestSubmitJobRejectsInvalid(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	w := doJSON(t, srv, http.MethodPost, "/jobs", `{"name":"empty","sources":[]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRunNotFound(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	w := doJSON(t, srv, http.MethodGet, "/jobs/run_does_not_exist", "")

	require.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body["error"], "not found")
}

func TestRateLimitEnforced(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RequestsPerSecond = 1
	cfg.RateLimit.Burst = 1
	srv := newTestServer(t, cfg)

	first := doJSON(t, srv, http.MethodGet, "/health", "")
	second := doJSON(t, srv, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
