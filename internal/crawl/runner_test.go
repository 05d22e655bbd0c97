package crawl

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polychlorinated/structured-data-web-scraper/internal/fetch"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/config"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/logging"
	"github.com/polychlorinated/structured-data-web-scraper/internal/job"
	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/types"
	"github.com/polychlorinated/structured-data-web-scraper/internal/sink"
	"github.com/polychlorinated/structured-data-web-scraper/internal/ws"
)

func testRunner(t *testing.T, hub *ws.Hub) (*Runner, *config.Config) {
	t.Helper()

	cfg := config.Default()
	cfg.Sink.Dir = t.TempDir()
	cfg.Sink.Compress = false
	cfg.Crawl.Workers = 2
	cfg.Crawl.QueueCapacity = 16
	cfg.Fetch.TimeoutSeconds = 5
	cfg.Fetch.HostRPS = 1000
	cfg.Fetch.HostBurst = 1000
	cfg.Fetch.RetryMax = 0

	fetcher := fetch.New(cfg.Fetch, logging.NewNop(), nil)
	runner := New(cfg, fetcher, hub, logging.NewNop(), nil, nil)
	t.Cleanup(func() { runner.Close() })
	return runner, cfg
}

func tablePage(rows, next string) string {
	nextLink := ""
	if next != "" {
		nextLink = fmt.Sprintf(`<a rel="next" href="%s">Next</a>`, next)
	}
	return fmt.Sprintf(`<html><body>
<table class="wikitable">
<tr><th>Rank</th><th>City</th></tr>
%s
</table>
%s
</body></html>`, rows, nextLink)
}

func datasetBatches(t *testing.T, path string) []types.Batch {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var batches []types.Batch
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var b types.Batch
		require.NoError(t, sonic.Unmarshal(scanner.Bytes(), &b))
		batches = append(batches, b)
	}
	require.NoError(t, scanner.Err())
	return batches
}

func TestRunJobHTMLChain(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cities", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, tablePage(`<tr><td>3</td><td>Waco</td></tr>`, ""))
			return
		}
		fmt.Fprint(w, tablePage(
			`<tr><td>1</td><td>Austin</td></tr><tr><td>2</td><td>Dallas</td></tr>`,
			"/cities?page=2"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	runner, cfg := testRunner(t, nil)

	snap, err := runner.RunJob(context.Background(), job.Job{
		Name:    "cities",
		Sources: []job.Source{{URL: srv.URL + "/cities", Mode: types.ModeHTML}},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusComplete, snap.Status)
	assert.Equal(t, 2, snap.Pages)
	assert.Equal(t, 3, snap.Records)
	assert.NotZero(t, snap.Finished)

	manifest, err := sink.ReadManifest(cfg.Sink.Dir, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, manifest.Batches)
	assert.Equal(t, 3, manifest.Records)
	assert.Equal(t, 2, manifest.Sources["html"])

	batches := datasetBatches(t, snap.Dataset)
	require.Len(t, batches, 2)
	first := batches[0].Records[0].(map[string]interface{})
	assert.Equal(t, "Austin", first["City"])
	assert.Equal(t, "1", first["Rank"])
}

func TestRunJobAPIChain(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if req.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"results":[{"id":3}],"pagination":{"total_pages":2,"page":2}}`)
			return
		}
		fmt.Fprint(w, `{"results":[{"id":1},{"id":2}],"pagination":{"total_pages":2,"page":1}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	runner, cfg := testRunner(t, nil)

	snap, err := runner.RunJob(context.Background(), job.Job{
		Name:    "api-feed",
		Sources: []job.Source{{URL: srv.URL + "/api", Mode: types.ModeAPI}},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusComplete, snap.Status)
	assert.Equal(t, 2, snap.Pages)
	assert.Equal(t, 3, snap.Records)

	manifest, err := sink.ReadManifest(cfg.Sink.Dir, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, manifest.Sources["api"])
}

func TestBudgetCapsChain(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", func(w http.ResponseWriter, req *http.Request) {
		n, _ := strconv.Atoi(req.URL.Query().Get("p"))
		if n == 0 {
			n = 1
		}
		fmt.Fprint(w, tablePage(
			fmt.Sprintf(`<tr><td>%d</td><td>Item</td></tr>`, n),
			fmt.Sprintf("/feed?p=%d", n+1)))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	runner, _ := testRunner(t, nil)

	snap, err := runner.RunJob(context.Background(), job.Job{
		Name:    "endless",
		Sources: []job.Source{{URL: srv.URL + "/feed", Mode: types.ModeHTML, MaxPages: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, snap.Pages)
	assert.Equal(t, 3, snap.Records)
}

func TestAllowPatternsFilterContinuations(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, tablePage(`<tr><td>1</td><td>Austin</td></tr>`, "/blocked"))
	})
	mux.HandleFunc("/blocked", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, tablePage(`<tr><td>2</td><td>Dallas</td></tr>`, ""))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	runner, _ := testRunner(t, nil)

	snap, err := runner.RunJob(context.Background(), job.Job{
		Name:          "fenced",
		Sources:       []job.Source{{URL: srv.URL + "/a", Mode: types.ModeHTML}},
		AllowPatterns: []string{srv.URL + "/a*"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, snap.Pages)
	assert.Equal(t, 1, snap.Records)
}

func TestUpstreamErrorAnnotates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "gone fishing", http.StatusNotFound)
	}))
	defer srv.Close()

	runner, cfg := testRunner(t, nil)

	snap, err := runner.RunJob(context.Background(), job.Job{
		Name:    "dead-source",
		Sources: []job.Source{{URL: srv.URL + "/missing", Mode: types.ModeHTML}},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusComplete, snap.Status)
	assert.Equal(t, 1, snap.Pages)
	assert.Equal(t, 0, snap.Records)

	manifest, err := sink.ReadManifest(cfg.Sink.Dir, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, manifest.Annotations[string(types.CodeUpstreamHTTPError)])

	batches := datasetBatches(t, snap.Dataset)
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Annotations, 1)
	assert.Contains(t, batches[0].Annotations[0].Message, "status 404")
	assert.Contains(t, batches[0].Annotations[0].Message, "gone fishing")
}

func TestTransformHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, tablePage(
			`<tr><td>1</td><td>Austin</td></tr><tr><td>2</td><td>Dallas</td></tr>`, ""))
	}))
	defer srv.Close()

	runner, _ := testRunner(t, nil)

	snap, err := runner.RunJob(context.Background(), job.Job{
		Name:    "hooked",
		Sources: []job.Source{{URL: srv.URL, Mode: types.ModeHTML}},
		Transform: `
function transform(record) {
	if (record.City === "Dallas") {
		return null;
	}
	record.City = record.City.toUpperCase();
	return record;
}`,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusComplete, snap.Status)
	assert.Equal(t, 1, snap.Records)

	batches := datasetBatches(t, snap.Dataset)
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Records, 1)
	assert.Equal(t, "AUSTIN", batches[0].Records[0].(map[string]interface{})["City"])
}

func TestAutoModeDetectsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[{"id":1},{"id":2}]}`)
	}))
	defer srv.Close()

	runner, cfg := testRunner(t, nil)

	snap, err := runner.RunJob(context.Background(), job.Job{
		Name:    "sniffed",
		Sources: []job.Source{{URL: srv.URL}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Records)

	manifest, err := sink.ReadManifest(cfg.Sink.Dir, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, manifest.Sources["api"])
}

func TestSubmitGetList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, tablePage(`<tr><td>1</td><td>Austin</td></tr>`, ""))
	}))
	defer srv.Close()

	runner, _ := testRunner(t, nil)

	run, err := runner.Submit(job.Job{
		Name:    "async",
		Sources: []job.Source{{URL: srv.URL, Mode: types.ModeHTML}},
	})
	require.NoError(t, err)

	snap, ok := runner.Get(run.ID())
	require.True(t, ok)
	assert.Equal(t, "async", snap.Job)

	require.Eventually(t, func() bool {
		snap, _ := runner.Get(run.ID())
		return snap.Status == StatusComplete
	}, 5*time.Second, 10*time.Millisecond)

	list := runner.List()
	require.Len(t, list, 1)
	assert.Equal(t, run.ID(), list[0].ID)
}

func TestSubmitRejectsInvalidJob(t *testing.T) {
	runner, _ := testRunner(t, nil)

	_, err := runner.Submit(job.Job{Name: "empty"})
	assert.Error(t, err)
}

func TestCloseRejectsSubmit(t *testing.T) {
	runner, _ := testRunner(t, nil)
	require.NoError(t, runner.Close())

	_, err := runner.Submit(job.Job{
		Name:    "late",
		Sources: []job.Source{{URL: "https://example.org/x"}},
	})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRunBroadcastsProgress(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := ws.NewHub(logging.NewNop(), nil)
	router := gin.New()
	router.GET("/stream", hub.HandleConnection)
	streamSrv := httptest.NewServer(router)
	defer streamSrv.Close()

	wsURL := "ws" + strings.TrimPrefix(streamSrv.URL, "http") + "/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var frame map[string]interface{}
	require.NoError(t, conn.ReadJSON(&frame)) // welcome

	pageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, tablePage(`<tr><td>1</td><td>Austin</td></tr>`, ""))
	}))
	defer pageSrv.Close()

	runner, _ := testRunner(t, hub)

	_, err = runner.RunJob(context.Background(), job.Job{
		Name:    "streamed",
		Sources: []job.Source{{URL: pageSrv.URL, Mode: types.ModeHTML}},
	})
	require.NoError(t, err)

	for _, want := range []string{ws.EventRunStarted, ws.EventPage, ws.EventRunComplete} {
		require.NoError(t, conn.ReadJSON(&frame))
		assert.Equal(t, want, frame["type"])
	}
}

func TestRunFailsOnBadTransform(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, tablePage(`<tr><td>1</td><td>Austin</td></tr>`, ""))
	}))
	defer srv.Close()

	runner, _ := testRunner(t, nil)

	snap, err := runner.RunJob(context.Background(), job.Job{
		Name:      "broken-hook",
		Sources:   []job.Source{{URL: srv.URL, Mode: types.ModeHTML}},
		Transform: `var x = 1;`,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, snap.Status)
	assert.NotEmpty(t, snap.Error)
	assert.Equal(t, 0, snap.Pages)
}
