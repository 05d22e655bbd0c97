package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/polychlorinated/structured-data-web-scraper/internal/apinorm"
	"github.com/polychlorinated/structured-data-web-scraper/internal/crawl"
	"github.com/polychlorinated/structured-data-web-scraper/internal/dom"
	"github.com/polychlorinated/structured-data-web-scraper/internal/extract"
	"github.com/polychlorinated/structured-data-web-scraper/internal/fetch"
	"github.com/polychlorinated/structured-data-web-scraper/internal/job"
	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/types"
	"github.com/polychlorinated/structured-data-web-scraper/internal/ws"
)

// Handlers contains all ops API handlers
type Handlers struct {
	runner  *crawl.Runner
	fetcher *fetch.Client
	loader  *dom.Loader
	hub     *ws.Hub
	started time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(runner *crawl.Runner, fetcher *fetch.Client, hub *ws.Hub) *Handlers {
	return &Handlers{
		runner:  runner,
		fetcher: fetcher,
		loader:  dom.NewLoader(dom.WithSanitizer()),
		hub:     hub,
		started: time.Now(),
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "structured-data-scraper",
		"version": "1.0.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"uptime":   time.Since(h.started).String(),
		"runs":     h.runner.Stats(),
		"breakers": h.fetcher.BreakerStatus(),
		"stream":   gin.H{"subscribers": h.hub.Clients()},
	})
}

// ExtractRequest is the one-shot extraction payload
type ExtractRequest struct {
	Content string      `json:"content" binding:"required"`
	Mode    types.Mode  `json:"mode"`
	URL     string      `json:"url"`
	Hints   types.Hints `json:"hints"`
}

// Extract runs the extraction core once over a supplied document or
// API payload, without fetching or pagination
func (h *Handlers) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := req.Mode
	switch mode {
	case "", types.ModeAuto:
		mode = sniffMode(req.Content)
	case types.ModeHTML, types.ModeAPI:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown mode %q", req.Mode)})
		return
	}

	var batch *types.Batch
	if mode == types.ModeAPI {
		batch = apinorm.FromResponse([]byte(req.Content), req.URL, req.Hints)
	} else {
		doc, err := h.loader.Load(req.Content)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		batch = extract.FromDocument(doc, req.URL, req.Hints)
	}

	c.JSON(http.StatusOK, batch)
}

// SubmitJob accepts a job definition and starts a run
func (h *Handlers) SubmitJob(c *gin.Context) {
	var jb job.Job
	if err := c.ShouldBindJSON(&jb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run, err := h.runner.Submit(jb)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, run.Snapshot())
}

// ListRuns lists all runs
func (h *Handlers) ListRuns(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"runs": h.runner.List()})
}

// GetRun returns one run by id
func (h *Handlers) GetRun(c *gin.Context) {
	snap, ok := h.runner.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// sniffMode routes bare content the same way fetched responses route
// on their sniffed media type
func sniffMode(content string) types.Mode {
	if mimetype.Detect([]byte(content)).Is("application/json") {
		return types.ModeAPI
	}
	return types.ModeHTML
}
