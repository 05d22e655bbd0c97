package crawl

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/polychlorinated/structured-data-web-scraper/internal/dom"
	"github.com/polychlorinated/structured-data-web-scraper/internal/fetch"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/config"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/logging"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/monitoring"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/tracing"
	"github.com/polychlorinated/structured-data-web-scraper/internal/job"
	"github.com/polychlorinated/structured-data-web-scraper/internal/paginate"
	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/id"
	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/types"
	"github.com/polychlorinated/structured-data-web-scraper/internal/sink"
	"github.com/polychlorinated/structured-data-web-scraper/internal/transform"
	"github.com/polychlorinated/structured-data-web-scraper/internal/ws"
)

// ErrClosed is returned by Submit after Close
var ErrClosed = errors.New("runner is closed")

// Request is one extraction unit awaiting processing
type Request struct {
	URL    string
	Mode   types.Mode
	Hints  types.Hints
	Page   int
	Budget int
	State  paginate.State
}

// Runner executes jobs. Each run gets a bounded worker pool feeding
// one dataset sink; runs stay in the registry for inspection.
type Runner struct {
	cfg     *config.Config
	fetcher *fetch.Client
	loader  *dom.Loader
	hub     *ws.Hub
	logger  *logging.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.RWMutex
	runs map[string]*Run
}

// New creates a runner. hub, metrics, and tracer may be nil.
func New(cfg *config.Config, fetcher *fetch.Client, hub *ws.Hub, logger *logging.Logger, metrics *monitoring.Metrics, tracer *tracing.Tracer) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		cfg:     cfg,
		fetcher: fetcher,
		loader:  dom.NewLoader(dom.WithSanitizer()),
		hub:     hub,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		ctx:     ctx,
		cancel:  cancel,
		runs:    make(map[string]*Run),
	}
}

// Submit validates the job and starts a run in the background
func (r *Runner) Submit(jb job.Job) (*Run, error) {
	if err := jb.Validate(); err != nil {
		return nil, err
	}

	select {
	case <-r.ctx.Done():
		return nil, ErrClosed
	default:
	}

	run := newRun(id.NewRunID().String(), jb)

	r.mu.Lock()
	r.runs[run.id] = run
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.execute(r.ctx, run)
	}()

	return run, nil
}

// RunJob executes the job and blocks until the run finishes
func (r *Runner) RunJob(ctx context.Context, jb job.Job) (Snapshot, error) {
	run, err := r.Submit(jb)
	if err != nil {
		return Snapshot{}, err
	}

	select {
	case <-run.Done():
		return run.Snapshot(), nil
	case <-ctx.Done():
		return run.Snapshot(), ctx.Err()
	}
}

// Get looks up a run by id
func (r *Runner) Get(runID string) (Snapshot, bool) {
	r.mu.RLock()
	run, ok := r.runs[runID]
	r.mu.RUnlock()
	if !ok {
		return Snapshot{}, false
	}
	return run.Snapshot(), true
}

// List returns all runs, oldest first
func (r *Runner) List() []Snapshot {
	r.mu.RLock()
	out := make([]Snapshot, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, run.Snapshot())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Started.Before(out[j].Started) })
	return out
}

// Stats summarizes the run registry
func (r *Runner) Stats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := 0
	for _, run := range r.runs {
		if run.Snapshot().Status == StatusRunning {
			active++
		}
	}
	return map[string]interface{}{
		"total":  len(r.runs),
		"active": active,
	}
}

// Close cancels active runs and waits for their workers
func (r *Runner) Close() error {
	r.cancel()
	r.wg.Wait()
	return nil
}

// execute drives one run to a terminal status
func (r *Runner) execute(ctx context.Context, run *Run) {
	logger := r.logger.WithRun(run.id).WithJob(run.job.Name)

	if r.metrics != nil {
		r.metrics.IncRunsActive()
		defer r.metrics.DecRunsActive()
	}

	out, err := sink.NewFile(r.cfg.Sink, run.id)
	if err != nil {
		logger.Error("open dataset sink", zap.Error(err))
		r.fail(run, err)
		return
	}
	run.setDataset(out.Path())

	var pool *transform.Pool
	if run.job.Transform != "" {
		pool, err = transform.NewPool(transform.DefaultConfig(), run.job.Transform, r.cfg.Crawl.Workers)
		if err != nil {
			out.Close()
			logger.Error("load transform hook", zap.Error(err))
			r.fail(run, err)
			return
		}
		defer pool.Close()
	}

	logger.Info("run started", zap.Int("sources", len(run.job.Sources)))
	r.broadcast(ws.Event{Type: ws.EventRunStarted, RunID: run.id, Job: run.job.Name})

	exec := &execution{
		runner: r,
		run:    run,
		logger: logger,
		sink:   out,
		pool:   pool,
		queue:  make(chan Request, r.cfg.Crawl.QueueCapacity),
	}

	for _, src := range run.job.Sources {
		mode := src.Mode
		if mode == "" {
			mode = types.ModeAuto
		}
		budget := src.MaxPages
		if budget <= 0 {
			budget = r.cfg.Crawl.MaxPages
		}
		exec.enqueue(Request{
			URL:    src.URL,
			Mode:   mode,
			Hints:  src.Hints,
			Page:   1,
			Budget: budget,
			State:  paginate.NewState(),
		})
	}

	go func() {
		exec.pending.Wait()
		close(exec.queue)
	}()

	if r.metrics != nil {
		r.metrics.SetWorkersActive(r.cfg.Crawl.Workers)
	}

	var workers sync.WaitGroup
	for i := 0; i < r.cfg.Crawl.Workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			exec.worker(ctx)
		}()
	}
	workers.Wait()

	if r.metrics != nil {
		r.metrics.SetWorkersActive(0)
		r.metrics.SetQueueDepth(0)
	}

	if err := out.Close(); err != nil {
		logger.Warn("close dataset sink", zap.Error(err))
	}

	status := StatusComplete
	if ctx.Err() != nil {
		status = StatusCancelled
	}
	run.finish(status, nil)

	snap := run.Snapshot()
	logger.Info("run finished",
		zap.String("status", string(status)),
		zap.Int("pages", snap.Pages),
		zap.Int("records", snap.Records),
	)
	r.broadcast(ws.Event{
		Type:    ws.EventRunComplete,
		RunID:   run.id,
		Job:     run.job.Name,
		Pages:   snap.Pages,
		Records: snap.Records,
	})
}

func (r *Runner) fail(run *Run, err error) {
	run.finish(StatusFailed, err)
	r.broadcast(ws.Event{
		Type:    ws.EventRunComplete,
		RunID:   run.id,
		Job:     run.job.Name,
		Message: err.Error(),
	})
}

func (r *Runner) broadcast(event ws.Event) {
	if r.hub != nil {
		r.hub.Broadcast(event)
	}
}

func (r *Runner) span(ctx context.Context, name string) (*tracing.Span, context.Context) {
	if r.tracer == nil {
		return nil, ctx
	}
	return r.tracer.StartSpan(ctx, name)
}
