package crawl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/polychlorinated/structured-data-web-scraper/internal/apinorm"
	"github.com/polychlorinated/structured-data-web-scraper/internal/extract"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/logging"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/monitoring"
	"github.com/polychlorinated/structured-data-web-scraper/internal/paginate"
	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/id"
	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/types"
	"github.com/polychlorinated/structured-data-web-scraper/internal/sink"
	"github.com/polychlorinated/structured-data-web-scraper/internal/transform"
	"github.com/polychlorinated/structured-data-web-scraper/internal/ws"
)

// execution is the in-flight state of one run
type execution struct {
	runner  *Runner
	run     *Run
	logger  *logging.Logger
	sink    sink.Sink
	pool    *transform.Pool
	queue   chan Request
	pending sync.WaitGroup
}

// enqueue adds a request without blocking. Each chain holds at most
// one outstanding request, so a full queue means more chains than
// capacity; the chain is dropped rather than deadlocking workers.
func (e *execution) enqueue(req Request) {
	e.pending.Add(1)
	select {
	case e.queue <- req:
	default:
		e.pending.Done()
		e.logger.Warn("queue full, dropping chain", zap.String("url", req.URL))
	}
}

// worker drains the queue. After cancellation remaining requests are
// consumed unprocessed so pending can reach zero.
func (e *execution) worker(ctx context.Context) {
	for req := range e.queue {
		if ctx.Err() == nil {
			e.process(ctx, req)
		}
		e.pending.Done()
	}
}

// process runs the page pipeline: fetch, route by mode, extract,
// transform, sink, then schedule the continuation.
func (e *execution) process(ctx context.Context, req Request) {
	r := e.runner
	logger := e.logger.WithPage(req.URL, req.Page)

	if r.metrics != nil {
		r.metrics.SetQueueDepth(len(e.queue))
	}

	span, ctx := r.span(ctx, "crawl.page")
	if span != nil {
		span.SetTag("url", req.URL)
		span.SetTag("page", fmt.Sprintf("%d", req.Page))
		defer func() {
			span.Finish()
			r.tracer.Submit(span)
		}()
	}

	start := time.Now()

	fetchTimer := monitoring.NewTimer(r.metrics, string(req.Mode), "fetch")
	resp, err := r.fetcher.Fetch(ctx, req.URL)
	fetchTimer.Stop()
	if err != nil {
		if span != nil {
			span.SetError(err)
		}
		batch := emptyBatch(req.URL, req.Mode)
		batch.Annotate(types.CodeUpstreamHTTPError, err.Error())
		e.finishPage(ctx, req, batch, paginate.Resolution{}, req.Mode, start, logger)
		return
	}

	mode := resp.DetectMode(req.Mode)
	if span != nil {
		span.SetTag("mode", string(mode))
		span.SetStatus(resp.StatusCode)
	}

	if resp.Failed() {
		batch := emptyBatch(req.URL, mode)
		batch.Annotate(types.CodeUpstreamHTTPError,
			fmt.Sprintf("status %d: %s", resp.StatusCode, resp.Excerpt()))
		e.finishPage(ctx, req, batch, paginate.Resolution{}, mode, start, logger)
		return
	}

	var batch *types.Batch
	var res paginate.Resolution

	switch mode {
	case types.ModeAPI:
		extractTimer := monitoring.NewTimer(r.metrics, "api", "extract")
		batch = apinorm.FromResponse(resp.Body, req.URL, req.Hints)
		extractTimer.Stop()

		paginateTimer := monitoring.NewTimer(r.metrics, "api", "paginate")
		res = paginate.ResolveAPI(resp.Body, req.URL, len(batch.Records), req.Hints, req.State)
		paginateTimer.Stop()

	default:
		parseTimer := monitoring.NewTimer(r.metrics, "html", "parse")
		doc, err := r.loader.Load(string(resp.Body))
		parseTimer.Stop()
		if err != nil {
			if span != nil {
				span.SetError(err)
			}
			batch = emptyBatch(req.URL, mode)
			batch.Annotate(types.CodeNoTableFound, fmt.Sprintf("document not parseable: %v", err))
			e.finishPage(ctx, req, batch, paginate.Resolution{}, mode, start, logger)
			return
		}

		extractTimer := monitoring.NewTimer(r.metrics, "html", "extract")
		batch = extract.FromDocument(doc, req.URL, req.Hints)
		extractTimer.Stop()

		paginateTimer := monitoring.NewTimer(r.metrics, "html", "paginate")
		res = paginate.ResolveHTML(doc, req.URL, req.Hints, req.State)
		paginateTimer.Stop()
	}

	e.finishPage(ctx, req, batch, res, mode, start, logger)
}

// finishPage applies the hook, records the batch, and schedules the
// continuation when one exists.
func (e *execution) finishPage(ctx context.Context, req Request, batch *types.Batch, res paginate.Resolution, mode types.Mode, start time.Time, logger *logging.Logger) {
	r := e.runner

	if e.pool != nil {
		e.pool.ApplyBatch(ctx, batch)
	}

	for _, failure := range res.Failures {
		batch.Annotate(types.CodePaginationFailure, failure)
	}

	if err := e.sink.Append(batch); err != nil {
		logger.Error("append batch", zap.Error(err))
	}

	if r.metrics != nil {
		r.metrics.RecordPage(string(mode), time.Since(start))
		r.metrics.RecordBatch(len(batch.Records))
		for _, a := range batch.Annotations {
			r.metrics.RecordAnnotation(string(a.Code))
		}
	}

	e.run.addPage(len(batch.Records))

	r.broadcast(ws.Event{
		Type:    ws.EventPage,
		RunID:   e.run.id,
		Job:     e.run.job.Name,
		URL:     req.URL,
		Page:    req.Page,
		Records: len(batch.Records),
	})

	logger.Debug("page processed",
		zap.String("mode", string(mode)),
		zap.Int("records", len(batch.Records)),
		zap.Int("annotations", len(batch.Annotations)),
	)

	e.continueChain(req, res, mode, logger)
}

// continueChain enqueues the next extraction unit if the resolver
// found one and budget and allow patterns permit it
func (e *execution) continueChain(req Request, res paginate.Resolution, mode types.Mode, logger *logging.Logger) {
	r := e.runner

	outcome := "exhausted"
	defer func() {
		if r.metrics != nil {
			r.metrics.RecordContinuation(string(mode), outcome)
		}
	}()

	next := res.Next
	if next == nil {
		return
	}
	if req.Page >= req.Budget {
		outcome = "budget"
		logger.Debug("page budget reached", zap.Int("budget", req.Budget))
		return
	}
	if !e.run.job.Allows(next.URL) {
		outcome = "filtered"
		logger.Debug("continuation outside allow patterns", zap.String("next", next.URL))
		return
	}

	outcome = "enqueued"
	logger.Debug("continuation enqueued",
		zap.String("next", next.URL),
		zap.String("strategy", next.Strategy),
	)
	e.enqueue(Request{
		URL:    next.URL,
		Mode:   req.Mode,
		Hints:  req.Hints,
		Page:   req.Page + 1,
		Budget: req.Budget,
		State:  next.State,
	})
}

func emptyBatch(url string, mode types.Mode) *types.Batch {
	return &types.Batch{
		ID:         id.NewBatchID().String(),
		URL:        url,
		Timestamp:  time.Now().UTC(),
		SourceType: mode,
		Records:    []interface{}{},
	}
}
