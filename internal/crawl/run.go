package crawl

import (
	"sync"
	"time"

	"github.com/polychlorinated/structured-data-web-scraper/internal/job"
)

// Status is the lifecycle state of a run
type Status string

const (
	StatusRunning   Status = "running"
	StatusComplete  Status = "complete"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Run tracks one job execution. Counters update as workers finish
// pages; Snapshot returns a consistent copy.
type Run struct {
	mu sync.Mutex

	id       string
	job      job.Job
	status   Status
	started  time.Time
	finished time.Time
	dataset  string
	pages    int
	records  int
	err      string

	done chan struct{}
}

// Snapshot is the read-only view of a run
type Snapshot struct {
	ID       string    `json:"id"`
	Job      string    `json:"job"`
	Status   Status    `json:"status"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Dataset  string    `json:"dataset,omitempty"`
	Pages    int       `json:"pages"`
	Records  int       `json:"records"`
	Error    string    `json:"error,omitempty"`
}

func newRun(id string, jb job.Job) *Run {
	return &Run{
		id:      id,
		job:     jb,
		status:  StatusRunning,
		started: time.Now().UTC(),
		done:    make(chan struct{}),
	}
}

// ID returns the run identifier
func (r *Run) ID() string {
	return r.id
}

// Done closes when the run reaches a terminal status
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Snapshot copies the current run state
func (r *Run) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		ID:       r.id,
		Job:      r.job.Name,
		Status:   r.status,
		Started:  r.started,
		Finished: r.finished,
		Dataset:  r.dataset,
		Pages:    r.pages,
		Records:  r.records,
		Error:    r.err,
	}
}

func (r *Run) setDataset(path string) {
	r.mu.Lock()
	r.dataset = path
	r.mu.Unlock()
}

func (r *Run) addPage(records int) {
	r.mu.Lock()
	r.pages++
	r.records += records
	r.mu.Unlock()
}

func (r *Run) finish(status Status, err error) {
	r.mu.Lock()
	r.status = status
	r.finished = time.Now().UTC()
	if err != nil {
		r.err = err.Error()
	}
	r.mu.Unlock()
	close(r.done)
}
