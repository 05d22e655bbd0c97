package sink

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"

	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/config"
	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/types"
)

// File appends batches to a JSON Lines dataset, one line per batch
type File struct {
	mu       sync.Mutex
	file     *os.File
	gz       *gzip.Writer
	buf      *bufio.Writer
	closed   bool
	manifest Manifest
	dir      string
}

// NewFile opens the dataset file for a run under cfg.Dir. The file is
// named after the run, with a .gz suffix when compression is on.
func NewFile(cfg config.SinkConfig, runID string) (*File, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sink dir: %w", err)
	}

	name := runID + ".jsonl"
	if cfg.Compress {
		name += ".gz"
	}
	path := filepath.Join(cfg.Dir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}

	f := &File{
		file: file,
		dir:  cfg.Dir,
		manifest: Manifest{
			RunID:       runID,
			Path:        path,
			CreatedAt:   time.Now().UTC(),
			Annotations: make(map[string]int),
			Sources:     make(map[string]int),
		},
	}
	if cfg.Compress {
		f.gz = gzip.NewWriter(file)
		f.buf = bufio.NewWriter(f.gz)
	} else {
		f.buf = bufio.NewWriter(file)
	}
	return f, nil
}

// Path returns the dataset file location
func (f *File) Path() string {
	return f.manifest.Path
}

// Append writes one batch as a JSON line and updates manifest counts
func (f *File) Append(batch *types.Batch) error {
	line, err := sonic.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal batch %s: %w", batch.ID, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return fmt.Errorf("sink already closed")
	}

	if _, err := f.buf.Write(line); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	if err := f.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}

	f.manifest.Batches++
	f.manifest.Records += batch.RowCount
	f.manifest.Sources[string(batch.SourceType)]++
	for _, a := range batch.Annotations {
		f.manifest.Annotations[string(a.Code)]++
	}
	return nil
}

// Close flushes the dataset and writes the run manifest next to it
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true

	if err := f.buf.Flush(); err != nil {
		return err
	}
	if f.gz != nil {
		if err := f.gz.Close(); err != nil {
			return err
		}
	}
	if err := f.file.Close(); err != nil {
		return err
	}

	f.manifest.ClosedAt = time.Now().UTC()
	return f.manifest.write(f.dir)
}

// Manifest summarizes one run's dataset
type Manifest struct {
	RunID       string         `json:"run_id"`
	Path        string         `json:"path"`
	CreatedAt   time.Time      `json:"created_at"`
	ClosedAt    time.Time      `json:"closed_at"`
	Batches     int            `json:"batches"`
	Records     int            `json:"records"`
	Annotations map[string]int `json:"annotations,omitempty"`
	Sources     map[string]int `json:"sources,omitempty"`
}

func (m Manifest) write(dir string) error {
	data, err := sonic.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	path := filepath.Join(dir, m.RunID+".manifest.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a run manifest from a sink directory
func ReadManifest(dir, runID string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, runID+".manifest.json"))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := sonic.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
