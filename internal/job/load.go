package job

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/charlievieth/fastwalk"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPattern matches every supported job file under a directory
const DefaultPattern = "**/*.{yaml,yml,toml,json}"

// LoadFile reads and validates one job file. The extension picks the
// decoder. A missing name defaults to the file's base name.
func LoadFile(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}

	job := &Job{}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, job)
	case ".toml":
		err = toml.Unmarshal(data, job)
	case ".json":
		err = sonic.Unmarshal(data, job)
	default:
		return nil, fmt.Errorf("unsupported job file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	if job.Name == "" {
		job.Name = strings.TrimSuffix(filepath.Base(path), ext)
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return job, nil
}

// LoadDir loads every job file under dir whose path matches the glob
// pattern, in stable path order
func LoadDir(dir, pattern string) ([]*Job, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}

	var (
		mu    sync.Mutex
		paths []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, rerr := filepath.Rel(dir, p)
		if rerr != nil {
			return nil
		}
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); !ok {
			return nil
		}
		mu.Lock()
		paths = append(paths, p)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(paths)

	jobs := make([]*Job, 0, len(paths))
	for _, p := range paths {
		job, err := LoadFile(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
