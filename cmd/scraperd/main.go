package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"

	"github.com/polychlorinated/structured-data-web-scraper/internal/crawl"
	"github.com/polychlorinated/structured-data-web-scraper/internal/fetch"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/config"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/logging"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/monitoring"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/server"
	"github.com/polychlorinated/structured-data-web-scraper/internal/job"
)

func main() {
	// Parse flags
	port := flag.String("port", "", "Override server port")
	jobFile := flag.String("job", "", "Run a single job file and exit")
	jobsDir := flag.String("jobs", "", "Submit every job file under this directory at startup")
	dev := flag.Bool("dev", false, "Development logging (colored, debug level)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dev {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	// One-shot mode: run the job to completion and print the result
	if *jobFile != "" {
		code := runOnce(cfg, logger, *jobFile)
		logger.Sync()
		os.Exit(code)
	}

	metrics := monitoring.NewMetrics()
	srv := server.New(cfg, logger, metrics)

	if *jobsDir != "" {
		jobs, err := job.LoadDir(*jobsDir, "")
		if err != nil {
			log.Fatalf("Failed to load jobs: %v", err)
		}
		for _, jb := range jobs {
			if _, err := srv.Runner().Submit(*jb); err != nil {
				log.Fatalf("Failed to submit job %q: %v", jb.Name, err)
			}
		}
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		log.Println("Shutting down gracefully...")
		if err := srv.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}

// runOnce executes a single job file without the ops server.
func runOnce(cfg *config.Config, logger *logging.Logger, path string) int {
	jb, err := job.LoadFile(path)
	if err != nil {
		log.Printf("Failed to load job: %v", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	fetcher := fetch.New(cfg.Fetch, logger, nil)
	runner := crawl.New(cfg, fetcher, nil, logger, nil, nil)
	defer runner.Close()

	snap, err := runner.RunJob(ctx, *jb)
	if err != nil {
		log.Printf("Run aborted: %v", err)
		return 1
	}

	out, err := sonic.MarshalIndent(snap, "", "  ")
	if err != nil {
		log.Printf("Failed to render result: %v", err)
		return 1
	}
	fmt.Println(string(out))

	if snap.Status != crawl.StatusComplete {
		return 1
	}
	return 0
}
