package transform

import "time"

// Config bounds a hook runtime
type Config struct {
	Timeout       time.Duration // Per-record execution cap
	EnableConsole bool          // Allow console.log/warn/error/info
	MaxCallStack  int           // goja call stack depth
}

// LogEntry represents captured console output
type LogEntry struct {
	Level   string    // log, warn, error, info
	Message string    // Log message
	Time    time.Time // Timestamp
}

// DefaultConfig returns the limits applied to job hooks
func DefaultConfig() Config {
	return Config{
		Timeout:       5 * time.Second,
		EnableConsole: true,
		MaxCallStack:  1024,
	}
}
