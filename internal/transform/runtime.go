package transform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"
)

var (
	// ErrNoTransform means the script never defined transform(record)
	ErrNoTransform = errors.New("script does not define transform(record)")

	// ErrBadReturn means the hook returned something other than an
	// object, null, or undefined
	ErrBadReturn = errors.New("transform must return an object or null")
)

// Runtime wraps a goja VM locked down for record hooks. The job script
// is loaded once; transform(record) is then invoked per record.
type Runtime struct {
	vm     *goja.Runtime
	fn     goja.Callable
	script string
	config Config
	mu     sync.Mutex

	// Console output
	console   []LogEntry
	consoleMu sync.Mutex

	// Interrupt channel
	interrupt chan struct{}
}

// New compiles the hook script into a sandboxed runtime
func New(config Config, script string) (*Runtime, error) {
	r := &Runtime{
		script:    script,
		config:    config,
		interrupt: make(chan struct{}),
	}

	if err := r.boot(); err != nil {
		return nil, err
	}

	return r, nil
}

// boot builds a fresh VM, locks down globals, and loads the script
func (r *Runtime) boot() error {
	vm := goja.New()
	if r.config.MaxCallStack > 0 {
		vm.SetMaxCallStackSize(r.config.MaxCallStack)
	}

	r.vm = vm
	r.console = []LogEntry{}

	r.setupGlobals()

	if _, err := vm.RunString(r.script); err != nil {
		return fmt.Errorf("load transform script: %w", err)
	}

	fn, ok := goja.AssertFunction(vm.Get("transform"))
	if !ok {
		return ErrNoTransform
	}
	r.fn = fn

	return nil
}

// Apply runs transform(record) with timeout and resource limits. A nil
// record with nil error means the hook dropped the record.
func (r *Runtime) Apply(ctx context.Context, record map[string]interface{}) (map[string]interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Setup timeout
	timer := time.NewTimer(r.config.Timeout)
	defer timer.Stop()

	// Setup interrupt handler
	go func() {
		select {
		case <-timer.C:
			r.vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			r.vm.Interrupt("context cancelled")
		case <-r.interrupt:
			return
		}
	}()

	val, err := r.fn(goja.Undefined(), r.vm.ToValue(record))

	// Stop interrupt goroutine
	close(r.interrupt)
	r.interrupt = make(chan struct{})

	// A fired interrupt would poison later calls
	r.vm.ClearInterrupt()

	if err != nil {
		return nil, err
	}

	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil, nil
	}

	out, ok := val.Export().(map[string]interface{})
	if !ok {
		return nil, ErrBadReturn
	}

	return out, nil
}

// setupGlobals configures global objects and security
func (r *Runtime) setupGlobals() {
	// Remove dangerous globals
	r.vm.Set("require", goja.Undefined())
	r.vm.Set("process", goja.Undefined())
	r.vm.Set("module", goja.Undefined())
	r.vm.Set("exports", goja.Undefined())

	// Setup console if enabled
	if r.config.EnableConsole {
		console := r.vm.NewObject()
		console.Set("log", r.makeConsoleFunc("log"))
		console.Set("warn", r.makeConsoleFunc("warn"))
		console.Set("error", r.makeConsoleFunc("error"))
		console.Set("info", r.makeConsoleFunc("info"))
		r.vm.Set("console", console)
	}

	// Setup timers (no-op for security)
	r.vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	r.vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
}

// makeConsoleFunc creates a console function
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var msg string
		for i, arg := range call.Arguments {
			if i > 0 {
				msg += " "
			}
			msg += arg.String()
		}

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: msg,
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		return goja.Undefined()
	}
}

// Console drains captured console output
func (r *Runtime) Console() []LogEntry {
	r.consoleMu.Lock()
	defer r.consoleMu.Unlock()

	out := r.console
	r.console = []LogEntry{}
	return out
}

// Reset rebuilds the VM and reloads the script
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.boot()
}

// Close releases resources
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.fn = nil
	r.console = nil
	return nil
}
