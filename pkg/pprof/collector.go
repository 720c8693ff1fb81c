// Package pprof collects runtime profiles while the engine benchmarks
// run: a CPU profile over the whole run plus a heap snapshot at stop,
// or a live net/http/pprof endpoint.
package pprof

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"
)

// Mode selects how profiles are collected.
type Mode string

const (
	// ModeFile writes profile files into the output directory.
	ModeFile Mode = "file"
	// ModeHTTP serves the live pprof endpoint.
	ModeHTTP Mode = "http"
)

// Config configures the collector.
type Config struct {
	Mode      Mode
	OutputDir string // file mode: where profiles land
	Addr      string // http mode: listen address, e.g. "localhost:6060"
}

// DefaultConfig returns a file-mode configuration writing to ./pprof.
func DefaultConfig() Config {
	return Config{Mode: ModeFile, OutputDir: "./pprof"}
}

// Collector gathers profiles for the lifetime of a run.
type Collector struct {
	cfg     Config
	cpuFile *os.File
	server  *http.Server
}

// NewCollector creates a collector for the given configuration.
func NewCollector(cfg Config) (*Collector, error) {
	switch cfg.Mode {
	case ModeFile:
		if cfg.OutputDir == "" {
			cfg.OutputDir = "./pprof"
		}
	case ModeHTTP:
		if cfg.Addr == "" {
			cfg.Addr = "localhost:6060"
		}
	default:
		return nil, fmt.Errorf("unknown pprof mode: %q", cfg.Mode)
	}
	return &Collector{cfg: cfg}, nil
}

// OutputDir returns the directory profile files are written to.
func (c *Collector) OutputDir() string { return c.cfg.OutputDir }

// Start begins collection.
func (c *Collector) Start() error {
	switch c.cfg.Mode {
	case ModeFile:
		if err := os.MkdirAll(c.cfg.OutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create pprof directory: %w", err)
		}
		name := filepath.Join(c.cfg.OutputDir,
			fmt.Sprintf("cpu-%s.pprof", time.Now().Format("20060102-150405")))
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("failed to create cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("failed to start cpu profile: %w", err)
		}
		c.cpuFile = f
		return nil
	case ModeHTTP:
		c.server = &http.Server{Addr: c.cfg.Addr}
		go func() {
			// DefaultServeMux carries the pprof handlers.
			_ = c.server.ListenAndServe()
		}()
		return nil
	}
	return nil
}

// Stop ends collection, writing the heap snapshot in file mode.
func (c *Collector) Stop() error {
	switch c.cfg.Mode {
	case ModeFile:
		if c.cpuFile == nil {
			return nil
		}
		pprof.StopCPUProfile()
		cerr := c.cpuFile.Close()
		c.cpuFile = nil

		runtime.GC()
		name := filepath.Join(c.cfg.OutputDir,
			fmt.Sprintf("heap-%s.pprof", time.Now().Format("20060102-150405")))
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("failed to create heap profile: %w", err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("failed to write heap profile: %w", err)
		}
		return cerr
	case ModeHTTP:
		if c.server != nil {
			return c.server.Close()
		}
	}
	return nil
}
