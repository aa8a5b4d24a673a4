// Package llama runs llama-server as a managed subprocess and exposes it
// to the prediction manager as an inference runtime.
package llama

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"
)

const defaultHealthTimeout = 120 * time.Second

// Subprocess manages the lifecycle of a llama-server child process:
// binary resolution, port allocation, start, health polling, and shutdown.
type Subprocess struct {
	binPath       string
	args          []string
	port          int
	baseURL       string
	healthTimeout time.Duration

	mu     sync.Mutex
	cmd    *exec.Cmd
	doneCh chan struct{}
}

// SubprocessConfig holds everything needed to start llama-server.
type SubprocessConfig struct {
	BinPath       string // path to llama-server; resolved automatically if empty
	Args          []string
	HealthTimeout time.Duration // how long to wait for /health, default 120s
}

// NewSubprocess creates a Subprocess but does not start it.
func NewSubprocess(cfg SubprocessConfig) (*Subprocess, error) {
	binPath := cfg.BinPath
	if binPath == "" {
		binPath = findServerBinary()
	}
	if binPath == "" {
		return nil, fmt.Errorf("llama-server binary not found, please install llama.cpp")
	}

	port, err := allocatePort()
	if err != nil {
		return nil, err
	}

	healthTimeout := cfg.HealthTimeout
	if healthTimeout == 0 {
		healthTimeout = defaultHealthTimeout
	}

	return &Subprocess{
		binPath:       binPath,
		args:          cfg.Args,
		port:          port,
		baseURL:       fmt.Sprintf("http://127.0.0.1:%d", port),
		healthTimeout: healthTimeout,
	}, nil
}

// BaseURL returns the HTTP base URL of the subprocess.
func (s *Subprocess) BaseURL() string { return s.baseURL }

// Start launches llama-server and waits for it to pass a health check.
// ctx bounds only the health wait; the process itself runs until Stop.
func (s *Subprocess) Start(ctx context.Context) error {
	args := append([]string{}, s.args...)
	args = append(args, "--port", strconv.Itoa(s.port), "--host", "127.0.0.1")

	cmd := exec.Command(s.binPath, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	slog.Info("starting llama-server", "bin", s.binPath, "port", s.port)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start llama-server: %w", err)
	}

	doneCh := make(chan struct{})
	go func() {
		cmd.Wait()
		close(doneCh)
	}()

	s.mu.Lock()
	s.cmd = cmd
	s.doneCh = doneCh
	s.mu.Unlock()

	if err := s.waitForHealth(ctx); err != nil {
		s.Stop()
		return fmt.Errorf("llama-server failed to become healthy: %w", err)
	}

	slog.Info("llama-server ready", "port", s.port)
	return nil
}

// Stop terminates the subprocess, escalating to SIGKILL after a grace
// period. Safe to call when not running.
func (s *Subprocess) Stop() {
	s.mu.Lock()
	cmd := s.cmd
	doneCh := s.doneCh
	s.cmd = nil
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return
	}

	_ = cmd.Process.Signal(os.Interrupt)
	select {
	case <-doneCh:
	case <-time.After(5 * time.Second):
		_ = cmd.Process.Kill()
		<-doneCh
	}
}

func (s *Subprocess) waitForHealth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.healthTimeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	url := s.baseURL + "/health"
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.doneCh:
			return fmt.Errorf("llama-server exited during startup")
		case <-ticker.C:
		}
	}
}

// allocatePort finds a free TCP port by binding to :0 and releasing it.
func allocatePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("allocate port: %w", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port, nil
}

// findServerBinary locates llama-server on PATH or in common install dirs.
func findServerBinary() string {
	names := []string{"llama-server"}
	if runtime.GOOS == "windows" {
		names = []string{"llama-server.exe"}
	}

	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	homeDir, _ := os.UserHomeDir()
	locations := []string{
		"/opt/homebrew/bin",
		"/usr/local/bin",
		filepath.Join(homeDir, ".local", "bin"),
		filepath.Join(homeDir, "llama.cpp", "build", "bin"),
	}
	for _, loc := range locations {
		for _, name := range names {
			path := filepath.Join(loc, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}

	return ""
}
