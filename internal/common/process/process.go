// File path: internal/common/process/process.go

// Package process runs the bundled ChromaDB helper as a supervised child
// process: launch, forward its output into the shared log, wait for the
// heartbeat, and stop it on shutdown.
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kestrelhealth/medscribe/internal/common"
)

// Config describes the helper command and its readiness probe.
type Config struct {
	Command       string
	Args          []string
	Env           []string
	WorkDir       string
	ReadyURL      string
	ReadyTimeout  time.Duration
	ReadyInterval time.Duration
	StopTimeout   time.Duration
}

// Helper is a running, supervised ChromaDB helper process.
type Helper struct {
	cfg Config
	cmd *exec.Cmd

	done    chan struct{}
	waitErr error
	mu      sync.RWMutex
}

// Start launches the helper and blocks until its heartbeat answers or the
// ready timeout elapses. On failure the process is stopped before returning.
func Start(ctx context.Context, cfg Config) (*Helper, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errors.New("process: command required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := common.Logger()
	logger.Info("launcher: starting chromadb helper",
		"command", cfg.Command, "args", strings.Join(cfg.Args, " "))

	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	if cfg.WorkDir != "" {
		cmd.Dir = cfg.WorkDir
	}
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("process: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdout.Close()
		return nil, fmt.Errorf("process: stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		stdout.Close()
		stderr.Close()
		return nil, fmt.Errorf("process: start chromadb helper: %w", err)
	}

	var readers sync.WaitGroup
	forward := func(pipe io.ReadCloser, stream string, level slog.Level) {
		readers.Add(1)
		go func() {
			defer readers.Done()
			scanner := bufio.NewScanner(pipe)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				logger.Log(context.Background(), level, scanner.Text(),
					"component", "launcher", "service", "chromadb", "stream", stream)
			}
		}()
	}
	forward(stdout, "stdout", slog.LevelInfo)
	forward(stderr, "stderr", slog.LevelWarn)

	h := &Helper{cfg: cfg, cmd: cmd, done: make(chan struct{})}
	go func() {
		err := cmd.Wait()
		readers.Wait()
		h.mu.Lock()
		h.waitErr = err
		h.mu.Unlock()
		close(h.done)
	}()

	if err := h.waitForReady(ctx); err != nil {
		h.Stop(context.Background())
		return nil, err
	}
	logger.Info("launcher: chromadb helper ready", "url", cfg.ReadyURL)
	return h, nil
}

func (h *Helper) waitForReady(ctx context.Context) error {
	if strings.TrimSpace(h.cfg.ReadyURL) == "" {
		return nil
	}
	timeout := h.cfg.ReadyTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	interval := h.cfg.ReadyInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	client := &http.Client{Timeout: 2 * time.Second}
	readyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		select {
		case <-readyCtx.Done():
			if lastErr != nil {
				return fmt.Errorf("process: chromadb helper not ready after %s: %w", timeout, lastErr)
			}
			return fmt.Errorf("process: chromadb helper not ready after %s: %w", timeout, readyCtx.Err())
		case <-h.done:
			if werr := h.waitError(); werr != nil {
				return fmt.Errorf("process: chromadb helper exited before reporting ready: %w", werr)
			}
			return errors.New("process: chromadb helper exited before reporting ready")
		case <-ticker.C:
			req, err := http.NewRequestWithContext(readyCtx, http.MethodGet, h.cfg.ReadyURL, nil)
			if err != nil {
				return fmt.Errorf("process: build heartbeat request: %w", err)
			}
			resp, err := client.Do(req)
			if err != nil {
				lastErr = err
				continue
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusInternalServerError {
				return nil
			}
			lastErr = fmt.Errorf("heartbeat status %d", resp.StatusCode)
		}
	}
}

// Stop interrupts the helper and kills it after the stop timeout. Exit
// status from a deliberate stop is not an error.
func (h *Helper) Stop(ctx context.Context) error {
	if h == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := common.Logger()
	logger.Info("launcher: stopping chromadb helper")
	if h.cmd != nil && h.cmd.Process != nil {
		if err := h.cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
			logger.Warn("launcher: interrupt failed", "error", err)
		}
	}
	stopTimeout := h.cfg.StopTimeout
	if stopTimeout <= 0 {
		stopTimeout = 5 * time.Second
	}
	timer := time.NewTimer(stopTimeout)
	defer timer.Stop()

	select {
	case <-h.done:
		return h.stopErr()
	case <-timer.C:
		logger.Warn("launcher: forcing chromadb helper kill")
		if h.cmd != nil && h.cmd.Process != nil {
			if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				logger.Error("launcher: kill failed", "error", err)
				return err
			}
		}
		<-h.done
		return h.stopErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Helper) waitError() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.waitErr
}

// stopErr filters out the exit status of a helper we told to die.
func (h *Helper) stopErr() error {
	err := h.waitError()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

// BinaryPath resolves an executable using the system PATH.
func BinaryPath(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("process: binary name required")
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("process: locate %s: %w", name, err)
	}
	return filepath.Clean(path), nil
}
