// File path: cmd/medscribe/services.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kestrelhealth/medscribe/internal/common/process"
)

// startChromaService launches the bundled ChromaDB helper and waits for its
// heartbeat before returning.
func startChromaService(ctx context.Context) (*process.Helper, error) {
	pythonBin, err := pythonBinary()
	if err != nil {
		return nil, err
	}
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	chromaDataDir := filepath.Join(workDir, "chroma_data")
	if err := os.MkdirAll(chromaDataDir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare chroma data directory: %w", err)
	}

	if err := ensureEnvDefault("MEDSCRIBE_CHROMA_HOST", "127.0.0.1"); err != nil {
		return nil, err
	}
	if err := ensureEnvDefault("MEDSCRIBE_CHROMA_PORT", "8000"); err != nil {
		return nil, err
	}
	if err := ensureEnvDefault("MEDSCRIBE_CHROMA_SCHEME", "http"); err != nil {
		return nil, err
	}
	if err := ensureEnvDefault("MEDSCRIBE_CHROMA_COLLECTION", "medical_documents"); err != nil {
		return nil, err
	}

	chromaHost := os.Getenv("MEDSCRIBE_CHROMA_HOST")
	chromaPort := os.Getenv("MEDSCRIBE_CHROMA_PORT")
	readyURL := fmt.Sprintf("%s://%s/api/v1/heartbeat",
		os.Getenv("MEDSCRIBE_CHROMA_SCHEME"), net.JoinHostPort(chromaHost, chromaPort))
	return process.Start(ctx, process.Config{
		Command: pythonBin,
		Args:    []string{filepath.Join("third_party", "python", "chromadb_server.py")},
		Env: []string{
			"PYTHONUNBUFFERED=1",
			fmt.Sprintf("CHROMADB_SERVER_HOST=%s", chromaHost),
			fmt.Sprintf("CHROMADB_SERVER_PORT=%s", chromaPort),
			fmt.Sprintf("CHROMADB_PERSIST_DIR=%s", chromaDataDir),
		},
		ReadyURL:     readyURL,
		ReadyTimeout: 2 * time.Minute,
		StopTimeout:  5 * time.Second,
	})
}

func stopChromaService(ctx context.Context, helper *process.Helper, logger *slog.Logger) {
	if helper == nil {
		return
	}
	if err := helper.Stop(ctx); err != nil && logger != nil {
		logger.Warn("launcher: chromadb shutdown returned error", "error", err)
	}
}

func pythonBinary() (string, error) {
	candidate := strings.TrimSpace(os.Getenv("PYTHON_BIN"))
	if candidate == "" {
		candidate = "python3"
	}
	path, err := process.BinaryPath(candidate)
	if err != nil {
		return "", fmt.Errorf("resolve python binary: %w", err)
	}
	return path, nil
}

func ensureEnvDefault(key, value string) error {
	if _, ok := os.LookupEnv(key); ok {
		return nil
	}
	if err := os.Setenv(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
