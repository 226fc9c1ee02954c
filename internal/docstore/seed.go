// File path: internal/docstore/seed.go
package docstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kestrelhealth/medscribe/internal/common"
)

// SeedFromDir loads example SOAP notes into an empty catalog. Files named
// soap_*.txt become documents titled "Medical Note - Case NN". A non-empty
// catalog is left untouched.
func (s *Store) SeedFromDir(ctx context.Context, dir string) (int, error) {
	logger := common.Logger()
	count, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Info("docstore: catalog already populated", "documents", count)
		return 0, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read seed dir: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "soap_") && strings.HasSuffix(name, ".txt") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	seeded := 0
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("docstore: skipping unreadable seed note", "file", name, "error", err)
			continue
		}
		stem := strings.TrimSuffix(name, ".txt")
		title := "Medical Note - " + strings.Replace(stem, "soap_", "Case ", 1)
		if _, err := s.Create(ctx, title, string(data)); err != nil {
			return seeded, fmt.Errorf("seed %s: %w", name, err)
		}
		logger.Info("docstore: seeded note", "title", title)
		seeded++
	}
	return seeded, nil
}
