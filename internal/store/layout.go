// Package store lays out the raw and processed data directories and writes
// canonical tables as columnar files.
package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Layout resolves paths under the raw and processed roots.
type Layout struct {
	RawDir       string
	ProcessedDir string
}

// Raw returns a path under the raw root.
func (l Layout) Raw(folder string, name ...string) string {
	return filepath.Join(append([]string{l.RawDir, folder}, name...)...)
}

// Processed returns a path under the processed root.
func (l Layout) Processed(folder string, name ...string) string {
	return filepath.Join(append([]string{l.ProcessedDir, folder}, name...)...)
}

// Ensure creates the folder under both roots.
func (l Layout) Ensure(folder string) error {
	for _, dir := range []string{l.Raw(folder), l.Processed(folder)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
