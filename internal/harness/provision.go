package harness

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Provision rebuilds the fixture directory from scratch: it deletes any
// existing contents, runs the extraction executable from the fixture
// source directory, then sweeps every artifact that is not a binary
// fixture. The reset is intentionally destructive so the directory
// always mirrors the current extraction output, never a stale union.
func Provision(ctx context.Context, cfg Config) error {
	if err := os.RemoveAll(cfg.FixtureDir); err != nil {
		return fmt.Errorf("resetting fixture directory: %w", err)
	}
	if err := os.MkdirAll(cfg.FixtureDir, 0o755); err != nil {
		return fmt.Errorf("creating fixture directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, cfg.ExtractCmd)
	cmd.Dir = cfg.SourceDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("extraction step %s: %w", cfg.ExtractCmd, err)
	}

	return sweepNonBinary(cfg.FixtureDir)
}

// sweepNonBinary removes the textual sibling artifacts the extraction
// step deposits alongside each binary fixture.
func sweepNonBinary(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("listing fixture directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".wasm") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("removing non-binary artifact %s: %w", e.Name(), err)
		}
	}
	return nil
}

// ListFixtures returns the binary fixture filenames in dir, sorted
// lexicographically. Directory-listing order is not trusted.
func ListFixtures(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing fixture directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".wasm") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
