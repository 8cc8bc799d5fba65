package cli

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// formatFromPath infers an output format from a file extension.
func formatFromPath(path, fallback string) string {
	switch filepath.Ext(path) {
	case ".svg":
		return "svg"
	case ".dot", ".gv":
		return "dot"
	case ".json":
		return "json"
	}
	return fallback
}
