package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yourusername/scenario-ranker/internal/metrics"
)

// LocalCopier copies artifacts on the local filesystem.
type LocalCopier struct{}

// CopyArtifact copies src to dst, creating dst's directory.
func (LocalCopier) CopyArtifact(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create artifact %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy artifact %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	metrics.RecordArtifactCopied()
	return nil
}
