// Package storage holds the collaborators that move scenario archives and ranking
// output between the local filesystem and remote object storage.
package storage

import (
	"context"
	"errors"
)

// AllScenarios asks FetchArchive for every archive of a symbol.
const AllScenarios = "all"

// ErrArchiveNotFound is returned when no archive exists for the requested scenario.
var ErrArchiveNotFound = errors.New("archive not found")

// ArchiveStore lists and downloads zipped scenario trees.
type ArchiveStore interface {
	// ListArchives returns the object keys of every archive stored for symbol.
	ListArchives(ctx context.Context, symbol string) ([]string, error)
	// FetchArchive downloads one scenario archive, or every archive when scenario is
	// AllScenarios, into destDir and returns the local paths written.
	FetchArchive(ctx context.Context, symbol, scenario, destDir string) ([]string, error)
}

// Uploader publishes a local directory tree under a remote prefix.
type Uploader interface {
	UploadTree(ctx context.Context, localDir, remotePrefix string) (int, error)
}

// ArtifactCopier copies one chart or trade-log file into the output tree.
type ArtifactCopier interface {
	CopyArtifact(src, dst string) error
}
