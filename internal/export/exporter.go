// Package export publishes the ranked tables and consolidated artifacts of a run.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/scenario-ranker/internal/logger"
	"github.com/yourusername/scenario-ranker/internal/models"
	"github.com/yourusername/scenario-ranker/internal/storage"
	"github.com/yourusername/scenario-ranker/internal/table"
)

// Bundle is everything a run publishes.
type Bundle struct {
	Ranked *table.Table
	// Full is the scored population before filtering, in rank order. Optional.
	Full   *table.Table
	Setups *table.Table
	// ScenarioDirs maps a scenario token to the directories its files were read from.
	ScenarioDirs map[string][]string
}

// PublishedFile describes one written table.
type PublishedFile struct {
	Name string
	Path string
	Rows int
}

// Published is the result of a successful Publish.
type Published struct {
	Dir       string
	Files     []PublishedFile
	Artifacts int
}

// Exporter writes output into a staging directory and moves it into place once every
// file has been written.
type Exporter struct {
	outDir string
	copier storage.ArtifactCopier
	logger *logrus.Entry
}

// NewExporter creates an exporter. A nil copier disables artifact consolidation.
func NewExporter(outDir string, copier storage.ArtifactCopier, log *logrus.Logger) *Exporter {
	return &Exporter{
		outDir: outDir,
		copier: copier,
		logger: logger.OrDiscard(log).WithField("component", "export"),
	}
}

type tableWriter struct {
	name  string
	rows  int
	write func(f *os.File) error
}

// Publish writes all three tables and, when enabled, the artifacts. Nothing under the
// output directory changes unless every write succeeded.
func (e *Exporter) Publish(ctx context.Context, b Bundle) (*Published, error) {
	if err := os.MkdirAll(e.outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", e.outDir, err)
	}
	staging, err := os.MkdirTemp(e.outDir, ".staging-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	writers := []tableWriter{
		{RankedSummaryFile, b.Ranked.Len(), func(f *os.File) error { return WriteRankedSummary(f, b.Ranked) }},
		{RankedSetupsFile, b.Setups.Len(), func(f *os.File) error { return WriteRankedSetups(f, b.Setups) }},
		{SimplifiedSetupsFile, b.Setups.Len(), func(f *os.File) error { return WriteSimplifiedSetups(f, b.Setups) }},
	}
	if b.Full != nil {
		writers = append(writers, tableWriter{FullSummaryFile, b.Full.Len(), func(f *os.File) error { return WriteRankedSummary(f, b.Full) }})
	}
	for _, w := range writers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := writeStaged(filepath.Join(staging, w.name), w.write); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", w.name, err)
		}
	}

	artifacts := 0
	if e.copier != nil {
		artifacts, err = e.consolidate(ctx, b, filepath.Join(staging, ArtifactsDir))
		if err != nil {
			return nil, err
		}
	}

	pub := &Published{Dir: e.outDir, Artifacts: artifacts}
	for _, w := range writers {
		dst := filepath.Join(e.outDir, w.name)
		if err := os.Rename(filepath.Join(staging, w.name), dst); err != nil {
			return nil, fmt.Errorf("failed to publish %s: %w", w.name, err)
		}
		pub.Files = append(pub.Files, PublishedFile{Name: w.name, Path: dst, Rows: w.rows})
	}
	if e.copier != nil {
		// Artifacts of an earlier run must never outlive it, even when this run copies none.
		dst := filepath.Join(e.outDir, ArtifactsDir)
		if err := os.RemoveAll(dst); err != nil {
			return nil, fmt.Errorf("failed to replace %s: %w", dst, err)
		}
		staged := filepath.Join(staging, ArtifactsDir)
		if _, err := os.Stat(staged); err == nil {
			if err := os.Rename(staged, dst); err != nil {
				return nil, fmt.Errorf("failed to publish artifacts: %w", err)
			}
		}
	}

	e.logger.WithFields(logrus.Fields{"dir": e.outDir, "files": len(pub.Files), "artifacts": artifacts}).Info("Published ranking output")
	return pub, nil
}

func writeStaged(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// consolidate copies <scenarioDir>/<traderId>* files of every ranked row into
// dest/<rank>_<scenario>_<traderId>/.
func (e *Exporter) consolidate(ctx context.Context, b Bundle, dest string) (int, error) {
	rankCol, okR := b.Ranked.Find(models.ColumnRank)
	scenarioCol, okS := b.Ranked.Find(models.ColumnScenario)
	traderCol, okT := b.Ranked.Find(models.ColumnTraderID)
	if !okR || !okS || !okT {
		return 0, nil
	}

	copied := 0
	listings := map[string][]os.DirEntry{}
	for i := 0; i < b.Ranked.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		scenario := b.Ranked.Cell(i, scenarioCol)
		trader := b.Ranked.Cell(i, traderCol)
		if trader == "" {
			continue
		}
		target := filepath.Join(dest, fmt.Sprintf("%s_%s_%s", b.Ranked.Cell(i, rankCol), scenario, trader))

		for _, dir := range b.ScenarioDirs[scenario] {
			entries, ok := listings[dir]
			if !ok {
				var err error
				entries, err = os.ReadDir(dir)
				if err != nil {
					e.logger.WithError(err).WithField("dir", dir).Warn("Cannot list scenario directory for artifacts")
				}
				listings[dir] = entries
			}
			for _, entry := range entries {
				if entry.IsDir() || !belongsTo(entry.Name(), trader) {
					continue
				}
				if err := e.copier.CopyArtifact(filepath.Join(dir, entry.Name()), filepath.Join(target, entry.Name())); err != nil {
					return copied, fmt.Errorf("failed to consolidate artifacts: %w", err)
				}
				copied++
			}
		}
	}
	return copied, nil
}

// belongsTo matches artifact file names of the form <traderId>, <traderId>_..., <traderId>-... or <traderId>.ext.
// After a dot only a bare extension may follow, so trader 1 does not claim 1.5_chart.png.
func belongsTo(name, trader string) bool {
	if !strings.HasPrefix(name, trader) {
		return false
	}
	rest := name[len(trader):]
	switch {
	case rest == "":
		return true
	case rest[0] == '_' || rest[0] == '-':
		return true
	case rest[0] == '.':
		ext := rest[1:]
		return ext != "" && !strings.ContainsAny(ext, "._-")
	}
	return false
}
