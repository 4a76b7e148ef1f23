package scenario

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/scenario-ranker/internal/logger"
	"github.com/yourusername/scenario-ranker/internal/models"
)

// Default file globs, matched case-insensitively against the filename.
const (
	DefaultSummaryGlob = "*summary*.csv"
	DefaultSetupGlob   = "*setup*.csv"
	DefaultDelimiter   = "-"
)

// Located is one scenario file and its derived key.
type Located struct {
	Key  models.ScenarioKey
	Path string
	Rel  string
	Via  string
}

// LocatorConfig configures a Locator.
type LocatorConfig struct {
	Root        string
	Chain       Chain
	SummaryGlob string
	SetupGlob   string
	Delimiter   string
	// Symbol overrides the symbol derived from the first path segment.
	Symbol string
	// Exclude lists directories under Root that are never searched, such as the output directory.
	Exclude []string
}

// Locator enumerates summary and setup files under a root directory.
type Locator struct {
	cfg      LocatorConfig
	excluded map[string]bool
	logger   *logrus.Entry
}

// NewLocator creates a locator. A nil chain falls back to the default marker-then-prefix chain.
func NewLocator(cfg LocatorConfig, log *logrus.Logger) (*Locator, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("locator root is required")
	}
	if cfg.Chain == nil {
		chain, err := NewChain(ChainMarkerThenPrefix, ChainOptions{})
		if err != nil {
			return nil, err
		}
		cfg.Chain = chain
	}
	if cfg.SummaryGlob == "" {
		cfg.SummaryGlob = DefaultSummaryGlob
	}
	if cfg.SetupGlob == "" {
		cfg.SetupGlob = DefaultSetupGlob
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = DefaultDelimiter
	}
	for _, g := range []string{cfg.SummaryGlob, cfg.SetupGlob} {
		if _, err := filepath.Match(strings.ToLower(g), "probe"); err != nil {
			return nil, fmt.Errorf("invalid file glob %q: %w", g, err)
		}
	}
	excluded := make(map[string]bool, len(cfg.Exclude))
	for _, dir := range cfg.Exclude {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid excluded directory %q: %w", dir, err)
		}
		excluded[abs] = true
	}
	return &Locator{
		cfg:      cfg,
		excluded: excluded,
		logger:   logger.OrDiscard(log).WithField("component", "locator"),
	}, nil
}

// Summaries returns every summary file in lexical walk order.
func (l *Locator) Summaries(ctx context.Context) ([]Located, error) {
	return l.locate(ctx, l.cfg.SummaryGlob)
}

// Setups returns every setup file in lexical walk order.
func (l *Locator) Setups(ctx context.Context) ([]Located, error) {
	return l.locate(ctx, l.cfg.SetupGlob)
}

// Key derives the scenario key for a path relative to the root. Both summary and
// setup files go through this one function.
func (l *Locator) Key(rel string) (models.ScenarioKey, string) {
	info := NewPathInfo(rel)
	key := models.ScenarioKey{Symbol: l.symbol(info), Scenario: models.UnknownScenario}
	if token, via, ok := l.cfg.Chain.Extract(info); ok {
		key.Scenario = token
		return key, via
	}
	return key, ""
}

func (l *Locator) symbol(info PathInfo) string {
	if l.cfg.Symbol != "" {
		return l.cfg.Symbol
	}
	if len(info.Dirs) == 0 {
		return ""
	}
	head, _, _ := strings.Cut(info.Dirs[0], l.cfg.Delimiter)
	return head
}

func (l *Locator) locate(ctx context.Context, glob string) ([]Located, error) {
	pattern := strings.ToLower(glob)
	var found []Located
	err := filepath.WalkDir(l.cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if len(l.excluded) > 0 && p != l.cfg.Root {
				if abs, err := filepath.Abs(p); err == nil && l.excluded[abs] {
					return fs.SkipDir
				}
			}
			return nil
		}
		if ok, _ := filepath.Match(pattern, strings.ToLower(d.Name())); !ok {
			return nil
		}
		rel, err := filepath.Rel(l.cfg.Root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		key, via := l.Key(rel)
		if !key.Resolved() {
			l.logger.WithField("file", rel).Warn("Could not resolve scenario from path, using unknown_scenario")
		}
		found = append(found, Located{Key: key, Path: p, Rel: rel, Via: via})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", l.cfg.Root, err)
	}
	l.logger.WithFields(logrus.Fields{
		"glob":  glob,
		"files": len(found),
	}).Debug("Located scenario files")
	return found, nil
}
