// Package pipeline runs one ranking pass: locate, aggregate, score, filter, rank, join, export.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/scenario-ranker/internal/aggregate"
	"github.com/yourusername/scenario-ranker/internal/export"
	"github.com/yourusername/scenario-ranker/internal/join"
	"github.com/yourusername/scenario-ranker/internal/logger"
	"github.com/yourusername/scenario-ranker/internal/metrics"
	"github.com/yourusername/scenario-ranker/internal/models"
	"github.com/yourusername/scenario-ranker/internal/ranking"
	"github.com/yourusername/scenario-ranker/internal/scenario"
	"github.com/yourusername/scenario-ranker/internal/storage"
	"github.com/yourusername/scenario-ranker/internal/table"
)

// MetricsFile is written into the output directory when textfile metrics are enabled.
const MetricsFile = "metrics.prom"

// Stage names used in logs and metrics.
const (
	StageFetch            = "fetch"
	StageLocate           = "locate"
	StageAggregateSummary = "aggregate_summaries"
	StageAggregateSetup   = "aggregate_setups"
	StageScore            = "score"
	StageFilter           = "filter"
	StageRank             = "rank"
	StageJoin             = "join"
	StageExport           = "export"
	StageUpload           = "upload"
)

// RunRecorder persists a finished run.
type RunRecorder interface {
	Record(ctx context.Context, run *models.RankingRun, strategies []models.RankedStrategy) error
}

// Options are the run settings that do not change between invocations.
type Options struct {
	Filter ranking.FilterConfig
	Chain  scenario.Chain
	// Marker is the directory fetched archives are extracted under, below Root/<symbol>.
	Marker          string
	SummaryGlob     string
	SetupGlob       string
	Delimiter       string
	ReadWorkers     int
	CopyArtifacts   bool
	UploadPrefix    string
	MetricsTextfile bool
}

// Dependencies are the optional collaborators. Nil members disable their feature.
type Dependencies struct {
	Logger   *logrus.Logger
	Archives storage.ArchiveStore
	Uploader storage.Uploader
	Copier   storage.ArtifactCopier
	Recorder RunRecorder
}

// Request describes one run.
type Request struct {
	Root   string
	OutDir string
	Symbol string
	// Fetch downloads archives and extracts them into Root/<Symbol>/<marker> before locating files.
	Fetch bool
	// Scenario selects the archive to fetch; empty means every archive of Symbol.
	Scenario string
	// Upload publishes OutDir to remote storage after export.
	Upload bool
}

// Result carries every intermediate table of a successful run.
type Result struct {
	Run       *models.RankingRun
	Summary   *aggregate.Result
	Setups    *aggregate.Result
	Agreement join.KeyAgreement
	Scored    *ranking.ScoreResult
	Filtered  *ranking.FilterResult
	Ranked    *table.Table
	Joined    *join.Joined
	Published *export.Published
	Uploaded  int
	Warnings  []models.Warning
}

// Pipeline wires the ranking stages together.
type Pipeline struct {
	opts Options
	deps Dependencies
	now  func() time.Time
}

// New creates a pipeline.
func New(opts Options, deps Dependencies) *Pipeline {
	return &Pipeline{opts: opts, deps: deps, now: time.Now}
}

// Run executes one ranking pass. Any fatal error returns before the exporter publishes,
// leaving OutDir untouched.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	run := &models.RankingRun{
		ID:        uuid.New(),
		Symbol:    req.Symbol,
		StartedAt: p.now().UTC(),
	}
	run.CreatedAt = run.StartedAt
	run.FilterSettings = filterSettings(p.opts.Filter)
	plog := logger.NewPipelineLogger(p.deps.Logger, run.ID.String())

	res, err := p.execute(ctx, req, run, plog)
	p.finish(ctx, req, run, res, err, plog)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) execute(ctx context.Context, req Request, run *models.RankingRun, plog *logger.PipelineLogger) (*Result, error) {
	if req.Root == "" || req.OutDir == "" {
		return nil, fmt.Errorf("%w: root and output directories are required", models.ErrConfiguration)
	}
	res := &Result{Run: run}

	if req.Fetch {
		if err := p.fetch(ctx, req, plog); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	locator, err := scenario.NewLocator(scenario.LocatorConfig{
		Root:        req.Root,
		Chain:       p.opts.Chain,
		SummaryGlob: p.opts.SummaryGlob,
		SetupGlob:   p.opts.SetupGlob,
		Delimiter:   p.opts.Delimiter,
		Exclude:     []string{req.OutDir},
	}, p.deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrConfiguration, err)
	}
	summaryFiles, err := locator.Summaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to locate summary files: %w", err)
	}
	setupFiles, err := locator.Setups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to locate setup files: %w", err)
	}
	if run.Symbol == "" && len(summaryFiles) > 0 {
		run.Symbol = summaryFiles[0].Key.Symbol
	}
	run.SummaryFiles = len(summaryFiles)
	run.SetupFiles = len(setupFiles)
	p.stage(plog, StageLocate, 0, len(summaryFiles)+len(setupFiles), start)

	agg := aggregate.NewAggregator(p.opts.ReadWorkers, p.deps.Logger)

	start = time.Now()
	res.Summary, err = agg.Summaries(ctx, summaryFiles)
	if err != nil {
		return nil, err
	}
	metrics.RecordFiles("summary", "used", res.Summary.Used)
	metrics.RecordFiles("summary", "skipped", res.Summary.Skipped)
	p.collect(res, "", res.Summary.Warnings, nil)
	p.stage(plog, StageAggregateSummary, len(summaryFiles), res.Summary.Table.Len(), start)

	start = time.Now()
	res.Setups, err = agg.Setups(ctx, setupFiles)
	if err != nil {
		return nil, err
	}
	metrics.RecordFiles("setup", "used", res.Setups.Used)
	metrics.RecordFiles("setup", "skipped", res.Setups.Skipped)
	p.collect(res, "", res.Setups.Warnings, nil)
	p.stage(plog, StageAggregateSetup, len(setupFiles), res.Setups.Table.Len(), start)

	res.Agreement = join.VerifyKeyAgreement(res.Summary.Keys, res.Setups.Keys)
	if !res.Agreement.Agree() {
		plog.WithFields(logrus.Fields{
			"only_summary": len(res.Agreement.OnlySummary),
			"only_setup":   len(res.Agreement.OnlySetup),
		}).Warn("Summary and setup passes disagree on scenario keys")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	res.Scored, err = ranking.Score(res.Summary.Table)
	if err != nil {
		return nil, err
	}
	run.ScoredRows = res.Scored.Table.Len()
	p.collect(res, StageScore, res.Scored.Warnings, plog)
	p.stage(plog, StageScore, res.Summary.Table.Len(), run.ScoredRows, start)

	start = time.Now()
	res.Filtered, err = ranking.Filter(res.Scored.Table, p.opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrConfiguration, err)
	}
	for _, step := range res.Filtered.Steps {
		plog.WithFields(logrus.Fields{
			"step":      step.Name,
			"before":    step.Before,
			"after":     step.After,
			"threshold": step.Threshold,
			"skipped":   step.Skipped,
		}).Debug("Filter step applied")
	}
	p.collect(res, StageFilter, res.Filtered.Warnings, plog)
	p.stage(plog, StageFilter, run.ScoredRows, res.Filtered.Table.Len(), start)

	start = time.Now()
	ranked, rankWarnings := ranking.Rank(res.Filtered.Table)
	res.Ranked = ranked
	run.RankedRows = ranked.Len()
	p.collect(res, StageRank, rankWarnings, plog)
	p.stage(plog, StageRank, res.Filtered.Table.Len(), run.RankedRows, start)

	start = time.Now()
	setups, dropped := join.ExcludeFiltered(res.Setups.Table, res.Scored.Table, ranked)
	if dropped > 0 {
		plog.WithField("rows", dropped).Debug("Dropped setups of filtered strategies")
	}
	res.Joined, err = join.Join(ranked, setups)
	if err != nil {
		return nil, err
	}
	run.JoinedSetups = res.Joined.Table.Len()
	p.stage(plog, StageJoin, res.Setups.Table.Len(), run.JoinedSetups, start)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	var copier storage.ArtifactCopier
	if p.opts.CopyArtifacts {
		copier = p.deps.Copier
	}
	exporter := export.NewExporter(req.OutDir, copier, p.deps.Logger)
	full, _ := ranking.Rank(res.Scored.Table)
	res.Published, err = exporter.Publish(ctx, export.Bundle{
		Ranked:       ranked,
		Full:         full,
		Setups:       res.Joined.Table,
		ScenarioDirs: scenarioDirs(summaryFiles),
	})
	if err != nil {
		return nil, err
	}
	for _, f := range res.Published.Files {
		plog.LogPublished(f.Name, f.Path, f.Rows)
	}
	p.stage(plog, StageExport, run.RankedRows, len(res.Published.Files), start)

	scores, _ := ranked.Floats(models.ColumnCompositeScore)
	for _, s := range scores {
		if finite(s) {
			metrics.RecordCompositeScore(s)
		}
	}

	if req.Upload {
		if p.deps.Uploader == nil {
			return nil, fmt.Errorf("%w: upload requested but remote storage is not configured", models.ErrConfiguration)
		}
		start = time.Now()
		prefix := path.Join(p.opts.UploadPrefix, run.Symbol, run.ID.String())
		res.Uploaded, err = p.deps.Uploader.UploadTree(ctx, req.OutDir, prefix)
		if err != nil {
			return nil, err
		}
		p.stage(plog, StageUpload, 0, res.Uploaded, start)
	}

	return res, nil
}

func (p *Pipeline) fetch(ctx context.Context, req Request, plog *logger.PipelineLogger) error {
	if p.deps.Archives == nil {
		return fmt.Errorf("%w: fetch requested but remote storage is not configured", models.ErrConfiguration)
	}
	if req.Symbol == "" {
		return fmt.Errorf("%w: fetch requires a symbol", models.ErrConfiguration)
	}
	start := time.Now()
	marker := p.opts.Marker
	if marker == "" {
		marker = scenario.DefaultMarker
	}
	dest := filepath.Join(req.Root, req.Symbol, marker)
	scenarioName := req.Scenario
	if scenarioName == "" {
		scenarioName = storage.AllScenarios
	}

	dl, err := os.MkdirTemp("", "scenario-archives-")
	if err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}
	defer os.RemoveAll(dl)

	archives, err := p.deps.Archives.FetchArchive(ctx, req.Symbol, scenarioName, dl)
	if err != nil {
		return err
	}
	extracted := 0
	for _, a := range archives {
		n, err := storage.Extract(a, dest)
		if err != nil {
			return err
		}
		extracted += n
	}
	p.stage(plog, StageFetch, len(archives), extracted, start)
	return nil
}

func (p *Pipeline) finish(ctx context.Context, req Request, run *models.RankingRun, res *Result, runErr error, plog *logger.PipelineLogger) {
	run.FinishedAt = p.now().UTC()
	run.Status = models.RunStatusSuccess
	if runErr != nil {
		run.Status = models.RunStatusFailure
		run.Error = runErr.Error()
	}
	if res != nil {
		run.WarningCount = len(res.Warnings)
	}

	metrics.RecordRun(run.Status, run.FinishedAt.Sub(run.StartedAt).Seconds(), float64(run.FinishedAt.Unix()))
	plog.LogRunFinished(run)

	if runErr == nil && p.opts.MetricsTextfile {
		if err := metrics.WriteTextfile(filepath.Join(req.OutDir, MetricsFile)); err != nil {
			plog.WithError(err).Warn("Failed to write metrics textfile")
		}
	}

	if p.deps.Recorder == nil {
		return
	}
	var strategies []models.RankedStrategy
	if runErr == nil && res != nil {
		strategies = rankedStrategies(run, res)
	}
	// Recording uses its own context so a cancelled run is still persisted as failed.
	recordCtx := ctx
	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
		var cancel context.CancelFunc
		recordCtx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
	}
	if err := p.deps.Recorder.Record(recordCtx, run, strategies); err != nil {
		plog.WithError(err).Error("Failed to persist ranking run")
	}
}

func (p *Pipeline) stage(plog *logger.PipelineLogger, name string, rowsIn, rowsOut int, start time.Time) {
	elapsed := time.Since(start)
	metrics.RecordStage(name, rowsOut, elapsed.Seconds())
	plog.LogStage(name, rowsIn, rowsOut, elapsed)
}

// collect records warnings. Aggregator warnings are already logged where they arise,
// so a nil plog only counts them.
func (p *Pipeline) collect(res *Result, stage string, warnings []models.Warning, plog *logger.PipelineLogger) {
	for _, w := range warnings {
		metrics.RecordWarning(string(w.Kind))
	}
	res.Warnings = append(res.Warnings, warnings...)
	if plog != nil {
		plog.LogWarnings(stage, warnings)
	}
}

func scenarioDirs(files []scenario.Located) map[string][]string {
	out := map[string][]string{}
	seen := map[string]bool{}
	for _, f := range files {
		dir := filepath.Dir(f.Path)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		out[f.Key.Scenario] = append(out[f.Key.Scenario], dir)
	}
	return out
}

// rankedStrategies flattens the ranked and joined tables into persisted rows.
func rankedStrategies(run *models.RankingRun, res *Result) []models.RankedStrategy {
	ranked := res.Ranked
	traderCol, _ := ranked.Find(models.ColumnTraderID)
	keyCols := map[string]bool{
		models.ColumnRank:           true,
		models.ColumnScenario:       true,
		traderCol:                   true,
		models.ColumnCompositeScore: true,
	}

	setupsByRank := map[int]map[string]string{}
	for i, rank := range res.Joined.Ranks {
		rec := res.Joined.Table.Record(i)
		delete(rec, models.ColumnRank)
		setupsByRank[rank] = rec
	}

	out := make([]models.RankedStrategy, 0, ranked.Len())
	for i := 0; i < ranked.Len(); i++ {
		rank := i + 1
		m := map[string]any{}
		for _, col := range ranked.Columns() {
			if keyCols[col] {
				continue
			}
			if v, ok := table.ParseFloat(ranked.Cell(i, col)); ok && finite(v) {
				m[col] = v
			} else {
				m[col] = ranked.Cell(i, col)
			}
		}
		metricsJSON, _ := json.Marshal(m)

		var setupJSON json.RawMessage
		if rec, ok := setupsByRank[rank]; ok {
			setupJSON, _ = json.Marshal(rec)
		}

		score := ranked.Float(i, models.ColumnCompositeScore)
		if !finite(score) {
			score = 0
		}
		out = append(out, models.RankedStrategy{
			RunID:          run.ID,
			Rank:           rank,
			Symbol:         run.Symbol,
			Scenario:       ranked.Cell(i, models.ColumnScenario),
			TraderID:       ranked.Cell(i, traderCol),
			CompositeScore: score,
			Metrics:        metricsJSON,
			Setup:          setupJSON,
		})
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// filterSettings encodes the thresholds, writing infinities as strings since JSON has no
// representation for them.
func filterSettings(cfg ranking.FilterConfig) json.RawMessage {
	m := map[string]any{}
	for name, v := range map[string]float64{
		"quantile_threshold": cfg.QuantileThreshold,
		"min_profit_factor":  cfg.MinProfitFactor,
		"max_drawdown_ratio": cfg.MaxDrawdownRatio,
	} {
		if finite(v) {
			m[name] = v
		} else {
			m[name] = table.FormatFloat(v)
		}
	}
	out, _ := json.Marshal(m)
	return out
}
