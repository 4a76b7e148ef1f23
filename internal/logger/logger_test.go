package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/scenario-ranker/internal/models"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestPipelineLoggerStage(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log, "run-1")

	pipelineLogger.LogStage("filter", 100, 12, 5*time.Millisecond)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "pipeline", logEntry["component"])
	assert.Equal(t, "run-1", logEntry["run_id"])
	assert.Equal(t, "filter", logEntry["stage"])
	assert.Equal(t, float64(12), logEntry["rows_out"])
}

func TestPipelineLoggerWarning(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log, "run-1")

	pipelineLogger.LogWarnings("score", []models.Warning{{
		Kind:   models.WarnDegenerateStatistic,
		Column: "sortino_ratio",
		Detail: "standard deviation is zero",
	}})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "degenerate_statistic", logEntry["kind"])
	assert.Equal(t, "sortino_ratio", logEntry["column"])
	assert.Equal(t, "score", logEntry["stage"])
}

func TestPipelineLoggerRunFailed(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log, "run-2")

	start := time.Now()
	pipelineLogger.LogRunFinished(&models.RankingRun{
		Symbol:     "btc",
		Status:     models.RunStatusFailure,
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
		Error:      "join failed",
	})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
	assert.Equal(t, "join failed", logEntry["error"])
	assert.Equal(t, float64(1000), logEntry["duration_ms"])
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	log := NewLogger("verbose")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestOrDiscard(t *testing.T) {
	log, _ := setupTestLogger()
	assert.Same(t, log, OrDiscard(log))
	assert.NotNil(t, OrDiscard(nil))
}
