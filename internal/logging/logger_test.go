package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Parallel()

	for _, development := range []bool{true, false} {
		logger, err := New(development)
		require.NoError(t, err)
		require.NotNil(t, logger)
		logger.Info("logger ready", zap.Bool("development", development))
		_ = Sync(logger)
	}
}

func TestForRunAddsRunID(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	logger := ForRun(zap.New(core), "0190-run")
	logger.Named("crawler").Info("crawl finished")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "crawler", entries[0].LoggerName)
	assert.Equal(t, "0190-run", entries[0].ContextMap()["run_id"])
}

func TestSyncNop(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Sync(zap.NewNop()))
}
