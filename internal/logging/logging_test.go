package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func TestInitJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", JSONOutput: true, Output: &buf})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	log := WithComponent("recipes")
	log.Info().Uint64("recipe_id", 3).Msg("created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "recipes", entry["component"])
	assert.Equal(t, "created", entry["message"])
	assert.EqualValues(t, 3, entry["recipe_id"])
}

func TestInitUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "chatty", JSONOutput: true, Output: &buf})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	Logger.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
}

func TestGormLoggerReportsFailures(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", JSONOutput: true, Output: &buf})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	l := NewGormLogger("error")
	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 0
	}, errors.New("boom"))

	assert.Contains(t, buf.String(), "query failed")
	assert.Contains(t, buf.String(), "SELECT 1")

	buf.Reset()
	l.LogMode(gormlogger.Silent).Error(context.Background(), "ignored")
	assert.Zero(t, buf.Len())
}

func TestParseGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, ParseGormLevel("silent"))
	assert.Equal(t, gormlogger.Info, ParseGormLevel("info"))
	assert.Equal(t, gormlogger.Warn, ParseGormLevel(""))
}
