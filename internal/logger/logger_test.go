package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "debug", Format: FormatJSON, Out: &buf})
	log.Debug().Str("ledger_id", "x").Msg("saved")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "saved", entry["message"])
	assert.Equal(t, "x", entry["ledger_id"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Format: FormatConsole, Out: &buf})
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestNew_Level(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, New(Options{Level: "WARN"}).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New(Options{}).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New(Options{Level: "loud"}).GetLevel())
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Format: FormatJSON, Out: &buf})
	ctx := WithContext(context.Background(), log)

	got := FromContext(ctx)
	got.Info().Msg("from ctx")
	assert.Contains(t, buf.String(), "from ctx")
}

func TestFromContext_Default(t *testing.T) {
	log := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}

func TestStage(t *testing.T) {
	var buf bytes.Buffer
	log := Stage(New(Options{Format: FormatJSON, Out: &buf}), "normalize")
	log.Info().Msg("done")
	assert.Contains(t, buf.String(), `"stage":"normalize"`)
}
