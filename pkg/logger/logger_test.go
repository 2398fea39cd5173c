package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/interbranch-api/pkg/logger"
)

func TestNewWithWriter_FiltraPorNivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "warn")

	log.Info().Msg("no debe salir")
	log.Warn().Str("transfer_id", "t-1").Msg("liquidación abortada")

	assert.NotContains(t, buf.String(), "no debe salir")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "t-1", line["transfer_id"])
}

func TestComponent_AgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info").Component("settlement")

	log.Info().Msg("traslado liquidado")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "settlement", line["component"])
}

func TestNewNop_NoEscribe(t *testing.T) {
	log := logger.NewNop()
	assert.NotPanics(t, func() { log.Error().Msg("descartado") })
}
