package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/physics2d/internal/config"
	"github.com/zeusync/physics2d/internal/core/observability/log"
)

func quietConfig() config.Config {
	cfg := config.Default()
	cfg.Log.Level = log.LevelFatal
	return cfg
}

func TestRunBatch(t *testing.T) {
	var out bytes.Buffer
	paths := []string{"../../scenes/pile.yaml", "../../scenes/billiards.json", "../../scenes/pile.yaml"}
	require.NoError(t, runBatch(context.Background(), quietConfig(), paths, 240, 2, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[0], "SCENE"))
	require.True(t, strings.HasPrefix(lines[1], "pile"))
	require.True(t, strings.HasPrefix(lines[2], "billiards"))
	// Same scene, same ticks: identical line, digest included.
	require.Equal(t, lines[1], lines[3])
}

func TestSimulateErrors(t *testing.T) {
	_, err := simulate(context.Background(), quietConfig(), "missing.yaml", 10, log.NewNop())
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = simulate(ctx, quietConfig(), "../../scenes/pile.yaml", 10, log.NewNop())
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(options{logLevel: "debug", addr: ":9999", debug: true})
	require.NoError(t, err)
	require.Equal(t, log.LevelDebug, cfg.Log.Level)
	require.Equal(t, ":9999", cfg.Server.ListenAddr)
	require.True(t, cfg.Physics.Debug)

	_, err = loadConfig(options{logLevel: "chatty"})
	require.Error(t, err)
}
