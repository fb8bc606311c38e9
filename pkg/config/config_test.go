package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tradecore-io/tradecore/pkg/config"
	"github.com/tradecore-io/tradecore/pkg/enums"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, enums.BookTypeL2MBP, cfg.DefaultBookType)
	require.Equal(t, 8, cfg.ShardCount)
	require.Equal(t, uint32(3), cfg.BreakerFailThreshold)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TRADECORE_SHARD_COUNT", "16")
	t.Setenv("TRADECORE_BOOK_DEFAULT_TYPE", "L3_MBO")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, 16, cfg.ShardCount)
	require.Equal(t, enums.BookTypeL3MBO, cfg.DefaultBookType)
}
