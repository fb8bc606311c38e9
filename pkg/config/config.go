// Package config loads the engine's runtime configuration with
// github.com/spf13/viper, per SPEC_FULL.md §10.3. Grounded on the
// teacher's internal/config package, which layers a YAML file under
// environment-variable overrides via the same viper.Viper instance;
// generalized here from the teacher's service-mesh settings (ports,
// DSNs) to the book engine's own tunables.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tradecore-io/tradecore/pkg/coreerrors"
	"github.com/tradecore-io/tradecore/pkg/enums"
)

// EngineConfig holds every tunable the book engine, bar aggregator,
// and shard pool read at startup.
type EngineConfig struct {
	DefaultBookType      enums.BookType
	ShardCount           int
	SnapshotCacheTTL     time.Duration
	BreakerFailThreshold uint32
	BreakerOpenTimeout   time.Duration
	LogLevel             string
}

func defaults() *viper.Viper {
	v := viper.New()
	v.SetDefault("book.default_type", "L2_MBP")
	v.SetDefault("shard.count", 8)
	v.SetDefault("snapshot.cache_ttl", "250ms")
	v.SetDefault("breaker.fail_threshold", 3)
	v.SetDefault("breaker.open_timeout", "5s")
	v.SetDefault("log.level", "info")
	return v
}

// Load reads configuration from configPath (if non-empty) layered
// under TRADECORE_-prefixed environment variable overrides, falling
// back to the defaults above for anything unset.
func Load(configPath string) (EngineConfig, error) {
	v := defaults()
	v.SetEnvPrefix("TRADECORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return EngineConfig{}, coreerrors.Wrap(coreerrors.ErrValidation, "failed to read engine config", err)
		}
	}

	bookType, err := enums.BookTypeFromString(v.GetString("book.default_type"))
	if err != nil {
		return EngineConfig{}, err
	}
	ttl, err := time.ParseDuration(v.GetString("snapshot.cache_ttl"))
	if err != nil {
		return EngineConfig{}, coreerrors.Wrap(coreerrors.ErrValidation, "invalid snapshot.cache_ttl", err)
	}
	openTimeout, err := time.ParseDuration(v.GetString("breaker.open_timeout"))
	if err != nil {
		return EngineConfig{}, coreerrors.Wrap(coreerrors.ErrValidation, "invalid breaker.open_timeout", err)
	}
	shardCount := v.GetInt("shard.count")
	if shardCount <= 0 {
		return EngineConfig{}, coreerrors.Newf(coreerrors.ErrValidation, "shard.count must be > 0, got %d", shardCount)
	}

	return EngineConfig{
		DefaultBookType:      bookType,
		ShardCount:           shardCount,
		SnapshotCacheTTL:     ttl,
		BreakerFailThreshold: uint32(v.GetInt("breaker.fail_threshold")),
		BreakerOpenTimeout:   openTimeout,
		LogLevel:             v.GetString("log.level"),
	}, nil
}
