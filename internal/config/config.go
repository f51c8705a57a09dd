package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. CPUSCHED_ADDR.
const EnvPrefix = "CPUSCHED"

// ServerConfig holds configuration for the simulation server.
type ServerConfig struct {
	Addr      string // Listen address (default ":8080")
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: text, json
	DBPath    string // SQLite database path (default ~/.cpusched/cpusched.db, ":memory:" for testing)

	MaxProcesses   int // Processes accepted per request
	MaxTime        int // Upper bound on total burst plus latest arrival
	MaxSteps       int // Engine iteration cap
	CompareWorkers int // Concurrent simulations per comparison

	Retention     time.Duration // Age after which stored runs are pruned; 0 keeps them forever
	PruneInterval time.Duration
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:           ":8080",
		LogLevel:       "info",
		LogFormat:      "text",
		MaxProcesses:   500,
		MaxTime:        1_000_000,
		MaxSteps:       1_000_000,
		CompareWorkers: 4,
		Retention:      7 * 24 * time.Hour,
		PruneInterval:  time.Hour,
	}
}

// Load layers defaults, the optional config file at path and CPUSCHED_*
// environment variables, later sources winning.
func Load(path string) (ServerConfig, error) {
	def := DefaultServerConfig()

	v := viper.New()
	v.SetDefault("addr", def.Addr)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("max_processes", def.MaxProcesses)
	v.SetDefault("max_time", def.MaxTime)
	v.SetDefault("max_steps", def.MaxSteps)
	v.SetDefault("compare_workers", def.CompareWorkers)
	v.SetDefault("retention", def.Retention)
	v.SetDefault("prune_interval", def.PruneInterval)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return ServerConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := ServerConfig{
		Addr:           v.GetString("addr"),
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
		DBPath:         v.GetString("db_path"),
		MaxProcesses:   v.GetInt("max_processes"),
		MaxTime:        v.GetInt("max_time"),
		MaxSteps:       v.GetInt("max_steps"),
		CompareWorkers: v.GetInt("compare_workers"),
		Retention:      v.GetDuration("retention"),
		PruneInterval:  v.GetDuration("prune_interval"),
	}
	if cfg.PruneInterval <= 0 {
		return ServerConfig{}, fmt.Errorf("prune_interval must be positive, got %s", cfg.PruneInterval)
	}
	return cfg, nil
}
