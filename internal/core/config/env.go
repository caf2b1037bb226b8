package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: REFDOC_[SECTION]_[KEY] (e.g., REFDOC_OUTPUT_DIR).
func ApplyEnvOverrides(cfg *Config) {
	// Project
	setEnvString(&cfg.Project.Name, "REFDOC_PROJECT_NAME")
	setEnvString(&cfg.Project.Namespace, "REFDOC_PROJECT_NAMESPACE")

	// Source
	setEnvList(&cfg.Source.Roots, "REFDOC_SOURCE_ROOTS")

	// Output
	setEnvString(&cfg.Output.Dir, "REFDOC_OUTPUT_DIR")

	// Build
	setEnvInt(&cfg.Build.Workers, "REFDOC_BUILD_WORKERS")
	setEnvInt(&cfg.Build.ParseCache, "REFDOC_BUILD_PARSE_CACHE")

	// Database
	setEnvBool(&cfg.DB.Enabled, "REFDOC_DB_ENABLED")
	setEnvString(&cfg.DB.Path, "REFDOC_DB_PATH")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "REFDOC_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.MaxRebuildsPerSecond, "REFDOC_WATCH_MAX_REBUILDS_PER_SECOND")

	// Observability
	setEnvBool(&cfg.Observability.Enabled, "REFDOC_OBSERVABILITY_ENABLED")
	setEnvString(&cfg.Observability.Address, "REFDOC_OBSERVABILITY_ADDRESS")
	setEnvString(&cfg.Observability.OTLPEndpoint, "REFDOC_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.EnableTracing, "REFDOC_OBSERVABILITY_ENABLE_TRACING")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		var items []string
		for _, item := range strings.Split(val, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if len(items) > 0 {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = items
		}
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
