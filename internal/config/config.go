package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"waferplot/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig
	Plot      PlotConfig
	Output    OutputConfig
	Server    ServerConfig
	Profiling ProfilingConfig
}

// InputConfig describes where measurements come from and how sheets are laid out
type InputConfig struct {
	File         string
	Sheet        string
	IndexRow     int
	SheetFilters []string
	DecimalComma bool
}

// PlotConfig holds chart content and presentation settings
type PlotConfig struct {
	TargetCodes     []string
	TrackedCapacity int
	MaxIndex        float64 // 0 disables the value cutoff
	RegionPadding   float64
	Title           string
	XAxisLabel      string
	YAxisLabel      string
	Width           int
	Height          int
	UnifyScale      bool
}

// OutputConfig holds output settings
type OutputConfig struct {
	Dir           string
	RenderWorkers int
	Report        bool
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port          string
	MaxUploadMB   int
	ShutdownGrace time.Duration
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Input:     *loadInputConfig(),
		Plot:      *loadPlotConfig(),
		Output:    *loadOutputConfig(),
		Server:    *loadServerConfig(),
		Profiling: *loadProfilingConfig(),
	}

	if err := Validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadInputConfig() *InputConfig {
	return &InputConfig{
		File:         getEnvOrDefault("INPUT_FILE", ""),
		Sheet:        getEnvOrDefault("SHEET_NAME", ""),
		IndexRow:     getEnvIntOrDefault("INDEX_ROW", 2),
		SheetFilters: getEnvListOrDefault("SHEET_FILTERS", []string{"NZWB2", "_SITE"}),
		DecimalComma: getEnvBoolOrDefault("DECIMAL_COMMA", false),
	}
}

func loadPlotConfig() *PlotConfig {
	return &PlotConfig{
		TargetCodes:     getEnvListOrDefault("TARGET_CODES", []string{"LVT", "RVT", "SLVT"}),
		TrackedCapacity: getEnvIntOrDefault("TRACKED_CAPACITY", 8),
		MaxIndex:        getEnvFloatOrDefault("MAX_INDEX", 8),
		RegionPadding:   getEnvFloatOrDefault("REGION_PADDING", 0.1),
		Title:           getEnvOrDefault("CHART_TITLE", "RO_SDB_Vt_Targeting"),
		XAxisLabel:      getEnvOrDefault("X_AXIS_LABEL", "RO_nMOS_SDB_Vtsat (N)"),
		YAxisLabel:      getEnvOrDefault("Y_AXIS_LABEL", "RO_pMOS_SDB_Vtsat (P)"),
		Width:           getEnvIntOrDefault("CHART_WIDTH", 1000),
		Height:          getEnvIntOrDefault("CHART_HEIGHT", 500),
		UnifyScale:      getEnvBoolOrDefault("UNIFY_SCALE", true),
	}
}

func loadOutputConfig() *OutputConfig {
	return &OutputConfig{
		Dir:           getEnvOrDefault("OUTPUT_DIR", "./output"),
		RenderWorkers: getEnvIntOrDefault("RENDER_WORKERS", 4),
		Report:        getEnvBoolOrDefault("WRITE_REPORT", true),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:          getEnvOrDefault("PORT", "8080"),
		MaxUploadMB:   getEnvIntOrDefault("MAX_UPLOAD_MB", 32),
		ShutdownGrace: getEnvDurationOrDefault("SHUTDOWN_GRACE", 10*time.Second),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

// Validate checks value ranges after flags and environment have been merged
func Validate(config *Config) error {
	if config.Input.IndexRow < 0 {
		return errors.ConfigInvalid("INDEX_ROW must not be negative")
	}
	if config.Plot.TrackedCapacity < 1 {
		return errors.ConfigInvalid("TRACKED_CAPACITY must be positive")
	}
	if config.Plot.MaxIndex < 0 {
		return errors.ConfigInvalid("MAX_INDEX must not be negative")
	}
	if config.Plot.RegionPadding < 0 {
		return errors.ConfigInvalid("REGION_PADDING must not be negative")
	}
	if config.Plot.Width <= 0 || config.Plot.Height <= 0 {
		return errors.ConfigInvalid("chart dimensions must be positive")
	}
	if config.Output.RenderWorkers < 1 {
		return errors.ConfigInvalid("RENDER_WORKERS must be positive")
	}
	if config.Output.Dir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	if config.Server.MaxUploadMB < 1 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma-separated variable, dropping blank entries
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return SplitList(value)
}

// SplitList splits a comma-separated list, trimming and dropping blank entries
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
