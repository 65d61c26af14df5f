package config

import (
	"os"
	"path/filepath"
	"strconv"

	"phenosplit/internal/errors"
)

const (
	DefaultInputFile  = "consolidated_mIF data analysis_Nov2025_JY.xlsx"
	DefaultOutputFile = "CD4_FOXP3_filtered_output_streamsafe_v2.xlsx"
)

// Config represents the complete application configuration
type Config struct {
	Paths   PathConfig
	Excel   ExcelConfig
	Logging LoggingConfig
}

// PathConfig holds file system paths
type PathConfig struct {
	InputFile      string
	OutputFile     string
	SubtypeMapFile string // optional; the built-in map is used when empty
	ReportFile     string // optional JSON run report
}

// ExcelConfig holds workbook streaming settings
type ExcelConfig struct {
	UnzipXMLSizeLimit int64
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string
}

// FromEnv reads configuration without validating it, so callers can apply
// overrides first
func FromEnv() *Config {
	return &Config{
		Paths:   *loadPathConfig(),
		Excel:   *loadExcelConfig(),
		Logging: LoggingConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
	}
}

func loadPathConfig() *PathConfig {
	return &PathConfig{
		InputFile:      getEnvOrDefault("INPUT_FILE", DefaultInputFile),
		OutputFile:     getEnvOrDefault("OUTPUT_FILE", DefaultOutputFile),
		SubtypeMapFile: getEnvOrDefault("SUBTYPE_MAP_FILE", ""),
		ReportFile:     getEnvOrDefault("REPORT_FILE", ""),
	}
}

func loadExcelConfig() *ExcelConfig {
	return &ExcelConfig{
		UnzipXMLSizeLimit: getEnvInt64OrDefault("UNZIP_XML_SIZE_LIMIT", 16<<20),
	}
}

// Validate checks the settings after flags have been applied
func (c *Config) Validate() error {
	if c.Paths.InputFile == "" {
		return errors.ConfigInvalid("input file is required")
	}
	if c.Paths.OutputFile == "" {
		return errors.ConfigInvalid("output file is required")
	}
	if samePath(c.Paths.InputFile, c.Paths.OutputFile) {
		return errors.ConfigInvalid("output file must differ from input file")
	}
	if c.Excel.UnzipXMLSizeLimit < 0 {
		return errors.ConfigInvalid("UNZIP_XML_SIZE_LIMIT must not be negative")
	}
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
