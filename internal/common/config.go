package common

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Catalog CatalogConfig
	Extract ExtractConfig
	PDF     PDFConfig
}

// CatalogConfig holds run-catalog configuration
type CatalogConfig struct {
	Path string // empty disables the catalog
}

// ExtractConfig holds extraction behavior flags
type ExtractConfig struct {
	Parallel        bool
	ContinueOnError bool
}

// PDFConfig holds text-source configuration
type PDFConfig struct {
	FallbackPdftotext bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Path: getEnv("TENDERTAG_CATALOG", ""),
		},
		Extract: ExtractConfig{
			Parallel:        getEnvAsBool("TENDERTAG_PARALLEL", false),
			ContinueOnError: getEnvAsBool("TENDERTAG_CONTINUE_ON_ERROR", false),
		},
		PDF: PDFConfig{
			FallbackPdftotext: getEnvAsBool("TENDERTAG_PDFTOTEXT_FALLBACK", true),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
