package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ocrapi/internal/logger"
)

const (
	EngineTesseract  = "tesseract"
	EngineVision     = "vision"
	EngineDocumentAI = "documentai"
)

type Config struct {
	// HTTP Server Configuration
	Host            string
	Port            int
	ShutdownTimeout time.Duration

	// Upload Configuration
	UploadFolder      string
	AllowedExtensions string

	// OCR Engine Configuration
	OCREngine       string
	OCRWorkers      int
	OCRGPU          bool
	OCRReadingOrder bool

	// Document AI Configuration (OCR_ENGINE=documentai)
	DocumentAIProject   string
	DocumentAILocation  string
	DocumentAIProcessor string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	port, err := getEnvInt("PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	workers, err := getEnvInt("OCR_WORKERS", 1)
	if err != nil {
		return nil, fmt.Errorf("invalid OCR_WORKERS: %w", err)
	}

	shutdownSecs, err := getEnvInt("SHUTDOWN_TIMEOUT", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	gpu, err := getEnvBool("OCR_GPU", false)
	if err != nil {
		return nil, fmt.Errorf("invalid OCR_GPU: %w", err)
	}

	readingOrder, err := getEnvBool("OCR_READING_ORDER", false)
	if err != nil {
		return nil, fmt.Errorf("invalid OCR_READING_ORDER: %w", err)
	}

	config := &Config{
		Host:                getEnv("HOST", "0.0.0.0"),
		Port:                port,
		ShutdownTimeout:     time.Duration(shutdownSecs) * time.Second,
		UploadFolder:        getEnv("UPLOAD_FOLDER", "uploads"),
		AllowedExtensions:   getEnv("ALLOWED_EXTENSIONS", "jpg,jpeg,png"),
		OCREngine:           strings.ToLower(getEnv("OCR_ENGINE", EngineTesseract)),
		OCRWorkers:          workers,
		OCRGPU:              gpu,
		OCRReadingOrder:     readingOrder,
		DocumentAIProject:   getEnvAny("", "GOOGLE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT"),
		DocumentAILocation:  getEnvAny("us", "GOOGLE_LOCATION", "GOOGLE_CLOUD_LOCATION"),
		DocumentAIProcessor: getEnvAny("", "GOOGLE_PROCESSOR_ID", "DOCUMENT_AI_PROCESSOR_ID"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:       getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:           getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.UploadFolder == "" {
		return fmt.Errorf("UPLOAD_FOLDER must not be empty")
	}
	if strings.Trim(c.AllowedExtensions, ", ") == "" {
		return fmt.Errorf("ALLOWED_EXTENSIONS must list at least one extension")
	}
	if c.OCRWorkers < 1 {
		return fmt.Errorf("OCR_WORKERS must be at least 1, got %d", c.OCRWorkers)
	}
	switch c.OCREngine {
	case EngineTesseract, EngineVision:
	case EngineDocumentAI:
		if c.DocumentAIProject == "" || c.DocumentAIProcessor == "" {
			return fmt.Errorf("OCR_ENGINE=%s requires GOOGLE_PROJECT_ID and GOOGLE_PROCESSOR_ID", EngineDocumentAI)
		}
	default:
		return fmt.Errorf("OCR_ENGINE must be one of %q, %q, %q, got %q",
			EngineTesseract, EngineVision, EngineDocumentAI, c.OCREngine)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAny returns the first non-empty variable among keys
func getEnvAny(defaultValue string, keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.ParseBool(value)
}
