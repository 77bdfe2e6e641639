package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ocrapi/internal/config"
	"ocrapi/internal/logger"
)

var version = "1.0.0"

// appConfig is set by Execute; commands fall back to loading it themselves.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "ocrapi",
	Short: "ocrapi - image to text over HTTP",
	Long: `ocrapi extracts text from uploaded images.

Each image is converted to grayscale, smoothed, binarized with an adaptive
threshold and passed to an OCR engine (Tesseract by default, Google Cloud
Vision or a Google Document AI OCR processor optionally). The recognized lines are joined and cleaned to printable
ASCII.

Run "ocrapi serve" to start the HTTP API or "ocrapi extract" to process a
local file.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("ocrapi executed")

		fmt.Println("Welcome to ocrapi!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

// Execute runs the root command with the configuration loaded by main.
func Execute(cfg *config.Config) {
	log := logger.WithComponent("cmd")
	appConfig = cfg

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig returns the configuration passed to Execute, loading it from the
// environment when main could not.
func loadConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	appConfig = cfg
	return cfg, nil
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
