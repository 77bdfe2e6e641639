package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"ocrapi/cmd"
	"ocrapi/internal/config"
	"ocrapi/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration; commands that need it report the error themselves
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load configuration: %v", err)
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		cfg = nil
	} else if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.WithComponent("main")
	log.Info().Msg("Starting ocrapi")

	cmd.Execute(cfg)

	log.Info().Msg("ocrapi shutdown")
	os.Exit(0)
}
