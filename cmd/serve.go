package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ocrapi/internal/logger"
	"ocrapi/internal/server"
	"ocrapi/internal/upload"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the OCR HTTP API",
	Long: `Start the HTTP API.

Endpoints:
  GET  /              liveness message
  GET  /healthz       process health
  GET  /readyz        engine readiness
  POST /extract-text  multipart upload with a "file" field

Configuration is read from the environment (or a .env file):
  HOST, PORT, UPLOAD_FOLDER, ALLOWED_EXTENSIONS, OCR_ENGINE,
  OCR_WORKERS, OCR_GPU, OCR_READING_ORDER, SHUTDOWN_TIMEOUT, LOG_*`,
	Example: `  # Serve on the configured address (default 0.0.0.0:8000)
  ocrapi serve

  # Override port and upload folder
  ocrapi serve --port 9000 --upload-folder /tmp/ocr-uploads`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Listen port (default: PORT or 8000)")
	serveCmd.Flags().String("upload-folder", "", "Directory for transient uploads (default: UPLOAD_FOLDER or uploads)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		if port > 65535 {
			return fmt.Errorf("port must be between 1 and 65535, got %d", port)
		}
		cfg.Port = port
	}
	if folder, _ := cmd.Flags().GetString("upload-folder"); folder != "" {
		cfg.UploadFolder = folder
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := upload.NewStore(cfg.UploadFolder)
	if err != nil {
		log.Error().Err(err).Str("upload_folder", cfg.UploadFolder).Msg("Failed to prepare upload folder")
		return err
	}
	allowed := upload.ParseAllowSet(cfg.AllowedExtensions)

	p, recognizer, err := newPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := recognizer.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close OCR engine")
		}
	}()

	log.Info().
		Str("addr", cfg.Addr()).
		Str("upload_folder", store.Dir()).
		Strs("allowed_extensions", allowed.List()).
		Msg("Configuration loaded")

	router := server.NewRouter(server.Deps{
		Pipeline: p,
		Store:    store,
		Allowed:  allowed,
	})

	return server.New(cfg.Addr(), router, cfg.ShutdownTimeout).Run(ctx)
}
