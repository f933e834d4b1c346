// main package for the speech-stitcher service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/speech-stitcher/internal/audio"
	"github.com/book-expert/speech-stitcher/internal/config"
	"github.com/book-expert/speech-stitcher/internal/objectstore"
	"github.com/book-expert/speech-stitcher/internal/server"
	"github.com/book-expert/speech-stitcher/internal/stitch"
	"github.com/book-expert/speech-stitcher/internal/tts"
	"github.com/book-expert/speech-stitcher/internal/worker"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
)

const (
	envAPIKey          = "TTS_API_KEY"
	healthCheckTimeout = 10 * time.Second
	defaultListenAddr  = ":8080"
)

// ErrAPIKeyNotSet indicates that the TTS API credential is missing from the
// environment.
var ErrAPIKeyNotSet = errors.New("TTS_API_KEY environment variable not set")

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "speech-stitcher.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func run() error {
	// A .env file is optional; the environment wins when both are present.
	_ = godotenv.Load()

	// 1. Create a temporary logger for the bootstrap process.
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	// 2. Load configuration using the central configurator.
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 3. Initialize the final logger based on the loaded configuration.
	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	return runService(cfg, finalLog)
}

func runService(cfg *config.Config, log *logger.Logger) error {
	apiKey := os.Getenv(envAPIKey)
	if apiKey == "" {
		return ErrAPIKeyNotSet
	}

	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer natsConnection.Close()

	pipeline, err := buildPipeline(cfg, apiKey, natsConnection, log)
	if err != nil {
		return err
	}

	natsWorker, err := worker.NewNatsWorker(
		natsConnection,
		cfg.NATS.StitchRequestSubject,
		pipeline,
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to create NATS worker: %w", err)
	}

	app := server.New(pipeline, log)

	return serve(cfg, log, natsWorker, app)
}

func buildPipeline(
	cfg *config.Config,
	apiKey string,
	natsConnection *nats.Conn,
	log *logger.Logger,
) (*stitch.Pipeline, error) {
	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	store, err := objectstore.New(jetstreamContext, cfg.NATS.AudioObjectStoreBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}

	client := tts.NewClient(
		cfg.TTS.APIBaseURL,
		apiKey,
		cfg.TTS.ModelID,
		time.Duration(cfg.TTS.TimeoutSeconds)*time.Second,
	)

	checkTTSHealth(client, log)

	tool, err := audio.NewFFmpeg(cfg.Audio.FFmpegPath, settingsFromConfig(cfg), log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio tool: %w", err)
	}

	pipeline, err := stitch.New(client, tool, store, stitch.Config{
		Bucket:          cfg.NATS.AudioObjectStoreBucket,
		DefaultVoiceID:  cfg.TTS.DefaultVoiceID,
		Workers:         cfg.TTS.Workers,
		ScratchDir:      cfg.Paths.ScratchDir,
		OutputExtension: tool.Settings().Extension(),
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	return pipeline, nil
}

// settingsFromConfig maps the audio config onto tool settings, falling back
// to defaults for any omitted field.
func settingsFromConfig(cfg *config.Config) audio.Settings {
	settings := audio.NewDefaultSettings()

	if cfg.Audio.SampleRate > 0 {
		settings.SampleRate = cfg.Audio.SampleRate
	}

	if cfg.Audio.Channels > 0 {
		settings.Channels = cfg.Audio.Channels
	}

	if cfg.Audio.Format != "" {
		settings.Format = cfg.Audio.Format
	}

	if cfg.Audio.Bitrate != "" {
		settings.Bitrate = cfg.Audio.Bitrate
	}

	return settings
}

// checkTTSHealth fails soft: an unreachable TTS API at startup is logged, and
// the first request will surface the real error to its caller.
func checkTTSHealth(client *tts.Client, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()

	err := client.HealthCheck(ctx)
	if err != nil {
		log.Warn("TTS service health check failed: %v", err)

		return
	}

	log.Info("TTS service is healthy.")
}

func serve(
	cfg *config.Config,
	log *logger.Logger,
	natsWorker *worker.NatsWorker,
	app *fiber.App,
) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listenAddress := cfg.HTTP.ListenAddress
	if listenAddress == "" {
		listenAddress = defaultListenAddr
	}

	errChan := make(chan error, 2)

	go func() {
		errChan <- natsWorker.Run(ctx)
	}()

	go func() {
		errChan <- app.Listen(listenAddress)
	}()

	log.System(
		"speech-stitcher listening on %s and subject %s",
		listenAddress,
		cfg.NATS.StitchRequestSubject,
	)

	select {
	case <-ctx.Done():
		shutdownErr := app.Shutdown()
		if shutdownErr != nil {
			log.Error("HTTP shutdown failed: %v", shutdownErr)
		}

		return nil
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("service exited: %w", err)
		}

		return nil
	}
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
