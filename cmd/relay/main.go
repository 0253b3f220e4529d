package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/teilomillet/relay/config"
	"github.com/teilomillet/relay/errors"
	"github.com/teilomillet/relay/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const Version = "v0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "relay: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run parses args, loads configuration and serves until ctx is done.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("relay", flag.ContinueOnError)
	fs.SetOutput(stdout)
	configFile := fs.String("config", "", "Path to optional YAML configuration file")
	envFile := fs.String("env-file", config.DefaultEnvFile, "Path to dotenv file holding "+config.EnvAPIKey)
	version := fs.Bool("version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *version {
		fmt.Fprintf(stdout, "relay %s\n", Version)
		return nil
	}

	if err := config.LoadEnvFile(*envFile); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv(os.Getenv)

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	errors.SetLogger(logger)

	logger.Info("Is API key set", zap.String("value", yesNo(cfg.Gemini.APIKey != "")))

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			logger.Error("API key is missing! Check your " + config.DefaultEnvFile + " file.")
		} else {
			logger.Error("Invalid configuration", zap.Error(err))
		}
		return err
	}
	logger.Info("API key loaded")

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("server initialization failed: %w", err)
	}

	logger.Info("Starting relay",
		zap.String("version", Version),
		zap.String("model", cfg.Gemini.Model),
		zap.String("address", srv.Addr()),
	)
	if err := srv.Start(ctx); err != nil {
		logger.Error("Server startup or runtime error", zap.Error(err))
		return err
	}
	return nil
}

// newLogger builds a zap logger for the configured level and format.
func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Format == "text" {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
