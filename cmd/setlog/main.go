package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/setlog/setlog/internal/app"
	"github.com/setlog/setlog/internal/cli"
	"github.com/setlog/setlog/internal/config"
	"github.com/setlog/setlog/internal/logging"

	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %s\n", err)
		os.Exit(1)
	}

	sentryDSN := cfg.SentryDSN
	if fromEnv := os.Getenv("SENTRY_DSN"); fromEnv != "" {
		sentryDSN = fromEnv
	}
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.LogsPath,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
		Environment:   *env,
		SentryEnabled: cfg.SentryEnabled,
		SentryDSN:     sentryDSN,
	})

	log.Debugf("using api: %s", cfg.APIBaseURL)
	log.Debugf("using prefs path: %s", cfg.PrefsPath)

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup: %s\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Errorf("close: %s", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.New(a)
	// cobra reads os.Args after the shared flags
	rootCmd.SetArgs(flag.Args())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
