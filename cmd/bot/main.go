package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ykvlv/autoreply-bot/internal/app"
	"github.com/ykvlv/autoreply-bot/internal/config"
	"github.com/ykvlv/autoreply-bot/internal/logger"
)

// errStartup marks failures before a logger exists; they exit with code 2.
var errStartup = errors.New("startup")

var rootCmd = &cobra.Command{
	Use:           "autoreply-bot",
	Short:         "Telegram auto-reply bot for a single owner",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBot,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot (default)",
	RunE:  runBot,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(runCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// We intentionally ignore write errors to avoid shadowing the real cause.
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		if errors.Is(err, errStartup) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// setup loads config and builds the logger.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, errors.Join(errStartup, errors.New("config error: "+err.Error()))
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return cfg, nil, errors.Join(errStartup, errors.New("logger init error: "+err.Error()))
	}
	return cfg, log, nil
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	// Ensure logger flush; ignore sync error (common on some platforms).
	defer func() { _ = log.Sync() }()

	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("app init failed", zap.Error(err))
		return err
	}
	if err := application.Run(ctxOf(cmd)); err != nil {
		log.Error("app run failed", zap.Error(err))
		return err
	}
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	return app.Migrate(ctxOf(cmd), cfg, log)
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
