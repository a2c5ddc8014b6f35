package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-client/internal/app"
	"github.com/vovakirdan/wirechat-client/internal/config"
	"github.com/vovakirdan/wirechat-client/internal/log"
)

var (
	cfgPath   string
	overrides config.Config
)

var rootCmd = &cobra.Command{
	Use:   "wirechat-client",
	Short: "Terminal client for wirechat rooms",
	Long: `wirechat-client joins a chat room, follows its live message stream,
and posts what you type. It can run against a wirechat server (remote mode)
or against a local SQLite database (local mode).`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path")
	rootCmd.Flags().StringVar(&overrides.Mode, "mode", "", "backend mode: local or remote")
	rootCmd.Flags().StringVar(&overrides.DatabasePath, "db", "", "SQLite database path (local mode)")
	rootCmd.Flags().StringVar(&overrides.ServerURL, "server", "", "wirechat server URL (remote mode)")
	rootCmd.Flags().StringVar(&overrides.Token, "token", "", "access token (remote mode)")
	rootCmd.Flags().StringVar(&overrides.Username, "user", "", "local account username")
	rootCmd.Flags().StringVar(&overrides.Password, "password", "", "local account password")
	rootCmd.Flags().StringVar(&overrides.Room, "room", "", "room id to open at startup")
	rootCmd.Flags().StringVar(&overrides.LogLevel, "log-level", "", "log level: debug, info, warn, error")
}

func run() error {
	// .env is optional; env vars feed the config loader.
	_ = godotenv.Load()

	logger := log.New(overrides.LogLevel)

	cfg, cfgFile, err := config.Load(logger, cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.UpdateFrom(overrides)

	logger = log.New(cfg.LogLevel)
	logger.Debug().Str("config", cfgFile).Str("mode", cfg.Mode).Msg("configuration resolved")

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
