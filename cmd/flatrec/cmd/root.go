/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"flatrec/pkg/config"
	"flatrec/pkg/di"
	"flatrec/pkg/record"
)

type contextKey string

const (
	storeKey    contextKey = "store"
	accessorKey contextKey = "accessor"
	loggerKey   contextKey = "logger"
	configKey   contextKey = "config"
)

var container *di.Container

// SetContainer injects the dependency container used by all commands.
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flatrec",
	Short: "flatrec - record access and flattening",
	Long: `flatrec resolves records by sys_id or business key and flattens them
into field -> value/display_value maps, over a pebble or sqlite store.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadOrDefaultConfig(cmd)
		if err != nil {
			return err
		}

		logger, err := buildLogger(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}

		store, err := container.OpenStore(cfg.Store, logger)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		accessor := container.NewAccessor(store, logger)

		ctx := cmd.Context()
		ctx = context.WithValue(ctx, storeKey, store)
		ctx = context.WithValue(ctx, accessorKey, accessor)
		ctx = context.WithValue(ctx, loggerKey, logger)
		ctx = context.WithValue(ctx, configKey, cfg)
		cmd.SetContext(ctx)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store, ok := cmd.Context().Value(storeKey).(di.ClosableStore); ok {
			return store.Close()
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file path (optional)")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "./data", "Data directory for the pebble backend")
	rootCmd.PersistentFlags().String("backend", config.BackendPebble, "Store backend (pebble or sqlite)")
	rootCmd.PersistentFlags().String("sqlite-path", "", "Database file for the sqlite backend")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}

// loadOrDefaultConfig reads the config file when one is given, otherwise
// assembles a config from flags.
func loadOrDefaultConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}

	cfg := config.DefaultConfig()
	cfg.Store.Backend, _ = cmd.Flags().GetString("backend")
	cfg.Store.DataDir, _ = cmd.Flags().GetString("data-dir")
	cfg.Store.SQLitePath, _ = cmd.Flags().GetString("sqlite-path")
	cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func accessorFromContext(cmd *cobra.Command) (*record.RecordAccessor, bool) {
	accessor, ok := cmd.Context().Value(accessorKey).(*record.RecordAccessor)
	return accessor, ok
}
