/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flatrec/pkg/api"
	"flatrec/pkg/config"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the flatrec REST API server.

The server exposes read-only record lookups: flattened records, short
descriptions, referencing records, and per-user interactions.

Examples:
  flatrec serve --api-key=mysecretkey --port=8080
  flatrec serve --config=./flatrec.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, ok := cmd.Context().Value(configKey).(*config.Config)
		if !ok {
			cmd.Println("Error: config not found in context")
			return
		}
		logger, _ := cmd.Context().Value(loggerKey).(*zap.Logger)
		accessor, ok := accessorFromContext(cmd)
		if !ok {
			cmd.Println("Error: accessor not found in context")
			return
		}

		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Port = port
		}
		if bind, _ := cmd.Flags().GetString("bind"); bind != "" {
			cfg.Bind = bind
		}
		if apiKey, _ := cmd.Flags().GetString("api-key"); apiKey != "" {
			cfg.APIKey = apiKey
		}
		if cfg.APIKey == "" || cfg.APIKey == "auto" {
			key, err := config.GenerateSecureKey(32)
			if err != nil {
				cmd.Printf("Error generating API key: %v\n", err)
				return
			}
			cfg.APIKey = key
			cmd.Printf("Generated API key: %s\n", key)
		}

		serverConfig := api.ServerConfig{
			Port:   cfg.Port,
			Bind:   cfg.Bind,
			APIKey: cfg.APIKey,
		}

		if err := api.StartServer(accessor, serverConfig, logger); err != nil {
			cmd.Printf("Error starting server: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().String("bind", "", "Bind address (overrides config)")
	serveCmd.Flags().String("api-key", "", "API key for authentication (overrides config)")
}
