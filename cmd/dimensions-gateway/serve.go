// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dimensions-gateway/internal/dimensions"
	"github.com/pdiddy/dimensions-gateway/internal/history"
	"github.com/pdiddy/dimensions-gateway/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard gateway HTTP server",
	Long: `Serve starts the HTTP server backing the opportunity dashboard. It exposes
the Dimensions DSL proxy, the opportunity prediction stub, query history,
Prometheus metrics, and the dashboard page itself.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "127.0.0.1", "listen address")
	serveCmd.Flags().Int("port", 8080, "listen port")
	serveCmd.Flags().Bool("debug", false, "enable debug logging")
	serveCmd.Flags().String("history-path", "", "SQLite file for query history (empty disables)")

	viper.BindPFlag("host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("debug", serveCmd.Flags().Lookup("debug"))
	viper.BindPFlag("history_path", serveCmd.Flags().Lookup("history-path"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	level := slog.LevelInfo
	if cfg.Server.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if cfg.Dimensions.APIKey == "" {
		logger.Warn("no Dimensions API key configured; /api/dimensions will return authentication errors")
	}

	client := &dimensions.Client{HTTPClient: &http.Client{}}
	tokens := &dimensions.TokenSource{
		AuthURL: cfg.Dimensions.AuthURL,
		APIKey:  cfg.Dimensions.APIKey,
		Post:    client.Post,
		TTL:     cfg.Dimensions.TokenTTL,
		Buffer:  cfg.Dimensions.TokenBuffer,
		Timeout: cfg.Dimensions.AuthTimeout,
	}

	api := &httpapi.API{
		Post:         client.Post,
		Tokens:       tokens,
		DSLURL:       cfg.Dimensions.DSLURL,
		QueryTimeout: cfg.Dimensions.QueryTimeout,
		HistoryLimit: cfg.History.DefaultLimit,
		DashboardDir: cfg.Server.DashboardDir,
		Logger:       logger,
	}

	if cfg.History.Path != "" {
		store, err := history.NewStore(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		api.History = store
		logger.Info("query history enabled", "path", cfg.History.Path)
	}

	server := httpapi.NewServer(cfg.Server, api.Routes(httpapi.NewMetrics()), logger)
	return server.Run(cmd.Context())
}
