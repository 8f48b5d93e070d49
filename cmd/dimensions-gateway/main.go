// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the dimensions-gateway CLI: a small
// backend for the opportunity dashboard that proxies DSL queries to the
// Dimensions API behind a cached authentication token.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dimensions-gateway/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, else the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the dimensions-gateway CLI.
var rootCmd = &cobra.Command{
	Use:   "dimensions-gateway",
	Short: "Backend gateway for the opportunity dashboard",
	Long: `dimensions-gateway serves the opportunity dashboard's backend: it proxies
DSL queries to the Dimensions analytics API with a cached bearer token, returns
placeholder opportunity predictions, and keeps a local history of what was asked.

Run "serve" to start the HTTP server, or "query" to run a single DSL query from
the command line without a server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./dimensions-gateway.yaml or ~/.config/dimensions-gateway/config.yaml)")
}

func initConfig() {
	// A .env in the working directory is applied before viper reads the
	// environment, so both paths see the same values.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("dimensions-gateway")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "dimensions-gateway"))
		}
	}

	viper.SetEnvPrefix("DIMENSIONS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
