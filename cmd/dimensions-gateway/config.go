// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/dimensions-gateway/internal/dimensions"
	"github.com/pdiddy/dimensions-gateway/internal/secrets"
	"github.com/pdiddy/dimensions-gateway/pkg/types"
)

// Configuration defaults. The API key has no default: it must come from the
// environment (DIMENSIONS_API_KEY), the config file, or .secrets/.
func init() {
	viper.SetDefault("host", "127.0.0.1")
	viper.SetDefault("port", 8080)
	viper.SetDefault("debug", false)
	viper.SetDefault("dashboard_dir", ".")
	viper.SetDefault("read_timeout", 15*time.Second)
	viper.SetDefault("write_timeout", 60*time.Second)

	viper.SetDefault("auth_url", dimensions.DefaultAuthURL)
	viper.SetDefault("dsl_url", dimensions.DefaultDSLURL)
	viper.SetDefault("query_timeout", 30*time.Second)
	viper.SetDefault("auth_timeout", 30*time.Second)
	viper.SetDefault("token_ttl", dimensions.DefaultTokenTTL)
	viper.SetDefault("token_buffer", dimensions.DefaultTokenBuffer)

	viper.SetDefault("history_path", "")
	viper.SetDefault("history_limit", 50)
}

// loadConfig assembles the gateway configuration from viper, with the
// secrets directory as the fallback source for the API key.
func loadConfig() types.Config {
	return types.Config{
		Server: types.ServerConfig{
			Host:         viper.GetString("host"),
			Port:         viper.GetInt("port"),
			Debug:        viper.GetBool("debug"),
			DashboardDir: viper.GetString("dashboard_dir"),
			ReadTimeout:  viper.GetDuration("read_timeout"),
			WriteTimeout: viper.GetDuration("write_timeout"),
		},
		Dimensions: types.DimensionsConfig{
			AuthURL:      viper.GetString("auth_url"),
			DSLURL:       viper.GetString("dsl_url"),
			APIKey:       secretDefault(secrets.DimensionsAPIKey, viper.GetString("api_key")),
			QueryTimeout: viper.GetDuration("query_timeout"),
			AuthTimeout:  viper.GetDuration("auth_timeout"),
			TokenTTL:     viper.GetDuration("token_ttl"),
			TokenBuffer:  viper.GetDuration("token_buffer"),
		},
		History: types.HistoryConfig{
			Path:         viper.GetString("history_path"),
			DefaultLimit: viper.GetInt("history_limit"),
		},
	}
}
