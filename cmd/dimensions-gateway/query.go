// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dimensions-gateway/internal/dimensions"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a single DSL query against the Dimensions API",
	Long: `Query authenticates against the Dimensions API and runs one DSL query
without starting the HTTP server. The query comes from --query or from a
saved YAML query file; the upstream JSON response is printed to stdout and
can be captured back into the query file with --save.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().String("query", "", "DSL query text")
	queryCmd.Flags().String("file", "", "YAML query file to read the query from")
	queryCmd.Flags().String("save", "", "write the query and response to this YAML file")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	file, _ := cmd.Flags().GetString("file")
	save, _ := cmd.Flags().GetString("save")

	if query == "" && file != "" {
		qf, err := dimensions.ReadQueryFile(file)
		if err != nil {
			return err
		}
		query = qf.Query
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("no query given: use --query or --file")
	}

	cfg := loadConfig()
	if cfg.Dimensions.APIKey == "" {
		return dimensions.ErrAPIKeyMissing
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

	ctx := cmd.Context()
	token, err := tokens.Token(ctx)
	if err != nil {
		return err
	}

	headers := map[string]string{
		"Authorization": "JWT " + token,
		"Content-Type":  "application/json",
	}
	body, err := client.Post(ctx, cfg.Dimensions.DSLURL, query, headers, cfg.Dimensions.QueryTimeout)
	if err != nil {
		return err
	}
	if !json.Valid([]byte(body)) {
		return &dimensions.FormatError{Reason: "query returned invalid JSON"}
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, []byte(body), "", "  "); err == nil {
		fmt.Fprintln(os.Stdout, pretty.String())
	} else {
		fmt.Fprintln(os.Stdout, body)
	}

	if save != "" {
		if err := dimensions.WriteQueryFile(save, query, []byte(body)); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Saved query and response to", save)
	}
	return nil
}
