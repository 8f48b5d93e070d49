// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dimensions

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// QueryFile is the on-disk representation of a DSL query and, optionally, the
// response it produced. A researcher can keep queries in files and re-run
// them with the query subcommand without retyping the DSL.
type QueryFile struct {
	// Query is the DSL query text.
	Query string `yaml:"query"`

	// Saved is when the response was captured, zero when none is stored.
	Saved time.Time `yaml:"saved,omitempty"`

	// Response is the upstream JSON payload re-encoded as YAML.
	Response any `yaml:"response,omitempty"`
}

// ReadQueryFile loads a query file from disk. The query must be non-empty.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	if strings.TrimSpace(qf.Query) == "" {
		return nil, fmt.Errorf("query file %s has no query", path)
	}
	return &qf, nil
}

// WriteQueryFile saves a query and the upstream JSON response to a YAML file.
// responseJSON may be nil to save the query alone.
func WriteQueryFile(path, query string, responseJSON []byte) error {
	qf := QueryFile{Query: query}
	if len(responseJSON) > 0 {
		var response any
		if err := json.Unmarshal(responseJSON, &response); err != nil {
			return fmt.Errorf("parsing response for query file: %w", err)
		}
		qf.Response = response
		qf.Saved = time.Now().UTC()
	}
	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
