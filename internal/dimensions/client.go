// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dimensions is a client for the Dimensions analytics API: a POST
// helper with typed transport errors, and a token source that caches the JWT
// issued by the auth endpoint and refreshes it on expiry.
package dimensions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Production endpoints. Serving code overrides these from configuration;
// tests substitute an httptest server.
const (
	DefaultAuthURL = "https://app.dimensions.ai/api/auth"
	DefaultDSLURL  = "https://app.dimensions.ai/api/dsl/v2"
)

// PostFunc is the signature of the low-level POST helper. The token source
// and the proxy handler both take one so tests can inject fakes.
type PostFunc func(ctx context.Context, url string, payload any, headers map[string]string, timeout time.Duration) (string, error)

// Client issues POST requests to the Dimensions service.
type Client struct {
	// HTTPClient is the underlying transport. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Post makes an HTTP POST request and returns the response body as text.
//
// payload may be nil (no body), a string or []byte (sent raw), or any other
// value, which is serialized as JSON with a Content-Type: application/json
// header attached. headers are merged over the defaults. timeout bounds the
// whole exchange; past it the request fails rather than hangs.
//
// A non-2xx reply yields a *ServiceError carrying status and body; a failure
// to complete the exchange at all yields a *NetworkError. No retries are
// performed here; retry policy, if any, belongs to the caller.
func (c *Client) Post(ctx context.Context, url string, payload any, headers map[string]string, timeout time.Duration) (string, error) {
	body, contentType, err := encodePayload(payload)
	if err != nil {
		return "", fmt.Errorf("encoding request payload: %w", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Reason: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Reason: "reading response body: " + err.Error(), Err: err}
	}

	// Invalid bytes are replaced rather than rejected; the body is relayed
	// for diagnostics even when it is not clean UTF-8.
	text := strings.ToValidUTF8(string(raw), "�")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ServiceError{StatusCode: resp.StatusCode, Body: text}
	}
	return text, nil
}

// encodePayload turns the payload into a request body reader, reporting the
// Content-Type to attach for structured values.
func encodePayload(payload any) (io.Reader, string, error) {
	switch p := payload.(type) {
	case nil:
		return nil, "", nil
	case string:
		return strings.NewReader(p), "", nil
	case []byte:
		return bytes.NewReader(p), "", nil
	default:
		data, err := json.Marshal(p)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}
