// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dimensions

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostReturnsBodyText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"ok":true}`)
	}))
	defer ts.Close()

	c := &Client{HTTPClient: ts.Client()}
	body, err := c.Post(context.Background(), ts.URL, nil, nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, body)
}

func TestPostSerializesStructuredPayloadAsJSON(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get("Content-Type")
	}))
	defer ts.Close()

	c := &Client{HTTPClient: ts.Client()}
	_, err := c.Post(context.Background(), ts.URL, map[string]string{"key": "secret"}, nil, time.Second)
	require.NoError(t, err)

	assert.JSONEq(t, `{"key":"secret"}`, string(gotBody))
	assert.Equal(t, "application/json", gotContentType)
}

func TestPostSendsStringPayloadRaw(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get("Content-Type")
	}))
	defer ts.Close()

	c := &Client{HTTPClient: ts.Client()}
	_, err := c.Post(context.Background(), ts.URL, `search publications return publications`, nil, time.Second)
	require.NoError(t, err)

	assert.Equal(t, "search publications return publications", string(gotBody))
	assert.Empty(t, gotContentType)
}

func TestPostMergesHeadersOverDefaults(t *testing.T) {
	var gotAuth, gotContentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
	}))
	defer ts.Close()

	headers := map[string]string{
		"Authorization": "JWT abc",
		"Content-Type":  "text/plain",
	}
	c := &Client{HTTPClient: ts.Client()}
	_, err := c.Post(context.Background(), ts.URL, map[string]int{"n": 1}, headers, time.Second)
	require.NoError(t, err)

	assert.Equal(t, "JWT abc", gotAuth)
	// An explicit Content-Type wins over the automatic JSON one.
	assert.Equal(t, "text/plain", gotContentType)
}

func TestPostNon2xxIsServiceError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":"bad key"}`)
	}))
	defer ts.Close()

	c := &Client{HTTPClient: ts.Client()}
	_, err := c.Post(context.Background(), ts.URL, nil, nil, time.Second)

	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.Equal(t, `{"error":"bad key"}`, se.Body)
}

func TestPostConnectionFailureIsNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close() // nothing listens any more

	c := &Client{}
	_, err := c.Post(context.Background(), url, nil, nil, time.Second)

	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.NotEmpty(t, ne.Reason)
	var se *ServiceError
	assert.False(t, errors.As(err, &se), "a connection failure must not look like a service error")
}

func TestPostTimesOutInsteadOfHanging(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		ts.Close()
	}()

	c := &Client{HTTPClient: ts.Client()}
	start := time.Now()
	_, err := c.Post(context.Background(), ts.URL, nil, nil, 50*time.Millisecond)

	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPostReplacesInvalidUTF8(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte{'o', 'k', 0xff})
	}))
	defer ts.Close()

	c := &Client{HTTPClient: ts.Client()}
	body, err := c.Post(context.Background(), ts.URL, nil, nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ok�", body)
}
