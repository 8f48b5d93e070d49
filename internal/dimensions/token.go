// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dimensions

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Default token lifetime policy: assume an hour when the auth response does
// not advertise expires_in, and refresh a minute early so a token is never
// presented right at its server-side expiry.
const (
	DefaultTokenTTL    = time.Hour
	DefaultTokenBuffer = time.Minute
	defaultAuthTimeout = 30 * time.Second
)

// TokenSource obtains and memoizes the JWT for the Dimensions API. The zero
// cache state means "absent"; the first Token call authenticates and later
// calls reuse the cached value until it expires.
//
// Token is safe for concurrent use: the fast path reads the cached pair under
// a mutex, and concurrent cache misses are collapsed into one authentication
// call by a singleflight group.
type TokenSource struct {
	// AuthURL is the authentication endpoint. Defaults to DefaultAuthURL.
	AuthURL string

	// APIKey is the credential POSTed to AuthURL. Token fails with
	// ErrAPIKeyMissing when it is empty, before any network call.
	APIKey string

	// Post performs the HTTP call. Required.
	Post PostFunc

	// TTL is the assumed token lifetime when the auth response carries no
	// expires_in. Defaults to DefaultTokenTTL.
	TTL time.Duration

	// Buffer is subtracted from the lifetime when computing expiry.
	// Defaults to DefaultTokenBuffer.
	Buffer time.Duration

	// Timeout bounds the authentication call. Defaults to 30s.
	Timeout time.Duration

	// Now is the clock, injectable for deterministic tests. Defaults to
	// time.Now.
	Now func() time.Time

	mu        sync.Mutex
	sf        singleflight.Group
	token     string
	expiresAt time.Time
}

// authRequest is the payload POSTed to the auth endpoint.
type authRequest struct {
	Key string `json:"key"`
}

// authResponse is the subset of the auth reply the token source reads.
type authResponse struct {
	Token     string  `json:"token"`
	ExpiresIn float64 `json:"expires_in"`
}

// Token returns a valid bearer token, authenticating only when the cached one
// is absent or expired. The expiry is re-checked against the clock on every
// call rather than trusting that a stored token is still live.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	if token, ok := ts.cached(); ok {
		return token, nil
	}

	v, err, _ := ts.sf.Do("token", func() (any, error) {
		// A concurrent caller may have refreshed while this one waited on
		// the flight; reuse its token instead of authenticating again.
		if token, ok := ts.cached(); ok {
			return token, nil
		}
		return ts.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// cached returns the stored token when it is present and strictly ahead of
// the clock.
func (ts *TokenSource) cached() (string, bool) {
	now := ts.now()
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.token != "" && now.Before(ts.expiresAt) {
		return ts.token, true
	}
	return "", false
}

// refresh performs the authentication call and stores the new token.
func (ts *TokenSource) refresh(ctx context.Context) (string, error) {
	if ts.APIKey == "" {
		return "", ErrAPIKeyMissing
	}

	authURL := ts.AuthURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	timeout := ts.Timeout
	if timeout <= 0 {
		timeout = defaultAuthTimeout
	}

	body, err := ts.Post(ctx, authURL, authRequest{Key: ts.APIKey}, nil, timeout)
	if err != nil {
		// Service and network failures both collapse to "could not
		// authenticate"; the cause stays wrapped for diagnostics.
		return "", &AuthError{Err: err}
	}

	var ar authResponse
	if err := json.Unmarshal([]byte(body), &ar); err != nil {
		return "", &FormatError{Reason: "authentication returned invalid JSON", Err: err}
	}
	if ar.Token == "" {
		return "", &FormatError{Reason: "token missing from authentication response"}
	}

	ttl := ts.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if ar.ExpiresIn > 0 {
		ttl = time.Duration(ar.ExpiresIn * float64(time.Second))
	}
	buffer := ts.Buffer
	if buffer <= 0 {
		buffer = DefaultTokenBuffer
	}
	lifetime := ttl - buffer
	if lifetime <= 0 {
		// A token shorter than the buffer is still usable; keep its full
		// lifetime rather than expiring it on arrival.
		lifetime = ttl
	}

	now := ts.now()
	ts.mu.Lock()
	ts.token = ar.Token
	ts.expiresAt = now.Add(lifetime)
	ts.mu.Unlock()

	return ar.Token, nil
}

func (ts *TokenSource) now() time.Time {
	if ts.Now != nil {
		return ts.Now()
	}
	return time.Now()
}
