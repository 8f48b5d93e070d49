// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dimensions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPost counts calls and returns token-1, token-2, ... in order.
type stubPost struct {
	calls    int32
	lastURL  string
	lastBody any
	response func(call int32) (string, error)
}

func (s *stubPost) post(_ context.Context, url string, payload any, _ map[string]string, _ time.Duration) (string, error) {
	n := atomic.AddInt32(&s.calls, 1)
	s.lastURL = url
	s.lastBody = payload
	if s.response != nil {
		return s.response(n)
	}
	return fmt.Sprintf(`{"token":"token-%d"}`, n), nil
}

// clockAt returns a clock frozen at epoch + offset seconds.
func clockAt(sec float64) func() time.Time {
	base := time.Unix(0, 0)
	return func() time.Time { return base.Add(time.Duration(sec * float64(time.Second))) }
}

func TestTokenCachesUntilExpiry(t *testing.T) {
	stub := &stubPost{}
	ts := &TokenSource{APIKey: "secret", Post: stub.post}

	ts.Now = clockAt(0)
	first, err := ts.Token(context.Background())
	require.NoError(t, err)

	ts.Now = clockAt(5)
	second, err := ts.Token(context.Background())
	require.NoError(t, err)

	ts.Now = clockAt(4000)
	third, err := ts.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "token-1", first)
	assert.Equal(t, "token-1", second, "second call within TTL must reuse the cache")
	assert.Equal(t, "token-2", third, "call after expiry must re-authenticate")
	assert.Equal(t, int32(2), atomic.LoadInt32(&stub.calls))
}

func TestTokenPostsKeyToAuthURL(t *testing.T) {
	stub := &stubPost{}
	ts := &TokenSource{APIKey: "secret", AuthURL: "https://auth.example/api/auth", Post: stub.post, Now: clockAt(0)}

	_, err := ts.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "https://auth.example/api/auth", stub.lastURL)
	assert.Equal(t, authRequest{Key: "secret"}, stub.lastBody)
}

func TestTokenMissingAPIKeyIsConfigurationError(t *testing.T) {
	stub := &stubPost{}
	ts := &TokenSource{Post: stub.post, Now: clockAt(0)}

	_, err := ts.Token(context.Background())

	require.ErrorIs(t, err, ErrAPIKeyMissing)
	assert.Equal(t, int32(0), atomic.LoadInt32(&stub.calls), "a configuration error must never trigger a network call")
}

func TestTokenServiceErrorBecomesAuthError(t *testing.T) {
	stub := &stubPost{response: func(int32) (string, error) {
		return "", &ServiceError{StatusCode: 500, Body: "oops"}
	}}
	ts := &TokenSource{APIKey: "secret", Post: stub.post, Now: clockAt(0)}

	_, err := ts.Token(context.Background())

	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	// The upstream status and body stay reachable for diagnostics.
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 500, se.StatusCode)

	// Distinguishable from the other failure classes.
	var fe *FormatError
	assert.False(t, errors.As(err, &fe))
	assert.NotErrorIs(t, err, ErrAPIKeyMissing)
}

func TestTokenNetworkErrorBecomesAuthError(t *testing.T) {
	stub := &stubPost{response: func(int32) (string, error) {
		return "", &NetworkError{Reason: "connection refused"}
	}}
	ts := &TokenSource{APIKey: "secret", Post: stub.post, Now: clockAt(0)}

	_, err := ts.Token(context.Background())

	var ae *AuthError
	require.ErrorAs(t, err, &ae)
}

func TestTokenInvalidJSONIsFormatError(t *testing.T) {
	stub := &stubPost{response: func(int32) (string, error) { return "not-json", nil }}
	ts := &TokenSource{APIKey: "secret", Post: stub.post, Now: clockAt(0)}

	_, err := ts.Token(context.Background())

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, err.Error(), "invalid")
	var ae *AuthError
	assert.False(t, errors.As(err, &ae))
}

func TestTokenMissingFieldIsFormatError(t *testing.T) {
	stub := &stubPost{response: func(int32) (string, error) { return `{"status":"ok"}`, nil }}
	ts := &TokenSource{APIKey: "secret", Post: stub.post, Now: clockAt(0)}

	_, err := ts.Token(context.Background())

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, err.Error(), "token missing")
}

func TestTokenHonorsAdvertisedExpiresIn(t *testing.T) {
	stub := &stubPost{response: func(n int32) (string, error) {
		body, _ := json.Marshal(map[string]any{"token": fmt.Sprintf("token-%d", n), "expires_in": 120})
		return string(body), nil
	}}
	ts := &TokenSource{APIKey: "secret", Post: stub.post, Buffer: time.Minute}

	ts.Now = clockAt(0)
	_, err := ts.Token(context.Background())
	require.NoError(t, err)

	// 120s lifetime minus the 60s buffer: still cached at t=59.
	ts.Now = clockAt(59)
	tok, err := ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&stub.calls))

	// Expired at t=61 even though the server-side lifetime has 59s left.
	ts.Now = clockAt(61)
	tok, err = ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", tok)
	assert.Equal(t, int32(2), atomic.LoadInt32(&stub.calls))
}

func TestTokenShortLifetimeIsNotExpiredOnArrival(t *testing.T) {
	stub := &stubPost{response: func(n int32) (string, error) {
		return fmt.Sprintf(`{"token":"token-%d","expires_in":30}`, n), nil
	}}
	ts := &TokenSource{APIKey: "secret", Post: stub.post, Buffer: time.Minute}

	ts.Now = clockAt(0)
	_, err := ts.Token(context.Background())
	require.NoError(t, err)

	// Lifetime (30s) is below the buffer; the full lifetime applies instead
	// of a non-positive one.
	ts.Now = clockAt(10)
	tok, err := ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&stub.calls))
}

func TestTokenConcurrentMissesCollapseToOneCall(t *testing.T) {
	var calls int32
	ts := &TokenSource{
		APIKey: "secret",
		Post: func(context.Context, string, any, map[string]string, time.Duration) (string, error) {
			atomic.AddInt32(&calls, 1)
			time.Sleep(20 * time.Millisecond)
			return `{"token":"token-1"}`, nil
		},
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := ts.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "token-1", tok)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
