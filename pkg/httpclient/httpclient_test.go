package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_AppliesTimeouts(t *testing.T) {
	client := NewClient(&Config{
		TimeoutInMs: 5000,
		Transport: &TransportConfig{
			DialTimeoutInMs:     2000,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeoutInMs: 30000,
		},
	})

	assert.Equal(t, 5*time.Second, client.CoreClient.Timeout)

	transport, ok := client.CoreClient.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 100, transport.MaxIdleConns)
	assert.Equal(t, 10, transport.MaxIdleConnsPerHost)
	assert.Equal(t, 30*time.Second, transport.IdleConnTimeout)
}

func TestNewClient_NilTransportFallsBackToDefaults(t *testing.T) {
	client := NewClient(&Config{TimeoutInMs: 1000})
	_, ok := client.CoreClient.Transport.(*http.Transport)
	assert.True(t, ok)
}

func TestDo_SetsConfiguredUserAgent(t *testing.T) {
	var seenAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAgent = r.Header.Get("User-Agent")
	}))
	t.Cleanup(srv.Close)

	client := NewClient(&Config{UserAgent: "Pokemon-Helper-Bot/1.0", TimeoutInMs: 2000})
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Pokemon-Helper-Bot/1.0", seenAgent)
}

func TestDo_KeepsCallerUserAgent(t *testing.T) {
	var seenAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAgent = r.Header.Get("User-Agent")
	}))
	t.Cleanup(srv.Close)

	client := NewClient(&Config{UserAgent: "Pokemon-Helper-Bot/1.0", TimeoutInMs: 2000})
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom-agent/2.0")

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "custom-agent/2.0", seenAgent)
}

func TestGetNormalizedPath(t *testing.T) {
	assert.Equal(t, "/images/{id}/raw", getNormalizedPath("/images/12345/raw"))
	assert.Equal(t, "/files/{uuid}", getNormalizedPath("/files/0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9"))
	assert.Equal(t, "/docs/{objectId}", getNormalizedPath("/docs/507f1f77bcf86cd799439011"))
	assert.Equal(t, "/static/logo.png", getNormalizedPath("/static/logo.png"))
}
