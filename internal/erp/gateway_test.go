package erp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfloor-backend/config"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.ERPConfig{
		BaseURL:   server.URL,
		APIKey:    "key",
		APISecret: "secret",
		Timeout:   5 * time.Second,
	}
	return NewGateway(cfg), server
}

func TestGateway_FetchOpenJobs(t *testing.T) {
	var authCalls, jobCalls int

	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth":
			authCalls++
			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "key", creds["api_key"])
			json.NewEncoder(w).Encode(authResponse{Token: "tok-1", ExpiresIn: 3600})
		case "/api/jobs":
			jobCalls++
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode([]Job{{JobNumber: "J-100", PartNumber: "P-9"}})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	ctx := context.Background()

	jobs, err := gw.FetchOpenJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "J-100", jobs[0].JobNumber)

	// Second call reuses the cached token.
	_, err = gw.FetchOpenJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, authCalls)
	assert.Equal(t, 2, jobCalls)
}

func TestGateway_ReauthenticatesWhenTokenExpired(t *testing.T) {
	var authCalls int

	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth":
			authCalls++
			// Already inside the refresh margin, so every call re-auths.
			json.NewEncoder(w).Encode(authResponse{Token: "tok", ExpiresIn: 1})
		case "/api/jobs":
			json.NewEncoder(w).Encode([]Job{})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	ctx := context.Background()
	_, err := gw.FetchOpenJobs(ctx)
	require.NoError(t, err)
	_, err = gw.FetchOpenJobs(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, authCalls)
}

func TestGateway_ClearsTokenOn401(t *testing.T) {
	var authCalls int

	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth":
			authCalls++
			json.NewEncoder(w).Encode(authResponse{Token: "stale", ExpiresIn: 3600})
		case "/api/jobs":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	ctx := context.Background()

	_, err := gw.FetchOpenJobs(ctx)
	assert.Error(t, err, "401 surfaces to the caller, no silent retry")

	_, err = gw.FetchOpenJobs(ctx)
	assert.Error(t, err)
	assert.Equal(t, 2, authCalls, "the stale token is dropped so the next call re-authenticates")
}

func TestGateway_AuthFailure(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := gw.FetchOpenJobs(context.Background())
	assert.ErrorContains(t, err, "status 403")
}
