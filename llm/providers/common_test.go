package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BaSui01/logomotion/llm"
	"github.com/BaSui01/logomotion/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		status    int
		msg       string
		code      types.ErrorCode
		retryable bool
	}{
		{http.StatusUnauthorized, "bad key", types.ErrUnauthorized, false},
		{http.StatusForbidden, "denied", types.ErrForbidden, false},
		{http.StatusNotFound, "Requested entity was not found.", types.ErrNotFound, false},
		{http.StatusTooManyRequests, "slow down", types.ErrRateLimited, true},
		{http.StatusBadRequest, "Billing is not enabled", types.ErrQuotaExceeded, false},
		{http.StatusBadRequest, "invalid argument", types.ErrInvalidRequest, false},
		{http.StatusServiceUnavailable, "overloaded", types.ErrServiceUnavailable, true},
		{http.StatusInternalServerError, "boom", types.ErrUpstreamError, true},
		{http.StatusConflict, "conflict", types.ErrUpstreamError, false},
	}

	for _, tt := range tests {
		err := MapHTTPError(tt.status, tt.msg, "gemini")
		assert.Equal(t, tt.code, err.Code, "status %d", tt.status)
		assert.Equal(t, tt.retryable, err.Retryable, "status %d", tt.status)
		assert.Equal(t, tt.status, err.HTTPStatus)
		assert.Equal(t, "gemini", err.Provider)
	}
}

func TestReadErrorMessage(t *testing.T) {
	msg := ReadErrorMessage(strings.NewReader(`{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`))
	assert.Equal(t, "Requested entity was not found.", msg)

	assert.Equal(t, "plain text", ReadErrorMessage(strings.NewReader(" plain text\n")))
}

func TestResolveAPIKey(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "cfg", ResolveAPIKey(ctx, "cfg"))

	ctx = llm.WithCredentialOverride(ctx, llm.CredentialOverride{APIKey: "override"})
	assert.Equal(t, "override", ResolveAPIKey(ctx, "cfg"))
}

func TestDoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k1", r.Header.Get("x-goog-api-key"))
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"Requested entity was not found."}}`))
			return
		}
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"name":"operations/1"}`))
	}))
	defer srv.Close()

	var out struct {
		Name string `json:"name"`
	}
	err := DoJSON(context.Background(), srv.Client(), http.MethodPost, srv.URL+"/ok", "k1", "test", map[string]string{"a": "b"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "operations/1", out.Name)

	err = DoJSON(context.Background(), srv.Client(), http.MethodGet, srv.URL+"/fail", "k1", "test", nil, &out)
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "Requested entity was not found")
}
