package vector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BaSui01/logomotion/llm/providers"
	"github.com/BaSui01/logomotion/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeminiProvider(GeminiConfig{
		BaseProviderConfig: providers.BaseProviderConfig{APIKey: "k", BaseURL: srv.URL},
	}).WithHTTPClient(srv.Client())
}

func TestGeminiProvider_TextOnly(t *testing.T) {
	p := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-pro:generateContent", r.URL.Path)

		var body geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Contents, 1)
		require.Len(t, body.Contents[0].Parts, 1)
		assert.Contains(t, body.Contents[0].Parts[0].Text, `"a coffee shop called The Daily Grind"`)
		assert.Nil(t, body.Contents[0].Parts[0].InlineData)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"` +
			"```svg<svg viewBox=\\\"0 0 100 100\\\"></svg>```" + `"}]}}]}`))
	})

	resp, err := p.Generate(context.Background(), &GenerateRequest{Description: "a coffee shop called The Daily Grind"})
	require.NoError(t, err)
	assert.Equal(t, `<svg viewBox="0 0 100 100"></svg>`, resp.SVG)
	assert.Equal(t, "gemini-2.5-pro", resp.Model)
}

func TestGeminiProvider_WithReferenceImage(t *testing.T) {
	p := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		var body geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		parts := body.Contents[0].Parts
		require.Len(t, parts, 2)
		require.NotNil(t, parts[0].InlineData)
		assert.Equal(t, "image/png", parts[0].InlineData.MimeType)
		assert.Contains(t, parts[1].Text, "convert it into clean")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	resp, err := p.Generate(context.Background(), &GenerateRequest{Description: "d", ReferenceImage: []byte{1}})
	require.NoError(t, err)
	assert.Empty(t, resp.SVG)
}

func TestGeminiProvider_Error(t *testing.T) {
	p := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted"}}`))
	})

	_, err := p.Generate(context.Background(), &GenerateRequest{Description: "d"})
	require.Error(t, err)
	assert.Equal(t, types.ErrRateLimited, types.GetErrorCode(err))
	assert.True(t, types.IsRetryable(err))
}
