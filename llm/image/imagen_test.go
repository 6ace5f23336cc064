package image

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BaSui01/logomotion/llm"
	"github.com/BaSui01/logomotion/llm/providers"
	"github.com/BaSui01/logomotion/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImagen(t *testing.T, handler http.HandlerFunc) *ImagenProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewImagenProvider(ImagenConfig{
		BaseProviderConfig: providers.BaseProviderConfig{
			APIKey:  "cfg-key",
			BaseURL: srv.URL,
		},
	}).WithHTTPClient(srv.Client())
}

func TestImagenProvider_Generate(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}

	p := newTestImagen(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/imagen-4.0-generate-001:predict", r.URL.Path)
		assert.Equal(t, "override-key", r.Header.Get("x-goog-api-key"))

		var body imagenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a fox logo", body.Instances[0].Prompt)
		assert.Equal(t, 1, body.Parameters.SampleCount)
		assert.Equal(t, "1:1", body.Parameters.AspectRatio)
		require.NotNil(t, body.Parameters.OutputOptions)
		assert.Equal(t, "image/png", body.Parameters.OutputOptions.MimeType)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"predictions": []map[string]string{
				{"bytesBase64Encoded": base64.StdEncoding.EncodeToString(png), "mimeType": "image/png"},
			},
		})
	})

	ctx := llm.WithCredentialOverride(context.Background(), llm.CredentialOverride{APIKey: "override-key"})
	resp, err := p.Generate(ctx, &GenerateRequest{
		Prompt:         "a fox logo",
		AspectRatio:    "1:1",
		OutputMIMEType: "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, "imagen", resp.Provider)
	assert.Equal(t, 1, resp.Usage.ImagesGenerated)

	data, mimeType, err := resp.First()
	require.NoError(t, err)
	assert.Equal(t, png, data)
	assert.Equal(t, "image/png", mimeType)
}

func TestImagenProvider_EmptyPredictions(t *testing.T) {
	p := newTestImagen(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[{"raiFilteredReason":"blocked"}]}`))
	})

	resp, err := p.Generate(context.Background(), &GenerateRequest{Prompt: "x"})
	require.NoError(t, err)
	data, _, err := resp.First()
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestImagenProvider_UpstreamError(t *testing.T) {
	p := newTestImagen(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cfg-key", r.Header.Get("x-goog-api-key"))
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Imagen API is only accessible to billed users at this time."}}`))
	})

	_, err := p.Generate(context.Background(), &GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, types.ErrQuotaExceeded, types.GetErrorCode(err))
}

func TestImageData_BytesInvalid(t *testing.T) {
	_, err := ImageData{B64JSON: "!!!"}.Bytes()
	assert.Error(t, err)
}
