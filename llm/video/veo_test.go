package video

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BaSui01/logomotion/llm/job"
	"github.com/BaSui01/logomotion/llm/providers"
	"github.com/BaSui01/logomotion/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVeo(t *testing.T, mux *http.ServeMux) (*VeoProvider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewVeoProvider(VeoConfig{
		BaseProviderConfig: providers.BaseProviderConfig{APIKey: "k", BaseURL: srv.URL},
	}).WithHTTPClient(srv.Client())
	return p, srv
}

func TestVeoProvider_Submit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1beta/models/veo-3.1-fast-generate-preview:predictLongRunning", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "k", r.Header.Get("x-goog-api-key"))

		var body veoRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Instances, 1)
		assert.Equal(t, "spin it", body.Instances[0].Prompt)
		require.NotNil(t, body.Instances[0].Image)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{1, 2}), body.Instances[0].Image.BytesBase64Encoded)
		assert.Equal(t, "image/png", body.Instances[0].Image.MimeType)
		assert.Equal(t, "9:16", body.Parameters.AspectRatio)
		assert.Equal(t, "720p", body.Parameters.Resolution)
		assert.Equal(t, 1, body.Parameters.SampleCount)

		_, _ = w.Write([]byte(`{"name":"models/veo/operations/op-1"}`))
	})
	p, _ := newTestVeo(t, mux)

	h, err := p.Submit(context.Background(), types.NewVideoRequest("spin it", []byte{1, 2}, "", types.AspectPortrait))
	require.NoError(t, err)
	assert.Equal(t, job.Handle("models/veo/operations/op-1"), h)
}

func TestVeoProvider_SubmitRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`))
	})
	p, _ := newTestVeo(t, mux)

	_, err := p.Submit(context.Background(), types.NewVideoRequest("x", []byte{1}, "", ""))
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "Requested entity was not found")
}

func TestVeoProvider_Status(t *testing.T) {
	tests := []struct {
		name string
		body string
		want job.Status
	}{
		{"pending", `{"name":"op","done":false}`, job.Pending()},
		{"done", `{"name":"op","done":true,"response":{"generateVideoResponse":{"generatedSamples":[{"video":{"uri":"https://files/v.mp4"}}]}}}`, job.Done("https://files/v.mp4")},
		{"done without samples", `{"name":"op","done":true,"response":{"generateVideoResponse":{}}}`, job.Done("")},
		{"filtered", `{"name":"op","done":true,"response":{"generateVideoResponse":{"raiMediaFilteredCount":1,"raiMediaFilteredReasons":["unsafe content"]}}}`, job.Failed("unsafe content")},
		{"error", `{"name":"op","done":true,"error":{"code":3,"message":"quota hit"}}`, job.Failed("quota hit")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/v1beta/models/veo/operations/op", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				_, _ = w.Write([]byte(tt.body))
			})
			p, _ := newTestVeo(t, mux)

			st, err := p.Status(context.Background(), "models/veo/operations/op")
			require.NoError(t, err)
			assert.Equal(t, tt.want, st)
		})
	}
}

func TestVeoProvider_Download(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/files/ok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("x-goog-api-key"))
		_, _ = w.Write([]byte("mp4-bytes"))
	})
	mux.HandleFunc("/files/gone", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	p, srv := newTestVeo(t, mux)

	data, mimeType, err := p.Download(context.Background(), srv.URL+"/files/ok")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp4-bytes"), data)
	assert.NotEmpty(t, mimeType)

	_, _, err = p.Download(context.Background(), srv.URL+"/files/gone")
	require.Error(t, err)
	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrDownload, e.Code)
	assert.Equal(t, http.StatusNotFound, e.HTTPStatus)
	assert.Contains(t, e.Message, "404")
	assert.Contains(t, e.Message, "Not Found")
}
