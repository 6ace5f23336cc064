package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/BaSui01/logomotion/api"
	"github.com/BaSui01/logomotion/llm"
	"github.com/BaSui01/logomotion/llm/generation"
	"github.com/BaSui01/logomotion/llm/job"
	"github.com/BaSui01/logomotion/testutil"
	"github.com/BaSui01/logomotion/testutil/fixtures"
	"github.com/BaSui01/logomotion/testutil/mocks"
	"github.com/BaSui01/logomotion/types"
	"github.com/BaSui01/logomotion/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxUpload = 1 << 10

type studioEnv struct {
	handler *StudioHandler
	ctrl    *workflow.Controller
	mux     *http.ServeMux
	store   *llm.CredentialStore
	images  *mocks.MockImageProvider
	videos  *mocks.MockVideoBackend
}

func newStudioEnv(t *testing.T, key string) *studioEnv {
	t.Helper()

	images := mocks.NewMockImageProvider(fixtures.PNG())
	vectors := mocks.NewMockVectorProvider(fixtures.SVG)
	videos := mocks.NewMockVideoBackend(fixtures.MP4(), job.Pending(), job.Done("mock://video.mp4"))
	store := llm.NewCredentialStore(key)

	client := generation.NewClient(generation.Deps{
		Images:  images,
		Vectors: vectors,
		Videos:  videos,
		Poller: job.NewPoller(videos, job.Config{
			PollInterval:    5 * time.Millisecond,
			MessageInterval: 2 * time.Millisecond,
		}, nil),
		Credentials: store,
	}, nil)
	ctrl := workflow.NewController(client, store, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	h := NewStudioHandler(ctx, ctrl, testMaxUpload, nil)
	t.Cleanup(func() {
		cancel()
		h.Wait()
	})

	mux := http.NewServeMux()
	h.Register(mux)
	return &studioEnv{handler: h, ctrl: ctrl, mux: mux, store: store, images: images, videos: videos}
}

type stateEnvelope struct {
	Success bool            `json:"success"`
	Data    api.StudioState `json:"data"`
	Error   *ErrorInfo      `json:"error"`
}

func (e *studioEnv) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, stateEnvelope) {
	t.Helper()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, r)

	var env stateEnvelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (e *studioEnv) upload(t *testing.T, field, contentType string, data []byte) (*httptest.ResponseRecorder, stateEnvelope) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="logo"`)
	if contentType != "" {
		hdr.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/v1/logo/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, r)

	var env stateEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestStudioHandler_InitialState(t *testing.T) {
	env := newStudioEnv(t, "key")

	w, body := env.do(t, http.MethodGet, "/api/v1/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, "generate", body.Data.Step)
	assert.Nil(t, body.Data.Logo)
	assert.Nil(t, body.Data.Video)
}

func TestStudioHandler_GenerateLogoWaitAndDownload(t *testing.T) {
	env := newStudioEnv(t, "key")

	w, body := env.do(t, http.MethodPost, "/api/v1/logo?wait=true", `{"description":"`+fixtures.CoffeeShop+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "animate", body.Data.Step)
	require.NotNil(t, body.Data.Logo)
	assert.Equal(t, api.LogoPNGPath, body.Data.Logo.ImageURL)
	assert.Equal(t, api.LogoSVGPath, body.Data.Logo.SVGURL)
	assert.Equal(t, fixtures.SVG, body.Data.Logo.SVG)
	assert.False(t, body.Data.Logo.Uploaded)

	w, _ = env.do(t, http.MethodGet, api.LogoPNGPath, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=logo.png`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, fixtures.PNG(), w.Body.Bytes())

	w, _ = env.do(t, http.MethodGet, api.LogoSVGPath, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Equal(t, fixtures.SVG, w.Body.String())
}

func TestStudioHandler_GenerateLogoAsyncRejectsSecondRequest(t *testing.T) {
	env := newStudioEnv(t, "key")
	env.images.WithDelay(100 * time.Millisecond)

	w, body := env.do(t, http.MethodPost, "/api/v1/logo", `{"description":"tea house"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, body.Data.GeneratingLogo)
	assert.Equal(t, workflow.MsgLogoBusy, body.Data.Progress)

	w, body = env.do(t, http.MethodPost, "/api/v1/logo", `{"description":"tea house"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, string(types.ErrBusy), body.Error.Code)

	testutil.AssertEventuallyTrue(t, func() bool {
		return env.ctrl.Snapshot().Step == workflow.StepAnimate
	}, 2*time.Second)

	// logo 已存在时需要先重新开始
	w, body = env.do(t, http.MethodPost, "/api/v1/logo", `{"description":"tea house"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(types.ErrInvalidTransition), body.Error.Code)
}

func TestStudioHandler_GenerateLogoValidation(t *testing.T) {
	env := newStudioEnv(t, "key")

	w, body := env.do(t, http.MethodPost, "/api/v1/logo", `{"description":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(types.ErrInvalidRequest), body.Error.Code)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/logo", strings.NewReader(`description=x`))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	assert.Empty(t, env.images.Calls())
}

func TestStudioHandler_LogoWithoutCredential(t *testing.T) {
	env := newStudioEnv(t, "")

	w, body := env.do(t, http.MethodPost, "/api/v1/logo?wait=true", `{"description":"tea house"}`)
	assert.Equal(t, http.StatusPreconditionRequired, w.Code)
	assert.Equal(t, string(types.ErrConfiguration), body.Error.Code)
	assert.Empty(t, env.images.Calls())
}

func TestStudioHandler_VideoWithoutLogo(t *testing.T) {
	env := newStudioEnv(t, "key")

	w, body := env.do(t, http.MethodPost, "/api/v1/video", `{"prompt":"spin"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(types.ErrInvalidTransition), body.Error.Code)
	assert.Equal(t, workflow.MsgNoLogo, body.Error.Message)
	assert.Equal(t, workflow.MsgNoLogo, env.ctrl.Snapshot().Error)
	assert.Empty(t, env.videos.Submits())
}

func TestStudioHandler_UploadThenVideo(t *testing.T) {
	env := newStudioEnv(t, "")

	w, body := env.upload(t, "image", "image/png", fixtures.PNG())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, body.Data.Logo)
	assert.True(t, body.Data.Logo.Uploaded)
	assert.Empty(t, body.Data.Logo.SVGURL)
	assert.Equal(t, "animate", body.Data.Step)

	rec, _ := env.do(t, http.MethodGet, api.LogoSVGPath, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// 未选择凭据时不提交任务
	w, body = env.do(t, http.MethodPost, "/api/v1/video", `{"prompt":"spin","aspect_ratio":"9:16"}`)
	assert.Equal(t, http.StatusPreconditionRequired, w.Code)
	assert.Equal(t, workflow.MsgSelectKey, body.Error.Message)
	assert.Empty(t, env.videos.Submits())

	w, body = env.do(t, http.MethodPost, "/api/v1/credential", `{"api_key":"picked"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, body.Data.NeedsCredential)
	assert.Empty(t, body.Data.Error)

	w, body = env.do(t, http.MethodPost, "/api/v1/video?wait=true", `{"prompt":"spin","aspect_ratio":"9:16"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, body.Data.Video)
	assert.Equal(t, api.VideoMP4Path, body.Data.Video.URL)
	assert.Equal(t, len(fixtures.MP4()), body.Data.Video.Size)
	assert.False(t, body.Data.GeneratingVideo)
	assert.Empty(t, body.Data.Progress)

	submits := env.videos.Submits()
	require.Len(t, submits, 1)
	assert.Equal(t, types.AspectPortrait, submits[0].AspectRatio)
	assert.Equal(t, fixtures.PNG(), submits[0].SourceImage)

	rec, _ = env.do(t, http.MethodGet, api.VideoMP4Path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=video.mp4`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, fixtures.MP4(), rec.Body.Bytes())
}

func TestStudioHandler_VideoInvalidAspectRatio(t *testing.T) {
	env := newStudioEnv(t, "key")
	_, _ = env.upload(t, "image", "image/png", fixtures.PNG())

	w, body := env.do(t, http.MethodPost, "/api/v1/video", `{"aspect_ratio":"4:3"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(types.ErrInvalidRequest), body.Error.Code)
	assert.Empty(t, env.videos.Submits())
}

func TestStudioHandler_UploadValidation(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		contentType string
		data        []byte
		wantStatus  int
	}{
		{"missing field", "file", "image/png", fixtures.PNG(), http.StatusBadRequest},
		{"not an image", "image", "", []byte("hello, plain text"), http.StatusBadRequest},
		{"too large", "image", "image/png", bytes.Repeat([]byte{1}, testMaxUpload+1), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newStudioEnv(t, "key")
			w, body := env.upload(t, tt.field, tt.contentType, tt.data)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.False(t, body.Success)
			assert.Equal(t, "generate", string(env.ctrl.Snapshot().Step))
		})
	}
}

func TestStudioHandler_UploadSniffsMIMEType(t *testing.T) {
	env := newStudioEnv(t, "key")

	// 声明为 octet-stream 时按内容识别
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)
	w, body := env.upload(t, "image", "application/octet-stream", png)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", body.Data.Logo.MIMEType)
}

func TestStudioHandler_SelectCredentialRejectsEmpty(t *testing.T) {
	env := newStudioEnv(t, "")

	w, body := env.do(t, http.MethodPost, "/api/v1/credential", `{"api_key":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(types.ErrInvalidRequest), body.Error.Code)
	assert.Empty(t, env.store.APIKey())
}

func TestStudioHandler_Reset(t *testing.T) {
	env := newStudioEnv(t, "key")
	_, _ = env.upload(t, "image", "image/png", fixtures.PNG())

	w, body := env.do(t, http.MethodPost, "/api/v1/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "generate", body.Data.Step)
	assert.Nil(t, body.Data.Logo)

	rec, _ := env.do(t, http.MethodGet, api.LogoPNGPath, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudioHandler_UnknownArtifact(t *testing.T) {
	env := newStudioEnv(t, "key")

	w, body := env.do(t, http.MethodGet, "/api/v1/artifacts/secrets.txt", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(types.ErrNotFound), body.Error.Code)

	w, _ = env.do(t, http.MethodGet, api.VideoMP4Path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImageExtension(t *testing.T) {
	assert.Equal(t, ".png", imageExtension("image/png"))
	assert.Equal(t, ".jpg", imageExtension("image/jpeg"))
	assert.Equal(t, ".webp", imageExtension("image/webp"))
	assert.Equal(t, ".png", imageExtension(""))
}
