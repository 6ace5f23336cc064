package generation

import (
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/BaSui01/logomotion/llm"
	"github.com/BaSui01/logomotion/llm/image"
	"github.com/BaSui01/logomotion/llm/job"
	"github.com/BaSui01/logomotion/llm/providers"
	"github.com/BaSui01/logomotion/llm/vector"
	"github.com/BaSui01/logomotion/llm/video"
	"github.com/BaSui01/logomotion/testutil"
	"github.com/BaSui01/logomotion/testutil/fixtures"
	"github.com/BaSui01/logomotion/testutil/mocks"
	"github.com/BaSui01/logomotion/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fastPolling = job.Config{
	PollInterval:    5 * time.Millisecond,
	MessageInterval: 2 * time.Millisecond,
}

type recordedGeneration struct {
	kind, status string
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []recordedGeneration
}

func (r *fakeRecorder) RecordGeneration(kind, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, recordedGeneration{kind, status})
}

// newAPIClient wires real providers against the fake hosted API.
func newAPIClient(t *testing.T, api *testutil.FakeGeminiAPI, key string, rec Recorder) *Client {
	t.Helper()
	base := providers.BaseProviderConfig{BaseURL: api.BaseURL()}

	videos := video.NewVeoProvider(video.VeoConfig{BaseProviderConfig: base}).WithHTTPClient(api.Client())
	return NewClient(Deps{
		Images:      image.NewImagenProvider(image.ImagenConfig{BaseProviderConfig: base}).WithHTTPClient(api.Client()),
		Vectors:     vector.NewGeminiProvider(vector.GeminiConfig{BaseProviderConfig: base}).WithHTTPClient(api.Client()),
		Videos:      videos,
		Poller:      job.NewPoller(videos, fastPolling, zap.NewNop()),
		Credentials: llm.NewCredentialStore(key),
		Recorder:    rec,
	}, zap.NewNop())
}

func TestGenerateLogo_CoffeeShopStripsFences(t *testing.T) {
	png := []byte("B")
	images := mocks.NewMockImageProvider(png)
	vectors := mocks.NewMockVectorProvider("```svg<svg viewBox=\"0 0 100 100\"></svg>```")
	c := NewClient(Deps{
		Images:      images,
		Vectors:     vectors,
		Credentials: llm.NewCredentialStore("key"),
	}, nil)

	art, err := c.GenerateLogo(testutil.TestContext(t), fixtures.CoffeeShop)
	require.NoError(t, err)
	assert.Equal(t, png, art.PNG)
	assert.Equal(t, `<svg viewBox="0 0 100 100"></svg>`, art.SVG)
	assert.True(t, art.Complete())

	require.Len(t, images.Calls(), 1)
	assert.Contains(t, images.Calls()[0].Prompt, fixtures.CoffeeShop)
	assert.Equal(t, "1:1", images.Calls()[0].AspectRatio)
	assert.Equal(t, "image/png", images.Calls()[0].OutputMIMEType)
	require.Len(t, vectors.Calls(), 1)
	assert.Equal(t, fixtures.CoffeeShop, vectors.Calls()[0].Description)
	assert.Empty(t, vectors.Calls()[0].ReferenceImage)
}

func TestGenerateLogo_AgainstHostedAPI(t *testing.T) {
	api := testutil.NewFakeGeminiAPI(t)
	rec := &fakeRecorder{}
	c := newAPIClient(t, api, "selected-key", rec)

	art, err := c.GenerateLogo(testutil.TestContext(t), fixtures.CoffeeShop)
	require.NoError(t, err)
	assert.Equal(t, fixtures.PNG(), art.PNG)
	assert.Equal(t, fixtures.SVG, art.SVG)
	assert.Equal(t, 1, api.Calls(testutil.CallImage))
	assert.Equal(t, 1, api.Calls(testutil.CallSVG))
	for _, k := range api.APIKeys() {
		assert.Equal(t, "selected-key", k)
	}
	assert.Equal(t, []recordedGeneration{{"logo", "success"}}, rec.records)
}

func TestGenerateLogo_PartialArtifactIsFailure(t *testing.T) {
	tests := []struct {
		name   string
		png    []byte
		svg    string
		expect string
	}{
		{"missing svg", []byte{1}, "", "failed to generate the SVG"},
		{"whitespace fenced svg", []byte{1}, "```svg\n```", "failed to generate the SVG"},
		{"refusal instead of markup", []byte{1, 2, 3}, "I'm sorry, I can't create SVG for that request.", "failed to generate the SVG"},
		{"unclosed svg", []byte{1}, "```svg\n<svg viewBox=\"0 0 10 10\">", "failed to generate the SVG"},
		{"missing png", nil, fixtures.SVG, "PNG"},
		{"missing png and refusal", nil, "no can do", "image and/or SVG"},
		{"missing both", nil, "", "image and/or SVG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(Deps{
				Images:      mocks.NewMockImageProvider(tt.png),
				Vectors:     mocks.NewMockVectorProvider(tt.svg),
				Credentials: llm.NewCredentialStore("key"),
			}, nil)

			art, err := c.GenerateLogo(testutil.TestContext(t), "x")
			require.Error(t, err)
			assert.Nil(t, art)
			assert.Equal(t, types.ErrPartialArtifact, types.GetErrorCode(err))
			assert.Contains(t, types.Message(err), tt.expect)
		})
	}
}

func TestGenerateLogo_SubCallErrorPropagates(t *testing.T) {
	boom := types.NewError(types.ErrQuotaExceeded, "billing required")
	c := NewClient(Deps{
		Images:      mocks.NewMockImageProvider([]byte{1}).WithError(boom),
		Vectors:     mocks.NewMockVectorProvider(fixtures.SVG).WithDelay(time.Second),
		Credentials: llm.NewCredentialStore("key"),
	}, nil)

	start := time.Now()
	_, err := c.GenerateLogo(testutil.TestContext(t), "x")
	require.Error(t, err)
	assert.Equal(t, types.ErrQuotaExceeded, types.GetErrorCode(err))
	assert.Less(t, time.Since(start), 900*time.Millisecond, "sibling call should be cancelled")
}

func TestGenerate_NoCredentialMakesNoNetworkCalls(t *testing.T) {
	api := testutil.NewFakeGeminiAPI(t)
	rec := &fakeRecorder{}
	c := newAPIClient(t, api, "", rec)
	ctx := testutil.TestContext(t)

	_, err := c.GenerateVideo(ctx, "spin", fixtures.PNG(), "image/png", types.AspectLandscape, nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrConfiguration, types.GetErrorCode(err))

	_, err = c.GenerateLogo(ctx, "x")
	assert.Equal(t, types.ErrConfiguration, types.GetErrorCode(err))

	assert.Zero(t, api.TotalCalls())
	assert.Equal(t, "CONFIGURATION_ERROR", rec.records[0].status)
}

func TestGenerateVideo_HappyPath(t *testing.T) {
	api := testutil.NewFakeGeminiAPI(t)
	api.PendingPolls = 2
	c := newAPIClient(t, api, "key", nil)

	var mu sync.Mutex
	var msgs []string
	art, err := c.GenerateVideo(testutil.TestContext(t), "", fixtures.PNG(), "image/png", types.AspectPortrait, func(m string) {
		mu.Lock()
		msgs = append(msgs, m)
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.Equal(t, fixtures.MP4(), art.Data)
	assert.Equal(t, "video/mp4", art.MIMEType)

	assert.Equal(t, 1, api.Calls(testutil.CallSubmit))
	assert.Equal(t, 3, api.Calls(testutil.CallPoll))
	assert.Equal(t, 1, api.Calls(testutil.CallDownload))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, msgs)
	assert.Equal(t, job.DefaultMessages[0], msgs[0])
	assert.Equal(t, job.FetchingMessage, msgs[len(msgs)-1])
}

func TestGenerateVideo_DefaultPrompt(t *testing.T) {
	backend := mocks.NewMockVideoBackend([]byte("v"))
	c := NewClient(Deps{
		Videos:      backend,
		Poller:      job.NewPoller(backend, fastPolling, nil),
		Credentials: llm.NewCredentialStore("key"),
	}, nil)

	_, err := c.GenerateVideo(testutil.TestContext(t), "", []byte{1}, "", "", nil)
	require.NoError(t, err)
	require.Len(t, backend.Submits(), 1)
	assert.Equal(t, DefaultVideoPrompt, backend.Submits()[0].Prompt)
	assert.Equal(t, types.AspectLandscape, backend.Submits()[0].AspectRatio)
	assert.Equal(t, []string{"mock://video.mp4"}, backend.Downloads())
}

func TestGenerateVideo_Download404(t *testing.T) {
	api := testutil.NewFakeGeminiAPI(t)
	api.DownloadStatus = http.StatusNotFound
	c := newAPIClient(t, api, "key", nil)

	art, err := c.GenerateVideo(testutil.TestContext(t), "spin", fixtures.PNG(), "image/png", types.AspectLandscape, nil)
	require.Error(t, err)
	assert.Nil(t, art)
	assert.Equal(t, types.ErrDownload, types.GetErrorCode(err))
	assert.Contains(t, types.Message(err), "404")
}

func TestGenerateVideo_JobFailedVerbatim(t *testing.T) {
	api := testutil.NewFakeGeminiAPI(t)
	api.FailReason = "The prompt could not be processed."
	c := newAPIClient(t, api, "key", nil)

	_, err := c.GenerateVideo(testutil.TestContext(t), "spin", fixtures.PNG(), "", "", nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrJobFailed, types.GetErrorCode(err))
	assert.Equal(t, "The prompt could not be processed.", types.Message(err))
	assert.Zero(t, api.Calls(testutil.CallDownload))
}

func TestGenerateVideo_MissingResult(t *testing.T) {
	api := testutil.NewFakeGeminiAPI(t)
	api.OmitVideoURI = true
	c := newAPIClient(t, api, "key", nil)

	_, err := c.GenerateVideo(testutil.TestContext(t), "spin", fixtures.PNG(), "", "", nil)
	assert.Equal(t, types.ErrMissingResult, types.GetErrorCode(err))
}

func TestGenerateVideo_SubmissionRejected(t *testing.T) {
	api := testutil.NewFakeGeminiAPI(t)
	api.SubmitStatus = http.StatusNotFound
	api.SubmitMessage = "Requested entity was not found."
	c := newAPIClient(t, api, "key", nil)

	_, err := c.GenerateVideo(testutil.TestContext(t), "spin", fixtures.PNG(), "", "", nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrSubmission, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "Requested entity was not found")
	assert.Zero(t, api.Calls(testutil.CallPoll))
}

func TestGenerateVideo_NoImage(t *testing.T) {
	backend := mocks.NewMockVideoBackend(nil)
	c := NewClient(Deps{Videos: backend, Credentials: llm.NewCredentialStore("key")}, nil)

	_, err := c.GenerateVideo(testutil.TestContext(t), "x", nil, "", "", nil)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
	assert.Empty(t, backend.Submits())
}

func TestGenerateVideo_StatusErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	backend := mocks.NewMockVideoBackend(nil).WithStatusError(boom)
	c := NewClient(Deps{
		Videos:      backend,
		Poller:      job.NewPoller(backend, fastPolling, nil),
		Credentials: llm.NewCredentialStore("key"),
	}, nil)

	_, err := c.GenerateVideo(testutil.TestContext(t), "x", []byte{1}, "", "", nil)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, backend.Downloads())
}
