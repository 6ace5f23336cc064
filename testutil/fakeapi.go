package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/BaSui01/logomotion/testutil/fixtures"
)

// 调用类别
const (
	CallImage    = "image"
	CallSVG      = "svg"
	CallSubmit   = "submit"
	CallPoll     = "poll"
	CallDownload = "download"
)

// FakeGeminiAPI 是托管生成 API 的 httptest 替身，覆盖 Imagen :predict、
// Gemini :generateContent、Veo :predictLongRunning、operations 查询与文件下载。
// 所有字段在发起请求前设置；调用计数可并发读取。
type FakeGeminiAPI struct {
	Server *httptest.Server

	PNG     []byte
	SVGText string

	SubmitStatus  int
	SubmitMessage string
	PendingPolls  int
	FailReason    string
	OmitVideoURI  bool

	DownloadStatus int
	Video          []byte

	mu    sync.Mutex
	calls map[string]int
	keys  []string
	polls int
}

// NewFakeGeminiAPI 启动替身服务，测试结束时自动关闭。
func NewFakeGeminiAPI(t testing.TB) *FakeGeminiAPI {
	t.Helper()
	f := &FakeGeminiAPI{
		PNG:            fixtures.PNG(),
		SVGText:        fixtures.FencedSVG,
		SubmitStatus:   http.StatusOK,
		DownloadStatus: http.StatusOK,
		Video:          fixtures.MP4(),
		calls:          make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL 返回替身的根地址。
func (f *FakeGeminiAPI) BaseURL() string { return f.Server.URL }

// Client 返回与替身配套的 HTTP 客户端。
func (f *FakeGeminiAPI) Client() *http.Client { return f.Server.Client() }

// Calls 返回某类调用次数。
func (f *FakeGeminiAPI) Calls(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

// TotalCalls 返回所有网络调用次数。
func (f *FakeGeminiAPI) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// APIKeys 返回各请求携带的 x-goog-api-key。
func (f *FakeGeminiAPI) APIKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

func (f *FakeGeminiAPI) record(kind string, r *http.Request) {
	f.mu.Lock()
	f.calls[kind]++
	f.keys = append(f.keys, r.Header.Get("x-goog-api-key"))
	f.mu.Unlock()
}

func (f *FakeGeminiAPI) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case strings.HasSuffix(path, ":predict"):
		f.record(CallImage, r)
		writeJSON(w, http.StatusOK, fixtures.ImagenPredictResponse(f.PNG))

	case strings.HasSuffix(path, ":generateContent"):
		f.record(CallSVG, r)
		writeJSON(w, http.StatusOK, fixtures.GenerateContentResponse(f.SVGText))

	case strings.HasSuffix(path, ":predictLongRunning"):
		f.record(CallSubmit, r)
		if f.SubmitStatus != http.StatusOK {
			writeJSON(w, f.SubmitStatus, fixtures.APIError(f.SubmitStatus, f.SubmitMessage))
			return
		}
		writeJSON(w, http.StatusOK, `{"name":"models/veo/operations/fake-op"}`)

	case strings.Contains(path, "/operations/"):
		f.record(CallPoll, r)
		name := strings.TrimPrefix(path, "/v1beta/")
		f.mu.Lock()
		f.polls++
		n := f.polls
		f.mu.Unlock()
		switch {
		case n <= f.PendingPolls:
			writeJSON(w, http.StatusOK, fixtures.OperationPending(name))
		case f.FailReason != "":
			writeJSON(w, http.StatusOK, fixtures.OperationFailed(name, f.FailReason))
		case f.OmitVideoURI:
			writeJSON(w, http.StatusOK, fixtures.OperationDone(name, ""))
		default:
			writeJSON(w, http.StatusOK, fixtures.OperationDone(name, f.Server.URL+"/files/video.mp4"))
		}

	case strings.HasPrefix(path, "/files/"):
		f.record(CallDownload, r)
		if f.DownloadStatus != http.StatusOK {
			http.Error(w, http.StatusText(f.DownloadStatus), f.DownloadStatus)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write(f.Video)

	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
