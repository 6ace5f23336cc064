// 生成提供者的测试模拟实现。
//
// 支持固定响应、调用记录与错误注入场景。
package mocks

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/BaSui01/logomotion/llm/image"
	"github.com/BaSui01/logomotion/llm/job"
	"github.com/BaSui01/logomotion/llm/vector"
	"github.com/BaSui01/logomotion/types"
)

// --- MockImageProvider ---

// MockImageProvider 是 image.Provider 的模拟实现
type MockImageProvider struct {
	mu    sync.Mutex
	data  []byte
	err   error
	delay time.Duration
	calls []*image.GenerateRequest
}

// NewMockImageProvider 创建返回 data 的模拟栅格提供者
func NewMockImageProvider(data []byte) *MockImageProvider {
	return &MockImageProvider{data: data}
}

// WithError 设置返回错误
func (m *MockImageProvider) WithError(err error) *MockImageProvider {
	m.err = err
	return m
}

// WithDelay 设置模拟延迟
func (m *MockImageProvider) WithDelay(d time.Duration) *MockImageProvider {
	m.delay = d
	return m
}

func (m *MockImageProvider) Name() string { return "mock-image" }

// Generate 实现 image.Provider
func (m *MockImageProvider) Generate(ctx context.Context, req *image.GenerateRequest) (*image.GenerateResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if err := sleep(ctx, m.delay); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	resp := &image.GenerateResponse{Provider: m.Name(), CreatedAt: time.Now()}
	if len(m.data) > 0 {
		resp.Images = []image.ImageData{{
			B64JSON:  base64.StdEncoding.EncodeToString(m.data),
			MIMEType: "image/png",
		}}
	}
	return resp, nil
}

// Calls 返回调用记录
func (m *MockImageProvider) Calls() []*image.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*image.GenerateRequest(nil), m.calls...)
}

// --- MockVectorProvider ---

// MockVectorProvider 是 vector.Provider 的模拟实现，返回未经清洗的原始文本。
type MockVectorProvider struct {
	mu    sync.Mutex
	text  string
	err   error
	delay time.Duration
	calls []*vector.GenerateRequest
}

// NewMockVectorProvider 创建返回 text 的模拟 SVG 提供者
func NewMockVectorProvider(text string) *MockVectorProvider {
	return &MockVectorProvider{text: text}
}

// WithError 设置返回错误
func (m *MockVectorProvider) WithError(err error) *MockVectorProvider {
	m.err = err
	return m
}

// WithDelay 设置模拟延迟
func (m *MockVectorProvider) WithDelay(d time.Duration) *MockVectorProvider {
	m.delay = d
	return m
}

func (m *MockVectorProvider) Name() string { return "mock-svg" }

// Generate 实现 vector.Provider
func (m *MockVectorProvider) Generate(ctx context.Context, req *vector.GenerateRequest) (*vector.GenerateResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if err := sleep(ctx, m.delay); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	return &vector.GenerateResponse{Provider: m.Name(), SVG: m.text, Raw: m.text, CreatedAt: time.Now()}, nil
}

// Calls 返回调用记录
func (m *MockVectorProvider) Calls() []*vector.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*vector.GenerateRequest(nil), m.calls...)
}

// --- MockVideoBackend ---

// MockVideoBackend 是 video.JobBackend 的模拟实现，按脚本依次返回状态。
type MockVideoBackend struct {
	mu          sync.Mutex
	statuses    []job.Status
	submitErr   error
	statusErr   error
	downloadErr error
	data        []byte
	submits     []*types.GenerationRequest
	polls       int
	downloads   []string
}

// NewMockVideoBackend 创建模拟视频后端，statuses 用尽后保持最后一个状态。
func NewMockVideoBackend(data []byte, statuses ...job.Status) *MockVideoBackend {
	if len(statuses) == 0 {
		statuses = []job.Status{job.Done("mock://video.mp4")}
	}
	return &MockVideoBackend{data: data, statuses: statuses}
}

// WithSubmitError 设置提交错误
func (m *MockVideoBackend) WithSubmitError(err error) *MockVideoBackend {
	m.submitErr = err
	return m
}

// WithStatusError 设置查询错误
func (m *MockVideoBackend) WithStatusError(err error) *MockVideoBackend {
	m.statusErr = err
	return m
}

// WithDownloadError 设置下载错误
func (m *MockVideoBackend) WithDownloadError(err error) *MockVideoBackend {
	m.downloadErr = err
	return m
}

func (m *MockVideoBackend) Name() string { return "mock-video" }

// Submit 实现 job.Backend
func (m *MockVideoBackend) Submit(_ context.Context, req *types.GenerationRequest) (job.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submits = append(m.submits, req)
	if m.submitErr != nil {
		return "", m.submitErr
	}
	return "operations/mock", nil
}

// Status 实现 job.Backend
func (m *MockVideoBackend) Status(_ context.Context, _ job.Handle) (job.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statusErr != nil {
		return job.Status{}, m.statusErr
	}
	i := m.polls
	m.polls++
	if i >= len(m.statuses) {
		i = len(m.statuses) - 1
	}
	return m.statuses[i], nil
}

// Download 实现 video.JobBackend
func (m *MockVideoBackend) Download(_ context.Context, ref string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloads = append(m.downloads, ref)
	if m.downloadErr != nil {
		return nil, "", m.downloadErr
	}
	return append([]byte(nil), m.data...), "video/mp4", nil
}

// Submits 返回提交记录
func (m *MockVideoBackend) Submits() []*types.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*types.GenerationRequest(nil), m.submits...)
}

// Downloads 返回下载记录
func (m *MockVideoBackend) Downloads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.downloads...)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
